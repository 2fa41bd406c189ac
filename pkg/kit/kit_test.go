package kit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}
	ep := Chain(mark("a"), mark("b"), mark("c"))(func(context.Context, any) (any, error) {
		order = append(order, "endpoint")
		return nil, nil
	})
	ep(context.Background(), nil)
	if got := strings.Join(order, ","); got != "a,b,c,endpoint" {
		t.Errorf("order = %s", got)
	}
}

func TestRecover(t *testing.T) {
	ep := Recover()(func(context.Context, any) (any, error) { panic("boom") })
	resp, err := ep(context.Background(), nil)
	if resp != nil || err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("resp = %v, err = %v", resp, err)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	fail := Logging(logger, "lint")(func(context.Context, any) (any, error) {
		return nil, errors.New("bad cards")
	})
	ctx := WithRequestID(WithTransport(context.Background(), "mcp"), "req-1")
	fail(ctx, nil)
	out := buf.String()
	for _, want := range []string{"endpoint failed", "endpoint=lint", "transport=mcp", "request_id=req-1", "bad cards"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	if GetTransport(ctx) != "http" || GetRequestID(ctx) != "" {
		t.Error("unexpected defaults")
	}
}
