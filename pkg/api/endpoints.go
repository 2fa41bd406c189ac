package api

import (
	"context"
	"fmt"

	"github.com/hazyhaar/hoplite/pkg/deck"
	"github.com/hazyhaar/hoplite/pkg/ingest"
	"github.com/hazyhaar/hoplite/pkg/kit"
	"github.com/hazyhaar/hoplite/pkg/lemma"
	"github.com/hazyhaar/hoplite/pkg/lint"
	"github.com/hazyhaar/hoplite/pkg/normalize"
)

// MaxCards bounds one lint request.
const MaxCards = 1000

// Shared request/response types used by both HTTP and MCP transports.

type lintReq struct {
	Cards []ingest.Card `json:"cards"`
}

type lemmaReq struct {
	Text string
}

type lemmaResponse struct {
	Text       string        `json:"text"`
	Normalized string        `json:"normalized"`
	Lemma      string        `json:"lemma"`
	Tokens     []lemma.Token `json:"tokens"`
}

type statsResponse struct {
	Index deck.IndexStats `json:"index"`
	Lemma lemma.Stats     `json:"lemma"`
}

type endpoints struct {
	lint  kit.Endpoint
	lemma kit.Endpoint
	stats kit.Endpoint
}

func newEndpoints(l *lint.Linter, mw kit.Middleware) endpoints {
	if mw == nil {
		mw = func(next kit.Endpoint) kit.Endpoint { return next }
	}
	return endpoints{
		lint:  mw(lintEndpoint(l)),
		lemma: mw(lemmaEndpoint(l.Resolver())),
		stats: mw(statsEndpoint(l)),
	}
}

func lintEndpoint(l *lint.Linter) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*lintReq)
		if len(req.Cards) == 0 {
			return nil, fmt.Errorf("cards array is empty")
		}
		if len(req.Cards) > MaxCards {
			return nil, fmt.Errorf("too many cards (max %d, got %d)", MaxCards, len(req.Cards))
		}
		for i := range req.Cards {
			req.Cards[i].Row = i
		}
		return l.Run(req.Cards), nil
	}
}

func lemmaEndpoint(r *lemma.Resolver) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*lemmaReq)
		n := normalize.ForMatch(req.Text)
		if n == "" {
			return nil, fmt.Errorf("text has no words")
		}
		return lemmaResponse{
			Text:       req.Text,
			Normalized: n,
			Lemma:      r.BestLemma(req.Text),
			Tokens:     r.Analyze(req.Text),
		}, nil
	}
}

func statsEndpoint(l *lint.Linter) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return statsResponse{
			Index: l.Index().Stats(),
			Lemma: l.Resolver().Stats(),
		}, nil
	}
}
