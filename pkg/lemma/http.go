package lemma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTP queries a remote morphological analyzer:
//
//	GET {base}/lemma?token=λυεισ  ->  {"lemma": "λύω"}
//
// A 404 means the analyzer does not know the form.
type HTTP struct {
	base     string
	client   *http.Client
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
}

type lemmaResponse struct {
	Lemma string `json:"lemma"`
}

// NewHTTP builds an HTTP backend for base. A zero timeout means 10s.
func NewHTTP(base string, timeout time.Duration, logger *slog.Logger) (*HTTP, error) {
	if base == "" {
		return nil, fmt.Errorf("http backend: no url configured")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("http backend: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTP{
		base:     strings.TrimRight(base, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		attempts: 3,
		backoff:  time.Second,
	}, nil
}

func (h *HTTP) Name() string { return "http" }

// Lemma asks the analyzer for token, retrying transient failures with
// exponential backoff.
func (h *HTTP) Lemma(token string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), h.client.Timeout*time.Duration(h.attempts+1))
	defer cancel()

	endpoint := h.base + "/lemma?token=" + url.QueryEscape(token)

	var lastErr error
	for attempt := 0; attempt < h.attempts; attempt++ {
		if attempt > 0 {
			backoff := h.backoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return "", ErrUnknownForm
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, endpoint)
			continue
		}

		var out lemmaResponse
		err = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&out)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("decode lemma response: %w", err)
		}
		if out.Lemma == "" {
			return "", ErrUnknownForm
		}
		return out.Lemma, nil
	}
	return "", fmt.Errorf("%w: lemma %q failed after %d attempts: %v", ErrBackendUnavailable, token, h.attempts, lastErr)
}

// Check performs a HEAD request against {base}/health and returns the
// HTTP status code. On network error, status is 0.
func (h *HTTP) Check(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.base+"/health", nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HEAD %s: %w", h.base, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		h.logger.Warn("lemma backend unhealthy", "url", h.base, "status", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
