package lemma

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newFastHTTP(t *testing.T, url string) *HTTP {
	t.Helper()
	h, err := NewHTTP(url, 2*time.Second, nil)
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}
	h.backoff = time.Millisecond
	return h
}

func TestHTTP_Lemma(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lemma" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("token") != "λυεισ" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"lemma": "λύω"})
	}))
	defer ts.Close()

	h := newFastHTTP(t, ts.URL)
	got, err := h.Lemma("λυεισ")
	if err != nil {
		t.Fatalf("Lemma: %v", err)
	}
	if got != "λύω" {
		t.Errorf("Lemma = %q, want λύω", got)
	}
	if _, err := h.Lemma("αγνωστον"); !errors.Is(err, ErrUnknownForm) {
		t.Errorf("err = %v, want ErrUnknownForm", err)
	}
}

func TestHTTP_Retry(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"lemma": "μένω"})
	}))
	defer ts.Close()

	h := newFastHTTP(t, ts.URL)
	got, err := h.Lemma("μενουσι")
	if err != nil {
		t.Fatalf("Lemma with retries: %v", err)
	}
	if got != "μένω" || attempts != 3 {
		t.Errorf("got %q after %d attempts", got, attempts)
	}
}

func TestHTTP_AllFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	h := newFastHTTP(t, ts.URL)
	if _, err := h.Lemma("λογοσ"); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("err = %v, want ErrBackendUnavailable", err)
	}
}

func TestHTTP_ResolverFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	r := New(Options{Backend: newFastHTTP(t, ts.URL)})
	if got := r.LemmaOf("λόγου"); got != "λογου" {
		t.Errorf("LemmaOf = %q, want λογου", got)
	}
}

func TestHTTP_Check(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead || r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	h := newFastHTTP(t, ts.URL)
	status, err := h.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
}

// closedURL returns the address of a server that is no longer listening.
func closedURL(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(http.NotFoundHandler())
	u := ts.URL
	ts.Close()
	return u
}

func TestOpen_HTTPUnreachableDegrades(t *testing.T) {
	start := time.Now()
	b, err := Open(BackendConfig{Backend: "http", URL: closedURL(t), Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := b.(Passthrough); !ok {
		t.Fatalf("backend = %T, want Passthrough", b)
	}

	r := New(Options{Backend: b})
	for _, tok := range []string{"λόγου", "ἀνθρώπου", "κρήνης"} {
		r.LemmaOf(tok)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("unreachable backend took %v", elapsed)
	}
	if st := r.Stats(); st.BackendCalls != 0 || st.Backend != "passthrough" {
		t.Errorf("stats = %+v", st)
	}
}

func TestOpen_HTTPUnreachableRequired(t *testing.T) {
	_, err := Open(BackendConfig{Backend: "http", URL: closedURL(t), Timeout: time.Second, Required: true}, nil)
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("err = %v, want ErrBackendUnavailable", err)
	}
}

func TestOpen_HTTPHealthy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"lemma": "λύω"})
	}))
	defer ts.Close()

	b, err := Open(BackendConfig{Backend: "http", URL: ts.URL, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Name() != "http" {
		t.Errorf("Name = %q, want http", b.Name())
	}
}

func TestNewHTTP_NoURL(t *testing.T) {
	if _, err := NewHTTP("", 0, nil); err == nil {
		t.Error("expected error for empty url")
	}
}
