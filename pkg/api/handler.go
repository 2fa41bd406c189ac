// Package api serves the linter over HTTP and as MCP tools.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/hazyhaar/hoplite/pkg/kit"
	"github.com/hazyhaar/hoplite/pkg/lint"
)

// NewRouter returns an http.Handler with all hoplite API routes.
func NewRouter(l *lint.Linter, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	h := &handler{
		eps:    newEndpoints(l, kit.Chain(kit.Logging(logger, "http"), kit.Recover())),
		linter: l,
	}

	mux.HandleFunc("GET /v1/lint", methodNotAllowed)
	mux.HandleFunc("POST /v1/lint", h.handleLint)
	mux.HandleFunc("GET /v1/lemma/{text}", h.handleLemma)
	mux.HandleFunc("GET /v1/stats", h.handleStats)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(requestID(mux))
}

type handler struct {
	eps    endpoints
	linter *lint.Linter
}

func (h *handler) handleLint(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB max
	var req lintReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.eps.lint(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleLemma(w http.ResponseWriter, r *http.Request) {
	text := r.PathValue("text")
	if text == "" {
		writeError(w, http.StatusBadRequest, "missing text")
		return
	}
	resp, err := h.eps.lemma(r.Context(), &lemmaReq{Text: text})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.eps.stats(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status  string `json:"status"`
	Entries int    `json:"entries"`
	Backend string `json:"backend"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Entries: h.linter.Index().Len(),
		Backend: h.linter.Resolver().Stats().Backend,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requestID tags each request with the caller's X-Request-ID or a new ULID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = ulid.Make().String()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := kit.WithTransport(r.Context(), "http")
		next.ServeHTTP(w, r.WithContext(kit.WithRequestID(ctx, id)))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
