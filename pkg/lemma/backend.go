package lemma

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

var (
	// ErrUnknownForm is returned by a backend that has no analysis for a
	// form. The resolver treats it as a clean miss.
	ErrUnknownForm = errors.New("unknown form")
	// ErrBackendUnavailable marks a backend that could not be reached or built.
	ErrBackendUnavailable = errors.New("lemma backend unavailable")
)

// Backend maps a normalized surface token to its dictionary headword.
type Backend interface {
	// Name identifies the backend in logs and stats (e.g. "table").
	Name() string
	// Lemma returns the headword for token. Results need not be normalized.
	Lemma(token string) (string, error)
}

// Passthrough is the identity backend used when no morphological
// analyzer is available.
type Passthrough struct{}

func (Passthrough) Name() string { return "passthrough" }

func (Passthrough) Lemma(token string) (string, error) { return token, nil }

// BackendConfig selects and parameterizes a backend. It is read from the
// `lemma:` section of the configuration file.
type BackendConfig struct {
	Backend     string        `yaml:"backend" json:"backend"`
	TablePath   string        `yaml:"table_path" json:"table_path"`
	URL         string        `yaml:"url" json:"url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	Required    bool          `yaml:"required" json:"required"`
	HeadPolicy  string        `yaml:"head_policy" json:"head_policy"`
	VerbEndings []string      `yaml:"verb_endings" json:"verb_endings"`
}

// Factory builds a backend from its configuration.
type Factory func(cfg BackendConfig, logger *slog.Logger) (Backend, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

func init() {
	Register("none", func(BackendConfig, *slog.Logger) (Backend, error) { return Passthrough{}, nil })
	Register("table", func(cfg BackendConfig, _ *slog.Logger) (Backend, error) { return LoadTable(cfg.TablePath) })
	Register("http", openHTTP)
}

// openHTTP builds the HTTP backend and checks its health once, so an
// analyzer that is down is replaced by Passthrough before any lookup.
func openHTTP(cfg BackendConfig, logger *slog.Logger) (Backend, error) {
	h, err := NewHTTP(cfg.URL, cfg.Timeout, logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.client.Timeout)
	defer cancel()
	status, err := h.Check(ctx)
	if err != nil {
		return nil, err
	}
	if status >= 500 {
		return nil, fmt.Errorf("http backend: %s/health returned %d", h.base, status)
	}
	return h, nil
}

// Register adds a backend kind to the global registry.
func Register(kind string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[kind] = f
}

// Kinds returns all registered backend kinds sorted.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open builds the configured backend. An optional backend that cannot be
// built degrades to Passthrough; a required one returns an error wrapping
// ErrBackendUnavailable.
func Open(cfg BackendConfig, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	kind := cfg.Backend
	if kind == "" {
		kind = "none"
	}

	registryMu.RLock()
	f, ok := factories[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown lemma backend: %q", kind)
	}

	b, err := f(cfg, logger)
	if err != nil {
		if cfg.Required {
			return nil, fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, kind, err)
		}
		logger.Info("lemma backend unavailable, using passthrough", "backend", kind, "error", err)
		return Passthrough{}, nil
	}
	return b, nil
}
