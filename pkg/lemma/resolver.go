// Package lemma maps Greek surface forms to dictionary headwords through a
// pluggable morphological backend, a persistent cache and a manual
// override table.
package lemma

import (
	"errors"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hazyhaar/hoplite/pkg/normalize"
	"github.com/hazyhaar/hoplite/pkg/stopwords"
)

// Head selection policies for BestLemma.
const (
	HeadFirstContent = "first_content"
	HeadVerb         = "verb_head"
)

// DefaultVerbEndings are normalized finite-verb and infinitive endings
// used by the verb_head policy.
var DefaultVerbEndings = []string{
	"ουσιν", "ουσι", "ομεν", "ετε", "ομαι", "εται", "ονται", "εσθαι", "ειν",
}

// Options configures a Resolver.
type Options struct {
	Backend     Backend
	Store       CacheStore
	Overrides   map[string]string // already normalized, see NormalizeOverrides
	Stop        *stopwords.Set
	HeadPolicy  string
	VerbEndings []string
	Logger      *slog.Logger
}

// Resolver resolves tokens and phrases to normalized lemmas.
// It is safe for concurrent use.
type Resolver struct {
	backend   Backend
	identity  bool
	store     CacheStore
	overrides map[string]string
	stop      *stopwords.Set
	policy    string
	endings   []string
	logger    *slog.Logger

	mu    sync.RWMutex
	cache map[string]string
	gen   uint64 // bumped on every cache write
	saved uint64

	hits, misses, backendCalls, backendErrors atomic.Int64
	// down is set once the backend reports ErrBackendUnavailable.
	down atomic.Bool
}

// Stats reports cache and backend counters.
type Stats struct {
	Backend       string `json:"backend"`
	CacheSize     int    `json:"cache_size"`
	Overrides     int    `json:"overrides"`
	Hits          int64  `json:"hits"`
	Misses        int64  `json:"misses"`
	BackendCalls  int64  `json:"backend_calls"`
	BackendErrors int64  `json:"backend_errors"`
}

// Token is one analyzed token of a phrase.
type Token struct {
	Normalized string `json:"normalized"`
	Lemma      string `json:"lemma"`
	Stop       bool   `json:"stop"`
	Head       bool   `json:"head"`
}

// New builds a Resolver and loads its cache. A cache that fails to load
// is logged and replaced by an empty one.
func New(opts Options) *Resolver {
	r := &Resolver{
		backend:   opts.Backend,
		store:     opts.Store,
		overrides: opts.Overrides,
		stop:      opts.Stop,
		policy:    opts.HeadPolicy,
		endings:   opts.VerbEndings,
		logger:    opts.Logger,
		cache:     make(map[string]string),
	}
	if r.backend == nil {
		r.backend = Passthrough{}
	}
	_, r.identity = r.backend.(Passthrough)
	if r.store == nil {
		r.store = NopStore{}
	}
	if r.overrides == nil {
		r.overrides = map[string]string{}
	}
	if r.policy == "" {
		r.policy = HeadVerb
	}
	if len(r.endings) == 0 {
		r.endings = DefaultVerbEndings
	} else {
		norm := make([]string, 0, len(r.endings))
		for _, e := range r.endings {
			if n := normalize.ForMatch(e); n != "" {
				norm = append(norm, n)
			}
		}
		r.endings = norm
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	cached, err := r.store.Load()
	if err != nil {
		r.logger.Warn("lemma cache unreadable, starting empty", "error", err)
	} else if cached != nil {
		r.cache = cached
	}
	return r
}

// LemmaOf returns the normalized lemma of a single token. Lookup order is
// override, cache, backend; any backend failure falls back to the
// normalized token itself. After ErrBackendUnavailable the backend is no
// longer called.
func (r *Resolver) LemmaOf(token string) string {
	tok := normalize.ForMatch(token)
	if tok == "" {
		return ""
	}
	if l, ok := r.overrides[tok]; ok {
		return l
	}

	r.mu.RLock()
	l, ok := r.cache[tok]
	r.mu.RUnlock()
	if ok {
		r.hits.Add(1)
		return l
	}
	r.misses.Add(1)

	if r.identity || r.down.Load() {
		return tok
	}

	r.backendCalls.Add(1)
	raw, err := r.backend.Lemma(tok)
	if err != nil {
		if errors.Is(err, ErrBackendUnavailable) {
			r.backendErrors.Add(1)
			if !r.down.Swap(true) {
				r.logger.Warn("lemma backend unavailable, using surface forms for the rest of the run",
					"backend", r.backend.Name(), "token", tok, "error", err)
			}
			return tok
		}
		if !errors.Is(err, ErrUnknownForm) {
			if r.backendErrors.Add(1) == 1 {
				r.logger.Info("lemma backend failed, falling back to surface form",
					"backend", r.backend.Name(), "token", tok, "error", err)
			} else {
				r.logger.Debug("lemma backend failed", "token", tok, "error", err)
			}
		}
		return tok
	}
	l = normalize.ForMatch(raw)
	if l == "" {
		return tok
	}

	r.mu.Lock()
	r.cache[tok] = l
	r.gen++
	r.mu.Unlock()
	return l
}

// BestLemma returns the lemma of the head token of a phrase. An override
// on the whole phrase wins. Leading stop words are skipped; a phrase made
// only of stop words resolves through its first token.
func (r *Resolver) BestLemma(text string) string {
	n := normalize.ForMatch(text)
	if n == "" {
		return ""
	}
	if l, ok := r.overrides[n]; ok {
		return l
	}
	tokens := normalize.Tokens(n)
	return r.LemmaOf(tokens[r.headIndex(tokens)])
}

// Analyze returns every token of text with its lemma, marking stop words
// and the head chosen by BestLemma.
func (r *Resolver) Analyze(text string) []Token {
	tokens := normalize.Tokens(normalize.ForMatch(text))
	if len(tokens) == 0 {
		return nil
	}
	head := r.headIndex(tokens)
	out := make([]Token, len(tokens))
	for i, tok := range tokens {
		out[i] = Token{
			Normalized: tok,
			Lemma:      r.LemmaOf(tok),
			Stop:       r.stop.Contains(tok),
			Head:       i == head,
		}
	}
	return out
}

// headIndex picks the head token of a normalized, non-empty token list.
func (r *Resolver) headIndex(tokens []string) int {
	first := -1
	for i, tok := range tokens {
		if r.stop.Contains(tok) {
			continue
		}
		if first < 0 {
			first = i
			if r.policy != HeadVerb {
				break
			}
		}
		if r.policy == HeadVerb && r.looksFinite(tok) {
			return i
		}
	}
	if first < 0 {
		return 0
	}
	return first
}

func (r *Resolver) looksFinite(tok string) bool {
	for _, e := range r.endings {
		if len(tok) > len(e) && strings.HasSuffix(tok, e) {
			return true
		}
	}
	return false
}

// Save flushes the cache to its store if it changed since the last save.
func (r *Resolver) Save() error {
	r.mu.RLock()
	if r.gen == r.saved {
		r.mu.RUnlock()
		return nil
	}
	gen := r.gen
	snapshot := maps.Clone(r.cache)
	r.mu.RUnlock()

	if err := r.store.Save(snapshot); err != nil {
		return err
	}
	r.mu.Lock()
	if gen > r.saved {
		r.saved = gen
	}
	r.mu.Unlock()
	return nil
}

// Close releases the cache store. It does not save.
func (r *Resolver) Close() error {
	return r.store.Close()
}

// Stats returns a snapshot of the resolver counters.
func (r *Resolver) Stats() Stats {
	r.mu.RLock()
	size := len(r.cache)
	r.mu.RUnlock()
	return Stats{
		Backend:       r.backend.Name(),
		CacheSize:     size,
		Overrides:     len(r.overrides),
		Hits:          r.hits.Load(),
		Misses:        r.misses.Load(),
		BackendCalls:  r.backendCalls.Load(),
		BackendErrors: r.backendErrors.Load(),
	}
}

// Stopwords returns the stop list used for head selection.
func (r *Resolver) Stopwords() *stopwords.Set {
	return r.stop
}
