package lemma

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// CacheStore persists the token->lemma cache between runs.
type CacheStore interface {
	Load() (map[string]string, error)
	Save(map[string]string) error
	Close() error
}

// OpenStore opens the cache store of the given kind ("gob", "sqlite" or
// "none") at path.
func OpenStore(kind, path string) (CacheStore, error) {
	switch kind {
	case "", "gob":
		if path == "" {
			return nil, fmt.Errorf("gob cache: no path configured")
		}
		return &GobStore{Path: path}, nil
	case "sqlite":
		return OpenSQLiteStore(path)
	case "none":
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown cache store: %q", kind)
	}
}

// GobStore keeps the cache in a single gob-encoded file.
type GobStore struct {
	Path string
}

// Load decodes the cache file. A missing file is an empty cache.
func (g *GobStore) Load() (map[string]string, error) {
	f, err := os.Open(g.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	m := make(map[string]string)
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	return m, nil
}

// Save writes the cache to a temp file and renames it into place.
func (g *GobStore) Save(m map[string]string) error {
	if dir := filepath.Dir(g.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	tmp := g.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode gob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close gob file: %w", err)
	}
	return os.Rename(tmp, g.Path)
}

func (g *GobStore) Close() error { return nil }

// NopStore disables persistence.
type NopStore struct{}

func (NopStore) Load() (map[string]string, error) { return map[string]string{}, nil }
func (NopStore) Save(map[string]string) error      { return nil }
func (NopStore) Close() error                      { return nil }
