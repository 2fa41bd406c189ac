package lemma

import (
	"fmt"
	"os"

	"github.com/hazyhaar/hoplite/pkg/normalize"
	"gopkg.in/yaml.v3"
)

// LoadOverrides reads a surface->lemma table (YAML or JSON object).
// Keys and values are normalized; empty pairs are dropped.
func LoadOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides %s: %w", path, err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse overrides %s: %w", path, err)
	}
	return NormalizeOverrides(raw), nil
}

// NormalizeOverrides returns a copy of raw with keys and values normalized.
func NormalizeOverrides(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		nk, nv := normalize.ForMatch(k), normalize.ForMatch(v)
		if nk == "" || nv == "" {
			continue
		}
		out[nk] = nv
	}
	return out
}
