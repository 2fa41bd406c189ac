// Package stopwords holds the set of function words skipped when choosing
// a headword or a cloze target.
package stopwords

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hazyhaar/hoplite/pkg/normalize"
	"gopkg.in/yaml.v3"
)

// Set is an immutable set of normalized stop words.
type Set struct {
	words map[string]struct{}
}

// defaultGreek covers articles, particles, conjunctions, common
// prepositions and the copula, in normalized form.
var defaultGreek = []string{
	// articles
	"ο", "η", "το", "οι", "αι", "τα", "τον", "την", "του", "τησ", "τω", "τη",
	"των", "τοισ", "ταισ", "τουσ", "τασ",
	// particles and conjunctions
	"και", "δε", "τε", "γαρ", "μεν", "ουν", "αλλα", "αλλ", "ει", "ωσ", "οτι",
	"γε", "δη", "αν", "ου", "ουκ", "ουχ", "μη",
	// prepositions
	"εν", "εισ", "εσ", "εκ", "εξ", "απο", "προσ", "επι", "κατα", "μετα",
	"παρα", "περι", "υπο", "υπερ", "δια", "αντι", "συν", "προ",
	// copula
	"εστι", "εστιν", "ειναι",
}

// New builds a Set, normalizing every word.
func New(words []string) *Set {
	s := &Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if n := normalize.ForMatch(w); n != "" {
			s.words[n] = struct{}{}
		}
	}
	return s
}

// Default returns the built-in Greek stop list.
func Default() *Set {
	return New(defaultGreek)
}

// Load reads a stop list. Files ending in .yaml or .yml hold a
// `terms:` list; anything else is one word per line with # comments.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stopwords %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc struct {
			Terms []string `yaml:"terms"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse stopwords %s: %w", path, err)
		}
		return New(doc.Terms), nil
	}

	var words []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan stopwords %s: %w", path, err)
	}
	return New(words), nil
}

// LoadOrDefault loads path, or returns the built-in list when path is empty.
func LoadOrDefault(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Contains reports whether the normalized token is a stop word.
// A nil Set contains nothing.
func (s *Set) Contains(normalized string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[normalized]
	return ok
}

// Len returns the number of words.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// All returns the words sorted.
func (s *Set) All() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
