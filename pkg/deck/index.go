// Package deck reads the learner's reference collection and indexes it
// by exact form, lemma and gloss.
package deck

import (
	"slices"

	"github.com/hazyhaar/hoplite/pkg/lemma"
	"github.com/hazyhaar/hoplite/pkg/normalize"
)

// Index maps comparison keys to the source ids that produced them. It is
// built once and read-only afterwards.
type Index struct {
	exact   map[string][]string
	lemma   map[string][]string
	gloss   map[string][]string
	entries int
}

// IndexStats summarizes an Index.
type IndexStats struct {
	Entries   int `json:"entries"`
	ExactKeys int `json:"exact_keys"`
	LemmaKeys int `json:"lemma_keys"`
	GlossKeys int `json:"gloss_keys"`
}

// Build indexes entries in order. One resolver serves every entry so its
// cache is shared across the build. Empty keys are never inserted and a
// source id appears at most once per key.
func Build(entries []Entry, r *lemma.Resolver) *Index {
	ix := &Index{
		exact: make(map[string][]string),
		lemma: make(map[string][]string),
		gloss: make(map[string][]string),
	}
	for _, e := range entries {
		ix.entries++
		insert(ix.exact, normalize.ForMatch(e.Greek), e.SourceID)
		if r != nil {
			insert(ix.lemma, r.BestLemma(e.Greek), e.SourceID)
		}
		insert(ix.gloss, normalize.ForGloss(e.English), e.SourceID)
	}
	return ix
}

func insert(m map[string][]string, key, id string) {
	if key == "" {
		return
	}
	ids := m[key]
	if slices.Contains(ids, id) {
		return
	}
	m[key] = append(ids, id)
}

// Exact returns the ids whose normalized Greek equals key.
func (ix *Index) Exact(key string) []string { return slices.Clone(ix.exact[key]) }

// Lemma returns the ids whose headword lemma equals key.
func (ix *Index) Lemma(key string) []string { return slices.Clone(ix.lemma[key]) }

// Gloss returns the ids whose normalized English equals key.
func (ix *Index) Gloss(key string) []string { return slices.Clone(ix.gloss[key]) }

// Len returns the number of indexed entries.
func (ix *Index) Len() int { return ix.entries }

// Stats reports entry and key counts per tier.
func (ix *Index) Stats() IndexStats {
	return IndexStats{
		Entries:   ix.entries,
		ExactKeys: len(ix.exact),
		LemmaKeys: len(ix.lemma),
		GlossKeys: len(ix.gloss),
	}
}
