package detect

import (
	"slices"

	"github.com/hazyhaar/hoplite/pkg/lemma"
	"github.com/hazyhaar/hoplite/pkg/normalize"
)

// SelfDuplicate flags a row that repeats another row of the same batch.
// Row numbers are 0-based batch positions.
type SelfDuplicate struct {
	IsExact     bool  `json:"is_exact"`
	DuplicateOf *int  `json:"duplicate_of,omitempty"`
	ExactGroup  []int `json:"exact_group,omitempty"`
	IsLemma     bool  `json:"is_lemma"`
	LemmaGroup  []int `json:"lemma_group,omitempty"`
}

// Level maps the flags to a warning level: high for an exact repeat,
// medium for a lemma-only repeat.
func (s SelfDuplicate) Level() Level {
	switch {
	case s.IsExact:
		return High
	case s.IsLemma:
		return Medium
	}
	return None
}

// SelfDuplicates groups the batch by normalized front and by best lemma.
// Every member of a group with more than one row is flagged, so the
// result does not depend on which row came first. DuplicateOf points at
// the lowest other row of the exact group. Empty keys never group.
func SelfDuplicates(fronts []string, r *lemma.Resolver) []SelfDuplicate {
	out := make([]SelfDuplicate, len(fronts))
	exact := make(map[string][]int)
	lemmas := make(map[string][]int)

	for i, front := range fronts {
		if n := normalize.ForMatch(front); n != "" {
			exact[n] = append(exact[n], i)
		}
		if l := r.BestLemma(front); l != "" {
			lemmas[l] = append(lemmas[l], i)
		}
	}

	for _, rows := range exact {
		if len(rows) < 2 {
			continue
		}
		for _, i := range rows {
			other := rows[0]
			if other == i {
				other = rows[1]
			}
			out[i].IsExact = true
			out[i].DuplicateOf = &other
			out[i].ExactGroup = slices.Clone(rows)
		}
	}
	for _, rows := range lemmas {
		if len(rows) < 2 {
			continue
		}
		for _, i := range rows {
			out[i].IsLemma = true
			out[i].LemmaGroup = slices.Clone(rows)
		}
	}
	return out
}
