// Package detect decides whether candidate cards duplicate the reference
// collection or each other.
package detect

import (
	"github.com/hazyhaar/hoplite/pkg/deck"
	"github.com/hazyhaar/hoplite/pkg/lemma"
	"github.com/hazyhaar/hoplite/pkg/normalize"
)

// Level is the severity of a duplicate warning.
type Level string

const (
	High   Level = "high"
	Medium Level = "medium"
	Low    Level = "low"
	None   Level = "none"
)

// Match reasons, one per tier.
const (
	ReasonExact = "exact_greek_match"
	ReasonLemma = "lemma_match"
	ReasonGloss = "gloss_match"
	ReasonNone  = "no_match"
)

// Rank orders levels from none (0) to high (3).
func (l Level) Rank() int {
	switch l {
	case High:
		return 3
	case Medium:
		return 2
	case Low:
		return 1
	}
	return 0
}

// Result is the outcome of classifying one card against the index.
type Result struct {
	Level      Level    `json:"level"`
	Reason     string   `json:"reason"`
	MatchedIDs []string `json:"matched_ids"`
	Normalized string   `json:"normalized"`
	Lemma      string   `json:"lemma"`
}

// Classify checks front and back against the index tiers in order:
// exact form, lemma, gloss. The first tier that matches decides.
// A card whose front normalizes to nothing is never a duplicate.
func Classify(front, back string, idx *deck.Index, r *lemma.Resolver) Result {
	res := Result{Level: None, Reason: ReasonNone, MatchedIDs: []string{}}

	res.Normalized = normalize.ForMatch(front)
	if res.Normalized == "" {
		return res
	}
	// Lemma is reported at every level, not only on lemma matches.
	res.Lemma = r.BestLemma(front)

	if ids := idx.Exact(res.Normalized); len(ids) > 0 {
		res.Level, res.Reason, res.MatchedIDs = High, ReasonExact, ids
		return res
	}
	if res.Lemma != "" {
		if ids := idx.Lemma(res.Lemma); len(ids) > 0 {
			res.Level, res.Reason, res.MatchedIDs = Medium, ReasonLemma, ids
			return res
		}
	}

	if gloss := normalize.ForGloss(back); gloss != "" {
		if ids := idx.Gloss(gloss); len(ids) > 0 {
			res.Level, res.Reason, res.MatchedIDs = Low, ReasonGloss, ids
		}
	}
	return res
}
