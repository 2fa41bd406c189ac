package tags

import (
	"strings"

	"github.com/hazyhaar/hoplite/pkg/normalize"
)

// Result is the tag analysis of one card. All lists are de-duplicated
// and keep first-seen order.
type Result struct {
	Kept        []string `json:"kept"`
	Deleted     []string `json:"deleted"`
	Unknown     []string `json:"unknown"`
	AutoAdded   []string `json:"auto_added"`
	Final       []string `json:"final"`
	NeedsReview bool     `json:"needs_review"`
}

// Split parses an Anki tag string (space separated).
func Split(tags string) []string {
	return strings.Fields(tags)
}

// Join formats tags as an Anki tag string.
func Join(tags []string) string {
	return strings.Join(tags, " ")
}

// Analyze sorts tags into kept, deleted (blocked) and unknown. With
// autoTag, rules matching the normalized front or back add allowed,
// non-blocked tags the card does not already keep. Final is kept plus
// auto-added.
func (s *Schema) Analyze(front, back string, tags []string, autoTag bool) Result {
	var res Result
	kept := make(map[string]bool)
	deleted := make(map[string]bool)
	unknown := make(map[string]bool)

	for _, t := range tags {
		n := s.norm(t)
		if n == "" {
			continue
		}
		switch {
		case s.Allowed(n):
			if !kept[n] {
				kept[n] = true
				res.Kept = append(res.Kept, n)
			}
		case s.Blocked(n):
			if !deleted[n] {
				deleted[n] = true
				res.Deleted = append(res.Deleted, n)
			}
		default:
			if !unknown[n] {
				unknown[n] = true
				res.Unknown = append(res.Unknown, n)
			}
		}
	}

	if autoTag {
		res.AutoAdded = s.autoTags(front, back, kept)
	}

	res.Final = append(append([]string{}, res.Kept...), res.AutoAdded...)
	res.NeedsReview = len(res.Unknown) > 0
	return res
}

func (s *Schema) autoTags(front, back string, present map[string]bool) []string {
	fields := map[string]string{
		"front": normalize.ForMatch(front),
		"back":  normalize.ForGloss(back),
	}
	added := make(map[string]bool)
	var out []string
	for _, r := range s.rules {
		if !r.re.MatchString(fields[r.field]) {
			continue
		}
		for _, t := range r.tags {
			n := s.norm(t)
			if !s.Allowed(n) || s.Blocked(n) || present[n] || added[n] {
				continue
			}
			added[n] = true
			out = append(out, n)
		}
	}
	return out
}
