package cloze

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hazyhaar/hoplite/pkg/detect"
	"github.com/hazyhaar/hoplite/pkg/stopwords"
)

// Cloze kinds.
const (
	KindTargetWord = "target_word"
	KindMorphology = "morphology"
)

// Recommendation proposes turning a card into a cloze deletion.
type Recommendation struct {
	Confidence float64 `json:"confidence"`
	Target     string  `json:"target"`
	Markup     string  `json:"markup"`
	Kind       string  `json:"kind"`
	Hint       string  `json:"hint"`
	Reason     string  `json:"reason"`
	Candidates int     `json:"candidates"`
}

// Weights are the terms of the confidence sum. Context weights must grow
// from Isolated to Rich; penalties are subtracted.
type Weights struct {
	Base          float64 `yaml:"base" json:"base"`
	Isolated      float64 `yaml:"isolated" json:"isolated"`
	Phrase        float64 `yaml:"phrase" json:"phrase"`
	Minimal       float64 `yaml:"minimal" json:"minimal"`
	Rich          float64 `yaml:"rich" json:"rich"`
	Unambiguous   float64 `yaml:"unambiguous" json:"unambiguous"`
	PenaltyHigh   float64 `yaml:"penalty_high" json:"penalty_high"`
	PenaltyMedium float64 `yaml:"penalty_medium" json:"penalty_medium"`
	PenaltyLow    float64 `yaml:"penalty_low" json:"penalty_low"`
}

// DefaultWeights returns the stock weights. A rich, unambiguous,
// non-duplicate card scores 0.9.
func DefaultWeights() Weights {
	return Weights{
		Base:          0.3,
		Isolated:      -0.2,
		Phrase:        0.2,
		Minimal:       0.35,
		Rich:          0.5,
		Unambiguous:   0.1,
		PenaltyHigh:   0.5,
		PenaltyMedium: 0.2,
		PenaltyLow:    0.05,
	}
}

// Recommender scores cloze candidates.
type Recommender struct {
	Stop    *stopwords.Set
	Weights Weights
}

// NewRecommender returns a Recommender with default weights.
func NewRecommender(stop *stopwords.Set) *Recommender {
	return &Recommender{Stop: stop, Weights: DefaultWeights()}
}

// Recommend proposes a cloze for front, or nil when the card is already a
// cloze, no content word occurs exactly once, or the target cannot be
// marked up in the text. No acceptance threshold is applied here.
func (rc *Recommender) Recommend(front string, tags []string, level detect.Level, ctx Context) *Recommendation {
	if IsCloze(front) {
		return nil
	}

	tokens := Tokenize(front)
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t.Normalized]++
	}
	var candidates []Token
	for _, t := range tokens {
		if t.Normalized == "" || rc.Stop.Contains(t.Normalized) || counts[t.Normalized] != 1 {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return nil
	}

	verb := hasTag(tags, "verb")
	target := candidates[len(candidates)-1]
	kind, hint := KindTargetWord, "target word"
	if verb {
		target = candidates[0]
		kind, hint = KindMorphology, "verb form"
	}

	marked := markup(Clean(front), target.Surface)
	if marked == "" {
		return nil
	}

	w := rc.Weights
	conf := w.Base + w.context(ctx.Bucket) - w.penalty(level)
	if len(candidates) == 1 {
		conf += w.Unambiguous
	}

	return &Recommendation{
		Confidence: clamp(conf),
		Target:     target.Surface,
		Markup:     marked,
		Kind:       kind,
		Hint:       hint,
		Reason:     fmt.Sprintf("context_%s_tokens_%d", ctx.Bucket, ctx.TokenCount),
		Candidates: len(candidates),
	}
}

func (w Weights) context(b Bucket) float64 {
	switch b {
	case Rich:
		return w.Rich
	case Minimal:
		return w.Minimal
	case Phrase:
		return w.Phrase
	}
	return w.Isolated
}

func (w Weights) penalty(l detect.Level) float64 {
	switch l {
	case detect.High:
		return w.PenaltyHigh
	case detect.Medium:
		return w.PenaltyMedium
	case detect.Low:
		return w.PenaltyLow
	}
	return 0
}

// markup wraps the first whole-word occurrence of target in text.
func markup(text, target string) string {
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], target)
		if i < 0 {
			break
		}
		start, end := from+i, from+i+len(target)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return text[:start] + "{{c1::" + target + "}}" + text[end:]
		}
		from = end
	}
	return ""
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r)
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		t = strings.ToLower(t)
		if t == want || strings.HasSuffix(t, ":"+want) {
			return true
		}
	}
	return false
}

func clamp(f float64) float64 {
	return min(max(f, 0), 1)
}
