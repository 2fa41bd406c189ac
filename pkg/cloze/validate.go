package cloze

import (
	"strconv"
	"strings"

	"github.com/hazyhaar/hoplite/pkg/stopwords"
)

// Cloze quality grades.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityWeak      = "weak"
	QualityPoor      = "poor"
	QualityNA        = "n/a"
)

// Segment is one {{cN::content::hint}} deletion.
type Segment struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
	Hint    string `json:"hint,omitempty"`
}

// Validation measures an existing cloze card.
type Validation struct {
	IsCloze        bool      `json:"is_cloze"`
	Segments       []Segment `json:"segments,omitempty"`
	TotalTokens    int       `json:"total_tokens"`
	ContextTokens  int       `json:"context_tokens"`
	ClozeTokens    int       `json:"cloze_tokens"`
	DeletionRatio  float64   `json:"deletion_ratio"`
	StopWords      int       `json:"context_stop_words"`
	ContentWords   int       `json:"context_content_words"`
	ContentDensity float64   `json:"content_density"`
	Quality        string    `json:"quality"`
	Reasons        []string  `json:"reasons,omitempty"`
}

// Parse extracts deletions from a field and returns them with the text
// left outside them.
func Parse(text string) ([]Segment, string) {
	cleaned := Clean(text)
	var segs []Segment
	for _, m := range clozePattern.FindAllStringSubmatch(cleaned, -1) {
		n, _ := strconv.Atoi(m[1])
		segs = append(segs, Segment{
			Number:  n,
			Content: strings.TrimSpace(m[2]),
			Hint:    strings.TrimSpace(m[3]),
		})
	}
	return segs, clozePattern.ReplaceAllString(cleaned, " ")
}

// Validate grades a cloze card by how much context survives the
// deletions. Cards without cloze markup get quality n/a.
func Validate(front string, stop *stopwords.Set) Validation {
	segs, context := Parse(front)
	if len(segs) == 0 {
		return Validation{Quality: QualityNA}
	}

	v := Validation{IsCloze: true, Segments: segs}
	ctxTokens := Tokenize(context)
	v.ContextTokens = len(ctxTokens)
	for _, s := range segs {
		v.ClozeTokens += len(Tokenize(s.Content))
	}
	v.TotalTokens = v.ContextTokens + v.ClozeTokens
	if v.TotalTokens > 0 {
		v.DeletionRatio = float64(v.ClozeTokens) / float64(v.TotalTokens)
	}
	for _, t := range ctxTokens {
		if stop.Contains(t.Normalized) {
			v.StopWords++
		} else {
			v.ContentWords++
		}
	}
	if v.ContextTokens > 0 {
		v.ContentDensity = float64(v.ContentWords) / float64(v.ContextTokens)
	}
	v.Quality, v.Reasons = grade(v.ContextTokens, v.DeletionRatio, v.ContentDensity)
	return v
}

func grade(ctx int, deletion, density float64) (string, []string) {
	if ctx >= 5 && deletion <= 0.50 && density >= 0.40 {
		return QualityExcellent, nil
	}
	if ctx >= 3 && deletion <= 0.60 && density >= 0.30 {
		return QualityGood, nil
	}

	var reasons []string
	if ctx >= 2 || (ctx >= 1 && deletion <= 0.80) {
		if ctx < 3 {
			reasons = append(reasons, "low_context")
		}
		if deletion > 0.50 {
			reasons = append(reasons, "high_deletion")
		}
		if density < 0.30 {
			reasons = append(reasons, "low_content_density")
		}
		return QualityWeak, reasons
	}

	switch ctx {
	case 0:
		reasons = append(reasons, "no_context")
	case 1:
		reasons = append(reasons, "minimal_context")
	}
	if deletion > 0.80 {
		reasons = append(reasons, "very_high_deletion")
	}
	if density == 0 && ctx > 0 {
		reasons = append(reasons, "all_stop_words")
	}
	return QualityPoor, reasons
}
