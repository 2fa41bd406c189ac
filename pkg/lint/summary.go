package lint

import (
	"fmt"
	"io"

	"github.com/hazyhaar/hoplite/pkg/cloze"
	"github.com/hazyhaar/hoplite/pkg/detect"
)

// Confidence bands for cloze suggestions: High >= 0.75, Medium [0.5, 0.75),
// Low [0.3, 0.5).
type ConfidenceBands struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// TagSummary totals tag hygiene over a run.
type TagSummary struct {
	Total       int `json:"total"`
	Kept        int `json:"kept"`
	Deleted     int `json:"deleted"`
	Unknown     int `json:"unknown"`
	AutoAdded   int `json:"auto_added"`
	NeedsReview int `json:"needs_review"`
}

// Summary aggregates a run.
type Summary struct {
	Cards            int                  `json:"cards"`
	Errors           int                  `json:"errors"`
	Levels           map[detect.Level]int `json:"levels"`
	SelfLevels       map[detect.Level]int `json:"self_duplicate_levels"`
	Buckets          map[cloze.Bucket]int `json:"context_buckets"`
	Advice           map[string]int       `json:"context_advice"`
	ClozeCards       int                  `json:"cloze_cards"`
	ClozeQuality     map[string]int       `json:"cloze_quality"`
	ClozeRecommended int                  `json:"cloze_recommended"`
	Confidence       ConfidenceBands      `json:"cloze_confidence"`
	Tags             *TagSummary          `json:"tags,omitempty"`
}

// Summarize counts records. minConfidence decides ClozeRecommended only
// for records that do not carry the flag already.
func Summarize(records []Record, minConfidence float64) Summary {
	s := Summary{
		Cards:        len(records),
		Levels:       make(map[detect.Level]int),
		SelfLevels:   make(map[detect.Level]int),
		Buckets:      make(map[cloze.Bucket]int),
		Advice:       make(map[string]int),
		ClozeQuality: make(map[string]int),
	}
	for _, r := range records {
		if r.Error != "" {
			s.Errors++
		}
		if r.Detection.Level != "" {
			s.Levels[r.Detection.Level]++
		}
		s.SelfLevels[r.SelfLevel]++
		if r.Context.Bucket != "" {
			s.Buckets[r.Context.Bucket]++
			s.Advice[r.Context.Advice]++
		}
		if r.Validation != nil {
			s.ClozeCards++
			s.ClozeQuality[r.Validation.Quality]++
		}
		if rec := r.Recommendation; rec != nil {
			if r.ClozeRecommended || rec.Confidence >= minConfidence {
				s.ClozeRecommended++
			}
			switch c := rec.Confidence; {
			case c >= 0.75:
				s.Confidence.High++
			case c >= 0.5:
				s.Confidence.Medium++
			case c >= 0.3:
				s.Confidence.Low++
			}
		}
		if t := r.TagResult; t != nil {
			if s.Tags == nil {
				s.Tags = &TagSummary{}
			}
			s.Tags.Total += len(r.Tags)
			s.Tags.Kept += len(t.Kept)
			s.Tags.Deleted += len(t.Deleted)
			s.Tags.Unknown += len(t.Unknown)
			s.Tags.AutoAdded += len(t.AutoAdded)
			if t.NeedsReview {
				s.Tags.NeedsReview++
			}
		}
	}
	return s
}

var levelOrder = []detect.Level{detect.High, detect.Medium, detect.Low, detect.None}

// Write prints a human-readable summary.
func (s Summary) Write(w io.Writer) {
	if t := s.Tags; t != nil {
		fmt.Fprintln(w, "Tag hygiene:")
		fmt.Fprintf(w, "  tags processed:       %d\n", t.Total)
		fmt.Fprintf(w, "  kept (allowed):       %d\n", t.Kept)
		fmt.Fprintf(w, "  deleted (blocked):    %d\n", t.Deleted)
		fmt.Fprintf(w, "  unknown (review):     %d\n", t.Unknown)
		fmt.Fprintf(w, "  auto-added:           %d\n", t.AutoAdded)
		fmt.Fprintf(w, "  cards needing review: %d\n\n", t.NeedsReview)
	}

	if s.ClozeCards > 0 {
		fmt.Fprintln(w, "Cloze validation:")
		fmt.Fprintf(w, "  cloze cards:     %d\n", s.ClozeCards)
		fmt.Fprintf(w, "  non-cloze cards: %d\n", s.Cards-s.ClozeCards)
		for _, q := range []string{cloze.QualityExcellent, cloze.QualityGood, cloze.QualityWeak, cloze.QualityPoor} {
			n := s.ClozeQuality[q]
			fmt.Fprintf(w, "    %9s: %3d (%5.1f%%)\n", q, n, 100*float64(n)/float64(s.ClozeCards))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Context:")
	for _, b := range []cloze.Bucket{cloze.Rich, cloze.Minimal, cloze.Phrase, cloze.Isolated} {
		fmt.Fprintf(w, "  %-9s %d\n", b, s.Buckets[b])
	}
	for _, a := range []string{cloze.AdviceGood, cloze.AdviceConsiderEnhancing, cloze.AdviceNeedsContext} {
		fmt.Fprintf(w, "  %-19s %d\n", a, s.Advice[a])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Cloze recommendations:")
	fmt.Fprintf(w, "  recommended:               %d\n", s.ClozeRecommended)
	fmt.Fprintf(w, "  high confidence (>=0.75):  %d\n", s.Confidence.High)
	fmt.Fprintf(w, "  med confidence (0.5-0.75): %d\n", s.Confidence.Medium)
	fmt.Fprintf(w, "  low confidence (0.3-0.5):  %d\n\n", s.Confidence.Low)

	if self := s.Cards - s.SelfLevels[detect.None]; self > 0 {
		fmt.Fprintln(w, "Self-duplicates (within batch):")
		for _, l := range levelOrder[:3] {
			if n := s.SelfLevels[l]; n > 0 {
				fmt.Fprintf(w, "  %6s: %d\n", l, n)
			}
		}
		fmt.Fprintf(w, "  total : %d\n\n", self)
	}

	fmt.Fprintln(w, "Duplicates (reference collection):")
	for _, l := range levelOrder {
		fmt.Fprintf(w, "  %6s: %d\n", l, s.Levels[l])
	}
	fmt.Fprintf(w, "  total : %d\n", s.Cards)
	if s.Errors > 0 {
		fmt.Fprintf(w, "  errors: %d\n", s.Errors)
	}
}
