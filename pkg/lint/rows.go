package lint

import (
	"strconv"
	"strings"

	"github.com/hazyhaar/hoplite/pkg/tags"
)

// Columns is the header of the CSV report.
var Columns = []string{
	"front", "back", "tags",
	"normalized_greek", "lemma", "warning_level", "match_reason", "matched_note_ids",
	"self_duplicate_level", "is_exact_self_duplicate", "self_duplicate_of_row",
	"is_lemma_self_duplicate", "lemma_duplicate_group",
	"context_level", "context_token_count", "context_recommendation",
	"cloze_recommended", "cloze_confidence", "cloze_target", "cloze_suggestion",
	"cloze_quality", "cloze_reasons",
	"tags_converted", "chapter", "source", "section",
	"tags_kept", "tags_deleted", "tags_unknown", "tags_auto_added", "tags_final", "tags_need_review",
	"error",
}

// Rows flattens the records for WriteCSV, in Columns order. Row numbers
// are 0-based batch positions; lists are comma separated except tags.
func (r Report) Rows() [][]string {
	out := make([][]string, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.row()
	}
	return out
}

func (rec Record) row() []string {
	d := rec.Detection
	sd := rec.SelfDuplicate

	var dupOf string
	if sd.DuplicateOf != nil {
		dupOf = strconv.Itoa(*sd.DuplicateOf)
	}

	var recommended, conf, target, suggestion string
	recommended = "false"
	if c := rec.Recommendation; c != nil {
		recommended = strconv.FormatBool(rec.ClozeRecommended)
		conf = strconv.FormatFloat(c.Confidence, 'f', 2, 64)
		target, suggestion = c.Target, c.Markup
	}

	var quality, reasons string
	if v := rec.Validation; v != nil {
		quality, reasons = v.Quality, strings.Join(v.Reasons, ",")
	}

	var kept, deleted, unknown, auto, final, review string
	if t := rec.TagResult; t != nil {
		kept, deleted, unknown = tags.Join(t.Kept), tags.Join(t.Deleted), tags.Join(t.Unknown)
		auto, final = tags.Join(t.AutoAdded), tags.Join(t.Final)
		review = strconv.FormatBool(t.NeedsReview)
	}

	return []string{
		rec.Front, rec.Back, tags.Join(rec.Tags),
		d.Normalized, d.Lemma, string(d.Level), d.Reason, strings.Join(d.MatchedIDs, ","),
		string(rec.SelfLevel), strconv.FormatBool(sd.IsExact), dupOf,
		strconv.FormatBool(sd.IsLemma), joinInts(sd.LemmaGroup),
		string(rec.Context.Bucket), strconv.Itoa(rec.Context.TokenCount), rec.Context.Advice,
		recommended, conf, target, suggestion,
		quality, reasons,
		tags.Join(rec.ConvertedTags), rec.Chapter, rec.Source, rec.Section,
		kept, deleted, unknown, auto, final, review,
		rec.Error,
	}
}

func joinInts(xs []int) string {
	s := make([]string, len(xs))
	for i, x := range xs {
		s[i] = strconv.Itoa(x)
	}
	return strings.Join(s, ",")
}
