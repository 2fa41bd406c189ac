package cloze

import (
	"slices"
	"strings"
	"testing"

	"github.com/hazyhaar/hoplite/pkg/detect"
	"github.com/hazyhaar/hoplite/pkg/stopwords"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"λύω", []string{"λύω"}},
		{"ὁ ἄνθρωπος, ὃς λέγει.", []string{"ὁ", "ἄνθρωπος", "ὃς", "λέγει"}},
		{"{{c1::λόγος}} ἐστι", []string{"λόγος", "ἐστι"}},
		{"{{c1::λόγος::noun}} ἐστι", []string{"λόγος", "ἐστι"}},
		{"<b>ἡ</b> κρήνη [sound:k.mp3]", []string{"ἡ", "κρήνη"}},
		{"ταῦτ'εἶπεν", []string{"ταῦτ", "εἶπεν"}},
		{" ; , · ", nil},
		{"", nil},
	}
	for _, tt := range tests {
		var got []string
		for _, tok := range Tokenize(tt.input) {
			got = append(got, tok.Surface)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTokenize_DecomposedInput(t *testing.T) {
	pre := Tokenize("λύω καλῶς")
	dec := Tokenize("λ\u03c5\u0301ω καλ\u03c9\u0342ς")
	if len(pre) != len(dec) {
		t.Fatalf("token counts differ: %d vs %d", len(pre), len(dec))
	}
	for i := range pre {
		if pre[i] != dec[i] {
			t.Errorf("token %d: %+v vs %+v", i, pre[i], dec[i])
		}
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		n    int
		want Bucket
	}{
		{0, Isolated}, {1, Isolated}, {2, Phrase}, {3, Phrase}, {4, Minimal}, {5, Rich}, {12, Rich},
	}
	for _, tt := range tests {
		if got := BucketFor(tt.n); got != tt.want {
			t.Errorf("BucketFor(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestClassifyContext(t *testing.T) {
	tests := []struct {
		front  string
		bucket Bucket
		advice string
	}{
		{"λύω", Isolated, AdviceNeedsContext},
		{"ἡ κρήνη", Phrase, AdviceConsiderEnhancing},
		{"πρὸς τὸν ἀγρόν", Phrase, AdviceConsiderEnhancing},
		{"οἱ δὲ βόες ἕλκουσι", Minimal, AdviceGood},
		{"οἱ δὲ βόες ἕλκουσι τὸ ἄροτρον.", Rich, AdviceGood},
		{"{{c1::λόγος}} ;", Isolated, AdviceNeedsContext},
	}
	for _, tt := range tests {
		got := ClassifyContext(tt.front)
		if got.Bucket != tt.bucket || got.Advice != tt.advice {
			t.Errorf("ClassifyContext(%q) = %+v, want %s/%s", tt.front, got, tt.bucket, tt.advice)
		}
	}
}

func recommend(front string, tags []string, level detect.Level) *Recommendation {
	rc := NewRecommender(stopwords.Default())
	return rc.Recommend(front, tags, level, ClassifyContext(front))
}

func TestRecommend_RichSentence(t *testing.T) {
	rec := recommend("οἱ δὲ βόες ἕλκουσι τὸ ἄροτρον.", nil, detect.None)
	if rec == nil {
		t.Fatal("expected a recommendation")
	}
	if rec.Target != "ἄροτρον" {
		t.Errorf("Target = %q, want ἄροτρον", rec.Target)
	}
	if rec.Markup != "οἱ δὲ βόες ἕλκουσι τὸ {{c1::ἄροτρον}}." {
		t.Errorf("Markup = %q", rec.Markup)
	}
	if rec.Kind != KindTargetWord || rec.Reason != "context_rich_tokens_6" {
		t.Errorf("Kind = %q, Reason = %q", rec.Kind, rec.Reason)
	}
	if rec.Confidence < 0.75 {
		t.Errorf("Confidence = %v, want >= 0.75", rec.Confidence)
	}
}

func TestRecommend_VerbTagPicksFirst(t *testing.T) {
	rec := recommend("ἕλκουσι τὸ ἄροτρον οἱ βόες", []string{"greek", "verb"}, detect.None)
	if rec == nil || rec.Target != "ἕλκουσι" || rec.Kind != KindMorphology || rec.Hint != "verb form" {
		t.Errorf("rec = %+v", rec)
	}
}

func TestRecommend_DuplicatePenalty(t *testing.T) {
	front := "ὁ ἀνὴρ τὸν ἵππον ἐν τῷ ἀγρῷ λύει"
	clean := recommend(front, nil, detect.None)
	dup := recommend(front, nil, detect.High)
	if clean == nil || dup == nil {
		t.Fatal("expected recommendations")
	}
	if !(clean.Confidence > dup.Confidence) {
		t.Errorf("none %v should exceed high %v", clean.Confidence, dup.Confidence)
	}
	med := recommend(front, nil, detect.Medium)
	if !(clean.Confidence > med.Confidence && med.Confidence > dup.Confidence) {
		t.Errorf("confidences not ordered: %v %v %v", clean.Confidence, med.Confidence, dup.Confidence)
	}
}

func TestRecommend_MoreContextHigherConfidence(t *testing.T) {
	short := recommend("ὁ ἵππος", nil, detect.None)
	long := recommend("ὁ ἵππος ἐν τῷ ἀγρῷ τρέχει ταχέως", nil, detect.None)
	if short == nil || long == nil {
		t.Fatal("expected recommendations")
	}
	if !(long.Confidence > short.Confidence) {
		t.Errorf("long %v should exceed short %v", long.Confidence, short.Confidence)
	}
}

func TestRecommend_NoTarget(t *testing.T) {
	// Only stop words, and a content word that repeats.
	if rec := recommend("καὶ δὲ γάρ", nil, detect.None); rec != nil {
		t.Errorf("stop words only: got %+v", rec)
	}
	if rec := recommend("λόγος λόγος λόγος", nil, detect.None); rec != nil {
		t.Errorf("repeated word: got %+v", rec)
	}
	if rec := recommend("", nil, detect.None); rec != nil {
		t.Errorf("empty: got %+v", rec)
	}
}

func TestRecommend_ElidedWord(t *testing.T) {
	rec := recommend("ὁ ἀνὴρ τοῖς πολίταις ταῦτ'εἶπεν", nil, detect.None)
	if rec == nil {
		t.Fatal("expected a recommendation")
	}
	if rec.Target != "εἶπεν" {
		t.Errorf("Target = %q, want εἶπεν", rec.Target)
	}
	if rec.Markup != "ὁ ἀνὴρ τοῖς πολίταις ταῦτ'{{c1::εἶπεν}}" {
		t.Errorf("Markup = %q", rec.Markup)
	}
}

func TestRecommend_MarkupAlwaysPresent(t *testing.T) {
	fronts := []string{
		"ταῦτ'εἶπεν ὁ ἀνήρ",
		"δι'ἀγορᾶς ἔρχεται",
		"ἀλλ'οὐ-ποτε λέγει",
	}
	for _, f := range fronts {
		rec := recommend(f, nil, detect.None)
		if rec == nil {
			continue
		}
		if !strings.Contains(rec.Markup, "{{c1::"+rec.Target+"}}") {
			t.Errorf("Recommend(%q): target %q not marked up in %q", f, rec.Target, rec.Markup)
		}
	}
}

func TestRecommend_AlreadyCloze(t *testing.T) {
	if rec := recommend("ὁ {{c1::λόγος}} ἐστι καλός", nil, detect.None); rec != nil {
		t.Errorf("got %+v", rec)
	}
}

func TestRecommend_Clamped(t *testing.T) {
	rc := &Recommender{Stop: stopwords.Default(), Weights: Weights{Base: 2}}
	rec := rc.Recommend("λόγος", nil, detect.None, ClassifyContext("λόγος"))
	if rec == nil || rec.Confidence != 1 {
		t.Errorf("rec = %+v, want confidence 1", rec)
	}
	rc.Weights = Weights{Base: -1}
	rec = rc.Recommend("λόγος", nil, detect.None, ClassifyContext("λόγος"))
	if rec == nil || rec.Confidence != 0 {
		t.Errorf("rec = %+v, want confidence 0", rec)
	}
}

func TestMarkup_WordBoundary(t *testing.T) {
	got := markup("λόγοςλόγος λόγος", "λόγος")
	if got != "λόγοςλόγος {{c1::λόγος}}" {
		t.Errorf("markup = %q", got)
	}
	if got := markup("abc", "λόγος"); got != "" {
		t.Errorf("markup = %q, want empty", got)
	}
}

func TestValidate(t *testing.T) {
	stop := stopwords.Default()
	tests := []struct {
		front   string
		quality string
		reasons []string
	}{
		{"ὁ ἀνὴρ {{c1::λύει}} τὸν ἵππον ἐν ἀγρῷ", QualityExcellent, nil},
		{"ἄνθρωπος {{c1::λύει}} ἵππον καλόν", QualityGood, nil},
		{"ὁ {{c1::ἀνήρ}} τὸν", QualityWeak, []string{"low_context", "low_content_density"}},
		{"{{c1::λύει τὸν}} ἵππον", QualityWeak, []string{"low_context", "high_deletion"}},
		{"{{c1::ὁ ἀνὴρ λύει τὸν ἵππον}} καί", QualityPoor, []string{"minimal_context", "very_high_deletion", "all_stop_words"}},
		{"{{c1::λύει}}", QualityPoor, []string{"no_context", "very_high_deletion"}},
		{"ὁ λόγος", QualityNA, nil},
	}
	for _, tt := range tests {
		v := Validate(tt.front, stop)
		if v.Quality != tt.quality || !slices.Equal(v.Reasons, tt.reasons) {
			t.Errorf("Validate(%q) = %s %v, want %s %v", tt.front, v.Quality, v.Reasons, tt.quality, tt.reasons)
		}
	}
}

func TestParse(t *testing.T) {
	segs, ctx := Parse("<i>ὁ</i> {{c1::ἀνήρ::noun}} {{c2::λύει}}")
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2", len(segs))
	}
	if segs[0] != (Segment{Number: 1, Content: "ἀνήρ", Hint: "noun"}) || segs[1].Number != 2 {
		t.Errorf("segments = %+v", segs)
	}
	if got := Tokenize(ctx); len(got) != 1 || got[0].Surface != "ὁ" {
		t.Errorf("context = %q", ctx)
	}
}
