package tags

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

const schemaYAML = `allowed_tags: [noun, verb, article, greek, athenaze]
blocked_tags: [todo, leech]
auto_tag_rules:
  - name: article-front
    pattern: '^(ο|η|το) '
    tags: [article, noun]
  - name: verb-gloss
    pattern: '^to '
    tags: [verb]
    match_field: back
  - name: blocked-tag
    pattern: '.'
    tags: [leech, unlisted]
`

func loadTestSchema(t *testing.T) *Schema {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tag_schema.yaml")
	if err := os.WriteFile(path, []byte(schemaYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSchema(path)
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	return s
}

func TestAnalyze(t *testing.T) {
	s := loadTestSchema(t)
	res := s.Analyze("λύω", "to loose", Split("Greek verb TODO random verb random"), false)

	if !slices.Equal(res.Kept, []string{"greek", "verb"}) {
		t.Errorf("Kept = %v", res.Kept)
	}
	if !slices.Equal(res.Deleted, []string{"todo"}) {
		t.Errorf("Deleted = %v", res.Deleted)
	}
	if !slices.Equal(res.Unknown, []string{"random"}) {
		t.Errorf("Unknown = %v", res.Unknown)
	}
	if res.AutoAdded != nil {
		t.Errorf("AutoAdded = %v, want nil without autoTag", res.AutoAdded)
	}
	if !res.NeedsReview {
		t.Error("NeedsReview = false, want true")
	}
	if !slices.Equal(res.Final, []string{"greek", "verb"}) {
		t.Errorf("Final = %v", res.Final)
	}
}

func TestAnalyze_AutoTag(t *testing.T) {
	s := loadTestSchema(t)
	res := s.Analyze("ἡ κρήνη", "spring", Split("noun"), true)

	// noun is already kept; leech is blocked; unlisted is not allowed.
	if !slices.Equal(res.AutoAdded, []string{"article"}) {
		t.Errorf("AutoAdded = %v, want [article]", res.AutoAdded)
	}
	if !slices.Equal(res.Final, []string{"noun", "article"}) {
		t.Errorf("Final = %v", res.Final)
	}
	if res.NeedsReview {
		t.Error("NeedsReview = true, want false")
	}
}

func TestAnalyze_AutoTagBack(t *testing.T) {
	s := loadTestSchema(t)
	res := s.Analyze("λύω", "To loose, release", nil, true)
	if !slices.Equal(res.AutoAdded, []string{"verb"}) {
		t.Errorf("AutoAdded = %v, want [verb]", res.AutoAdded)
	}
}

func TestCompile_BadPattern(t *testing.T) {
	_, err := Compile(SchemaFile{AutoTagRules: []RuleSpec{{Name: "bad", Pattern: "("}}})
	if err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestCompile_BadField(t *testing.T) {
	_, err := Compile(SchemaFile{AutoTagRules: []RuleSpec{{Name: "x", Pattern: ".", MatchField: "tags"}}})
	if err == nil {
		t.Error("expected error for unknown match_field")
	}
}

func TestCaseSensitive(t *testing.T) {
	s, err := Compile(SchemaFile{AllowedTags: []string{"Noun"}, CaseSensitive: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res := s.Analyze("", "", []string{"Noun", "noun"}, false)
	if !slices.Equal(res.Kept, []string{"Noun"}) || !slices.Equal(res.Unknown, []string{"noun"}) {
		t.Errorf("res = %+v", res)
	}
}

func TestSplitJoin(t *testing.T) {
	got := Split("  a  b\tc ")
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Split = %v", got)
	}
	if Join(got) != "a b c" {
		t.Errorf("Join = %q", Join(got))
	}
}
