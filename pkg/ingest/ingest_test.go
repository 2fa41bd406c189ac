package ingest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestParseCards_Delimiters(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"comma", "front,back,tags\nλύω,\"to loose, release\",verb greek\n"},
		{"semicolon", "Front;Back;Tags\nλύω;to loose, release;verb greek\n"},
		{"tab", "front\tback\ttags\nλύω\tto loose, release\tverb greek\n"},
		{"bom and reordered", "\ufefftags,FRONT,back\nverb greek,λύω,\"to loose, release\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := ParseCards(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseCards: %v", err)
			}
			if len(cards) != 1 {
				t.Fatalf("got %d cards, want 1", len(cards))
			}
			c := cards[0]
			if c.Front != "λύω" || c.Back != "to loose, release" || !slices.Equal(c.Tags, []string{"verb", "greek"}) {
				t.Errorf("card = %+v", c)
			}
		})
	}
}

func TestParseCards_RowsAndEmptyTags(t *testing.T) {
	cards, err := ParseCards(strings.NewReader("front,back,tags\nα,a,\nβ,b\nγ,c,x\n"))
	if err != nil {
		t.Fatalf("ParseCards: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("got %d cards, want 3", len(cards))
	}
	for i, c := range cards {
		if c.Row != i {
			t.Errorf("cards[%d].Row = %d", i, c.Row)
		}
	}
	if len(cards[0].Tags) != 0 || len(cards[1].Tags) != 0 {
		t.Errorf("empty tags: %v %v", cards[0].Tags, cards[1].Tags)
	}
}

func TestParseCards_MissingColumns(t *testing.T) {
	for _, input := range []string{"front,back\nα,a\n", ""} {
		_, err := ParseCards(strings.NewReader(input))
		if !errors.Is(err, ErrMissingColumns) {
			t.Errorf("ParseCards(%q) error = %v, want ErrMissingColumns", input, err)
		}
	}
}

func TestReadCards_Encoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.csv")
	// "café" in windows-1252.
	if err := os.WriteFile(path, []byte("front,back,tags\ncaf\xe9,coffee,\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cards, err := ReadCards(path, "windows-1252")
	if err != nil {
		t.Fatalf("ReadCards: %v", err)
	}
	if cards[0].Front != "café" {
		t.Errorf("Front = %q, want café", cards[0].Front)
	}
	if _, err := ReadCards(path, "no-such-encoding"); err == nil {
		t.Error("expected error for unknown encoding")
	}
	if _, err := ReadCards(filepath.Join(dir, "missing.csv"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.csv")
	rows := [][]string{{"λύω", "high"}, {"a,b", "none"}}
	if err := WriteCSV(path, []string{"front", "warning_level"}, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "front,warning_level\nλύω,high\n\"a,b\",none\n"
	if string(data) != want {
		t.Errorf("report = %q, want %q", data, want)
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	if err := WriteJSON(path, []Card{{Front: "λύω", Back: "to loose"}}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []Card
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Front != "λύω" {
		t.Errorf("got %+v", got)
	}
}
