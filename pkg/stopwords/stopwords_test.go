package stopwords

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	s := Default()
	for _, w := range []string{"ο", "οι", "δε", "και", "εν", "τησ"} {
		if !s.Contains(w) {
			t.Errorf("Default should contain %q", w)
		}
	}
	if s.Contains("κρηνη") {
		t.Error("κρηνη should not be a stop word")
	}
}

func TestNew_Normalizes(t *testing.T) {
	s := New([]string{"Τῆς", "  ", "δέ"})
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if !s.Contains("τησ") || !s.Contains("δε") {
		t.Errorf("All = %v", s.All())
	}
}

func TestLoad_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stop.txt")
	os.WriteFile(path, []byte("# Greek function words\nκαί\n\nγάρ\n# trailing\n"), 0o644)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 2 || !s.Contains("και") || !s.Contains("γαρ") {
		t.Errorf("All = %v", s.All())
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stop.yaml")
	os.WriteFile(path, []byte("terms:\n  - μέν\n  - οὖν\n"), 0o644)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.Contains("μεν") || !s.Contains("ουν") {
		t.Errorf("All = %v", s.All())
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOrDefault_Empty(t *testing.T) {
	s, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if s.Len() != Default().Len() {
		t.Errorf("Len = %d, want %d", s.Len(), Default().Len())
	}
}

func TestNilSet(t *testing.T) {
	var s *Set
	if s.Contains("ο") || s.Len() != 0 || s.All() != nil {
		t.Error("nil Set should be empty")
	}
}
