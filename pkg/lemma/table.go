package lemma

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/hoplite/pkg/normalize"
)

// Table is a form-to-headword dictionary held in memory. Keys and values
// are stored normalized.
type Table struct {
	forms map[string]string
}

// NewTable builds a Table from a raw form->lemma map.
func NewTable(forms map[string]string) *Table {
	t := &Table{forms: make(map[string]string, len(forms))}
	for f, l := range forms {
		t.add(f, l)
	}
	return t
}

// LoadTable reads a table from a .gob snapshot or a tab-separated file
// (form<TAB>lemma, # comments).
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return nil, fmt.Errorf("table backend: no table_path configured")
	}
	if strings.EqualFold(filepath.Ext(path), ".gob") {
		return loadTableGob(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lemma table: %w", err)
	}
	defer f.Close()

	t := &Table{forms: make(map[string]string)}
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		form, lemma, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("lemma table %s line %d: missing tab separator", path, line)
		}
		t.add(form, lemma)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lemma table: %w", err)
	}
	return t, nil
}

func loadTableGob(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var forms map[string]string
	if err := gob.NewDecoder(f).Decode(&forms); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	return NewTable(forms), nil
}

// SaveGob serializes the table to a gob snapshot at path.
func (t *Table) SaveGob(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(t.forms); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}
	return nil
}

func (t *Table) add(form, lemma string) {
	k, v := normalize.ForMatch(form), normalize.ForMatch(lemma)
	if k == "" || v == "" {
		return
	}
	t.forms[k] = v
}

func (t *Table) Name() string { return "table" }

// Lemma looks up the normalized token.
func (t *Table) Lemma(token string) (string, error) {
	if l, ok := t.forms[normalize.ForMatch(token)]; ok {
		return l, nil
	}
	return "", ErrUnknownForm
}

// Len returns the number of forms.
func (t *Table) Len() int { return len(t.forms) }
