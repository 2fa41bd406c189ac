// Package ingest reads candidate cards from CSV and writes lint reports.
package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/hazyhaar/hoplite/pkg/tags"
)

// ErrMissingColumns is returned when the header lacks front, back or tags.
var ErrMissingColumns = errors.New("missing required columns")

// Card is one candidate card. Row is its 0-based position in the batch.
type Card struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags,omitempty"`
	Row   int      `json:"-"`
}

// ReadCards reads a candidate CSV file. enc names the source encoding
// ("" or utf-8 for none).
func ReadCards(path, enc string) ([]Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candidates: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		r = transform.NewReader(f, e.NewDecoder())
	}
	cards, err := ParseCards(r)
	if err != nil {
		return nil, fmt.Errorf("candidates %s: %w", path, err)
	}
	return cards, nil
}

// ParseCards parses candidate CSV content. The delimiter is taken from the
// header line: semicolon, then tab, then comma.
func ParseCards(r io.Reader) ([]Card, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(peekLen(br))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(string(first))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	var missing []string
	for _, want := range []string{"front", "back", "tags"} {
		if _, ok := cols[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var cards []Card
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(cards)+1, err)
		}
		cards = append(cards, Card{
			Front: get(rec, cols["front"]),
			Back:  get(rec, cols["back"]),
			Tags:  tags.Split(get(rec, cols["tags"])),
			Row:   len(cards),
		})
	}
	return cards, nil
}

// peekLen bounds the header peek to the reader's buffer.
func peekLen(br *bufio.Reader) int {
	return min(4096, br.Size())
}

func sniffDelimiter(sample string) rune {
	line, _, _ := strings.Cut(sample, "\n")
	switch {
	case strings.Contains(line, ";"):
		return ';'
	case strings.Contains(line, "\t"):
		return '\t'
	}
	return ','
}

func get(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}

// WriteCSV writes header and rows to path, creating parent directories.
func WriteCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write report header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

// WriteJSON writes v as indented JSON to path, creating parent directories.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
