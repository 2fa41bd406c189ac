package deck

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hazyhaar/hoplite/pkg/normalize"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Entry is one note of the reference collection.
type Entry struct {
	SourceID string `json:"source_id"`
	Model    string `json:"model"`
	Deck     string `json:"deck,omitempty"`
	Greek    string `json:"greek"`
	English  string `json:"english"`
}

// ExportOptions tunes LoadExport.
type ExportOptions struct {
	Encoding string // source encoding, default utf-8
	Logger   *slog.Logger
}

// ExportStats counts what the parser kept and skipped.
type ExportStats struct {
	Notes     int `json:"notes"`
	Ignored   int `json:"ignored"`
	Malformed int `json:"malformed"`
}

// header holds the #key:value directives of an Anki plain-text export.
// Column numbers are 1-based as written by Anki.
type header struct {
	separator   rune
	html        bool
	guidCol     int
	notetypeCol int
	deckCol     int
	tagsCol     int
}

// LoadExport parses an Anki "notes in plain text" export and returns the
// entries whose note type is not ignored by fm, in file order.
func LoadExport(path string, fm *FieldMap, opts ExportOptions) ([]Entry, ExportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ExportStats{}, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if enc := opts.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, ExportStats{}, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}
	entries, stats, err := ParseExport(reader, fm)
	if err != nil {
		return nil, stats, fmt.Errorf("export %s: %w", path, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("reference export loaded", "path", path,
		"notes", stats.Notes, "ignored", stats.Ignored, "malformed", stats.Malformed)
	return entries, stats, nil
}

// ParseExport parses export content from r.
func ParseExport(r io.Reader, fm *FieldMap) ([]Entry, ExportStats, error) {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, ExportStats{}, err
	}

	cr := csv.NewReader(br)
	cr.Comma = h.separator
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	firstField := max(h.guidCol, h.notetypeCol, h.deckCol)

	var (
		entries []Entry
		stats   ExportStats
		row     int
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row: %w", err)
		}
		row++
		if len(record) < firstField+1 {
			stats.Malformed++
			continue
		}

		model := column(record, h.notetypeCol)
		gIdx, eIdx, ignore := fm.Resolve(model)
		if ignore {
			stats.Ignored++
			continue
		}

		end := len(record)
		if h.tagsCol > firstField && h.tagsCol <= len(record) {
			end = h.tagsCol - 1
		} else if h.tagsCol == 0 && len(record) > firstField+1 {
			// No tags directive: the last column is tags.
			end = len(record) - 1
		}
		fields := record[firstField:end]

		id := strings.Trim(strings.TrimSpace(column(record, h.guidCol)), `"`)
		if id == "" {
			id = "row:" + strconv.Itoa(row)
		}
		entries = append(entries, Entry{
			SourceID: id,
			Model:    model,
			Deck:     column(record, h.deckCol),
			Greek:    h.clean(field(fields, gIdx)),
			English:  h.clean(field(fields, eIdx)),
		})
		stats.Notes++
	}
	return entries, stats, nil
}

func readHeader(br *bufio.Reader) (header, error) {
	h := header{separator: '\t', html: true, guidCol: 1, notetypeCol: 2, deckCol: 3}
	for {
		b, err := br.Peek(1)
		if err == io.EOF {
			return h, nil
		}
		if err != nil {
			return h, fmt.Errorf("read header: %w", err)
		}
		if b[0] != '#' {
			return h, nil
		}
		text, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return h, fmt.Errorf("read header: %w", err)
		}
		key, value, ok := strings.Cut(strings.TrimSpace(text[1:]), ":")
		if !ok {
			continue
		}
		key, value = strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value)
		switch key {
		case "separator":
			h.separator = parseSeparator(value)
		case "html":
			h.html = strings.EqualFold(value, "true")
		case "guid column":
			h.guidCol = atoiOr(value, h.guidCol)
		case "notetype column":
			h.notetypeCol = atoiOr(value, h.notetypeCol)
		case "deck column":
			h.deckCol = atoiOr(value, h.deckCol)
		case "tags column":
			h.tagsCol = atoiOr(value, 0)
		}
		if err == io.EOF {
			return h, nil
		}
	}
}

func (h header) clean(s string) string {
	if h.html {
		return normalize.StripMarkup(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

func parseSeparator(v string) rune {
	switch strings.ToLower(v) {
	case "tab", "":
		return '\t'
	case "comma":
		return ','
	case "semicolon":
		return ';'
	case "space":
		return ' '
	case "pipe":
		return '|'
	case "colon":
		return ':'
	}
	return []rune(v)[0]
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// column returns the 1-based column n, or "" if absent.
func column(record []string, n int) string {
	if n < 1 || n > len(record) {
		return ""
	}
	return strings.TrimSpace(record[n-1])
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
