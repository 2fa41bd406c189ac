// Package normalize turns Greek headwords and English glosses into the
// comparison keys used by every matching tier.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer transforms text before comparison.
type Normalizer func(string) string

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ForMatch produces the canonical key for Greek text: NFC, lowercase,
// punctuation to space, combining marks removed, final sigma folded,
// whitespace collapsed. ForMatch(ForMatch(s)) == ForMatch(s).
func ForMatch(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(validUTF8(s))
	s = strings.ToLower(s)
	s = punctToSpace(s)
	s, _, _ = transform.String(stripMarks, s)
	s = strings.ReplaceAll(s, "ς", "σ")
	return collapse(s)
}

// ForGloss lowercases, blanks out punctuation and collapses whitespace.
// Accents are kept: glosses are compared as written.
func ForGloss(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(validUTF8(s))
	return collapse(punctToSpace(s))
}

// NFC returns the composed form of s.
func NFC(s string) string {
	return norm.NFC.String(validUTF8(s))
}

// None returns s unchanged.
func None(s string) string {
	return s
}

// Get returns the normalizer for the given mode.
// Default is greek.
func Get(mode string) Normalizer {
	switch mode {
	case "greek":
		return ForMatch
	case "gloss":
		return ForGloss
	case "nfc":
		return NFC
	case "none":
		return None
	default:
		return ForMatch
	}
}

// Tokens splits an already normalized string on single spaces.
func Tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

func punctToSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return ' '
		}
		return r
	}, s)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func validUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}
