// Package cloze grades how much context a card carries and proposes or
// validates cloze deletions.
package cloze

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/hazyhaar/hoplite/pkg/normalize"
)

// clozePattern matches {{c1::content}} and {{c1::content::hint}}.
var clozePattern = regexp.MustCompile(`\{\{c(\d+)::([^:}]+?)(?:::([^}]+?))?\}\}`)

var clozeOpen = regexp.MustCompile(`\{\{c\d+::`)

// Token is one word of a field.
type Token struct {
	Surface    string // NFC, split at punctuation
	Normalized string
}

// IsCloze reports whether text already contains cloze markup.
func IsCloze(text string) bool {
	return clozeOpen.MatchString(text)
}

// Clean returns the NFC text of a field with sound and HTML tags removed.
func Clean(text string) string {
	return normalize.NFC(normalize.StripMarkup(text))
}

// Tokenize splits a field into words. Cloze markup contributes its
// content only (hints are dropped) and punctuation separates words.
func Tokenize(text string) []Token {
	t := Clean(text)
	if t == "" {
		return nil
	}
	t = clozePattern.ReplaceAllString(t, " $2 ")

	var out []Token
	for _, w := range strings.Fields(punctToSpace(t)) {
		out = append(out, Token{Surface: w, Normalized: normalize.ForMatch(w)})
	}
	return out
}

// punctToSpace splits words at punctuation, the way normalize.ForMatch does,
// so an elided ταῦτ' stays a token of its own.
func punctToSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return ' '
		}
		return r
	}, s)
}
