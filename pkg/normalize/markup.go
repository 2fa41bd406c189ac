package normalize

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var soundTag = regexp.MustCompile(`\[sound:[^\]]+\]`)

// StripMarkup removes Anki sound references and HTML tags from a field,
// unescapes entities and collapses whitespace. Tags become spaces so
// that "a<br>b" yields "a b".
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}
	s = soundTag.ReplaceAllString(s, " ")
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return collapse(s)
			}
			return collapse(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}
