package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup removes tags (such as the trailing </doc>) from a payload and
// decodes entities, keeping only text nodes. Every "<" followed by a letter
// opens a tag, so plain text such as "x<y" or "<user@host>" loses words;
// only use it on corpora whose payloads are HTML.
func StripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way we keep what we have
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.Write(z.Text())
		}
	}
}
