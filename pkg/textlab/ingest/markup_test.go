package ingest

import "testing"

func TestStripMarkup(t *testing.T) {
	cases := map[string]string{
		"plain text":                       "plain text",
		"body text</doc>":                  "body text",
		"<p>Hello</p><p>world</p>":         "Hello world",
		"fish &amp; chips":                 "fish & chips",
		"<b>bold</b> and <i>italic</i>":    "bold  and  italic",
		"":                                 "",
	}
	for in, want := range cases {
		if got := StripMarkup(in); got != want {
			t.Errorf("StripMarkup(%q) = %q, want %q", in, got, want)
		}
	}
}
