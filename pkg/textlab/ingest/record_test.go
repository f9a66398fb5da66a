package ingest

import (
	"errors"
	"testing"

	"github.com/cognicore/textlab/pkg/textlab/internalerr"
)

func TestParseRecord(t *testing.T) {
	line := `<doc id="20_newsgroups/comp.graphics/37261" url="http://example.com/37261">From: someone Subject: 3d rendering</doc>`

	doc, err := ParseRecord(line, 1)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if doc.ID != "20_newsgroups/comp.graphics/37261" {
		t.Errorf("Unexpected ID %q", doc.ID)
	}
	if doc.Label != "comp.graphics" {
		t.Errorf("Unexpected label %q", doc.Label)
	}
	if doc.Text != "From: someone Subject: 3d rendering</doc>" {
		t.Errorf("Unexpected text %q", doc.Text)
	}
}

func TestParseRecordMissingMarkers(t *testing.T) {
	cases := map[string]string{
		"no id":   `<doc url="x">text`,
		"no url":  `<doc id="20_newsgroups/a/1">text`,
		"no text": `<doc id="20_newsgroups/a/1" url="x" text`,
		"empty":   `<doc id="" url="x">text`,
	}

	for name, line := range cases {
		_, err := ParseRecord(line, 42)
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if !errors.Is(err, internalerr.ErrMalformedRecord) {
			t.Errorf("%s: expected ErrMalformedRecord, got %v", name, err)
		}
		var recErr *internalerr.RecordError
		if !errors.As(err, &recErr) || recErr.Line != 42 {
			t.Errorf("%s: expected line 42 in error, got %v", name, err)
		}
	}
}

func TestIsRecordLine(t *testing.T) {
	if IsRecordLine("") {
		t.Error("Blank line should be skipped")
	}
	if IsRecordLine("</corpus>") {
		t.Error("Line without id should be skipped")
	}
	if !IsRecordLine(`<doc id="a/b/c" url="x">`) {
		t.Error("Record line should be kept")
	}
}

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"20_newsgroups/comp.graphics/37261":      "comp.graphics",
		"20_newsgroups/soc.religion.christian/1": "soc.religion.christian",
		"/alt.atheism/":                          "alt.atheism",
		"no-slashes":                             "",
		"one/slash":                              "",
	}
	for id, want := range cases {
		if got := Label(id); got != want {
			t.Errorf("Label(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestDocValidate(t *testing.T) {
	doc := Doc{ID: "20_newsgroups/sci.med/1", Text: "content"}
	if err := doc.Validate(); err != nil {
		t.Errorf("Valid doc should pass validation, got %v", err)
	}

	doc.ID = "   "
	if err := doc.Validate(); err == nil {
		t.Error("Should fail validation with whitespace-only ID")
	}
}
