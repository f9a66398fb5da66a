package ingest

import (
	"strings"

	"github.com/cognicore/textlab/pkg/textlab/internalerr"
)

// Record markers of the one-document-per-line corpus format:
//
//	<doc id="20_newsgroups/sci.med/58862" url="..."> text ...
const (
	idMarker   = `id="`
	urlMarker  = `" url=`
	textMarker = `">`
)

// IsRecordLine reports whether a raw line can hold a document. Lines
// without an id attribute are headers or blank lines and are skipped.
func IsRecordLine(line string) bool {
	return strings.Contains(line, "id")
}

// ParseRecord extracts the identifier and text payload of a corpus line.
// lineNo is reported in the error when a marker is missing.
func ParseRecord(line string, lineNo int) (Doc, error) {
	start := strings.Index(line, idMarker)
	if start < 0 {
		return Doc{}, &internalerr.RecordError{Line: lineNo, Reason: "missing " + idMarker}
	}
	start += len(idMarker)

	end := strings.Index(line[start:], urlMarker)
	if end < 0 {
		return Doc{}, &internalerr.RecordError{Line: lineNo, Reason: "missing " + urlMarker}
	}
	id := line[start : start+end]
	if strings.TrimSpace(id) == "" {
		return Doc{}, &internalerr.RecordError{Line: lineNo, Reason: "empty id"}
	}

	rest := start + end
	text := strings.Index(line[rest:], textMarker)
	if text < 0 {
		return Doc{}, &internalerr.RecordError{Line: lineNo, Reason: "missing " + textMarker}
	}

	return Doc{
		ID:    id,
		Label: Label(id),
		Text:  line[rest+text+len(textMarker):],
	}, nil
}
