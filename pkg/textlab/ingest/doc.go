package ingest

import (
	"errors"
	"strings"
)

// Doc is one corpus document after record extraction
type Doc struct {
	ID    string // e.g. 20_newsgroups/comp.graphics/37261
	Label string // newsgroup, derived from ID when empty
	Text  string
}

// Validate checks if the document has required fields
func (d *Doc) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("doc ID is required")
	}
	return nil
}

// Label extracts the category from a document identifier: the first
// segment enclosed in slashes, without the slashes.
// "20_newsgroups/comp.graphics/37261" yields "comp.graphics".
func Label(id string) string {
	i := strings.IndexByte(id, '/')
	if i < 0 {
		return ""
	}
	rest := id[i+1:]
	j := strings.IndexByte(rest, '/')
	if j < 0 {
		return ""
	}
	return rest[:j]
}
