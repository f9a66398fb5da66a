package topicsim

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cognicore/textlab/pkg/textlab/internalerr"
)

// WriteTo writes one line per document:
//
//	docId wordId:count wordId:count ...
func (c *Corpus) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for _, doc := range c.Docs {
		var sb strings.Builder
		sb.WriteString(strconv.Itoa(doc.ID))
		for _, wc := range doc.Words {
			sb.WriteByte(' ')
			sb.WriteString(strconv.Itoa(wc.Word))
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(wc.Count))
		}
		sb.WriteByte('\n')
		n, err := bw.WriteString(sb.String())
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

// ReadDocuments parses the format written by WriteTo. Topic mixtures are
// not part of the format and come back nil.
func ReadDocuments(r io.Reader) ([]Document, error) {
	var docs []Document
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, &internalerr.RecordError{Line: lineNo, Reason: fmt.Sprintf("document id %q", fields[0])}
		}
		doc := Document{ID: id}
		for _, f := range fields[1:] {
			word, count, ok := strings.Cut(f, ":")
			if !ok {
				return nil, &internalerr.RecordError{Line: lineNo, Reason: fmt.Sprintf("word count %q", f)}
			}
			w, errW := strconv.Atoi(word)
			c, errC := strconv.Atoi(count)
			if errW != nil || errC != nil {
				return nil, &internalerr.RecordError{Line: lineNo, Reason: fmt.Sprintf("word count %q", f)}
			}
			doc.Words = append(doc.Words, WordCount{Word: w, Count: c})
		}
		docs = append(docs, doc)
	}
	return docs, scanner.Err()
}
