package vectorize

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/ingest"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/vocab"
)

// Mode selects how occurrence counts become vector entries.
type Mode int

const (
	// Counts keeps raw occurrence counts (bag of words).
	Counts Mode = iota
	// TermFrequency divides counts by the document's in-vocabulary token count.
	TermFrequency
)

func (m Mode) String() string {
	switch m {
	case Counts:
		return "counts"
	case TermFrequency:
		return "tf"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "counts" or "tf".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "counts", "bow":
		return Counts, nil
	case "tf", "tfidf":
		return TermFrequency, nil
	}
	return 0, fmt.Errorf("vectorize mode %q: %w", s, internalerr.ErrInvalidInput)
}

// Labeled is a document vector tagged with its document and label.
type Labeled struct {
	ID     string
	Label  string
	Vector []float64
}

// Vectorizer turns token streams into dense vectors over a dictionary.
type Vectorizer struct {
	dict *vocab.Dictionary
	mode Mode
}

// New creates a vectorizer for dict.
func New(dict *vocab.Dictionary, mode Mode) *Vectorizer {
	return &Vectorizer{dict: dict, mode: mode}
}

// Dim returns the vector length.
func (v *Vectorizer) Dim() int { return v.dict.Len() }

// Mode returns the vectorization mode.
func (v *Vectorizer) Mode() Mode { return v.mode }

// Positions maps words to dictionary positions, dropping words outside
// the dictionary.
func (v *Vectorizer) Positions(words []string) []int {
	out := make([]int, 0, len(words))
	for _, w := range words {
		if pos, ok := v.dict.Position(w); ok {
			out = append(out, pos)
		}
	}
	return out
}

// FromPositions builds the vector of a document from the dictionary
// positions of its tokens. In TermFrequency mode an empty position list is
// an *internalerr.EmptyVectorError.
func (v *Vectorizer) FromPositions(docID string, positions []int) ([]float64, error) {
	vec := make([]float64, v.dict.Len())
	for _, pos := range positions {
		if pos < 0 || pos >= len(vec) {
			return nil, fmt.Errorf("doc %q: position %d outside [0,%d): %w",
				docID, pos, len(vec), internalerr.ErrDimensionMismatch)
		}
		vec[pos]++
	}
	if v.mode == Counts {
		return vec, nil
	}

	if len(positions) == 0 {
		return nil, &internalerr.EmptyVectorError{DocID: docID}
	}
	total := float64(len(positions))
	for i := range vec {
		vec[i] /= total
	}
	return vec, nil
}

// Vector vectorizes a single token stream, such as a query.
func (v *Vectorizer) Vector(docID string, words []string) ([]float64, error) {
	return v.FromPositions(docID, v.Positions(words))
}

type docKey struct {
	id    string
	label string
}

// Corpus vectorizes every document of a tokenized corpus. Tokens are joined
// against the dictionary and regrouped per document, so documents without a
// single in-vocabulary token drop out of the result.
func (v *Vectorizer) Corpus(ctx context.Context, docs *dataset.Dataset[ingest.Tokens]) (*dataset.Dataset[Labeled], error) {
	env := docs.Env()

	occurrences, err := dataset.FlatMap(ctx, docs, func(t ingest.Tokens) []dataset.KV[string, docKey] {
		key := docKey{id: t.ID, label: t.Label}
		out := make([]dataset.KV[string, docKey], len(t.Words))
		for i, w := range t.Words {
			out[i] = dataset.Pair(w, key)
		}
		return out
	})
	if err != nil {
		return nil, fmt.Errorf("emit occurrences: %w", err)
	}

	joined, err := dataset.Join(ctx, v.dict.Entries(env), occurrences)
	if err != nil {
		return nil, fmt.Errorf("join dictionary: %w", err)
	}
	byDoc, err := dataset.Map(ctx, joined, func(kv dataset.KV[string, dataset.Joined[int, docKey]]) dataset.KV[docKey, int] {
		return dataset.Pair(kv.Value.Right, kv.Value.Left)
	})
	if err != nil {
		return nil, err
	}
	grouped, err := dataset.GroupByKey(ctx, byDoc)
	if err != nil {
		return nil, fmt.Errorf("group positions: %w", err)
	}

	vectors, err := dataset.TryMap(ctx, grouped, func(kv dataset.KV[docKey, []int]) (Labeled, error) {
		vec, err := v.FromPositions(kv.Key.id, kv.Value)
		if err != nil {
			return Labeled{}, err
		}
		return Labeled{ID: kv.Key.id, Label: kv.Key.label, Vector: vec}, nil
	})
	if err != nil {
		return nil, err
	}

	if dropped := docs.Count() - vectors.Count(); dropped > 0 {
		env.Log().Info("documents without dictionary words skipped", "skipped", dropped)
	}
	return vectors, nil
}
