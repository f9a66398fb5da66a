package vocab

import (
	"cmp"
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/ingest"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
)

// Dictionary maps the N most frequent corpus words to positions [0, N).
// Position 0 is the most frequent word.
type Dictionary struct {
	words []string
	index map[string]int
}

// NewDictionary assigns positions in slice order. Duplicate or empty words
// are rejected.
func NewDictionary(words []string) (*Dictionary, error) {
	index := make(map[string]int, len(words))
	for i, w := range words {
		if w == "" {
			return nil, fmt.Errorf("position %d: empty word: %w", i, internalerr.ErrInvalidInput)
		}
		if prev, ok := index[w]; ok {
			return nil, fmt.Errorf("word %q at positions %d and %d: %w", w, prev, i, internalerr.ErrInvalidInput)
		}
		index[w] = i
	}
	return &Dictionary{words: append([]string(nil), words...), index: index}, nil
}

// Len returns the number of entries.
func (d *Dictionary) Len() int { return len(d.words) }

// Position returns the position of word.
func (d *Dictionary) Position(word string) (int, bool) {
	pos, ok := d.index[word]
	return pos, ok
}

// Word returns the word at pos.
func (d *Dictionary) Word(pos int) string {
	if pos < 0 || pos >= len(d.words) {
		return ""
	}
	return d.words[pos]
}

// Words returns all words in position order.
func (d *Dictionary) Words() []string {
	return append([]string(nil), d.words...)
}

// Entries exposes the dictionary as a (word, position) dataset for joins.
func (d *Dictionary) Entries(env *dataset.Env) *dataset.Dataset[dataset.KV[string, int]] {
	return dataset.Parallelize(env, lo.Map(d.words, func(w string, i int) dataset.KV[string, int] {
		return dataset.Pair(w, i)
	}))
}

// WordCount is a word with its number of occurrences.
type WordCount struct {
	Word  string
	Count int
}

// ByFrequency orders by descending count, then ascending word, so ties
// rank the same way on every run.
func ByFrequency(a, b WordCount) int {
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	return strings.Compare(a.Word, b.Word)
}

// TopWords counts every word occurrence and returns the k most frequent.
func TopWords(ctx context.Context, words *dataset.Dataset[string], k int) ([]WordCount, error) {
	ones, err := dataset.Map(ctx, words, func(w string) dataset.KV[string, int] {
		return dataset.Pair(w, 1)
	})
	if err != nil {
		return nil, err
	}
	counts, err := dataset.ReduceByKey(ctx, ones, func(a, b int) int { return a + b })
	if err != nil {
		return nil, err
	}
	asCounts, err := dataset.Map(ctx, counts, func(kv dataset.KV[string, int]) WordCount {
		return WordCount{Word: kv.Key, Count: kv.Value}
	})
	if err != nil {
		return nil, err
	}
	return dataset.Top(ctx, asCounts, k, ByFrequency)
}

// Build selects the n most frequent tokens of the corpus as the dictionary.
// A corpus with fewer than n distinct tokens yields a smaller dictionary.
func Build(ctx context.Context, docs *dataset.Dataset[ingest.Tokens], n int) (*Dictionary, error) {
	if n <= 0 {
		return nil, fmt.Errorf("dictionary size %d: %w", n, internalerr.ErrInvalidInput)
	}

	words, err := dataset.FlatMap(ctx, docs, func(t ingest.Tokens) []string { return t.Words })
	if err != nil {
		return nil, fmt.Errorf("flatten tokens: %w", err)
	}
	top, err := TopWords(ctx, words, n)
	if err != nil {
		return nil, fmt.Errorf("count words: %w", err)
	}

	if len(top) < n {
		docs.Env().Log().Warn("corpus has fewer distinct words than the dictionary size",
			"requested", n, "distinct", len(top))
	}

	return NewDictionary(lo.Map(top, func(wc WordCount, _ int) string { return wc.Word }))
}
