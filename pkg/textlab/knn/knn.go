package knn

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/vectorize"
)

// Neighbor is a corpus document scored against a query.
type Neighbor struct {
	ID    string
	Label string
	Score float64
}

// Vote is the number of selected neighbors carrying a label.
type Vote struct {
	Label string
	Count int
}

// Index answers nearest-neighbor queries by scanning a vectorized corpus.
type Index struct {
	docs *dataset.Dataset[vectorize.Labeled]
	sim  Similarity
}

// NewIndex creates an index over docs.
func NewIndex(docs *dataset.Dataset[vectorize.Labeled], sim Similarity) *Index {
	return &Index{docs: docs, sim: sim}
}

// Size returns the number of indexed documents.
func (ix *Index) Size() int { return ix.docs.Count() }

// Similarity returns the scoring function.
func (ix *Index) Similarity() Similarity { return ix.sim }

// byScore orders by descending score, then ascending document ID.
func byScore(a, b Neighbor) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Neighbors returns the k documents most similar to query.
func (ix *Index) Neighbors(ctx context.Context, query []float64, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k=%d: %w", k, internalerr.ErrInvalidInput)
	}
	scored, err := dataset.TryMap(ctx, ix.docs, func(doc vectorize.Labeled) (Neighbor, error) {
		if len(doc.Vector) != len(query) {
			return Neighbor{}, fmt.Errorf("doc %q has %d entries, query %d: %w",
				doc.ID, len(doc.Vector), len(query), internalerr.ErrDimensionMismatch)
		}
		return Neighbor{ID: doc.ID, Label: doc.Label, Score: ix.sim.Score(doc.Vector, query)}, nil
	})
	if err != nil {
		return nil, err
	}
	return dataset.Top(ctx, scored, k, byScore)
}

// Tally counts labels among neighbors, most frequent first. Equal counts
// are ordered by label.
func Tally(neighbors []Neighbor) []Vote {
	counts := lo.CountValuesBy(neighbors, func(n Neighbor) string { return n.Label })
	votes := lo.MapToSlice(counts, func(label string, count int) Vote {
		return Vote{Label: label, Count: count}
	})
	slices.SortFunc(votes, func(a, b Vote) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
	return votes
}

// Classify tallies the labels of the k nearest neighbors. The first vote
// is the prediction.
func (ix *Index) Classify(ctx context.Context, query []float64, k int) ([]Vote, error) {
	neighbors, err := ix.Neighbors(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return Tally(neighbors), nil
}
