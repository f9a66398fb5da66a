package tfidf

import (
	"context"
	"fmt"
	"math"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/vectorize"
	"github.com/cognicore/textlab/pkg/textlab/vocab"
)

// Frequencies holds per-position document frequencies of a corpus.
type Frequencies struct {
	DF   []int // documents with a positive entry at each position
	Docs int   // documents counted
}

// DocumentFrequency counts, for every position, the documents whose vector
// has a strictly positive entry there.
func DocumentFrequency(ctx context.Context, vectors *dataset.Dataset[vectorize.Labeled], dim int) (Frequencies, error) {
	freq, err := dataset.Aggregate(ctx, vectors,
		func() Frequencies { return Frequencies{DF: make([]int, dim)} },
		func(acc Frequencies, doc vectorize.Labeled) Frequencies {
			for i, x := range doc.Vector {
				if x > 0 && i < dim {
					acc.DF[i]++
				}
			}
			acc.Docs++
			return acc
		},
		func(a, b Frequencies) Frequencies {
			for i := range a.DF {
				a.DF[i] += b.DF[i]
			}
			a.Docs += b.Docs
			return a
		},
	)
	if err != nil {
		return Frequencies{}, fmt.Errorf("document frequency: %w", err)
	}
	return freq, nil
}

// IDF computes ln(Docs / DF[i]) for every position. A position with zero
// document frequency is reported as *internalerr.ZeroDFError, naming the
// word when dict is given.
func IDF(freq Frequencies, dict *vocab.Dictionary) ([]float64, error) {
	idf := make([]float64, len(freq.DF))
	total := float64(freq.Docs)
	for i, df := range freq.DF {
		if df == 0 {
			zeroErr := &internalerr.ZeroDFError{Position: i}
			if dict != nil {
				zeroErr.Word = dict.Word(i)
			}
			return nil, zeroErr
		}
		idf[i] = math.Log(total / float64(df))
	}
	return idf, nil
}

// Weight returns the elementwise product of tf and idf.
func Weight(tf, idf []float64) ([]float64, error) {
	if len(tf) != len(idf) {
		return nil, fmt.Errorf("tf has %d entries, idf %d: %w", len(tf), len(idf), internalerr.ErrDimensionMismatch)
	}
	out := make([]float64, len(tf))
	for i := range tf {
		out[i] = tf[i] * idf[i]
	}
	return out, nil
}

// Weighter applies a fitted IDF vector.
type Weighter struct {
	idf  []float64
	freq Frequencies
}

// Fit computes document frequencies and IDF over a vectorized corpus.
func Fit(ctx context.Context, vectors *dataset.Dataset[vectorize.Labeled], dict *vocab.Dictionary) (*Weighter, error) {
	freq, err := DocumentFrequency(ctx, vectors, dict.Len())
	if err != nil {
		return nil, err
	}
	idf, err := IDF(freq, dict)
	if err != nil {
		return nil, err
	}
	vectors.Env().Log().Info("fitted idf", "documents", freq.Docs, "dim", len(idf))
	return &Weighter{idf: idf, freq: freq}, nil
}

// NewWeighter wraps a precomputed IDF vector, for instance one loaded from
// a store.
func NewWeighter(idf []float64) *Weighter {
	return &Weighter{idf: append([]float64(nil), idf...)}
}

// IDF returns a copy of the IDF vector.
func (w *Weighter) IDF() []float64 { return append([]float64(nil), w.idf...) }

// Frequencies returns the document frequencies the weighter was fitted on.
// It is zero for weighters built with NewWeighter.
func (w *Weighter) Frequencies() Frequencies { return w.freq }

// Weight scales one vector.
func (w *Weighter) Weight(tf []float64) ([]float64, error) {
	return Weight(tf, w.idf)
}

// Apply scales every corpus vector.
func (w *Weighter) Apply(ctx context.Context, vectors *dataset.Dataset[vectorize.Labeled]) (*dataset.Dataset[vectorize.Labeled], error) {
	return dataset.TryMap(ctx, vectors, func(doc vectorize.Labeled) (vectorize.Labeled, error) {
		weighted, err := w.Weight(doc.Vector)
		if err != nil {
			return vectorize.Labeled{}, fmt.Errorf("doc %q: %w", doc.ID, err)
		}
		doc.Vector = weighted
		return doc, nil
	})
}
