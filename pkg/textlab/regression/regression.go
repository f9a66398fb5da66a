package regression

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/vectorize"
)

// ReligionGroups are the newsgroups treated as the positive class by
// default.
var ReligionGroups = []string{"soc.religion.christian", "alt.atheism", "talk.religion.misc"}

// Classes decides whether a label belongs to the positive class.
type Classes func(label string) bool

// LabelSet returns Classes matching any of labels exactly.
func LabelSet(labels ...string) Classes {
	set := lo.SliceToMap(labels, func(l string) (string, struct{}) { return l, struct{}{} })
	return func(label string) bool {
		_, ok := set[label]
		return ok
	}
}

// Model is a coefficient vector learned from whitened corpus vectors.
type Model struct {
	Coefficients []float64
	Positives    int
	Negatives    int
}

type accumulator struct {
	sum       []float64
	pos, neg  int
	dimErrDoc string
}

// Train sums every row, negated when its label is not positive. With rows
// already whitened by the inverse Gram matrix this is the least-squares
// fit of ±1 targets.
func Train(ctx context.Context, rows *dataset.Dataset[vectorize.Labeled], dim int, positive Classes) (*Model, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension %d: %w", dim, internalerr.ErrInvalidInput)
	}
	acc, err := dataset.Aggregate(ctx, rows,
		func() *accumulator { return &accumulator{sum: make([]float64, dim)} },
		func(a *accumulator, row vectorize.Labeled) *accumulator {
			if len(row.Vector) != dim {
				if a.dimErrDoc == "" {
					a.dimErrDoc = row.ID
				}
				return a
			}
			sign := -1.0
			if positive(row.Label) {
				sign = 1
				a.pos++
			} else {
				a.neg++
			}
			for i, x := range row.Vector {
				a.sum[i] += sign * x
			}
			return a
		},
		func(a, b *accumulator) *accumulator {
			for i := range a.sum {
				a.sum[i] += b.sum[i]
			}
			a.pos += b.pos
			a.neg += b.neg
			if a.dimErrDoc == "" {
				a.dimErrDoc = b.dimErrDoc
			}
			return a
		},
	)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	if acc.dimErrDoc != "" {
		return nil, fmt.Errorf("doc %q: row length differs from %d: %w", acc.dimErrDoc, dim, internalerr.ErrDimensionMismatch)
	}

	rows.Env().Log().Info("trained regression", "dim", dim, "positives", acc.pos, "negatives", acc.neg)
	return &Model{Coefficients: acc.sum, Positives: acc.pos, Negatives: acc.neg}, nil
}

// Score is the dot product of v with the coefficients.
func (m *Model) Score(v []float64) (float64, error) {
	if len(v) != len(m.Coefficients) {
		return 0, fmt.Errorf("vector has %d entries, model %d: %w",
			len(v), len(m.Coefficients), internalerr.ErrDimensionMismatch)
	}
	score := 0.0
	for i, x := range v {
		score += x * m.Coefficients[i]
	}
	return score, nil
}

// Predict reports whether v falls in the positive class.
func (m *Model) Predict(v []float64) (bool, float64, error) {
	score, err := m.Score(v)
	if err != nil {
		return false, 0, err
	}
	return score > 0, score, nil
}
