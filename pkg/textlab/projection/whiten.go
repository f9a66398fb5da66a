package projection

import (
	"context"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/vectorize"
)

// MaxCondition is the largest Gram condition number accepted by FitWhitener.
const MaxCondition = 1e12

// Gram sums the outer products of all corpus vectors.
func Gram(ctx context.Context, vectors *dataset.Dataset[vectorize.Labeled], dim int) (*mat.SymDense, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("gram dimension %d: %w", dim, internalerr.ErrInvalidInput)
	}
	var (
		mu  sync.Mutex
		bad error
	)
	gram, err := dataset.Aggregate(ctx, vectors,
		func() *mat.SymDense { return mat.NewSymDense(dim, nil) },
		func(acc *mat.SymDense, doc vectorize.Labeled) *mat.SymDense {
			if len(doc.Vector) != dim {
				mu.Lock()
				defer mu.Unlock()
				bad = fmt.Errorf("doc %q has %d entries, gram expects %d: %w",
					doc.ID, len(doc.Vector), dim, internalerr.ErrDimensionMismatch)
				return acc
			}
			acc.SymRankOne(acc, 1, mat.NewVecDense(dim, doc.Vector))
			return acc
		},
		func(a, b *mat.SymDense) *mat.SymDense {
			a.AddSym(a, b)
			return a
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gram: %w", err)
	}
	if bad != nil {
		return nil, bad
	}
	return gram, nil
}

// Whitener left-multiplies vectors by the inverse Gram matrix of the corpus
// it was fitted on.
type Whitener struct {
	gram    *mat.SymDense // nil when restored from an inverse
	inverse *mat.SymDense
}

// FitWhitener accumulates the Gram matrix of vectors and inverts it through
// a Cholesky factorization. A Gram matrix that is not positive definite, or
// whose condition number exceeds MaxCondition, is reported as
// *internalerr.SingularError.
func FitWhitener(ctx context.Context, vectors *dataset.Dataset[vectorize.Labeled], dim int) (*Whitener, error) {
	gram, err := Gram(ctx, vectors, dim)
	if err != nil {
		return nil, err
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return nil, &internalerr.SingularError{Dim: dim, Cond: math.Inf(1)}
	}
	if cond := chol.Cond(); cond > MaxCondition {
		return nil, &internalerr.SingularError{Dim: dim, Cond: cond}
	}

	inverse := mat.NewSymDense(dim, nil)
	if err := chol.InverseTo(inverse); err != nil {
		return nil, &internalerr.SingularError{Dim: dim, Cond: chol.Cond()}
	}

	vectors.Env().Log().Info("fitted whitener", "dim", dim, "documents", vectors.Count(), "cond", chol.Cond())
	return &Whitener{gram: gram, inverse: inverse}, nil
}

// NewWhitener restores a whitener from a row-major inverse Gram matrix.
func NewWhitener(dim int, inverse []float64) (*Whitener, error) {
	if dim <= 0 || len(inverse) != dim*dim {
		return nil, fmt.Errorf("inverse gram has %d entries for dimension %d: %w",
			len(inverse), dim, internalerr.ErrDimensionMismatch)
	}
	inv := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			inv.SetSym(i, j, inverse[i*dim+j])
		}
	}
	return &Whitener{inverse: inv}, nil
}

// Dim returns the dimension of whitened vectors.
func (w *Whitener) Dim() int { return w.inverse.SymmetricDim() }

// Gram returns the fitted Gram matrix, or nil for a restored whitener.
func (w *Whitener) Gram() *mat.SymDense { return w.gram }

// Inverse returns the inverse Gram matrix as a row-major slice.
func (w *Whitener) Inverse() []float64 {
	n := w.Dim()
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i*n+j] = w.inverse.At(i, j)
		}
	}
	return out
}

// Apply returns G⁻¹v.
func (w *Whitener) Apply(v []float64) ([]float64, error) {
	n := w.Dim()
	if len(v) != n {
		return nil, fmt.Errorf("vector has %d entries, whitener expects %d: %w",
			len(v), n, internalerr.ErrDimensionMismatch)
	}
	out := mat.NewVecDense(n, nil)
	out.MulVec(w.inverse, mat.NewVecDense(n, v))
	return out.RawVector().Data, nil
}

// ApplyAll whitens every corpus vector.
func (w *Whitener) ApplyAll(ctx context.Context, vectors *dataset.Dataset[vectorize.Labeled]) (*dataset.Dataset[vectorize.Labeled], error) {
	return dataset.TryMap(ctx, vectors, func(doc vectorize.Labeled) (vectorize.Labeled, error) {
		white, err := w.Apply(doc.Vector)
		if err != nil {
			return vectorize.Labeled{}, fmt.Errorf("doc %q: %w", doc.ID, err)
		}
		doc.Vector = white
		return doc, nil
	})
}
