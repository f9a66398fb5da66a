package projection

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/vectorize"
)

// Projector maps N-dimensional vectors to M dimensions through a fixed
// N×M matrix of standard normal entries.
type Projector struct {
	seed   uint64
	matrix *mat.Dense
}

// NewProjector draws the projection matrix from a PCG source seeded with
// seed. The same seed always yields the same matrix.
func NewProjector(n, m int, seed uint64) (*Projector, error) {
	if n <= 0 || m <= 0 {
		return nil, fmt.Errorf("projection %dx%d: %w", n, m, internalerr.ErrInvalidInput)
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
	data := make([]float64, n*m)
	for i := range data {
		data[i] = normal.Rand()
	}
	return &Projector{seed: seed, matrix: mat.NewDense(n, m, data)}, nil
}

// Dims returns the input and output dimensions.
func (p *Projector) Dims() (n, m int) { return p.matrix.Dims() }

// Seed returns the seed the matrix was drawn with.
func (p *Projector) Seed() uint64 { return p.seed }

// Project returns vᵀP.
func (p *Projector) Project(v []float64) ([]float64, error) {
	n, m := p.matrix.Dims()
	if len(v) != n {
		return nil, fmt.Errorf("vector has %d entries, projection expects %d: %w",
			len(v), n, internalerr.ErrDimensionMismatch)
	}
	out := mat.NewVecDense(m, nil)
	out.MulVec(p.matrix.T(), mat.NewVecDense(n, v))
	return out.RawVector().Data, nil
}

// ProjectAll projects every corpus vector.
func (p *Projector) ProjectAll(ctx context.Context, vectors *dataset.Dataset[vectorize.Labeled]) (*dataset.Dataset[vectorize.Labeled], error) {
	return dataset.TryMap(ctx, vectors, func(doc vectorize.Labeled) (vectorize.Labeled, error) {
		projected, err := p.Project(doc.Vector)
		if err != nil {
			return vectorize.Labeled{}, fmt.Errorf("doc %q: %w", doc.ID, err)
		}
		doc.Vector = projected
		return doc, nil
	})
}
