package regression

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/projection"
	"github.com/cognicore/textlab/pkg/textlab/vectorize"
)

func TestLabelSet(t *testing.T) {
	religion := LabelSet(ReligionGroups...)
	assert.True(t, religion("alt.atheism"))
	assert.False(t, religion("rec.sport.hockey"))
	assert.False(t, religion(""))
}

func TestTrainSumsSignedRows(t *testing.T) {
	ctx := context.Background()
	rows := []vectorize.Labeled{
		{ID: "1", Label: "alt.atheism", Vector: []float64{1, 2}},
		{ID: "2", Label: "rec.sport.hockey", Vector: []float64{3, -1}},
		{ID: "3", Label: "talk.religion.misc", Vector: []float64{0.5, 0.5}},
	}

	for _, n := range []int{1, 2, 3} {
		env := dataset.NewEnv(dataset.WithPartitions(n))
		m, err := Train(ctx, dataset.Parallelize(env, rows), 2, LabelSet(ReligionGroups...))
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{-1.5, 3.5}, m.Coefficients, 1e-12, "partitions=%d", n)
		assert.Equal(t, 2, m.Positives)
		assert.Equal(t, 1, m.Negatives)
	}
}

func TestTrainRejectsMismatchedRows(t *testing.T) {
	env := dataset.NewEnv()
	rows := dataset.Parallelize(env, []vectorize.Labeled{{ID: "x", Vector: []float64{1}}})
	_, err := Train(context.Background(), rows, 2, LabelSet())
	assert.ErrorIs(t, err, internalerr.ErrDimensionMismatch)

	_, err = Train(context.Background(), rows, 0, LabelSet())
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestPredict(t *testing.T) {
	m := &Model{Coefficients: []float64{1, -1}}

	pos, score, err := m.Predict([]float64{2, 1})
	require.NoError(t, err)
	assert.True(t, pos)
	assert.Equal(t, 1.0, score)

	pos, _, err = m.Predict([]float64{1, 1})
	require.NoError(t, err)
	assert.False(t, pos, "zero score is negative")

	_, _, err = m.Predict([]float64{1})
	assert.ErrorIs(t, err, internalerr.ErrDimensionMismatch)
}

// Separable data: after whitening, the summed coefficients are the least
// squares fit and classify the training rows correctly.
func TestWhitenedTrainingSeparatesClasses(t *testing.T) {
	ctx := context.Background()
	env := dataset.NewEnv(dataset.WithPartitions(4))
	rng := rand.New(rand.NewPCG(3, 4))

	var rows []vectorize.Labeled
	for i := 0; i < 60; i++ {
		label, center := "alt.atheism", 3.0
		if i%2 == 1 {
			label, center = "rec.autos", -3.0
		}
		rows = append(rows, vectorize.Labeled{
			ID:     string(rune('A' + i%26)),
			Label:  label,
			Vector: []float64{center + rng.NormFloat64()*0.3, rng.NormFloat64(), 1},
		})
	}
	raw := dataset.Parallelize(env, rows)

	w, err := projection.FitWhitener(ctx, raw, 3)
	require.NoError(t, err)
	white, err := w.ApplyAll(ctx, raw)
	require.NoError(t, err)

	m, err := Train(ctx, white, 3, LabelSet(ReligionGroups...))
	require.NoError(t, err)

	for _, row := range rows {
		pos, _, err := m.Predict(row.Vector)
		require.NoError(t, err)
		assert.Equal(t, row.Label == "alt.atheism", pos, "row %s", row.ID)
	}
}
