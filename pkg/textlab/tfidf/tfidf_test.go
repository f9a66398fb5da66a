package tfidf

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/vectorize"
	"github.com/cognicore/textlab/pkg/textlab/vocab"
)

func corpus(env *dataset.Env, vecs ...[]float64) *dataset.Dataset[vectorize.Labeled] {
	docs := make([]vectorize.Labeled, len(vecs))
	for i, v := range vecs {
		docs[i] = vectorize.Labeled{ID: string(rune('a' + i)), Vector: v}
	}
	return dataset.Parallelize(env, docs)
}

func TestDocumentFrequencyIndependentOfPartitioning(t *testing.T) {
	ctx := context.Background()
	vecs := [][]float64{
		{1, 0, 0.5},
		{0, 0, 2},
		{3, 1, 0},
		{0.1, 0, 0},
	}
	for _, n := range []int{1, 2, 4, 9} {
		env := dataset.NewEnv(dataset.WithPartitions(n))
		freq, err := DocumentFrequency(ctx, corpus(env, vecs...), 3)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2}, freq.DF, "partitions=%d", n)
		assert.Equal(t, 4, freq.Docs)
	}
}

func TestIDFOfUbiquitousWordIsZero(t *testing.T) {
	ctx := context.Background()
	dict, err := vocab.NewDictionary([]string{"the", "hockey"})
	require.NoError(t, err)

	env := dataset.NewEnv(dataset.WithPartitions(2))
	w, err := Fit(ctx, corpus(env, []float64{0.5, 0.5}, []float64{1, 0}, []float64{0.2, 0}), dict)
	require.NoError(t, err)

	idf := w.IDF()
	assert.Equal(t, 0.0, idf[0])
	assert.InDelta(t, math.Log(3), idf[1], 1e-12)
	assert.Equal(t, 3, w.Frequencies().Docs)
}

func TestIDFReportsZeroDocumentFrequency(t *testing.T) {
	dict, err := vocab.NewDictionary([]string{"god", "allah", "jesus"})
	require.NoError(t, err)

	_, err = IDF(Frequencies{DF: []int{2, 0, 1}, Docs: 2}, dict)
	require.ErrorIs(t, err, internalerr.ErrZeroDocumentFrequency)

	var zero *internalerr.ZeroDFError
	require.True(t, errors.As(err, &zero))
	assert.Equal(t, 1, zero.Position)
	assert.Equal(t, "allah", zero.Word)
}

func TestWeight(t *testing.T) {
	out, err := Weight([]float64{0.5, 0.25, 0.25}, []float64{0, 2, 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, out)

	_, err = Weight([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, internalerr.ErrDimensionMismatch)
}

func TestApplyWeightsEveryDocument(t *testing.T) {
	ctx := context.Background()
	env := dataset.NewEnv(dataset.WithPartitions(3))
	w := NewWeighter([]float64{2, 10})

	out, err := w.Apply(ctx, corpus(env, []float64{1, 0}, []float64{0.5, 0.5}))
	require.NoError(t, err)

	got := out.Collect()
	require.Len(t, got, 2)
	assert.Equal(t, []float64{2, 0}, got[0].Vector)
	assert.Equal(t, []float64{1, 5}, got[1].Vector)
	assert.Equal(t, "b", got[1].ID)
}
