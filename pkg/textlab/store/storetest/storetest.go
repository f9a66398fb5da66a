// Package storetest holds behavior tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/store"
)

// Run exercises open() against the store.Store contract. Every subtest
// gets a fresh store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("Runs", func(t *testing.T) { testRuns(t, open(t)) })
	t.Run("Dictionary", func(t *testing.T) { testDictionary(t, open(t)) })
	t.Run("Artifacts", func(t *testing.T) { testArtifacts(t, open(t)) })
	t.Run("Stoplist", func(t *testing.T) { testStoplist(t, open(t)) })
}

func testRuns(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	_, err := st.CreateRun(ctx, store.Run{})
	require.ErrorIs(t, err, internalerr.ErrInvalidInput)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first, err := st.CreateRun(ctx, store.Run{
		Kind:      store.KindKNN,
		CreatedAt: base,
		Documents: 19997,
		Params:    map[string]string{"k": "30"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := st.CreateRun(ctx, store.Run{Kind: store.KindRegression, CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	third, err := st.CreateRun(ctx, store.Run{Kind: store.KindRegression, CreatedAt: base.Add(2 * time.Minute)})
	require.NoError(t, err)

	got, err := st.GetRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, store.KindKNN, got.Kind)
	assert.Equal(t, 19997, got.Documents)
	assert.True(t, base.Equal(got.CreatedAt))
	assert.Equal(t, map[string]string{"k": "30"}, got.Params)

	_, err = st.GetRun(ctx, "01HXXXXXXXXXXXXXXXXXXXXXXX")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	latest, ok, err := st.LatestRun(ctx, store.KindRegression)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, third.ID, latest.ID)

	_, ok, err = st.LatestRun(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := st.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	limited, err := st.ListRuns(ctx, store.KindRegression, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, third.ID, limited[0].ID)
}

func testDictionary(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	err := st.PutDictionary(ctx, "nope", []string{"a"})
	require.ErrorIs(t, err, internalerr.ErrNotFound)

	run, err := st.CreateRun(ctx, store.Run{Kind: store.KindKNN})
	require.NoError(t, err)

	_, err = st.GetDictionary(ctx, run.ID)
	require.ErrorIs(t, err, internalerr.ErrNotFound)

	require.NoError(t, st.PutDictionary(ctx, run.ID, []string{"the", "god", "jesus"}))
	require.NoError(t, st.PutDictionary(ctx, run.ID, []string{"god", "jesus"}))

	words, err := st.GetDictionary(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"god", "jesus"}, words)
}

func testArtifacts(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	run, err := st.CreateRun(ctx, store.Run{Kind: store.KindRegression})
	require.NoError(t, err)

	idf := store.Vector("idf", []float64{0, 0.693, 2.5})
	inv := store.Matrix("inverse_gram", 2, 2, []float64{2, -1, -1, 3})
	require.NoError(t, st.PutArtifact(ctx, run.ID, idf))
	require.NoError(t, st.PutArtifact(ctx, run.ID, inv))

	got, err := st.GetArtifact(ctx, run.ID, "idf")
	require.NoError(t, err)
	assert.Equal(t, idf, got)

	got, err = st.GetArtifact(ctx, run.ID, "inverse_gram")
	require.NoError(t, err)
	assert.Equal(t, inv, got)

	updated := store.Vector("idf", []float64{1})
	require.NoError(t, st.PutArtifact(ctx, run.ID, updated))
	got, err = st.GetArtifact(ctx, run.ID, "idf")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = st.GetArtifact(ctx, run.ID, "coefficients")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	err = st.PutArtifact(ctx, run.ID, store.Matrix("bad", 3, 3, []float64{1}))
	assert.ErrorIs(t, err, internalerr.ErrDimensionMismatch)

	err = st.PutArtifact(ctx, "nope", idf)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func testStoplist(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	stops, err := st.Stoplist(ctx)
	require.NoError(t, err)
	assert.Empty(t, stops)

	require.NoError(t, st.UpsertStoplist(ctx, []string{"the", "and", "the"}))
	stops, err = st.Stoplist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"and", "the"}, stops)

	require.NoError(t, st.UpsertStoplist(ctx, []string{"of"}))
	stops, err = st.Stoplist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"of"}, stops)
}
