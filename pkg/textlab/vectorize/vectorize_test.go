package vectorize

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/ingest"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/vocab"
)

func toyDictionary(t *testing.T) *vocab.Dictionary {
	t.Helper()
	dict, err := vocab.NewDictionary([]string{"god", "jesus", "christian", "christ", "church", "hockey", "goals", "score"})
	require.NoError(t, err)
	return dict
}

func sum(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}

func TestCountsSumToInVocabularyTokens(t *testing.T) {
	vz := New(toyDictionary(t), Counts)

	words := []string{"jesus", "god", "jesus", "allah", "vancouver", "score"}
	vec, err := vz.Vector("q", words)
	require.NoError(t, err)

	assert.Len(t, vec, 8)
	assert.Equal(t, 4.0, sum(vec))
	assert.Equal(t, 2.0, vec[1])
	assert.Equal(t, 1.0, vec[0])
	assert.Equal(t, 1.0, vec[7])
}

func TestCountsAllowEmptyDocument(t *testing.T) {
	vz := New(toyDictionary(t), Counts)
	vec, err := vz.Vector("q", []string{"nothing", "known"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum(vec))
}

func TestTermFrequencySumsToOne(t *testing.T) {
	vz := New(toyDictionary(t), TermFrequency)

	docs := [][]string{
		{"god"},
		{"jesus", "christ", "church", "jesus", "unknown"},
		{"hockey", "goals", "score", "score", "score", "score", "goals"},
	}
	for _, words := range docs {
		vec, err := vz.Vector("d", words)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, sum(vec), 1e-12, "%v", words)
	}

	vec, err := vz.Vector("d", []string{"jesus", "christ", "jesus", "church"})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, vec[1], 1e-12)
	assert.InDelta(t, 0.25, vec[3], 1e-12)
}

func TestTermFrequencyRejectsEmptyDocument(t *testing.T) {
	vz := New(toyDictionary(t), TermFrequency)

	_, err := vz.Vector("20_newsgroups/sci.med/59", []string{"vancouver"})
	require.ErrorIs(t, err, internalerr.ErrEmptyDocumentVector)

	var empty *internalerr.EmptyVectorError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, "20_newsgroups/sci.med/59", empty.DocID)
}

func TestFromPositionsRejectsOutOfRange(t *testing.T) {
	vz := New(toyDictionary(t), Counts)
	_, err := vz.FromPositions("d", []int{1, 8})
	assert.ErrorIs(t, err, internalerr.ErrDimensionMismatch)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("TF")
	require.NoError(t, err)
	assert.Equal(t, TermFrequency, m)

	m, err = ParseMode("counts")
	require.NoError(t, err)
	assert.Equal(t, Counts, m)
	assert.Equal(t, "counts", m.String())

	_, err = ParseMode("idf")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestCorpusMatchesDirectVectorization(t *testing.T) {
	ctx := context.Background()
	dict := toyDictionary(t)

	tokens := []ingest.Tokens{
		{ID: "a", Label: "religion", Words: []string{"god", "jesus", "christian"}},
		{ID: "b", Label: "religion", Words: []string{"jesus", "christ", "church", "jesus"}},
		{ID: "c", Label: "sports", Words: []string{"hockey", "goals", "score", "vancouver"}},
		{ID: "d", Label: "misc", Words: []string{"nothing", "in", "vocabulary"}},
	}

	for _, mode := range []Mode{Counts, TermFrequency} {
		for _, partitions := range []int{1, 3} {
			env := dataset.NewEnv(dataset.WithPartitions(partitions))
			vz := New(dict, mode)

			out, err := vz.Corpus(ctx, dataset.Parallelize(env, tokens))
			require.NoError(t, err)

			got := out.Collect()
			sort.Slice(got, func(i, j int) bool { return got[i].ID < got[j].ID })
			require.Len(t, got, 3, "doc without dictionary words is skipped")

			for i, doc := range got {
				want, err := vz.Vector(tokens[i].ID, tokens[i].Words)
				require.NoError(t, err)
				assert.Equal(t, tokens[i].ID, doc.ID)
				assert.Equal(t, tokens[i].Label, doc.Label)
				for j := range want {
					assert.False(t, math.Abs(want[j]-doc.Vector[j]) > 1e-12,
						"mode=%s doc=%s pos=%d", mode, doc.ID, j)
				}
			}
		}
	}
}
