package vocab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
)

var holmes = []string{
	"To Sherlock Holmes she is always THE woman.",
	"I have seldom heard him mention her under any other name.",
	"In his eyes she eclipses and predominates the whole of her sex.",
	"the woman the  end",
}

func TestCountWordsVerbatim(t *testing.T) {
	ctx := context.Background()
	env := dataset.NewEnv(dataset.WithPartitions(2))

	top, err := CountWords(ctx, env, holmes, 3, CountOptions{})
	require.NoError(t, err)

	// "the" twice in line 4, once in line 3; "" from the double space
	assert.Equal(t, []WordCount{
		{Word: "the", Count: 3},
		{Word: "her", Count: 2},
		{Word: "she", Count: 2},
	}, top)
}

func TestCountWordsCleaned(t *testing.T) {
	ctx := context.Background()
	env := dataset.NewEnv(dataset.WithPartitions(3))

	top, err := CountWords(ctx, env, holmes, 2, CountOptions{Lowercase: true, MinLength: 2})
	require.NoError(t, err)

	assert.Equal(t, []WordCount{
		{Word: "the", Count: 4},
		{Word: "her", Count: 2},
	}, top)
}

func TestCountWordsEmpty(t *testing.T) {
	top, err := CountWords(context.Background(), dataset.NewEnv(), nil, 10, CountOptions{})
	require.NoError(t, err)
	assert.Empty(t, top)
}
