package vocab

import (
	"context"
	"strings"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
)

// CountOptions controls CountWords normalization.
type CountOptions struct {
	Lowercase bool
	MinLength int // words shorter than this are dropped
}

// CountWords splits every line on single spaces and returns the k most
// frequent words. Without options, words are counted verbatim, punctuation
// and empty strings between consecutive spaces included.
func CountWords(ctx context.Context, env *dataset.Env, lines []string, k int, opts CountOptions) ([]WordCount, error) {
	words, err := dataset.FlatMap(ctx, dataset.Parallelize(env, lines), func(line string) []string {
		return strings.Split(line, " ")
	})
	if err != nil {
		return nil, err
	}

	if opts.MinLength > 0 {
		words, err = dataset.Filter(ctx, words, func(w string) bool { return len(w) >= opts.MinLength })
		if err != nil {
			return nil, err
		}
	}
	if opts.Lowercase {
		words, err = dataset.Map(ctx, words, strings.ToLower)
		if err != nil {
			return nil, err
		}
	}

	return TopWords(ctx, words, k)
}
