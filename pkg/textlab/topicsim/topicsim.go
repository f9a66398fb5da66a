// Package topicsim generates synthetic corpora from a topic model: every
// topic is a Dirichlet-distributed distribution over words, every document
// a Dirichlet-distributed mixture of topics, and every word occurrence is
// drawn by picking a topic from the document's mixture and then a word from
// that topic.
package topicsim

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
)

// Params configures a simulation.
type Params struct {
	Vocabulary         int     `yaml:"vocabulary" validate:"gt=0"`
	Topics             int     `yaml:"topics" validate:"gt=0"`
	Documents          int     `yaml:"documents" validate:"gte=0"`
	WordsPerDocument   int     `yaml:"words_per_document" split_words:"true" validate:"gte=0"`
	WordConcentration  float64 `yaml:"word_concentration" split_words:"true" validate:"gt=0"`
	TopicConcentration float64 `yaml:"topic_concentration" split_words:"true" validate:"gt=0"`
	Seed               uint64  `yaml:"seed"`
}

// DefaultParams returns 50 documents of 1000 words over 100 topics and a
// 2000 word vocabulary, with concentration 0.1 everywhere.
func DefaultParams() Params {
	return Params{
		Vocabulary:         2000,
		Topics:             100,
		Documents:          50,
		WordsPerDocument:   1000,
		WordConcentration:  0.1,
		TopicConcentration: 0.1,
		Seed:               1,
	}
}

// Validate checks that the parameters describe a samplable model.
func (p Params) Validate() error {
	switch {
	case p.Vocabulary <= 0:
		return fmt.Errorf("vocabulary %d: %w", p.Vocabulary, internalerr.ErrInvalidInput)
	case p.Topics <= 0:
		return fmt.Errorf("topics %d: %w", p.Topics, internalerr.ErrInvalidInput)
	case p.Documents < 0 || p.WordsPerDocument < 0:
		return fmt.Errorf("documents %d of %d words: %w", p.Documents, p.WordsPerDocument, internalerr.ErrInvalidInput)
	case !(p.WordConcentration > 0) || !(p.TopicConcentration > 0):
		return fmt.Errorf("concentrations %g/%g must be positive: %w",
			p.WordConcentration, p.TopicConcentration, internalerr.ErrInvalidInput)
	}
	return nil
}

// WordCount is the number of occurrences of a word in a document.
type WordCount struct {
	Word  int
	Count int
}

// Document is a simulated bag of words, sorted by word id.
type Document struct {
	ID     int
	Topics []float64 // topic mixture the words were drawn from
	Words  []WordCount
}

// Len returns the number of word occurrences.
func (d Document) Len() int {
	n := 0
	for _, wc := range d.Words {
		n += wc.Count
	}
	return n
}

// Corpus is the result of a simulation.
type Corpus struct {
	Params       Params
	WordsInTopic [][]float64 // Topics × Vocabulary
	Docs         []Document
}

// Simulate samples a corpus. Documents are generated in parallel, each from
// its own generator derived from the seed and the document number, so the
// output depends only on p.
func Simulate(ctx context.Context, env *dataset.Env, p Params) (*Corpus, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	topicSrc := rand.NewPCG(p.Seed, math.MaxUint64)
	wordPrior := distmv.NewDirichlet(filled(p.Vocabulary, p.WordConcentration), topicSrc)
	wordsInTopic := make([][]float64, p.Topics)
	for t := range wordsInTopic {
		wordsInTopic[t] = wordPrior.Rand(nil)
	}

	ids := make([]int, p.Documents)
	for i := range ids {
		ids[i] = i
	}
	docs, err := dataset.Map(ctx, dataset.Parallelize(env, ids), func(id int) Document {
		return simulateDocument(p, wordsInTopic, id)
	})
	if err != nil {
		return nil, fmt.Errorf("simulate documents: %w", err)
	}

	env.Log().Info("simulated corpus",
		"documents", p.Documents, "topics", p.Topics, "vocabulary", p.Vocabulary)
	return &Corpus{Params: p, WordsInTopic: wordsInTopic, Docs: docs.Collect()}, nil
}

func simulateDocument(p Params, wordsInTopic [][]float64, id int) Document {
	src := rand.NewPCG(p.Seed, uint64(id))
	topicPrior := distmv.NewDirichlet(filled(p.Topics, p.TopicConcentration), src)
	mixture := topicPrior.Rand(nil)
	pickTopic := categorical(mixture, src)

	pickWord := make([]*distuv.Categorical, p.Topics)
	counts := make(map[int]int)
	for range p.WordsPerDocument {
		t := int(pickTopic.Rand())
		if pickWord[t] == nil {
			pickWord[t] = categorical(wordsInTopic[t], src)
		}
		counts[int(pickWord[t].Rand())]++
	}

	words := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		words = append(words, WordCount{Word: w, Count: c})
	}
	slices.SortFunc(words, func(a, b WordCount) int { return a.Word - b.Word })
	return Document{ID: id, Topics: mixture, Words: words}
}

// categorical samples indexes in proportion to weights. Dirichlet draws
// with small concentration can underflow to all zeros; those sample
// uniformly.
func categorical(weights []float64, src rand.Source) *distuv.Categorical {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		weights = filled(len(weights), 1)
	}
	c := distuv.NewCategorical(weights, src)
	return &c
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
