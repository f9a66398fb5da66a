package textlab

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cognicore/textlab/pkg/textlab/config"
	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/ingest"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/knn"
	"github.com/cognicore/textlab/pkg/textlab/stoplist"
	"github.com/cognicore/textlab/pkg/textlab/store"
	"github.com/cognicore/textlab/pkg/textlab/store/memstore"
	"github.com/cognicore/textlab/pkg/textlab/tfidf"
	"github.com/cognicore/textlab/pkg/textlab/vectorize"
	"github.com/cognicore/textlab/pkg/textlab/vocab"
)

// Lab runs the text pipeline over one corpus: dictionary, vectors,
// IDF weighting, nearest-neighbor search and regression training.
type Lab struct {
	env      *dataset.Env
	store    store.Store
	pipeline *ingest.Pipeline
	opts     Options

	dict       *vocab.Dictionary
	vectorizer *vectorize.Vectorizer
	weighter   *tfidf.Weighter // nil in Counts mode
	raw        *dataset.Dataset[vectorize.Labeled] // before IDF weighting
	corpus     *dataset.Dataset[vectorize.Labeled]
	index      *knn.Index
	documents  int
}

// RegressionOptions configures TrainRegression.
type RegressionOptions struct {
	Dimension   int // projected dimension, 0 keeps the dictionary dimension
	Seed        uint64
	Whiten      bool
	WhitenQuery bool
	Positive    []string
}

// Options configures a Lab instance
type Options struct {
	Env            *dataset.Env
	Store          store.Store
	Pipeline       *ingest.Pipeline
	VocabularySize int
	Mode           vectorize.Mode // zero value is Counts; TermFrequency adds IDF weighting
	Similarity     knn.Similarity
	Regression     RegressionOptions
}

// New creates a Lab with the given dependencies. Missing ones get
// defaults: a machine-sized environment, an in-memory store and a
// pipeline that tokenizes payloads as they are, without stopwords.
func New(opts Options) *Lab {
	if opts.Env == nil {
		opts.Env = dataset.NewEnv()
	}
	if opts.Store == nil {
		opts.Store = memstore.New()
	}
	if opts.Pipeline == nil {
		opts.Pipeline = ingest.NewPipeline(ingest.NewTokenizer(nil), false)
	}
	if opts.VocabularySize <= 0 {
		opts.VocabularySize = 20000
	}
	return &Lab{
		env:      opts.Env,
		store:    opts.Store,
		pipeline: opts.Pipeline,
		opts:     opts,
	}
}

// OptionsFromConfig translates a loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	comp, err := cfg.Components()
	if err != nil {
		return Options{}, err
	}
	mode, err := vectorize.ParseMode(cfg.KNN.Mode)
	if err != nil {
		return Options{}, err
	}
	sim, err := knn.ParseSimilarity(cfg.KNN.Similarity)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Pipeline:       comp.Pipeline,
		VocabularySize: cfg.Vocabulary.Size,
		Mode:           mode,
		Similarity:     sim,
		Regression: RegressionOptions{
			Dimension:   cfg.Regression.Dimension,
			Seed:        cfg.Regression.Seed,
			Whiten:      cfg.Regression.Whiten,
			WhitenQuery: cfg.Regression.WhitenQuery,
			Positive:    cfg.Regression.PositiveLabels,
		},
	}, nil
}

// Close cleanly shuts down the Lab instance
func (l *Lab) Close() error {
	return l.store.Close()
}

// Env returns the execution environment.
func (l *Lab) Env() *dataset.Env { return l.env }

// Store returns the backing store.
func (l *Lab) Store() store.Store { return l.store }

// Pipeline returns the ingestion pipeline.
func (l *Lab) Pipeline() *ingest.Pipeline { return l.pipeline }

// Index ingests raw corpus lines and builds everything queries need.
func (l *Lab) Index(ctx context.Context, lines []string) error {
	tokens, err := l.pipeline.Load(ctx, l.env, lines)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	return l.IndexTokens(ctx, tokens)
}

// IndexTokens builds the dictionary, document vectors, IDF weights and the
// neighbor index from tokenized documents.
func (l *Lab) IndexTokens(ctx context.Context, tokens *dataset.Dataset[ingest.Tokens]) error {
	log := l.env.Log()

	dict, err := vocab.Build(ctx, tokens, l.opts.VocabularySize)
	if err != nil {
		return fmt.Errorf("build dictionary: %w", err)
	}
	log.Info("built dictionary", "words", dict.Len())

	vz := vectorize.New(dict, l.opts.Mode)
	vectors, err := vz.Corpus(ctx, tokens)
	if err != nil {
		return fmt.Errorf("vectorize corpus: %w", err)
	}

	raw := vectors
	var weighter *tfidf.Weighter
	if l.opts.Mode == vectorize.TermFrequency {
		weighter, err = tfidf.Fit(ctx, vectors, dict)
		if err != nil {
			return fmt.Errorf("fit idf: %w", err)
		}
		vectors, err = weighter.Apply(ctx, vectors)
		if err != nil {
			return fmt.Errorf("weight corpus: %w", err)
		}
	}

	l.dict = dict
	l.vectorizer = vz
	l.weighter = weighter
	l.raw = raw
	l.corpus = vectors
	l.index = knn.NewIndex(vectors, l.opts.Similarity)
	l.documents = vectors.Count()
	log.Info("indexed corpus", "documents", l.documents, "mode", l.opts.Mode, "similarity", l.opts.Similarity)
	return nil
}

// Dictionary returns the dictionary built by Index.
func (l *Lab) Dictionary() *vocab.Dictionary { return l.dict }

// IDF returns the IDF vector, nil in Counts mode.
func (l *Lab) IDF() []float64 {
	if l.weighter == nil {
		return nil
	}
	return l.weighter.IDF()
}

// Documents returns the number of indexed documents.
func (l *Lab) Documents() int { return l.documents }

// Corpus returns the weighted corpus vectors.
func (l *Lab) Corpus() *dataset.Dataset[vectorize.Labeled] { return l.corpus }

func (l *Lab) requireIndex() error {
	if l.index == nil {
		return fmt.Errorf("lab has no indexed corpus: %w", internalerr.ErrInvalidInput)
	}
	return nil
}

// QueryVector tokenizes text and vectorizes it the way corpus documents
// were. Text without a dictionary word is an *internalerr.EmptyVectorError
// in every mode.
func (l *Lab) QueryVector(text string) ([]float64, error) {
	if err := l.requireIndex(); err != nil {
		return nil, err
	}
	positions := l.vectorizer.Positions(l.pipeline.TokenizeText(text))
	if len(positions) == 0 {
		return nil, &internalerr.EmptyVectorError{DocID: "query"}
	}
	vec, err := l.vectorizer.FromPositions("query", positions)
	if err != nil {
		return nil, err
	}
	if l.weighter != nil {
		return l.weighter.Weight(vec)
	}
	return vec, nil
}

// Neighbors returns the k corpus documents most similar to text.
func (l *Lab) Neighbors(ctx context.Context, text string, k int) ([]knn.Neighbor, error) {
	q, err := l.QueryVector(text)
	if err != nil {
		return nil, err
	}
	return l.index.Neighbors(ctx, q, k)
}

// Classify returns the label tally of the k nearest neighbors of text,
// the predicted label first.
func (l *Lab) Classify(ctx context.Context, text string, k int) ([]knn.Vote, error) {
	neighbors, err := l.Neighbors(ctx, text, k)
	if err != nil {
		return nil, err
	}
	return knn.Tally(neighbors), nil
}

// SaveIndex records the indexed corpus as a kNN run: its dictionary and,
// in TermFrequency mode, its IDF vector.
func (l *Lab) SaveIndex(ctx context.Context) (store.Run, error) {
	if err := l.requireIndex(); err != nil {
		return store.Run{}, err
	}
	run, err := l.store.CreateRun(ctx, store.Run{
		Kind:      store.KindKNN,
		CreatedAt: time.Now().UTC(),
		Documents: l.documents,
		Params: map[string]string{
			"mode":       l.opts.Mode.String(),
			"similarity": l.opts.Similarity.String(),
			"vocabulary": strconv.Itoa(l.dict.Len()),
		},
	})
	if err != nil {
		return store.Run{}, fmt.Errorf("create run: %w", err)
	}
	if err := l.store.PutDictionary(ctx, run.ID, l.dict.Words()); err != nil {
		return store.Run{}, fmt.Errorf("save dictionary: %w", err)
	}
	if l.weighter != nil {
		if err := l.store.PutArtifact(ctx, run.ID, store.Vector(artifactIDF, l.weighter.IDF())); err != nil {
			return store.Run{}, fmt.Errorf("save idf: %w", err)
		}
	}
	l.env.Log().Info("saved knn run", "run", run.ID)
	return run, nil
}

// UseStoredStoplist adds the stopwords kept in the store to the tokenizer.
// Call it before Index.
func (l *Lab) UseStoredStoplist(ctx context.Context) (int, error) {
	words, err := l.store.Stoplist(ctx)
	if err != nil {
		return 0, fmt.Errorf("load stoplist: %w", err)
	}
	tok := l.pipeline.Tokenizer()
	for _, w := range words {
		tok.AddStopword(w)
	}
	return len(words), nil
}

// SuggestStopwords proposes dictionary words that occur in most documents
// across every label. Words already in the stored stoplist are skipped.
func (l *Lab) SuggestStopwords(ctx context.Context, thresholds stoplist.Thresholds) ([]stoplist.Candidate, error) {
	if err := l.requireIndex(); err != nil {
		return nil, err
	}
	stats, err := stoplist.Collect(ctx, l.raw, l.dict)
	if err != nil {
		return nil, err
	}
	known, err := l.store.Stoplist(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stoplist: %w", err)
	}
	candidates := stoplist.NewManager(known).SuggestCandidates(stats, thresholds)
	l.env.Log().Info("suggested stopwords", "candidates", len(candidates), "known", len(known))
	return candidates, nil
}

// SaveStopwords adds the candidates to the stored stoplist.
func (l *Lab) SaveStopwords(ctx context.Context, candidates []stoplist.Candidate) error {
	words, err := l.store.Stoplist(ctx)
	if err != nil {
		return fmt.Errorf("load stoplist: %w", err)
	}
	for _, c := range candidates {
		words = append(words, c.Word)
	}
	if err := l.store.UpsertStoplist(ctx, words); err != nil {
		return fmt.Errorf("save stoplist: %w", err)
	}
	return nil
}
