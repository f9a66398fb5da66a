package textlab

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/textlab/pkg/textlab/ingest"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/projection"
	"github.com/cognicore/textlab/pkg/textlab/regression"
	"github.com/cognicore/textlab/pkg/textlab/store"
	"github.com/cognicore/textlab/pkg/textlab/tfidf"
	"github.com/cognicore/textlab/pkg/textlab/vectorize"
	"github.com/cognicore/textlab/pkg/textlab/vocab"
)

// Artifact names of a saved regression run
const (
	artifactIDF          = "idf"
	artifactInverseGram  = "inverse_gram"
	artifactCoefficients = "coefficients"
)

// Model is a trained regression classifier together with everything needed
// to turn raw text into the vector space it was trained in.
type Model struct {
	RunID string

	dict        *vocab.Dictionary
	vectorizer  *vectorize.Vectorizer
	weighter    *tfidf.Weighter       // nil when trained on counts
	projector   *projection.Projector // nil without projection
	whitener    *projection.Whitener  // nil without whitening
	whitenQuery bool
	positive    []string
	regression  *regression.Model
	pipeline    *ingest.Pipeline // tokenizer settings the model was trained with
	documents   int
}

// Coefficients returns the learned coefficient vector.
func (m *Model) Coefficients() []float64 { return m.regression.Coefficients }

// Dictionary returns the dictionary the model was trained with.
func (m *Model) Dictionary() *vocab.Dictionary { return m.dict }

// Positive returns the labels of the positive class.
func (m *Model) Positive() []string { return m.positive }

// Features maps text into the model's feature space: vectorized, IDF
// weighted, projected, and whitened when the model whitens queries.
func (m *Model) Features(text string) ([]float64, error) {
	positions := m.vectorizer.Positions(m.pipeline.TokenizeText(text))
	if len(positions) == 0 {
		return nil, &internalerr.EmptyVectorError{DocID: "query"}
	}
	v, err := m.vectorizer.FromPositions("query", positions)
	if err != nil {
		return nil, err
	}
	if m.weighter != nil {
		if v, err = m.weighter.Weight(v); err != nil {
			return nil, err
		}
	}
	if m.projector != nil {
		if v, err = m.projector.Project(v); err != nil {
			return nil, err
		}
	}
	if m.whitener != nil && m.whitenQuery {
		if v, err = m.whitener.Apply(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Predict reports whether text belongs to the positive class, with the
// raw score.
func (m *Model) Predict(text string) (bool, float64, error) {
	v, err := m.Features(text)
	if err != nil {
		return false, 0, err
	}
	return m.regression.Predict(v)
}

// TrainRegression fits a regression model on the indexed corpus. Vectors
// are projected to Regression.Dimension when it is set, then whitened by
// the inverse Gram matrix when Regression.Whiten is set.
func (l *Lab) TrainRegression(ctx context.Context) (*Model, error) {
	if err := l.requireIndex(); err != nil {
		return nil, err
	}
	ro := l.opts.Regression
	rows := l.corpus
	dim := l.dict.Len()

	var projector *projection.Projector
	if ro.Dimension > 0 {
		p, err := projection.NewProjector(dim, ro.Dimension, ro.Seed)
		if err != nil {
			return nil, err
		}
		if rows, err = p.ProjectAll(ctx, rows); err != nil {
			return nil, fmt.Errorf("project corpus: %w", err)
		}
		projector = p
		dim = ro.Dimension
	}

	var whitener *projection.Whitener
	if ro.Whiten {
		w, err := projection.FitWhitener(ctx, rows, dim)
		if err != nil {
			return nil, fmt.Errorf("whiten corpus: %w", err)
		}
		if rows, err = w.ApplyAll(ctx, rows); err != nil {
			return nil, fmt.Errorf("whiten corpus: %w", err)
		}
		whitener = w
	}

	positive := ro.Positive
	if len(positive) == 0 {
		positive = regression.ReligionGroups
	}
	rm, err := regression.Train(ctx, rows, dim, regression.LabelSet(positive...))
	if err != nil {
		return nil, err
	}
	if rm.Positives == 0 || rm.Negatives == 0 {
		l.env.Log().Warn("regression trained on a single class",
			"positives", rm.Positives, "negatives", rm.Negatives)
	}

	return &Model{
		dict:        l.dict,
		vectorizer:  l.vectorizer,
		weighter:    l.weighter,
		projector:   projector,
		whitener:    whitener,
		whitenQuery: ro.WhitenQuery,
		positive:    positive,
		regression:  rm,
		pipeline:    l.pipeline,
		documents:   l.documents,
	}, nil
}

// SaveModel records m as a regression run and stores its dictionary and
// numeric artifacts. The projection matrix is not stored; it is redrawn
// from the seed on load. The tokenizer settings travel in the run params so
// a loaded model tokenizes queries the way it was trained.
func (l *Lab) SaveModel(ctx context.Context, m *Model) (store.Run, error) {
	if m == nil || m.dict == nil || m.vectorizer == nil || m.regression == nil || m.pipeline == nil {
		return store.Run{}, fmt.Errorf("save model: incomplete model: %w", internalerr.ErrInvalidInput)
	}
	tok := m.pipeline.Tokenizer()
	params := map[string]string{
		"mode":         m.vectorizer.Mode().String(),
		"positive":     strings.Join(m.positive, ","),
		"whiten_query": strconv.FormatBool(m.whitenQuery),
		"strip_markup": strconv.FormatBool(m.pipeline.StripsMarkup()),
		"min_length":   strconv.Itoa(tok.MinLength()),
		"stopwords":    strings.Join(tok.Stopwords(), ","),
	}
	if m.projector != nil {
		_, cols := m.projector.Dims()
		params["dimension"] = strconv.Itoa(cols)
		params["seed"] = strconv.FormatUint(m.projector.Seed(), 10)
	}

	run, err := l.store.CreateRun(ctx, store.Run{
		Kind:      store.KindRegression,
		CreatedAt: time.Now().UTC(),
		Documents: m.documents,
		Params:    params,
	})
	if err != nil {
		return store.Run{}, fmt.Errorf("create run: %w", err)
	}

	if err := l.store.PutDictionary(ctx, run.ID, m.dict.Words()); err != nil {
		return store.Run{}, fmt.Errorf("save dictionary: %w", err)
	}
	if m.weighter != nil {
		if err := l.store.PutArtifact(ctx, run.ID, store.Vector(artifactIDF, m.weighter.IDF())); err != nil {
			return store.Run{}, fmt.Errorf("save idf: %w", err)
		}
	}
	if m.whitener != nil {
		n := m.whitener.Dim()
		if err := l.store.PutArtifact(ctx, run.ID, store.Matrix(artifactInverseGram, n, n, m.whitener.Inverse())); err != nil {
			return store.Run{}, fmt.Errorf("save inverse gram: %w", err)
		}
	}
	if err := l.store.PutArtifact(ctx, run.ID, store.Vector(artifactCoefficients, m.Coefficients())); err != nil {
		return store.Run{}, fmt.Errorf("save coefficients: %w", err)
	}

	m.RunID = run.ID
	l.env.Log().Info("saved regression run", "run", run.ID, "documents", run.Documents)
	return run, nil
}

// LoadModel restores a saved regression run. An empty runID loads the most
// recent one.
func (l *Lab) LoadModel(ctx context.Context, runID string) (*Model, error) {
	var run store.Run
	if runID == "" {
		latest, ok, err := l.store.LatestRun(ctx, store.KindRegression)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no regression run: %w", internalerr.ErrNotFound)
		}
		run = latest
	} else {
		r, err := l.store.GetRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		run = r
	}
	if run.Kind != store.KindRegression {
		return nil, fmt.Errorf("run %s has kind %q: %w", run.ID, run.Kind, internalerr.ErrInvalidInput)
	}

	words, err := l.store.GetDictionary(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	dict, err := vocab.NewDictionary(words)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	mode, err := vectorize.ParseMode(run.Params["mode"])
	if err != nil {
		return nil, err
	}

	pipeline, err := runPipeline(run, l.pipeline)
	if err != nil {
		return nil, err
	}

	m := &Model{
		RunID:       run.ID,
		dict:        dict,
		vectorizer:  vectorize.New(dict, mode),
		whitenQuery: run.Params["whiten_query"] == "true",
		pipeline:    pipeline,
		documents:   run.Documents,
	}
	if p := run.Params["positive"]; p != "" {
		m.positive = strings.Split(p, ",")
	}

	idf, err := l.optionalArtifact(ctx, run.ID, artifactIDF)
	if err != nil {
		return nil, err
	}
	if idf != nil {
		m.weighter = tfidf.NewWeighter(idf.Data)
	}

	if d := run.Params["dimension"]; d != "" {
		cols, err := strconv.Atoi(d)
		if err != nil {
			return nil, fmt.Errorf("run %s dimension %q: %w", run.ID, d, internalerr.ErrInvalidInput)
		}
		seed, err := strconv.ParseUint(run.Params["seed"], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("run %s seed %q: %w", run.ID, run.Params["seed"], internalerr.ErrInvalidInput)
		}
		if m.projector, err = projection.NewProjector(dict.Len(), cols, seed); err != nil {
			return nil, err
		}
	}

	inv, err := l.optionalArtifact(ctx, run.ID, artifactInverseGram)
	if err != nil {
		return nil, err
	}
	if inv != nil {
		if m.whitener, err = projection.NewWhitener(inv.Rows, inv.Data); err != nil {
			return nil, err
		}
	}

	coef, err := l.store.GetArtifact(ctx, run.ID, artifactCoefficients)
	if err != nil {
		return nil, fmt.Errorf("load coefficients: %w", err)
	}
	m.regression = &regression.Model{Coefficients: coef.Data}
	return m, nil
}

func (l *Lab) optionalArtifact(ctx context.Context, runID, name string) (*store.Artifact, error) {
	a, err := l.store.GetArtifact(ctx, runID, name)
	if errors.Is(err, internalerr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return &a, nil
}

// runPipeline rebuilds the tokenizer a run was trained with. Runs saved
// without tokenizer settings fall back to the Lab pipeline.
func runPipeline(run store.Run, fallback *ingest.Pipeline) (*ingest.Pipeline, error) {
	minLength, ok := run.Params["min_length"]
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(minLength)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("run %s min_length %q: %w", run.ID, minLength, internalerr.ErrInvalidInput)
	}
	var stops []string
	if s := run.Params["stopwords"]; s != "" {
		stops = strings.Split(s, ",")
	}
	tok := ingest.NewTokenizer(stops)
	tok.SetMinLength(n)
	return ingest.NewPipeline(tok, run.Params["strip_markup"] == "true"), nil
}
