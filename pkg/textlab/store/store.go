package store

import (
	"context"
	"time"
)

// Store persists the artifacts of pipeline runs: the dictionary, IDF and
// model vectors, and whitening matrices.
type Store interface {
	Close() error

	// Runs
	CreateRun(ctx context.Context, r Run) (Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
	LatestRun(ctx context.Context, kind string) (Run, bool, error)
	ListRuns(ctx context.Context, kind string, limit int) ([]Run, error)

	// Dictionary words in position order
	PutDictionary(ctx context.Context, runID string, words []string) error
	GetDictionary(ctx context.Context, runID string) ([]string, error)

	// Numeric artifacts: vectors (Rows=1) and matrices
	PutArtifact(ctx context.Context, runID string, a Artifact) error
	GetArtifact(ctx context.Context, runID, name string) (Artifact, error)

	// Stoplist shared across runs
	UpsertStoplist(ctx context.Context, tokens []string) error
	Stoplist(ctx context.Context) ([]string, error)
}

// Run kinds
const (
	KindKNN        = "knn"
	KindRegression = "regression"
)

// Run describes one pipeline execution.
type Run struct {
	ID        string // ULID, assigned by CreateRun
	Kind      string
	CreatedAt time.Time
	Documents int
	Params    map[string]string
}

// Artifact is a named row-major matrix.
type Artifact struct {
	Name string
	Rows int
	Cols int
	Data []float64
}

// Vector wraps v as a single-row artifact.
func Vector(name string, v []float64) Artifact {
	return Artifact{Name: name, Rows: 1, Cols: len(v), Data: v}
}

// Matrix wraps a row-major rows×cols slice.
func Matrix(name string, rows, cols int, data []float64) Artifact {
	return Artifact{Name: name, Rows: rows, Cols: cols, Data: data}
}
