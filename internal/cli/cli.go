// Package cli holds the start-up steps shared by the textlab commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mama165/sdk-go/logs"

	"github.com/cognicore/textlab/internal/textfile"
	"github.com/cognicore/textlab/pkg/textlab/config"
	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/store"
	"github.com/cognicore/textlab/pkg/textlab/store/memstore"
	"github.com/cognicore/textlab/pkg/textlab/store/sqlite"
)

// Exit codes
const (
	ExitOK      = 0
	ExitRuntime = 1
	ExitConfig  = 2
)

// Runtime bundles what every command needs once configuration is loaded.
type Runtime struct {
	Config *config.Config
	Logger *slog.Logger
	Env    *dataset.Env
}

// Setup loads the configuration at path (defaults and environment only
// when empty) and builds the logger and execution environment.
func Setup(path string) (*Runtime, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger := logs.GetLoggerFromString(cfg.LogLevel)
	return &Runtime{
		Config: cfg,
		Logger: logger,
		Env:    cfg.Runtime.Env(logger),
	}, nil
}

// OpenStore opens the SQLite database at path, or an in-memory store when
// path is empty.
func (r *Runtime) OpenStore(ctx context.Context, path string) (store.Store, error) {
	if path == "" {
		r.Logger.Debug("using in-memory store")
		return memstore.New(), nil
	}
	st, err := sqlite.OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	r.Logger.Info("opened store", "path", path)
	return st, nil
}

// ReadCorpus reads the corpus lines at path.
func (r *Runtime) ReadCorpus(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("no corpus path: set -data or corpus.path")
	}
	lines, err := textfile.ReadLines(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	r.Logger.Info("read corpus", "path", path, "lines", len(lines))
	return lines, nil
}
