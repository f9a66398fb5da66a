package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/store"
)

// Store is an in-memory implementation of store.Store for tests and
// one-shot runs.
type Store struct {
	mu        sync.RWMutex
	ids       *store.IDs
	runs      map[string]store.Run
	dicts     map[string][]string
	artifacts map[string]map[string]store.Artifact
	stoplist  map[string]struct{}
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:       store.NewIDs(),
		runs:      make(map[string]store.Run),
		dicts:     make(map[string][]string),
		artifacts: make(map[string]map[string]store.Artifact),
		stoplist:  make(map[string]struct{}),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// CreateRun assigns an ID and creation time and records the run.
func (s *Store) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Kind == "" {
		return store.Run{}, fmt.Errorf("run without kind: %w", internalerr.ErrInvalidInput)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.ID = s.ids.New(r.CreatedAt)
	r.Params = maps.Clone(r.Params)
	s.runs[r.ID] = r
	return copyRun(r), nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(r), nil
}

// LatestRun returns the most recent run of kind.
func (s *Store) LatestRun(ctx context.Context, kind string) (store.Run, bool, error) {
	runs, err := s.ListRuns(ctx, kind, 1)
	if err != nil || len(runs) == 0 {
		return store.Run{}, false, err
	}
	return runs[0], true, nil
}

// ListRuns returns runs of kind, newest first. An empty kind lists all.
func (s *Store) ListRuns(ctx context.Context, kind string, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Run
	for _, r := range s.runs {
		if kind == "" || r.Kind == kind {
			out = append(out, copyRun(r))
		}
	}
	// ULIDs sort by creation time
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PutDictionary stores the dictionary of a run, replacing any previous one.
func (s *Store) PutDictionary(ctx context.Context, runID string, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	s.dicts[runID] = slices.Clone(words)
	return nil
}

// GetDictionary returns the dictionary words of a run in position order.
func (s *Store) GetDictionary(ctx context.Context, runID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	words, ok := s.dicts[runID]
	if !ok {
		return nil, fmt.Errorf("dictionary of run %s: %w", runID, internalerr.ErrNotFound)
	}
	return slices.Clone(words), nil
}

// PutArtifact stores a named matrix for a run.
func (s *Store) PutArtifact(ctx context.Context, runID string, a store.Artifact) error {
	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	if s.artifacts[runID] == nil {
		s.artifacts[runID] = make(map[string]store.Artifact)
	}
	a.Data = slices.Clone(a.Data)
	s.artifacts[runID][a.Name] = a
	return nil
}

// GetArtifact returns a named matrix of a run.
func (s *Store) GetArtifact(ctx context.Context, runID, name string) (store.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.artifacts[runID][name]
	if !ok {
		return store.Artifact{}, fmt.Errorf("artifact %s of run %s: %w", name, runID, internalerr.ErrNotFound)
	}
	a.Data = slices.Clone(a.Data)
	return a, nil
}

// UpsertStoplist replaces the stopword set.
func (s *Store) UpsertStoplist(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stoplist = make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		s.stoplist[tok] = struct{}{}
	}
	return nil
}

// Stoplist returns the stopwords in lexical order.
func (s *Store) Stoplist(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.stoplist)), nil
}

func copyRun(r store.Run) store.Run {
	r.Params = maps.Clone(r.Params)
	return r
}
