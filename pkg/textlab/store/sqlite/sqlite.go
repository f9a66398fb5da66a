package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDs
}

// OpenSQLite opens a SQLite database with WAL mode and foreign keys enabled.
// Both pragmas go through the DSN so every pooled connection gets them.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, ids: store.NewIDs()}, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	created_at TEXT NOT NULL,
	documents INTEGER DEFAULT 0,
	params TEXT
);

CREATE INDEX IF NOT EXISTS runs_kind ON runs(kind, id);

CREATE TABLE IF NOT EXISTS dictionary (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	word TEXT NOT NULL,
	PRIMARY KEY(run_id, position),
	UNIQUE(run_id, word),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS artifacts (
	run_id TEXT NOT NULL,
	name TEXT NOT NULL,
	rows INTEGER NOT NULL,
	cols INTEGER NOT NULL,
	data BLOB,
	PRIMARY KEY(run_id, name),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS stoplist (
	token TEXT PRIMARY KEY
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// CreateRun assigns an ID and creation time and inserts the run
func (s *sqliteStore) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	if r.Kind == "" {
		return store.Run{}, fmt.Errorf("run without kind: %w", internalerr.ErrInvalidInput)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.ID = s.ids.New(r.CreatedAt)

	params, err := json.Marshal(r.Params)
	if err != nil {
		return store.Run{}, err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs (id, kind, created_at, documents, params)
VALUES (?, ?, ?, ?, ?);
`, r.ID, r.Kind, r.CreatedAt.UTC().Format(time.RFC3339Nano), r.Documents, string(params))
	if err != nil {
		return store.Run{}, err
	}
	return r, nil
}

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, kind, created_at, documents, params FROM runs WHERE id=?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r, err
}

// LatestRun returns the most recent run of a kind
func (s *sqliteStore) LatestRun(ctx context.Context, kind string) (store.Run, bool, error) {
	runs, err := s.ListRuns(ctx, kind, 1)
	if err != nil || len(runs) == 0 {
		return store.Run{}, false, err
	}
	return runs[0], true, nil
}

// ListRuns returns runs newest first; ULIDs sort by creation time
func (s *sqliteStore) ListRuns(ctx context.Context, kind string, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, created_at, documents, params
FROM runs
WHERE ? = '' OR kind = ?
ORDER BY id DESC
LIMIT ?;
`, kind, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var (
		r       store.Run
		created string
		params  sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Kind, &created, &r.Documents, &params); err != nil {
		return store.Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return store.Run{}, fmt.Errorf("run %s created_at %q: %w", r.ID, created, err)
	}
	r.CreatedAt = t
	if params.Valid && params.String != "" && params.String != "null" {
		if err := json.Unmarshal([]byte(params.String), &r.Params); err != nil {
			return store.Run{}, fmt.Errorf("run %s params: %w", r.ID, err)
		}
	}
	return r, nil
}

// PutDictionary replaces the dictionary of a run in a single transaction
func (s *sqliteStore) PutDictionary(ctx context.Context, runID string, words []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.requireRun(ctx, tx, runID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dictionary WHERE run_id=?`, runID); err != nil {
		return err
	}

	if len(words) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO dictionary (run_id, position, word) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for pos, w := range words {
			if _, err := stmt.ExecContext(ctx, runID, pos, w); err != nil {
				return fmt.Errorf("dictionary position %d (%q): %w", pos, w, err)
			}
		}
	}

	return tx.Commit()
}

// GetDictionary returns dictionary words in position order
func (s *sqliteStore) GetDictionary(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word FROM dictionary WHERE run_id=? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("dictionary of run %s: %w", runID, internalerr.ErrNotFound)
	}
	return words, nil
}

// PutArtifact inserts or replaces a named matrix
func (s *sqliteStore) PutArtifact(ctx context.Context, runID string, a store.Artifact) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.requireRun(ctx, s.db, runID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO artifacts (run_id, name, rows, cols, data) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(run_id, name) DO UPDATE SET rows=excluded.rows, cols=excluded.cols, data=excluded.data;
`, runID, a.Name, a.Rows, a.Cols, store.EncodeFloats(a.Data))
	return err
}

// GetArtifact loads a named matrix
func (s *sqliteStore) GetArtifact(ctx context.Context, runID, name string) (store.Artifact, error) {
	a := store.Artifact{Name: name}
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT rows, cols, data FROM artifacts WHERE run_id=? AND name=?`, runID, name,
	).Scan(&a.Rows, &a.Cols, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Artifact{}, fmt.Errorf("artifact %s of run %s: %w", name, runID, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Artifact{}, err
	}
	if a.Data, err = store.DecodeFloats(blob); err != nil {
		return store.Artifact{}, fmt.Errorf("artifact %s of run %s: %w", name, runID, err)
	}
	return a, a.Validate()
}

// UpsertStoplist replaces the stopword set in a single transaction.
func (s *sqliteStore) UpsertStoplist(ctx context.Context, tokens []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stoplist`); err != nil {
		return err
	}

	if len(tokens) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO stoplist (token) VALUES (?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, tok := range tokens {
			if _, err := stmt.ExecContext(ctx, tok); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Stoplist returns all stopwords in lexical order
func (s *sqliteStore) Stoplist(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token FROM stoplist ORDER BY token`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stops []string
	for rows.Next() {
		var tok string
		if err := rows.Scan(&tok); err != nil {
			return nil, err
		}
		stops = append(stops, tok)
	}
	return stops, rows.Err()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *sqliteStore) requireRun(ctx context.Context, q queryer, runID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id=?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	return err
}
