package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/cognicore/textlab/pkg/textlab/store"
	"github.com/cognicore/textlab/pkg/textlab/store/storetest"
)

func TestSQLiteContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "textlab.db"))
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		return st
	})
}

// TestSQLitePersistsAcrossReopen checks that a model survives closing and
// reopening the database file
func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "textlab.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	run, err := st.CreateRun(ctx, store.Run{Kind: store.KindRegression, Documents: 3})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.PutDictionary(ctx, run.ID, []string{"god", "jesus"}); err != nil {
		t.Fatalf("PutDictionary: %v", err)
	}
	if err := st.PutArtifact(ctx, run.ID, store.Vector("coefficients", []float64{0.25, -4})); err != nil {
		t.Fatalf("PutArtifact: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	latest, ok, err := st.LatestRun(ctx, store.KindRegression)
	if err != nil || !ok {
		t.Fatalf("LatestRun: ok=%v err=%v", ok, err)
	}
	if latest.ID != run.ID {
		t.Errorf("latest run: got %s, want %s", latest.ID, run.ID)
	}

	words, err := st.GetDictionary(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetDictionary: %v", err)
	}
	if len(words) != 2 || words[0] != "god" || words[1] != "jesus" {
		t.Errorf("dictionary: got %v", words)
	}

	coef, err := st.GetArtifact(ctx, run.ID, "coefficients")
	if err != nil {
		t.Fatalf("GetArtifact: %v", err)
	}
	if coef.Cols != 2 || coef.Data[0] != 0.25 || coef.Data[1] != -4 {
		t.Errorf("coefficients: got %+v", coef)
	}
}

// TestSQLiteForeignKeysOnEveryConnection checks that the pragma is applied
// per connection rather than only on the first one the pool hands out
func TestSQLiteForeignKeysOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "textlab.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()
	db := st.(*sqliteStore).db

	conns := make([]*sql.Conn, 4)
	for i := range conns {
		if conns[i], err = db.Conn(ctx); err != nil {
			t.Fatalf("Conn %d: %v", i, err)
		}
		defer conns[i].Close()
	}
	for i, conn := range conns {
		var on int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on); err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		if on != 1 {
			t.Errorf("conn %d: foreign_keys = %d", i, on)
		}
		if _, err := conn.ExecContext(ctx,
			"INSERT INTO artifacts (run_id, name, rows, cols) VALUES ('missing', 'idf', 1, 1)"); err == nil {
			t.Errorf("conn %d: artifact for a missing run was accepted", i)
		}
	}
}
