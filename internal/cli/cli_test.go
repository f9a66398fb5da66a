package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/textlab/pkg/textlab/store"
	"github.com/cognicore/textlab/pkg/textlab/store/memstore"
)

func TestSetupDefaults(t *testing.T) {
	rt, err := Setup("")
	require.NoError(t, err)
	assert.Equal(t, "INFO", rt.Config.LogLevel)
	assert.NotNil(t, rt.Logger)
	assert.NotNil(t, rt.Env)
}

func TestSetupRejectsMissingFile(t *testing.T) {
	_, err := Setup(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	rt, err := Setup("")
	require.NoError(t, err)

	mem, err := rt.OpenStore(ctx, "")
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, mem)
	require.NoError(t, mem.Close())

	db, err := rt.OpenStore(ctx, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()
	run, err := db.CreateRun(ctx, store.Run{Kind: store.KindKNN})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
}

func TestReadCorpus(t *testing.T) {
	rt, err := Setup("")
	require.NoError(t, err)

	_, err = rt.ReadCorpus("")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0o644))
	lines, err := rt.ReadCorpus(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)
}
