package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pathway/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dir, false, nil)
	require.NoError(t, err)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := OpenBackend(path, false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(context.Background(), func(tx *badger.Txn) error { return nil }, false)
	require.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestWithTx_CanceledContext(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err = backend.WithTx(ctx, func(tx *badger.Txn) error {
		called = true
		return nil
	}, false)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestNextNonZero(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)
	defer backend.Close()

	seq, err := backend.GetSequence("testseq")
	require.NoError(t, err)
	defer seq.Release()

	seen := map[uint64]bool{}
	for i := 0; i < 10; i++ {
		v, err := nextNonZero(seq)
		require.NoError(t, err)
		assert.NotZero(t, v)
		assert.False(t, seen[v])
		seen[v] = true
	}
}
