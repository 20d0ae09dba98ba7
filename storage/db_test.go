package storage

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStorage(t *testing.T) Storage {
	t.Helper()
	db, err := New(&Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPrefixQueries(t *testing.T) {
	db := newMemoryStorage(t)

	require.NoError(t, db.Set([]byte("run:b"), []byte("2")))
	require.NoError(t, db.Set([]byte("run:a"), []byte("1")))
	require.NoError(t, db.Set([]byte("other:c"), []byte("3")))

	items, err := db.GetByPrefix([]byte("run:"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "run:a", string(items[0].Key))
	assert.Equal(t, "1", string(items[0].Value))
	assert.Equal(t, "run:b", string(items[1].Key))

	total, err := db.CountKeysByPrefix([]byte("run:"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	keys, err := db.ListKeys("run:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"run:a", "run:b"}, keys)

	keys, err = db.ListKeys("missing:")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestGetKeyAndDelete(t *testing.T) {
	db := newMemoryStorage(t)

	_, err := db.GetKey([]byte("nope"))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Set([]byte("k"), []byte("v")))
	v, err := db.GetKey([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, db.Delete([]byte("k")))
	_, err = db.GetKey([]byte("k"))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, db.Vacuum())
}

func TestBackupAndLoad(t *testing.T) {
	src := newMemoryStorage(t)
	require.NoError(t, src.Set([]byte("run:1"), []byte("done")))

	var buf bytes.Buffer
	_, err := src.Backup(context.Background(), &buf, 0)
	require.NoError(t, err)

	dst := newMemoryStorage(t)
	require.NoError(t, dst.Load(&buf))

	v, err := dst.GetKey([]byte("run:1"))
	require.NoError(t, err)
	assert.Equal(t, "done", string(v))
}

func TestBackupHonoursCancelledContext(t *testing.T) {
	db := newMemoryStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.Backup(ctx, &bytes.Buffer{}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDestroyRemovesDataDirectory(t *testing.T) {
	dir, err := os.MkdirTemp("", "avaxwf-storage")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	db, err := NewWithPath(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, db.DbPath())
	require.NoError(t, db.Set([]byte("k"), []byte("v")))

	require.NoError(t, Destroy(db))
	assert.NoDirExists(t, dir)
}

func TestDestroyInMemory(t *testing.T) {
	db, err := New(&Config{Path: "ignored", InMemory: true})
	require.NoError(t, err)
	assert.Empty(t, db.DbPath())
	assert.NoError(t, Destroy(db))
}
