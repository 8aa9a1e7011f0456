package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(filepath.Join(t.TempDir(), "blobs"))

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.Put(ctx, "ranks/v1.snap", strings.NewReader("one"), 3))
	require.NoError(t, s.Put(ctx, "ranks/v2.snap", strings.NewReader("two"), -1))
	require.NoError(t, s.Put(ctx, "labels/v1.snap", strings.NewReader(""), 0))

	r, err := s.Get(ctx, "ranks/v2.snap")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "two", string(data))

	r, err = s.Get(ctx, "labels/v1.snap")
	require.NoError(t, err)
	data, err = io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Empty(t, data)

	names, err = s.List(ctx, "ranks/")
	require.NoError(t, err)
	assert.Equal(t, []string{"ranks/v1.snap", "ranks/v2.snap"}, names)

	require.NoError(t, s.Delete(ctx, "ranks/v1.snap"))
	require.NoError(t, s.Delete(ctx, "ranks/v1.snap"))
	_, err = s.Get(ctx, "ranks/v1.snap")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	require.NoError(t, s.Put(ctx, "a", strings.NewReader("first"), -1))
	require.NoError(t, s.Put(ctx, "a", strings.NewReader("second"), -1))

	r, err := s.Get(ctx, "a")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalStore_InvalidName(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	assert.Error(t, s.Put(ctx, "../escape", strings.NewReader("x"), 1))
	_, err := s.Get(ctx, "/etc/passwd")
	assert.Error(t, err)
}

func TestLocalStore_CancelledPutLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, "a", strings.NewReader("x"), 1), context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalCommitter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := NewLocalCommitter(dir)

	_, _, err := c.Latest(ctx, "ranks")
	assert.ErrorIs(t, err, ErrNotFound)

	v, err := c.Commit(ctx, "ranks", "ranks/v1.snap")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	v, err = c.Commit(ctx, "ranks", "ranks/v2.snap")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)

	// A second committer on the same directory sees the same log.
	v, path, err := NewLocalCommitter(dir).Latest(ctx, "ranks")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)
	assert.Equal(t, "ranks/v2.snap", path)

	_, err = c.Commit(ctx, "../x", "p")
	assert.Error(t, err)
}
