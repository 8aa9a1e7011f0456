package blobstore

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "ranks/v1.snap", strings.NewReader("one"), 3))
	require.NoError(t, s.Put(ctx, "ranks/v2.snap", strings.NewReader("two"), -1))
	require.NoError(t, s.Put(ctx, "labels/v1.snap", strings.NewReader("x"), 1))

	r, err := s.Get(ctx, "ranks/v2.snap")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "two", string(data))
	assert.Equal(t, int64(3), s.Size("ranks/v1.snap"))

	names, err := s.List(ctx, "ranks/")
	require.NoError(t, err)
	assert.Equal(t, []string{"ranks/v1.snap", "ranks/v2.snap"}, names)

	require.NoError(t, s.Delete(ctx, "ranks/v1.snap"))
	require.NoError(t, s.Delete(ctx, "ranks/v1.snap"))
	_, err = s.Get(ctx, "ranks/v1.snap")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(-1), s.Size("ranks/v1.snap"))
}

func TestMemoryStore_PutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	assert.ErrorIs(t, s.Put(ctx, "a", strings.NewReader("x"), 1), context.Canceled)
	assert.Equal(t, int64(-1), s.Size("a"))
}

func TestMemoryCommitter(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCommitter()

	_, _, err := c.Latest(ctx, "ranks")
	assert.ErrorIs(t, err, ErrNotFound)

	v, err := c.Commit(ctx, "ranks", "ranks/a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	v, err = c.Commit(ctx, "ranks", "ranks/b")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)

	v, path, err := c.Latest(ctx, "ranks")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)
	assert.Equal(t, "ranks/b", path)

	_, _, err = c.Latest(ctx, "labels")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCommitter_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCommitter()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Commit(ctx, "s", "p")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, _, err := c.Latest(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, uint64(16), v)
}
