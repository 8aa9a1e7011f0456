package pagecreator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/hugegraph/internal/pageutil"
	"github.com/hupe1980/hugegraph/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(i int64) (int64, error) { return i * 3, nil }

func TestCreate_FillsEveryIndex(t *testing.T) {
	layout := pageutil.NewLayoutWithPageSize(1000, 64)

	res, err := Create(context.Background(), layout, identity, Config{Concurrency: 4})
	require.NoError(t, err)
	require.Len(t, res.Pages, 16)
	assert.Equal(t, int64(1000), res.Size)

	for p, page := range res.Pages {
		assert.Len(t, page, layout.PageLen(p))
		for i, v := range page {
			assert.Equal(t, (layout.PageBase(p)+int64(i))*3, v)
		}
	}
}

func TestCreate_DeterministicAcrossConcurrency(t *testing.T) {
	layout := pageutil.NewLayoutWithPageSize(10_000, 128)
	gen := func(i int64) (float64, error) { return float64(i*i%977) / 7, nil }

	base, err := Create(context.Background(), layout, gen, Config{Concurrency: 1})
	require.NoError(t, err)

	for _, c := range []int{2, 3, 8, 64, 200} {
		got, err := Create(context.Background(), layout, gen, Config{Concurrency: c})
		require.NoError(t, err)
		assert.Equal(t, base.Pages, got.Pages, "concurrency=%d", c)
	}
}

func TestCreate_FailureJoinsWorkers(t *testing.T) {
	layout := pageutil.NewLayoutWithPageSize(4096, 16)
	boom := errors.New("boom")

	var running atomic.Int64
	gen := func(i int64) (int64, error) {
		running.Add(1)
		defer running.Add(-1)
		if i == 1000 {
			return 0, boom
		}
		return i, nil
	}

	res, err := Create(context.Background(), layout, gen, Config{Concurrency: 8})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var ie *IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, int64(1000), ie.Index)
	assert.Nil(t, res.Pages)
	assert.Zero(t, running.Load())
}

func TestCreate_GeneratorPanic(t *testing.T) {
	layout := pageutil.NewLayoutWithPageSize(256, 16)
	gen := func(i int64) (int64, error) {
		if i == 100 {
			panic("bad index")
		}
		return i, nil
	}

	_, err := Create(context.Background(), layout, gen, Config{Concurrency: 2})
	assert.ErrorIs(t, err, ErrGeneratorPanic)
}

func TestCreate_CancelledContext(t *testing.T) {
	layout := pageutil.NewLayoutWithPageSize(256, 16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Create(ctx, layout, identity, Config{Concurrency: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCreate_MemoryAccounting(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20, MaxWorkers: 2})
	layout := pageutil.NewLayoutWithPageSize(1024, 64)

	_, err := Create(context.Background(), layout, identity, Config{Concurrency: 4, Controller: rc, MemoryBytes: 8192})
	require.NoError(t, err)
	assert.Equal(t, int64(8192), rc.MemoryUsage())

	failing := func(i int64) (int64, error) { return 0, errors.New("nope") }
	_, err = Create(context.Background(), layout, failing, Config{Concurrency: 4, Controller: rc, MemoryBytes: 8192})
	require.Error(t, err)
	assert.Equal(t, int64(8192), rc.MemoryUsage())

	_, err = Create(context.Background(), layout, identity, Config{Controller: rc, MemoryBytes: 2 << 20})
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
}

func TestChunkSize(t *testing.T) {
	assert.Equal(t, 1, ChunkSize(4, 8))
	assert.Equal(t, 1, ChunkSize(8, 8))
	assert.Equal(t, 1, ChunkSize(32, 8))
	assert.Equal(t, 2, ChunkSize(33, 8))
	assert.Equal(t, 4, ChunkSize(100, 8))
	assert.Equal(t, 1, ChunkSize(100, 0))
}
