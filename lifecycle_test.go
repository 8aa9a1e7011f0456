package hugegraph_test

import (
	"context"
	"errors"
	"io"
	"runtime"
	"testing"
	"time"

	"github.com/hupe1980/hugegraph"
	"github.com/hupe1980/hugegraph/blobstore"
	"github.com/hupe1980/hugegraph/storage"
	"github.com/hupe1980/hugegraph/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rejectingStore fails every Put without reading the snapshot stream.
type rejectingStore struct {
	*blobstore.MemoryStore
}

var errRejected = errors.New("rejected")

func (rejectingStore) Put(context.Context, string, io.Reader, int64) error { return errRejected }

// TestNoGoroutineLeaks verifies that pipelines leave no snapshot encoders or
// page workers behind, on success and when the snapshot upload fails.
func TestNoGoroutineLeaks(t *testing.T) {
	tests := []struct {
		name    string
		store   blobstore.Store
		wantErr error
	}{
		{name: "memory store", store: blobstore.NewMemoryStore()},
		{name: "rejecting store", store: rejectingStore{blobstore.NewMemoryStore()}, wantErr: errRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runtime.GC()
			time.Sleep(50 * time.Millisecond)
			initial := runtime.NumGoroutine()

			cfg := hugegraph.DefaultConfig()
			cfg.IOLimitBytesPerSec = 64 << 20
			rt, err := hugegraph.New(cfg,
				hugegraph.WithLogger(nil),
				hugegraph.WithSnapshotSink(tt.store, blobstore.NewMemoryCommitter()),
			)
			require.NoError(t, err)
			hugegraph.RegisterDefaults(rt)
			registerComponents(rt)

			rng := testutil.NewRNG(7)
			g := testutil.MustCSR(2_000, rng.UniformEdges(2_000, 3_000))

			for i := 0; i < 3; i++ {
				_, err := rt.RunPipeline(context.Background(), pipelineID, g)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, storage.ErrFlushFailed)
					assert.ErrorIs(t, err, tt.wantErr)
					continue
				}
				require.NoError(t, err)
			}
			assert.Zero(t, rt.Controller().MemoryUsage())

			var final int
			for i := 0; i < 10; i++ {
				runtime.GC()
				time.Sleep(20 * time.Millisecond)
				final = runtime.NumGoroutine()
				if final <= initial+1 {
					break
				}
			}
			t.Logf("goroutines: initial=%d final=%d", initial, final)
			assert.LessOrEqual(t, final, initial+1, "goroutine leak")
		})
	}
}
