package hugegraph

import (
	"github.com/hupe1980/hugegraph/descriptor"
	"github.com/hupe1980/hugegraph/storage"
	"github.com/hupe1980/hugegraph/storage/hugestore"
	"github.com/hupe1980/hugegraph/storage/sparse"
)

// RegisterDefaults registers the built-in storage runtimes by backend:
//
//   - BackendHugeArray: dense hugestore columns, or sparse storage for
//     descriptors of species StorageSparse
//   - BackendMap: sparse storage
//   - BackendSnapshot: dense hugestore columns that require a snapshot sink
//
// All of them export snapshots on Flush when the runtime has a sink.
func RegisterDefaults(rt *Runtime) {
	dense := hugestore.Factory(rt.hugestoreOptions()...)
	sparseFactory := sparse.Factory(rt.sparseOptions()...)

	rt.RegisterStorageBackend(descriptor.BackendHugeArray, func(d *descriptor.StorageDescriptor) (storage.StorageRuntime, error) {
		if d.Species == descriptor.StorageSparse {
			return sparseFactory(d)
		}
		return dense(d)
	})
	rt.RegisterStorageBackend(descriptor.BackendMap, sparseFactory)
	rt.RegisterStorageBackend(descriptor.BackendSnapshot, func(d *descriptor.StorageDescriptor) (storage.StorageRuntime, error) {
		if rt.writer == nil {
			return nil, storage.InitFailed(d, "snapshot backend without snapshot sink", nil)
		}
		return dense(d)
	})
}

func (r *Runtime) hugestoreOptions() []hugestore.Option {
	opts := []hugestore.Option{
		hugestore.WithController(r.controller),
		hugestore.WithLogger(r.opts.logger.Logger),
	}
	if r.writer != nil {
		opts = append(opts, hugestore.WithSnapshots(r.writer))
	}
	return opts
}

func (r *Runtime) sparseOptions() []sparse.Option {
	opts := []sparse.Option{sparse.WithLogger(r.opts.logger.Logger)}
	if r.writer != nil {
		opts = append(opts, sparse.WithSnapshots(r.writer))
	}
	return opts
}
