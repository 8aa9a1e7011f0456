package compute

import (
	"github.com/hupe1980/hugegraph/storage"
)

// BoundStorage is an initialized storage of a running pipeline together with
// the context its calls need.
type BoundStorage struct {
	Runtime storage.StorageRuntime
	Context *storage.StorageContext
}

// Read reads the value of node id.
func (b BoundStorage) Read(id int64) (storage.Value, error) {
	return b.Runtime.Read(b.Context, id)
}

// Write stores v for node id.
func (b BoundStorage) Write(id int64, v storage.Value) error {
	return b.Runtime.Write(b.Context, id, v)
}

// Access performs one StorageAccessor access.
func (b BoundStorage) Access(id int64, mode storage.AccessMode, v storage.Value) (storage.Value, error) {
	return storage.NewAccessor(b.Runtime).Access(b.Context, id, mode, v)
}

// Storage returns the pipeline storage registered under descriptor id.
func (c *ComputeContext) Storage(id uint32) (BoundStorage, bool) {
	b, ok := c.Storages[id]
	return b, ok
}
