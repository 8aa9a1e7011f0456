// Package sparse implements storage for values held by few nodes. Only
// written ids occupy memory; reading any other id returns None.
package sparse

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/hugegraph/descriptor"
	"github.com/hupe1980/hugegraph/paged"
	"github.com/hupe1980/hugegraph/storage"
	"github.com/hupe1980/hugegraph/storage/snapshot"
)

var errNotInitialized = errors.New("sparse: not initialized")

type options struct {
	writer *snapshot.Writer
	logger *slog.Logger
}

// Option configures a Runtime.
type Option func(*options)

// WithSnapshots exports the dense projection of numeric storages through w on
// every Flush. Ids without a value are exported as zero.
func WithSnapshots(w *snapshot.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Runtime is a sparse StorageRuntime. It is safe for concurrent use.
type Runtime struct {
	desc *descriptor.StorageDescriptor
	opts options

	mu        sync.RWMutex
	values    map[int64]storage.Value
	present   *roaring64.Bitmap
	nodeCount int64
	version   uint64
}

var _ storage.StorageRuntime = (*Runtime)(nil)

// New returns an uninitialized runtime for d.
func New(d *descriptor.StorageDescriptor, opts ...Option) *Runtime {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Runtime{desc: d, opts: o}
}

// Factory returns a StorageFactory creating runtimes with opts.
func Factory(opts ...Option) storage.StorageFactory {
	return func(d *descriptor.StorageDescriptor) (storage.StorageRuntime, error) {
		return New(d, opts...), nil
	}
}

func (r *Runtime) Init(ctx *storage.StorageContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.values != nil {
		return storage.InitFailed(r.desc, "already initialized", nil)
	}
	if ctx.NodeCount < 0 {
		return storage.InitFailed(r.desc, fmt.Sprintf("negative node count %d", ctx.NodeCount), nil)
	}
	r.values = make(map[int64]storage.Value)
	r.present = roaring64.New()
	r.nodeCount = ctx.NodeCount
	return nil
}

func (r *Runtime) Read(_ *storage.StorageContext, id int64) (storage.Value, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.values == nil {
		return storage.None, storage.ReadFailed(r.desc, id, "not initialized", nil)
	}
	if id < 0 || id >= r.nodeCount {
		return storage.None, storage.ReadFailed(r.desc, id, fmt.Sprintf("out of range [0,%d)", r.nodeCount), nil)
	}
	v, ok := r.values[id]
	if !ok {
		return storage.None, nil
	}
	return v, nil
}

// Write stores v under id. Writing None removes the value.
func (r *Runtime) Write(_ *storage.StorageContext, id int64, v storage.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.values == nil {
		return storage.WriteFailed(r.desc, id, "not initialized", nil)
	}
	if id < 0 || id >= r.nodeCount {
		return storage.WriteFailed(r.desc, id, fmt.Sprintf("out of range [0,%d)", r.nodeCount), nil)
	}
	if v.IsNone() {
		delete(r.values, id)
		r.present.Remove(uint64(id))
		return nil
	}
	if v.Type() != r.desc.ValueType {
		return storage.WriteFailed(r.desc, id, fmt.Sprintf("cannot store %s in %s storage", v, r.desc.ValueType), nil)
	}
	if v.Type() == descriptor.ValueObject && v.Object() == nil {
		return storage.WriteFailed(r.desc, id, "nil object, write None to clear", nil)
	}
	r.values[id] = v
	r.present.Add(uint64(id))
	return nil
}

// Len returns the number of ids holding a value.
func (r *Runtime) Len() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.present == nil {
		return 0
	}
	return r.present.GetCardinality()
}

// IDs yields the ids holding a value in ascending order, as of the call.
func (r *Runtime) IDs() iter.Seq[int64] {
	r.mu.RLock()
	var ids *roaring64.Bitmap
	if r.present != nil {
		ids = r.present.Clone()
	}
	r.mu.RUnlock()

	return func(yield func(int64) bool) {
		if ids == nil {
			return
		}
		it := ids.Iterator()
		for it.HasNext() {
			if !yield(int64(it.Next())) {
				return
			}
		}
	}
}

// Flush exports the dense projection of numeric storages when snapshots are
// configured.
func (r *Runtime) Flush(ctx *storage.StorageContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.values == nil {
		return storage.FlushFailed(r.desc, errNotInitialized)
	}
	if r.opts.writer == nil {
		return nil
	}

	var (
		version uint64
		err     error
	)
	switch r.desc.ValueType {
	case descriptor.ValueLong:
		version, err = flushProjection(ctx.Context(), r, storage.Value.Long)
	case descriptor.ValueDouble:
		version, err = flushProjection(ctx.Context(), r, storage.Value.Double)
	case descriptor.ValueFloat:
		version, err = flushProjection(ctx.Context(), r, storage.Value.Float)
	default:
		r.opts.logger.Debug("snapshot skipped", "storage", r.desc.Name, "type", r.desc.ValueType.String())
		return nil
	}
	if err != nil {
		return storage.FlushFailed(r.desc, err)
	}
	r.version = version
	return nil
}

// flushProjection must be called with r.mu held.
func flushProjection[T snapshot.Element](ctx context.Context, r *Runtime, take func(storage.Value) T) (uint64, error) {
	arr := paged.NewNumeric[T](r.nodeCount)
	defer arr.Release()

	it := r.present.Iterator()
	for it.HasNext() {
		id := int64(it.Next())
		arr.Set(id, take(r.values[id]))
	}
	return snapshot.Flush(ctx, r.opts.writer, r.desc.Name, arr)
}

// Version returns the last snapshot version written by Flush, or 0.
func (r *Runtime) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Finalize drops all values.
func (r *Runtime) Finalize(_ *storage.StorageContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.values != nil {
		r.opts.logger.Debug("sparse storage finalized", "storage", r.desc.Name, "values", r.present.GetCardinality())
	}
	r.values = nil
	r.present = nil
	return nil
}
