// Package hugestore implements dense storage: one paged array per storage,
// holding a value for every node of the graph.
//
// Numeric columns can be exported as snapshots on Flush when the runtime has
// a snapshot.Writer.
package hugestore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/hugegraph/descriptor"
	"github.com/hupe1980/hugegraph/paged"
	"github.com/hupe1980/hugegraph/resource"
	"github.com/hupe1980/hugegraph/storage"
	"github.com/hupe1980/hugegraph/storage/snapshot"
)

var errNotInitialized = errors.New("hugestore: not initialized")

type options struct {
	controller *resource.Controller
	writer     *snapshot.Writer
	arrayOpts  []paged.Option
	logger     *slog.Logger
}

// Option configures a Runtime.
type Option func(*options)

// WithController reserves the column's memory from rc between Init and Finalize.
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithSnapshots exports the column through w on every Flush.
func WithSnapshots(w *snapshot.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithArrayOptions passes options to the column's paged array.
func WithArrayOptions(opts ...paged.Option) Option {
	return func(o *options) {
		o.arrayOpts = append(o.arrayOpts, opts...)
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

func applyOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Runtime is a dense StorageRuntime. Unwritten numeric elements read as zero
// and unwritten object elements read as None.
//
// Concurrent Read and Write calls are safe as long as no two of them touch
// the same id while one is a Write.
type Runtime struct {
	desc *descriptor.StorageDescriptor
	opts options

	col      column
	reserved int64
	version  uint64
}

var _ storage.StorageRuntime = (*Runtime)(nil)

// New returns an uninitialized runtime for d.
func New(d *descriptor.StorageDescriptor, opts ...Option) *Runtime {
	return &Runtime{desc: d, opts: applyOptions(opts)}
}

// Factory returns a StorageFactory creating runtimes with opts.
func Factory(opts ...Option) storage.StorageFactory {
	return func(d *descriptor.StorageDescriptor) (storage.StorageRuntime, error) {
		if d.Species == descriptor.StorageSparse {
			return nil, storage.InitFailed(d, "hugestore does not serve sparse storage", nil)
		}
		return New(d, opts...), nil
	}
}

// Init allocates a column of NodeCount elements.
func (r *Runtime) Init(ctx *storage.StorageContext) error {
	if r.col != nil {
		return storage.InitFailed(r.desc, "already initialized", nil)
	}
	if ctx.NodeCount < 0 {
		return storage.InitFailed(r.desc, fmt.Sprintf("negative node count %d", ctx.NodeCount), nil)
	}

	bytes := estimateColumn(r.desc.ValueType, ctx.NodeCount, r.opts.arrayOpts)
	if err := r.opts.controller.AcquireMemory(ctx.Context(), bytes); err != nil {
		return storage.InitFailed(r.desc, fmt.Sprintf("reserve %d bytes", bytes), err)
	}
	r.reserved = bytes
	r.col = newColumn(r.desc.ValueType, ctx.NodeCount, r.opts.arrayOpts)

	r.opts.logger.Debug("dense storage initialized",
		"storage", r.desc.Name,
		"nodes", ctx.NodeCount,
		"type", r.desc.ValueType.String(),
		"bytes", bytes,
	)
	return nil
}

func (r *Runtime) Read(_ *storage.StorageContext, id int64) (storage.Value, error) {
	if r.col == nil {
		return storage.None, storage.ReadFailed(r.desc, id, "not initialized", nil)
	}
	if id < 0 || id >= r.col.size() {
		return storage.None, storage.ReadFailed(r.desc, id, fmt.Sprintf("out of range [0,%d)", r.col.size()), nil)
	}
	return r.col.get(id), nil
}

func (r *Runtime) Write(_ *storage.StorageContext, id int64, v storage.Value) error {
	if r.col == nil {
		return storage.WriteFailed(r.desc, id, "not initialized", nil)
	}
	if id < 0 || id >= r.col.size() {
		return storage.WriteFailed(r.desc, id, fmt.Sprintf("out of range [0,%d)", r.col.size()), nil)
	}
	if isNilObject(v) {
		return storage.WriteFailed(r.desc, id, "nil object, write None to clear", nil)
	}
	if !r.col.set(id, v) {
		return storage.WriteFailed(r.desc, id, fmt.Sprintf("cannot store %s in %s column", v, r.desc.ValueType), nil)
	}
	return nil
}

// Flush exports the column when snapshots are configured.
func (r *Runtime) Flush(ctx *storage.StorageContext) error {
	if r.col == nil {
		return storage.FlushFailed(r.desc, errNotInitialized)
	}
	if r.opts.writer == nil {
		return nil
	}

	version, ok, err := r.col.snapshot(ctx.Context(), r.opts.writer, r.desc.Name)
	if err != nil {
		return storage.FlushFailed(r.desc, err)
	}
	if !ok {
		r.opts.logger.Debug("snapshot skipped", "storage", r.desc.Name, "type", r.desc.ValueType.String())
		return nil
	}
	r.version = version
	return nil
}

// Version returns the last snapshot version written by Flush, or 0.
func (r *Runtime) Version() uint64 { return r.version }

// SizeOf returns the bytes retained by the column.
func (r *Runtime) SizeOf() int64 {
	if r.col == nil {
		return 0
	}
	return r.col.sizeOf()
}

// Finalize releases the column and its memory reservation. Calling it on an
// uninitialized runtime is a no-op.
func (r *Runtime) Finalize(_ *storage.StorageContext) error {
	if r.col == nil {
		return nil
	}
	freed := r.col.release()
	r.col = nil
	r.opts.controller.ReleaseMemory(r.reserved)
	r.reserved = 0

	r.opts.logger.Debug("dense storage finalized", "storage", r.desc.Name, "freed", freed)
	return nil
}
