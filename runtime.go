package hugegraph

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/hugegraph/compute"
	"github.com/hupe1980/hugegraph/descriptor"
	"github.com/hupe1980/hugegraph/graph"
	"github.com/hupe1980/hugegraph/paged"
	"github.com/hupe1980/hugegraph/resource"
	"github.com/hupe1980/hugegraph/storage"
	"github.com/hupe1980/hugegraph/storage/snapshot"
)

// Runtime owns the registries and resource budget of one process and runs
// pipelines against them.
type Runtime struct {
	cfg  Config
	opts options

	descriptors *descriptor.Registry
	computers   *compute.Registry
	storages    *storage.Registry
	controller  *resource.Controller

	writer *snapshot.Writer
	reader *snapshot.Reader

	mu       sync.RWMutex
	backends map[descriptor.StorageBackend]storage.StorageFactory
}

// New validates cfg and returns a runtime with empty registries.
func New(cfg Config, optFns ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := applyOptions(cfg, optFns)

	descriptors := descriptor.NewRegistry()
	r := &Runtime{
		cfg:         cfg,
		opts:        opts,
		descriptors: descriptors,
		computers:   compute.NewRegistry(descriptors),
		storages:    storage.NewRegistry(descriptors),
		controller:  resource.NewController(cfg.resourceConfig()),
		backends:    make(map[descriptor.StorageBackend]storage.StorageFactory),
	}

	if opts.store != nil && opts.committer != nil {
		c, _ := cfg.compression()
		r.writer = snapshot.NewWriter(opts.store, opts.committer,
			snapshot.WithCompression(c),
			snapshot.WithController(r.controller),
			snapshot.WithLogger(opts.logger.Logger),
		)
		r.reader = snapshot.NewReader(opts.store, opts.committer,
			snapshot.WithController(r.controller),
			snapshot.WithLogger(opts.logger.Logger),
		)
	}
	return r, nil
}

// Config returns the configuration the runtime was built with.
func (r *Runtime) Config() Config { return r.cfg }

// Logger returns the runtime's logger.
func (r *Runtime) Logger() *Logger { return r.opts.logger }

func (r *Runtime) Descriptors() *descriptor.Registry { return r.descriptors }
func (r *Runtime) Computers() *compute.Registry      { return r.computers }
func (r *Runtime) Storages() *storage.Registry       { return r.storages }
func (r *Runtime) Controller() *resource.Controller  { return r.controller }

// SnapshotWriter returns the writer of the configured snapshot sink, or nil.
func (r *Runtime) SnapshotWriter() *snapshot.Writer { return r.writer }

// SnapshotReader returns the reader of the configured snapshot sink, or nil.
func (r *Runtime) SnapshotReader() *snapshot.Reader { return r.reader }

func (r *Runtime) arrayOptions() []paged.Option {
	return []paged.Option{
		paged.WithConcurrency(r.cfg.Concurrency),
		paged.WithController(r.controller),
	}
}

// NewDoubleArray builds an array of size elements from gen with the
// configured concurrency, charging its memory to the runtime's controller.
func (r *Runtime) NewDoubleArray(ctx context.Context, size int64, gen paged.GeneratorFunc[float64]) (*paged.DoubleArray, error) {
	return paged.GenerateNumeric(ctx, size, gen, r.arrayOptions()...)
}

// NewLongArray is NewDoubleArray for int64 elements.
func (r *Runtime) NewLongArray(ctx context.Context, size int64, gen paged.GeneratorFunc[int64]) (*paged.LongArray, error) {
	return paged.GenerateNumeric(ctx, size, gen, r.arrayOptions()...)
}

// RegisterStorageBackend makes f the factory of every storage descriptor with
// backend b that has no factory of its own. The first registration wins.
func (r *Runtime) RegisterStorageBackend(b descriptor.StorageBackend, f storage.StorageFactory) bool {
	if f == nil {
		panic("hugegraph: nil storage factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.backends[b]; ok {
		return false
	}
	r.backends[b] = f
	return true
}

// ComputationResult is the outcome of one computation of a pipeline.
type ComputationResult struct {
	Descriptor *descriptor.ComputationDescriptor
	compute.RunResult
	Duration time.Duration
}

// PipelineResult is the outcome of RunPipeline.
type PipelineResult struct {
	Pipeline *descriptor.PipelineDescriptor

	// Computations holds the computations that ran, in pipeline order.
	Computations []ComputationResult
	Duration     time.Duration
}

// RunPipeline executes pipeline id over g.
//
// Every storage of the pipeline is instantiated and initialized first, in
// order. The computations then run one after the other, each seeing the
// storages through ComputeContext.Storage. After the last computation the
// storages are flushed. Storages are finalized in reverse order on every
// path; the first failing computation stops the pipeline.
func (r *Runtime) RunPipeline(ctx context.Context, id uint32, g graph.Graph) (PipelineResult, error) {
	p, ok := r.descriptors.Pipeline(id)
	if !ok {
		return PipelineResult{}, &PipelineError{PipelineID: id, cause: ErrPipelineMissing}
	}

	start := time.Now()
	log := r.opts.logger.WithPipeline(p)
	res := PipelineResult{Pipeline: p}

	bound := make(map[uint32]compute.BoundStorage, len(p.Storages))
	err := r.withStorages(ctx, log, p, g, p.Storages, bound, func() error {
		return r.runComputations(ctx, log, p, g, bound, &res)
	})

	res.Duration = time.Since(start)
	if err != nil {
		log.ErrorContext(ctx, "pipeline failed", "duration", res.Duration, "error", err)
		return res, &PipelineError{PipelineID: p.ID, PipelineName: p.Name, cause: err}
	}
	log.InfoContext(ctx, "pipeline completed", "duration", res.Duration, "computations", len(res.Computations))
	return res, nil
}

// withStorages opens a storage session per id, nesting them so fn runs with
// every storage initialized.
func (r *Runtime) withStorages(ctx context.Context, log *Logger, p *descriptor.PipelineDescriptor, g graph.Graph,
	ids []uint32, bound map[uint32]compute.BoundStorage, fn func() error,
) error {
	if len(ids) == 0 {
		return fn()
	}

	id := ids[0]
	rt, err := r.instantiateStorage(ctx, log, id)
	if err != nil {
		return err
	}
	d, _ := r.descriptors.Storage(id)
	rt = &meteredStorage{StorageRuntime: rt, desc: d, mc: r.opts.metricsCollector, log: log}

	return storage.Session(ctx, rt, storage.NewStorageContext(g, p, d), func(sctx *storage.StorageContext) error {
		bound[id] = compute.BoundStorage{Runtime: rt, Context: sctx}
		return r.withStorages(ctx, log, p, g, ids[1:], bound, fn)
	})
}

func (r *Runtime) instantiateStorage(ctx context.Context, log *Logger, id uint32) (storage.StorageRuntime, error) {
	if !r.storages.Has(id) {
		if d, ok := r.descriptors.Storage(id); ok {
			r.mu.RLock()
			f, ok := r.backends[d.Backend]
			r.mu.RUnlock()
			if ok {
				r.storages.RegisterStorageFactory(id, f)
			}
		}
	}

	rt, err := r.storages.InstantiateStorageFromDescriptor(id)
	r.opts.metricsCollector.RecordInstantiate("storage", id, err)
	log.LogInstantiate(ctx, "storage", id, err)
	return rt, err
}

func (r *Runtime) runComputations(ctx context.Context, log *Logger, p *descriptor.PipelineDescriptor, g graph.Graph,
	bound map[uint32]compute.BoundStorage, res *PipelineResult,
) error {
	limit := p.MaxSupersteps
	if limit == 0 {
		limit = r.cfg.MaxSupersteps
	}

	for _, id := range p.Computations {
		c, err := r.computers.InstantiateComputerFromDescriptor(id)
		r.opts.metricsCollector.RecordInstantiate("computation", id, err)
		log.LogInstantiate(ctx, "computation", id, err)
		if err != nil {
			return err
		}

		d, _ := r.descriptors.Computation(id)
		cctx := compute.NewComputeContext(g, p, d)
		cctx.Storages = bound

		start := time.Now()
		run, err := compute.Run(ctx, c, cctx,
			compute.WithMaxSupersteps(limit),
			compute.WithLogger(log.WithDescriptor("computation", d.ID, d.Name).Logger),
			compute.WithObserver(metricsObserver{mc: r.opts.metricsCollector}),
		)
		log.LogRun(ctx, d, run, err)
		res.Computations = append(res.Computations, ComputationResult{
			Descriptor: d,
			RunResult:  run,
			Duration:   time.Since(start),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// meteredStorage records flushes of the wrapped runtime.
type meteredStorage struct {
	storage.StorageRuntime
	desc *descriptor.StorageDescriptor
	mc   MetricsCollector
	log  *Logger
}

func (m *meteredStorage) Flush(ctx *storage.StorageContext) error {
	start := time.Now()
	err := m.StorageRuntime.Flush(ctx)
	m.mc.RecordFlush(m.desc.ID, time.Since(start), err)
	m.log.LogFlush(ctx.Context(), m.desc, err)
	return err
}
