package compute

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hupe1980/hugegraph/descriptor"
)

// RunResult describes a finished run.
type RunResult struct {
	// Supersteps is the number of supersteps that completed without error.
	Supersteps int
	// Converged is true when the computer stopped asking for supersteps
	// before the limit was reached.
	Converged bool
}

// Observer receives run events. Implementations must be safe for concurrent use.
type Observer interface {
	ObserveSuperstep(d *descriptor.ComputationDescriptor, superstep int, duration time.Duration, err error)
	ObserveRun(d *descriptor.ComputationDescriptor, result RunResult, duration time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveSuperstep(*descriptor.ComputationDescriptor, int, time.Duration, error) {}
func (noopObserver) ObserveRun(*descriptor.ComputationDescriptor, RunResult, time.Duration, error) {}

type runOptions struct {
	maxSupersteps int
	logger        *slog.Logger
	observer      Observer
}

// RunOption configures Run.
type RunOption func(*runOptions)

// WithMaxSupersteps stops a run after n supersteps. n <= 0 means unlimited.
func WithMaxSupersteps(n int) RunOption {
	return func(o *runOptions) {
		o.maxSupersteps = n
	}
}

// WithLogger sets the logger receiving per-superstep debug records.
func WithLogger(l *slog.Logger) RunOption {
	return func(o *runOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver sets the observer notified of supersteps and the run result.
func WithObserver(obs Observer) RunOption {
	return func(o *runOptions) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// Run drives c through Init, Step until it reports no further work, and
// Finalize.
//
// Finalize is called exactly once, also when Init or a step fails, the
// superstep limit is reached, or ctx is cancelled. ctx is checked between
// supersteps. Step and Finalize failures are joined.
func Run(ctx context.Context, c Computer, cctx *ComputeContext, opts ...RunOption) (RunResult, error) {
	o := runOptions{
		logger:   slog.New(slog.DiscardHandler),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	cctx = cctx.WithContext(ctx)
	d := cctx.Computation
	start := time.Now()

	var res RunResult
	err := runLoop(ctx, c, cctx, &res, &o)

	if ferr := c.Finalize(cctx); ferr != nil {
		err = errors.Join(err, wrap(ErrFinalizeFailed, d, -1, ferr))
	}

	o.observer.ObserveRun(d, res, time.Since(start), err)
	return res, err
}

func runLoop(ctx context.Context, c Computer, cctx *ComputeContext, res *RunResult, o *runOptions) error {
	d := cctx.Computation

	if err := c.Init(cctx); err != nil {
		return wrap(ErrInitFailed, d, -1, err)
	}

	for {
		if o.maxSupersteps > 0 && res.Supersteps >= o.maxSupersteps {
			o.logger.Debug("superstep limit reached", "supersteps", res.Supersteps)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return StepFailed(d, res.Supersteps, err)
		}

		cctx.Superstep = res.Supersteps
		stepStart := time.Now()
		more, err := c.Step(cctx)
		elapsed := time.Since(stepStart)
		o.observer.ObserveSuperstep(d, cctx.Superstep, elapsed, err)

		if err != nil {
			return wrap(ErrStepFailed, d, cctx.Superstep, err)
		}
		res.Supersteps++
		o.logger.Debug("superstep done", "superstep", cctx.Superstep, "duration", elapsed, "continue", more)

		if !more {
			res.Converged = true
			return nil
		}
	}
}
