package hugegraph

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/hugegraph/compute"
	"github.com/hupe1980/hugegraph/descriptor"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    supersteps prometheus.Counter
//	    runs       prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSuperstep(id uint32, superstep int, duration time.Duration, err error) {
//	    p.supersteps.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordSuperstep is called after each superstep of a computation.
	RecordSuperstep(computation uint32, superstep int, duration time.Duration, err error)

	// RecordRun is called after each computation run.
	// supersteps counts the supersteps that completed without error.
	RecordRun(computation uint32, supersteps int, converged bool, duration time.Duration, err error)

	// RecordFlush is called after each storage flush.
	RecordFlush(storage uint32, duration time.Duration, err error)

	// RecordInstantiate is called after a factory created a runtime.
	// kind is "computation" or "storage".
	RecordInstantiate(kind string, id uint32, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSuperstep(uint32, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRun(uint32, int, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordFlush(uint32, time.Duration, error)          {}
func (NoopMetricsCollector) RecordInstantiate(string, uint32, error)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SuperstepCount      atomic.Int64
	SuperstepErrors     atomic.Int64
	SuperstepTotalNanos atomic.Int64
	RunCount            atomic.Int64
	RunErrors           atomic.Int64
	RunConverged        atomic.Int64
	RunTotalNanos       atomic.Int64
	FlushCount          atomic.Int64
	FlushErrors         atomic.Int64
	InstantiateCount    atomic.Int64
	InstantiateErrors   atomic.Int64
}

// RecordSuperstep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSuperstep(_ uint32, _ int, duration time.Duration, err error) {
	b.SuperstepCount.Add(1)
	b.SuperstepTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SuperstepErrors.Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ uint32, _ int, converged bool, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if converged {
		b.RunConverged.Add(1)
	}
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(_ uint32, _ time.Duration, err error) {
	b.FlushCount.Add(1)
	if err != nil {
		b.FlushErrors.Add(1)
	}
}

// RecordInstantiate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInstantiate(_ string, _ uint32, err error) {
	b.InstantiateCount.Add(1)
	if err != nil {
		b.InstantiateErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SuperstepCount:    b.SuperstepCount.Load(),
		SuperstepErrors:   b.SuperstepErrors.Load(),
		SuperstepAvgNanos: avg(b.SuperstepTotalNanos.Load(), b.SuperstepCount.Load()),
		RunCount:          b.RunCount.Load(),
		RunErrors:         b.RunErrors.Load(),
		RunConverged:      b.RunConverged.Load(),
		RunAvgNanos:       avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		FlushCount:        b.FlushCount.Load(),
		FlushErrors:       b.FlushErrors.Load(),
		InstantiateCount:  b.InstantiateCount.Load(),
		InstantiateErrors: b.InstantiateErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SuperstepCount    int64
	SuperstepErrors   int64
	SuperstepAvgNanos int64
	RunCount          int64
	RunErrors         int64
	RunConverged      int64
	RunAvgNanos       int64
	FlushCount        int64
	FlushErrors       int64
	InstantiateCount  int64
	InstantiateErrors int64
}

// metricsObserver feeds compute run events into a MetricsCollector.
type metricsObserver struct {
	mc MetricsCollector
}

var _ compute.Observer = metricsObserver{}

func (o metricsObserver) ObserveSuperstep(d *descriptor.ComputationDescriptor, superstep int, duration time.Duration, err error) {
	o.mc.RecordSuperstep(d.ID, superstep, duration, err)
}

func (o metricsObserver) ObserveRun(d *descriptor.ComputationDescriptor, res compute.RunResult, duration time.Duration, err error) {
	o.mc.RecordRun(d.ID, res.Supersteps, res.Converged, duration, err)
}
