// Package compute runs the per-superstep logic of graph computations.
//
// A Computer is created per execution from a ComputationDescriptor by a
// factory registered in a Registry. The caller drives it: Init once, Step
// until it reports no further work, then Finalize. Run implements that loop
// with a superstep limit and cancellation between supersteps.
package compute

import (
	"context"

	"github.com/hupe1980/hugegraph/descriptor"
	"github.com/hupe1980/hugegraph/graph"
)

// ComputeContext is handed to every lifecycle call of a Computer.
type ComputeContext struct {
	Graph       graph.Graph
	Pipeline    *descriptor.PipelineDescriptor
	Computation *descriptor.ComputationDescriptor

	// NodeCount is Graph.NodeCount(), captured once.
	NodeCount int64

	// Superstep is the index of the running superstep. Run updates it.
	Superstep int

	// Storages holds the initialized storages of the pipeline by descriptor
	// id. It is nil outside a pipeline.
	Storages map[uint32]BoundStorage

	ctx context.Context
}

// NewComputeContext returns a context for executing c of pipeline p over g.
func NewComputeContext(g graph.Graph, p *descriptor.PipelineDescriptor, c *descriptor.ComputationDescriptor) *ComputeContext {
	var n int64
	if g != nil {
		n = g.NodeCount()
	}
	return &ComputeContext{
		Graph:       g,
		Pipeline:    p,
		Computation: c,
		NodeCount:   n,
	}
}

// Context returns the cancellation context of the execution. It defaults to
// context.Background.
func (c *ComputeContext) Context() context.Context {
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of c bound to ctx.
func (c *ComputeContext) WithContext(ctx context.Context) *ComputeContext {
	if ctx == nil {
		panic("compute: nil context")
	}
	c2 := *c
	c2.ctx = ctx
	return &c2
}

// ComputeStep is the per-superstep logic of a computation.
type ComputeStep interface {
	// Compute runs one superstep. It returns false once the computation has
	// converged and no further superstep is needed.
	Compute(ctx *ComputeContext, messages *Messages) (bool, error)
}

// StepFunc adapts a function to ComputeStep.
type StepFunc func(ctx *ComputeContext, messages *Messages) (bool, error)

// Compute implements ComputeStep.
func (f StepFunc) Compute(ctx *ComputeContext, messages *Messages) (bool, error) {
	return f(ctx, messages)
}

// Computer is the lifecycle of one computation execution.
type Computer interface {
	Init(ctx *ComputeContext) error

	// Step runs one superstep and reports whether another is needed.
	Step(ctx *ComputeContext) (bool, error)

	// Finalize releases the computer's resources. It is called once.
	Finalize(ctx *ComputeContext) error
}

// ComputerFactory creates a Computer for a descriptor.
type ComputerFactory func(d *descriptor.ComputationDescriptor) (Computer, error)
