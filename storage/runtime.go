// Package storage holds the state of graph computations between and after
// supersteps.
//
// A StorageRuntime is created per execution from a StorageDescriptor by a
// factory registered in a Registry and driven through Init, any number of
// Read, Write and Flush calls, and Finalize.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/hugegraph/descriptor"
	"github.com/hupe1980/hugegraph/graph"
)

// StorageContext is handed to every call of a StorageRuntime.
type StorageContext struct {
	Graph    graph.Graph
	Pipeline *descriptor.PipelineDescriptor
	Storage  *descriptor.StorageDescriptor

	// NodeCount is Graph.NodeCount(), captured once.
	NodeCount int64

	ctx context.Context
}

// NewStorageContext returns a context for storage s of pipeline p over g.
func NewStorageContext(g graph.Graph, p *descriptor.PipelineDescriptor, s *descriptor.StorageDescriptor) *StorageContext {
	var n int64
	if g != nil {
		n = g.NodeCount()
	}
	return &StorageContext{Graph: g, Pipeline: p, Storage: s, NodeCount: n}
}

// Context returns the cancellation context. It defaults to context.Background.
func (c *StorageContext) Context() context.Context {
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of c bound to ctx.
func (c *StorageContext) WithContext(ctx context.Context) *StorageContext {
	if ctx == nil {
		panic("storage: nil context")
	}
	c2 := *c
	c2.ctx = ctx
	return &c2
}

// StorageRuntime is the lifecycle of one storage instance.
type StorageRuntime interface {
	Init(ctx *StorageContext) error
	Read(ctx *StorageContext, id int64) (Value, error)
	Write(ctx *StorageContext, id int64, v Value) error
	Flush(ctx *StorageContext) error

	// Finalize releases the storage's resources. It is called once.
	Finalize(ctx *StorageContext) error
}

// StorageFactory creates a StorageRuntime for a descriptor.
type StorageFactory func(d *descriptor.StorageDescriptor) (StorageRuntime, error)

// AccessMode selects the operation of StorageAccessor.Access.
type AccessMode uint8

const (
	AccessRead AccessMode = iota
	AccessWrite
	AccessReadWrite
)

func (m AccessMode) String() string {
	switch m {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("AccessMode(%d)", uint8(m))
	}
}

// StorageAccessor performs one access per call.
//
// AccessRead ignores value and returns the stored one. AccessWrite stores
// value and returns it. AccessReadWrite stores value and returns the value it
// replaced.
type StorageAccessor interface {
	Access(ctx *StorageContext, id int64, mode AccessMode, value Value) (Value, error)
}

// NewAccessor returns a StorageAccessor on top of rt.
func NewAccessor(rt StorageRuntime) StorageAccessor {
	return accessor{rt: rt}
}

type accessor struct {
	rt StorageRuntime
}

func (a accessor) Access(ctx *StorageContext, id int64, mode AccessMode, value Value) (Value, error) {
	switch mode {
	case AccessRead:
		return a.rt.Read(ctx, id)
	case AccessWrite:
		if err := a.rt.Write(ctx, id, value); err != nil {
			return None, err
		}
		return value, nil
	case AccessReadWrite:
		old, err := a.rt.Read(ctx, id)
		if err != nil {
			return None, err
		}
		if err := a.rt.Write(ctx, id, value); err != nil {
			return None, err
		}
		return old, nil
	default:
		return None, Backend(ctx.Storage, fmt.Sprintf("unknown access mode %s", mode), nil)
	}
}

// Session runs fn against an initialized rt.
//
// rt is flushed when fn succeeds and finalized on every path. Errors of
// different phases are joined.
func Session(ctx context.Context, rt StorageRuntime, sctx *StorageContext, fn func(sctx *StorageContext) error) error {
	sctx = sctx.WithContext(ctx)
	d := sctx.Storage

	err := func() error {
		if err := rt.Init(sctx); err != nil {
			return wrap(ErrInitFailed, d, err)
		}
		if err := fn(sctx); err != nil {
			return err
		}
		return wrap(ErrFlushFailed, d, rt.Flush(sctx))
	}()

	if ferr := rt.Finalize(sctx); ferr != nil {
		err = errors.Join(err, wrap(ErrFinalizeFailed, d, ferr))
	}
	return err
}
