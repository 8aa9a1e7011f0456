// Package graph defines the read-only topology view that computations and
// storages receive, and a compressed sparse row implementation of it built on
// paged arrays.
package graph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hugegraph/paged"
)

// ErrNodeOutOfRange is returned when an edge names a node outside [0, nodeCount).
var ErrNodeOutOfRange = errors.New("graph: node out of range")

// Graph is the topology capability consumed by runtimes. Nodes are dense
// ids in [0, NodeCount()).
type Graph interface {
	NodeCount() int64
	RelationshipCount() int64
	Degree(node int64) int64

	// ForEachRelationship calls fn for every outgoing relationship of node
	// until fn returns false.
	ForEachRelationship(node int64, fn func(target int64, weight float64) bool)
}

// Edge is one directed, weighted relationship.
type Edge struct {
	Source int64
	Target int64
	Weight float64
}

type csrOptions struct {
	undirected bool
	pageOpts   []paged.Option
}

// CSROption configures NewCSR.
type CSROption func(*csrOptions)

// WithUndirected stores every edge in both directions.
func WithUndirected() CSROption {
	return func(o *csrOptions) {
		o.undirected = true
	}
}

// WithArrayOptions passes options to the paged arrays holding the topology.
func WithArrayOptions(opts ...paged.Option) CSROption {
	return func(o *csrOptions) {
		o.pageOpts = append(o.pageOpts, opts...)
	}
}

// CSR is a compressed sparse row adjacency. Relationships of a node keep the
// order in which their edges were given.
type CSR struct {
	nodeCount int64
	offsets   *paged.LongArray
	targets   *paged.LongArray
	weights   *paged.DoubleArray
}

var _ Graph = (*CSR)(nil)

// NewCSR builds a CSR over nodeCount nodes from edges.
func NewCSR(nodeCount int64, edges []Edge, opts ...CSROption) (*CSR, error) {
	if nodeCount < 0 {
		return nil, fmt.Errorf("graph: negative node count %d", nodeCount)
	}
	var o csrOptions
	for _, opt := range opts {
		opt(&o)
	}

	for i, e := range edges {
		if e.Source < 0 || e.Source >= nodeCount || e.Target < 0 || e.Target >= nodeCount {
			return nil, fmt.Errorf("%w: edge %d (%d -> %d) with %d nodes", ErrNodeOutOfRange, i, e.Source, e.Target, nodeCount)
		}
	}

	relCount := int64(len(edges))
	if o.undirected {
		relCount *= 2
	}

	offsets := paged.NewLongArray(nodeCount+1, o.pageOpts...)
	for _, e := range edges {
		offsets.AddTo(e.Source+1, 1)
		if o.undirected {
			offsets.AddTo(e.Target+1, 1)
		}
	}
	for n := int64(1); n <= nodeCount; n++ {
		offsets.AddTo(n, offsets.Get(n-1))
	}

	targets := paged.NewLongArray(relCount, o.pageOpts...)
	weights := paged.NewDoubleArray(relCount, o.pageOpts...)
	next := offsets.CopyOf(nodeCount)

	put := func(src, dst int64, w float64) {
		pos := next.Get(src)
		targets.Set(pos, dst)
		weights.Set(pos, w)
		next.Set(src, pos+1)
	}
	for _, e := range edges {
		put(e.Source, e.Target, e.Weight)
		if o.undirected {
			put(e.Target, e.Source, e.Weight)
		}
	}
	next.Release()

	return &CSR{nodeCount: nodeCount, offsets: offsets, targets: targets, weights: weights}, nil
}

// NodeCount returns the number of nodes.
func (g *CSR) NodeCount() int64 { return g.nodeCount }

// RelationshipCount returns the number of stored relationships. Undirected
// graphs count each edge twice.
func (g *CSR) RelationshipCount() int64 { return g.targets.Size() }

// Degree returns the out-degree of node.
func (g *CSR) Degree(node int64) int64 {
	return g.offsets.Get(node+1) - g.offsets.Get(node)
}

// ForEachRelationship implements Graph.
func (g *CSR) ForEachRelationship(node int64, fn func(target int64, weight float64) bool) {
	start, end := g.offsets.Get(node), g.offsets.Get(node+1)
	for pos := start; pos < end; pos++ {
		if !fn(g.targets.Get(pos), g.weights.Get(pos)) {
			return
		}
	}
}

// SizeOf returns the bytes retained by the topology arrays.
func (g *CSR) SizeOf() int64 {
	return g.offsets.SizeOf() + g.targets.SizeOf() + g.weights.SizeOf()
}
