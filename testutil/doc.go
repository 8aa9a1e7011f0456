// Package testutil provides testing utilities for hugegraph.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source, random graph builders and exact
// reference results to check computations against.
//
// # Random Graphs
//
//	rng := testutil.NewRNG(seed)
//	edges := rng.UniformEdges(1000, 5000)
//	g := testutil.MustCSR(1000, edges)
//
// # Ground Truth
//
//	labels := testutil.ExactComponents(1000, edges)
//	ok := testutil.SamePartition(labels, computed)
package testutil
