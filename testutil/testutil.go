package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/hugegraph/graph"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63n returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// Zipf returns a Zipfian-distributed value in [0, n).
// P(k) ∝ 1/k^s; s=1.0 gives standard Zipf, larger s a heavier head.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Inverse transform over the cumulative weights.
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// UniformEdges returns m edges with uniformly chosen endpoints in [0, n) and
// weights in [0, 1). Self loops are allowed.
func (r *RNG) UniformEdges(n int64, m int) []graph.Edge {
	r.mu.Lock()
	defer r.mu.Unlock()

	edges := make([]graph.Edge, m)
	for i := range edges {
		edges[i] = graph.Edge{
			Source: r.rand.Int63n(n),
			Target: r.rand.Int63n(n),
			Weight: r.rand.Float64(),
		}
	}
	return edges
}

// PowerLawEdges returns m unit-weight edges whose sources follow a Zipf
// distribution with skew s, so a few nodes carry most of the edges.
// Targets are uniform.
func (r *RNG) PowerLawEdges(n int, m int, s float64) []graph.Edge {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Shuffle so the heavy nodes are not always the lowest ids.
	perm := r.rand.Perm(n)
	edges := make([]graph.Edge, m)
	for i := range edges {
		edges[i] = graph.Edge{
			Source: int64(perm[r.zipfLocked(n, s)]),
			Target: r.rand.Int63n(int64(n)),
			Weight: 1,
		}
	}
	return edges
}

// Components returns unit-weight edges forming k disjoint chains over n
// nodes. Node i belongs to component i % k.
func Components(n int64, k int64) []graph.Edge {
	var edges []graph.Edge
	for i := k; i < n; i++ {
		edges = append(edges, graph.Edge{Source: i - k, Target: i, Weight: 1})
	}
	return edges
}

// MustCSR builds an undirected CSR graph and panics on error.
func MustCSR(n int64, edges []graph.Edge, opts ...graph.CSROption) *graph.CSR {
	g, err := graph.NewCSR(n, edges, append([]graph.CSROption{graph.WithUndirected()}, opts...)...)
	if err != nil {
		panic(err)
	}
	return g
}

// ExactComponents labels every node with the smallest node id of its weakly
// connected component.
func ExactComponents(n int64, edges []graph.Edge) []int64 {
	parent := make([]int64, n)
	for i := range parent {
		parent[i] = int64(i)
	}
	var find func(x int64) int64
	find = func(x int64) int64 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, e := range edges {
		a, b := find(e.Source), find(e.Target)
		switch {
		case a < b:
			parent[b] = a
		case b < a:
			parent[a] = b
		}
	}

	labels := make([]int64, n)
	for i := range labels {
		labels[i] = find(int64(i))
	}
	return labels
}

// SamePartition reports whether two labelings group the nodes identically,
// regardless of the label values.
func SamePartition(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	ab := make(map[int64]int64)
	ba := make(map[int64]int64)
	for i := range a {
		if l, ok := ab[a[i]]; ok && l != b[i] {
			return false
		}
		if l, ok := ba[b[i]]; ok && l != a[i] {
			return false
		}
		ab[a[i]] = b[i]
		ba[b[i]] = a[i]
	}
	return true
}
