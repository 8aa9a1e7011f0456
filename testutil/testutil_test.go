package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformEdges(t *testing.T) {
	rng := NewRNG(4711)

	edges := rng.UniformEdges(100, 500)

	assert.Equal(t, 500, len(edges))
	for _, e := range edges {
		assert.GreaterOrEqual(t, e.Source, int64(0))
		assert.Less(t, e.Target, int64(100))
		assert.Less(t, e.Weight, 1.0)
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	e1 := rng.UniformEdges(50, 10)

	rng.Reset()
	e2 := rng.UniformEdges(50, 10)

	assert.Equal(t, e1, e2)
}

func TestPowerLawEdges(t *testing.T) {
	rng := NewRNG(42)
	n := 200

	edges := rng.PowerLawEdges(n, 5000, 1.5)
	assert.Equal(t, 5000, len(edges))

	degree := make(map[int64]int)
	for _, e := range edges {
		degree[e.Source]++
	}
	var maxDegree int
	for _, d := range degree {
		maxDegree = max(maxDegree, d)
	}

	// The heaviest source takes far more than the uniform share of 25.
	assert.Greater(t, maxDegree, 1000)
}

func TestMustCSR(t *testing.T) {
	g := MustCSR(4, Components(4, 2))
	assert.Equal(t, int64(4), g.NodeCount())
	assert.Equal(t, int64(4), g.RelationshipCount())
	assert.Equal(t, int64(1), g.Degree(0))

	assert.Panics(t, func() { MustCSR(-1, nil) })
}

func TestExactComponents(t *testing.T) {
	labels := ExactComponents(7, Components(6, 2))
	assert.Equal(t, []int64{0, 1, 0, 1, 0, 1}, labels[:6])
	assert.Equal(t, int64(6), labels[6])
}

func TestSamePartition(t *testing.T) {
	assert.True(t, SamePartition([]int64{0, 0, 2}, []int64{9, 9, 4}))
	assert.False(t, SamePartition([]int64{0, 0, 2}, []int64{9, 4, 4}))
	assert.False(t, SamePartition([]int64{0, 1}, []int64{3, 3}))
	assert.False(t, SamePartition([]int64{0}, nil))
}
