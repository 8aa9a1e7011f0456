package descriptor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ComputationFirstWins(t *testing.T) {
	r := NewRegistry()

	ok, err := r.RegisterComputation(ComputationDescriptor{ID: 1, Name: "pagerank", Species: SpeciesBSP})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.RegisterComputation(ComputationDescriptor{ID: 1, Name: "other", Species: SpeciesActor})
	require.NoError(t, err)
	assert.False(t, ok)

	d, found := r.Computation(1)
	require.True(t, found)
	assert.Equal(t, "pagerank", d.Name)
	assert.Equal(t, SpeciesBSP, d.Species)

	_, found = r.Computation(2)
	assert.False(t, found)
}

func TestRegistry_StoragesAndPipelines(t *testing.T) {
	r := NewRegistry()

	ok, err := r.RegisterStorage(StorageDescriptor{ID: 10, Name: "ranks", Backend: BackendHugeArray, ValueType: ValueDouble})
	require.NoError(t, err)
	assert.True(t, ok)

	steps := []uint32{1, 2}
	ok, err = r.RegisterPipeline(PipelineDescriptor{ID: 100, Name: "p", Computations: steps, Storages: []uint32{10}})
	require.NoError(t, err)
	assert.True(t, ok)

	steps[0] = 99
	p, found := r.Pipeline(100)
	require.True(t, found)
	assert.Equal(t, []uint32{1, 2}, p.Computations, "registered pipeline is isolated from the caller's slice")

	s, found := r.Storage(10)
	require.True(t, found)
	assert.Equal(t, "storage 10 \"ranks\" (dense, huge-array, double)", s.String())
	assert.Equal(t, []uint32{10}, r.StorageIDs())
}

func TestRegistry_Validation(t *testing.T) {
	r := NewRegistry()

	_, err := r.RegisterComputation(ComputationDescriptor{ID: 1})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	_, err = r.RegisterComputation(ComputationDescriptor{ID: 1, Name: "x", Pattern: ComputationPattern(9)})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	_, err = r.RegisterStorage(StorageDescriptor{ID: 1, Name: "x", ValueType: ValueType(42)})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	_, err = r.RegisterPipeline(PipelineDescriptor{ID: 1, Name: "x", MaxSupersteps: -1})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	assert.Empty(t, r.ComputationIDs())
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	_, _ = r.RegisterComputation(ComputationDescriptor{ID: 3, Name: "a"})
	_, _ = r.RegisterComputation(ComputationDescriptor{ID: 1, Name: "b"})
	assert.Equal(t, []uint32{1, 3}, r.ComputationIDs())

	r.Clear()
	assert.Empty(t, r.ComputationIDs())

	ok, err := r.RegisterComputation(ComputationDescriptor{ID: 3, Name: "c"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegistry_ConcurrentRegistration(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	wins := make(chan bool, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.RegisterComputation(ComputationDescriptor{ID: 7, Name: "race"})
			assert.NoError(t, err)
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	var n int
	for ok := range wins {
		if ok {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestTagStrings(t *testing.T) {
	assert.Equal(t, "map-reduce", SpeciesMapReduce.String())
	assert.Equal(t, "edge-centric", PatternEdgeCentric.String())
	assert.Equal(t, "columnar", StorageColumnar.String())
	assert.Equal(t, "snapshot", BackendSnapshot.String())
	assert.Equal(t, "float", ValueFloat.String())
	assert.Equal(t, "ValueType(9)", ValueType(9).String())
}
