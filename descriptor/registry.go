package descriptor

import (
	"slices"
	"sync"
)

// Registry holds descriptors by id. It is safe for concurrent use.
//
// Registration is first-wins: registering an id that is already present
// returns false and keeps the original. Descriptors are copied on the way in
// and handed out as read-only pointers.
type Registry struct {
	mu           sync.RWMutex
	computations map[uint32]*ComputationDescriptor
	storages     map[uint32]*StorageDescriptor
	pipelines    map[uint32]*PipelineDescriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		computations: make(map[uint32]*ComputationDescriptor),
		storages:     make(map[uint32]*StorageDescriptor),
		pipelines:    make(map[uint32]*PipelineDescriptor),
	}
}

// RegisterComputation adds d. It reports whether the id was new.
func (r *Registry) RegisterComputation(d ComputationDescriptor) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.computations[d.ID]; ok {
		return false, nil
	}
	r.computations[d.ID] = &d
	return true, nil
}

// Computation returns the computation descriptor registered under id.
func (r *Registry) Computation(id uint32) (*ComputationDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.computations[id]
	return d, ok
}

// RegisterStorage adds d. It reports whether the id was new.
func (r *Registry) RegisterStorage(d StorageDescriptor) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storages[d.ID]; ok {
		return false, nil
	}
	r.storages[d.ID] = &d
	return true, nil
}

// Storage returns the storage descriptor registered under id.
func (r *Registry) Storage(id uint32) (*StorageDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.storages[id]
	return d, ok
}

// RegisterPipeline adds d. It reports whether the id was new.
func (r *Registry) RegisterPipeline(d PipelineDescriptor) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, err
	}
	d.Computations = slices.Clone(d.Computations)
	d.Storages = slices.Clone(d.Storages)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pipelines[d.ID]; ok {
		return false, nil
	}
	r.pipelines[d.ID] = &d
	return true, nil
}

// Pipeline returns the pipeline descriptor registered under id.
func (r *Registry) Pipeline(id uint32) (*PipelineDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.pipelines[id]
	return d, ok
}

// ComputationIDs returns the registered computation ids in ascending order.
func (r *Registry) ComputationIDs() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.computations)
}

// StorageIDs returns the registered storage ids in ascending order.
func (r *Registry) StorageIDs() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.storages)
}

// Clear removes every descriptor.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.computations)
	clear(r.storages)
	clear(r.pipelines)
}

func sortedKeys[V any](m map[uint32]V) []uint32 {
	ids := make([]uint32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
