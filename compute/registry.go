package compute

import (
	"slices"
	"sync"

	"github.com/hupe1980/hugegraph/descriptor"
)

// Registry maps computation descriptor ids to computer factories.
//
// It is safe for concurrent use. Locks are held only for map access; a
// factory always runs without the lock.
type Registry struct {
	descriptors *descriptor.Registry

	mu        sync.RWMutex
	factories map[uint32]ComputerFactory
}

// NewRegistry returns an empty registry resolving descriptors from descriptors.
func NewRegistry(descriptors *descriptor.Registry) *Registry {
	return &Registry{
		descriptors: descriptors,
		factories:   make(map[uint32]ComputerFactory),
	}
}

// RegisterComputerFactory registers f for id. It returns false and keeps the
// existing factory if id is already registered.
func (r *Registry) RegisterComputerFactory(id uint32, f ComputerFactory) bool {
	if f == nil {
		panic("compute: nil factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[id]; ok {
		return false
	}
	r.factories[id] = f
	return true
}

// Has reports whether a factory is registered for id.
func (r *Registry) Has(id uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[id]
	return ok
}

// IDs returns the ids with a registered factory in ascending order.
func (r *Registry) IDs() []uint32 {
	r.mu.RLock()
	ids := make([]uint32, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// InstantiateComputerFromDescriptor creates the computer for descriptor id.
//
// It fails with ErrDescriptorMissing if no descriptor is registered under id,
// and with ErrInitFailed naming the descriptor if no factory is registered or
// the factory fails.
func (r *Registry) InstantiateComputerFromDescriptor(id uint32) (Computer, error) {
	d, ok := r.descriptors.Computation(id)
	if !ok {
		return nil, DescriptorMissing(id)
	}

	r.mu.RLock()
	f, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, InitFailed(d, "no computer factory registered", nil)
	}

	c, err := f(d)
	if err != nil {
		return nil, wrap(ErrInitFailed, d, -1, err)
	}
	if c == nil {
		return nil, InitFailed(d, "factory returned no computer", nil)
	}
	return c, nil
}
