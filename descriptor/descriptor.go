// Package descriptor defines the declarative records that name a computation,
// a storage backend, or a pipeline combining them.
//
// Descriptors are plain immutable data. They are registered once in a Registry
// and looked up by id when a runtime is instantiated; nothing mutates them
// after registration.
package descriptor

import (
	"errors"
	"fmt"
)

// ErrInvalidDescriptor is returned when a descriptor fails validation.
var ErrInvalidDescriptor = errors.New("descriptor: invalid descriptor")

// ComputationSpecies is the execution model of a computation.
type ComputationSpecies uint8

const (
	SpeciesBSP ComputationSpecies = iota
	SpeciesMapReduce
	SpeciesDataflow
	SpeciesActor
)

func (s ComputationSpecies) String() string {
	switch s {
	case SpeciesBSP:
		return "bsp"
	case SpeciesMapReduce:
		return "map-reduce"
	case SpeciesDataflow:
		return "dataflow"
	case SpeciesActor:
		return "actor"
	default:
		return fmt.Sprintf("ComputationSpecies(%d)", uint8(s))
	}
}

// ComputationPattern is the unit of work a computation iterates over.
type ComputationPattern uint8

const (
	PatternVertexCentric ComputationPattern = iota
	PatternEdgeCentric
	PatternGlobal
)

func (p ComputationPattern) String() string {
	switch p {
	case PatternVertexCentric:
		return "vertex-centric"
	case PatternEdgeCentric:
		return "edge-centric"
	case PatternGlobal:
		return "global"
	default:
		return fmt.Sprintf("ComputationPattern(%d)", uint8(p))
	}
}

// StorageSpecies describes how densely a storage holds values.
type StorageSpecies uint8

const (
	StorageDense StorageSpecies = iota
	StorageSparse
	StorageColumnar
)

func (s StorageSpecies) String() string {
	switch s {
	case StorageDense:
		return "dense"
	case StorageSparse:
		return "sparse"
	case StorageColumnar:
		return "columnar"
	default:
		return fmt.Sprintf("StorageSpecies(%d)", uint8(s))
	}
}

// StorageBackend names the structure holding a storage's values.
type StorageBackend uint8

const (
	BackendHugeArray StorageBackend = iota
	BackendMap
	BackendSnapshot
)

func (b StorageBackend) String() string {
	switch b {
	case BackendHugeArray:
		return "huge-array"
	case BackendMap:
		return "map"
	case BackendSnapshot:
		return "snapshot"
	default:
		return fmt.Sprintf("StorageBackend(%d)", uint8(b))
	}
}

// ValueType is the element kind a storage holds.
type ValueType uint8

const (
	ValueLong ValueType = iota
	ValueDouble
	ValueFloat
	ValueObject
)

func (v ValueType) String() string {
	switch v {
	case ValueLong:
		return "long"
	case ValueDouble:
		return "double"
	case ValueFloat:
		return "float"
	case ValueObject:
		return "object"
	default:
		return fmt.Sprintf("ValueType(%d)", uint8(v))
	}
}

// ComputationDescriptor names a computation species and pattern.
type ComputationDescriptor struct {
	ID          uint32
	Name        string
	Species     ComputationSpecies
	Pattern     ComputationPattern
	Description string
}

// Validate checks the descriptor's fields.
func (d *ComputationDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: computation %d has no name", ErrInvalidDescriptor, d.ID)
	}
	if d.Species > SpeciesActor {
		return fmt.Errorf("%w: computation %q has unknown species %s", ErrInvalidDescriptor, d.Name, d.Species)
	}
	if d.Pattern > PatternGlobal {
		return fmt.Errorf("%w: computation %q has unknown pattern %s", ErrInvalidDescriptor, d.Name, d.Pattern)
	}
	return nil
}

func (d *ComputationDescriptor) String() string {
	return fmt.Sprintf("computation %d %q (%s, %s)", d.ID, d.Name, d.Species, d.Pattern)
}

// StorageDescriptor names a storage species, backend and value type.
type StorageDescriptor struct {
	ID          uint32
	Name        string
	Species     StorageSpecies
	Backend     StorageBackend
	ValueType   ValueType
	Description string
}

// Validate checks the descriptor's fields.
func (d *StorageDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: storage %d has no name", ErrInvalidDescriptor, d.ID)
	}
	if d.Species > StorageColumnar {
		return fmt.Errorf("%w: storage %q has unknown species %s", ErrInvalidDescriptor, d.Name, d.Species)
	}
	if d.Backend > BackendSnapshot {
		return fmt.Errorf("%w: storage %q has unknown backend %s", ErrInvalidDescriptor, d.Name, d.Backend)
	}
	if d.ValueType > ValueObject {
		return fmt.Errorf("%w: storage %q has unknown value type %s", ErrInvalidDescriptor, d.Name, d.ValueType)
	}
	return nil
}

func (d *StorageDescriptor) String() string {
	return fmt.Sprintf("storage %d %q (%s, %s, %s)", d.ID, d.Name, d.Species, d.Backend, d.ValueType)
}

// PipelineDescriptor groups the computations and storages of one execution.
type PipelineDescriptor struct {
	ID           uint32
	Name         string
	Computations []uint32
	Storages     []uint32

	// MaxSupersteps bounds every computation of the pipeline; 0 defers to the caller.
	MaxSupersteps int
	// Concurrency is the parallelism hint for array construction; 0 defers to the caller.
	Concurrency int
}

// Validate checks the descriptor's fields.
func (d *PipelineDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: pipeline %d has no name", ErrInvalidDescriptor, d.ID)
	}
	if d.MaxSupersteps < 0 || d.Concurrency < 0 {
		return fmt.Errorf("%w: pipeline %q has negative limits", ErrInvalidDescriptor, d.Name)
	}
	return nil
}

func (d *PipelineDescriptor) String() string {
	return fmt.Sprintf("pipeline %d %q", d.ID, d.Name)
}
