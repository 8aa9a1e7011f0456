package hugestore

import (
	"context"

	"github.com/hupe1980/hugegraph/descriptor"
	"github.com/hupe1980/hugegraph/paged"
	"github.com/hupe1980/hugegraph/storage"
	"github.com/hupe1980/hugegraph/storage/snapshot"
)

// column is one dense array of a fixed value type.
type column interface {
	get(id int64) storage.Value
	// set reports false if v is not of the column's type.
	set(id int64, v storage.Value) bool
	size() int64
	sizeOf() int64
	// snapshot exports the column. ok is false for columns without a
	// snapshot encoding.
	snapshot(ctx context.Context, w *snapshot.Writer, name string) (version uint64, ok bool, err error)
	release() int64
}

func newColumn(t descriptor.ValueType, size int64, opts []paged.Option) column {
	switch t {
	case descriptor.ValueLong:
		return &numericColumn[int64]{
			arr:  paged.NewLongArray(size, opts...),
			typ:  t,
			wrap: storage.LongValue,
			take: storage.Value.Long,
		}
	case descriptor.ValueDouble:
		return &numericColumn[float64]{
			arr:  paged.NewDoubleArray(size, opts...),
			typ:  t,
			wrap: storage.DoubleValue,
			take: storage.Value.Double,
		}
	case descriptor.ValueFloat:
		return &numericColumn[float32]{
			arr:  paged.NewFloatArray(size, opts...),
			typ:  t,
			wrap: storage.FloatValue,
			take: storage.Value.Float,
		}
	default:
		return &objectColumn{arr: paged.NewObjectArray[any](size, opts...)}
	}
}

// estimateColumn returns the bytes a column of t and size occupies.
func estimateColumn(t descriptor.ValueType, size int64, opts []paged.Option) int64 {
	switch t {
	case descriptor.ValueLong:
		return paged.EstimateMemory[int64](size, opts...)
	case descriptor.ValueDouble:
		return paged.EstimateMemory[float64](size, opts...)
	case descriptor.ValueFloat:
		return paged.EstimateMemory[float32](size, opts...)
	default:
		return paged.EstimateMemory[any](size, opts...)
	}
}

// isNilObject reports an Object value holding nil. Object columns store nil
// for "no value", so such writes are rejected.
func isNilObject(v storage.Value) bool {
	return !v.IsNone() && v.Type() == descriptor.ValueObject && v.Object() == nil
}

type numericColumn[T snapshot.Element] struct {
	arr  *paged.NumericArray[T]
	typ  descriptor.ValueType
	wrap func(T) storage.Value
	take func(storage.Value) T
}

func (c *numericColumn[T]) get(id int64) storage.Value { return c.wrap(c.arr.Get(id)) }

func (c *numericColumn[T]) set(id int64, v storage.Value) bool {
	if v.IsNone() || v.Type() != c.typ {
		return false
	}
	c.arr.Set(id, c.take(v))
	return true
}

func (c *numericColumn[T]) size() int64   { return c.arr.Size() }
func (c *numericColumn[T]) sizeOf() int64 { return c.arr.SizeOf() }

func (c *numericColumn[T]) snapshot(ctx context.Context, w *snapshot.Writer, name string) (uint64, bool, error) {
	v, err := snapshot.Flush(ctx, w, name, c.arr)
	return v, true, err
}

func (c *numericColumn[T]) release() int64 { return c.arr.Release() }

// objectColumn holds arbitrary values. Unwritten elements read as None.
type objectColumn struct {
	arr *paged.Array[any]
}

func (c *objectColumn) get(id int64) storage.Value {
	v := c.arr.Get(id)
	if v == nil {
		return storage.None
	}
	return storage.ObjectValue(v)
}

func (c *objectColumn) set(id int64, v storage.Value) bool {
	if v.IsNone() || v.Type() != descriptor.ValueObject || v.Object() == nil {
		return false
	}
	c.arr.Set(id, v.Object())
	return true
}

func (c *objectColumn) size() int64   { return c.arr.Size() }
func (c *objectColumn) sizeOf() int64 { return c.arr.SizeOf() }

func (c *objectColumn) snapshot(context.Context, *snapshot.Writer, string) (uint64, bool, error) {
	return 0, false, nil
}

func (c *objectColumn) release() int64 { return c.arr.Release() }
