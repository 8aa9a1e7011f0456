package paged

import (
	"iter"

	"github.com/hupe1980/hugegraph/resource"
)

// Array is a fixed-length array of T backed by one block or by pages.
// Every position holds a value; positions never set hold the zero value.
type Array[T any] struct {
	b backing[T]

	// rc and reserved track memory charged to a controller by Generate.
	rc       *resource.Controller
	reserved int64
}

// New returns a zero-filled array of size elements.
func New[T any](size int64, opts ...Option) *Array[T] {
	o := applyOptions(opts)
	return &Array[T]{b: newBacking[T](size, o.singlePageLimit)}
}

// NewObjectArray returns a zero-filled array of size elements of any type.
func NewObjectArray[T any](size int64, opts ...Option) *Array[T] {
	return New[T](size, opts...)
}

// Of returns an array holding a copy of values.
func Of[T any](values ...T) *Array[T] {
	a := New[T](int64(len(values)))
	a.b.writeRange(0, values)
	return a
}

// Size returns the number of elements.
func (a *Array[T]) Size() int64 { return a.b.size() }

// SizeOf returns the number of bytes retained by the array.
func (a *Array[T]) SizeOf() int64 { return a.b.sizeOf() }

// Get returns the element at index.
func (a *Array[T]) Get(index int64) T {
	checkIndex("get", index, a.b.size())
	return a.b.get(index)
}

// Set stores value at index.
func (a *Array[T]) Set(index int64, value T) {
	checkIndex("set", index, a.b.size())
	a.b.set(index, value)
}

// SetAll overwrites every element with gen(index), in increasing index order.
func (a *Array[T]) SetAll(gen func(index int64) T) {
	a.b.setAll(gen)
}

// Fill overwrites every element with value.
func (a *Array[T]) Fill(value T) {
	a.b.fill(value)
}

// CopyTo copies the first length elements into dest and resets the remaining
// elements of dest to the zero value. It panics if length exceeds either size.
func (a *Array[T]) CopyTo(dest *Array[T], length int64) {
	checkLength("copy", length, a.b.size())
	checkLength("copy", length, dest.b.size())

	c := a.b.newCursor()
	c.SetRange(0, length)
	for c.Next() {
		dest.b.writeRange(c.Base()+int64(c.Offset()), c.Array()[c.Offset():c.Limit()])
	}
	dest.b.clearFrom(length)
}

// CopyOf returns a new array of newLength elements. The first
// min(Size(), newLength) elements are copied; the rest are zero.
func (a *Array[T]) CopyOf(newLength int64) *Array[T] {
	dst := New[T](newLength)
	a.CopyTo(dst, min(a.b.size(), newLength))
	return dst
}

// ToSlice materializes the array into a new slice.
func (a *Array[T]) ToSlice() []T {
	out := make([]T, 0, a.b.size())
	c := a.b.newCursor()
	for c.Next() {
		out = append(out, c.Array()[c.Offset():c.Limit()]...)
	}
	return out
}

// Values returns a lazy sequence of all elements in index order.
// The sequence can be ranged over any number of times.
func (a *Array[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		c := a.b.newCursor()
		for c.Next() {
			for _, v := range c.Array()[c.Offset():c.Limit()] {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// All returns a lazy sequence of (index, element) pairs in index order.
func (a *Array[T]) All() iter.Seq2[int64, T] {
	return func(yield func(int64, T) bool) {
		c := a.b.newCursor()
		for c.Next() {
			block, base := c.Array(), c.Base()
			for i := c.Offset(); i < c.Limit(); i++ {
				if !yield(base+int64(i), block[i]) {
					return
				}
			}
		}
	}
}

// NewCursor returns a cursor over [0, Size()).
func (a *Array[T]) NewCursor() Cursor[T] {
	return a.b.newCursor()
}

// InitCursor scopes c to the whole array and resets it. If c was not created by
// an array with the same layout, a new cursor is returned instead.
func (a *Array[T]) InitCursor(c Cursor[T]) Cursor[T] {
	return a.InitCursorRange(c, 0, a.b.size())
}

// InitCursorRange scopes c to [from, to) of this array and resets it,
// reusing c when its layout matches.
func (a *Array[T]) InitCursorRange(c Cursor[T], from, to int64) Cursor[T] {
	switch b := a.b.(type) {
	case *singleBacking[T]:
		if sc, ok := c.(*singleCursor[T]); ok {
			sc.page = b.page
			sc.SetRange(from, to)
			return sc
		}
	case *pagedBacking[T]:
		if pc, ok := c.(*pagedCursor[T]); ok {
			pc.pages, pc.shift, pc.mask, pc.length = b.pages, b.shift, b.mask, b.length
			pc.SetRange(from, to)
			return pc
		}
	}
	nc := a.b.newCursor()
	nc.SetRange(from, to)
	return nc
}

// Release drops the backing memory and returns the bytes freed. The array has
// size 0 afterwards.
func (a *Array[T]) Release() int64 {
	freed := a.b.sizeOf()
	a.b = &singleBacking[T]{}
	if a.reserved > 0 {
		a.rc.ReleaseMemory(a.reserved)
		a.reserved = 0
	}
	return freed
}

// IsPaged reports whether the array uses the multi-page layout.
func (a *Array[T]) IsPaged() bool {
	_, ok := a.b.(*pagedBacking[T])
	return ok
}
