// Package paged provides fixed-length arrays that can hold more elements than
// a single allocation comfortably allows.
//
// An array of up to MaxSinglePageSize elements is backed by one contiguous
// slice. Larger arrays are cut into pages of one power-of-two length (sized
// from a 4 KiB target, or 32 KiB when built in parallel) so that an index
// translates to a page and an offset with a shift and a mask. Both layouts
// expose the same operations and Get/Set stay O(1).
//
// # Element kinds
//
//   - LongArray (int64), DoubleArray (float64), FloatArray (float32): NumericArray
//     instantiations that add AddTo.
//   - Array[T] for any other element type (object arrays).
//
// # Iteration
//
// A Cursor walks the backing blocks of an array without copying them:
//
//	c := arr.NewCursor()
//	for c.Next() {
//	    block := c.Array()
//	    for i := c.Offset(); i < c.Limit(); i++ {
//	        sum += block[i] // global index is c.Base() + int64(i)
//	    }
//	}
//
// A cursor borrows the array: it must not outlive it, and the array must not be
// mutated or released while a traversal is in progress.
//
// # Concurrency
//
// Arrays and cursors are not safe for concurrent mutation; callers serialize
// writes. Only Generate fans out internally and it joins before returning.
//
// # Failure semantics
//
// Out-of-range access is a programming error and panics with *BoundsError.
package paged
