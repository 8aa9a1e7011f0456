package paged

import "fmt"

// BoundsError is the panic value for out-of-range access.
type BoundsError struct {
	Op    string
	Index int64
	Size  int64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("paged: %s index %d out of bounds for length %d", e.Op, e.Index, e.Size)
}

func checkIndex(op string, index, size int64) {
	if uint64(index) >= uint64(size) {
		panic(&BoundsError{Op: op, Index: index, Size: size})
	}
}

func checkLength(op string, length, size int64) {
	if length < 0 || length > size {
		panic(&BoundsError{Op: op, Index: length, Size: size})
	}
}
