//go:build longtests

package paged

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests allocate more than 1 GiB and are excluded from default runs:
//
//	go test ./paged -tags=longtests -run Boundary -count=1
func TestBoundary_MultiPageAboveSinglePageLimit(t *testing.T) {
	size := MaxSinglePageSize + 1000
	a := NewFloatArray(size)
	require.True(t, a.IsPaged())

	last := size - 1
	a.Set(0, 1)
	a.Set(MaxSinglePageSize, 2)
	a.Set(last, 3)

	assert.Equal(t, float32(1), a.Get(0))
	assert.Equal(t, float32(2), a.Get(MaxSinglePageSize))
	assert.Equal(t, float32(3), a.Get(last))
	assert.Zero(t, a.Get(MaxSinglePageSize-1))
	assert.Zero(t, a.Get(last-1))
}

func TestBoundary_CursorCountsBothSidesOfLimit(t *testing.T) {
	for _, n := range []int64{MaxSinglePageSize, MaxSinglePageSize + 1} {
		a := NewFloatArray(n)
		assert.Equal(t, n > MaxSinglePageSize, a.IsPaged())

		var visited int64
		c := a.NewCursor()
		for c.Next() {
			visited += int64(c.Limit() - c.Offset())
		}
		assert.Equal(t, n, visited)
		a.Release()
	}
}
