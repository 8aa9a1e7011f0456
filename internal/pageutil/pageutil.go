package pageutil

import "math/bits"

const (
	// PageSize4KiB is the target page size in bytes for regular construction.
	PageSize4KiB = 4 * 1024
	// PageSize32KiB is the target page size in bytes for parallel construction.
	PageSize32KiB = 32 * 1024
)

// PageSizeFor returns the largest power of two n with n*elementWidth <= targetBytes.
// The result is at least 1.
func PageSizeFor(targetBytes, elementWidth int) int {
	if elementWidth <= 0 {
		elementWidth = 1
	}
	n := targetBytes / elementWidth
	if n <= 1 {
		return 1
	}
	return 1 << (bits.Len(uint(n)) - 1)
}

// PageShift returns log2(pageSize). pageSize must be a power of two.
func PageShift(pageSize int) uint {
	return uint(bits.TrailingZeros(uint(pageSize)))
}

// PageMask returns the offset mask for pageSize.
func PageMask(pageSize int) int64 {
	return int64(pageSize) - 1
}

// PageIndex returns the page holding index.
func PageIndex(index int64, shift uint) int64 {
	return index >> shift
}

// IndexInPage returns the offset of index within its page.
func IndexInPage(index int64, mask int64) int64 {
	return index & mask
}

// NumPages returns ceil(size / pageSize).
func NumPages(size, pageSize int64) int64 {
	return (size + pageSize - 1) / pageSize
}

// LastPageSize returns the length of the final page of an array of size
// elements. An exact multiple yields a full page; an empty array yields 0.
func LastPageSize(size, pageSize int64) int64 {
	if size == 0 {
		return 0
	}
	if rem := size % pageSize; rem != 0 {
		return rem
	}
	return pageSize
}

// Layout describes how an array of Size elements is cut into pages.
type Layout struct {
	Size         int64
	PageSize     int
	Shift        uint
	Mask         int64
	NumPages     int
	LastPageSize int
}

// NewLayout computes the page layout for size elements of elementWidth bytes
// using pages of at most targetBytes.
func NewLayout(size int64, elementWidth, targetBytes int) Layout {
	pageSize := PageSizeFor(targetBytes, elementWidth)
	return NewLayoutWithPageSize(size, pageSize)
}

// NewLayoutWithPageSize computes the layout for an explicit power-of-two page size.
func NewLayoutWithPageSize(size int64, pageSize int) Layout {
	ps := int64(pageSize)
	return Layout{
		Size:         size,
		PageSize:     pageSize,
		Shift:        PageShift(pageSize),
		Mask:         PageMask(pageSize),
		NumPages:     int(NumPages(size, ps)),
		LastPageSize: int(LastPageSize(size, ps)),
	}
}

// PageLen returns the length of page p.
func (l Layout) PageLen(p int) int {
	if p == l.NumPages-1 {
		return l.LastPageSize
	}
	return l.PageSize
}

// PageBase returns the global index of the first element of page p.
func (l Layout) PageBase(p int) int64 {
	return int64(p) << l.Shift
}
