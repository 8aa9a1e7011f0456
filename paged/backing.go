package paged

import (
	"unsafe"

	"github.com/hupe1980/hugegraph/internal/pageutil"
)

const (
	// MaxSinglePageSize is the largest array kept in one contiguous block.
	MaxSinglePageSize int64 = 1 << 28

	sliceHeaderBytes = int64(unsafe.Sizeof([]byte(nil)))
	// backing interface, controller pointer and reservation
	arrayHeaderBytes = 32
)

// backing is the storage layout of an Array. It has exactly two
// implementations: singleBacking and pagedBacking.
type backing[T any] interface {
	size() int64
	get(index int64) T
	set(index int64, value T)
	ptr(index int64) *T
	fill(value T)
	setAll(gen func(index int64) T)
	writeRange(base int64, src []T)
	clearFrom(from int64)
	sizeOf() int64
	newCursor() Cursor[T]
}

func elementWidth[T any]() int {
	var zero T
	if w := int(unsafe.Sizeof(zero)); w > 0 {
		return w
	}
	return 1
}

func newBacking[T any](size, singlePageLimit int64) backing[T] {
	if size <= singlePageLimit {
		return &singleBacking[T]{page: make([]T, size)}
	}
	layout := pageutil.NewLayout(size, elementWidth[T](), pageutil.PageSize4KiB)
	return newPagedBacking[T](layout)
}

// singleBacking holds all elements in one slice.
type singleBacking[T any] struct {
	page []T
}

func (b *singleBacking[T]) size() int64              { return int64(len(b.page)) }
func (b *singleBacking[T]) get(index int64) T        { return b.page[index] }
func (b *singleBacking[T]) set(index int64, value T) { b.page[index] = value }
func (b *singleBacking[T]) ptr(index int64) *T       { return &b.page[index] }

func (b *singleBacking[T]) fill(value T) {
	for i := range b.page {
		b.page[i] = value
	}
}

func (b *singleBacking[T]) setAll(gen func(index int64) T) {
	for i := range b.page {
		b.page[i] = gen(int64(i))
	}
}

func (b *singleBacking[T]) writeRange(base int64, src []T) {
	copy(b.page[base:], src)
}

func (b *singleBacking[T]) clearFrom(from int64) {
	clear(b.page[from:])
}

func (b *singleBacking[T]) sizeOf() int64 {
	return arrayHeaderBytes + sliceHeaderBytes + int64(len(b.page))*int64(elementWidth[T]())
}

func (b *singleBacking[T]) newCursor() Cursor[T] {
	c := &singleCursor[T]{page: b.page}
	c.SetRange(0, int64(len(b.page)))
	return c
}

// pagedBacking holds elements in pages of one power-of-two length; only the
// last page may be shorter.
type pagedBacking[T any] struct {
	pages  [][]T
	length int64
	shift  uint
	mask   int64
}

func newPagedBacking[T any](layout pageutil.Layout) *pagedBacking[T] {
	pages := make([][]T, layout.NumPages)
	for p := range pages {
		pages[p] = make([]T, layout.PageLen(p))
	}
	return fromPages(pages, layout)
}

func fromPages[T any](pages [][]T, layout pageutil.Layout) *pagedBacking[T] {
	return &pagedBacking[T]{
		pages:  pages,
		length: layout.Size,
		shift:  layout.Shift,
		mask:   layout.Mask,
	}
}

func (b *pagedBacking[T]) size() int64 { return b.length }

func (b *pagedBacking[T]) get(index int64) T {
	return b.pages[pageutil.PageIndex(index, b.shift)][pageutil.IndexInPage(index, b.mask)]
}

func (b *pagedBacking[T]) set(index int64, value T) {
	b.pages[pageutil.PageIndex(index, b.shift)][pageutil.IndexInPage(index, b.mask)] = value
}

func (b *pagedBacking[T]) ptr(index int64) *T {
	return &b.pages[pageutil.PageIndex(index, b.shift)][pageutil.IndexInPage(index, b.mask)]
}

func (b *pagedBacking[T]) fill(value T) {
	for _, page := range b.pages {
		for i := range page {
			page[i] = value
		}
	}
}

func (b *pagedBacking[T]) setAll(gen func(index int64) T) {
	for p, page := range b.pages {
		base := int64(p) << b.shift
		for i := range page {
			page[i] = gen(base + int64(i))
		}
	}
}

func (b *pagedBacking[T]) writeRange(base int64, src []T) {
	for len(src) > 0 {
		page := b.pages[pageutil.PageIndex(base, b.shift)]
		n := copy(page[pageutil.IndexInPage(base, b.mask):], src)
		src = src[n:]
		base += int64(n)
	}
}

func (b *pagedBacking[T]) clearFrom(from int64) {
	if from >= b.length {
		return
	}
	first := int(pageutil.PageIndex(from, b.shift))
	clear(b.pages[first][pageutil.IndexInPage(from, b.mask):])
	for _, page := range b.pages[first+1:] {
		clear(page)
	}
}

func (b *pagedBacking[T]) sizeOf() int64 {
	return arrayHeaderBytes + sliceHeaderBytes + int64(len(b.pages))*sliceHeaderBytes + b.length*int64(elementWidth[T]())
}

func (b *pagedBacking[T]) newCursor() Cursor[T] {
	c := &pagedCursor[T]{pages: b.pages, shift: b.shift, mask: b.mask, length: b.length}
	c.SetRange(0, b.length)
	return c
}

// EstimateMemory returns the bytes New retains for an array of size elements
// of T built with opts.
func EstimateMemory[T any](size int64, opts ...Option) int64 {
	o := applyOptions(opts)
	return estimateMemory[T](size, o.singlePageLimit, pageutil.PageSize4KiB)
}

func estimateMemory[T any](size, singlePageLimit int64, pageBytes int) int64 {
	width := int64(elementWidth[T]())
	if size <= singlePageLimit {
		return arrayHeaderBytes + sliceHeaderBytes + size*width
	}
	layout := pageutil.NewLayout(size, int(width), pageBytes)
	return arrayHeaderBytes + sliceHeaderBytes + int64(layout.NumPages)*sliceHeaderBytes + size*width
}
