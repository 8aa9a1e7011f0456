package paged

import "github.com/hupe1980/hugegraph/internal/pageutil"

// Cursor is a restartable traversal over the backing blocks of an array.
//
// A cursor starts before the first block. Each successful Next positions it on
// the next block intersecting its range: Array is that block (borrowed, never
// copied), elements Array()[Offset():Limit()] belong to the range, and Base is
// the global index of Array()[0]. Once Next returns false the cursor stays
// exhausted until Reset or SetRange.
type Cursor[T any] interface {
	// Next positions the cursor on the next block and reports whether one exists.
	Next() bool
	// Array returns the current block, or nil before the first or after the last Next.
	Array() []T
	// Base returns the global index of Array()[0].
	Base() int64
	// Offset returns the first in-range position within Array.
	Offset() int
	// Limit returns the position after the last in-range element within Array.
	Limit() int
	// Reset restarts the traversal of the current range.
	Reset()
	// SetRange scopes the cursor to [from, to) and resets it.
	SetRange(from, to int64)
}

type cursorState uint8

const (
	cursorNotStarted cursorState = iota
	cursorPositioned
	cursorExhausted
)

func clampRange(from, to, length int64) (int64, int64) {
	from = min(max(from, 0), length)
	to = min(max(to, from), length)
	return from, to
}

// singleCursor yields the one block of a single-page array.
type singleCursor[T any] struct {
	page     []T
	from, to int64
	state    cursorState
	block    []T
	offset   int
	limit    int
}

func (c *singleCursor[T]) Next() bool {
	if c.state != cursorNotStarted || c.from >= c.to {
		c.exhaust()
		return false
	}
	c.block = c.page
	c.offset = int(c.from)
	c.limit = int(c.to)
	c.state = cursorPositioned
	return true
}

func (c *singleCursor[T]) exhaust() {
	c.state = cursorExhausted
	c.block = nil
	c.offset, c.limit = 0, 0
}

func (c *singleCursor[T]) Array() []T  { return c.block }
func (c *singleCursor[T]) Base() int64 { return 0 }
func (c *singleCursor[T]) Offset() int { return c.offset }
func (c *singleCursor[T]) Limit() int  { return c.limit }

func (c *singleCursor[T]) Reset() {
	c.state = cursorNotStarted
	c.block = nil
	c.offset, c.limit = 0, 0
}

func (c *singleCursor[T]) SetRange(from, to int64) {
	c.from, c.to = clampRange(from, to, int64(len(c.page)))
	c.Reset()
}

// pagedCursor yields the pages of a multi-page array, each clipped to the range.
type pagedCursor[T any] struct {
	pages  [][]T
	shift  uint
	mask   int64
	length int64

	from, to            int64
	firstPage, lastPage int
	page                int
	state               cursorState
	block               []T
	base                int64
	offset              int
	limit               int
}

func (c *pagedCursor[T]) Next() bool {
	next := c.page + 1
	if c.state == cursorNotStarted {
		next = c.firstPage
	}
	if c.state == cursorExhausted || c.from >= c.to || next > c.lastPage {
		c.exhaust()
		return false
	}

	c.page = next
	c.block = c.pages[next]
	c.base = int64(next) << c.shift
	c.offset = 0
	if next == c.firstPage {
		c.offset = int(pageutil.IndexInPage(c.from, c.mask))
	}
	c.limit = len(c.block)
	if next == c.lastPage {
		c.limit = int(pageutil.IndexInPage(c.to-1, c.mask)) + 1
	}
	c.state = cursorPositioned
	return true
}

func (c *pagedCursor[T]) exhaust() {
	c.state = cursorExhausted
	c.block = nil
	c.base, c.offset, c.limit = 0, 0, 0
}

func (c *pagedCursor[T]) Array() []T  { return c.block }
func (c *pagedCursor[T]) Base() int64 { return c.base }
func (c *pagedCursor[T]) Offset() int { return c.offset }
func (c *pagedCursor[T]) Limit() int  { return c.limit }

func (c *pagedCursor[T]) Reset() {
	c.state = cursorNotStarted
	c.page = c.firstPage - 1
	c.block = nil
	c.base, c.offset, c.limit = 0, 0, 0
}

func (c *pagedCursor[T]) SetRange(from, to int64) {
	c.from, c.to = clampRange(from, to, c.length)
	c.firstPage, c.lastPage = 0, -1
	if c.from < c.to {
		c.firstPage = int(pageutil.PageIndex(c.from, c.shift))
		c.lastPage = int(pageutil.PageIndex(c.to-1, c.shift))
	}
	c.Reset()
}
