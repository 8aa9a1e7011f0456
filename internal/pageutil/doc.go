// Package pageutil implements the address arithmetic shared by paged arrays.
//
// A global index is split into a page index and an offset with a shift and a
// mask, which requires every page length to be a power of two:
//
//	page   := index >> shift
//	offset := index & mask
//
// Page lengths are derived from a target page size in bytes divided by the
// element width, rounded down to a power of two.
package pageutil
