// Package mmap maps snapshot files read-only into memory.
//
// On Unix the mapping uses mmap(2) with a sequential access hint. Other
// platforms read the file into a heap buffer behind the same API.
package mmap
