package blobstore

import (
	"bytes"
	"context"
	"io"
	"slices"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store implementation for testing.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Put reads r fully and stores it.
func (m *MemoryStore) Put(ctx context.Context, name string, r io.Reader, _ int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = data
	return nil
}

// Get returns a reader over a copy of the blob.
func (m *MemoryStore) Get(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(data))), nil
}

// Delete removes a blob.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, name)
	return nil
}

// List returns all blobs matching the prefix.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Size returns the size of a stored blob, or -1 if it does not exist.
func (m *MemoryStore) Size(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[name]
	if !ok {
		return -1
	}
	return int64(len(data))
}

type commit struct {
	version uint64
	path    string
}

// MemoryCommitter is an in-memory Committer for testing and single-process use.
type MemoryCommitter struct {
	mu     sync.Mutex
	series map[string][]commit
}

var _ Committer = (*MemoryCommitter)(nil)

// NewMemoryCommitter returns an empty committer.
func NewMemoryCommitter() *MemoryCommitter {
	return &MemoryCommitter{series: make(map[string][]commit)}
}

// Commit implements Committer.
func (c *MemoryCommitter) Commit(ctx context.Context, name, path string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	v := uint64(len(c.series[name])) + 1
	c.series[name] = append(c.series[name], commit{version: v, path: path})
	return v, nil
}

// Latest implements Committer.
func (c *MemoryCommitter) Latest(_ context.Context, name string) (uint64, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.series[name]
	if len(s) == 0 {
		return 0, "", ErrNotFound
	}
	last := s[len(s)-1]
	return last.version, last.path, nil
}
