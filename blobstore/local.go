package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/hugegraph/internal/mmap"
)

// LocalStore is a Store on the local file system. Blobs are written to a
// temporary file and renamed into place, and read through a memory mapping.
type LocalStore struct {
	root string
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore returns a store rooted at dir. The directory is created on
// the first Put.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{root: dir}
}

func (s *LocalStore) path(name string) (string, error) {
	p := filepath.FromSlash(name)
	if !filepath.IsLocal(p) {
		return "", fmt.Errorf("blobstore: invalid blob name %q", name)
	}
	return filepath.Join(s.root, p), nil
}

// Put implements Store.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader, _ int64) error {
	dst, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".put-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Get implements Store. The returned reader holds the mapping until Close.
func (s *LocalStore) Get(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Open(p)
	if err != nil {
		return nil, err
	}
	return &mappedReader{Reader: bytes.NewReader(m.Bytes()), m: m}, nil
}

type mappedReader struct {
	*bytes.Reader
	m *mmap.File
}

func (r *mappedReader) Close() error { return r.m.Close() }

// Delete implements Store.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List implements Store. Temporary files of running Puts are not listed.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == s.root {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".put-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		if name := filepath.ToSlash(rel); strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// LocalCommitter is a Committer keeping one file per version under a
// directory. Versions are created exclusively, so two processes committing
// the same version conflict with ErrConcurrentModification.
type LocalCommitter struct {
	root string
}

var _ Committer = (*LocalCommitter)(nil)

// NewLocalCommitter returns a committer rooted at dir.
func NewLocalCommitter(dir string) *LocalCommitter {
	return &LocalCommitter{root: dir}
}

func (c *LocalCommitter) dir(name string) (string, error) {
	p := filepath.FromSlash(name)
	if !filepath.IsLocal(p) {
		return "", fmt.Errorf("blobstore: invalid series name %q", name)
	}
	return filepath.Join(c.root, p), nil
}

// Commit implements Committer.
func (c *LocalCommitter) Commit(ctx context.Context, name, path string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dir, err := c.dir(name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	latest, err := latestVersion(dir)
	if err != nil {
		return 0, err
	}
	v := latest + 1

	f, err := os.OpenFile(filepath.Join(dir, versionFile(v)), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, ErrConcurrentModification
		}
		return 0, err
	}
	if _, err := f.WriteString(path); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return v, nil
}

// Latest implements Committer.
func (c *LocalCommitter) Latest(_ context.Context, name string) (uint64, string, error) {
	dir, err := c.dir(name)
	if err != nil {
		return 0, "", err
	}
	v, err := latestVersion(dir)
	if err != nil {
		return 0, "", err
	}
	if v == 0 {
		return 0, "", ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(dir, versionFile(v)))
	if err != nil {
		return 0, "", err
	}
	return v, string(data), nil
}

func versionFile(v uint64) string {
	return fmt.Sprintf("%020d.commit", v)
}

func latestVersion(dir string) (uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	var latest uint64
	for _, e := range entries {
		digits, ok := strings.CutSuffix(e.Name(), ".commit")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			continue
		}
		latest = max(latest, v)
	}
	return latest, nil
}
