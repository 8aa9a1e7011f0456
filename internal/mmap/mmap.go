package mmap

import (
	"errors"
	"os"
)

// File is a read-only mapping of a whole file.
type File struct {
	data   []byte
	mapped bool
	f      *os.File
}

// Open maps the file at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &File{f: f}, nil
	}
	if size < 0 || int64(int(size)) != size {
		f.Close()
		return nil, errors.New("mmap: file size out of range")
	}

	data, mapped, err := mapFile(f, int(size))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{data: data, mapped: mapped, f: f}, nil
}

// Bytes returns the mapped content. It must not be used after Close.
func (m *File) Bytes() []byte { return m.data }

// Len returns the file size.
func (m *File) Len() int { return len(m.data) }

// Close unmaps the file. Calling Close twice is a no-op.
func (m *File) Close() error {
	if m == nil {
		return nil
	}
	var err error
	if m.mapped && m.data != nil {
		err = unmap(m.data)
	}
	m.data = nil
	m.mapped = false
	if m.f != nil {
		if cerr := m.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		m.f = nil
	}
	return err
}
