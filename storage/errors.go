package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/hugegraph/descriptor"
)

var (
	ErrInitFailed        = errors.New("storage: init failed")
	ErrReadFailed        = errors.New("storage: read failed")
	ErrWriteFailed       = errors.New("storage: write failed")
	ErrFlushFailed       = errors.New("storage: flush failed")
	ErrFinalizeFailed    = errors.New("storage: finalize failed")
	ErrDescriptorMissing = errors.New("storage: descriptor missing")
	ErrBackend           = errors.New("storage: backend failure")
)

// Error is the error returned by every fallible storage operation.
// errors.Is matches it against its Kind; errors.Unwrap returns the cause.
type Error struct {
	Kind           error
	DescriptorID   uint32
	DescriptorName string

	// NodeID is the node being read or written, or -1.
	NodeID  int64
	Message string
	cause   error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	fmt.Fprintf(&sb, ": storage %d", e.DescriptorID)
	if e.DescriptorName != "" {
		fmt.Fprintf(&sb, " %q", e.DescriptorName)
	}
	if e.NodeID >= 0 {
		fmt.Fprintf(&sb, " node %d", e.NodeID)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

// Is reports whether target is the error's kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.cause }

func newError(kind error, d *descriptor.StorageDescriptor, node int64, msg string, cause error) *Error {
	e := &Error{Kind: kind, NodeID: node, Message: msg, cause: cause}
	if d != nil {
		e.DescriptorID = d.ID
		e.DescriptorName = d.Name
	}
	return e
}

// InitFailed reports a failure creating or initializing the storage of d.
func InitFailed(d *descriptor.StorageDescriptor, msg string, cause error) *Error {
	return newError(ErrInitFailed, d, -1, msg, cause)
}

// ReadFailed reports a failure reading node from the storage of d.
func ReadFailed(d *descriptor.StorageDescriptor, node int64, msg string, cause error) *Error {
	return newError(ErrReadFailed, d, node, msg, cause)
}

// WriteFailed reports a failure writing node to the storage of d.
func WriteFailed(d *descriptor.StorageDescriptor, node int64, msg string, cause error) *Error {
	return newError(ErrWriteFailed, d, node, msg, cause)
}

// FlushFailed reports a failure flushing the storage of d.
func FlushFailed(d *descriptor.StorageDescriptor, cause error) *Error {
	return newError(ErrFlushFailed, d, -1, "", cause)
}

// FinalizeFailed reports a failure finalizing the storage of d.
func FinalizeFailed(d *descriptor.StorageDescriptor, cause error) *Error {
	return newError(ErrFinalizeFailed, d, -1, "", cause)
}

// DescriptorMissing reports that no storage descriptor is registered under id.
func DescriptorMissing(id uint32) *Error {
	return &Error{Kind: ErrDescriptorMissing, DescriptorID: id, NodeID: -1}
}

// Backend reports a failure of the structure behind the storage of d.
func Backend(d *descriptor.StorageDescriptor, msg string, cause error) *Error {
	return newError(ErrBackend, d, -1, msg, cause)
}

func wrap(kind error, d *descriptor.StorageDescriptor, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return newError(kind, d, -1, "", err)
}
