package compute

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/hugegraph/descriptor"
)

var (
	// ErrInitFailed is the kind of errors raised while creating or initializing a computer.
	ErrInitFailed = errors.New("compute: init failed")

	// ErrStepFailed is the kind of errors raised by a superstep.
	ErrStepFailed = errors.New("compute: step failed")

	// ErrFinalizeFailed is the kind of errors raised while finalizing a computer.
	ErrFinalizeFailed = errors.New("compute: finalize failed")

	// ErrDescriptorMissing is the kind of errors raised when no computation
	// descriptor is registered under the requested id.
	ErrDescriptorMissing = errors.New("compute: descriptor missing")

	// ErrBackend is the kind of errors raised by resources a computer depends on.
	ErrBackend = errors.New("compute: backend failure")
)

// Error is the error returned by every fallible computation operation.
// errors.Is matches it against its Kind; errors.Unwrap returns the cause.
type Error struct {
	Kind           error
	DescriptorID   uint32
	DescriptorName string

	// Superstep is the failing superstep, or -1 outside the step phase.
	Superstep int
	Message   string
	cause     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	fmt.Fprintf(&sb, ": computation %d", e.DescriptorID)
	if e.DescriptorName != "" {
		fmt.Fprintf(&sb, " %q", e.DescriptorName)
	}
	if e.Superstep >= 0 {
		fmt.Fprintf(&sb, " at superstep %d", e.Superstep)
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

func newError(kind error, d *descriptor.ComputationDescriptor, superstep int, msg string, cause error) *Error {
	e := &Error{Kind: kind, Superstep: superstep, Message: msg, cause: cause}
	if d != nil {
		e.DescriptorID = d.ID
		e.DescriptorName = d.Name
	}
	return e
}

// InitFailed reports a failure creating or initializing the computer of d.
func InitFailed(d *descriptor.ComputationDescriptor, msg string, cause error) *Error {
	return newError(ErrInitFailed, d, -1, msg, cause)
}

// StepFailed reports a failure in superstep of the computer of d.
func StepFailed(d *descriptor.ComputationDescriptor, superstep int, cause error) *Error {
	return newError(ErrStepFailed, d, superstep, "", cause)
}

// FinalizeFailed reports a failure finalizing the computer of d.
func FinalizeFailed(d *descriptor.ComputationDescriptor, cause error) *Error {
	return newError(ErrFinalizeFailed, d, -1, "", cause)
}

// DescriptorMissing reports that no computation descriptor is registered under id.
func DescriptorMissing(id uint32) *Error {
	return &Error{Kind: ErrDescriptorMissing, DescriptorID: id, Superstep: -1}
}

// Backend reports a failure of a resource used by the computer of d.
func Backend(d *descriptor.ComputationDescriptor, msg string, cause error) *Error {
	return newError(ErrBackend, d, -1, msg, cause)
}

// wrap returns err unchanged if it already is an *Error and a new error of
// kind otherwise.
func wrap(kind error, d *descriptor.ComputationDescriptor, superstep int, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return newError(kind, d, superstep, "", err)
}
