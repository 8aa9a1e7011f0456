package hugegraph

import (
	"errors"
	"fmt"
)

// ErrPipelineMissing is returned by RunPipeline for an unregistered pipeline id.
var ErrPipelineMissing = errors.New("hugegraph: pipeline missing")

// PipelineError reports a failed pipeline run.
//
// The cause is a *compute.Error or *storage.Error naming the failing phase and
// descriptor, or several of them joined when more than one phase failed.
// errors.Is and errors.As reach them through Unwrap.
type PipelineError struct {
	PipelineID   uint32
	PipelineName string
	cause        error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("hugegraph: pipeline %d %q: %v", e.PipelineID, e.PipelineName, e.cause)
}

func (e *PipelineError) Unwrap() error { return e.cause }
