package compute

import (
	"errors"

	"github.com/hupe1980/hugegraph/paged"
)

// Sequence is a Computer that runs its steps in order every superstep and
// exchanges messages between supersteps. It continues while any step asks
// for another superstep.
type Sequence struct {
	steps    []ComputeStep
	reducer  Reducer
	pageOpts []paged.Option

	messages *Messages
}

var _ Computer = (*Sequence)(nil)

// NewSequence returns a computer running steps with messages reduced by reducer.
func NewSequence(reducer Reducer, steps ...ComputeStep) *Sequence {
	return &Sequence{steps: steps, reducer: reducer}
}

// WithArrayOptions sets the options of the message buffers allocated by Init.
func (s *Sequence) WithArrayOptions(opts ...paged.Option) *Sequence {
	s.pageOpts = opts
	return s
}

// Messages returns the inbox, or nil before Init and after Finalize.
func (s *Sequence) Messages() *Messages { return s.messages }

// Init implements Computer.
func (s *Sequence) Init(ctx *ComputeContext) error {
	if len(s.steps) == 0 {
		return errors.New("sequence has no steps")
	}
	s.messages = NewMessages(ctx.NodeCount, s.reducer, s.pageOpts...)
	return nil
}

// Step implements Computer.
func (s *Sequence) Step(ctx *ComputeContext) (bool, error) {
	var more bool
	for _, step := range s.steps {
		cont, err := step.Compute(ctx, s.messages)
		if err != nil {
			return false, err
		}
		more = more || cont
	}
	s.messages.Advance()
	return more, nil
}

// Finalize implements Computer.
func (s *Sequence) Finalize(*ComputeContext) error {
	if s.messages != nil {
		s.messages.Release()
		s.messages = nil
	}
	return nil
}
