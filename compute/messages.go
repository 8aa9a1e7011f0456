package compute

import (
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/hugegraph/paged"
)

// Reducer combines the messages sent to one node within a superstep.
type Reducer interface {
	Reduce(acc, v float64) float64
}

// SumReducer adds messages.
type SumReducer struct{}

func (SumReducer) Reduce(acc, v float64) float64 { return acc + v }

// MinReducer keeps the smallest message.
type MinReducer struct{}

func (MinReducer) Reduce(acc, v float64) float64 { return math.Min(acc, v) }

// MaxReducer keeps the largest message.
type MaxReducer struct{}

func (MaxReducer) Reduce(acc, v float64) float64 { return math.Max(acc, v) }

// Messages is a double-buffered per-node inbox.
//
// Messages sent during superstep s are reduced into the outbox and become
// visible through Received only after Advance, at the barrier between s and
// s+1. A Messages is not safe for concurrent mutation.
type Messages struct {
	reducer Reducer

	inbox, outbox       *paged.DoubleArray
	inboxSet, outboxSet *roaring64.Bitmap
}

// NewMessages returns an empty inbox for nodeCount nodes. A nil reducer sums.
func NewMessages(nodeCount int64, reducer Reducer, opts ...paged.Option) *Messages {
	if reducer == nil {
		reducer = SumReducer{}
	}
	return &Messages{
		reducer:   reducer,
		inbox:     paged.NewDoubleArray(nodeCount, opts...),
		outbox:    paged.NewDoubleArray(nodeCount, opts...),
		inboxSet:  roaring64.New(),
		outboxSet: roaring64.New(),
	}
}

// Send delivers v to target in the next superstep.
func (m *Messages) Send(target int64, v float64) {
	t := uint64(target)
	if m.outboxSet.Contains(t) {
		m.outbox.Set(target, m.reducer.Reduce(m.outbox.Get(target), v))
		return
	}
	m.outbox.Set(target, v)
	m.outboxSet.Add(t)
}

// Received returns the reduced message for node from the previous superstep.
func (m *Messages) Received(node int64) (float64, bool) {
	if !m.inboxSet.Contains(uint64(node)) {
		return 0, false
	}
	return m.inbox.Get(node), true
}

// HasMessages reports whether any node received a message.
func (m *Messages) HasMessages() bool { return !m.inboxSet.IsEmpty() }

// Pending returns the number of nodes with a message sent in this superstep.
func (m *Messages) Pending() uint64 { return m.outboxSet.GetCardinality() }

// Targets yields the nodes that received a message, in ascending order.
func (m *Messages) Targets() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		it := m.inboxSet.Iterator()
		for it.HasNext() {
			if !yield(int64(it.Next())) {
				return
			}
		}
	}
}

// Advance makes the messages sent so far visible and starts an empty outbox.
func (m *Messages) Advance() {
	m.inbox, m.outbox = m.outbox, m.inbox
	m.inboxSet, m.outboxSet = m.outboxSet, m.inboxSet
	m.outboxSet.Clear()
}

// Release drops both buffers and returns the bytes freed.
func (m *Messages) Release() int64 {
	freed := m.inbox.Release() + m.outbox.Release()
	m.inboxSet.Clear()
	m.outboxSet.Clear()
	return freed
}
