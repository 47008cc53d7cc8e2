// Package lfqueue implements a bounded, lock-free multi-producer
// multi-consumer queue, used for the reader/writer token free-lists and
// the deleter-descriptor queue (spec.md §4.C). It is the classic
// Vyukov MPMC queue: each slot carries its own sequence number, and
// producers/consumers advance via CAS on a monotonic position counter.
package lfqueue

import (
	"sync/atomic"

	"github.com/khklau/gridstore/common/go/backoff"
	"github.com/khklau/gridstore/common/go/griderr"
)

type cell[T any] struct {
	sequence atomic.Uint64
	value    T
}

// Queue is a fixed-capacity lock-free MPMC queue. Capacity must be a
// power of two.
type Queue[T any] struct {
	mask       uint64
	cells      []cell[T]
	enqueuePos atomic.Uint64
	dequeuePos atomic.Uint64
}

// New creates a queue of the given capacity, which must be a power of
// two and at least 2.
func New[T any](capacity uint64) (*Queue[T], error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, griderr.Newf(griderr.InvalidArgument, "lfqueue capacity must be a power of two >= 2, got %d", capacity)
	}
	q := &Queue[T]{mask: capacity - 1, cells: make([]cell[T], capacity)}
	for i := range q.cells {
		q.cells[i].sequence.Store(uint64(i))
	}
	return q, nil
}

// Push enqueues v, reporting false if the queue is full.
func (q *Queue[T]) Push(v T) bool {
	for {
		pos := q.enqueuePos.Load()
		c := &q.cells[pos&q.mask]
		seq := c.sequence.Load()
		diff := int64(seq) - int64(pos)
		switch {
		case diff == 0:
			if q.enqueuePos.CompareAndSwap(pos, pos+1) {
				c.value = v
				c.sequence.Store(pos + 1)
				return true
			}
		case diff < 0:
			return false
		default:
			// another producer has raced ahead; reload.
		}
	}
}

// PushRetry enqueues v, sleeping a flat backoff.Sleep jitter between
// attempts until it succeeds. There is no deadline: it blocks for as long
// as the queue stays full.
func (q *Queue[T]) PushRetry(v T) {
	for !q.Push(v) {
		backoff.Sleep()
	}
}

// Pop dequeues a value, reporting false if the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	for {
		pos := q.dequeuePos.Load()
		c := &q.cells[pos&q.mask]
		seq := c.sequence.Load()
		diff := int64(seq) - int64(pos+1)
		switch {
		case diff == 0:
			if q.dequeuePos.CompareAndSwap(pos, pos+1) {
				v := c.value
				var clear T
				c.value = clear
				c.sequence.Store(pos + q.mask + 1)
				return v, true
			}
		case diff < 0:
			return zero, false
		default:
			// another consumer has raced ahead; reload.
		}
	}
}

// Capacity returns the queue's fixed slot count.
func (q *Queue[T]) Capacity() uint64 {
	return q.mask + 1
}
