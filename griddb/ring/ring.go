package ring

import (
	"github.com/khklau/gridstore/common/go/griderr"
)

// Revisioned is implemented by elements stored in a Buffer. PopBack uses
// the element's revision, not its storage slot, to detect whether the
// slot it is about to reclaim still holds the entry it originally
// observed — see the redesign note in spec.md §9 on why pointer identity
// is unsafe once Grow can relocate the backing slice.
type Revisioned interface {
	Revision() uint64
}

// Buffer is a fixed-capacity ring, pushed at the front and popped at the
// back. Front and Back return copies, never pointers into the backing
// slice, so a concurrent Grow cannot leave a caller holding a dangling
// reference.
type Buffer[E Revisioned] struct {
	lock    rwlock
	data    []E
	backIdx int // index of the oldest (back) element
	count   int
}

// New creates an empty buffer with the given fixed capacity.
func New[E Revisioned](capacity int) *Buffer[E] {
	return &Buffer[E]{data: make([]E, capacity)}
}

// Capacity returns the buffer's fixed slot count.
func (b *Buffer[E]) Capacity() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.data)
}

// ElementCount returns the number of occupied slots.
func (b *Buffer[E]) ElementCount() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.count
}

// Empty reports whether the buffer holds no elements.
func (b *Buffer[E]) Empty() bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.count == 0
}

// Full reports whether the buffer has no free slots.
func (b *Buffer[E]) Full() bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.count == len(b.data)
}

func (b *Buffer[E]) frontIdx() int {
	return (b.backIdx + b.count) % len(b.data)
}

// Front returns a copy of the most recently pushed element.
func (b *Buffer[E]) Front() (E, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	var zero E
	if b.count == 0 {
		return zero, false
	}
	idx := (b.frontIdx() - 1 + len(b.data)) % len(b.data)
	return b.data[idx], true
}

// Back returns a copy of the oldest element.
func (b *Buffer[E]) Back() (E, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	var zero E
	if b.count == 0 {
		return zero, false
	}
	return b.data[b.backIdx], true
}

// PushFront writes e into the next free front slot. It reports false if
// the buffer is full; the single writer is expected to retry after
// invoking collect_garbage / Grow, per spec.md §4.D-H.
func (b *Buffer[E]) PushFront(e E) bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.count == len(b.data) {
		return false
	}
	b.data[b.frontIdx()] = e
	b.count++
	return true
}

// PopBack removes the back (oldest) element if, and only if, its
// observed revision still matches expectedRevision. A mismatch means
// that entry was already popped since the caller observed it; the caller
// should re-read Back and retry. This is the spec.md §9
// redesign: compare revision, never pointer identity.
func (b *Buffer[E]) PopBack(expectedRevision uint64) (E, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	var zero E
	if b.count == 0 {
		return zero, false
	}
	cur := b.data[b.backIdx]
	if cur.Revision() != expectedRevision {
		return zero, false
	}
	b.backIdx = (b.backIdx + 1) % len(b.data)
	b.count--
	return cur, true
}

// Grow reallocates the buffer to a larger capacity, preserving element
// order. It takes the exclusive side of the lock: concurrent Front/Back/
// PopBack callers block (spin) for its duration, which is why it must
// stay rare, per spec.md §4.B.
func (b *Buffer[E]) Grow(newCapacity int) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if newCapacity <= len(b.data) {
		return griderr.New(griderr.InvalidArgument, "grow requires a larger capacity")
	}
	next := make([]E, newCapacity)
	for i := 0; i < b.count; i++ {
		next[i] = b.data[(b.backIdx+i)%len(b.data)]
	}
	b.data = next
	b.backIdx = 0
	return nil
}
