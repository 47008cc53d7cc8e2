// Package ring implements the bounded multi-reader ring buffer described
// in spec.md §4.B: a fixed-capacity double-ended buffer, pushed at the
// front by a single writer and popped at the back by the owner's garbage
// collection, with a shareable/exclusive lock: queries take the shareable
// side, every mutation (PushFront, PopBack, Grow) the exclusive side.
package ring

import (
	"sync/atomic"

	"github.com/khklau/gridstore/common/go/backoff"
)

// rwlock is a process-local (not cross-process) shareable/exclusive spin
// lock. Front, Back, Capacity, ElementCount, Empty and Full take the
// shareable side; PushFront, PopBack and Grow take the exclusive side. Unlike a sync.RWMutex it never blocks on the
// OS scheduler — callers spin with the package's flat jitter backoff,
// matching the lock-free structures elsewhere in this component family.
type rwlock struct {
	state atomic.Int32
}

const exclusiveBit int32 = -1

// RLock acquires the shareable side, spinning while an exclusive holder
// is present.
func (l *rwlock) RLock() {
	for {
		cur := l.state.Load()
		if cur == exclusiveBit {
			backoff.Sleep()
			continue
		}
		if l.state.CompareAndSwap(cur, cur+1) {
			return
		}
	}
}

// RUnlock releases the shareable side.
func (l *rwlock) RUnlock() {
	l.state.Add(-1)
}

// Lock acquires the exclusive side, spinning until there are no shareable
// or exclusive holders.
func (l *rwlock) Lock() {
	for {
		if l.state.CompareAndSwap(0, exclusiveBit) {
			return
		}
		backoff.Sleep()
	}
}

// Unlock releases the exclusive side.
func (l *rwlock) Unlock() {
	l.state.Store(0)
}
