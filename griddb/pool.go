package griddb

import (
	"sync"
	"sync/atomic"

	"github.com/khklau/gridstore/common/go/griderr"
	"github.com/khklau/gridstore/griddb/lfqueue"
)

// ReaderLimit is the maximum number of concurrently open reader tokens.
// spec.md §4.E fixes this at 2^16-4, leaving the top of the 16-bit token
// id space free for sentinel values.
const ReaderLimit = 1<<16 - 4

// WriterLimit is the maximum number of concurrently open writer tokens:
// this store is single-writer.
const WriterLimit = 1

// readerSlot is one entry in the reader token array: the last-read
// revision a reader observed, used by the owner to compute the oldest
// in-use revision for garbage collection.
type readerSlot struct {
	revision atomic.Uint64
	inUse    atomic.Bool
}

// deleterEntry is the type-specialised deleter descriptor spec.md §9
// calls for: a key plus the value kind needed to dispatch the right
// deleter, registered once on a key's first write and drained from the
// queue into the owner's persistent registry by process_write_metadata.
type deleterEntry struct {
	key  Key
	kind ValueKind
}

// ownerToken is the resource pool's owner-only member (spec.md §3): the
// persistent deleter registry and the oldest-reader bookkeeping that
// process_read_metadata maintains across calls.
type ownerToken struct {
	mu sync.Mutex

	oldestReaderID     uint32
	oldestRevisionFound uint64
	oldestReaderKnown  bool

	registry      map[string]ValueKind
	registryOrder []Key
}

// Pool is the resource pool backing a Store: fixed reader/writer token
// arrays, the global revision counter, the owner token, and the
// free-list queues that hand out token ids. See spec.md §3, §4.E-G.
type Pool struct {
	readers    [ReaderLimit]readerSlot
	readerFree *lfqueue.Queue[uint32]

	writerInUse atomic.Bool

	globalRevision atomic.Uint64

	deleters *lfqueue.Queue[deleterEntry]
	owner    ownerToken
}

// deleterQueueCapacity matches the deleter queue's fixed capacity.
const deleterQueueCapacity = 256

// NewPool builds an empty resource pool. globalRevision starts at 0 so
// that the first writer's atomic increment yields revision 1 — the
// source initializes its counter to 1 directly, but Go's atomic.Add
// returns the post-increment value rather than C++ fetch_add's
// pre-increment value, so starting one lower reproduces the same first
// assigned revision.
func NewPool() (*Pool, error) {
	freeQueue, err := lfqueue.New[uint32](1 << 16)
	if err != nil {
		return nil, err
	}
	for id := uint32(0); id < ReaderLimit; id++ {
		freeQueue.PushRetry(id)
	}
	deleters, err := lfqueue.New[deleterEntry](deleterQueueCapacity)
	if err != nil {
		return nil, err
	}
	return &Pool{
		readerFree: freeQueue,
		deleters:   deleters,
		owner:      ownerToken{registry: make(map[string]ValueKind)},
	}, nil
}

// AcquireReader hands out a reader token stamped with the current
// global revision, or griderr.Busy if the reader limit is exhausted.
func (p *Pool) AcquireReader() (ReaderToken, error) {
	id, ok := p.readerFree.Pop()
	if !ok {
		return ReaderToken{}, griderr.Busy
	}
	slot := &p.readers[id]
	slot.revision.Store(p.globalRevision.Load())
	slot.inUse.Store(true)
	return ReaderToken{id: id, pool: p}, nil
}

// releaseReader returns a reader token to the free list, retrying with
// jittered backoff until the bounded free-list queue accepts it — the
// queue can only be transiently full if releases race far ahead of
// acquires, which spec.md §4.E treats as a condition to retry through,
// not fail on.
func (p *Pool) releaseReader(id uint32) {
	p.readers[id].inUse.Store(false)
	p.readerFree.PushRetry(id)
}

// AcquireWriter hands out the sole writer token, or griderr.Busy if it
// is already held.
func (p *Pool) AcquireWriter() (WriterToken, error) {
	if !p.writerInUse.CompareAndSwap(false, true) {
		return WriterToken{}, griderr.Busy
	}
	return WriterToken{pool: p}, nil
}

func (p *Pool) releaseWriter() {
	p.writerInUse.Store(false)
}

// nextRevision atomically advances and returns the new global revision.
func (p *Pool) nextRevision() uint64 {
	return p.globalRevision.Add(1)
}

// registerDeleter enqueues a key's deleter descriptor, retrying through
// backpressure the same way release does. Called once, on a key's
// first write (spec.md §4.F step 2).
func (p *Pool) registerDeleter(key Key, kind ValueKind) {
	p.deleters.PushRetry(deleterEntry{key: key, kind: kind})
}

// processReadMetadata scans reader slots in the half-open range
// [fromID, toID) ∩ [0, ReaderLimit) for the minimum in-use last-read
// revision, per spec.md §4.G:
//  1. If an oldest-reader is already recorded and that slot's revision
//     now differs from the recorded value, clear the recorded fields.
//  2. For each in-use slot in range, if its revision is smaller than
//     the current oldest (or there is no current oldest), record it.
//
// The recorded oldest therefore survives across calls — and across
// ranges — until the reader that set it changes or releases, which is
// what lets process_read_metadata(A.id, C.id) and a later full-range
// call cooperate instead of each starting from scratch.
func (p *Pool) processReadMetadata(fromID, toID uint32) uint64 {
	if toID > ReaderLimit {
		toID = ReaderLimit
	}

	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()

	if p.owner.oldestReaderKnown {
		tracked := &p.readers[p.owner.oldestReaderID]
		if tracked.revision.Load() != p.owner.oldestRevisionFound {
			p.owner.oldestReaderKnown = false
		}
	}

	for id := fromID; id < toID; id++ {
		slot := &p.readers[id]
		if !slot.inUse.Load() {
			continue
		}
		rev := slot.revision.Load()
		if !p.owner.oldestReaderKnown || rev < p.owner.oldestRevisionFound {
			p.owner.oldestRevisionFound = rev
			p.owner.oldestReaderID = id
			p.owner.oldestReaderKnown = true
		}
	}

	if !p.owner.oldestReaderKnown {
		return p.globalRevision.Load() + 1
	}
	return p.owner.oldestRevisionFound
}

// processWriteMetadata drains up to maxAttempts entries (0 meaning
// "unlimited", capped at the queue's fixed capacity) from the deleter
// queue into the owner's persistent registry, keyed by the deleter's
// key. Insertions are idempotent for already-registered keys, per
// spec.md §4.G. It returns the number of entries drained.
func (p *Pool) processWriteMetadata(maxAttempts int) int {
	limit := maxAttempts
	if limit <= 0 {
		limit = deleterQueueCapacity
	}

	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()

	drained := 0
	for drained < limit {
		entry, ok := p.deleters.Pop()
		if !ok {
			break
		}
		k := entry.key.String()
		if _, registered := p.owner.registry[k]; !registered {
			p.owner.registryOrder = append(p.owner.registryOrder, entry.key)
		}
		p.owner.registry[k] = entry.kind
		drained++
	}
	return drained
}
