// Package gridlog implements the fixed-capacity append-only log
// (spec.md §4.I): entries are appended at a monotonically advancing
// back index, with no wraparound — once full, further appends fail with
// griderr.FailedOp rather than overwriting the oldest entry, a
// deliberate contrast with the MVCC store's version chains.
package gridlog

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/khklau/gridstore/common/go/backoff"
	"github.com/khklau/gridstore/common/go/griderr"
	"github.com/khklau/gridstore/griddb"
	"github.com/khklau/gridstore/region"
)

// StoreTag distinguishes a log region from an MVCC region so opening one
// against the other's reader fails header validation immediately.
const StoreTag = "GRIDLOG2"

// WireVersion is the current on-disk layout version.
var WireVersion = region.Version{A: 1}

var (
	MinSupported = region.Version{A: 1}
	MaxSupported = region.Version{A: 1}
)

// Entry is one appended log record.
type Entry struct {
	Key      griddb.Key
	Value    griddb.Value
	Revision uint64
}

// emptyBackIndex is the sentinel back_index value meaning "log is
// empty": maxIndex+1, so that the very first append's CAS target is
// distinguishable from a log holding one entry at index 0.
func emptyBackIndex(capacity uint64) uint64 { return capacity }

// Log is a fixed-capacity, append-only sequence, backed by a region for
// its header/identity but holding entries as Go-native values (not raw
// mapped bytes: spec.md §9's cross-process pointer sharing does not
// translate to a GC'd runtime, so only the header and allocator registry
// are literal region bytes — see SPEC_FULL.md §12).
type Log struct {
	region   *region.Store
	entries  []atomic.Pointer[Entry]
	capacity uint64
	backIdx  atomic.Uint64
	log      *zap.SugaredLogger
}

// Open opens or creates a log region at path with the given fixed entry
// capacity.
func Open(path string, capacity uint64, role region.Role, shared bool, log *zap.SugaredLogger) (*Log, error) {
	rs, err := region.Open(path, region.HeaderSize*2, role, StoreTag, WireVersion, MinSupported, MaxSupported, shared)
	if err != nil {
		return nil, err
	}
	l := &Log{region: rs, entries: make([]atomic.Pointer[Entry], capacity), capacity: capacity, log: log}
	l.backIdx.Store(emptyBackIndex(capacity))
	return l, nil
}

// Close releases the backing region.
func (l *Log) Close() error { return l.region.Close() }

// Append writes entry at the next back index, advancing the log. The
// index is reserved with a compare-and-swap, retried after a jittered
// backoff.Sleep when another append wins the race, and the entry is
// written afterward, not atomically with it — a reader observing the
// advanced index before the write lands gets ok=false from At for that
// index until the entry is stored. This
// mirrors the source's own append sequencing exactly; spec.md §9 notes
// the race but does not ask for it to be closed, so it is documented
// here rather than papered over with an extra lock.
func (l *Log) Append(entry Entry) (uint64, error) {
	for {
		cur := l.backIdx.Load()
		var next uint64
		if cur == emptyBackIndex(l.capacity) {
			next = 0
		} else {
			next = cur + 1
		}
		if next >= l.capacity {
			return 0, griderr.New(griderr.FailedOp, "log is full")
		}
		if l.backIdx.CompareAndSwap(cur, next) {
			e := entry
			l.entries[next].Store(&e)
			return next, nil
		}
		backoff.Sleep()
	}
}

// At returns the entry at index, or ok=false if index is beyond the
// current back index or the log is empty.
func (l *Log) At(index uint64) (Entry, bool) {
	cur := l.backIdx.Load()
	if cur == emptyBackIndex(l.capacity) || index > cur {
		return Entry{}, false
	}
	p := l.entries[index].Load()
	if p == nil {
		return Entry{}, false
	}
	return *p, true
}

// Len returns the number of entries currently appended.
func (l *Log) Len() uint64 {
	cur := l.backIdx.Load()
	if cur == emptyBackIndex(l.capacity) {
		return 0
	}
	return cur + 1
}

// Capacity returns the log's fixed entry capacity.
func (l *Log) Capacity() uint64 { return l.capacity }

// Flush synchronizes the backing region to stable storage.
func (l *Log) Flush() error { return l.region.Flush() }
