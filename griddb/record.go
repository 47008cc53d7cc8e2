package griddb

import (
	"sync/atomic"

	"github.com/khklau/gridstore/griddb/ring"
)

// Version is one written value of a key, tagged with the global
// revision it was written at. It implements ring.Revisioned so a
// per-key version chain can live in a griddb/ring.Buffer.
type Version struct {
	value Value
	rev   uint64
}

// Revision implements ring.Revisioned.
func (v Version) Revision() uint64 { return v.rev }

func (v Version) Value() Value { return v.value }

func newVersion(value Value, rev uint64) Version {
	return Version{value: value, rev: rev}
}

// Record is a key's per-key container (spec.md §3): a bounded chain of
// versions ordered newest-to-oldest, plus a want-removed flag. The
// chain is appended to only by the single writer; want_removed is set
// by remove and cleared by the next write (step 7 of spec.md §4.F),
// and both are read by the owner's collect_garbage.
type Record struct {
	chain       *ring.Buffer[Version]
	wantRemoved atomic.Bool
}

func newRecord(capacity int) *Record {
	return &Record{chain: ring.New[Version](capacity)}
}
