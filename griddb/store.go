package griddb

import (
	"sync"

	"go.uber.org/zap"

	"github.com/khklau/gridstore/common/go/griderr"
	"github.com/khklau/gridstore/region"
)

// VersionChainDepth is the initial capacity of a key's version chain.
// A write to a full chain grows it to ceil(1.5 × capacity) (see
// appendVersion); versions leave the chain only through the owner's
// garbage collection.
const VersionChainDepth = 256

// StoreTag identifies an MVCC region header, distinct from a log
// region's tag (gridlog.StoreTag), so opening one kind against the other
// fails header validation instead of silently misinterpreting bytes.
const StoreTag = "GRIDMVCC"

// WireVersion is the current on-disk layout version.
var WireVersion = region.Version{A: 1}

// MinSupported and MaxSupported bound the accepted wire version range
// for an existing region.
var (
	MinSupported = region.Version{A: 1}
	MaxSupported = region.Version{A: 1}
)

// Store is the MVCC key-value façade over a backing region: a resource
// pool of reader/writer tokens plus a per-key Record. Construction is
// symmetrical with gridlog.Log (component I) — both build on
// region.Store.
type Store struct {
	region *region.Store
	pool   *Pool
	chains sync.Map // string -> *Record
	log    *zap.SugaredLogger

	keyOrderMu sync.Mutex
	keyOrder   []Key // insertion order, for About's key count
}

// Open opens or creates an MVCC region at path and wires up its resource
// pool. role must be region.RoleOwner to create a new region.
func Open(path string, size uint64, role region.Role, shared bool, log *zap.SugaredLogger) (*Store, error) {
	rs, err := region.Open(path, size, role, StoreTag, WireVersion, MinSupported, MaxSupported, shared)
	if err != nil {
		return nil, err
	}
	pool, err := NewPool()
	if err != nil {
		rs.Close()
		return nil, err
	}
	return &Store{region: rs, pool: pool, log: log}, nil
}

// Close releases the backing region.
func (s *Store) Close() error {
	return s.region.Close()
}

// recordFor returns key's Record, creating an empty one (with a fresh
// VersionChainDepth-capacity chain) if create is true and none exists
// yet. created reports whether this call just created a brand new
// Record — step 2 of spec.md §4.F's write sequence registers a deleter
// descriptor exactly then, and only then.
func (s *Store) recordFor(key Key, create bool) (rec *Record, created bool) {
	if v, ok := s.chains.Load(key.String()); ok {
		return v.(*Record), false
	}
	if !create {
		return nil, false
	}
	fresh := newRecord(VersionChainDepth)
	actual, loaded := s.chains.LoadOrStore(key.String(), fresh)
	rec = actual.(*Record)
	if !loaded {
		s.keyOrderMu.Lock()
		s.keyOrder = append(s.keyOrder, key)
		s.keyOrderMu.Unlock()
	}
	return rec, !loaded
}

// exists reports whether key has a record, its chain is non-empty, and
// it is not marked want-removed (spec.md §4.D's exists<T>).
func (s *Store) exists(key Key) bool {
	rec, ok := s.recordFor(key, false)
	if !ok {
		return false
	}
	_, hasFront := rec.chain.Front()
	return hasFront && !rec.wantRemoved.Load()
}

// visible returns key's newest version and whether its record is
// currently marked want-removed. ok is false if the key has no record
// at all, or its chain is empty.
func (s *Store) visible(key Key) (ver Version, removed bool, ok bool) {
	rec, found := s.recordFor(key, false)
	if !found {
		return Version{}, false, false
	}
	v, hasFront := rec.chain.Front()
	if !hasFront {
		return Version{}, rec.wantRemoved.Load(), false
	}
	return v, rec.wantRemoved.Load(), true
}

// appendVersion performs steps 2-4 and 6 of spec.md §4.F's write
// sequence: register a deleter on first write, find-or-construct the
// record, grow the chain to ceil(1.5 × capacity) if it is full, and push
// the new version. The caller (Write) takes the revision (step 5) before
// calling it and finishes step 7 by clearing want_removed once
// appendVersion returns successfully.
func (s *Store) appendVersion(key Key, ver Version) (*Record, error) {
	rec, created := s.recordFor(key, true)
	if created {
		s.pool.registerDeleter(key, ver.Value().Kind())
	}
	if rec.chain.PushFront(ver) {
		return rec, nil
	}
	grown := (3*rec.chain.Capacity() + 1) / 2 // ceil(1.5 * capacity)
	if err := rec.chain.Grow(grown); err != nil {
		return nil, err
	}
	if !rec.chain.PushFront(ver) {
		return nil, griderr.New(griderr.FailedOp, "version chain full after grow")
	}
	return rec, nil
}
