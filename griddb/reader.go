package griddb

import (
	"github.com/khklau/gridstore/common/go/griderr"
)

// ReaderToken is a handle on one of the store's fixed reader slots.
type ReaderToken struct {
	id   uint32
	pool *Pool
}

// ReaderHandle is the per-reader façade over a Store: exists, read,
// process_read_metadata, close (spec.md §4.E). It is not thread-safe;
// one instance per concurrent reader.
type ReaderHandle struct {
	store *Store
	token ReaderToken
}

// OpenReader acquires a reader token and returns a handle bound to it,
// or griderr.Busy if the reader limit is exhausted.
func (s *Store) OpenReader() (*ReaderHandle, error) {
	tok, err := s.pool.AcquireReader()
	if err != nil {
		return nil, err
	}
	return &ReaderHandle{store: s, token: tok}, nil
}

// Close releases the reader token back to the pool's free list.
func (h *ReaderHandle) Close() {
	h.store.pool.releaseReader(h.token.id)
}

// LastRead returns this reader token's last-read revision: the
// revision the reader was acquired at, until its first successful
// Read stamps it with the revision of the version actually returned.
func (h *ReaderHandle) LastRead() uint64 {
	return h.store.pool.readers[h.token.id].revision.Load()
}

// Exists reports whether key currently has a live, non-want-removed
// record. It is not a "read" in the spec.md §8 invariant #4 sense and
// never stamps the reader's slot.
func (h *ReaderHandle) Exists(key Key) bool {
	_, removed, ok := h.store.visible(key)
	return ok && !removed
}

// Read returns key's newest version unconditionally (spec.md §4.E,
// original mvcc_memory.hxx:402-408), asserting it holds a T, and
// stamps this reader's slot with that version's revision. A miss — an
// absent key, a want-removed record, or a mismatched value kind —
// returns an error and leaves the slot untouched.
func Read[T Value](h *ReaderHandle, key Key) (T, error) {
	var zero T
	ver, removed, ok := h.store.visible(key)
	if !ok || removed {
		return zero, griderr.Newf(griderr.InvalidArgument, "no visible value for key %q", key)
	}
	v, ok := ver.Value().(T)
	if !ok {
		return zero, griderr.Newf(griderr.InvalidArgument, "value for key %q is not a %T", key, zero)
	}
	h.store.pool.readers[h.token.id].revision.Store(ver.Revision())
	return v, nil
}

// ReadMetadata describes a reader token's current pool-facing state, for
// process_read_metadata (spec.md §4.G).
type ReadMetadata struct {
	TokenID  uint32
	Revision uint64
}

// ProcessReadMetadata returns this handle's current token metadata.
func (h *ReaderHandle) ProcessReadMetadata() ReadMetadata {
	return ReadMetadata{TokenID: h.token.id, Revision: h.LastRead()}
}
