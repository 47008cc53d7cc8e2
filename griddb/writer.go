package griddb

import (
	"github.com/khklau/gridstore/common/go/griderr"
)

// WriterToken is the sole writer handle's pool-facing state.
type WriterToken struct {
	pool *Pool
}

// WriterHandle is the single-writer façade over a Store: write, remove,
// close (spec.md §4.F). process_write_metadata is an owner operation
// (spec.md §4.G), not a writer one — see OwnerHandle.ProcessWriteMetadata.
type WriterHandle struct {
	store *Store
	token WriterToken
}

// OpenWriter acquires the store's sole writer token, or griderr.Busy if
// it is already held.
func (s *Store) OpenWriter() (*WriterHandle, error) {
	tok, err := s.pool.AcquireWriter()
	if err != nil {
		return nil, err
	}
	return &WriterHandle{store: s, token: tok}, nil
}

// Close releases the writer token.
func (h *WriterHandle) Close() {
	h.store.pool.releaseWriter()
}

// Write installs value as a new version of key, returning the revision
// it was written at. It follows spec.md §4.F's write sequence: register
// a deleter descriptor on first write (store.appendVersion), grow the
// chain if full, push the new version, then clear want_removed — a
// write always un-removes the key.
func Write[T Value](h *WriterHandle, key Key, value T) (uint64, error) {
	rev := h.store.pool.nextRevision()
	rec, err := h.store.appendVersion(key, newVersion(value, rev))
	if err != nil {
		return 0, err
	}
	rec.wantRemoved.Store(false)
	return rev, nil
}

// Remove marks key's record want-removed, if the record exists. No
// version is appended and no revision is consumed (spec.md §4.F): the
// returned revision is just the current global revision, observed, not
// incremented.
func (h *WriterHandle) Remove(key Key) (uint64, error) {
	rec, ok := h.store.recordFor(key, false)
	if !ok {
		return 0, griderr.Newf(griderr.InvalidArgument, "no record for key %q", key)
	}
	rec.wantRemoved.Store(true)
	return h.store.pool.globalRevision.Load(), nil
}
