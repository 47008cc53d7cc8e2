package griddb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khklau/gridstore/region"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.region")
	s, err := Open(path, 1<<20, region.RoleOwner, false, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func Test_WriteThenReadString(t *testing.T) {
	s := openTestStore(t)

	w, err := s.OpenWriter()
	require.NoError(t, err)
	defer w.Close()

	key, err := NewKey("greeting")
	require.NoError(t, err)

	rev, err := Write(w, key, StringValue{Data: "hello"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rev)

	r, err := s.OpenReader()
	require.NoError(t, err)
	defer r.Close()

	v, err := Read[StringValue](r, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Data)
}

// Test_ReadAlwaysObservesTheNewestVersion checks that a reader handle
// opened before a write observes that write on its next Read — read has
// no acquire-time pin (spec.md §4.E, original mvcc_memory.hxx:402-408).
// Snapshot stability is a property of a held returned value, not of a
// held reader handle: once Read returns a copy, that copy stays valid
// for as long as the version survives within the chain's ring depth
// (spec.md §8 S1), regardless of later writes.
func Test_ReadAlwaysObservesTheNewestVersion(t *testing.T) {
	s := openTestStore(t)

	w, err := s.OpenWriter()
	require.NoError(t, err)
	defer w.Close()

	key, err := NewKey("counter")
	require.NoError(t, err)

	_, err = Write(w, key, StructValue{V1: 1})
	require.NoError(t, err)

	r, err := s.OpenReader()
	require.NoError(t, err)
	defer r.Close()

	held, err := Read[StructValue](r, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), held.V1)

	_, err = Write(w, key, StructValue{V1: 2})
	require.NoError(t, err)

	v, err := Read[StructValue](r, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.V1, "a reader opened before a write must observe it on its next Read")

	// held is a value copy from before the second write; it is
	// unaffected by the write that followed it.
	assert.Equal(t, int64(1), held.V1, "a previously returned value is not retroactively mutated")
}

func Test_RemoveTombstonesKey(t *testing.T) {
	s := openTestStore(t)

	w, err := s.OpenWriter()
	require.NoError(t, err)
	defer w.Close()

	key, err := NewKey("ephemeral")
	require.NoError(t, err)

	_, err = Write(w, key, StringValue{Data: "x"})
	require.NoError(t, err)
	_, err = w.Remove(key)
	require.NoError(t, err)

	r, err := s.OpenReader()
	require.NoError(t, err)
	defer r.Close()

	assert.False(t, r.Exists(key))
	_, err = Read[StringValue](r, key)
	assert.Error(t, err)
}

func Test_ReadWrongValueKind(t *testing.T) {
	s := openTestStore(t)

	w, err := s.OpenWriter()
	require.NoError(t, err)
	defer w.Close()

	key, err := NewKey("mismatched")
	require.NoError(t, err)
	_, err = Write(w, key, StringValue{Data: "x"})
	require.NoError(t, err)

	r, err := s.OpenReader()
	require.NoError(t, err)
	defer r.Close()

	_, err = Read[StructValue](r, key)
	assert.Error(t, err)
}

func Test_CollectGarbageBatchReclaimsOldVersions(t *testing.T) {
	s := openTestStore(t)

	w, err := s.OpenWriter()
	require.NoError(t, err)
	defer w.Close()

	key, err := NewKey("versioned")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := Write(w, key, StructValue{V1: int64(i)})
		require.NoError(t, err)
	}

	owner := s.OpenOwner()
	next, reclaimed, more := owner.CollectGarbageBatch(Key{}, 10)
	assert.False(t, more)
	assert.Equal(t, key, next, "resume wraps back to the only registered key")
	assert.Equal(t, 4, reclaimed, "all but the newest version should be reclaimed with no readers pinning anything")

	rec, ok := s.recordFor(key, false)
	require.True(t, ok)
	assert.Equal(t, 1, rec.chain.ElementCount())
}

// Test_CollectGarbageBatchSkipsVersionsPinnedByAReader checks that a
// version still observable through an open reader's last-read revision
// survives collection, and that process_read_metadata must be folded in
// for that pin to take effect (spec.md §8 S4/S5).
func Test_CollectGarbageBatchSkipsVersionsPinnedByAReader(t *testing.T) {
	s := openTestStore(t)

	w, err := s.OpenWriter()
	require.NoError(t, err)
	defer w.Close()

	key, err := NewKey("pinned")
	require.NoError(t, err)

	_, err = Write(w, key, StructValue{V1: 0})
	require.NoError(t, err)

	r, err := s.OpenReader()
	require.NoError(t, err)
	defer r.Close()

	pinned, err := Read[StructValue](r, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pinned.V1)

	for i := 1; i < 5; i++ {
		_, err := Write(w, key, StructValue{V1: int64(i)})
		require.NoError(t, err)
	}

	owner := s.OpenOwner()
	_, reclaimed, _ := owner.CollectGarbageBatch(Key{}, 10)
	assert.Less(t, reclaimed, 4, "the version the open reader last read must not be reclaimed")

	rec, ok := s.recordFor(key, false)
	require.True(t, ok)
	back, backOK := rec.chain.Back()
	require.True(t, backOK)
	assert.Equal(t, int64(0), back.Value().(StructValue).V1, "the oldest surviving version is still the one the reader pinned")
}
