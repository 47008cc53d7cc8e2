package griddb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khklau/gridstore/common/go/griderr"
)

func Test_PoolWriterIsSingleton(t *testing.T) {
	p, err := NewPool()
	require.NoError(t, err)

	w1, err := p.AcquireWriter()
	require.NoError(t, err)

	_, err = p.AcquireWriter()
	assert.ErrorIs(t, err, griderr.Busy)

	p.releaseWriter()
	_ = w1

	_, err = p.AcquireWriter()
	assert.NoError(t, err)
}

func Test_PoolReaderAcquireReleaseRoundTrip(t *testing.T) {
	p, err := NewPool()
	require.NoError(t, err)

	tok, err := p.AcquireReader()
	require.NoError(t, err)

	// The free list is a FIFO queue still holding every other id, so the
	// released id goes to its back and the next acquire hands out the
	// following id.
	p.releaseReader(tok.id)

	tok2, err := p.AcquireReader()
	require.NoError(t, err)
	assert.Equal(t, tok.id+1, tok2.id)
}

func Test_PoolProcessReadMetadataTracksOldestReader(t *testing.T) {
	p, err := NewPool()
	require.NoError(t, err)

	noReader := p.processReadMetadata(0, ReaderLimit)
	assert.Equal(t, p.globalRevision.Load()+1, noReader)

	p.nextRevision() // 1
	tok, err := p.AcquireReader()
	require.NoError(t, err)

	p.nextRevision() // 2

	oldest := p.processReadMetadata(0, ReaderLimit)
	assert.Equal(t, uint64(1), oldest)

	p.releaseReader(tok.id)
}

func Test_PoolProcessReadMetadataClearsOnChange(t *testing.T) {
	p, err := NewPool()
	require.NoError(t, err)

	p.nextRevision() // 1
	a, err := p.AcquireReader()
	require.NoError(t, err)
	p.nextRevision() // 2
	b, err := p.AcquireReader()
	require.NoError(t, err)

	assert.Equal(t, uint64(1), p.processReadMetadata(0, ReaderLimit))

	// a's slot advances past what was recorded as oldest; the next call
	// must detect the change and recompute rather than keep stale state.
	p.readers[a.id].revision.Store(3)
	assert.Equal(t, uint64(2), p.processReadMetadata(0, ReaderLimit))

	p.releaseReader(a.id)
	p.releaseReader(b.id)
}
