package region

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_OpenCreatesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.region")

	s, err := Open(path, 4096, RoleOwner, "GRIDMVCC", Version{A: 1}, Version{A: 1}, Version{A: 1}, false)
	require.NoError(t, err)

	off, err := s.Alloc.Allocate("widget", 64, "WDGT")
	require.NoError(t, err)
	assert.Equal(t, uint64(HeaderSize+registrySize), off)

	require.NoError(t, s.Close())

	reopened, err := Open(path, 4096, RoleReader, "GRIDMVCC", Version{A: 1}, Version{A: 1}, Version{A: 1}, false)
	require.NoError(t, err)
	defer reopened.Close()

	gotOff, size, tag, ok := reopened.Alloc.Find("widget")
	assert.True(t, ok)
	assert.Equal(t, off, gotOff)
	assert.Equal(t, uint64(64), size)
	assert.Equal(t, "WDGT", tag)
}

func Test_OpenRejectsMismatchedTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.region")

	s, err := Open(path, 4096, RoleOwner, "GRIDMVCC", Version{A: 1}, Version{A: 1}, Version{A: 1}, false)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path, 4096, RoleReader, "GRIDLOG2", Version{A: 1}, Version{A: 1}, Version{A: 1}, false)
	assert.Error(t, err)
}

func Test_ReaderCannotCreateMissingRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.region")

	_, err := Open(path, 4096, RoleReader, "GRIDMVCC", Version{A: 1}, Version{A: 1}, Version{A: 1}, false)
	assert.Error(t, err)
}
