package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HeaderMarshalRoundTrip(t *testing.T) {
	h := NewHeader("GRIDMVCC", Version{A: 1, B: 2}, 4096)

	buf := h.Marshal()
	assert.Len(t, buf, HeaderSize)

	got, err := UnmarshalHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func Test_HeaderValidate(t *testing.T) {
	h := NewHeader("GRIDMVCC", Version{A: 1}, 4096)

	err := Validate(h, "GRIDMVCC", Version{A: 1}, Version{A: 1})
	assert.NoError(t, err)

	err = Validate(h, "GRIDLOG2", Version{A: 1}, Version{A: 1})
	assert.Error(t, err)

	err = Validate(h, "GRIDMVCC", Version{A: 2}, Version{A: 3})
	assert.Error(t, err)
}

func Test_HeaderUnmarshalTooShort(t *testing.T) {
	_, err := UnmarshalHeader(make([]byte, HeaderSize-1))
	assert.Error(t, err)
}

func Test_VersionCompare(t *testing.T) {
	assert.Equal(t, 0, Version{A: 1, B: 2}.Compare(Version{A: 1, B: 2}))
	assert.Equal(t, -1, Version{A: 1}.Compare(Version{A: 2}))
	assert.Equal(t, 1, Version{A: 1, C: 1}.Compare(Version{A: 1}))
}
