package griddb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewKeyRejectsEmpty(t *testing.T) {
	_, err := NewKey("")
	assert.Error(t, err)
}

func Test_NewKeyRejectsTooLong(t *testing.T) {
	_, err := NewKey(strings.Repeat("a", MaxKeyLength+1))
	assert.Error(t, err)
}

func Test_NewKeyAcceptsMaxLength(t *testing.T) {
	k, err := NewKey(strings.Repeat("a", MaxKeyLength))
	require.NoError(t, err)
	assert.Equal(t, MaxKeyLength, len(k.String()))
}
