package gridlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khklau/gridstore/griddb"
	"github.com/khklau/gridstore/region"
)

func openTestLog(t *testing.T, capacity uint64) *Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := Open(path, capacity, region.RoleOwner, false, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func Test_AppendAndRead(t *testing.T) {
	l := openTestLog(t, 4)

	key, err := griddb.NewKey("k1")
	require.NoError(t, err)

	idx, err := l.Append(Entry{Key: key, Value: griddb.StringValue{Data: "v1"}, Revision: 1})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), idx)

	got, ok := l.At(0)
	require.True(t, ok)
	assert.Equal(t, "v1", got.Value.(griddb.StringValue).Data)
	assert.Equal(t, uint64(1), l.Len())
}

func Test_AppendFailsWhenFull(t *testing.T) {
	l := openTestLog(t, 2)

	key, err := griddb.NewKey("k")
	require.NoError(t, err)

	_, err = l.Append(Entry{Key: key, Revision: 1})
	require.NoError(t, err)
	_, err = l.Append(Entry{Key: key, Revision: 2})
	require.NoError(t, err)

	_, err = l.Append(Entry{Key: key, Revision: 3})
	assert.Error(t, err)
}

func Test_ReaderWalksInOrder(t *testing.T) {
	l := openTestLog(t, 4)
	key, err := griddb.NewKey("k")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := l.Append(Entry{Key: key, Revision: uint64(i)})
		require.NoError(t, err)
	}

	reader := l.NewReader()
	var got []uint64
	for {
		e, ok := reader.Next()
		if !ok {
			break
		}
		got = append(got, e.Revision)
	}
	assert.Equal(t, []uint64{0, 1, 2}, got)
}

func Test_AtBeyondBackIndexFails(t *testing.T) {
	l := openTestLog(t, 4)
	_, ok := l.At(0)
	assert.False(t, ok)
}
