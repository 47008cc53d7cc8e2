package gridsvc

import (
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khklau/gridstore/common/go/griderr"
	"github.com/khklau/gridstore/griddb"
	"github.com/khklau/gridstore/gridwire"
	"github.com/khklau/gridstore/region"
)

// Test_EndToEndWriteReadAbout mirrors the original implementation's
// container_msg/mvcc_service_msg wire test style: a client dials a real
// listener and exercises write, read and about over the actual framed
// protocol, not just in-process dispatch().
func Test_EndToEndWriteReadAbout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "e2e.region")
	store, err := griddb.Open(path, 1<<20, region.RoleOwner, false, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer store.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(store, zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx, ln)

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	send := func(instr gridwire.Instruction) gridwire.Result {
		require.NoError(t, gridwire.WriteFrame(conn, instr.Marshal()))
		frame, err := gridwire.ReadFrame(conn)
		require.NoError(t, err)
		result, err := gridwire.UnmarshalResult(frame)
		require.NoError(t, err)
		return result
	}

	writeResult := send(gridwire.Instruction{Opcode: gridwire.OpWriteString, Key: "hello", StringValue: "world"})
	require.True(t, writeResult.Ok)
	assert.Equal(t, uint64(1), writeResult.Revision)

	readResult := send(gridwire.Instruction{Opcode: gridwire.OpReadString, Key: "hello"})
	require.True(t, readResult.Ok)
	assert.Equal(t, "world", readResult.StringValue)

	aboutResult := send(gridwire.Instruction{Opcode: gridwire.OpAbout})
	require.True(t, aboutResult.Ok)
	assert.Equal(t, "GRIDMVCC", aboutResult.AboutTag)
	assert.Equal(t, 1, int(aboutResult.AboutCount))

	missResult := send(gridwire.Instruction{Opcode: gridwire.OpReadString, Key: "absent"})
	assert.False(t, missResult.Ok)

	longKey := strings.Repeat("k", griddb.MaxKeyLength+1)
	tooLongResult := send(gridwire.Instruction{Opcode: gridwire.OpWriteString, Key: longKey, StringValue: "x"})
	assert.False(t, tooLongResult.Ok)
	assert.Equal(t, uint8(griderr.KeyTooLong), tooLongResult.ErrorKind)
}
