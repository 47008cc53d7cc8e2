package gridwire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/khklau/gridstore/common/go/griderr"
)

// MaxFrameSize bounds a single message's encoded size, guarding a server
// against an unbounded length prefix from a misbehaving or malicious
// client.
const MaxFrameSize = 1 << 20

// WriteFrame writes payload prefixed with its big-endian uint32 length,
// the length-delimited framing spec.md §6 calls for.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return griderr.Newf(griderr.MalformedMessage, "frame of %d bytes exceeds max %d", len(payload), MaxFrameSize)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameSize {
		return nil, griderr.Newf(griderr.MalformedMessage, "frame of %d bytes exceeds max %d", n, MaxFrameSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return buf, nil
}
