// Package region implements the backing-region bootstrap: opening a
// file-mapped or POSIX-shared-memory segment, validating (or writing) its
// header, and handing out a small bump allocator for named sub-allocations.
//
// See spec.md §3 ("Region header") and §4.A.
package region

import (
	"encoding/binary"
	"unsafe"

	"github.com/khklau/gridstore/common/go/griderr"
)

// Endianness is a sentinel byte value that reveals whether a reader needs
// to byte-swap multi-byte fields.
type Endianness uint8

const (
	// EndianLittle marks a region written on a little-endian host.
	EndianLittle Endianness = 0x4c // 'L'
	// EndianBig marks a region written on a big-endian host.
	EndianBig Endianness = 0x42 // 'B'
)

func hostEndianness() Endianness {
	var x uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&x))
	if b[0] == 1 {
		return EndianLittle
	}
	return EndianBig
}

const tagLen = 8

// Version is a totally-ordered four-tuple, compared lexicographically.
type Version struct {
	A, B, C, D uint8
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than o.
func (v Version) Compare(o Version) int {
	for _, pair := range [][2]uint8{{v.A, o.A}, {v.B, o.B}, {v.C, o.C}, {v.D, o.D}} {
		if pair[0] < pair[1] {
			return -1
		}
		if pair[0] > pair[1] {
			return 1
		}
	}
	return 0
}

func (v Version) String() string {
	return byteJoin(v.A, v.B, v.C, v.D)
}

// HeaderSize is the fixed, on-disk size of Header in bytes.
const HeaderSize = 1 /*endian*/ + tagLen + 4 /*version*/ + 4 /*header size*/ + 8 /*region size*/

// Header is the fixed struct at the start of every backing region,
// identifying its kind, wire version, and size. See spec.md §3.
type Header struct {
	Endian     Endianness
	Tag        [tagLen]byte
	Version    Version
	HeaderSize uint32
	RegionSize uint64
}

// NewHeader builds a header for a freshly created region of the given tag,
// version and total size.
func NewHeader(tag string, version Version, regionSize uint64) Header {
	var tagBuf [tagLen]byte
	copy(tagBuf[:], tag)
	return Header{
		Endian:     hostEndianness(),
		Tag:        tagBuf,
		Version:    version,
		HeaderSize: HeaderSize,
		RegionSize: regionSize,
	}
}

// Marshal serializes the header into its fixed-size on-disk representation.
func (h Header) Marshal() []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = byte(h.Endian)
	copy(buf[1:1+tagLen], h.Tag[:])
	off := 1 + tagLen
	buf[off] = h.Version.A
	buf[off+1] = h.Version.B
	buf[off+2] = h.Version.C
	buf[off+3] = h.Version.D
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], h.HeaderSize)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], h.RegionSize)
	return buf
}

// UnmarshalHeader parses a header from the start of a region's bytes.
func UnmarshalHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, griderr.New(griderr.MalformedStore, "region shorter than header")
	}
	var h Header
	h.Endian = Endianness(buf[0])
	copy(h.Tag[:], buf[1:1+tagLen])
	off := 1 + tagLen
	h.Version = Version{A: buf[off], B: buf[off+1], C: buf[off+2], D: buf[off+3]}
	off += 4
	h.HeaderSize = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	h.RegionSize = binary.LittleEndian.Uint64(buf[off:])
	return h, nil
}

// Validate checks a header against the expected tag and an inclusive
// [min, max] version range, per spec.md §4.A.
func Validate(h Header, wantTag string, min, max Version) error {
	var tagBuf [tagLen]byte
	copy(tagBuf[:], wantTag)
	if h.Tag != tagBuf {
		return griderr.Newf(griderr.MalformedStore, "tag mismatch: got %q want %q", trimTag(h.Tag), wantTag)
	}
	if h.HeaderSize != HeaderSize {
		return griderr.Newf(griderr.MalformedStore, "header size mismatch: got %d want %d", h.HeaderSize, HeaderSize)
	}
	if h.Endian != hostEndianness() {
		return griderr.New(griderr.UnsupportedStore, "byte swap required")
	}
	if h.Version.Compare(min) < 0 || h.Version.Compare(max) > 0 {
		return griderr.Newf(griderr.UnsupportedStore, "version %s outside [%s,%s]", h.Version, min, max)
	}
	return nil
}

func trimTag(tag [tagLen]byte) string {
	n := 0
	for n < len(tag) && tag[n] != 0 {
		n++
	}
	return string(tag[:n])
}

func byteJoin(a, b, c, d uint8) string {
	buf := make([]byte, 0, 8)
	buf = appendUint8(buf, a)
	buf = append(buf, '.')
	buf = appendUint8(buf, b)
	buf = append(buf, '.')
	buf = appendUint8(buf, c)
	buf = append(buf, '.')
	buf = appendUint8(buf, d)
	return string(buf)
}

func appendUint8(buf []byte, v uint8) []byte {
	return append(buf, []byte(itoa(v))...)
}

func itoa(v uint8) string {
	if v == 0 {
		return "0"
	}
	var tmp [3]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return string(tmp[i:])
}
