package region

import (
	"encoding/binary"

	"github.com/khklau/gridstore/common/go/griderr"
)

const (
	entryNameLen = 24
	entryTagLen  = 8
	entrySize    = entryNameLen + 8 /*offset*/ + 8 /*size*/ + entryTagLen
	maxEntries   = 16

	registrySize = 4 /*count*/ + maxEntries*entrySize
)

// Reserved registry entry names. See spec.md §3 supplement.
const (
	NameHeader       = "@@HEADER@@"
	NameResourcePool = "@@RESOURCE_POOL@@"
)

// entry is one named sub-allocation within a region.
type entry struct {
	name   [entryNameLen]byte
	offset uint64
	size   uint64
	tag    [entryTagLen]byte
}

func (e entry) nameString() string { return trimZero(e.name[:]) }
func (e entry) tagString() string  { return trimZero(e.tag[:]) }

func trimZero(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// Allocator is a bump allocator over a region's backing bytes, with a
// small fixed registry of named sub-allocations. It replaces the source's
// managed-mapped-file allocator, per spec.md §9's "segment manager"
// redesign note: the registry lives immediately after the region header
// and is itself a fixed-size structure, so no further bootstrap is needed
// to find it.
type Allocator struct {
	region *Region
	base   uint64 // offset of the registry within region.Bytes()
	bump   uint64 // next free offset, absolute
}

// NewAllocator creates a fresh allocator over region, writing an empty
// registry immediately after base (typically HeaderSize).
func NewAllocator(region *Region, base uint64) *Allocator {
	a := &Allocator{region: region, base: base, bump: base + registrySize}
	binary.LittleEndian.PutUint32(region.Bytes()[base:], 0)
	return a
}

// OpenAllocator reconstructs an allocator from an existing registry
// previously written by NewAllocator, recomputing the bump pointer from
// the highest allocated extent.
func OpenAllocator(region *Region, base uint64) (*Allocator, error) {
	buf := region.Bytes()
	if uint64(len(buf)) < base+registrySize {
		return nil, griderr.New(griderr.MalformedStore, "region too small for registry")
	}
	count := binary.LittleEndian.Uint32(buf[base:])
	if count > maxEntries {
		return nil, griderr.Newf(griderr.MalformedStore, "registry count %d exceeds max %d", count, maxEntries)
	}
	a := &Allocator{region: region, base: base, bump: base + registrySize}
	for i := uint32(0); i < count; i++ {
		e := readEntry(buf, base, i)
		if end := e.offset + e.size; end > a.bump {
			a.bump = end
		}
	}
	return a, nil
}

func entryOffset(base uint64, i uint32) uint64 {
	return base + 4 + uint64(i)*entrySize
}

func readEntry(buf []byte, base uint64, i uint32) entry {
	off := entryOffset(base, i)
	var e entry
	copy(e.name[:], buf[off:off+entryNameLen])
	off += entryNameLen
	e.offset = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	e.size = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	copy(e.tag[:], buf[off:off+entryTagLen])
	return e
}

func writeEntry(buf []byte, base uint64, i uint32, e entry) {
	off := entryOffset(base, i)
	copy(buf[off:off+entryNameLen], e.name[:])
	off += entryNameLen
	binary.LittleEndian.PutUint64(buf[off:], e.offset)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], e.size)
	off += 8
	copy(buf[off:off+entryTagLen], e.tag[:])
}

func (a *Allocator) count() uint32 {
	return binary.LittleEndian.Uint32(a.region.Bytes()[a.base:])
}

func (a *Allocator) setCount(n uint32) {
	binary.LittleEndian.PutUint32(a.region.Bytes()[a.base:], n)
}

// Allocate reserves size bytes tagged with tag under name, bumping the
// allocator's free pointer. It fails if the registry is full or the
// region is out of space.
func (a *Allocator) Allocate(name string, size uint64, tag string) (offset uint64, err error) {
	if len(name) > entryNameLen || len(tag) > entryTagLen {
		return 0, griderr.New(griderr.InvalidArgument, "allocator name or tag too long")
	}
	n := a.count()
	if n >= maxEntries {
		return 0, griderr.New(griderr.FailedOp, "allocator registry full")
	}
	if a.bump+size > uint64(len(a.region.Bytes())) {
		return 0, griderr.New(griderr.FailedOp, "region out of space")
	}

	var e entry
	copy(e.name[:], name)
	e.offset = a.bump
	e.size = size
	copy(e.tag[:], tag)
	writeEntry(a.region.Bytes(), a.base, n, e)
	a.setCount(n + 1)
	a.bump += size
	return e.offset, nil
}

// Find looks up a previously allocated named extent.
func (a *Allocator) Find(name string) (offset, size uint64, tag string, ok bool) {
	buf := a.region.Bytes()
	n := a.count()
	for i := uint32(0); i < n; i++ {
		e := readEntry(buf, a.base, i)
		if e.nameString() == name {
			return e.offset, e.size, e.tagString(), true
		}
	}
	return 0, 0, "", false
}

// Slice returns the byte slice backing a previously allocated extent.
func (a *Allocator) Slice(name string) ([]byte, error) {
	off, size, _, ok := a.Find(name)
	if !ok {
		return nil, griderr.Newf(griderr.MalformedStore, "no such allocation: %s", name)
	}
	buf := a.region.Bytes()
	return buf[off : off+size], nil
}
