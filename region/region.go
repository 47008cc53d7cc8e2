package region

import (
	"github.com/khklau/gridstore/common/go/griderr"
)

// Store ties together a backing Region, its validated Header, and the
// Allocator for named sub-allocations. Component constructors (griddb,
// gridlog) build on top of a Store rather than a bare Region.
type Store struct {
	*Region
	Header Header
	Alloc  *Allocator
}

// Open opens or creates a backing region at path (a plain file path, or,
// when shared is set, a segment name that OpenSharedMemory places under
// /dev/shm), validates or writes
// its header, and attaches an Allocator. tag identifies the store kind
// (e.g. "GRIDMVCC", "GRIDLOG2"); min/max bound the accepted wire version
// for an existing region.
func Open(path string, size uint64, role Role, tag string, version, min, max Version, shared bool) (*Store, error) {
	var (
		r       *Region
		created bool
		err     error
	)
	if shared {
		r, created, err = OpenSharedMemory(path, size, role)
	} else {
		r, created, err = OpenFile(path, size, role)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{Region: r}
	if created {
		if role != RoleOwner {
			r.Close()
			return nil, griderr.New(griderr.StoreMissing, "reader cannot create a region")
		}
		s.Header = NewHeader(tag, version, size)
		copy(r.Bytes(), s.Header.Marshal())
		s.Alloc = NewAllocator(r, HeaderSize)
		// The header already sits at offset 0, ahead of the registry, so
		// its entry records that extent instead of bumping a new one.
		var hdr entry
		copy(hdr.name[:], NameHeader)
		hdr.size = HeaderSize
		copy(hdr.tag[:], tag)
		writeEntry(r.Bytes(), HeaderSize, 0, hdr)
		s.Alloc.setCount(1)
		return s, nil
	}

	h, err := UnmarshalHeader(r.Bytes())
	if err != nil {
		r.Close()
		return nil, err
	}
	if err := Validate(h, tag, min, max); err != nil {
		r.Close()
		return nil, err
	}
	s.Header = h
	alloc, err := OpenAllocator(r, HeaderSize)
	if err != nil {
		r.Close()
		return nil, err
	}
	s.Alloc = alloc
	return s, nil
}
