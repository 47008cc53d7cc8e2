package region

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/khklau/gridstore/common/go/griderr"
)

// Role distinguishes the single owner process from any of the many reader
// processes attaching to the same region. It is a runtime value: it
// selects a read-write or read-only mapping, whether the region may be
// created, and whether the advisory lock is taken. It does not restrict
// which griddb handles can be opened over the resulting store.
type Role uint8

const (
	RoleReader Role = iota
	RoleOwner
)

func (r Role) String() string {
	if r == RoleOwner {
		return "owner"
	}
	return "reader"
}

// Region is a mapped backing region: either a file-backed mapping or a
// POSIX shared-memory segment. Both resolve to the same mmap path once a
// file descriptor is in hand, since /dev/shm is itself a tmpfs filesystem.
type Region struct {
	data []byte
	file *os.File
	role Role
	path string
}

// openFlags returns the os.OpenFile flags and mmap protection appropriate
// for role.
func openFlags(role Role) (flags int, prot int) {
	if role == RoleOwner {
		return os.O_RDWR | os.O_CREATE, unix.PROT_READ | unix.PROT_WRITE
	}
	return os.O_RDONLY, unix.PROT_READ
}

// OpenFile opens (and for an owner, creates) a file-backed region at path.
// The owner holds an advisory exclusive flock for the region's lifetime.
func OpenFile(path string, size uint64, role Role) (*Region, bool, error) {
	flags, prot := openFlags(role)

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if role == RoleReader && os.IsNotExist(err) {
			return nil, false, griderr.Wrap(griderr.StoreMissing, "region does not exist: "+path, err)
		}
		return nil, false, fmt.Errorf("failed to open region %q: %w", path, err)
	}

	created := false
	if role == RoleOwner {
		if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
			f.Close()
			return nil, false, griderr.Wrap(griderr.StoreMissing, "region already owned", err)
		}

		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, false, fmt.Errorf("failed to stat region %q: %w", path, err)
		}
		if info.Size() == 0 {
			if err := f.Truncate(int64(size)); err != nil {
				f.Close()
				return nil, false, fmt.Errorf("failed to size region %q: %w", path, err)
			}
			created = true
		} else {
			size = uint64(info.Size())
		}
	} else {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, false, fmt.Errorf("failed to stat region %q: %w", path, err)
		}
		size = uint64(info.Size())
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("failed to mmap region %q: %w", path, err)
	}

	return &Region{data: data, file: f, role: role, path: path}, created, nil
}

// OpenSharedMemory opens (and for an owner, creates) a POSIX shared-memory
// segment under /dev/shm/<name>.
func OpenSharedMemory(name string, size uint64, role Role) (*Region, bool, error) {
	return OpenFile("/dev/shm/"+name, size, role)
}

// Bytes returns the mapped region's backing bytes.
func (r *Region) Bytes() []byte { return r.data }

// Role reports whether this handle opened the region as owner or reader.
func (r *Region) Role() Role { return r.role }

// Path returns the filesystem path backing this region.
func (r *Region) Path() string { return r.path }

// Flush synchronizes the mapping to stable storage. It is a best-effort
// operation; spec.md §1 explicitly excludes durability guarantees beyond
// this.
func (r *Region) Flush() error {
	if len(r.data) == 0 {
		return nil
	}
	return unix.Msync(r.data, unix.MS_SYNC)
}

// Close unmaps the region and releases the advisory lock (implicitly, by
// closing the file descriptor).
func (r *Region) Close() error {
	var errs []error
	if len(r.data) > 0 {
		if err := unix.Munmap(r.data); err != nil {
			errs = append(errs, err)
		}
		r.data = nil
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			errs = append(errs, err)
		}
		r.file = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close region %q: %v", r.path, errs)
	}
	return nil
}

// Destroy removes the backing file. None of the cmd binaries calls it:
// gridowner leaves its region and log files in place when it exits on
// SIGTERM/SIGINT.
func (r *Region) Destroy() error {
	return os.Remove(r.path)
}
