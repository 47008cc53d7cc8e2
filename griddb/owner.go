package griddb

// OwnerHandle is the store-owning process's façade: process_read_metadata,
// process_write_metadata, collect_garbage and flush, plus the about
// instruction supplemented from original_source (spec.md §4.G-H, §11).
type OwnerHandle struct {
	store *Store
}

// OpenOwner returns an owner handle over store. Unlike readers and
// writers, it is not pool limited and takes no token. It does not check
// the role the backing region was opened with: a store opened with
// region.RoleReader hands out an owner handle too (cmd/gridmgr uses one
// for About).
func (s *Store) OpenOwner() *OwnerHandle {
	return &OwnerHandle{store: s}
}

// ProcessReadMetadata scans reader slots [fromID, toID) and updates the
// owner's cached oldest-in-use revision, returning it (spec.md §4.G).
// Call with (0, ReaderLimit) for a full sweep, or a narrower range to
// scan incrementally across repeated calls.
func (h *OwnerHandle) ProcessReadMetadata(fromID, toID uint32) uint64 {
	return h.store.pool.processReadMetadata(fromID, toID)
}

// ProcessWriteMetadata drains up to maxAttempts deleter descriptors (0
// meaning unlimited) from the write queue into the owner's persistent
// deleter registry, returning the number drained (spec.md §4.G).
func (h *OwnerHandle) ProcessWriteMetadata(maxAttempts int) int {
	return h.store.pool.processWriteMetadata(maxAttempts)
}

// CollectGarbageBatch reclaims reclaimable versions from up to batchSize
// registered keys, starting at from. It first folds in any pending
// metadata (a full reader sweep and a full queue drain) so a caller that
// never calls ProcessReadMetadata/ProcessWriteMetadata directly still
// gets a correct, current view, matching spec.md's S4/S5 sequencing. If
// from does not name a currently registered key (including the zero
// Key, for "start over"), the scan starts from the first key instead —
// the spec.md §9 open question resolution for a missing resume point.
// It returns the key to resume from on the next call — wrapping to the
// first registered key once the scan reaches the end, so a caller that
// keeps calling with the returned key cycles the whole key space
// indefinitely — and ok=false when this single call already covered
// every registered key (including when none are registered).
func (h *OwnerHandle) CollectGarbageBatch(from Key, batchSize int) (next Key, reclaimed int, ok bool) {
	h.store.pool.processWriteMetadata(0)
	threshold := h.store.pool.processReadMetadata(0, ReaderLimit)

	h.store.pool.owner.mu.Lock()
	keys := append([]Key(nil), h.store.pool.owner.registryOrder...)
	h.store.pool.owner.mu.Unlock()
	if len(keys) == 0 {
		return Key{}, 0, false
	}

	start := 0
	if from.String() != "" {
		for i, k := range keys {
			if k.String() == from.String() {
				start = i
				break
			}
		}
	}

	covered := batchSize
	if covered <= 0 || covered > len(keys) {
		covered = len(keys)
	}
	for i := 0; i < covered; i++ {
		key := keys[(start+i)%len(keys)]
		reclaimed += h.reclaimKey(key, threshold)
	}

	resumeIdx := (start + covered) % len(keys)
	return keys[resumeIdx], reclaimed, covered < len(keys)
}

// reclaimKey pops versions off the back of key's chain. If the record
// is marked want-removed, every version is popped unconditionally, down
// to empty — a removed key has nothing left worth keeping once its
// versions age out of any reader's view. Otherwise the back is popped
// only while more than one version remains and the back is older than
// threshold, always leaving at least the newest version in place
// (spec.md §4.G, original mvcc_memory.hxx:649-675).
func (h *OwnerHandle) reclaimKey(key Key, threshold uint64) int {
	rec, ok := h.store.recordFor(key, false)
	if !ok {
		return 0
	}
	reclaimed := 0
	removed := rec.wantRemoved.Load()
	for {
		if !removed && rec.chain.ElementCount() <= 1 {
			break
		}
		back, ok := rec.chain.Back()
		if !ok {
			break
		}
		if !removed && back.Revision() >= threshold {
			break
		}
		if _, ok := rec.chain.PopBack(back.Revision()); !ok {
			break
		}
		reclaimed++
	}
	return reclaimed
}

// Flush synchronizes the backing region to stable storage.
func (h *OwnerHandle) Flush() error {
	return h.store.region.Flush()
}

// About describes the store, supplementing the instruction set with the
// original_source `container::about`/`mvcc_service::about` query
// (spec.md §11): region tag, wire version, key count, whether the writer
// token is held, and the current global revision.
type About struct {
	Tag            string
	Version        string
	KeyCount       int
	WriterOpen     bool
	GlobalRevision uint64
}

// About reports the store's current identity and coarse occupancy.
func (h *OwnerHandle) About() About {
	h.store.keyOrderMu.Lock()
	keyCount := len(h.store.keyOrder)
	h.store.keyOrderMu.Unlock()
	return About{
		Tag:            StoreTag,
		Version:        h.store.region.Header.Version.String(),
		KeyCount:       keyCount,
		WriterOpen:     h.store.pool.writerInUse.Load(),
		GlobalRevision: h.store.pool.globalRevision.Load(),
	}
}
