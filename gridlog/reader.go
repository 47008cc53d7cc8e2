package gridlog

// Reader is a forward cursor over a Log, used by a replication or replay
// consumer to walk entries in append order without racing the writer's
// back index beyond what it has already observed.
type Reader struct {
	log    *Log
	cursor uint64
	seen   bool
}

// NewReader returns a reader positioned before the log's first entry.
func (l *Log) NewReader() *Reader {
	return &Reader{log: l}
}

// Next advances the cursor and returns the next unread entry, or
// ok=false if the reader has caught up with the log's current back
// index.
func (r *Reader) Next() (Entry, bool) {
	next := uint64(0)
	if r.seen {
		next = r.cursor + 1
	}
	entry, ok := r.log.At(next)
	if !ok {
		return Entry{}, false
	}
	r.cursor = next
	r.seen = true
	return entry, true
}

// Cursor returns the index of the last entry returned by Next.
func (r *Reader) Cursor() (uint64, bool) {
	return r.cursor, r.seen
}
