package gridsvc

import (
	"github.com/khklau/gridstore/griddb"
)

// session holds the per-connection store handles, acquired lazily on
// first use and released together when the connection closes. A
// connection may issue both read and write instructions, so it can hold
// at most one of each concurrently — acquiring a second writer token
// from the same connection would fail with griderr.Busy against the one
// it already holds, so sessions reuse that one.
type session struct {
	store  *griddb.Store
	reader *griddb.ReaderHandle
	writer *griddb.WriterHandle
	owner  *griddb.OwnerHandle
}

func newSession(store *griddb.Store) *session {
	return &session{store: store, owner: store.OpenOwner()}
}

func (s *session) readerHandle() (*griddb.ReaderHandle, error) {
	if s.reader != nil {
		return s.reader, nil
	}
	r, err := s.store.OpenReader()
	if err != nil {
		return nil, err
	}
	s.reader = r
	return r, nil
}

func (s *session) writerHandle() (*griddb.WriterHandle, error) {
	if s.writer != nil {
		return s.writer, nil
	}
	w, err := s.store.OpenWriter()
	if err != nil {
		return nil, err
	}
	s.writer = w
	return w, nil
}

func (s *session) close() {
	if s.reader != nil {
		s.reader.Close()
	}
	if s.writer != nil {
		s.writer.Close()
	}
}
