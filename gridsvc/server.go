// Package gridsvc implements the request/reply server for the store's
// client-facing instruction set (spec.md §6): a length-delimited
// protobuf-framed TCP server dispatching gridwire.Instruction messages
// against a griddb.Store.
package gridsvc

import (
	"context"
	"net"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khklau/gridstore/griddb"
)

// Server accepts connections and dispatches instructions against store.
type Server struct {
	store *griddb.Store
	log   *zap.SugaredLogger
}

// New returns a server bound to store.
func New(store *griddb.Store, log *zap.SugaredLogger) *Server {
	return &Server{store: store, log: log}
}

// Serve accepts connections on ln until ctx is done, handling each on its
// own goroutine under an errgroup so a panic-free handler failure on one
// connection doesn't bring down the listener loop.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return g.Wait()
			}
			return err
		}
		sessionID := uuid.New()
		g.Go(func() error {
			s.handleConn(ctx, conn, sessionID)
			return nil
		})
	}
}

// handleConn services one connection until it errors, the client closes
// it, or ctx is done.
func (s *Server) handleConn(ctx context.Context, conn net.Conn, sessionID uuid.UUID) {
	defer conn.Close()
	sess := newSession(s.store)
	defer sess.close()

	log := s.log.With("session", sessionID.String(), "remote", conn.RemoteAddr().String())
	log.Debug("session opened")
	defer log.Debug("session closed")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := s.handleOne(conn, sess, log); err != nil {
			if err != errConnDone {
				log.Debugw("session ended", "error", err)
			}
			return
		}
	}
}

var errConnDone = errConn{}

type errConn struct{}

func (errConn) Error() string { return "connection closed" }
