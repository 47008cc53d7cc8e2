package topology

import (
	"context"
	"errors"
	"io"
	"net"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khklau/gridstore/gridwire"
)

// Server serves gridtopo's fixed instruction set over the same
// length-delimited framing as gridsvc.
type Server struct {
	service *Service
	log     *zap.SugaredLogger
}

// NewServer returns a server backed by service.
func NewServer(service *Service, log *zap.SugaredLogger) *Server {
	return &Server{service: service, log: log}
}

// Serve accepts connections on ln until ctx is done. A Terminate
// instruction closes only the connection it arrived on; Serve keeps
// accepting.
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
		g.Go(func() error {
			s.handleConn(conn)
			return nil
		})
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	for {
		frame, err := gridwire.ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				s.log.Debugw("connection ended", "error", err)
			}
			return
		}
		instr, err := UnmarshalInstruction(frame)
		if err != nil {
			s.log.Debugw("malformed instruction", "error", err)
			return
		}
		switch instr.Opcode {
		case OpListRegions:
			result := Result{Regions: s.service.ListRegions()}
			if err := gridwire.WriteFrame(conn, result.Marshal()); err != nil {
				return
			}
		case OpTerminate:
			gridwire.WriteFrame(conn, Result{}.Marshal())
			return
		default:
			return
		}
	}
}
