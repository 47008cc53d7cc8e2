package gridsvc

import (
	"errors"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/khklau/gridstore/common/go/griderr"
	"github.com/khklau/gridstore/griddb"
	"github.com/khklau/gridstore/gridwire"
)

const defaultCollectGarbageBatch = 64

// handleOne reads one framed Instruction, dispatches it, and writes back
// one framed Result. It returns errConnDone when the peer closed the
// connection cleanly.
func (s *Server) handleOne(conn net.Conn, sess *session, log *zap.SugaredLogger) error {
	frame, err := gridwire.ReadFrame(conn)
	if err != nil {
		if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return errConnDone
		}
		return err
	}

	instr, err := gridwire.UnmarshalInstruction(frame)
	if err != nil {
		return gridwire.WriteFrame(conn, errorResult(instr.Opcode, err).Marshal())
	}

	result := dispatch(sess, instr)
	return gridwire.WriteFrame(conn, result.Marshal())
}

// dispatch routes one instruction to the matching store operation, per
// the instruction table in spec.md §6.
func dispatch(sess *session, instr gridwire.Instruction) gridwire.Result {
	switch instr.Opcode {
	case gridwire.OpExists:
		return dispatchExists(sess, instr)
	case gridwire.OpReadString:
		return dispatchReadString(sess, instr)
	case gridwire.OpReadStruct:
		return dispatchReadStruct(sess, instr)
	case gridwire.OpWriteString:
		return dispatchWriteString(sess, instr)
	case gridwire.OpWriteStruct:
		return dispatchWriteStruct(sess, instr)
	case gridwire.OpRemove:
		return dispatchRemove(sess, instr)
	case gridwire.OpCollectGarbage:
		return dispatchCollectGarbage(sess, instr)
	case gridwire.OpFlush:
		return dispatchFlush(sess, instr)
	case gridwire.OpAbout:
		return dispatchAbout(sess, instr)
	default:
		return errorResult(instr.Opcode, griderr.Newf(griderr.MalformedMessage, "unknown opcode %d", instr.Opcode))
	}
}

func errorResult(op gridwire.Opcode, err error) gridwire.Result {
	kind := uint8(0)
	var se *griderr.StoreError
	if errors.As(err, &se) {
		kind = uint8(se.Kind)
	}
	return gridwire.Result{Opcode: op, Ok: false, ErrorKind: kind, ErrorMsg: err.Error()}
}

func withKey(instr gridwire.Instruction) (griddb.Key, error) {
	return griddb.NewKey(instr.Key)
}

func dispatchExists(sess *session, instr gridwire.Instruction) gridwire.Result {
	key, err := withKey(instr)
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	r, err := sess.readerHandle()
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	return gridwire.Result{Opcode: instr.Opcode, Ok: true, Exists: r.Exists(key)}
}

func dispatchReadString(sess *session, instr gridwire.Instruction) gridwire.Result {
	key, err := withKey(instr)
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	r, err := sess.readerHandle()
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	v, err := griddb.Read[griddb.StringValue](r, key)
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	return gridwire.Result{Opcode: instr.Opcode, Ok: true, Exists: true, StringValue: v.Data}
}

func dispatchReadStruct(sess *session, instr gridwire.Instruction) gridwire.Result {
	key, err := withKey(instr)
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	r, err := sess.readerHandle()
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	v, err := griddb.Read[griddb.StructValue](r, key)
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	return gridwire.Result{
		Opcode: instr.Opcode, Ok: true, Exists: true,
		StructValue: gridwire.StructValue{V1: v.V1, V2: v.V2, V3: v.V3},
	}
}

func dispatchWriteString(sess *session, instr gridwire.Instruction) gridwire.Result {
	key, err := withKey(instr)
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	w, err := sess.writerHandle()
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	rev, err := griddb.Write(w, key, griddb.StringValue{Data: instr.StringValue})
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	return gridwire.Result{Opcode: instr.Opcode, Ok: true, Revision: rev}
}

func dispatchWriteStruct(sess *session, instr gridwire.Instruction) gridwire.Result {
	key, err := withKey(instr)
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	w, err := sess.writerHandle()
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	sv := griddb.StructValue{V1: instr.StructValue.V1, V2: instr.StructValue.V2, V3: instr.StructValue.V3}
	rev, err := griddb.Write(w, key, sv)
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	return gridwire.Result{Opcode: instr.Opcode, Ok: true, Revision: rev}
}

func dispatchRemove(sess *session, instr gridwire.Instruction) gridwire.Result {
	key, err := withKey(instr)
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	w, err := sess.writerHandle()
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	rev, err := w.Remove(key)
	if err != nil {
		return errorResult(instr.Opcode, err)
	}
	return gridwire.Result{Opcode: instr.Opcode, Ok: true, Revision: rev}
}

func dispatchCollectGarbage(sess *session, instr gridwire.Instruction) gridwire.Result {
	var from griddb.Key
	if instr.ResumeKey != "" {
		k, err := griddb.NewKey(instr.ResumeKey)
		if err != nil {
			return errorResult(instr.Opcode, err)
		}
		from = k
	}
	batch := int(instr.BatchSize)
	if batch <= 0 {
		batch = defaultCollectGarbageBatch
	}
	next, reclaimed, more := sess.owner.CollectGarbageBatch(from, batch)
	return gridwire.Result{
		Opcode: instr.Opcode, Ok: true,
		NextKey: next.String(), Reclaimed: int32(reclaimed), Done: !more,
	}
}

func dispatchFlush(sess *session, instr gridwire.Instruction) gridwire.Result {
	if err := sess.owner.Flush(); err != nil {
		return errorResult(instr.Opcode, err)
	}
	return gridwire.Result{Opcode: instr.Opcode, Ok: true}
}

func dispatchAbout(sess *session, instr gridwire.Instruction) gridwire.Result {
	about := sess.owner.About()
	return gridwire.Result{
		Opcode: instr.Opcode, Ok: true,
		AboutTag: about.Tag, AboutVersion: about.Version, AboutCount: int32(about.KeyCount),
	}
}
