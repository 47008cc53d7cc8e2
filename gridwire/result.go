package gridwire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/khklau/gridstore/common/go/griderr"
)

// Result is one server reply.
type Result struct {
	Opcode      Opcode
	Ok          bool
	ErrorKind   uint8
	ErrorMsg    string
	Exists      bool
	StringValue string
	StructValue StructValue
	Revision    uint64
	NextKey     string
	Reclaimed   int32
	Done        bool
	AboutTag     string
	AboutVersion string
	AboutCount   int32
}

const (
	fieldResOpcode      = 1
	fieldResOk          = 2
	fieldResErrorKind   = 3
	fieldResErrorMsg    = 4
	fieldResExists      = 5
	fieldResStringValue = 6
	fieldResStructV1    = 7
	fieldResStructV2    = 8
	fieldResStructV3    = 9
	fieldResRevision    = 10
	fieldResNextKey     = 11
	fieldResReclaimed   = 12
	fieldResDone        = 13
	fieldResAboutTag     = 14
	fieldResAboutVersion = 15
	fieldResAboutCount   = 16
)

// Marshal encodes a Result as a sequence of protobuf wire fields.
func (m Result) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldResOpcode, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(m.Opcode))
	buf = protowire.AppendTag(buf, fieldResOk, protowire.VarintType)
	buf = protowire.AppendVarint(buf, boolToVarint(m.Ok))
	if !m.Ok {
		buf = protowire.AppendTag(buf, fieldResErrorKind, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(m.ErrorKind))
		buf = protowire.AppendTag(buf, fieldResErrorMsg, protowire.BytesType)
		buf = protowire.AppendString(buf, m.ErrorMsg)
		return buf
	}
	buf = protowire.AppendTag(buf, fieldResExists, protowire.VarintType)
	buf = protowire.AppendVarint(buf, boolToVarint(m.Exists))
	if m.StringValue != "" {
		buf = protowire.AppendTag(buf, fieldResStringValue, protowire.BytesType)
		buf = protowire.AppendString(buf, m.StringValue)
	}
	if m.StructValue != (StructValue{}) {
		buf = protowire.AppendTag(buf, fieldResStructV1, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(m.StructValue.V1))
		buf = protowire.AppendTag(buf, fieldResStructV2, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(m.StructValue.V2))
		buf = protowire.AppendTag(buf, fieldResStructV3, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(m.StructValue.V3))
	}
	buf = protowire.AppendTag(buf, fieldResRevision, protowire.VarintType)
	buf = protowire.AppendVarint(buf, m.Revision)
	if m.NextKey != "" {
		buf = protowire.AppendTag(buf, fieldResNextKey, protowire.BytesType)
		buf = protowire.AppendString(buf, m.NextKey)
	}
	buf = protowire.AppendTag(buf, fieldResReclaimed, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(m.Reclaimed))
	buf = protowire.AppendTag(buf, fieldResDone, protowire.VarintType)
	buf = protowire.AppendVarint(buf, boolToVarint(m.Done))
	if m.AboutTag != "" {
		buf = protowire.AppendTag(buf, fieldResAboutTag, protowire.BytesType)
		buf = protowire.AppendString(buf, m.AboutTag)
		buf = protowire.AppendTag(buf, fieldResAboutVersion, protowire.BytesType)
		buf = protowire.AppendString(buf, m.AboutVersion)
		buf = protowire.AppendTag(buf, fieldResAboutCount, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(m.AboutCount))
	}
	return buf
}

func boolToVarint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// UnmarshalResult decodes a Result from buf.
func UnmarshalResult(buf []byte) (Result, error) {
	var m Result
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return Result{}, griderr.New(griderr.MalformedMessage, "bad result tag")
		}
		buf = buf[n:]
		switch num {
		case fieldResOpcode:
			v, n := protowire.ConsumeVarint(buf)
			m.Opcode = Opcode(v)
			buf = consumeOrFail(buf, n)
			if buf == nil {
				return Result{}, griderr.New(griderr.MalformedMessage, "bad opcode")
			}
		case fieldResOk:
			v, n := protowire.ConsumeVarint(buf)
			m.Ok = v != 0
			buf = consumeOrFail(buf, n)
		case fieldResErrorKind:
			v, n := protowire.ConsumeVarint(buf)
			m.ErrorKind = uint8(v)
			buf = consumeOrFail(buf, n)
		case fieldResErrorMsg:
			v, n := protowire.ConsumeString(buf)
			m.ErrorMsg = v
			buf = consumeOrFail(buf, n)
		case fieldResExists:
			v, n := protowire.ConsumeVarint(buf)
			m.Exists = v != 0
			buf = consumeOrFail(buf, n)
		case fieldResStringValue:
			v, n := protowire.ConsumeString(buf)
			m.StringValue = v
			buf = consumeOrFail(buf, n)
		case fieldResStructV1:
			v, n := protowire.ConsumeVarint(buf)
			m.StructValue.V1 = int64(v)
			buf = consumeOrFail(buf, n)
		case fieldResStructV2:
			v, n := protowire.ConsumeVarint(buf)
			m.StructValue.V2 = int64(v)
			buf = consumeOrFail(buf, n)
		case fieldResStructV3:
			v, n := protowire.ConsumeVarint(buf)
			m.StructValue.V3 = int64(v)
			buf = consumeOrFail(buf, n)
		case fieldResRevision:
			v, n := protowire.ConsumeVarint(buf)
			m.Revision = v
			buf = consumeOrFail(buf, n)
		case fieldResNextKey:
			v, n := protowire.ConsumeString(buf)
			m.NextKey = v
			buf = consumeOrFail(buf, n)
		case fieldResReclaimed:
			v, n := protowire.ConsumeVarint(buf)
			m.Reclaimed = int32(v)
			buf = consumeOrFail(buf, n)
		case fieldResDone:
			v, n := protowire.ConsumeVarint(buf)
			m.Done = v != 0
			buf = consumeOrFail(buf, n)
		case fieldResAboutTag:
			v, n := protowire.ConsumeString(buf)
			m.AboutTag = v
			buf = consumeOrFail(buf, n)
		case fieldResAboutVersion:
			v, n := protowire.ConsumeString(buf)
			m.AboutVersion = v
			buf = consumeOrFail(buf, n)
		case fieldResAboutCount:
			v, n := protowire.ConsumeVarint(buf)
			m.AboutCount = int32(v)
			buf = consumeOrFail(buf, n)
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			buf = consumeOrFail(buf, n)
		}
		if buf == nil {
			return Result{}, griderr.New(griderr.MalformedMessage, "truncated result")
		}
	}
	return m, nil
}

// consumeOrFail advances buf past n bytes, or returns nil if protowire
// reported a parse failure (n < 0), letting callers treat that
// uniformly as "stop and fail".
func consumeOrFail(buf []byte, n int) []byte {
	if n < 0 {
		return nil
	}
	return buf[n:]
}
