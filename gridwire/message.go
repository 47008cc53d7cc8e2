// Package gridwire implements the request/reply wire messages for the
// store's client-facing instruction set (spec.md §6). Rather than full
// protoc-gen-go codegen — which needs a compiled FileDescriptorProto this
// module has no protoc invocation to produce — messages are encoded by
// hand against google.golang.org/protobuf/encoding/protowire, the same
// low-level, stable, public wire-format API protoc-generated code itself
// calls into.
package gridwire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/khklau/gridstore/common/go/griderr"
)

// Opcode identifies which store operation an Instruction requests.
type Opcode uint8

const (
	_ Opcode = iota
	OpExists
	OpReadString
	OpReadStruct
	OpWriteString
	OpWriteStruct
	OpRemove
	OpCollectGarbage
	OpFlush
	OpAbout
)

func (o Opcode) String() string {
	switch o {
	case OpExists:
		return "Exists"
	case OpReadString:
		return "ReadString"
	case OpReadStruct:
		return "ReadStruct"
	case OpWriteString:
		return "WriteString"
	case OpWriteStruct:
		return "WriteStruct"
	case OpRemove:
		return "Remove"
	case OpCollectGarbage:
		return "CollectGarbage"
	case OpFlush:
		return "Flush"
	case OpAbout:
		return "About"
	default:
		return "Unknown"
	}
}

// StructValue mirrors griddb.StructValue on the wire, kept independent
// of it so gridwire has no import dependency on griddb.
type StructValue struct {
	V1, V2, V3 int64
}

// Instruction is one client request.
type Instruction struct {
	Opcode      Opcode
	Key         string
	StringValue string
	StructValue StructValue
	BatchSize   int32
	ResumeKey   string
}

// Field numbers for Instruction, chosen once and never renumbered: a
// wire-compatibility constraint, not a style choice.
const (
	fieldInstrOpcode      = 1
	fieldInstrKey         = 2
	fieldInstrStringValue = 3
	fieldInstrStructV1    = 4
	fieldInstrStructV2    = 5
	fieldInstrStructV3    = 6
	fieldInstrBatchSize   = 7
	fieldInstrResumeKey   = 8
)

// Marshal encodes an Instruction as a sequence of protobuf wire fields.
func (m Instruction) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldInstrOpcode, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(m.Opcode))
	if m.Key != "" {
		buf = protowire.AppendTag(buf, fieldInstrKey, protowire.BytesType)
		buf = protowire.AppendString(buf, m.Key)
	}
	if m.StringValue != "" {
		buf = protowire.AppendTag(buf, fieldInstrStringValue, protowire.BytesType)
		buf = protowire.AppendString(buf, m.StringValue)
	}
	if m.StructValue != (StructValue{}) {
		buf = protowire.AppendTag(buf, fieldInstrStructV1, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(m.StructValue.V1))
		buf = protowire.AppendTag(buf, fieldInstrStructV2, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(m.StructValue.V2))
		buf = protowire.AppendTag(buf, fieldInstrStructV3, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(m.StructValue.V3))
	}
	if m.BatchSize != 0 {
		buf = protowire.AppendTag(buf, fieldInstrBatchSize, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(m.BatchSize))
	}
	if m.ResumeKey != "" {
		buf = protowire.AppendTag(buf, fieldInstrResumeKey, protowire.BytesType)
		buf = protowire.AppendString(buf, m.ResumeKey)
	}
	return buf
}

// UnmarshalInstruction decodes an Instruction from buf.
func UnmarshalInstruction(buf []byte) (Instruction, error) {
	var m Instruction
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return Instruction{}, griderr.New(griderr.MalformedMessage, "bad instruction tag")
		}
		buf = buf[n:]
		switch num {
		case fieldInstrOpcode:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Instruction{}, griderr.New(griderr.MalformedMessage, "bad opcode")
			}
			m.Opcode = Opcode(v)
			buf = buf[n:]
		case fieldInstrKey:
			v, n := protowire.ConsumeString(buf)
			if n < 0 {
				return Instruction{}, griderr.New(griderr.MalformedMessage, "bad key")
			}
			m.Key = v
			buf = buf[n:]
		case fieldInstrStringValue:
			v, n := protowire.ConsumeString(buf)
			if n < 0 {
				return Instruction{}, griderr.New(griderr.MalformedMessage, "bad string value")
			}
			m.StringValue = v
			buf = buf[n:]
		case fieldInstrStructV1:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Instruction{}, griderr.New(griderr.MalformedMessage, "bad struct v1")
			}
			m.StructValue.V1 = int64(v)
			buf = buf[n:]
		case fieldInstrStructV2:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Instruction{}, griderr.New(griderr.MalformedMessage, "bad struct v2")
			}
			m.StructValue.V2 = int64(v)
			buf = buf[n:]
		case fieldInstrStructV3:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Instruction{}, griderr.New(griderr.MalformedMessage, "bad struct v3")
			}
			m.StructValue.V3 = int64(v)
			buf = buf[n:]
		case fieldInstrBatchSize:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Instruction{}, griderr.New(griderr.MalformedMessage, "bad batch size")
			}
			m.BatchSize = int32(v)
			buf = buf[n:]
		case fieldInstrResumeKey:
			v, n := protowire.ConsumeString(buf)
			if n < 0 {
				return Instruction{}, griderr.New(griderr.MalformedMessage, "bad resume key")
			}
			m.ResumeKey = v
			buf = buf[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return Instruction{}, griderr.New(griderr.MalformedMessage, "bad field")
			}
			buf = buf[n:]
		}
	}
	return m, nil
}
