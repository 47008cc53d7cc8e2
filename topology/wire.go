package topology

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/khklau/gridstore/common/go/griderr"
)

// Opcode identifies gridtopo's fixed instruction set.
type Opcode uint8

const (
	_ Opcode = iota
	OpListRegions
	OpTerminate
)

// Instruction is a gridtopo request: it carries no payload beyond its
// opcode, since both instructions are argument-free.
type Instruction struct {
	Opcode Opcode
}

// Marshal encodes an Instruction.
func (m Instruction) Marshal() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(m.Opcode))
	return buf
}

// UnmarshalInstruction decodes an Instruction.
func UnmarshalInstruction(buf []byte) (Instruction, error) {
	num, _, n := protowire.ConsumeTag(buf)
	if n < 0 || num != 1 {
		return Instruction{}, griderr.New(griderr.MalformedMessage, "bad topology instruction")
	}
	v, n := protowire.ConsumeVarint(buf[n:])
	if n < 0 {
		return Instruction{}, griderr.New(griderr.MalformedMessage, "bad topology opcode")
	}
	return Instruction{Opcode: Opcode(v)}, nil
}

// Result is a gridtopo reply.
type Result struct {
	Regions []RegionInfo
}

const (
	fieldResultRegionID   = 1
	fieldResultRegionName = 2
)

// Marshal encodes a Result as a repeated (id, name) pair sequence.
func (m Result) Marshal() []byte {
	var buf []byte
	for _, r := range m.Regions {
		buf = protowire.AppendTag(buf, fieldResultRegionID, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(r.ID))
		buf = protowire.AppendTag(buf, fieldResultRegionName, protowire.BytesType)
		buf = protowire.AppendString(buf, r.Name)
	}
	return buf
}

// UnmarshalResult decodes a Result.
func UnmarshalResult(buf []byte) (Result, error) {
	var m Result
	var cur RegionInfo
	have := false
	for len(buf) > 0 {
		num, _, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return Result{}, griderr.New(griderr.MalformedMessage, "bad topology result tag")
		}
		buf = buf[n:]
		switch num {
		case fieldResultRegionID:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Result{}, griderr.New(griderr.MalformedMessage, "bad region id")
			}
			if have {
				m.Regions = append(m.Regions, cur)
			}
			cur = RegionInfo{ID: uint32(v)}
			have = true
			buf = buf[n:]
		case fieldResultRegionName:
			v, n := protowire.ConsumeString(buf)
			if n < 0 {
				return Result{}, griderr.New(griderr.MalformedMessage, "bad region name")
			}
			cur.Name = v
			buf = buf[n:]
		default:
			n := protowire.ConsumeFieldValue(num, 0, buf)
			if n < 0 {
				return Result{}, griderr.New(griderr.MalformedMessage, "bad topology field")
			}
			buf = buf[n:]
		}
	}
	if have {
		m.Regions = append(m.Regions, cur)
	}
	return m, nil
}
