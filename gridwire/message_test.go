package gridwire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_InstructionMarshalRoundTrip(t *testing.T) {
	cases := []Instruction{
		{Opcode: OpExists, Key: "k1"},
		{Opcode: OpWriteString, Key: "k2", StringValue: "hello"},
		{Opcode: OpWriteStruct, Key: "k3", StructValue: StructValue{V1: 1, V2: -2, V3: 3}},
		{Opcode: OpCollectGarbage, ResumeKey: "k4", BatchSize: 32},
		{Opcode: OpAbout},
	}

	for _, want := range cases {
		buf := want.Marshal()
		got, err := UnmarshalInstruction(buf)
		if err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func Test_UnmarshalInstructionRejectsGarbage(t *testing.T) {
	_, err := UnmarshalInstruction([]byte{0xff, 0xff, 0xff})
	if err == nil {
		t.Fatal("expected error decoding garbage bytes")
	}
}
