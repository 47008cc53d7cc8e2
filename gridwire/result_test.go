package gridwire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_ResultMarshalRoundTrip(t *testing.T) {
	cases := []Result{
		{Opcode: OpExists, Ok: true, Exists: true},
		{Opcode: OpReadString, Ok: true, Exists: true, StringValue: "hi"},
		{Opcode: OpWriteStruct, Ok: true, Revision: 7, StructValue: StructValue{V1: 1, V2: 2, V3: 3}},
		{Opcode: OpCollectGarbage, Ok: true, NextKey: "resume", Reclaimed: 4, Done: false},
		{Opcode: OpAbout, Ok: true, AboutTag: "GRIDMVCC", AboutVersion: "1.0.0.0", AboutCount: 10},
		{Opcode: OpWriteString, Ok: false, ErrorKind: 3, ErrorMsg: "key too long"},
	}

	for _, want := range cases {
		buf := want.Marshal()
		got, err := UnmarshalResult(buf)
		if err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func Test_ResultErrorOmitsSuccessFields(t *testing.T) {
	r := Result{Opcode: OpExists, Ok: false, Exists: true, ErrorKind: 1, ErrorMsg: "boom"}
	buf := r.Marshal()
	got, err := UnmarshalResult(buf)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Exists {
		t.Fatal("error result should not carry a success payload")
	}
}
