package topology

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_InstructionRoundTrip(t *testing.T) {
	want := Instruction{Opcode: OpListRegions}
	got, err := UnmarshalInstruction(want.Marshal())
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func Test_ResultRoundTrip(t *testing.T) {
	want := Result{Regions: []RegionInfo{{ID: 0, Name: "alpha"}, {ID: 1, Name: "beta"}}}
	got, err := UnmarshalResult(want.Marshal())
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func Test_ServiceListRegions(t *testing.T) {
	svc := NewService(Config{Regions: []RegionConfig{{ID: 2, Name: "gamma"}, {ID: 0, Name: "alpha"}}})
	regions := svc.ListRegions()
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if regions[0].ID != 0 || regions[1].ID != 2 {
		t.Errorf("expected ascending region ids, got %+v", regions)
	}
}
