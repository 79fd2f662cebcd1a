package tool

import (
	"reflect"
	"testing"
)

func TestSetAlgebra(t *testing.T) {
	detected := NewSet(StorCLI, SmartCtl)
	enabled := NewSet(Redfish)
	disabled := NewSet(SmartCtl)

	target := detected.Union(enabled).Subtract(disabled)
	want := []ID{Redfish, StorCLI}
	if got := target.Sorted(); !reflect.DeepEqual(got, want) {
		t.Fatalf("target = %v, want %v", got, want)
	}
	// Inputs are untouched.
	if !detected.Has(SmartCtl) {
		t.Fatalf("Subtract mutated its receiver")
	}
}

func TestSetSortedStable(t *testing.T) {
	s := NewSet(SmartCtl, DCGM, IPMISEL)
	first := s.Sorted()
	second := s.Sorted()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Sorted not deterministic: %v vs %v", first, second)
	}
}

func TestParseID(t *testing.T) {
	if id, ok := ParseID("storcli"); !ok || id != StorCLI {
		t.Fatalf("ParseID(storcli) = %v, %v", id, ok)
	}
	if _, ok := ParseID("nvme-cli"); ok {
		t.Fatalf("unknown name accepted")
	}
	if _, ok := ParseID(""); ok {
		t.Fatalf("empty name accepted")
	}
}

func TestKnownIDsCoversRegistry(t *testing.T) {
	reg := NewRegistry(Options{})
	known := NewSet(KnownIDs()...)
	for _, id := range reg.IDs() {
		if !known.Has(id) {
			t.Fatalf("registry tool %s missing from KnownIDs", id)
		}
	}
	if len(KnownIDs()) != len(reg.IDs()) {
		t.Fatalf("KnownIDs has %d entries, registry has %d", len(KnownIDs()), len(reg.IDs()))
	}
}
