package models

import (
	"testing"
)

func TestNewRegistry_CatalogOrder(t *testing.T) {
	r := NewRegistry()

	want := []string{
		FamilySMA,
		FamilySES,
		FamilyHoltWinters,
		FamilyARIMA,
		FamilyLinear,
		FamilyForest,
	}

	got := r.Families()
	if len(got) != len(want) {
		t.Fatalf("Families() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Families()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if r.Len() != 6 {
		t.Errorf("Len() = %d, want 6", r.Len())
	}
}

func TestRegistry_FamiliesCopy(t *testing.T) {
	r := NewRegistry()

	names := r.Families()
	names[0] = "mutated"

	if r.Families()[0] != FamilySMA {
		t.Error("Families() must return a copy")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()

	m, ok := r.Lookup(FamilyHoltWinters)
	if !ok {
		t.Fatalf("Lookup(%q) missing", FamilyHoltWinters)
	}
	if m.Name() != FamilyHoltWinters {
		t.Errorf("Name() = %q, want %q", m.Name(), FamilyHoltWinters)
	}

	if _, ok := r.Lookup("Prophet"); ok {
		t.Error("Lookup of unknown family should miss")
	}
}

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry()

	desc, ok := r.Describe(FamilySES)
	if !ok {
		t.Fatalf("Describe(%q) missing", FamilySES)
	}
	if desc.Equation != "ŷ_t = α * y_{t-1} + (1-α) * ŷ_{t-1}" {
		t.Errorf("Equation = %q, want the smoothing recurrence", desc.Equation)
	}
	if desc.Parameters == "" || desc.BestFor == "" || desc.Limitations == "" {
		t.Errorf("Describe(%q) has empty fields: %+v", FamilySES, desc)
	}

	if _, ok := r.Describe("unknown"); ok {
		t.Error("Describe of unknown family should miss")
	}
}

func TestRegistry_EveryFamilyDescribed(t *testing.T) {
	r := NewRegistry()

	for _, name := range r.Families() {
		desc, ok := r.Describe(name)
		if !ok {
			t.Errorf("Describe(%q) missing", name)
			continue
		}
		if desc.Equation == "" || desc.Description == "" {
			t.Errorf("Describe(%q) incomplete: %+v", name, desc)
		}
	}
}
