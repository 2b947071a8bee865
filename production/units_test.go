package production

import (
	"math"
	"testing"
)

func TestConvertToBaseUnit(t *testing.T) {
	tests := []struct {
		quantity float64
		unit     string
		want     float64
		wantUnit string
	}{
		{500, "g", 500, "g"},
		{2, "kg", 2000, "g"},
		{250, "mg", 0.25, "g"},
		{1.5, "l", 1500, "ml"},
		{3, "tbsp", 44.36029434375, "ml"},
		{2, "dozen", 24, "pcs"},
		{4, "pcs", 4, "pcs"},
		{2, "KG", 2000, "g"},   // case-insensitive
		{1, "grams", 1, "g"},   // alias
		{7, "bunch", 7, "bunch"}, // unrecognized: identity, not an error
	}

	for _, tt := range tests {
		got, gotUnit := ConvertToBaseUnit(tt.quantity, tt.unit)
		if math.Abs(got-tt.want) > 1e-9 || gotUnit != tt.wantUnit {
			t.Errorf("ConvertToBaseUnit(%v, %q) = (%v, %q), want (%v, %q)",
				tt.quantity, tt.unit, got, gotUnit, tt.want, tt.wantUnit)
		}
	}
}

func TestConvertToBaseUnitIdempotent(t *testing.T) {
	// converting an already-base-unit quantity is a no-op
	for _, base := range []string{"g", "ml", "pcs"} {
		if got, unit := ConvertToBaseUnit(42, base); got != 42 || unit != base {
			t.Errorf("ConvertToBaseUnit(42, %q) = (%v, %q), want (42, %q)", base, got, unit, base)
		}
	}
}

func TestCanAggregateUnits(t *testing.T) {
	if ok, _ := CanAggregateUnits([]string{"g", "kg"}); !ok {
		t.Error("g and kg share the mass class, expected aggregable")
	}
	if ok, reason := CanAggregateUnits([]string{"g", "ml"}); ok || reason == "" {
		t.Errorf("g and ml must not aggregate, got ok=%v reason=%q", ok, reason)
	}
	if ok, _ := CanAggregateUnits([]string{"g"}); !ok {
		t.Error("a single unit is always aggregable")
	}
	if ok, _ := CanAggregateUnits(nil); !ok {
		t.Error("an empty list is always aggregable")
	}
	// identical unrecognized units form one singleton class
	if ok, _ := CanAggregateUnits([]string{"bunch", "bunch"}); !ok {
		t.Error("identical unknown units should aggregate")
	}
	if ok, _ := CanAggregateUnits([]string{"bunch", "sprig"}); ok {
		t.Error("distinct unknown units must not aggregate")
	}
}
