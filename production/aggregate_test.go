package production

import (
	"math"
	"testing"
)

func TestAggregateQuantities(t *testing.T) {
	total := AggregateQuantities([]QuantityItem{
		{Quantity: 500, Unit: "g"},
		{Quantity: 0.6, Unit: "kg"},
	})
	if math.Abs(total.BaseValue-1100) > 1e-9 || total.BaseUnit != "g" {
		t.Fatalf("got %v %s, want 1100 g", total.BaseValue, total.BaseUnit)
	}
}

func TestAggregateQuantitiesEmpty(t *testing.T) {
	total := AggregateQuantities(nil)
	if total.BaseValue != 0 || total.BaseUnit != "" {
		t.Fatalf("got %+v, want zero total", total)
	}
}

func TestAggregateQuantitiesBestEffortOnMismatch(t *testing.T) {
	// mismatched classes still sum; the base unit comes from the first item
	total := AggregateQuantities([]QuantityItem{
		{Quantity: 100, Unit: "g"},
		{Quantity: 50, Unit: "ml"},
	})
	if total.BaseUnit != "g" {
		t.Fatalf("base unit = %q, want g", total.BaseUnit)
	}
	if total.BaseValue != 150 {
		t.Fatalf("got %v, want 150 (best-effort sum)", total.BaseValue)
	}
}
