package checkout

import (
	"math"
	"testing"
)

func TestApportionDiscount(t *testing.T) {
	tests := []struct {
		name      string
		discount  float64
		subtotals []float64
		want      []float64
	}{
		{
			// one $10 meal order + one $50 package order, $6 off the cart
			name:      "mixed cart pro rata",
			discount:  6,
			subtotals: []float64{10, 50},
			want:      []float64{1, 5},
		},
		{
			name:      "package-only cart keeps full discount",
			discount:  5,
			subtotals: []float64{50},
			want:      []float64{5},
		},
		{
			name:      "zero discount",
			discount:  0,
			subtotals: []float64{10, 50},
			want:      []float64{0, 0},
		},
		{
			name:      "no orders",
			discount:  5,
			subtotals: nil,
			want:      []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apportionDiscount(tt.discount, tt.subtotals)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("share %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestApportionDiscountSharesSumExactly(t *testing.T) {
	// awkward thirds force cent rounding; the shares must still add up to
	// the discount so order totals sum to the charged amount
	subtotals := []float64{33.33, 33.33, 33.34}
	shares := apportionDiscount(10, subtotals)

	var sum float64
	for _, s := range shares {
		sum += s
	}
	if math.Abs(sum-10) > 1e-9 {
		t.Fatalf("shares sum to %v, want 10", sum)
	}

	var discounted float64
	for i := range subtotals {
		discounted += subtotals[i] - shares[i]
	}
	if math.Abs(discounted-90) > 1e-9 {
		t.Fatalf("discounted totals sum to %v, want 90", discounted)
	}
}

func TestValidCollectionDate(t *testing.T) {
	if !validCollectionDate("2026-08-28") {
		t.Error("expected 2026-08-28 to be valid")
	}
	for _, bad := range []string{"", "28-08-2026", "2026-13-01", "today"} {
		if validCollectionDate(bad) {
			t.Errorf("expected %q to be invalid", bad)
		}
	}
}
