package coupons

import (
	"testing"
	"time"

	"plateful/models"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name     string
		coupon   models.Coupon
		subtotal float64
		valid    bool
		discount float64
	}{
		{
			name:     "percent discount",
			coupon:   models.Coupon{Code: "save10", Percent: 10, ExpiresAt: future, Active: true},
			subtotal: 50,
			valid:    true,
			discount: 5,
		},
		{
			name:     "fixed discount",
			coupon:   models.Coupon{Code: "five-off", Fixed: 5, ExpiresAt: future, Active: true},
			subtotal: 30,
			valid:    true,
			discount: 5,
		},
		{
			name:     "fixed plus percent",
			coupon:   models.Coupon{Code: "combo", Fixed: 2, Percent: 10, ExpiresAt: future, Active: true},
			subtotal: 100,
			valid:    true,
			discount: 12,
		},
		{
			name:     "discount capped at subtotal",
			coupon:   models.Coupon{Code: "big", Fixed: 50, ExpiresAt: future, Active: true},
			subtotal: 20,
			valid:    true,
			discount: 20,
		},
		{
			name:     "expired",
			coupon:   models.Coupon{Code: "old", Percent: 10, ExpiresAt: past, Active: true},
			subtotal: 50,
			valid:    false,
		},
		{
			name:     "inactive",
			coupon:   models.Coupon{Code: "off", Percent: 10, ExpiresAt: future, Active: false},
			subtotal: 50,
			valid:    false,
		},
		{
			name:     "min spend not met",
			coupon:   models.Coupon{Code: "min40", Percent: 10, MinSpend: 40, ExpiresAt: future, Active: true},
			subtotal: 30,
			valid:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.coupon, tt.subtotal, now)
			if got.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v (%s)", got.Valid, tt.valid, got.Message)
			}
			if tt.valid && got.Discount != tt.discount {
				t.Fatalf("Discount = %v, want %v", got.Discount, tt.discount)
			}
		})
	}
}
