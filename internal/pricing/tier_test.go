package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medvanta/medsupply-backend/pkg/enums"
)

func intPtr(v int) *int {
	return &v
}

func unitTier(min int, max *int, price int64) VolumeTier {
	return VolumeTier{
		ID:          uuid.New(),
		MinQuantity: min,
		MaxQuantity: max,
		Kind:        enums.TierPricingUnitPrice,
		Value:       decimal.NewFromInt(price),
	}
}

func TestResolveTierSelectsMatchingRange(t *testing.T) {
	tiers := []VolumeTier{
		unitTier(1, intPtr(9), 100),
		unitTier(10, intPtr(49), 90),
		unitTier(50, nil, 80),
	}

	cases := []struct {
		quantity int
		want     int64
	}{
		{9, 100},
		{10, 90},
		{49, 90},
		{50, 80},
		{500, 80},
	}

	for _, tc := range cases {
		tier := ResolveTier(tiers, tc.quantity)
		if tier == nil {
			t.Fatalf("quantity %d: expected a tier", tc.quantity)
		}
		if !tier.Value.Equal(decimal.NewFromInt(tc.want)) {
			t.Fatalf("quantity %d: expected unit price %d, got %s", tc.quantity, tc.want, tier.Value)
		}
	}
}

func TestResolveTierNoMatch(t *testing.T) {
	tiers := []VolumeTier{
		unitTier(1, intPtr(9), 100),
		unitTier(10, nil, 90),
	}

	if tier := ResolveTier(tiers, 0); tier != nil {
		t.Fatalf("expected nil below every minimum, got %+v", tier)
	}
	if tier := ResolveTier(nil, 25); tier != nil {
		t.Fatalf("expected nil for empty table, got %+v", tier)
	}
}

func TestResolveTierOverlapPrefersHighestMinimum(t *testing.T) {
	// Misconfigured overlapping ranges; the most specific tier must win
	// regardless of slice ordering.
	tiers := []VolumeTier{
		unitTier(1, intPtr(100), 100),
		unitTier(10, intPtr(100), 90),
	}

	tier := ResolveTier(tiers, 50)
	if tier == nil || tier.MinQuantity != 10 {
		t.Fatalf("expected min quantity 10 tier, got %+v", tier)
	}

	reversed := []VolumeTier{tiers[1], tiers[0]}
	tier = ResolveTier(reversed, 50)
	if tier == nil || tier.MinQuantity != 10 {
		t.Fatalf("expected deterministic winner after reorder, got %+v", tier)
	}
}

func TestVolumeTierPercentPrice(t *testing.T) {
	tier := VolumeTier{
		MinQuantity: 10,
		Kind:        enums.TierPricingPercentDiscount,
		Value:       decimal.NewFromInt(15),
	}

	price, ok := tier.Price(decimal.NewFromInt(80))
	if !ok {
		t.Fatal("expected applicable tier pricing")
	}
	if !price.Equal(decimal.NewFromInt(68)) {
		t.Fatalf("expected 68, got %s", price)
	}
}

func TestVolumeTierLabel(t *testing.T) {
	bounded := unitTier(10, intPtr(49), 90)
	if bounded.Label() != "Volume tier 10-49" {
		t.Fatalf("unexpected label %q", bounded.Label())
	}
	open := unitTier(50, nil, 80)
	if open.Label() != "Volume tier 50+" {
		t.Fatalf("unexpected label %q", open.Label())
	}
}
