package enums

import "fmt"

// TierPricingKind discriminates how a volume tier prices the quantities it covers.
type TierPricingKind string

const (
	TierPricingUnitPrice       TierPricingKind = "unit_price"
	TierPricingPercentDiscount TierPricingKind = "percent_discount"
)

var validTierPricingKinds = []TierPricingKind{
	TierPricingUnitPrice,
	TierPricingPercentDiscount,
}

// String implements fmt.Stringer.
func (t TierPricingKind) String() string {
	return string(t)
}

// IsValid reports whether the kind is recognized.
func (t TierPricingKind) IsValid() bool {
	for _, candidate := range validTierPricingKinds {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTierPricingKind converts a raw string into a TierPricingKind.
func ParseTierPricingKind(value string) (TierPricingKind, error) {
	for _, candidate := range validTierPricingKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tier pricing kind %q", value)
}
