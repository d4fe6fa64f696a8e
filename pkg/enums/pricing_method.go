package enums

import "fmt"

// PricingMethodKind discriminates the mutually exclusive ways a price list item
// can price a product.
type PricingMethodKind string

const (
	PricingMethodFixedPrice      PricingMethodKind = "fixed_price"
	PricingMethodPercentDiscount PricingMethodKind = "percent_discount"
	PricingMethodFixedDiscount   PricingMethodKind = "fixed_discount"
	// PricingMethodNone marks an item with no pricing column set; the resolver
	// treats such items as non-applicable.
	PricingMethodNone PricingMethodKind = "none"
)

var validPricingMethodKinds = []PricingMethodKind{
	PricingMethodFixedPrice,
	PricingMethodPercentDiscount,
	PricingMethodFixedDiscount,
	PricingMethodNone,
}

// String implements fmt.Stringer.
func (p PricingMethodKind) String() string {
	return string(p)
}

// IsValid reports whether the kind is recognized.
func (p PricingMethodKind) IsValid() bool {
	for _, candidate := range validPricingMethodKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePricingMethodKind converts a raw string into a PricingMethodKind.
func ParsePricingMethodKind(value string) (PricingMethodKind, error) {
	for _, candidate := range validPricingMethodKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing method %q", value)
}
