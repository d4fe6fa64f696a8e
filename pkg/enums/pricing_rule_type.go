package enums

import "fmt"

// PricingRuleType identifies the waterfall stage that produced a rule application.
type PricingRuleType string

const (
	PricingRuleBasePrice        PricingRuleType = "base_price"
	PricingRuleContractPrice    PricingRuleType = "contract_price"
	PricingRuleVolumeTier       PricingRuleType = "volume_tier"
	PricingRuleMarginProtection PricingRuleType = "margin_protection"
)

var validPricingRuleTypes = []PricingRuleType{
	PricingRuleBasePrice,
	PricingRuleContractPrice,
	PricingRuleVolumeTier,
	PricingRuleMarginProtection,
}

// String implements fmt.Stringer.
func (p PricingRuleType) String() string {
	return string(p)
}

// IsValid reports whether the rule type is recognized.
func (p PricingRuleType) IsValid() bool {
	for _, candidate := range validPricingRuleTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePricingRuleType converts a raw string into a PricingRuleType.
func ParsePricingRuleType(value string) (PricingRuleType, error) {
	for _, candidate := range validPricingRuleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing rule type %q", value)
}
