package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medvanta/medsupply-backend/pkg/enums"
)

// PriceList is a named, prioritized, time-bounded collection of per-product
// pricing overrides assignable to customers. Lower priority values win.
type PriceList struct {
	ID         uuid.UUID
	Name       string
	Priority   int
	IsActive   bool
	ValidFrom  *time.Time
	ValidUntil *time.Time
}

// IsCurrentlyValid reports whether the list applies on the given date. Bounds
// are inclusive; a nil bound is unbounded on that side.
func (pl PriceList) IsCurrentlyValid(at time.Time) bool {
	if !pl.IsActive {
		return false
	}
	if pl.ValidFrom != nil && at.Before(*pl.ValidFrom) {
		return false
	}
	if pl.ValidUntil != nil && at.After(*pl.ValidUntil) {
		return false
	}
	return true
}

// PricingMethod is the tagged variant behind a price list item's three
// mutually exclusive pricing columns.
type PricingMethod struct {
	Kind  enums.PricingMethodKind
	Value decimal.Decimal
}

// FixedPrice prices the product at the given amount outright.
func FixedPrice(value decimal.Decimal) PricingMethod {
	return PricingMethod{Kind: enums.PricingMethodFixedPrice, Value: value}
}

// PercentDiscount reduces the base price by the given percent (0-100).
func PercentDiscount(value decimal.Decimal) PricingMethod {
	return PricingMethod{Kind: enums.PricingMethodPercentDiscount, Value: value}
}

// FixedDiscount subtracts the given amount from the base price, floored at zero.
func FixedDiscount(value decimal.Decimal) PricingMethod {
	return PricingMethod{Kind: enums.PricingMethodFixedDiscount, Value: value}
}

// NoMethod marks an item with no pricing column set.
func NoMethod() PricingMethod {
	return PricingMethod{Kind: enums.PricingMethodNone}
}

// PricingMethodFromColumns collapses the nullable storage columns into the
// variant. When more than one column is populated the precedence is
// fixed price, then percent discount, then fixed discount; this mirrors how
// historical data was interpreted upstream, so existing rows keep pricing the
// same way.
func PricingMethodFromColumns(fixedPrice, percentDiscount, fixedDiscount *decimal.Decimal) PricingMethod {
	switch {
	case fixedPrice != nil:
		return FixedPrice(*fixedPrice)
	case percentDiscount != nil:
		return PercentDiscount(*percentDiscount)
	case fixedDiscount != nil:
		return FixedDiscount(*fixedDiscount)
	default:
		return NoMethod()
	}
}

// Apply computes the candidate price for the method against the given base.
// The boolean is false when the method is absent or its value is out of range;
// callers treat that as the stage degrading to a no-op.
func (m PricingMethod) Apply(base decimal.Decimal) (decimal.Decimal, bool) {
	switch m.Kind {
	case enums.PricingMethodFixedPrice:
		if m.Value.IsNegative() {
			return decimal.Zero, false
		}
		return m.Value, true
	case enums.PricingMethodPercentDiscount:
		if m.Value.IsNegative() || m.Value.GreaterThan(oneHundred) {
			return decimal.Zero, false
		}
		factor := decimal.NewFromInt(1).Sub(m.Value.Div(oneHundred))
		return base.Mul(factor), true
	case enums.PricingMethodFixedDiscount:
		if m.Value.IsNegative() {
			return decimal.Zero, false
		}
		price := base.Sub(m.Value)
		if price.IsNegative() {
			price = decimal.Zero
		}
		return price, true
	default:
		return decimal.Zero, false
	}
}

// Describe renders the method for rule trail explanations.
func (m PricingMethod) Describe() string {
	switch m.Kind {
	case enums.PricingMethodFixedPrice:
		return fmt.Sprintf("fixed price %s", m.Value.StringFixed(2))
	case enums.PricingMethodPercentDiscount:
		return fmt.Sprintf("%s%% discount", m.Value.String())
	case enums.PricingMethodFixedDiscount:
		return fmt.Sprintf("fixed discount %s", m.Value.StringFixed(2))
	default:
		return "no pricing method"
	}
}

// PriceListItem is a single product override belonging to one price list.
type PriceListItem struct {
	ID                   uuid.UUID
	PriceListID          uuid.UUID
	ProductID            uuid.UUID
	Method               PricingMethod
	MinimumMarginPercent *decimal.Decimal
	List                 PriceList
}

// VolumeTier is a quantity-range-keyed pricing override independent of
// customer identity. MinQuantity is inclusive; a nil MaxQuantity is unbounded.
type VolumeTier struct {
	ID          uuid.UUID
	MinQuantity int
	MaxQuantity *int
	Kind        enums.TierPricingKind
	Value       decimal.Decimal
}

// Matches reports whether the quantity falls inside the tier's range.
func (t VolumeTier) Matches(quantity int) bool {
	if quantity < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == nil || quantity <= *t.MaxQuantity
}

// Price computes the tier price using the given base for percent tiers.
func (t VolumeTier) Price(base decimal.Decimal) (decimal.Decimal, bool) {
	switch t.Kind {
	case enums.TierPricingUnitPrice:
		if t.Value.IsNegative() {
			return decimal.Zero, false
		}
		return t.Value, true
	case enums.TierPricingPercentDiscount:
		if t.Value.IsNegative() || t.Value.GreaterThan(oneHundred) {
			return decimal.Zero, false
		}
		factor := decimal.NewFromInt(1).Sub(t.Value.Div(oneHundred))
		return base.Mul(factor), true
	default:
		return decimal.Zero, false
	}
}

// Label renders the tier's quantity range for rule trail naming.
func (t VolumeTier) Label() string {
	if t.MaxQuantity == nil {
		return fmt.Sprintf("Volume tier %d+", t.MinQuantity)
	}
	return fmt.Sprintf("Volume tier %d-%d", t.MinQuantity, *t.MaxQuantity)
}

// ProductPricing bundles everything the catalog knows about pricing one
// product, independent of the requesting customer.
type ProductPricing struct {
	ProductID            uuid.UUID
	BasePrice            decimal.Decimal
	CostBasis            *decimal.Decimal
	MinimumMarginPercent *decimal.Decimal
	Tiers                []VolumeTier
}

// RuleApplication is one entry of the explainable rule trail. Order is the
// waterfall stage number; skipped stages leave gaps. All fields are primitives
// so the trail survives JSON round-trips for audit persistence.
type RuleApplication struct {
	Order       int                   `json:"order"`
	RuleType    enums.PricingRuleType `json:"rule_type"`
	RuleName    string                `json:"rule_name"`
	PriceBefore decimal.Decimal       `json:"price_before"`
	PriceAfter  decimal.Decimal       `json:"price_after"`
	Adjustment  decimal.Decimal       `json:"adjustment"`
	Explanation string                `json:"explanation"`
}

// Result is the immutable output of one waterfall run.
type Result struct {
	ProductID  uuid.UUID       `json:"product_id"`
	BasePrice  decimal.Decimal `json:"base_price"`
	FinalPrice decimal.Decimal `json:"final_price"`
	// TotalDiscount is basePrice minus finalPrice; negative when margin
	// protection raised the price above the discounted level.
	TotalDiscount          decimal.Decimal   `json:"total_discount"`
	EffectiveMarginPercent *decimal.Decimal  `json:"effective_margin_percent"`
	MarginProtected        bool              `json:"margin_protected"`
	AppliedRules           []RuleApplication `json:"applied_rules"`
}

var oneHundred = decimal.NewFromInt(100)

// round2 rounds monetary values to 2 decimal places, half up. Applied once at
// the end of each stage so rounding error does not accumulate across stages.
func round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}
