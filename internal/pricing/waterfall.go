package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medvanta/medsupply-backend/pkg/enums"
	pkgerrors "github.com/medvanta/medsupply-backend/pkg/errors"
)

// Waterfall stage numbers. Rule applications carry these as their order so a
// trail reader can tell which stage produced each adjustment even when a stage
// was skipped.
const (
	stageBasePrice        = 1
	stageContractPrice    = 2
	stageVolumeTier       = 3
	stageMarginProtection = 4
)

// CalculateInput carries everything one waterfall run needs. All fields are
// values supplied by the caller; the engine holds no state between runs.
type CalculateInput struct {
	ProductID            uuid.UUID
	BasePrice            decimal.Decimal
	Quantity             int
	PriceDate            time.Time
	CostBasis            *decimal.Decimal
	MinimumMarginPercent *decimal.Decimal
	ContractCandidates   []PriceListItem
	Tiers                []VolumeTier
}

// CalculatePrice runs the fixed four-stage waterfall: base price, contract
// price, volume tier, margin protection. Missing contract prices, tiers, or
// cost basis degrade each stage to a no-op; only invalid input shape is an
// error. Monetary outputs are rounded to two decimals once per stage.
func CalculatePrice(in CalculateInput) (*Result, error) {
	if in.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if in.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}
	if in.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	priceDate := in.PriceDate
	if priceDate.IsZero() {
		priceDate = time.Now().UTC()
	}

	basePrice := round2(in.BasePrice)
	current := basePrice
	trail := []RuleApplication{{
		Order:       stageBasePrice,
		RuleType:    enums.PricingRuleBasePrice,
		RuleName:    "Base price",
		PriceBefore: decimal.Zero,
		PriceAfter:  basePrice,
		Adjustment:  basePrice,
		Explanation: fmt.Sprintf("List price %s", basePrice.StringFixed(2)),
	}}

	minimumMargin := in.MinimumMarginPercent

	if item := ResolveContractPrice(in.ContractCandidates, priceDate); item != nil {
		if candidate, ok := item.Method.Apply(current); ok {
			candidate = round2(candidate)
			if !candidate.Equal(current) {
				trail = append(trail, RuleApplication{
					Order:       stageContractPrice,
					RuleType:    enums.PricingRuleContractPrice,
					RuleName:    item.List.Name,
					PriceBefore: current,
					PriceAfter:  candidate,
					Adjustment:  candidate.Sub(current),
					Explanation: fmt.Sprintf("Contract %q applied %s", item.List.Name, item.Method.Describe()),
				})
				current = candidate
			}
		}
		if item.MinimumMarginPercent != nil {
			minimumMargin = item.MinimumMarginPercent
		}
	}

	if tier := ResolveTier(in.Tiers, in.Quantity); tier != nil {
		// Percent tiers discount the running price, so volume discounts stack
		// on top of the contract price rather than the list price.
		if candidate, ok := tier.Price(current); ok {
			candidate = round2(candidate)
			if !candidate.Equal(current) {
				trail = append(trail, RuleApplication{
					Order:       stageVolumeTier,
					RuleType:    enums.PricingRuleVolumeTier,
					RuleName:    tier.Label(),
					PriceBefore: current,
					PriceAfter:  candidate,
					Adjustment:  candidate.Sub(current),
					Explanation: fmt.Sprintf("Quantity %d qualifies for %s", in.Quantity, tier.Label()),
				})
				current = candidate
			}
		}
	}

	marginProtected := false
	if outcome := EnforceMargin(current, in.CostBasis, minimumMargin); outcome.Protected {
		trail = append(trail, RuleApplication{
			Order:       stageMarginProtection,
			RuleType:    enums.PricingRuleMarginProtection,
			RuleName:    "Margin protection",
			PriceBefore: current,
			PriceAfter:  outcome.Price,
			Adjustment:  outcome.Price.Sub(current),
			Explanation: fmt.Sprintf("Price raised to meet minimum margin of %s%%", minimumMargin.String()),
		})
		current = outcome.Price
		marginProtected = true
	}

	return &Result{
		ProductID:              in.ProductID,
		BasePrice:              basePrice,
		FinalPrice:             current,
		TotalDiscount:          basePrice.Sub(current),
		EffectiveMarginPercent: EffectiveMarginPercent(current, in.CostBasis),
		MarginProtected:        marginProtected,
		AppliedRules:           trail,
	}, nil
}
