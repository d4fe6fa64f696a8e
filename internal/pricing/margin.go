package pricing

import "github.com/shopspring/decimal"

// MarginOutcome reports the margin guard decision for a candidate price.
type MarginOutcome struct {
	Price     decimal.Decimal
	Protected bool
}

// EnforceMargin raises the candidate price to the floor that satisfies the
// minimum margin when the candidate falls short. Margin is measured against
// the selling price: (price - cost) / price. The floor that exactly meets the
// minimum is cost / (1 - min/100).
//
// The guard is a no-op when the cost basis or the minimum is unknown (margin
// cannot be protected without a cost), and when the minimum is at or above
// 100 percent, which has no finite floor and is treated as a configuration
// error rather than a reason to fail the calculation.
func EnforceMargin(candidate decimal.Decimal, costBasis, minimumMarginPercent *decimal.Decimal) MarginOutcome {
	noop := MarginOutcome{Price: candidate}
	if costBasis == nil || minimumMarginPercent == nil {
		return noop
	}
	min := *minimumMarginPercent
	if min.IsNegative() || min.GreaterThanOrEqual(oneHundred) {
		return noop
	}

	// candidate < floor is equivalent to the margin test and sidesteps the
	// division by zero a literal (price-cost)/price check hits at price 0.
	floor := round2(costBasis.Div(decimal.NewFromInt(1).Sub(min.Div(oneHundred))))
	if candidate.GreaterThanOrEqual(floor) {
		return noop
	}
	return MarginOutcome{Price: floor, Protected: true}
}

// EffectiveMarginPercent computes (price - cost) / price * 100 rounded to two
// decimals, or nil when the cost is unknown or the price is zero.
func EffectiveMarginPercent(price decimal.Decimal, costBasis *decimal.Decimal) *decimal.Decimal {
	if costBasis == nil || price.IsZero() {
		return nil
	}
	margin := price.Sub(*costBasis).Div(price).Mul(oneHundred).Round(2)
	return &margin
}
