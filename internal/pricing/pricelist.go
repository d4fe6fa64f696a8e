package pricing

import (
	"time"

	"github.com/medvanta/medsupply-backend/pkg/enums"
)

// ResolveContractPrice selects the contract override to apply for the given
// date. Candidates are the items already filtered to the requesting customer's
// assigned price lists; this resolver only decides which of them wins.
//
// Lists that are not currently valid are dropped, as are items with no pricing
// method set. Among the survivors the lowest priority value wins; priority
// collisions are broken by list id so resolution stays deterministic when the
// data is misconfigured. Returns nil when nothing applies.
func ResolveContractPrice(candidates []PriceListItem, priceDate time.Time) *PriceListItem {
	var winner *PriceListItem
	for i := range candidates {
		item := &candidates[i]
		if !item.List.IsCurrentlyValid(priceDate) {
			continue
		}
		if item.Method.Kind == enums.PricingMethodNone {
			continue
		}
		if winner == nil || outranks(item.List, winner.List) {
			winner = item
		}
	}
	return winner
}

func outranks(a, b PriceList) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.ID.String() < b.ID.String()
}
