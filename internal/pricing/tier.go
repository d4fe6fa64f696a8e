package pricing

// ResolveTier selects the volume tier that applies to the quantity, or nil
// when the quantity is below every tier's minimum or the table is empty.
//
// Among matching tiers the highest MinQuantity wins. Tier ranges should not
// overlap, but when they do this tie-break keeps resolution deterministic by
// preferring the most specific tier the quantity still qualifies for.
func ResolveTier(tiers []VolumeTier, quantity int) *VolumeTier {
	var selected *VolumeTier
	for i := range tiers {
		tier := &tiers[i]
		if !tier.Matches(quantity) {
			continue
		}
		if selected == nil || tier.MinQuantity > selected.MinQuantity {
			selected = tier
		}
	}
	return selected
}
