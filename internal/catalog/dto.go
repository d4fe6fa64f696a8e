package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medvanta/medsupply-backend/internal/pricing"
	"github.com/medvanta/medsupply-backend/pkg/db/models"
	"github.com/medvanta/medsupply-backend/pkg/enums"
)

// ProductPage wraps a paginated product listing plus the next page cursor.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// PriceListPage wraps a paginated price list listing plus the next cursor.
type PriceListPage struct {
	PriceLists []models.PriceList `json:"price_lists"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// CreateProductInput captures the fields accepted when creating a product.
type CreateProductInput struct {
	SKU                  string
	Name                 string
	Description          *string
	UnitOfMeasure        string
	BasePrice            decimal.Decimal
	CostBasis            *decimal.Decimal
	MinimumMarginPercent *decimal.Decimal
	Tags                 []string
	Tiers                []TierInput
}

// UpdateProductInput carries the optional fields of a product update. A
// non-nil Tiers replaces the entire tier set.
type UpdateProductInput struct {
	Name                 *string
	Description          *string
	UnitOfMeasure        *string
	BasePrice            *decimal.Decimal
	CostBasis            *decimal.Decimal
	MinimumMarginPercent *decimal.Decimal
	Tags                 *[]string
	IsActive             *bool
	Tiers                *[]TierInput
}

// TierInput is one volume tier band supplied by an admin.
type TierInput struct {
	MinQuantity     int
	MaxQuantity     *int
	UnitPrice       *decimal.Decimal
	PercentDiscount *decimal.Decimal
}

// CreatePriceListInput captures the fields accepted when creating a price list.
type CreatePriceListInput struct {
	Name        string
	Description *string
	Priority    int
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	Tags        []string
}

// UpdatePriceListInput carries the optional fields of a price list update.
type UpdatePriceListInput struct {
	Name        *string
	Description *string
	Priority    *int
	IsActive    *bool
	ValidFrom   *time.Time
	ValidUntil  *time.Time
}

// PriceListItemInput captures one product override supplied by an admin. At
// most one pricing field may be set.
type PriceListItemInput struct {
	ProductID            uuid.UUID
	FixedPrice           *decimal.Decimal
	PercentDiscount      *decimal.Decimal
	FixedDiscount        *decimal.Decimal
	MinimumMarginPercent *decimal.Decimal
}

// toPricingProduct flattens a catalog product row into the shape the
// waterfall consumes.
func toPricingProduct(product *models.Product) *pricing.ProductPricing {
	tiers := make([]pricing.VolumeTier, 0, len(product.VolumeTiers))
	for _, tier := range product.VolumeTiers {
		mapped, ok := toPricingTier(tier)
		if !ok {
			continue
		}
		tiers = append(tiers, mapped)
	}
	return &pricing.ProductPricing{
		ProductID:            product.ID,
		BasePrice:            product.BasePrice,
		CostBasis:            product.CostBasis,
		MinimumMarginPercent: product.MinimumMarginPercent,
		Tiers:                tiers,
	}
}

// toPricingTier maps a tier row; rows with neither pricing column set are
// dropped. Unit price wins when both columns survived a write.
func toPricingTier(tier models.VolumeTier) (pricing.VolumeTier, bool) {
	mapped := pricing.VolumeTier{
		ID:          tier.ID,
		MinQuantity: tier.MinQuantity,
		MaxQuantity: tier.MaxQuantity,
	}
	switch {
	case tier.UnitPrice != nil:
		mapped.Kind = enums.TierPricingUnitPrice
		mapped.Value = *tier.UnitPrice
	case tier.PercentDiscount != nil:
		mapped.Kind = enums.TierPricingPercentDiscount
		mapped.Value = *tier.PercentDiscount
	default:
		return pricing.VolumeTier{}, false
	}
	return mapped, true
}

// toPricingItem maps a price list item row plus its parent list.
func toPricingItem(item models.PriceListItem) pricing.PriceListItem {
	return pricing.PriceListItem{
		ID:                   item.ID,
		PriceListID:          item.PriceListID,
		ProductID:            item.ProductID,
		Method:               pricing.PricingMethodFromColumns(item.FixedPrice, item.PercentDiscount, item.FixedDiscount),
		MinimumMarginPercent: item.MinimumMarginPercent,
		List: pricing.PriceList{
			ID:         item.List.ID,
			Name:       item.List.Name,
			Priority:   item.List.Priority,
			IsActive:   item.List.IsActive,
			ValidFrom:  item.List.ValidFrom,
			ValidUntil: item.List.ValidUntil,
		},
	}
}
