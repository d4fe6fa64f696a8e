package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvanta/medsupply-backend/pkg/db/models"
	"github.com/medvanta/medsupply-backend/pkg/enums"
	pkgerrors "github.com/medvanta/medsupply-backend/pkg/errors"
)

func newTestCatalogService(t *testing.T) (Service, Repository) {
	t.Helper()
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestServiceCreateProductWithTiers(t *testing.T) {
	svc, _ := newTestCatalogService(t)

	price := decimal.NewFromInt(90)
	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:       "GLV-100",
		Name:      "Nitrile Gloves",
		BasePrice: decimal.NewFromInt(100),
		Tiers: []TierInput{
			{MinQuantity: 10, UnitPrice: &price},
		},
	})
	require.NoError(t, err)

	pricingView, err := svc.GetProductPricing(context.Background(), product.ID)
	require.NoError(t, err)
	assert.True(t, pricingView.BasePrice.Equal(decimal.NewFromInt(100)))
	require.Len(t, pricingView.Tiers, 1)
	assert.Equal(t, enums.TierPricingUnitPrice, pricingView.Tiers[0].Kind)
	assert.True(t, pricingView.Tiers[0].Value.Equal(price))
}

func TestServiceUpdateProductReplacesTiers(t *testing.T) {
	svc, _ := newTestCatalogService(t)

	oldPrice := decimal.NewFromInt(90)
	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:       "GWN-200",
		Name:      "Isolation Gowns",
		BasePrice: decimal.NewFromInt(50),
		Tiers:     []TierInput{{MinQuantity: 10, UnitPrice: &oldPrice}},
	})
	require.NoError(t, err)

	newBase := decimal.NewFromInt(55)
	newDiscount := decimal.NewFromInt(5)
	updated, err := svc.UpdateProduct(context.Background(), product.ID, UpdateProductInput{
		BasePrice: &newBase,
		Tiers: &[]TierInput{
			{MinQuantity: 25, PercentDiscount: &newDiscount},
		},
	})
	require.NoError(t, err)
	assert.True(t, updated.BasePrice.Equal(newBase))
	require.Len(t, updated.VolumeTiers, 1)
	assert.Equal(t, 25, updated.VolumeTiers[0].MinQuantity)
	require.NotNil(t, updated.VolumeTiers[0].PercentDiscount)
	assert.True(t, updated.VolumeTiers[0].PercentDiscount.Equal(newDiscount))
	assert.Nil(t, updated.VolumeTiers[0].UnitPrice)
}

func TestServiceUpdateProductRejectsBadTier(t *testing.T) {
	svc, _ := newTestCatalogService(t)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:       "GWN-201",
		Name:      "Gowns",
		BasePrice: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(context.Background(), product.ID, UpdateProductInput{
		Tiers: &[]TierInput{{MinQuantity: 10}},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestServiceGetProductBySKU(t *testing.T) {
	svc, _ := newTestCatalogService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:       "MSK-300",
		Name:      "N95 Masks",
		BasePrice: decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	product, err := svc.GetProductBySKU(context.Background(), "  MSK-300 ")
	require.NoError(t, err)
	assert.Equal(t, "MSK-300", product.SKU)

	_, err = svc.GetProductBySKU(context.Background(), "MSK-999")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceCreateProductRejectsBadTier(t *testing.T) {
	svc, _ := newTestCatalogService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:       "GLV-101",
		Name:      "Gloves",
		BasePrice: decimal.NewFromInt(100),
		Tiers:     []TierInput{{MinQuantity: 10}},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestServiceGetProductPricingHidesInactive(t *testing.T) {
	svc, repo := newTestCatalogService(t)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:       "GLV-102",
		Name:      "Gloves",
		BasePrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateProduct(context.Background(), product.ID, map[string]any{"is_active": false}))

	_, err = svc.GetProductPricing(context.Background(), product.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceUpsertItemRejectsMultipleMethods(t *testing.T) {
	svc, _ := newTestCatalogService(t)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:       "GLV-103",
		Name:      "Gloves",
		BasePrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	list, err := svc.CreatePriceList(context.Background(), CreatePriceListInput{Name: "Contract"})
	require.NoError(t, err)

	fixed := decimal.NewFromInt(85)
	discount := decimal.NewFromInt(10)
	_, err = svc.UpsertPriceListItem(context.Background(), list.ID, PriceListItemInput{
		ProductID:       product.ID,
		FixedPrice:      &fixed,
		PercentDiscount: &discount,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestServiceContractCandidateCarriesListWindow(t *testing.T) {
	svc, repo := newTestCatalogService(t)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		SKU:       "GLV-104",
		Name:      "Gloves",
		BasePrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	list, err := svc.CreatePriceList(context.Background(), CreatePriceListInput{
		Name:       "Annual Contract",
		Priority:   5,
		ValidFrom:  &from,
		ValidUntil: &until,
	})
	require.NoError(t, err)

	fixed := decimal.NewFromInt(85)
	_, err = svc.UpsertPriceListItem(context.Background(), list.ID, PriceListItemInput{
		ProductID:  product.ID,
		FixedPrice: &fixed,
	})
	require.NoError(t, err)

	customerID := uuid.New()
	require.NoError(t, repo.AssignCustomer(context.Background(), &models.PriceListAssignment{
		ID:          uuid.New(),
		PriceListID: list.ID,
		CustomerID:  customerID,
	}))

	candidates, err := svc.ListContractCandidates(context.Background(), customerID, product.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, enums.PricingMethodFixedPrice, candidates[0].Method.Kind)
	assert.Equal(t, 5, candidates[0].List.Priority)
	require.NotNil(t, candidates[0].List.ValidFrom)
	assert.True(t, candidates[0].List.ValidFrom.Equal(from))
}
