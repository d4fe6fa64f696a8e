package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medvanta/medsupply-backend/internal/pricing"
	"github.com/medvanta/medsupply-backend/pkg/db"
	"github.com/medvanta/medsupply-backend/pkg/db/models"
	pkgerrors "github.com/medvanta/medsupply-backend/pkg/errors"
	"github.com/medvanta/medsupply-backend/pkg/pagination"
)

// Service exposes catalog reads for the pricing waterfall plus the admin
// operations that maintain products, price lists, and assignments.
type Service interface {
	GetProductPricing(ctx context.Context, productID uuid.UUID) (*pricing.ProductPricing, error)
	ListContractCandidates(ctx context.Context, customerID, productID uuid.UUID) ([]pricing.PriceListItem, error)

	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*models.Product, error)
	ListProducts(ctx context.Context, params pagination.Params) (*ProductPage, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)

	CreatePriceList(ctx context.Context, input CreatePriceListInput) (*models.PriceList, error)
	GetPriceList(ctx context.Context, id uuid.UUID) (*models.PriceList, error)
	ListPriceLists(ctx context.Context, params pagination.Params) (*PriceListPage, error)
	UpdatePriceList(ctx context.Context, id uuid.UUID, input UpdatePriceListInput) (*models.PriceList, error)
	UpsertPriceListItem(ctx context.Context, priceListID uuid.UUID, input PriceListItemInput) (*models.PriceListItem, error)
	RemovePriceListItem(ctx context.Context, priceListID, productID uuid.UUID) error
	AssignCustomer(ctx context.Context, priceListID, customerID uuid.UUID) error
	UnassignCustomer(ctx context.Context, priceListID, customerID uuid.UUID) error
}

type service struct {
	repo Repository
}

var oneHundred = decimal.NewFromInt(100)

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProductPricing(ctx context.Context, productID uuid.UUID) (*pricing.ProductPricing, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return toPricingProduct(product), nil
}

func (s *service) ListContractCandidates(ctx context.Context, customerID, productID uuid.UUID) ([]pricing.PriceListItem, error) {
	if customerID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id and product id required")
	}
	rows, err := s.repo.ListContractItems(ctx, customerID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract items")
	}
	candidates := make([]pricing.PriceListItem, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, toPricingItem(row))
	}
	return candidates, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}
	if input.CostBasis != nil && input.CostBasis.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost basis cannot be negative")
	}
	if err := validateTierInputs(input.Tiers); err != nil {
		return nil, err
	}

	unit := strings.TrimSpace(input.UnitOfMeasure)
	if unit == "" {
		unit = "each"
	}
	product := &models.Product{
		SKU:                  sku,
		Name:                 strings.TrimSpace(input.Name),
		Description:          input.Description,
		UnitOfMeasure:        unit,
		BasePrice:            input.BasePrice,
		CostBasis:            input.CostBasis,
		MinimumMarginPercent: input.MinimumMarginPercent,
		Tags:                 pq.StringArray(input.Tags),
		IsActive:             true,
	}
	for _, tier := range input.Tiers {
		product.VolumeTiers = append(product.VolumeTiers, models.VolumeTier{
			MinQuantity:     tier.MinQuantity,
			MaxQuantity:     tier.MaxQuantity,
			UnitPrice:       tier.UnitPrice,
			PercentDiscount: tier.PercentDiscount,
		})
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func validateTierInputs(tiers []TierInput) error {
	for _, tier := range tiers {
		if tier.MinQuantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier min quantity must be at least 1")
		}
		if tier.MaxQuantity != nil && *tier.MaxQuantity < tier.MinQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier max quantity cannot precede min quantity")
		}
		if tier.UnitPrice == nil && tier.PercentDiscount == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier requires a unit price or percent discount")
		}
	}
	return nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.UnitOfMeasure != nil {
		unit := strings.TrimSpace(*input.UnitOfMeasure)
		if unit == "" {
			unit = "each"
		}
		updates["unit_of_measure"] = unit
	}
	if input.BasePrice != nil {
		if input.BasePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
		}
		updates["base_price"] = *input.BasePrice
	}
	if input.CostBasis != nil {
		if input.CostBasis.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost basis cannot be negative")
		}
		updates["cost_basis"] = *input.CostBasis
	}
	if input.MinimumMarginPercent != nil {
		updates["minimum_margin_percent"] = *input.MinimumMarginPercent
	}
	if input.Tags != nil {
		updates["tags"] = pq.StringArray(*input.Tags)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Tiers != nil {
		if err := validateTierInputs(*input.Tiers); err != nil {
			return nil, err
		}
	}

	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(txRepo Repository) error {
		if err := txRepo.UpdateProduct(ctx, id, updates); err != nil {
			return err
		}
		if input.Tiers == nil {
			return nil
		}
		tiers := make([]models.VolumeTier, 0, len(*input.Tiers))
		for _, tier := range *input.Tiers {
			tiers = append(tiers, models.VolumeTier{
				ProductID:       id,
				MinQuantity:     tier.MinQuantity,
				MaxQuantity:     tier.MaxQuantity,
				UnitPrice:       tier.UnitPrice,
				PercentDiscount: tier.PercentDiscount,
			})
		}
		return txRepo.ReplaceVolumeTiers(ctx, id, tiers)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.GetProduct(ctx, id)
}

func (s *service) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	product, err := s.repo.FindProductBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params) (*ProductPage, error) {
	page, err := s.repo.ListProducts(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return page, nil
}

func (s *service) CreatePriceList(ctx context.Context, input CreatePriceListInput) (*models.PriceList, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_until cannot precede valid_from")
	}
	priority := input.Priority
	if priority == 0 {
		priority = 100
	}

	list := &models.PriceList{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Priority:    priority,
		IsActive:    true,
		ValidFrom:   input.ValidFrom,
		ValidUntil:  input.ValidUntil,
		Tags:        pq.StringArray(input.Tags),
	}
	created, err := s.repo.CreatePriceList(ctx, list)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create price list")
	}
	return created, nil
}

func (s *service) GetPriceList(ctx context.Context, id uuid.UUID) (*models.PriceList, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price list id required")
	}
	list, err := s.repo.FindPriceListByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "price list not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price list")
	}
	return list, nil
}

func (s *service) ListPriceLists(ctx context.Context, params pagination.Params) (*PriceListPage, error) {
	page, err := s.repo.ListPriceLists(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list price lists")
	}
	return page, nil
}

func (s *service) UpdatePriceList(ctx context.Context, id uuid.UUID, input UpdatePriceListInput) (*models.PriceList, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price list id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ValidFrom != nil {
		updates["valid_from"] = *input.ValidFrom
	}
	if input.ValidUntil != nil {
		updates["valid_until"] = *input.ValidUntil
	}

	if _, err := s.GetPriceList(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePriceList(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update price list")
	}
	return s.GetPriceList(ctx, id)
}

func (s *service) UpsertPriceListItem(ctx context.Context, priceListID uuid.UUID, input PriceListItemInput) (*models.PriceListItem, error) {
	if priceListID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price list id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if countPricingFields(input) > 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at most one pricing method may be set")
	}
	if input.FixedPrice != nil && input.FixedPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fixed price cannot be negative")
	}
	if input.FixedDiscount != nil && input.FixedDiscount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fixed discount cannot be negative")
	}
	if input.PercentDiscount != nil && (input.PercentDiscount.IsNegative() || input.PercentDiscount.GreaterThan(oneHundred)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent discount must be between 0 and 100")
	}

	if _, err := s.GetPriceList(ctx, priceListID); err != nil {
		return nil, err
	}
	if _, err := s.GetProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	item := &models.PriceListItem{
		PriceListID:          priceListID,
		ProductID:            input.ProductID,
		FixedPrice:           input.FixedPrice,
		PercentDiscount:      input.PercentDiscount,
		FixedDiscount:        input.FixedDiscount,
		MinimumMarginPercent: input.MinimumMarginPercent,
	}
	saved, err := s.repo.UpsertPriceListItem(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert price list item")
	}
	return saved, nil
}

func (s *service) RemovePriceListItem(ctx context.Context, priceListID, productID uuid.UUID) error {
	if priceListID == uuid.Nil || productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "price list id and product id required")
	}
	if err := s.repo.DeletePriceListItem(ctx, priceListID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete price list item")
	}
	return nil
}

func (s *service) AssignCustomer(ctx context.Context, priceListID, customerID uuid.UUID) error {
	if priceListID == uuid.Nil || customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "price list id and customer id required")
	}
	if _, err := s.GetPriceList(ctx, priceListID); err != nil {
		return err
	}
	if _, err := s.repo.FindCustomerByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	assignment := &models.PriceListAssignment{PriceListID: priceListID, CustomerID: customerID}
	if err := s.repo.AssignCustomer(ctx, assignment); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign customer")
	}
	return nil
}

func (s *service) UnassignCustomer(ctx context.Context, priceListID, customerID uuid.UUID) error {
	if priceListID == uuid.Nil || customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "price list id and customer id required")
	}
	if err := s.repo.UnassignCustomer(ctx, priceListID, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unassign customer")
	}
	return nil
}

func countPricingFields(input PriceListItemInput) int {
	count := 0
	if input.FixedPrice != nil {
		count++
	}
	if input.PercentDiscount != nil {
		count++
	}
	if input.FixedDiscount != nil {
		count++
	}
	return count
}
