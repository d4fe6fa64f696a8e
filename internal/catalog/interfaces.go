package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medvanta/medsupply-backend/pkg/db/models"
	"github.com/medvanta/medsupply-backend/pkg/pagination"
)

// Repository defines persistence operations for catalog and contract tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductBySKU(ctx context.Context, sku string) (*models.Product, error)
	ListProducts(ctx context.Context, params pagination.Params) (*ProductPage, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ReplaceVolumeTiers(ctx context.Context, productID uuid.UUID, tiers []models.VolumeTier) error

	CreatePriceList(ctx context.Context, list *models.PriceList) (*models.PriceList, error)
	FindPriceListByID(ctx context.Context, id uuid.UUID) (*models.PriceList, error)
	ListPriceLists(ctx context.Context, params pagination.Params) (*PriceListPage, error)
	UpdatePriceList(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpsertPriceListItem(ctx context.Context, item *models.PriceListItem) (*models.PriceListItem, error)
	DeletePriceListItem(ctx context.Context, priceListID, productID uuid.UUID) error

	FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	AssignCustomer(ctx context.Context, assignment *models.PriceListAssignment) error
	UnassignCustomer(ctx context.Context, priceListID, customerID uuid.UUID) error

	ListContractItems(ctx context.Context, customerID, productID uuid.UUID) ([]models.PriceListItem, error)
}
