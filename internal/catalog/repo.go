package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medvanta/medsupply-backend/pkg/db/models"
	"github.com/medvanta/medsupply-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Transaction runs fn against a transaction-bound copy of the repository.
func (r *repository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("VolumeTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_quantity ASC")
		}).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("VolumeTiers").
		Where("sku = ?", sku).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context, params pagination.Params) (*ProductPage, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}

	page := &ProductPage{Products: products}
	if len(products) > limit {
		last := products[limit-1]
		page.Products = products[:limit]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ReplaceVolumeTiers(ctx context.Context, productID uuid.UUID, tiers []models.VolumeTier) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("product_id = ?", productID).Delete(&models.VolumeTier{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	return db.Create(&tiers).Error
}

func (r *repository) CreatePriceList(ctx context.Context, list *models.PriceList) (*models.PriceList, error) {
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) FindPriceListByID(ctx context.Context, id uuid.UUID) (*models.PriceList, error) {
	var list models.PriceList
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *repository) ListPriceLists(ctx context.Context, params pagination.Params) (*PriceListPage, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.PriceList{}).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var lists []models.PriceList
	if err := query.Find(&lists).Error; err != nil {
		return nil, err
	}

	page := &PriceListPage{PriceLists: lists}
	if len(lists) > limit {
		last := lists[limit-1]
		page.PriceLists = lists[:limit]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (r *repository) UpdatePriceList(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.PriceList{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpsertPriceListItem(ctx context.Context, item *models.PriceListItem) (*models.PriceListItem, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "price_list_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"fixed_price", "percent_discount", "fixed_discount", "minimum_margin_percent", "updated_at",
			}),
		}).
		Create(item).Error
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) DeletePriceListItem(ctx context.Context, priceListID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("price_list_id = ? AND product_id = ?", priceListID, productID).
		Delete(&models.PriceListItem{}).Error
}

func (r *repository) FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) AssignCustomer(ctx context.Context, assignment *models.PriceListAssignment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "price_list_id"}, {Name: "customer_id"}},
			DoNothing: true,
		}).
		Create(assignment).Error
}

func (r *repository) UnassignCustomer(ctx context.Context, priceListID, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("price_list_id = ? AND customer_id = ?", priceListID, customerID).
		Delete(&models.PriceListAssignment{}).Error
}

func (r *repository) ListContractItems(ctx context.Context, customerID, productID uuid.UUID) ([]models.PriceListItem, error) {
	var items []models.PriceListItem
	err := r.db.WithContext(ctx).
		Preload("List").
		Joins("JOIN price_list_assignments ON price_list_assignments.price_list_id = price_list_items.price_list_id").
		Where("price_list_assignments.customer_id = ? AND price_list_items.product_id = ?", customerID, productID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
