package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medvanta/medsupply-backend/pkg/db/models"
	"github.com/medvanta/medsupply-backend/pkg/pagination"
)

// Repository defines persistence operations for the pricing audit trail.
type Repository interface {
	Create(ctx context.Context, entry *models.PricingAudit) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters Filters) (*Page, error)
}

// Filters narrow an audit trail listing.
type Filters struct {
	ProductID       *uuid.UUID
	MarginProtected *bool
}

// Page wraps a paginated audit listing plus the next page cursor.
type Page struct {
	Entries    []models.PricingAudit `json:"entries"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *models.PricingAudit) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters Filters) (*Page, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.PricingAudit{}).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)
	if filters.ProductID != nil {
		query = query.Where("product_id = ?", *filters.ProductID)
	}
	if filters.MarginProtected != nil {
		query = query.Where("margin_protected = ?", *filters.MarginProtected)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var entries []models.PricingAudit
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	page := &Page{Entries: entries}
	if len(entries) > limit {
		last := entries[limit-1]
		page.Entries = entries[:limit]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}
