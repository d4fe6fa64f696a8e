package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriceListAssignment links a customer to a contract price list.
type PriceListAssignment struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PriceListID uuid.UUID `gorm:"column:price_list_id;type:uuid;not null;uniqueIndex:idx_price_list_assignments_list_customer"`
	CustomerID  uuid.UUID `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:idx_price_list_assignments_list_customer"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns an id when the driver has no uuid default.
func (a *PriceListAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
