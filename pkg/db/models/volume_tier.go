package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VolumeTier captures one quantity band of a product's tiered pricing.
// Exactly one of UnitPrice or PercentDiscount is set; when both survive a
// write, unit price wins at read time.
type VolumeTier struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID       uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	MinQuantity     int              `gorm:"column:min_quantity;not null"`
	MaxQuantity     *int             `gorm:"column:max_quantity"`
	UnitPrice       *decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	PercentDiscount *decimal.Decimal `gorm:"column:percent_discount;type:numeric(5,2)"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns an id when the driver has no uuid default.
func (t *VolumeTier) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
