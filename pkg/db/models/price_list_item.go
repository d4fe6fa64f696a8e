package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceListItem overrides one product's price inside a price list. At most
// one of the pricing columns should be set; when several are, fixed price
// wins over percent discount, which wins over fixed discount.
type PriceListItem struct {
	ID                   uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PriceListID          uuid.UUID        `gorm:"column:price_list_id;type:uuid;not null;uniqueIndex:idx_price_list_items_list_product"`
	ProductID            uuid.UUID        `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_price_list_items_list_product"`
	FixedPrice           *decimal.Decimal `gorm:"column:fixed_price;type:numeric(12,2)"`
	PercentDiscount      *decimal.Decimal `gorm:"column:percent_discount;type:numeric(5,2)"`
	FixedDiscount        *decimal.Decimal `gorm:"column:fixed_discount;type:numeric(12,2)"`
	MinimumMarginPercent *decimal.Decimal `gorm:"column:minimum_margin_percent;type:numeric(5,2)"`
	List                 PriceList        `gorm:"foreignKey:PriceListID"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when the driver has no uuid default.
func (i *PriceListItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
