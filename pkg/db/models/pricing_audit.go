package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingAudit records one finished pricing calculation, rule trail included.
type PricingAudit struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Quantity        int             `gorm:"column:quantity;not null"`
	BasePrice       decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null"`
	FinalPrice      decimal.Decimal `gorm:"column:final_price;type:numeric(12,2);not null"`
	MarginProtected bool            `gorm:"column:margin_protected;not null;default:false"`
	AppliedRules    json.RawMessage `gorm:"column:applied_rules;type:jsonb;not null"`
	PriceDate       time.Time       `gorm:"column:price_date;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns an id when the driver has no uuid default.
func (a *PricingAudit) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
