package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medvanta/medsupply-backend/pkg/enums"
)

// Product represents one catalog SKU with its list price and cost basis.
type Product struct {
	ID                   uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU                  string           `gorm:"column:sku;not null;uniqueIndex"`
	Name                 string           `gorm:"column:name;not null"`
	Description          *string          `gorm:"column:description"`
	UnitOfMeasure        string           `gorm:"column:unit_of_measure;not null;default:'each'"`
	Currency             enums.Currency   `gorm:"column:currency;not null;default:'USD'"`
	BasePrice            decimal.Decimal  `gorm:"column:base_price;type:numeric(12,2);not null"`
	CostBasis            *decimal.Decimal `gorm:"column:cost_basis;type:numeric(12,2)"`
	MinimumMarginPercent *decimal.Decimal `gorm:"column:minimum_margin_percent;type:numeric(5,2)"`
	Tags                 pq.StringArray   `gorm:"column:tags;type:text[];not null;default:'{}'"`
	IsActive             bool             `gorm:"column:is_active;not null;default:true"`
	VolumeTiers          []VolumeTier     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when the driver has no uuid default.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
