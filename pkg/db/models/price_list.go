package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/medvanta/medsupply-backend/pkg/enums"
)

// PriceList is a negotiated contract price list. Lower priority outranks
// higher when a customer is assigned to several overlapping lists.
type PriceList struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	Priority    int             `gorm:"column:priority;not null;default:100"`
	Currency    enums.Currency  `gorm:"column:currency;not null;default:'USD'"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	ValidFrom   *time.Time      `gorm:"column:valid_from"`
	ValidUntil  *time.Time      `gorm:"column:valid_until"`
	Tags        pq.StringArray  `gorm:"column:tags;type:text[];not null;default:'{}'"`
	Items       []PriceListItem `gorm:"foreignKey:PriceListID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when the driver has no uuid default.
func (l *PriceList) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
