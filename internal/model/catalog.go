package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogItem is a sellable product or service that document lines can
// reference for default pricing.
type CatalogItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU         string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	ItemType    string          `gorm:"type:varchar(10);not null" json:"item_type"` // PRODUCT, SERVICE
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,5);not null" json:"unit_price"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"tax_rate"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
