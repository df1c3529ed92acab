package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is the invoiced party. Referenced by documents, never owned by them.
// SIREN/SIRET are validated on write and again when the client enters a new
// document.
type Client struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	ContactPerson  string         `gorm:"type:varchar(255)" json:"contact_person"`
	Email          string         `gorm:"type:varchar(255)" json:"email"`
	Phone          string         `gorm:"type:varchar(50)" json:"phone"`
	BillingAddress string         `gorm:"type:text" json:"billing_address"`
	SIREN          string         `gorm:"type:varchar(9);index" json:"siren"`
	SIRET          string         `gorm:"type:varchar(14)" json:"siret"`
	VATNumber      string         `gorm:"type:varchar(20)" json:"vat_number"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// Company is the issuing entity owning numbering scopes and calculation policy.
type Company struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                string    `gorm:"type:varchar(255);not null" json:"name"`
	SIREN               string    `gorm:"type:varchar(9)" json:"siren"`
	QuotePrefix         string    `gorm:"type:varchar(10);not null;default:'QUO'" json:"quote_prefix"`
	InvoicePrefix       string    `gorm:"type:varchar(10);not null;default:'INV'" json:"invoice_prefix"`
	DefaultCurrency     string    `gorm:"type:varchar(3);not null;default:'EUR'" json:"default_currency"`
	ShippingTaxed       bool      `gorm:"default:false" json:"shipping_taxed"`
	AllowNegativePrices bool      `gorm:"default:false" json:"allow_negative_prices"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NumberingPrefix returns the configured prefix for a document type.
func (c Company) NumberingPrefix(t DocumentType) string {
	if t == DocTypeQuote {
		return c.QuotePrefix
	}
	return c.InvoicePrefix
}
