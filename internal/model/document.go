package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LineType enum constants
const (
	LineTypeProduct = "PRODUCT"
	LineTypeService = "SERVICE"
	LineTypeText    = "TEXT"
	LineTypeSection = "SECTION"
)

// DiscountType enum constants (document- and line-level)
const (
	DiscountTypePercent = "PERCENT"
	DiscountTypeAmount  = "AMOUNT"
)

// Document is a quote or an invoice. The aggregated totals are always the
// deterministic output of the calculator over the current lines; no code path
// writes them independently of a recomputation.
type Document struct {
	ID             uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type           DocumentType `gorm:"type:varchar(10);not null;uniqueIndex:idx_documents_number_scope" json:"type"`
	CompanyID      uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_documents_number_scope" json:"company_id"`
	ClientID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"client_id"`
	Client         *Client      `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	// DocumentNumber embeds the period, so (company, type, number) covers the
	// company+type+year uniqueness scope. Immutable once set.
	DocumentNumber string `gorm:"type:varchar(30);not null;uniqueIndex:idx_documents_number_scope" json:"document_number"`

	IssueDate time.Time `gorm:"type:date;not null" json:"issue_date"`
	// DueDate is the payment due date for invoices and the validity expiry for quotes.
	DueDate time.Time `gorm:"type:date;not null" json:"due_date"`

	CurrencyCode  string          `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency_code"`
	ExchangeRate  decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1" json:"exchange_rate"`
	DiscountType  *string         `gorm:"type:varchar(10)" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount_value"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"shipping_amount"`

	SubtotalNet decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal_net"`
	TotalTax    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_tax"`
	TotalGross  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_gross"`

	Status DocumentStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	// Version is the optimistic concurrency token; bumped on every mutation.
	Version int `gorm:"not null;default:1" json:"version"`

	// ConvertedInvoiceID links an accepted quote to the invoice produced from
	// it. Set exactly once, on conversion.
	ConvertedInvoiceID *uuid.UUID `gorm:"type:uuid" json:"converted_invoice_id,omitempty"`
	// SourceQuoteID is the back-reference carried by a converted invoice.
	SourceQuoteID *uuid.UUID `gorm:"type:uuid;index" json:"source_quote_id,omitempty"`

	Lines    []LineItem      `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"lines"`
	History  []StatusHistory `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"history,omitempty"`
	Payments []Payment       `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// LineItem is one priced row of a document. Subtotal, TaxAmount and Total are
// derived by the calculator and rewritten on every document update.
type LineItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"document_id"`
	LineType      string          `gorm:"type:varchar(10);not null" json:"line_type"` // PRODUCT, SERVICE, TEXT, SECTION
	CatalogItemID *uuid.UUID      `gorm:"type:uuid;index" json:"catalog_item_id"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,5);not null;default:0" json:"unit_price"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"tax_rate"` // percentage
	DiscountType  *string         `gorm:"type:varchar(10)" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount_value"`
	Position      int             `gorm:"not null;default:0" json:"position"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	Total     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsMonetary reports whether the line carries amounts. Text and section lines
// exist only for layout.
func (l LineItem) IsMonetary() bool {
	return l.LineType == LineTypeProduct || l.LineType == LineTypeService
}

// StatusHistory is an immutable record of one lifecycle transition. Exactly
// one row is appended per successful transition, in the same transaction as
// the status write.
type StatusHistory struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"document_id"`
	OldStatus  DocumentStatus `gorm:"type:varchar(20);not null" json:"old_status"`
	NewStatus  DocumentStatus `gorm:"type:varchar(20);not null" json:"new_status"`
	Reason     string         `gorm:"type:text" json:"reason"`
	ActorID    *uuid.UUID     `gorm:"type:uuid" json:"actor_id"` // nil for system transitions
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

// Payment records money received against an invoice.
type Payment struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DocumentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"document_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Method     string          `gorm:"type:varchar(30)" json:"method"` // bank-transfer, card, cash, cheque
	Reference  string          `gorm:"type:varchar(100)" json:"reference"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
	CreatedAt  time.Time       `json:"created_at"`
}
