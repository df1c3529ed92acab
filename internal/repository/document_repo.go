package repository

import (
	"context"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentListFilter narrows List results.
type DocumentListFilter struct {
	Type     model.DocumentType
	Status   string
	ClientID *uuid.UUID
	Search   string // partial match on document_number
	Page     int
	Limit    int
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	// FindByIDForUpdate locks the document row for the current transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Document, error)
	List(ctx context.Context, filter DocumentListFilter) ([]model.Document, int64, error)
	// UpdateWithVersion writes the document only when its stored version still
	// matches doc.Version, then bumps the version. A stale version surfaces as
	// a concurrency conflict.
	UpdateWithVersion(ctx context.Context, doc *model.Document) error
	ReplaceLines(ctx context.Context, docID uuid.UUID, lines []model.LineItem) error
	AppendHistory(ctx context.Context, entry *model.StatusHistory) error
	ListHistory(ctx context.Context, docID uuid.UUID) ([]model.StatusHistory, error)
	CreatePayment(ctx context.Context, payment *model.Payment) error
	SumPayments(ctx context.Context, docID uuid.UUID) (decimal.Decimal, error)
	CountPayments(ctx context.Context, docID uuid.UUID) (int64, error)
	// ListDueInvoices returns SENT/PARTIAL invoices whose due date elapsed.
	ListDueInvoices(ctx context.Context, asOf time.Time) ([]model.Document, error)
	Delete(ctx context.Context, docID uuid.UUID) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Client").
		First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	// association loads after the row lock is taken
	if err := GetDB(ctx, r.db).Order("position asc").Find(&doc.Lines, "document_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) List(ctx context.Context, filter DocumentListFilter) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("type = ?", filter.Type)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.ClientID != nil {
			q = q.Where("client_id = ?", *filter.ClientID)
		}
		if filter.Search != "" {
			q = q.Where("document_number ILIKE ?", "%"+filter.Search+"%")
		}
		return q
	}

	if err := apply(db.Model(&model.Document{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := apply(db.Preload("Client")).
		Order("created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

func (r *documentRepository) UpdateWithVersion(ctx context.Context, doc *model.Document) error {
	res := GetDB(ctx, r.db).Model(&model.Document{}).
		Where("id = ? AND version = ?", doc.ID, doc.Version).
		Updates(map[string]interface{}{
			"client_id":            doc.ClientID,
			"issue_date":           doc.IssueDate,
			"due_date":             doc.DueDate,
			"currency_code":        doc.CurrencyCode,
			"exchange_rate":        doc.ExchangeRate,
			"discount_type":        doc.DiscountType,
			"discount_value":       doc.DiscountValue,
			"shipping_amount":      doc.ShippingAmount,
			"subtotal_net":         doc.SubtotalNet,
			"total_tax":            doc.TotalTax,
			"total_gross":          doc.TotalGross,
			"status":               doc.Status,
			"converted_invoice_id": doc.ConvertedInvoiceID,
			"version":              doc.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.Conflict("document %s was modified concurrently", doc.ID)
	}
	doc.Version++
	return nil
}

func (r *documentRepository) ReplaceLines(ctx context.Context, docID uuid.UUID, lines []model.LineItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("document_id = ?", docID).Delete(&model.LineItem{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].DocumentID = docID
	}
	return db.Create(&lines).Error
}

func (r *documentRepository) AppendHistory(ctx context.Context, entry *model.StatusHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *documentRepository) ListHistory(ctx context.Context, docID uuid.UUID) ([]model.StatusHistory, error) {
	var history []model.StatusHistory
	err := GetDB(ctx, r.db).
		Where("document_id = ?", docID).
		Order("created_at asc").
		Find(&history).Error
	return history, err
}

func (r *documentRepository) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *documentRepository) SumPayments(ctx context.Context, docID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Where("document_id = ?", docID).
		Select("SUM(amount)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *documentRepository) CountPayments(ctx context.Context, docID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Where("document_id = ?", docID).
		Count(&count).Error
	return count, err
}

func (r *documentRepository) ListDueInvoices(ctx context.Context, asOf time.Time) ([]model.Document, error) {
	var docs []model.Document
	err := GetDB(ctx, r.db).
		Where("type = ? AND status IN ? AND due_date < ?",
			model.DocTypeInvoice, []model.DocumentStatus{model.StatusSent, model.StatusPartial}, asOf).
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) Delete(ctx context.Context, docID uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Document{}, "id = ?", docID).Error
}
