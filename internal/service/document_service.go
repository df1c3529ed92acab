package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/apperror"
	"backend/internal/calc"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/siret"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type LineRequest struct {
	LineType      string `json:"line_type" binding:"required,oneof=PRODUCT SERVICE TEXT SECTION"`
	CatalogItemID string `json:"catalog_item_id"`
	Description   string `json:"description"`
	Quantity      string `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	TaxRate       string `json:"tax_rate"`
	DiscountType  string `json:"discount_type" binding:"omitempty,oneof=PERCENT AMOUNT"`
	DiscountValue string `json:"discount_value"`
}

type CreateDocumentRequest struct {
	CompanyID      string        `json:"company_id" binding:"required"`
	ClientID       string        `json:"client_id" binding:"required"`
	IssueDate      string        `json:"issue_date"` // YYYY-MM-DD, defaults to today
	DueDate        string        `json:"due_date"`   // YYYY-MM-DD, defaults to issue date + 30 days
	CurrencyCode   string        `json:"currency_code"`
	ExchangeRate   string        `json:"exchange_rate"`
	DiscountType   string        `json:"discount_type" binding:"omitempty,oneof=PERCENT AMOUNT"`
	DiscountValue  string        `json:"discount_value"`
	ShippingAmount string        `json:"shipping_amount"`
	Lines          []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

type UpdateDocumentRequest struct {
	IssueDate      string        `json:"issue_date"`
	DueDate        string        `json:"due_date"`
	DiscountType   string        `json:"discount_type" binding:"omitempty,oneof=PERCENT AMOUNT"`
	DiscountValue  string        `json:"discount_value"`
	ShippingAmount string        `json:"shipping_amount"`
	Lines          []LineRequest `json:"lines" binding:"required,min=1,dive"`
	// Version, when set, must match the stored document version.
	Version int `json:"version"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type PaymentRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Method    string `json:"method" binding:"omitempty,oneof=bank-transfer card cash cheque"`
	Reference string `json:"reference"`
	PaidAt    string `json:"paid_at"` // RFC3339, defaults to now
}

type DocumentFilter struct {
	Status   string
	ClientID string
	Search   string
	Page     int
	Limit    int
}

type LineResponse struct {
	ID            string  `json:"id"`
	LineType      string  `json:"line_type"`
	CatalogItemID *string `json:"catalog_item_id"`
	Description   string  `json:"description"`
	Quantity      string  `json:"quantity"`
	UnitPrice     string  `json:"unit_price"`
	TaxRate       string  `json:"tax_rate"`
	DiscountType  *string `json:"discount_type"`
	DiscountValue string  `json:"discount_value"`
	Position      int     `json:"position"`
	Subtotal      string  `json:"subtotal"`
	TaxAmount     string  `json:"tax_amount"`
	Total         string  `json:"total"`
}

type StatusHistoryResponse struct {
	OldStatus string  `json:"old_status"`
	NewStatus string  `json:"new_status"`
	Reason    string  `json:"reason"`
	ActorID   *string `json:"actor_id"`
	CreatedAt string  `json:"created_at"`
}

type DocumentResponse struct {
	ID                 string                  `json:"id"`
	Type               string                  `json:"type"`
	CompanyID          string                  `json:"company_id"`
	ClientID           string                  `json:"client_id"`
	ClientName         string                  `json:"client_name,omitempty"`
	DocumentNumber     string                  `json:"document_number"`
	IssueDate          string                  `json:"issue_date"`
	DueDate            string                  `json:"due_date"`
	CurrencyCode       string                  `json:"currency_code"`
	ExchangeRate       string                  `json:"exchange_rate"`
	DiscountType       *string                 `json:"discount_type"`
	DiscountValue      string                  `json:"discount_value"`
	ShippingAmount     string                  `json:"shipping_amount"`
	SubtotalNet        string                  `json:"subtotal_net"`
	TotalTax           string                  `json:"total_tax"`
	TotalGross         string                  `json:"total_gross"`
	Status             string                  `json:"status"`
	Version            int                     `json:"version"`
	ConvertedInvoiceID *string                 `json:"converted_invoice_id,omitempty"`
	SourceQuoteID      *string                 `json:"source_quote_id,omitempty"`
	Lines              []LineResponse          `json:"lines,omitempty"`
	History            []StatusHistoryResponse `json:"history,omitempty"`
	CreatedAt          string                  `json:"created_at"`
}

// --- Interface ---

type DocumentService interface {
	CreateDocument(ctx context.Context, docType model.DocumentType, req CreateDocumentRequest, actorID string) (DocumentResponse, error)
	UpdateDocument(ctx context.Context, docType model.DocumentType, id string, req UpdateDocumentRequest, actorID string) (DocumentResponse, error)
	GetDocument(ctx context.Context, docType model.DocumentType, id string) (DocumentResponse, error)
	ListDocuments(ctx context.Context, docType model.DocumentType, filter DocumentFilter) ([]DocumentResponse, int64, error)
	DeleteDocument(ctx context.Context, docType model.DocumentType, id string, actorID string) error

	Transition(ctx context.Context, docType model.DocumentType, id string, req TransitionRequest, actorID string) (DocumentResponse, error)
	ConvertQuoteToInvoice(ctx context.Context, quoteID string, actorID string) (DocumentResponse, error)
	RecordPayment(ctx context.Context, invoiceID string, req PaymentRequest, actorID string) (DocumentResponse, error)
	MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int, error)
}

// EventPublisher pushes document lifecycle events to connected clients.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

type documentService struct {
	docRepo     repository.DocumentRepository
	seqRepo     repository.SequenceRepository
	clientRepo  repository.ClientRepository
	companyRepo repository.CompanyRepository
	catalogRepo repository.CatalogRepository
	audit       AuditService
	txManager   repository.TransactionManager
	events      EventPublisher
}

func NewDocumentService(
	docRepo repository.DocumentRepository,
	seqRepo repository.SequenceRepository,
	clientRepo repository.ClientRepository,
	companyRepo repository.CompanyRepository,
	catalogRepo repository.CatalogRepository,
	audit AuditService,
	txManager repository.TransactionManager,
	events EventPublisher,
) DocumentService {
	return &documentService{
		docRepo:     docRepo,
		seqRepo:     seqRepo,
		clientRepo:  clientRepo,
		companyRepo: companyRepo,
		catalogRepo: catalogRepo,
		audit:       audit,
		txManager:   txManager,
		events:      events,
	}
}

// --- Implementation ---

func (s *documentService) CreateDocument(ctx context.Context, docType model.DocumentType, req CreateDocumentRequest, actorID string) (DocumentResponse, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return DocumentResponse{}, apperror.Validation("invalid company_id: %s", req.CompanyID)
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return DocumentResponse{}, apperror.Validation("invalid client_id: %s", req.ClientID)
	}

	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return DocumentResponse{}, notFoundOr(err, "company %s", req.CompanyID)
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return DocumentResponse{}, notFoundOr(err, "client %s", req.ClientID)
	}
	// Identifier gate: a client with broken SIREN/SIRET cannot enter a document.
	if err := siret.ValidateIdentifiers(client.SIREN, client.SIRET); err != nil {
		return DocumentResponse{}, apperror.BusinessRule("client %s has invalid tax identifiers: %v", client.Name, err)
	}

	issueDate, dueDate, err := parseDocumentDates(req.IssueDate, req.DueDate)
	if err != nil {
		return DocumentResponse{}, err
	}

	currency := req.CurrencyCode
	if currency == "" {
		currency = company.DefaultCurrency
	}
	exchangeRate := decimal.NewFromInt(1)
	if req.ExchangeRate != "" {
		exchangeRate, err = parsePositiveDecimal("exchange_rate", req.ExchangeRate)
		if err != nil {
			return DocumentResponse{}, err
		}
	}

	opts := calcOptions(company, currency)
	lines, amounts, err := s.buildLines(ctx, req.Lines, opts)
	if err != nil {
		return DocumentResponse{}, err
	}

	docDiscount, discountType, discountValue, err := parseDiscount(req.DiscountType, req.DiscountValue)
	if err != nil {
		return DocumentResponse{}, err
	}
	shipping, err := parseOptionalAmount("shipping_amount", req.ShippingAmount)
	if err != nil {
		return DocumentResponse{}, err
	}

	totals := calc.ComputeTotals(amounts, docDiscount, shipping, opts)

	doc := &model.Document{
		Type:           docType,
		CompanyID:      companyID,
		ClientID:       clientID,
		IssueDate:      issueDate,
		DueDate:        dueDate,
		CurrencyCode:   currency,
		ExchangeRate:   exchangeRate,
		DiscountType:   discountType,
		DiscountValue:  discountValue,
		ShippingAmount: shipping,
		SubtotalNet:    totals.LinesSubtotal,
		TotalTax:       totals.TotalTax,
		TotalGross:     totals.TotalGross,
		Status:         model.StatusDraft,
		Version:        1,
		Lines:          lines,
	}

	actor := parseActor(actorID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		value, seqErr := s.seqRepo.Next(txCtx, companyID, docType, issueDate.Year())
		if seqErr != nil {
			return fmt.Errorf("failed to assign document number: %w", seqErr)
		}
		doc.DocumentNumber = model.FormatDocumentNumber(company.NumberingPrefix(docType), issueDate.Year(), value)

		if createErr := s.docRepo.Create(txCtx, doc); createErr != nil {
			return fmt.Errorf("failed to create document: %w", createErr)
		}

		history := &model.StatusHistory{
			DocumentID: doc.ID,
			OldStatus:  "",
			NewStatus:  model.StatusDraft,
			Reason:     "document created",
			ActorID:    actor,
		}
		if histErr := s.docRepo.AppendHistory(txCtx, history); histErr != nil {
			return fmt.Errorf("failed to record status history: %w", histErr)
		}

		action := model.ActionCreateInvoice
		if docType == model.DocTypeQuote {
			action = model.ActionCreateQuote
		}
		return s.audit.Record(txCtx, actor, action, doc.ID.String(), doc.DocumentNumber, map[string]string{
			"total_gross": doc.TotalGross.StringFixed(2),
			"currency":    doc.CurrencyCode,
		})
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	s.publish("document.created", doc)
	return s.GetDocument(ctx, docType, doc.ID.String())
}

func (s *documentService) UpdateDocument(ctx context.Context, docType model.DocumentType, id string, req UpdateDocumentRequest, actorID string) (DocumentResponse, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return DocumentResponse{}, apperror.Validation("invalid document id: %s", id)
	}

	actor := parseActor(actorID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		doc, findErr := s.docRepo.FindByIDForUpdate(txCtx, docID)
		if findErr != nil {
			return notFoundOr(findErr, "document %s", id)
		}
		if doc.Type != docType {
			return apperror.NotFound("document %s", id)
		}
		if !doc.Status.IsEditable() {
			return apperror.BusinessRule("document %s cannot be edited in status %s", doc.DocumentNumber, doc.Status)
		}
		if req.Version != 0 && req.Version != doc.Version {
			return apperror.Conflict("document %s was modified concurrently (version %d, expected %d)", doc.DocumentNumber, doc.Version, req.Version)
		}

		company, companyErr := s.companyRepo.FindByID(txCtx, doc.CompanyID)
		if companyErr != nil {
			return fmt.Errorf("failed to load company: %w", companyErr)
		}

		if req.IssueDate != "" || req.DueDate != "" {
			issueDate, dueDate, dateErr := parseDocumentDates(
				orDefault(req.IssueDate, doc.IssueDate.Format("2006-01-02")),
				orDefault(req.DueDate, doc.DueDate.Format("2006-01-02")),
			)
			if dateErr != nil {
				return dateErr
			}
			doc.IssueDate = issueDate
			doc.DueDate = dueDate
		}

		opts := calcOptions(company, doc.CurrencyCode)
		lines, amounts, buildErr := s.buildLines(txCtx, req.Lines, opts)
		if buildErr != nil {
			return buildErr
		}

		docDiscount, discountType, discountValue, discErr := parseDiscount(req.DiscountType, req.DiscountValue)
		if discErr != nil {
			return discErr
		}
		shipping, shipErr := parseOptionalAmount("shipping_amount", req.ShippingAmount)
		if shipErr != nil {
			return shipErr
		}

		totals := calc.ComputeTotals(amounts, docDiscount, shipping, opts)
		doc.DiscountType = discountType
		doc.DiscountValue = discountValue
		doc.ShippingAmount = shipping
		doc.SubtotalNet = totals.LinesSubtotal
		doc.TotalTax = totals.TotalTax
		doc.TotalGross = totals.TotalGross

		if replaceErr := s.docRepo.ReplaceLines(txCtx, doc.ID, lines); replaceErr != nil {
			return fmt.Errorf("failed to replace lines: %w", replaceErr)
		}
		if updateErr := s.docRepo.UpdateWithVersion(txCtx, doc); updateErr != nil {
			return updateErr
		}

		return s.audit.Record(txCtx, actor, model.ActionUpdateDocument, doc.ID.String(), doc.DocumentNumber, map[string]string{
			"total_gross": doc.TotalGross.StringFixed(2),
		})
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	resp, err := s.GetDocument(ctx, docType, id)
	if err == nil {
		s.publish("document.updated", resp)
	}
	return resp, err
}

func (s *documentService) GetDocument(ctx context.Context, docType model.DocumentType, id string) (DocumentResponse, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return DocumentResponse{}, apperror.Validation("invalid document id: %s", id)
	}

	doc, err := s.docRepo.FindByID(ctx, docID)
	if err != nil {
		return DocumentResponse{}, notFoundOr(err, "document %s", id)
	}
	if doc.Type != docType {
		return DocumentResponse{}, apperror.NotFound("document %s", id)
	}

	history, err := s.docRepo.ListHistory(ctx, docID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("failed to load status history: %w", err)
	}
	doc.History = history

	return toDocumentResponse(*doc), nil
}

func (s *documentService) ListDocuments(ctx context.Context, docType model.DocumentType, filter DocumentFilter) ([]DocumentResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.DocumentListFilter{
		Type:   docType,
		Status: filter.Status,
		Search: filter.Search,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.ClientID != "" {
		clientID, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, apperror.Validation("invalid client_id filter: %s", filter.ClientID)
		}
		repoFilter.ClientID = &clientID
	}

	docs, total, err := s.docRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch documents: %w", err)
	}

	result := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		result = append(result, toDocumentResponse(d))
	}
	return result, total, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, docType model.DocumentType, id string, actorID string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid document id: %s", id)
	}

	actor := parseActor(actorID)
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		doc, findErr := s.docRepo.FindByIDForUpdate(txCtx, docID)
		if findErr != nil {
			return notFoundOr(findErr, "document %s", id)
		}
		if doc.Type != docType {
			return apperror.NotFound("document %s", id)
		}
		if doc.Status != model.StatusDraft {
			return apperror.BusinessRule("only draft documents can be deleted, %s is %s", doc.DocumentNumber, doc.Status)
		}
		payments, countErr := s.docRepo.CountPayments(txCtx, docID)
		if countErr != nil {
			return fmt.Errorf("failed to check payments: %w", countErr)
		}
		if payments > 0 {
			return apperror.BusinessRule("document %s has recorded payments and cannot be deleted", doc.DocumentNumber)
		}

		if delErr := s.docRepo.Delete(txCtx, docID); delErr != nil {
			return fmt.Errorf("failed to delete document: %w", delErr)
		}

		return s.audit.Record(txCtx, actor, model.ActionDeleteDocument, doc.ID.String(), doc.DocumentNumber, nil)
	})
}

// --- Helpers ---

// buildLines validates and computes every requested line, preserving request
// order as the position. Catalog-backed lines inherit the catalog price, rate
// and description when the request leaves them blank.
func (s *documentService) buildLines(ctx context.Context, reqs []LineRequest, opts calc.Options) ([]model.LineItem, []calc.LineAmounts, error) {
	lines := make([]model.LineItem, 0, len(reqs))
	amounts := make([]calc.LineAmounts, 0, len(reqs))

	for i, req := range reqs {
		line := model.LineItem{
			LineType:    req.LineType,
			Description: req.Description,
			Position:    i + 1,
			Quantity:    decimal.Zero,
			UnitPrice:   decimal.Zero,
			TaxRate:     decimal.Zero,
		}

		if !line.IsMonetary() {
			if req.Description == "" {
				return nil, nil, apperror.Validation("line %d: %s lines need a description", i+1, req.LineType)
			}
			lines = append(lines, line)
			continue
		}

		if req.CatalogItemID != "" {
			itemID, err := uuid.Parse(req.CatalogItemID)
			if err != nil {
				return nil, nil, apperror.Validation("line %d: invalid catalog_item_id", i+1)
			}
			item, err := s.catalogRepo.FindByID(ctx, itemID)
			if err != nil {
				return nil, nil, notFoundOr(err, "line %d: catalog item %s", i+1, req.CatalogItemID)
			}
			line.CatalogItemID = &item.ID
			if req.UnitPrice == "" {
				req.UnitPrice = item.UnitPrice.String()
			}
			if req.TaxRate == "" {
				req.TaxRate = item.TaxRate.String()
			}
			if line.Description == "" {
				line.Description = item.Name
			}
		}

		quantity, err := parseRequiredDecimal(fmt.Sprintf("line %d quantity", i+1), req.Quantity)
		if err != nil {
			return nil, nil, err
		}
		unitPrice, err := parseRequiredDecimal(fmt.Sprintf("line %d unit_price", i+1), req.UnitPrice)
		if err != nil {
			return nil, nil, err
		}
		taxRate := decimal.Zero
		if req.TaxRate != "" {
			taxRate, err = parseRequiredDecimal(fmt.Sprintf("line %d tax_rate", i+1), req.TaxRate)
			if err != nil {
				return nil, nil, err
			}
		}

		lineDiscount, discountType, discountValue, err := parseDiscount(req.DiscountType, req.DiscountValue)
		if err != nil {
			return nil, nil, apperror.Validation("line %d: %v", i+1, err)
		}

		computed, err := calc.ComputeLine(calc.LineInput{
			Quantity:  quantity,
			UnitPrice: unitPrice,
			TaxRate:   taxRate,
			Discount:  lineDiscount,
		}, opts)
		if err != nil {
			return nil, nil, apperror.Wrap(apperror.KindValidation, err, "line %d", i+1)
		}

		line.Quantity = quantity
		line.UnitPrice = unitPrice
		line.TaxRate = taxRate
		line.DiscountType = discountType
		line.DiscountValue = discountValue
		line.Subtotal = computed.NetSubtotal.Round(opts.Precision)
		line.TaxAmount = computed.TaxAmount
		line.Total = computed.Total

		lines = append(lines, line)
		amounts = append(amounts, computed)
	}

	return lines, amounts, nil
}

func (s *documentService) publish(event string, payload interface{}) {
	if s.events != nil {
		s.events.Publish(event, payload)
	}
}

func calcOptions(company *model.Company, currency string) calc.Options {
	return calc.Options{
		Precision:          currencyPrecision(currency),
		TaxShipping:        company.ShippingTaxed,
		AllowNegativePrice: company.AllowNegativePrices,
	}
}

// currencyPrecision maps an ISO 4217 code to its minor-unit count.
func currencyPrecision(code string) int32 {
	switch code {
	case "JPY", "KRW", "VND", "CLP", "XOF", "XPF":
		return 0
	case "BHD", "KWD", "OMR", "TND":
		return 3
	default:
		return 2
	}
}

func parseDocumentDates(issue, due string) (time.Time, time.Time, error) {
	issueDate := time.Now().Truncate(24 * time.Hour)
	if issue != "" {
		parsed, err := time.Parse("2006-01-02", issue)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.Validation("invalid issue_date %q, expected YYYY-MM-DD", issue)
		}
		issueDate = parsed
	}

	dueDate := issueDate.AddDate(0, 0, 30)
	if due != "" {
		parsed, err := time.Parse("2006-01-02", due)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.Validation("invalid due_date %q, expected YYYY-MM-DD", due)
		}
		dueDate = parsed
	}
	if dueDate.Before(issueDate) {
		return time.Time{}, time.Time{}, apperror.Validation("due_date %s is before issue_date %s", dueDate.Format("2006-01-02"), issueDate.Format("2006-01-02"))
	}

	return issueDate, dueDate, nil
}

func parseDiscount(discountType, discountValue string) (*calc.Discount, *string, decimal.Decimal, error) {
	if discountType == "" {
		return nil, nil, decimal.Zero, nil
	}
	value, err := parseRequiredDecimal("discount_value", discountValue)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	if value.IsNegative() {
		return nil, nil, decimal.Zero, apperror.Validation("discount_value cannot be negative")
	}
	return &calc.Discount{Type: calc.DiscountType(discountType), Value: value}, &discountType, value, nil
}

func parseRequiredDecimal(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, apperror.Validation("%s is required", field)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperror.Validation("invalid %s: %q", field, value)
	}
	return d, nil
}

func parsePositiveDecimal(field, value string) (decimal.Decimal, error) {
	d, err := parseRequiredDecimal(field, value)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, apperror.Validation("%s must be positive", field)
	}
	return d, nil
}

func parseOptionalAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := parseRequiredDecimal(field, value)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, apperror.Validation("%s cannot be negative", field)
	}
	return d, nil
}

func parseActor(actorID string) *uuid.UUID {
	if actorID == "" {
		return nil
	}
	id, err := uuid.Parse(actorID)
	if err != nil {
		return nil
	}
	return &id
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// notFoundOr maps gorm's missing-record error to the NOT_FOUND kind and
// passes everything else through wrapped.
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(format+" not found", args...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// --- Mapping ---

func toDocumentResponse(doc model.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:             doc.ID.String(),
		Type:           string(doc.Type),
		CompanyID:      doc.CompanyID.String(),
		ClientID:       doc.ClientID.String(),
		DocumentNumber: doc.DocumentNumber,
		IssueDate:      doc.IssueDate.Format("2006-01-02"),
		DueDate:        doc.DueDate.Format("2006-01-02"),
		CurrencyCode:   doc.CurrencyCode,
		ExchangeRate:   doc.ExchangeRate.String(),
		DiscountType:   doc.DiscountType,
		DiscountValue:  doc.DiscountValue.StringFixed(2),
		ShippingAmount: doc.ShippingAmount.StringFixed(2),
		SubtotalNet:    doc.SubtotalNet.StringFixed(2),
		TotalTax:       doc.TotalTax.StringFixed(2),
		TotalGross:     doc.TotalGross.StringFixed(2),
		Status:         string(doc.Status),
		Version:        doc.Version,
		CreatedAt:      doc.CreatedAt.Format(time.RFC3339),
	}

	if doc.Client != nil {
		resp.ClientName = doc.Client.Name
	}
	if doc.ConvertedInvoiceID != nil {
		s := doc.ConvertedInvoiceID.String()
		resp.ConvertedInvoiceID = &s
	}
	if doc.SourceQuoteID != nil {
		s := doc.SourceQuoteID.String()
		resp.SourceQuoteID = &s
	}

	for _, line := range doc.Lines {
		resp.Lines = append(resp.Lines, toLineResponse(line))
	}
	for _, h := range doc.History {
		entry := StatusHistoryResponse{
			OldStatus: string(h.OldStatus),
			NewStatus: string(h.NewStatus),
			Reason:    h.Reason,
			CreatedAt: h.CreatedAt.Format(time.RFC3339),
		}
		if h.ActorID != nil {
			s := h.ActorID.String()
			entry.ActorID = &s
		}
		resp.History = append(resp.History, entry)
	}

	return resp
}

func toLineResponse(line model.LineItem) LineResponse {
	resp := LineResponse{
		ID:            line.ID.String(),
		LineType:      line.LineType,
		Description:   line.Description,
		Quantity:      line.Quantity.String(),
		UnitPrice:     line.UnitPrice.String(),
		TaxRate:       line.TaxRate.String(),
		DiscountType:  line.DiscountType,
		DiscountValue: line.DiscountValue.StringFixed(2),
		Position:      line.Position,
		Subtotal:      line.Subtotal.StringFixed(2),
		TaxAmount:     line.TaxAmount.StringFixed(2),
		Total:         line.Total.StringFixed(2),
	}
	if line.CatalogItemID != nil {
		s := line.CatalogItemID.String()
		resp.CatalogItemID = &s
	}
	return resp
}
