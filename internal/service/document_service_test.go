package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store     *fakeStore
	svc       DocumentService
	companyID uuid.UUID
	clientID  uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newFakeStore()

	company := &model.Company{
		ID:              uuid.New(),
		Name:            "Acme SARL",
		QuotePrefix:     "QUO",
		InvoicePrefix:   "INV",
		DefaultCurrency: "EUR",
	}
	store.companies[company.ID] = company

	client := &model.Client{
		ID:        uuid.New(),
		CompanyID: company.ID,
		Name:      "Client SA",
		SIREN:     "732829320",
		SIRET:     "73282932000009",
		IsActive:  true,
	}
	store.clients[client.ID] = client

	svc := NewDocumentService(
		&fakeDocRepo{s: store},
		&fakeSeqRepo{s: store},
		&fakeClientRepo{s: store},
		&fakeCompanyRepo{s: store},
		&fakeCatalogRepo{s: store},
		&fakeAudit{s: store},
		&fakeTxManager{s: store},
		nil,
	)

	return &testEnv{store: store, svc: svc, companyID: company.ID, clientID: client.ID}
}

func (e *testEnv) createRequest() CreateDocumentRequest {
	return CreateDocumentRequest{
		CompanyID: e.companyID.String(),
		ClientID:  e.clientID.String(),
		IssueDate: "2026-03-01",
		DueDate:   "2026-03-31",
		Lines: []LineRequest{
			{LineType: "PRODUCT", Description: "Widget", Quantity: "2", UnitPrice: "100", TaxRate: "20"},
		},
	}
}

func (e *testEnv) mustCreate(t *testing.T, docType model.DocumentType, req CreateDocumentRequest) DocumentResponse {
	t.Helper()
	doc, err := e.svc.CreateDocument(context.Background(), docType, req, "")
	require.NoError(t, err)
	return doc
}

func (e *testEnv) mustTransition(t *testing.T, docType model.DocumentType, id string, target model.DocumentStatus) DocumentResponse {
	t.Helper()
	doc, err := e.svc.Transition(context.Background(), docType, id, TransitionRequest{Status: string(target)}, "")
	require.NoError(t, err)
	return doc
}

func TestCreateDocumentAssignsSequentialNumbers(t *testing.T) {
	env := newTestEnv(t)

	for i := 1; i <= 3; i++ {
		doc := env.mustCreate(t, model.DocTypeQuote, env.createRequest())
		assert.Equal(t, fmt.Sprintf("QUO-2026-%04d", i), doc.DocumentNumber)
	}

	// Invoices run on an independent counter within the same company and year.
	invoice := env.mustCreate(t, model.DocTypeInvoice, env.createRequest())
	assert.Equal(t, "INV-2026-0001", invoice.DocumentNumber)

	// A different year starts a fresh counter.
	req := env.createRequest()
	req.IssueDate = "2027-01-15"
	req.DueDate = "2027-02-14"
	doc := env.mustCreate(t, model.DocTypeQuote, req)
	assert.Equal(t, "QUO-2027-0001", doc.DocumentNumber)
}

func TestCreateDocumentStartsInDraftWithHistory(t *testing.T) {
	env := newTestEnv(t)

	doc := env.mustCreate(t, model.DocTypeQuote, env.createRequest())
	assert.Equal(t, "DRAFT", doc.Status)
	assert.Equal(t, 1, doc.Version)
	require.Len(t, doc.History, 1)
	assert.Equal(t, "", doc.History[0].OldStatus)
	assert.Equal(t, "DRAFT", doc.History[0].NewStatus)
	assert.Contains(t, env.store.auditActions, model.ActionCreateQuote)
}

func TestCreateDocumentComputesTotals(t *testing.T) {
	env := newTestEnv(t)

	// Two rate buckets, a fixed document discount and tax-exempt shipping.
	req := env.createRequest()
	req.DiscountType = "AMOUNT"
	req.DiscountValue = "100"
	req.ShippingAmount = "50"
	req.Lines = []LineRequest{
		{LineType: "PRODUCT", Description: "A", Quantity: "5", UnitPrice: "100", TaxRate: "20", DiscountType: "PERCENT", DiscountValue: "20"},
		{LineType: "SERVICE", Description: "B", Quantity: "3", UnitPrice: "100", TaxRate: "10"},
	}

	doc := env.mustCreate(t, model.DocTypeInvoice, req)
	assert.Equal(t, "700.00", doc.SubtotalNet)
	assert.Equal(t, "95.33", doc.TotalTax)
	assert.Equal(t, "745.33", doc.TotalGross)
}

func TestCreateDocumentRejectsClientWithBrokenIdentifiers(t *testing.T) {
	env := newTestEnv(t)
	env.store.clients[env.clientID].SIRET = "73282932000008" // checksum off by one

	_, err := env.svc.CreateDocument(context.Background(), model.DocTypeQuote, env.createRequest(), "")
	require.Error(t, err)
	assert.True(t, apperror.IsBusinessRule(err))
}

func TestCreateDocumentRejectsTextLineWithoutDescription(t *testing.T) {
	env := newTestEnv(t)
	req := env.createRequest()
	req.Lines = []LineRequest{{LineType: "TEXT"}}

	_, err := env.svc.CreateDocument(context.Background(), model.DocTypeQuote, req, "")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestUpdateDocumentRecomputesTotals(t *testing.T) {
	env := newTestEnv(t)
	doc := env.mustCreate(t, model.DocTypeQuote, env.createRequest())
	assert.Equal(t, "240.00", doc.TotalGross)

	updated, err := env.svc.UpdateDocument(context.Background(), model.DocTypeQuote, doc.ID, UpdateDocumentRequest{
		Lines: []LineRequest{
			{LineType: "PRODUCT", Description: "Widget", Quantity: "4", UnitPrice: "100", TaxRate: "20"},
		},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "480.00", updated.TotalGross)
	assert.Equal(t, 2, updated.Version)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, "4", updated.Lines[0].Quantity)
}

func TestUpdateDocumentVersionConflict(t *testing.T) {
	env := newTestEnv(t)
	doc := env.mustCreate(t, model.DocTypeQuote, env.createRequest())

	_, err := env.svc.UpdateDocument(context.Background(), model.DocTypeQuote, doc.ID, UpdateDocumentRequest{
		Lines:   env.createRequest().Lines,
		Version: 99,
	}, "")
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestUpdateDocumentRejectedAfterEditableWindow(t *testing.T) {
	env := newTestEnv(t)
	doc := env.mustCreate(t, model.DocTypeQuote, env.createRequest())
	env.mustTransition(t, model.DocTypeQuote, doc.ID, model.StatusSent)
	env.mustTransition(t, model.DocTypeQuote, doc.ID, model.StatusAccepted)

	_, err := env.svc.UpdateDocument(context.Background(), model.DocTypeQuote, doc.ID, UpdateDocumentRequest{
		Lines: env.createRequest().Lines,
	}, "")
	require.Error(t, err)
	assert.True(t, apperror.IsBusinessRule(err))
}

func TestTransitionEnforcesAllowList(t *testing.T) {
	env := newTestEnv(t)
	doc := env.mustCreate(t, model.DocTypeQuote, env.createRequest())

	// Skipping SENT is illegal.
	_, err := env.svc.Transition(context.Background(), model.DocTypeQuote, doc.ID, TransitionRequest{Status: "ACCEPTED"}, "")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))

	// A status from the other lifecycle is rejected before the allow-list.
	_, err = env.svc.Transition(context.Background(), model.DocTypeQuote, doc.ID, TransitionRequest{Status: "PAID"}, "")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// CONVERTED only happens through the conversion operation.
	sent := env.mustTransition(t, model.DocTypeQuote, doc.ID, model.StatusSent)
	env.mustTransition(t, model.DocTypeQuote, sent.ID, model.StatusAccepted)
	_, err = env.svc.Transition(context.Background(), model.DocTypeQuote, doc.ID, TransitionRequest{Status: "CONVERTED"}, "")
	require.Error(t, err)
	assert.True(t, apperror.IsBusinessRule(err))
}

func TestTransitionAppendsHistory(t *testing.T) {
	env := newTestEnv(t)
	doc := env.mustCreate(t, model.DocTypeQuote, env.createRequest())

	_, err := env.svc.Transition(context.Background(), model.DocTypeQuote, doc.ID, TransitionRequest{Status: "SENT", Reason: "mailed to client"}, "")
	require.NoError(t, err)

	got, err := env.svc.GetDocument(context.Background(), model.DocTypeQuote, doc.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 2)
	assert.Equal(t, "DRAFT", got.History[1].OldStatus)
	assert.Equal(t, "SENT", got.History[1].NewStatus)
	assert.Equal(t, "mailed to client", got.History[1].Reason)
}

func TestConvertQuoteToInvoice(t *testing.T) {
	env := newTestEnv(t)
	quote := env.mustCreate(t, model.DocTypeQuote, env.createRequest())
	env.mustTransition(t, model.DocTypeQuote, quote.ID, model.StatusSent)
	env.mustTransition(t, model.DocTypeQuote, quote.ID, model.StatusAccepted)

	invoice, err := env.svc.ConvertQuoteToInvoice(context.Background(), quote.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "INVOICE", invoice.Type)
	assert.Equal(t, "DRAFT", invoice.Status)
	assert.Equal(t, "INV-2026-0001", invoice.DocumentNumber)
	require.NotNil(t, invoice.SourceQuoteID)
	assert.Equal(t, quote.ID, *invoice.SourceQuoteID)
	assert.Equal(t, quote.TotalGross, invoice.TotalGross)
	require.Len(t, invoice.Lines, 1)

	converted, err := env.svc.GetDocument(context.Background(), model.DocTypeQuote, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "CONVERTED", converted.Status)
	require.NotNil(t, converted.ConvertedInvoiceID)
	assert.Equal(t, invoice.ID, *converted.ConvertedInvoiceID)
}

func TestConvertQuoteRequiresAcceptedStatus(t *testing.T) {
	env := newTestEnv(t)
	quote := env.mustCreate(t, model.DocTypeQuote, env.createRequest())

	_, err := env.svc.ConvertQuoteToInvoice(context.Background(), quote.ID, "")
	require.Error(t, err)
	assert.True(t, apperror.IsBusinessRule(err))
}

func TestConvertQuoteOnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	quote := env.mustCreate(t, model.DocTypeQuote, env.createRequest())
	env.mustTransition(t, model.DocTypeQuote, quote.ID, model.StatusSent)
	env.mustTransition(t, model.DocTypeQuote, quote.ID, model.StatusAccepted)

	_, err := env.svc.ConvertQuoteToInvoice(context.Background(), quote.ID, "")
	require.NoError(t, err)

	_, err = env.svc.ConvertQuoteToInvoice(context.Background(), quote.ID, "")
	require.Error(t, err)
	assert.True(t, apperror.IsBusinessRule(err))
}

func TestConversionRollsBackAsOneUnit(t *testing.T) {
	env := newTestEnv(t)
	quote := env.mustCreate(t, model.DocTypeQuote, env.createRequest())
	env.mustTransition(t, model.DocTypeQuote, quote.ID, model.StatusSent)
	env.mustTransition(t, model.DocTypeQuote, quote.ID, model.StatusAccepted)

	env.store.auditErr = errors.New("audit store unavailable")
	_, err := env.svc.ConvertQuoteToInvoice(context.Background(), quote.ID, "")
	require.Error(t, err)
	env.store.auditErr = nil

	// The quote is untouched and no invoice or number was left behind.
	got, err := env.svc.GetDocument(context.Background(), model.DocTypeQuote, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED", got.Status)
	assert.Nil(t, got.ConvertedInvoiceID)

	invoices, total, err := env.svc.ListDocuments(context.Background(), model.DocTypeInvoice, DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, invoices)
	assert.Zero(t, total)

	// Retry succeeds and still gets the first invoice number.
	invoice, err := env.svc.ConvertQuoteToInvoice(context.Background(), quote.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0001", invoice.DocumentNumber)
}

func TestRecordPaymentDrivesStatus(t *testing.T) {
	env := newTestEnv(t)
	invoice := env.mustCreate(t, model.DocTypeInvoice, env.createRequest())
	env.mustTransition(t, model.DocTypeInvoice, invoice.ID, model.StatusSent)

	partial, err := env.svc.RecordPayment(context.Background(), invoice.ID, PaymentRequest{Amount: "100"}, "")
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", partial.Status)

	paid, err := env.svc.RecordPayment(context.Background(), invoice.ID, PaymentRequest{Amount: "140"}, "")
	require.NoError(t, err)
	assert.Equal(t, "PAID", paid.Status)

	// Paid invoices accept no further payments.
	_, err = env.svc.RecordPayment(context.Background(), invoice.ID, PaymentRequest{Amount: "1"}, "")
	require.Error(t, err)
	assert.True(t, apperror.IsBusinessRule(err))
}

func TestRecordPaymentRejectedOnDraftAndQuotes(t *testing.T) {
	env := newTestEnv(t)

	invoice := env.mustCreate(t, model.DocTypeInvoice, env.createRequest())
	_, err := env.svc.RecordPayment(context.Background(), invoice.ID, PaymentRequest{Amount: "10"}, "")
	require.Error(t, err)
	assert.True(t, apperror.IsBusinessRule(err))

	quote := env.mustCreate(t, model.DocTypeQuote, env.createRequest())
	_, err = env.svc.RecordPayment(context.Background(), quote.ID, PaymentRequest{Amount: "10"}, "")
	require.Error(t, err)
	assert.True(t, apperror.IsBusinessRule(err))
}

func TestMarkOverdueInvoices(t *testing.T) {
	env := newTestEnv(t)

	invoice := env.mustCreate(t, model.DocTypeInvoice, env.createRequest())
	env.mustTransition(t, model.DocTypeInvoice, invoice.ID, model.StatusSent)

	// A quote past its date must not be touched.
	quote := env.mustCreate(t, model.DocTypeQuote, env.createRequest())
	env.mustTransition(t, model.DocTypeQuote, quote.ID, model.StatusSent)

	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	flipped, err := env.svc.MarkOverdueInvoices(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, flipped)

	got, err := env.svc.GetDocument(context.Background(), model.DocTypeInvoice, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "OVERDUE", got.Status)

	// Re-running the sweep is a no-op.
	flipped, err = env.svc.MarkOverdueInvoices(context.Background(), asOf)
	require.NoError(t, err)
	assert.Zero(t, flipped)
}

func TestDeleteDocumentPolicy(t *testing.T) {
	env := newTestEnv(t)

	draft := env.mustCreate(t, model.DocTypeQuote, env.createRequest())
	require.NoError(t, env.svc.DeleteDocument(context.Background(), model.DocTypeQuote, draft.ID, ""))
	_, err := env.svc.GetDocument(context.Background(), model.DocTypeQuote, draft.ID)
	assert.True(t, apperror.IsNotFound(err))

	sent := env.mustCreate(t, model.DocTypeQuote, env.createRequest())
	env.mustTransition(t, model.DocTypeQuote, sent.ID, model.StatusSent)
	err = env.svc.DeleteDocument(context.Background(), model.DocTypeQuote, sent.ID, "")
	require.Error(t, err)
	assert.True(t, apperror.IsBusinessRule(err))
}

func TestDeleteDocumentBlockedByPayments(t *testing.T) {
	env := newTestEnv(t)
	invoice := env.mustCreate(t, model.DocTypeInvoice, env.createRequest())

	docID := uuid.MustParse(invoice.ID)
	env.store.payments[docID] = append(env.store.payments[docID], model.Payment{
		ID:         uuid.New(),
		DocumentID: docID,
		PaidAt:     time.Now(),
	})

	err := env.svc.DeleteDocument(context.Background(), model.DocTypeInvoice, invoice.ID, "")
	require.Error(t, err)
	assert.True(t, apperror.IsBusinessRule(err))
}

func TestConcurrentCreatesGetUniqueNumbers(t *testing.T) {
	env := newTestEnv(t)

	const n = 20
	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := env.svc.CreateDocument(context.Background(), model.DocTypeQuote, env.createRequest(), "")
			if err == nil {
				numbers <- doc.DocumentNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "duplicate document number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}

func TestGetDocumentTypeMismatch(t *testing.T) {
	env := newTestEnv(t)
	quote := env.mustCreate(t, model.DocTypeQuote, env.createRequest())

	_, err := env.svc.GetDocument(context.Background(), model.DocTypeInvoice, quote.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
