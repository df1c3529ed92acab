package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeStore is a shared in-memory backing store for the repository fakes.
// The tx fake snapshots it before each unit of work and restores the snapshot
// when the work errors, mimicking a rollback.
type fakeStore struct {
	mu        sync.Mutex
	docs      map[uuid.UUID]*model.Document
	history   map[uuid.UUID][]model.StatusHistory
	payments  map[uuid.UUID][]model.Payment
	sequences map[string]int64
	clients   map[uuid.UUID]*model.Client
	companies map[uuid.UUID]*model.Company
	catalog   map[uuid.UUID]*model.CatalogItem

	auditActions []string
	auditErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:      make(map[uuid.UUID]*model.Document),
		history:   make(map[uuid.UUID][]model.StatusHistory),
		payments:  make(map[uuid.UUID][]model.Payment),
		sequences: make(map[string]int64),
		clients:   make(map[uuid.UUID]*model.Client),
		companies: make(map[uuid.UUID]*model.Company),
		catalog:   make(map[uuid.UUID]*model.CatalogItem),
	}
}

func cloneDoc(d *model.Document) *model.Document {
	c := *d
	c.Lines = append([]model.LineItem(nil), d.Lines...)
	c.History = nil
	c.Payments = nil
	if d.DiscountType != nil {
		v := *d.DiscountType
		c.DiscountType = &v
	}
	if d.ConvertedInvoiceID != nil {
		v := *d.ConvertedInvoiceID
		c.ConvertedInvoiceID = &v
	}
	if d.SourceQuoteID != nil {
		v := *d.SourceQuoteID
		c.SourceQuoteID = &v
	}
	return &c
}

type storeSnapshot struct {
	docs      map[uuid.UUID]*model.Document
	history   map[uuid.UUID][]model.StatusHistory
	payments  map[uuid.UUID][]model.Payment
	sequences map[string]int64
}

func (s *fakeStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		docs:      make(map[uuid.UUID]*model.Document, len(s.docs)),
		history:   make(map[uuid.UUID][]model.StatusHistory, len(s.history)),
		payments:  make(map[uuid.UUID][]model.Payment, len(s.payments)),
		sequences: make(map[string]int64, len(s.sequences)),
	}
	for id, d := range s.docs {
		snap.docs[id] = cloneDoc(d)
	}
	for id, h := range s.history {
		snap.history[id] = append([]model.StatusHistory(nil), h...)
	}
	for id, p := range s.payments {
		snap.payments[id] = append([]model.Payment(nil), p...)
	}
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *fakeStore) restore(snap storeSnapshot) {
	s.docs = snap.docs
	s.history = snap.history
	s.payments = snap.payments
	s.sequences = snap.sequences
}

// --- TransactionManager ---

type fakeTxManager struct{ s *fakeStore }

func (t *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	t.s.mu.Lock()
	snap := t.s.snapshot()
	t.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.s.mu.Lock()
		t.s.restore(snap)
		t.s.mu.Unlock()
		return err
	}
	return nil
}

// --- DocumentRepository ---

type fakeDocRepo struct{ s *fakeStore }

func (r *fakeDocRepo) Create(ctx context.Context, doc *model.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	for _, existing := range r.s.docs {
		if existing.Type == doc.Type && existing.CompanyID == doc.CompanyID && existing.DocumentNumber == doc.DocumentNumber {
			return fmt.Errorf("duplicate document number %s", doc.DocumentNumber)
		}
	}
	for i := range doc.Lines {
		if doc.Lines[i].ID == uuid.Nil {
			doc.Lines[i].ID = uuid.New()
		}
		doc.Lines[i].DocumentID = doc.ID
	}
	doc.CreatedAt = time.Now()
	r.s.docs[doc.ID] = cloneDoc(doc)
	return nil
}

func (r *fakeDocRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	doc, ok := r.s.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneDoc(doc), nil
}

func (r *fakeDocRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeDocRepo) List(ctx context.Context, filter repository.DocumentListFilter) ([]model.Document, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []model.Document
	for _, doc := range r.s.docs {
		if doc.Type != filter.Type {
			continue
		}
		if filter.Status != "" && string(doc.Status) != filter.Status {
			continue
		}
		if filter.ClientID != nil && doc.ClientID != *filter.ClientID {
			continue
		}
		result = append(result, *cloneDoc(doc))
	}
	return result, int64(len(result)), nil
}

func (r *fakeDocRepo) UpdateWithVersion(ctx context.Context, doc *model.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.docs[doc.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != doc.Version {
		return apperror.Conflict("document %s was modified concurrently", doc.DocumentNumber)
	}

	updated := cloneDoc(doc)
	updated.Lines = stored.Lines // scalar update only, lines go through ReplaceLines
	updated.Version = stored.Version + 1
	r.s.docs[doc.ID] = updated
	doc.Version = updated.Version
	return nil
}

func (r *fakeDocRepo) ReplaceLines(ctx context.Context, docID uuid.UUID, lines []model.LineItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.docs[docID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	replaced := make([]model.LineItem, len(lines))
	copy(replaced, lines)
	for i := range replaced {
		if replaced[i].ID == uuid.Nil {
			replaced[i].ID = uuid.New()
		}
		replaced[i].DocumentID = docID
	}
	stored.Lines = replaced
	return nil
}

func (r *fakeDocRepo) AppendHistory(ctx context.Context, entry *model.StatusHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	r.s.history[entry.DocumentID] = append(r.s.history[entry.DocumentID], *entry)
	return nil
}

func (r *fakeDocRepo) ListHistory(ctx context.Context, docID uuid.UUID) ([]model.StatusHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.StatusHistory(nil), r.s.history[docID]...), nil
}

func (r *fakeDocRepo) CreatePayment(ctx context.Context, payment *model.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	payment.ID = uuid.New()
	r.s.payments[payment.DocumentID] = append(r.s.payments[payment.DocumentID], *payment)
	return nil
}

func (r *fakeDocRepo) SumPayments(ctx context.Context, docID uuid.UUID) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sum := decimal.Zero
	for _, p := range r.s.payments[docID] {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}

func (r *fakeDocRepo) CountPayments(ctx context.Context, docID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.payments[docID])), nil
}

func (r *fakeDocRepo) ListDueInvoices(ctx context.Context, asOf time.Time) ([]model.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []model.Document
	for _, doc := range r.s.docs {
		if doc.Type != model.DocTypeInvoice {
			continue
		}
		if doc.Status != model.StatusSent && doc.Status != model.StatusPartial {
			continue
		}
		if doc.DueDate.Before(asOf) {
			result = append(result, *cloneDoc(doc))
		}
	}
	return result, nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.docs[docID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.docs, docID)
	return nil
}

// --- SequenceRepository ---

type fakeSeqRepo struct{ s *fakeStore }

func (r *fakeSeqRepo) Next(ctx context.Context, companyID uuid.UUID, docType model.DocumentType, year int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := fmt.Sprintf("%s|%s|%d", companyID, docType, year)
	r.s.sequences[key]++
	return r.s.sequences[key], nil
}

// --- ClientRepository ---

type fakeClientRepo struct{ s *fakeStore }

func (r *fakeClientRepo) Create(ctx context.Context, client *model.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	c := *client
	r.s.clients[client.ID] = &c
	return nil
}

func (r *fakeClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	client, ok := r.s.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *client
	return &c, nil
}

func (r *fakeClientRepo) List(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]model.Client, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []model.Client
	for _, c := range r.s.clients {
		if c.CompanyID == companyID {
			result = append(result, *c)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeClientRepo) Update(ctx context.Context, client *model.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *client
	r.s.clients[client.ID] = &c
	return nil
}

// --- CompanyRepository ---

type fakeCompanyRepo struct{ s *fakeStore }

func (r *fakeCompanyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	company, ok := r.s.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *company
	return &c, nil
}

func (r *fakeCompanyRepo) Create(ctx context.Context, company *model.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	c := *company
	r.s.companies[company.ID] = &c
	return nil
}

func (r *fakeCompanyRepo) Update(ctx context.Context, company *model.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *company
	r.s.companies[company.ID] = &c
	return nil
}

// --- CatalogRepository ---

type fakeCatalogRepo struct{ s *fakeStore }

func (r *fakeCatalogRepo) Create(ctx context.Context, item *model.CatalogItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	i := *item
	r.s.catalog[item.ID] = &i
	return nil
}

func (r *fakeCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CatalogItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.catalog[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	i := *item
	return &i, nil
}

func (r *fakeCatalogRepo) List(ctx context.Context, search string, page, limit int) ([]model.CatalogItem, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []model.CatalogItem
	for _, i := range r.s.catalog {
		result = append(result, *i)
	}
	return result, int64(len(result)), nil
}

// --- AuditService ---

type fakeAudit struct{ s *fakeStore }

func (a *fakeAudit) Record(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{}) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if a.s.auditErr != nil {
		return a.s.auditErr
	}
	a.s.auditActions = append(a.s.auditActions, action)
	return nil
}

func (a *fakeAudit) GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	return nil, 0, nil
}
