package service

import (
	"context"
	"errors"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/siret"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateCompanyRequest struct {
	Name                string `json:"name" binding:"required"`
	SIREN               string `json:"siren"`
	QuotePrefix         string `json:"quote_prefix"`
	InvoicePrefix       string `json:"invoice_prefix"`
	DefaultCurrency     string `json:"default_currency"`
	ShippingTaxed       *bool  `json:"shipping_taxed"`
	AllowNegativePrices *bool  `json:"allow_negative_prices"`
}

type UpdateCompanyRequest struct {
	Name                *string `json:"name"`
	SIREN               *string `json:"siren"`
	QuotePrefix         *string `json:"quote_prefix"`
	InvoicePrefix       *string `json:"invoice_prefix"`
	DefaultCurrency     *string `json:"default_currency"`
	ShippingTaxed       *bool   `json:"shipping_taxed"`
	AllowNegativePrices *bool   `json:"allow_negative_prices"`
}

type CompanyResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	SIREN               string `json:"siren"`
	QuotePrefix         string `json:"quote_prefix"`
	InvoicePrefix       string `json:"invoice_prefix"`
	DefaultCurrency     string `json:"default_currency"`
	ShippingTaxed       bool   `json:"shipping_taxed"`
	AllowNegativePrices bool   `json:"allow_negative_prices"`
	CreatedAt           string `json:"created_at"`
}

// --- Interface ---

// CompanySettingsService manages the issuing entity and its numbering and
// calculation policy. Prefix changes only affect documents numbered after the
// change; existing document numbers are immutable.
type CompanySettingsService interface {
	CreateCompany(ctx context.Context, req CreateCompanyRequest) (CompanyResponse, error)
	GetCompany(ctx context.Context, id string) (CompanyResponse, error)
	UpdateCompany(ctx context.Context, id string, req UpdateCompanyRequest) (CompanyResponse, error)
}

type companySettingsService struct {
	repo repository.CompanyRepository
}

func NewCompanySettingsService(repo repository.CompanyRepository) CompanySettingsService {
	return &companySettingsService{repo: repo}
}

// --- Implementation ---

func (s *companySettingsService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (CompanyResponse, error) {
	if req.SIREN != "" {
		if err := siret.ValidateSIREN(req.SIREN); err != nil {
			return CompanyResponse{}, apperror.Wrap(apperror.KindValidation, err, "invalid company SIREN")
		}
	}

	company := &model.Company{
		Name:            req.Name,
		SIREN:           req.SIREN,
		QuotePrefix:     orDefault(req.QuotePrefix, "QUO"),
		InvoicePrefix:   orDefault(req.InvoicePrefix, "INV"),
		DefaultCurrency: orDefault(req.DefaultCurrency, "EUR"),
	}
	if req.ShippingTaxed != nil {
		company.ShippingTaxed = *req.ShippingTaxed
	}
	if req.AllowNegativePrices != nil {
		company.AllowNegativePrices = *req.AllowNegativePrices
	}

	if err := s.repo.Create(ctx, company); err != nil {
		return CompanyResponse{}, err
	}

	return toCompanyResponse(company), nil
}

func (s *companySettingsService) GetCompany(ctx context.Context, id string) (CompanyResponse, error) {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return CompanyResponse{}, err
	}
	return toCompanyResponse(company), nil
}

func (s *companySettingsService) UpdateCompany(ctx context.Context, id string, req UpdateCompanyRequest) (CompanyResponse, error) {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return CompanyResponse{}, err
	}

	if req.SIREN != nil && *req.SIREN != "" {
		if err := siret.ValidateSIREN(*req.SIREN); err != nil {
			return CompanyResponse{}, apperror.Wrap(apperror.KindValidation, err, "invalid company SIREN")
		}
		company.SIREN = *req.SIREN
	}
	if req.Name != nil && *req.Name != "" {
		company.Name = *req.Name
	}
	if req.QuotePrefix != nil && *req.QuotePrefix != "" {
		company.QuotePrefix = *req.QuotePrefix
	}
	if req.InvoicePrefix != nil && *req.InvoicePrefix != "" {
		company.InvoicePrefix = *req.InvoicePrefix
	}
	if req.DefaultCurrency != nil && *req.DefaultCurrency != "" {
		company.DefaultCurrency = *req.DefaultCurrency
	}
	if req.ShippingTaxed != nil {
		company.ShippingTaxed = *req.ShippingTaxed
	}
	if req.AllowNegativePrices != nil {
		company.AllowNegativePrices = *req.AllowNegativePrices
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return CompanyResponse{}, err
	}

	return toCompanyResponse(company), nil
}

func (s *companySettingsService) findCompany(ctx context.Context, id string) (*model.Company, error) {
	companyID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid company id %q", id)
	}

	company, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("company %s not found", id)
		}
		return nil, err
	}
	return company, nil
}

func toCompanyResponse(c *model.Company) CompanyResponse {
	return CompanyResponse{
		ID:                  c.ID.String(),
		Name:                c.Name,
		SIREN:               c.SIREN,
		QuotePrefix:         c.QuotePrefix,
		InvoicePrefix:       c.InvoicePrefix,
		DefaultCurrency:     c.DefaultCurrency,
		ShippingTaxed:       c.ShippingTaxed,
		AllowNegativePrices: c.AllowNegativePrices,
		CreatedAt:           c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
