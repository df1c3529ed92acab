package service

import (
	"context"
	"fmt"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/siret"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateClientRequest struct {
	CompanyID      string `json:"company_id" binding:"required"`
	Name           string `json:"name" binding:"required"`
	ContactPerson  string `json:"contact_person"`
	Email          string `json:"email" binding:"omitempty,email"`
	Phone          string `json:"phone"`
	BillingAddress string `json:"billing_address"`
	SIREN          string `json:"siren"`
	SIRET          string `json:"siret"`
	VATNumber      string `json:"vat_number"`
}

type UpdateClientRequest struct {
	Name           *string `json:"name"`
	ContactPerson  *string `json:"contact_person"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone"`
	BillingAddress *string `json:"billing_address"`
	SIREN          *string `json:"siren"`
	SIRET          *string `json:"siret"`
	VATNumber      *string `json:"vat_number"`
	IsActive       *bool   `json:"is_active"`
}

type ClientResponse struct {
	ID             string `json:"id"`
	CompanyID      string `json:"company_id"`
	Name           string `json:"name"`
	ContactPerson  string `json:"contact_person"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	BillingAddress string `json:"billing_address"`
	SIREN          string `json:"siren"`
	SIRET          string `json:"siret"`
	VATNumber      string `json:"vat_number"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest, actorID string) (ClientResponse, error)
	UpdateClient(ctx context.Context, id string, req UpdateClientRequest, actorID string) (ClientResponse, error)
	GetClient(ctx context.Context, id string) (ClientResponse, error)
	ListClients(ctx context.Context, companyID, search string, page, limit int) ([]ClientResponse, int64, error)
}

type clientService struct {
	repo  repository.ClientRepository
	audit AuditService
}

func NewClientService(repo repository.ClientRepository, audit AuditService) ClientService {
	return &clientService{repo: repo, audit: audit}
}

// --- Implementation ---

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest, actorID string) (ClientResponse, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return ClientResponse{}, apperror.Validation("invalid company_id: %s", req.CompanyID)
	}
	if err := siret.ValidateIdentifiers(req.SIREN, req.SIRET); err != nil {
		return ClientResponse{}, apperror.Validation("invalid tax identifiers: %v", err)
	}

	client := &model.Client{
		CompanyID:      companyID,
		Name:           req.Name,
		ContactPerson:  req.ContactPerson,
		Email:          req.Email,
		Phone:          req.Phone,
		BillingAddress: req.BillingAddress,
		SIREN:          req.SIREN,
		SIRET:          req.SIRET,
		VATNumber:      req.VATNumber,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to create client: %w", err)
	}

	_ = s.audit.Record(ctx, parseActor(actorID), model.ActionCreateClient, client.ID.String(), client.Name, nil)

	return toClientResponse(*client), nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest, actorID string) (ClientResponse, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, apperror.Validation("invalid client id: %s", id)
	}

	client, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		return ClientResponse{}, notFoundOr(err, "client %s", id)
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.ContactPerson != nil {
		client.ContactPerson = *req.ContactPerson
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.BillingAddress != nil {
		client.BillingAddress = *req.BillingAddress
	}
	if req.SIREN != nil {
		client.SIREN = *req.SIREN
	}
	if req.SIRET != nil {
		client.SIRET = *req.SIRET
	}
	if req.VATNumber != nil {
		client.VATNumber = *req.VATNumber
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := siret.ValidateIdentifiers(client.SIREN, client.SIRET); err != nil {
		return ClientResponse{}, apperror.Validation("invalid tax identifiers: %v", err)
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to update client: %w", err)
	}

	_ = s.audit.Record(ctx, parseActor(actorID), model.ActionUpdateClient, client.ID.String(), client.Name, nil)

	return toClientResponse(*client), nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (ClientResponse, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, apperror.Validation("invalid client id: %s", id)
	}
	client, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		return ClientResponse{}, notFoundOr(err, "client %s", id)
	}
	return toClientResponse(*client), nil
}

func (s *clientService) ListClients(ctx context.Context, companyID, search string, page, limit int) ([]ClientResponse, int64, error) {
	parsed, err := uuid.Parse(companyID)
	if err != nil {
		return nil, 0, apperror.Validation("invalid company_id: %s", companyID)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	clients, total, err := s.repo.List(ctx, parsed, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}

	result := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		result = append(result, toClientResponse(c))
	}
	return result, total, nil
}

// --- Mapping ---

func toClientResponse(c model.Client) ClientResponse {
	return ClientResponse{
		ID:             c.ID.String(),
		CompanyID:      c.CompanyID.String(),
		Name:           c.Name,
		ContactPerson:  c.ContactPerson,
		Email:          c.Email,
		Phone:          c.Phone,
		BillingAddress: c.BillingAddress,
		SIREN:          c.SIREN,
		SIRET:          c.SIRET,
		VATNumber:      c.VATNumber,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
