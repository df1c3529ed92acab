package service

import (
	"context"
	"fmt"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateCatalogItemRequest struct {
	SKU         string `json:"sku" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ItemType    string `json:"item_type" binding:"required,oneof=PRODUCT SERVICE"`
	UnitPrice   string `json:"unit_price" binding:"required"`
	TaxRate     string `json:"tax_rate"`
}

type CatalogItemResponse struct {
	ID          string `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ItemType    string `json:"item_type"`
	UnitPrice   string `json:"unit_price"`
	TaxRate     string `json:"tax_rate"`
	IsActive    bool   `json:"is_active"`
}

// --- Interface ---

type CatalogService interface {
	CreateItem(ctx context.Context, req CreateCatalogItemRequest) (CatalogItemResponse, error)
	ListItems(ctx context.Context, search string, page, limit int) ([]CatalogItemResponse, int64, error)
}

type catalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

// --- Implementation ---

func (s *catalogService) CreateItem(ctx context.Context, req CreateCatalogItemRequest) (CatalogItemResponse, error) {
	unitPrice, err := parseRequiredDecimal("unit_price", req.UnitPrice)
	if err != nil {
		return CatalogItemResponse{}, err
	}
	if unitPrice.IsNegative() {
		return CatalogItemResponse{}, apperror.Validation("unit_price cannot be negative")
	}

	taxRate := decimal.Zero
	if req.TaxRate != "" {
		taxRate, err = parseRequiredDecimal("tax_rate", req.TaxRate)
		if err != nil {
			return CatalogItemResponse{}, err
		}
		if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
			return CatalogItemResponse{}, apperror.Validation("tax_rate must be between 0 and 100")
		}
	}

	item := &model.CatalogItem{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		ItemType:    req.ItemType,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return CatalogItemResponse{}, fmt.Errorf("failed to create catalog item: %w", err)
	}

	return toCatalogItemResponse(*item), nil
}

func (s *catalogService) ListItems(ctx context.Context, search string, page, limit int) ([]CatalogItemResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	items, total, err := s.repo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch catalog items: %w", err)
	}

	result := make([]CatalogItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, toCatalogItemResponse(item))
	}
	return result, total, nil
}

// --- Mapping ---

func toCatalogItemResponse(item model.CatalogItem) CatalogItemResponse {
	return CatalogItemResponse{
		ID:          item.ID.String(),
		SKU:         item.SKU,
		Name:        item.Name,
		Description: item.Description,
		ItemType:    item.ItemType,
		UnitPrice:   item.UnitPrice.String(),
		TaxRate:     item.TaxRate.String(),
		IsActive:    item.IsActive,
	}
}
