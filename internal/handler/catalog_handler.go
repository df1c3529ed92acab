package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/catalog-items")
	{
		group.POST("", middleware.RequireRole("admin", "manager"), h.CreateItem)
		group.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListItems)
	}
}

// CreateItem handles POST /api/catalog-items
// @Summary      Create catalog item
// @Description  Creates a reusable product or service with a default price and tax rate
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCatalogItemRequest  true  "Create Catalog Item Payload"
// @Success      201      {object}  response.Response{data=service.CatalogItemResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/catalog-items [post]
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req service.CreateCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.catalogService.CreateItem(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// ListItems handles GET /api/catalog-items
// @Summary      List catalog items
// @Description  Retrieves a paginated list of active catalog items with optional search
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Search by SKU or name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/catalog-items [get]
func (h *CatalogHandler) ListItems(c *gin.Context) {
	params := pagination.Parse(c)

	items, total, err := h.catalogService.ListItems(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
