package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	docService service.DocumentService
}

func NewQuoteHandler(docService service.DocumentService) *QuoteHandler {
	return &QuoteHandler{docService: docService}
}

func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/quotes")
	group.Use(middleware.RequireRole("admin", "manager", "staff"))
	{
		group.POST("", h.CreateQuote)
		group.GET("", h.ListQuotes)
		group.GET("/:id", h.GetQuote)
		group.PUT("/:id", h.UpdateQuote)
		group.DELETE("/:id", h.DeleteQuote)
		group.POST("/:id/status", h.TransitionQuote)
		group.POST("/:id/convert", h.ConvertQuote)
	}
}

// CreateQuote handles POST /api/quotes
// @Summary      Create quote
// @Description  Creates a new quote in DRAFT status with computed line and document totals
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDocumentRequest  true  "Create Quote Payload"
// @Success      201      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.docService.CreateDocument(c.Request.Context(), model.DocTypeQuote, req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// ListQuotes handles GET /api/quotes with status/client/search filters
// @Summary      List quotes
// @Description  Retrieves a paginated list of quotes, optionally filtered
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Filter by status"
// @Param        client_id  query     string  false  "Filter by client"
// @Param        search     query     string  false  "Search by document number"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Router       /api/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	filter := documentFilterFromQuery(c)

	docs, total, err := h.docService.ListDocuments(c.Request.Context(), model.DocTypeQuote, filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"documents": docs,
		"total":     total,
		"page":      filter.Page,
		"limit":     filter.Limit,
	}))
}

// GetQuote handles GET /api/quotes/:id
// @Summary      Get quote
// @Description  Fetch a single quote with its lines and status history
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.DocumentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	doc, err := h.docService.GetDocument(c.Request.Context(), model.DocTypeQuote, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// UpdateQuote handles PUT /api/quotes/:id
// @Summary      Update quote
// @Description  Replaces the lines and header fields of an editable quote and recomputes totals
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Quote ID"
// @Param        payload  body      service.UpdateDocumentRequest  true  "Update Quote Payload"
// @Success      200      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/quotes/{id} [put]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	var req service.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.docService.UpdateDocument(c.Request.Context(), model.DocTypeQuote, c.Param("id"), req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// DeleteQuote handles DELETE /api/quotes/:id
// @Summary      Delete quote
// @Description  Soft deletes a DRAFT quote
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /api/quotes/{id} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	if err := h.docService.DeleteDocument(c.Request.Context(), model.DocTypeQuote, c.Param("id"), actorID(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Quote deleted successfully"))
}

// TransitionQuote handles POST /api/quotes/:id/status
// @Summary      Transition quote status
// @Description  Moves the quote through its status lifecycle and records the change in history
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Quote ID"
// @Param        payload  body      service.TransitionRequest  true  "Target Status"
// @Success      200      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/quotes/{id}/status [post]
func (h *QuoteHandler) TransitionQuote(c *gin.Context) {
	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.docService.Transition(c.Request.Context(), model.DocTypeQuote, c.Param("id"), req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// ConvertQuote handles POST /api/quotes/:id/convert
// @Summary      Convert quote to invoice
// @Description  Creates a DRAFT invoice from an ACCEPTED quote and marks the quote CONVERTED
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      201  {object}  response.Response{data=service.DocumentResponse}
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /api/quotes/{id}/convert [post]
func (h *QuoteHandler) ConvertQuote(c *gin.Context) {
	invoice, err := h.docService.ConvertQuoteToInvoice(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// documentFilterFromQuery extracts the shared list controls from the query string.
func documentFilterFromQuery(c *gin.Context) service.DocumentFilter {
	params := pagination.Parse(c)
	return service.DocumentFilter{
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		Search:   c.Query("search"),
		Page:     params.Page,
		Limit:    params.Limit,
	}
}
