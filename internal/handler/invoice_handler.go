package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	docService service.DocumentService
}

func NewInvoiceHandler(docService service.DocumentService) *InvoiceHandler {
	return &InvoiceHandler{docService: docService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/invoices")
	group.Use(middleware.RequireRole("admin", "manager", "staff"))
	{
		group.POST("", h.CreateInvoice)
		group.GET("", h.ListInvoices)
		group.GET("/:id", h.GetInvoice)
		group.PUT("/:id", h.UpdateInvoice)
		group.DELETE("/:id", h.DeleteInvoice)
		group.POST("/:id/status", h.TransitionInvoice)
		group.POST("/:id/payments", h.RecordPayment)
	}

	// Overdue sweep is an operational action, not a per-document one
	router.POST("/api/invoices/refresh-overdue", middleware.RequireRole("admin", "manager"), h.RefreshOverdue)
}

// CreateInvoice handles POST /api/invoices
// @Summary      Create invoice
// @Description  Creates a new standalone invoice in DRAFT status with computed totals
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDocumentRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.docService.CreateDocument(c.Request.Context(), model.DocTypeInvoice, req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// ListInvoices handles GET /api/invoices with status/client/search filters
// @Summary      List invoices
// @Description  Retrieves a paginated list of invoices, optionally filtered
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Filter by status"
// @Param        client_id  query     string  false  "Filter by client"
// @Param        search     query     string  false  "Search by document number"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filter := documentFilterFromQuery(c)

	docs, total, err := h.docService.ListDocuments(c.Request.Context(), model.DocTypeInvoice, filter)
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

// GetInvoice handles GET /api/invoices/:id
// @Summary      Get invoice
// @Description  Fetch a single invoice with its lines and status history
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.DocumentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	doc, err := h.docService.GetDocument(c.Request.Context(), model.DocTypeInvoice, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// UpdateInvoice handles PUT /api/invoices/:id
// @Summary      Update invoice
// @Description  Replaces the lines and header fields of an editable invoice and recomputes totals
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Invoice ID"
// @Param        payload  body      service.UpdateDocumentRequest  true  "Update Invoice Payload"
// @Success      200      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req service.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.docService.UpdateDocument(c.Request.Context(), model.DocTypeInvoice, c.Param("id"), req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// DeleteInvoice handles DELETE /api/invoices/:id
// @Summary      Delete invoice
// @Description  Soft deletes a DRAFT invoice without recorded payments
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.docService.DeleteDocument(c.Request.Context(), model.DocTypeInvoice, c.Param("id"), actorID(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Invoice deleted successfully"))
}

// TransitionInvoice handles POST /api/invoices/:id/status
// @Summary      Transition invoice status
// @Description  Moves the invoice through its status lifecycle and records the change in history
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Invoice ID"
// @Param        payload  body      service.TransitionRequest  true  "Target Status"
// @Success      200      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/invoices/{id}/status [post]
func (h *InvoiceHandler) TransitionInvoice(c *gin.Context) {
	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.docService.Transition(c.Request.Context(), model.DocTypeInvoice, c.Param("id"), req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// RecordPayment handles POST /api/invoices/:id/payments
// @Summary      Record payment
// @Description  Records a payment against an invoice and advances it to PARTIAL or PAID
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Invoice ID"
// @Param        payload  body      service.PaymentRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	var req service.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.docService.RecordPayment(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// RefreshOverdue handles POST /api/invoices/refresh-overdue
// @Summary      Refresh overdue invoices
// @Description  Flips every SENT or PARTIAL invoice past its due date to OVERDUE
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/invoices/refresh-overdue [post]
func (h *InvoiceHandler) RefreshOverdue(c *gin.Context) {
	flipped, err := h.docService.MarkOverdueInvoices(c.Request.Context(), time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"flipped": flipped,
	}))
}
