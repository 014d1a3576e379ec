package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/weighbridge/backend/internal/application/billing"
	"github.com/weighbridge/backend/internal/domain/identity"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/overdue", h.Overdue)
		invoices.GET("/number/:number", h.GetByNumber)
		invoices.GET("/:id", h.GetByID)
		invoices.POST("/:id/send", h.MarkSent)
		invoices.POST("/:id/pay", h.MarkPaid)
		invoices.POST("/:id/pdf", h.AttachPDF)
		invoices.DELETE("/:id", h.Delete)
	}
}

// Create builds an invoice over a vendor's settled entries
func (h *InvoiceHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	var req billingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.invoiceService.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns invoices for the caller's plant
func (h *InvoiceHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	var filter billingapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, invoices, total, page, pageSize)
}

// Overdue returns unpaid invoices past their due date
func (h *InvoiceHandler) Overdue(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	plantID, err := optionalPlantParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid plant ID")
		return
	}

	invoices, err := h.invoiceService.Overdue(c.Request.Context(), scope, plantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// GetByID returns a single invoice with its entry references
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.invoiceService.GetByID(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber returns an invoice by its invoice number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	resp, err := h.invoiceService.GetByNumber(c.Request.Context(), scope, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkSent transitions a draft invoice to sent
func (h *InvoiceHandler) MarkSent(c *gin.Context) {
	h.applyTransition(c, h.invoiceService.MarkSent)
}

// MarkPaid transitions a sent invoice to paid
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	h.applyTransition(c, h.invoiceService.MarkPaid)
}

// AttachPDF records the generated document path on an invoice
func (h *InvoiceHandler) AttachPDF(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req billingapp.AttachPDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.invoiceService.AttachPDF(c.Request.Context(), scope, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete soft-deletes an unpaid invoice and releases its entries
func (h *InvoiceHandler) Delete(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), scope, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *InvoiceHandler) applyTransition(c *gin.Context, transition func(context.Context, identity.Scope, uuid.UUID) (*billingapp.InvoiceResponse, error)) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := transition(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// optionalPlantParam parses the optional plant_id query parameter
func optionalPlantParam(c *gin.Context) (uuid.UUID, error) {
	raw := c.Query("plant_id")
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}
