package handler

import (
	"github.com/gin-gonic/gin"

	weighmentapp "github.com/weighbridge/backend/internal/application/weighment"
)

// EntryHandler handles weighbridge entry API endpoints
type EntryHandler struct {
	BaseHandler
	entryService *weighmentapp.EntryService
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entryService *weighmentapp.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// RegisterRoutes registers entry routes
func (h *EntryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entries := rg.Group("/entries")
	{
		entries.POST("/purchase", h.CreatePurchase)
		entries.POST("/sale", h.CreateSale)
		entries.GET("", h.List)
		entries.GET("/:id", h.GetByID)
		entries.POST("/:id/settle", h.Settle)
		entries.POST("/:id/review", h.Review)
		entries.POST("/:id/flag", h.Flag)
		entries.DELETE("/:id", h.Delete)
	}
}

// CreatePurchase opens a purchase entry with the first weighment
func (h *EntryHandler) CreatePurchase(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	var req weighmentapp.CreatePurchaseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.entryService.CreatePurchase(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CreateSale opens a sale entry with the first weighment
func (h *EntryHandler) CreateSale(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	var req weighmentapp.CreateSaleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.entryService.CreateSale(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns entries for the caller's plant with filtering and pagination
func (h *EntryHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	var filter weighmentapp.EntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entries, total, err := h.entryService.List(c.Request.Context(), scope, filter)
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
	h.SuccessWithMeta(c, entries, total, page, pageSize)
}

// GetByID returns a single entry
func (h *EntryHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	resp, err := h.entryService.GetByID(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Settle records the exit weighment and finalizes quantity and amount
func (h *EntryHandler) Settle(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req weighmentapp.SettleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.entryService.Settle(c.Request.Context(), scope, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Review records a supervisor review decision
func (h *EntryHandler) Review(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req weighmentapp.ReviewEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.entryService.Review(c.Request.Context(), scope, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Flag toggles the human-set flag on an entry
func (h *EntryHandler) Flag(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req weighmentapp.FlagEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.entryService.Flag(c.Request.Context(), scope, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete soft-deletes an entry
func (h *EntryHandler) Delete(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	if err := h.entryService.Delete(c.Request.Context(), scope, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
