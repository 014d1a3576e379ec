package handler

import (
	"github.com/gin-gonic/gin"

	refdataapp "github.com/weighbridge/backend/internal/application/refdata"
)

// PlantHandler handles plant API endpoints
type PlantHandler struct {
	BaseHandler
	plantService *refdataapp.PlantService
}

// NewPlantHandler creates a new PlantHandler
func NewPlantHandler(plantService *refdataapp.PlantService) *PlantHandler {
	return &PlantHandler{plantService: plantService}
}

// RegisterRoutes registers plant routes
func (h *PlantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plants := rg.Group("/plants")
	{
		plants.POST("", h.Create)
		plants.GET("", h.List)
		plants.GET("/:id", h.GetByID)
		plants.PUT("/:id", h.Update)
		plants.DELETE("/:id", h.Delete)
	}
}

// Create registers a plant. Admin only.
func (h *PlantHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	var req refdataapp.CreatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.plantService.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns all active plants
func (h *PlantHandler) List(c *gin.Context) {
	var filter refdataapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plants, err := h.plantService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plants)
}

// GetByID returns a single plant
func (h *PlantHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plant ID")
		return
	}

	resp, err := h.plantService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update modifies plant details. Admin only.
func (h *PlantHandler) Update(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plant ID")
		return
	}

	var req refdataapp.UpdatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.plantService.Update(c.Request.Context(), scope, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete soft-deletes a plant. Admin only.
func (h *PlantHandler) Delete(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Missing access scope")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid plant ID")
		return
	}

	if err := h.plantService.Delete(c.Request.Context(), scope, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
