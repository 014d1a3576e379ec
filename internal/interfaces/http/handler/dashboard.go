package handler

import (
	"github.com/gin-gonic/gin"

	reportapp "github.com/weighbridge/backend/internal/application/report"
)

// DashboardHandler handles dashboard API endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Get)
}

// Get returns the operational summary for the caller's plant. Admins may
// pass plant_id to inspect a specific plant or omit it for the rollup.
func (h *DashboardHandler) Get(c *gin.Context) {
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

	dashboard, err := h.dashboardService.Get(c.Request.Context(), scope, plantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}
