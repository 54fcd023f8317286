package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/application/service"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
	demoService      *service.DemoService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService, demoService *service.DemoService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, demoService: demoService}
}

// GetStats handles getting dashboard statistics
func (h *DashboardHandler) GetStats(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}

// LoadDemo fills the account with sample customers, products and settings
func (h *DashboardHandler) LoadDemo(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	result, err := h.demoService.Load(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Demo data loaded", result)
}
