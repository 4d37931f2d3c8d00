package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/report"
)

// DashboardHandler serves the back office dashboard
type DashboardHandler struct {
	BaseHandler
	dashboardService *report.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *report.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get godoc
// @Summary      Dashboard figures
// @Description  Revenue and order totals, month over month change, recent orders and top products
// @Tags         admin-dashboard
// @Produce      json
// @Success      200 {object} report.DashboardResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := h.dashboardService.Get(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dashboard)
}
