package handler

import (
	"github.com/aquaportal/backend/internal/application/dashboard"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the admin and customer dashboards
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Overview godoc
// @Summary      Portal-wide totals
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=dashboard.Overview}
// @Router       /api/v1/admin/dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	overview, err := h.dashboardService.Overview(c.Request.Context(), principal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// CustomerSummary godoc
// @Summary      The caller's balance and activity
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=dashboard.CustomerSummary}
// @Router       /api/v1/dashboard [get]
func (h *DashboardHandler) CustomerSummary(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	summary, err := h.dashboardService.CustomerSummary(c.Request.Context(), principal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
