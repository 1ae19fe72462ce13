package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/healthsphere/internal/pkg/response"
	"github.com/xxxsen/healthsphere/internal/service"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) RecentActivity(c *gin.Context) {
	feed := h.dashboard.RecentActivity(c.Request.Context(), getUserID(c))
	response.Success(c, gin.H{"activities": feed})
}

func (h *DashboardHandler) HealthInsights(c *gin.Context) {
	insights := h.dashboard.HealthInsights(c.Request.Context(), getUserID(c))
	response.Success(c, insights)
}
