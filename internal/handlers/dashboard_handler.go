package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/agroleads/api/internal/errors"
	"github.com/agroleads/api/internal/services"
)

// DashboardHandler serves the reporting aggregates.
type DashboardHandler struct {
	service services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler instance.
func NewDashboardHandler(service services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// Stats handles GET /api/v1/leads/statistics/dashboard.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to compute dashboard statistics", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
