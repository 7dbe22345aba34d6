package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizbank/admin-service/internal/services"
	"github.com/quizbank/admin-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetDashboardStats returns aggregate content counts
// @Summary Get dashboard statistics
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.DashboardStats
// @Failure 503 {object} ErrorResponse
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetDashboardStats(c *gin.Context) {
	h.LogRequest(c, "Getting dashboard stats")

	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
