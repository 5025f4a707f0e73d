package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/api/dashboard")
	dashboard.Use(middleware.RequireFeature("/dashboard", model.AccessView))
	{
		dashboard.GET("/stats", h.GetStats)
		dashboard.GET("/activity", h.GetRecentActivity)
	}
}

// GetStats returns the dashboard header aggregates
// @Summary      Get dashboard statistics
// @Description  Returns revenue from paid invoices, total expenses, profit, customer count and pending invoice count
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.DashboardStats}
// @Failure      500  {object}  response.Response
// @Router       /api/dashboard/stats [get]
func (h *StatisticsHandler) GetStats(c *gin.Context) {
	stats, err := h.statisticsService.GetDashboardStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to compute statistics"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetRecentActivity returns the merged invoice/expense activity feed
// @Summary      Get recent activity
// @Description  Returns the most recent invoices and expenses merged into one feed, newest first
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.ActivityEntry}
// @Failure      500  {object}  response.Response
// @Router       /api/dashboard/activity [get]
func (h *StatisticsHandler) GetRecentActivity(c *gin.Context) {
	activity, err := h.statisticsService.GetRecentActivity(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch activity"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, activity))
}
