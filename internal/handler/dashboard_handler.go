package handler

import (
	"net/http"

	"grievance-service/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Handles GET /dashboard/alerts. Admins may narrow with ?city=.
func (h *DashboardHandler) Alerts(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}

	response, err := h.dashboardService.Alerts(c.Request.Context(), viewer, c.Query("city"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Handles GET /dashboard/rollup.
func (h *DashboardHandler) Rollup(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}

	response, err := h.dashboardService.Rollup(c.Request.Context(), viewer, c.Query("city"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *DashboardHandler) Officers(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}

	officers := h.dashboardService.Officers(viewer)
	c.JSON(http.StatusOK, gin.H{
		"officers": officers,
		"total":    len(officers),
	})
}
