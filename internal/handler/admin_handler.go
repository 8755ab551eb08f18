package handler

import (
	"context"
	"net/http"

	"grievance-service/internal/model"

	"github.com/gin-gonic/gin"
)

type OutboxStats interface {
	GetStats(ctx context.Context) (map[string]int, error)
}

type AdminHandler struct {
	outbox OutboxStats
}

// NewAdminHandler takes a nil outbox when the service runs without one.
func NewAdminHandler(outbox OutboxStats) *AdminHandler {
	return &AdminHandler{outbox: outbox}
}

// Handles GET /admin/outbox/stats - message counts per outbox status.
func (h *AdminHandler) OutboxStats(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}
	if viewer.Role != model.RoleAdmin {
		writeError(c, model.ErrAccessDenied)
		return
	}

	if h.outbox == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "stats": map[string]int{}})
		return
	}

	stats, err := h.outbox.GetStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "stats": stats})
}
