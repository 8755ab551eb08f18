package handler

import (
	"errors"
	"net/http"

	"grievance-service/internal/model"
	"grievance-service/internal/service"

	"github.com/gin-gonic/gin"
)

type WaitlistHandler struct {
	waitlistService *service.WaitlistService
}

func NewWaitlistHandler(waitlistService *service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlistService: waitlistService}
}

// Handles POST /waitlist. Needs no identity headers.
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req model.WaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.waitlistService.Join(c.Request.Context(), req.Email)
	if errors.Is(err, model.ErrAlreadyRegistered) {
		c.JSON(http.StatusConflict, response)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}
