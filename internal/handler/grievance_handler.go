package handler

import (
	"net/http"
	"strings"

	"grievance-service/internal/model"
	"grievance-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GrievanceHandler struct {
	grievanceService *service.GrievanceService
}

func NewGrievanceHandler(grievanceService *service.GrievanceService) *GrievanceHandler {
	return &GrievanceHandler{grievanceService: grievanceService}
}

// Handles POST /grievances - classifies and files a citizen complaint.
func (h *GrievanceHandler) Create(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}

	var req model.CreateGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.grievanceService.Submit(c.Request.Context(), viewer, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Grievance submitted successfully",
		"grievance": g,
	})
}

// Handles GET /grievances - the viewer's queue, optionally filtered by
// status, priority and category.
func (h *GrievanceHandler) List(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}

	filter := model.QueueFilter{
		Status:   model.Status(strings.ToUpper(c.Query("status"))),
		Priority: model.Priority(strings.ToUpper(c.Query("priority"))),
		Category: c.Query("category"),
	}

	response, err := h.grievanceService.Queue(c.Request.Context(), viewer, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *GrievanceHandler) Get(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}
	id, ok := grievanceID(c)
	if !ok {
		return
	}

	g, err := h.grievanceService.Get(c.Request.Context(), viewer, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// Handles PATCH /grievances/:id/status.
func (h *GrievanceHandler) UpdateStatus(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}
	id, ok := grievanceID(c)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Status = model.Status(strings.ToUpper(string(req.Status)))

	g, err := h.grievanceService.UpdateStatus(c.Request.Context(), viewer, id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Status updated",
		"grievance": g,
	})
}

// Handles PATCH /grievances/:id/assignment. An empty officer unassigns.
func (h *GrievanceHandler) Assign(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}
	id, ok := grievanceID(c)
	if !ok {
		return
	}

	var req model.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.grievanceService.Assign(c.Request.Context(), viewer, id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Assignment updated",
		"grievance": g,
	})
}

func (h *GrievanceHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "grievance-service",
	})
}

func grievanceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid grievance id"})
		return uuid.Nil, false
	}
	return id, true
}
