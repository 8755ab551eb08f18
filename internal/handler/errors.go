package handler

import (
	"errors"
	"log"
	"net/http"

	"grievance-service/internal/model"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrTooManyEvidence),
		errors.Is(err, model.ErrInvalidEmail),
		errors.Is(err, model.ErrUnknownOfficer):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, model.ErrResolutionNoteRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrAnalysisFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
