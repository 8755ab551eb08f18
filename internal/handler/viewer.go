package handler

import (
	"net/http"
	"strings"

	"grievance-service/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	headerUserID   = "X-User-ID"
	headerUserName = "X-User-Name"
	headerUserRole = "X-User-Role"
	headerCity     = "X-User-City"
	headerState    = "X-User-State"
)

// viewerFromHeaders reads the identity the gateway injects. It writes a 401
// and returns false when the caller cannot be identified.
func viewerFromHeaders(c *gin.Context) (model.Viewer, bool) {
	v := model.Viewer{
		UserID: strings.TrimSpace(c.GetHeader(headerUserID)),
		Name:   strings.TrimSpace(c.GetHeader(headerUserName)),
		Role:   model.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(headerUserRole)))),
		Jurisdiction: model.Jurisdiction{
			City:  strings.TrimSpace(c.GetHeader(headerCity)),
			State: strings.TrimSpace(c.GetHeader(headerState)),
		},
	}

	if model.IsChannelKey(v.UserID) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return v, false
	}

	switch v.Role {
	case model.RoleOfficer, model.RoleAdmin:
		return v, true
	case model.RoleCitizen, "":
		if v.UserID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return v, false
		}
		v.Role = model.RoleCitizen
		return v, true
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown role"})
	return v, false
}
