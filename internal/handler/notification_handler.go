package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"grievance-service/internal/model"
	"grievance-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	jwtSecret           string
}

func NewNotificationHandler(notificationService *service.NotificationService, jwtSecret string) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		jwtSecret:           jwtSecret,
	}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}

	response, err := h.notificationService.List(c.Request.Context(), viewer)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Handles GET /notifications/stream. EventSource cannot set headers, so the
// browser may pass a gateway-issued token as ?token= instead.
func (h *NotificationHandler) StreamNotifications(c *gin.Context) {
	var viewer model.Viewer
	if c.GetHeader(headerUserID) != "" || c.GetHeader(headerUserRole) != "" {
		v, ok := viewerFromHeaders(c)
		if !ok {
			return
		}
		viewer = v
	} else {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		v, err := h.viewerFromToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		viewer = v
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	client := h.notificationService.RegisterClient(viewer)
	defer h.notificationService.UnregisterClient(client)

	c.SSEvent("connected", gin.H{"message": "SSE connection established"})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			return
		case notification, ok := <-client.Channel:
			if !ok {
				return
			}
			data, _ := json.Marshal(notification)
			c.SSEvent("notification", string(data))
			c.Writer.Flush()
		}
	}
}

func (h *NotificationHandler) validateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(h.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	return claims, nil
}

func (h *NotificationHandler) viewerFromToken(tokenString string) (model.Viewer, error) {
	claims, err := h.validateToken(tokenString)
	if err != nil {
		return model.Viewer{}, err
	}

	str := func(key string) string {
		s, _ := claims[key].(string)
		return strings.TrimSpace(s)
	}
	v := model.Viewer{
		UserID: str("user_id"),
		Name:   str("name"),
		Role:   model.Role(strings.ToLower(str("role"))),
		Jurisdiction: model.Jurisdiction{
			City:  str("city"),
			State: str("state"),
		},
	}
	if v.Role == "" {
		v.Role = model.RoleCitizen
	}
	if v.UserID == "" {
		return model.Viewer{}, errors.New("token has no user_id")
	}
	if model.IsChannelKey(v.UserID) {
		return model.Viewer{}, errors.New("token user_id is a channel key")
	}
	return v, nil
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}

	notificationID := c.Param("id")
	if notificationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notification ID required"})
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), viewer, notificationID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	viewer, ok := viewerFromHeaders(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), viewer); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked as read"})
}
