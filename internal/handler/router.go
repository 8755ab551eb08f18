package handler

import "github.com/gin-gonic/gin"

type Handlers struct {
	Grievance    *GrievanceHandler
	Dashboard    *DashboardHandler
	Waitlist     *WaitlistHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	r.GET("/health", h.Grievance.Health)

	grievances := r.Group("/grievances")
	{
		grievances.POST("", h.Grievance.Create)
		grievances.GET("", h.Grievance.List)
		grievances.GET("/:id", h.Grievance.Get)
		grievances.PATCH("/:id/status", h.Grievance.UpdateStatus)
		grievances.PATCH("/:id/assignment", h.Grievance.Assign)
	}

	dashboard := r.Group("/dashboard")
	{
		dashboard.GET("/alerts", h.Dashboard.Alerts)
		dashboard.GET("/rollup", h.Dashboard.Rollup)
	}
	r.GET("/officers", h.Dashboard.Officers)

	r.POST("/waitlist", h.Waitlist.Join)

	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.Notification.GetNotifications)
		notifications.GET("/stream", h.Notification.StreamNotifications)
		notifications.PATCH("/:id/read", h.Notification.MarkAsRead)
		notifications.PATCH("/read-all", h.Notification.MarkAllAsRead)
	}

	admin := r.Group("/admin")
	{
		admin.GET("/outbox/stats", h.Admin.OutboxStats)
	}

	return r
}
