package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoutingKeyGrievanceCreated = "grievance.created"
	RoutingKeyStatusUpdate     = "grievance.status.updated"
	RoutingKeyAssigned         = "grievance.assigned"
	RoutingKeyAlertRaised      = "grievance.alert.raised"
)

// Event is a message queued for publishing alongside a grievance change.
type Event struct {
	RoutingKey string
	Payload    interface{}
}

type GrievanceCreatedMessage struct {
	GrievanceID string `json:"grievance_id"`
	Category    string `json:"category"`
	Department  string `json:"department"`
	Priority    string `json:"priority"`
	City        string `json:"city"`
	State       string `json:"state"`
	ReporterID  string `json:"reporter_id,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

type StatusUpdateMessage struct {
	GrievanceID string `json:"grievance_id"`
	Category    string `json:"category"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
	ReporterID  string `json:"reporter_id,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

type AssignmentMessage struct {
	GrievanceID string `json:"grievance_id"`
	Category    string `json:"category"`
	Officer     string `json:"officer,omitempty"`
	ReporterID  string `json:"reporter_id,omitempty"`
	City        string `json:"city"`
	Timestamp   int64  `json:"timestamp"`
}

type AlertRaisedMessage struct {
	GrievanceID string `json:"grievance_id"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	DaysOverdue *int   `json:"days_overdue,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	Timestamp   int64  `json:"timestamp"`
}

func NewGrievanceCreatedEvent(g *Grievance) Event {
	return Event{
		RoutingKey: RoutingKeyGrievanceCreated,
		Payload: GrievanceCreatedMessage{
			GrievanceID: g.ID.String(),
			Category:    g.Category,
			Department:  g.Department,
			Priority:    string(g.Priority),
			City:        g.City,
			State:       g.State,
			ReporterID:  g.ReporterID,
			Timestamp:   g.Timestamp.Unix(),
		},
	}
}

func NewStatusUpdateEvent(g *Grievance, old Status, at time.Time) Event {
	return Event{
		RoutingKey: RoutingKeyStatusUpdate,
		Payload: StatusUpdateMessage{
			GrievanceID: g.ID.String(),
			Category:    g.Category,
			OldStatus:   string(old),
			NewStatus:   string(g.Status),
			ReporterID:  g.ReporterID,
			Timestamp:   at.Unix(),
		},
	}
}

func NewAssignmentEvent(g *Grievance, at time.Time) Event {
	officer := ""
	if g.AssignedTo != nil {
		officer = *g.AssignedTo
	}
	return Event{
		RoutingKey: RoutingKeyAssigned,
		Payload: AssignmentMessage{
			GrievanceID: g.ID.String(),
			Category:    g.Category,
			Officer:     officer,
			ReporterID:  g.ReporterID,
			City:        g.City,
			Timestamp:   at.Unix(),
		},
	}
}

func NewAlertRaisedEvent(a Alert, at time.Time) Event {
	return Event{
		RoutingKey: RoutingKeyAlertRaised,
		Payload: AlertRaisedMessage{
			GrievanceID: a.GrievanceID.String(),
			Type:        string(a.Type),
			Message:     a.Message,
			DaysOverdue: a.DaysOverdue,
			City:        a.City,
			State:       a.State,
			Timestamp:   at.Unix(),
		},
	}
}

// Recipient keys for jurisdiction-wide notification channels.
func CityChannel(city string) string   { return "city:" + city }
func StateChannel(state string) string { return "state:" + state }

// IsChannelKey reports whether id is shaped like a channel recipient key and
// so cannot be used as a user id.
func IsChannelKey(id string) bool {
	return strings.HasPrefix(id, "city:") || strings.HasPrefix(id, "state:")
}

type Notification struct {
	ID          uuid.UUID  `json:"id"`
	Recipient   string     `json:"recipient"`
	GrievanceID *uuid.UUID `json:"grievance_id,omitempty"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	IsRead      bool       `json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

type WaitlistRequest struct {
	Email string `json:"email" binding:"required"`
}

type WaitlistResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
