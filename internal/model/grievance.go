package model

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// Rank orders priorities for the officer queue. Unknown values rank below LOW.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 0
	}
	return -1
}

func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusRejected   Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted out of s.
func (s Status) Terminal() bool {
	switch s {
	case StatusResolved, StatusRejected:
		return true
	case StatusPending, StatusInProgress:
		return false
	}
	return false
}

// Label is the human-readable form used in notifications.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	case StatusRejected:
		return "Rejected"
	}
	return string(s)
}

type Role string

const (
	RoleCitizen Role = "citizen"
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
)

type Jurisdiction struct {
	State string `json:"state" mapstructure:"state"`
	City  string `json:"city" mapstructure:"city"`
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

type ImageAnalysis struct {
	Status      string `json:"status"`
	Quality     string `json:"quality"`
	Description string `json:"description"`
}

type AIAnalysis struct {
	Sentiment           string         `json:"sentiment,omitempty"`
	Summary             string         `json:"summary,omitempty"`
	SuggestedResolution string         `json:"suggested_resolution,omitempty"`
	UrgencyReason       string         `json:"urgency_reason,omitempty"`
	RiskFactors         []string       `json:"risk_factors,omitempty"`
	IsCriticalFacility  bool           `json:"is_critical_facility"`
	Language            string         `json:"language,omitempty"`
	UrgencyScore        int            `json:"urgency_score"`
	ImageAnalysis       *ImageAnalysis `json:"image_analysis,omitempty"`
}

type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

const (
	ActionCreated       = "Created"
	ActionStatusUpdated = "Status Updated"
	ActionAssigned      = "Assigned"
	ActionUnassigned    = "Unassigned"
)

// MaxEvidence is the number of media references a citizen may attach.
const MaxEvidence = 3

type Grievance struct {
	ID             uuid.UUID      `json:"id"`
	ReporterID     string         `json:"reporter_id,omitempty"`
	CitizenName    string         `json:"citizen_name"`
	CitizenPhone   *string        `json:"citizen_phone,omitempty"`
	Category       string         `json:"category"`
	Department     string         `json:"department"`
	Description    string         `json:"description"`
	Location       *Location      `json:"location,omitempty"`
	City           string         `json:"city"`
	State          string         `json:"state"`
	Priority       Priority       `json:"priority"`
	Status         Status         `json:"status"`
	Timestamp      time.Time      `json:"timestamp"`
	EvidenceURLs   []string       `json:"evidence_urls"`
	AssignedTo     *string        `json:"assigned_to,omitempty"`
	ResolutionNote *string        `json:"resolution_note,omitempty"`
	AIAnalysis     *AIAnalysis    `json:"ai_analysis,omitempty"`
	History        []HistoryEntry `json:"history"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// UrgencyScore returns the AI urgency score, or 0 when no analysis is attached.
func (g *Grievance) UrgencyScore() int {
	if g.AIAnalysis == nil {
		return 0
	}
	return g.AIAnalysis.UrgencyScore
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (g Grievance) Clone() Grievance {
	c := g
	if g.CitizenPhone != nil {
		v := *g.CitizenPhone
		c.CitizenPhone = &v
	}
	if g.Location != nil {
		v := *g.Location
		c.Location = &v
	}
	if g.AssignedTo != nil {
		v := *g.AssignedTo
		c.AssignedTo = &v
	}
	if g.ResolutionNote != nil {
		v := *g.ResolutionNote
		c.ResolutionNote = &v
	}
	if g.AIAnalysis != nil {
		a := *g.AIAnalysis
		a.RiskFactors = append([]string(nil), g.AIAnalysis.RiskFactors...)
		if g.AIAnalysis.ImageAnalysis != nil {
			ia := *g.AIAnalysis.ImageAnalysis
			a.ImageAnalysis = &ia
		}
		c.AIAnalysis = &a
	}
	c.EvidenceURLs = append([]string(nil), g.EvidenceURLs...)
	c.History = append([]HistoryEntry(nil), g.History...)
	return c
}

// Submission is what a citizen sends before classification.
type Submission struct {
	ReporterID   string
	CitizenName  string
	CitizenPhone *string
	Description  string
	Images       []string
	Location     *Location
	Jurisdiction Jurisdiction
}

type ClassificationRequest struct {
	Text    string   `json:"text"`
	Images  []string `json:"images,omitempty"`
	Context string   `json:"context,omitempty"`
}

// Classification is the validated result of the AI classification call.
type Classification struct {
	Category            string         `json:"category"`
	Priority            Priority       `json:"priority"`
	Department          string         `json:"department"`
	Summary             string         `json:"summary"`
	UrgencyReason       string         `json:"urgencyReason"`
	SuggestedResolution string         `json:"suggestedResolution"`
	Language            string         `json:"language"`
	UrgencyScore        int            `json:"urgencyScore"`
	Sentiment           string         `json:"sentiment,omitempty"`
	RiskFactors         []string       `json:"riskFactors,omitempty"`
	IsCriticalFacility  bool           `json:"isCriticalFacility,omitempty"`
	ImageAnalysis       *ImageAnalysis `json:"imageAnalysis,omitempty"`
}

// Request/Response DTOs
type CreateGrievanceRequest struct {
	Description  string    `json:"description" binding:"required"`
	CitizenName  string    `json:"citizen_name"`
	CitizenPhone *string   `json:"citizen_phone"`
	Images       []string  `json:"images"`
	Location     *Location `json:"location"`
	City         string    `json:"city"`
	State        string    `json:"state"`
}

type UpdateStatusRequest struct {
	Status         Status `json:"status" binding:"required"`
	ResolutionNote string `json:"resolution_note"`
}

type AssignRequest struct {
	Officer string `json:"officer"`
}

type GrievanceListResponse struct {
	Grievances []Grievance `json:"grievances"`
	Total      int         `json:"total"`
}

// QueueFilter narrows the ordered queue. Zero values match everything.
type QueueFilter struct {
	Status   Status
	Priority Priority
	Category string
}
