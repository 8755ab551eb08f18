package model

import "github.com/google/uuid"

type AlertType string

const (
	AlertBoth     AlertType = "BOTH"
	AlertCritical AlertType = "CRITICAL"
	AlertSLA      AlertType = "SLA"
)

// Severity orders alerts on the dashboard, most severe first.
func (t AlertType) Severity() int {
	switch t {
	case AlertBoth:
		return 3
	case AlertCritical:
		return 2
	case AlertSLA:
		return 1
	}
	return 0
}

type Alert struct {
	GrievanceID uuid.UUID `json:"grievance_id"`
	Type        AlertType `json:"type"`
	Message     string    `json:"message"`
	DaysOverdue *int      `json:"days_overdue,omitempty"`
	City        string    `json:"city"`
	State       string    `json:"state"`
}

type Health string

const (
	HealthCritical Health = "Critical Attention"
	HealthDelayed  Health = "Delayed"
	HealthHealthy  Health = "Healthy"
)

type Rollup struct {
	Active      int `json:"active"`
	Critical    int `json:"critical"`
	Escalations int `json:"escalations"`
}

type CityRollup struct {
	City  string `json:"city"`
	State string `json:"state"`
	Rollup
	Health Health    `json:"health"`
	Center *GeoPoint `json:"center,omitempty"`
}

type StateRollup struct {
	State string `json:"state"`
	Rollup
	Health Health `json:"health"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type RollupResponse struct {
	Cities []CityRollup  `json:"cities"`
	States []StateRollup `json:"states"`
}

type AlertListResponse struct {
	Alerts []Alert `json:"alerts"`
	Total  int     `json:"total"`
}
