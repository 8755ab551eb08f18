package triage

import (
	"fmt"
	"math"
	"sort"
	"time"

	"grievance-service/internal/model"
)

const (
	// SLADays is how long a grievance may stay open before it is overdue.
	SLADays = 7
	// CriticalUrgencyScore is the AI score at which an item counts as critical.
	CriticalUrgencyScore = 80
)

// AgeDays is the age of g at now in whole days, rounded up.
func AgeDays(g *model.Grievance, now time.Time) int {
	d := now.Sub(g.Timestamp)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// Open reports whether g is still awaiting a terminal decision.
func Open(g *model.Grievance) bool {
	return !g.Status.Terminal()
}

// Breached reports whether g is open and past the SLA.
func Breached(g *model.Grievance, now time.Time) bool {
	return Open(g) && AgeDays(g, now) > SLADays
}

// IsCritical reports whether g needs urgent attention regardless of age.
func IsCritical(g *model.Grievance) bool {
	return g.Priority == model.PriorityCritical || g.UrgencyScore() >= CriticalUrgencyScore
}

// DetectAlerts scans open grievances for SLA breaches and critical urgency and
// returns the alerts most severe first. The result depends only on gs and now.
func DetectAlerts(gs []model.Grievance, now time.Time) []model.Alert {
	alerts := make([]model.Alert, 0)
	for i := range gs {
		g := &gs[i]
		if !Open(g) {
			continue
		}

		age := AgeDays(g, now)
		overdue := age - SLADays
		sla := age > SLADays
		critical := IsCritical(g)

		a := model.Alert{GrievanceID: g.ID, City: g.City, State: g.State}
		switch {
		case sla && critical:
			a.Type = model.AlertBoth
			a.Message = fmt.Sprintf("Critical Risk & Overdue (+%d days)", overdue)
			a.DaysOverdue = &overdue
		case critical:
			a.Type = model.AlertCritical
			a.Message = "High Urgency / Critical Priority detected"
		case sla:
			a.Type = model.AlertSLA
			a.Message = fmt.Sprintf("Overdue by %d days", overdue)
			a.DaysOverdue = &overdue
		default:
			continue
		}
		alerts = append(alerts, a)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Type.Severity() > alerts[j].Type.Severity()
	})
	return alerts
}
