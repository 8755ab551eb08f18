// Package triage holds the decision core: record construction, jurisdiction
// visibility, queue ordering, alert detection, rollups and status transitions.
// Everything here is pure; persistence and locking live in the callers.
package triage

import (
	"fmt"
	"time"

	"grievance-service/internal/model"

	"github.com/google/uuid"
)

// BuildGrievance assembles a new PENDING record from a citizen submission and a
// validated classification. Missing city or state fall back to defaults.
func BuildGrievance(sub model.Submission, cls model.Classification, defaults model.Jurisdiction, id uuid.UUID, now time.Time) (*model.Grievance, error) {
	if len(sub.Images) > model.MaxEvidence {
		return nil, model.ErrTooManyEvidence
	}

	j := ResolveJurisdiction(sub.Jurisdiction, defaults)
	if j.City == "" || j.State == "" {
		return nil, fmt.Errorf("%w: no city/state for submission", model.ErrJurisdictionMismatch)
	}

	g := &model.Grievance{
		ID:           id,
		ReporterID:   sub.ReporterID,
		CitizenName:  sub.CitizenName,
		CitizenPhone: sub.CitizenPhone,
		Category:     cls.Category,
		Department:   cls.Department,
		Description:  sub.Description,
		Location:     sub.Location,
		City:         j.City,
		State:        j.State,
		Priority:     cls.Priority,
		Status:       model.StatusPending,
		Timestamp:    now,
		EvidenceURLs: append([]string{}, sub.Images...),
		AIAnalysis: &model.AIAnalysis{
			Sentiment:           cls.Sentiment,
			Summary:             cls.Summary,
			SuggestedResolution: cls.SuggestedResolution,
			UrgencyReason:       cls.UrgencyReason,
			RiskFactors:         cls.RiskFactors,
			IsCriticalFacility:  cls.IsCriticalFacility,
			Language:            cls.Language,
			UrgencyScore:        cls.UrgencyScore,
			ImageAnalysis:       cls.ImageAnalysis,
		},
		History: []model.HistoryEntry{{
			Timestamp: now,
			Action:    model.ActionCreated,
			Details:   "Grievance reported by citizen",
		}},
		UpdatedAt: now,
	}
	if g.CitizenName == "" {
		g.CitizenName = "Anonymous"
	}
	return g, nil
}

// ResolveJurisdiction fills each empty field of j from defaults.
func ResolveJurisdiction(j, defaults model.Jurisdiction) model.Jurisdiction {
	if j.City == "" {
		j.City = defaults.City
	}
	if j.State == "" {
		j.State = defaults.State
	}
	return j
}
