package triage

import (
	"fmt"
	"strings"
	"time"

	"grievance-service/internal/model"
)

// CanTransition reports whether from -> to is an edge of the status machine.
// Terminal states have no outgoing edges and self-loops are not transitions.
func CanTransition(from, to model.Status) bool {
	switch from {
	case model.StatusPending:
		switch to {
		case model.StatusInProgress, model.StatusResolved, model.StatusRejected:
			return true
		}
	case model.StatusInProgress:
		switch to {
		case model.StatusResolved, model.StatusRejected:
			return true
		}
	case model.StatusResolved, model.StatusRejected:
		return false
	}
	return false
}

// SetStatus moves g to status. Resolving a CRITICAL grievance requires a
// non-empty note. The note is kept as the resolution note only on RESOLVED;
// other transitions record it in history alone. On error g is left untouched.
func SetStatus(g *model.Grievance, status model.Status, note string, now time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", model.ErrInvalidTransition, status)
	}
	if !CanTransition(g.Status, status) {
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, g.Status, status)
	}

	note = strings.TrimSpace(note)
	if status == model.StatusResolved && g.Priority == model.PriorityCritical && note == "" {
		return model.ErrResolutionNoteRequired
	}

	old := g.Status
	g.Status = status
	if status == model.StatusResolved && note != "" {
		g.ResolutionNote = &note
	}
	g.UpdatedAt = now

	details := fmt.Sprintf("Status changed from %s to %s", old.Label(), status.Label())
	if note != "" {
		details += ": " + note
	}
	g.History = append(g.History, model.HistoryEntry{
		Timestamp: now,
		Action:    model.ActionStatusUpdated,
		Details:   details,
	})
	return nil
}

// Assign hands g to officer. An empty name clears the assignment.
func Assign(g *model.Grievance, officer string, now time.Time) {
	officer = strings.TrimSpace(officer)
	entry := model.HistoryEntry{Timestamp: now}
	if officer == "" {
		g.AssignedTo = nil
		entry.Action = model.ActionUnassigned
		entry.Details = "Grievance unassigned"
	} else {
		g.AssignedTo = &officer
		entry.Action = model.ActionAssigned
		entry.Details = "Assigned to " + officer
	}
	g.UpdatedAt = now
	g.History = append(g.History, entry)
}
