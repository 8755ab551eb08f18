package triage

import (
	"sort"
	"time"

	"grievance-service/internal/model"
)

const (
	criticalAttentionThreshold = 10
	delayedThreshold           = 5
)

func tally(r *model.Rollup, g *model.Grievance, now time.Time) {
	if g.Status != model.StatusResolved {
		r.Active++
	}
	if g.Priority == model.PriorityCritical {
		r.Critical++
	}
	if Breached(g, now) {
		r.Escalations++
	}
}

// CityRollup counts active, critical and escalated grievances per city.
func CityRollup(gs []model.Grievance, now time.Time) map[string]model.Rollup {
	out := make(map[string]model.Rollup)
	for i := range gs {
		r := out[gs[i].City]
		tally(&r, &gs[i], now)
		out[gs[i].City] = r
	}
	return out
}

// StateRollup is CityRollup keyed by state.
func StateRollup(gs []model.Grievance, now time.Time) map[string]model.Rollup {
	out := make(map[string]model.Rollup)
	for i := range gs {
		r := out[gs[i].State]
		tally(&r, &gs[i], now)
		out[gs[i].State] = r
	}
	return out
}

// HealthOf classifies a rollup for display.
func HealthOf(r model.Rollup) model.Health {
	switch {
	case r.Critical > criticalAttentionThreshold:
		return model.HealthCritical
	case r.Escalations > delayedThreshold:
		return model.HealthDelayed
	default:
		return model.HealthHealthy
	}
}

// CityStates maps each city seen in gs to its state.
func CityStates(gs []model.Grievance) map[string]string {
	out := make(map[string]string)
	for i := range gs {
		out[gs[i].City] = gs[i].State
	}
	return out
}

// SortedKeys returns map keys in ascending order for stable output.
func SortedKeys(m map[string]model.Rollup) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
