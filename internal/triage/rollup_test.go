package triage

import (
	"testing"

	"grievance-service/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCityRollup(t *testing.T) {
	gs := []model.Grievance{
		grievance(model.PriorityCritical, model.StatusPending, days(1), "Pune", "MH"),
		grievance(model.PriorityCritical, model.StatusInProgress, days(2), "Pune", "MH"),
		grievance(model.PriorityLow, model.StatusResolved, days(20), "Pune", "MH"),
		grievance(model.PriorityMedium, model.StatusPending, days(10), "Pune", "MH"),
		grievance(model.PriorityHigh, model.StatusPending, days(3), "Pune", "MH"),
	}

	got := CityRollup(gs, baseTime)
	assert.Equal(t, map[string]model.Rollup{"Pune": {Active: 4, Critical: 2, Escalations: 1}}, got)
}

func TestCityRollupRejectedIsActiveNotEscalated(t *testing.T) {
	gs := []model.Grievance{
		grievance(model.PriorityLow, model.StatusRejected, days(10), "Pune", "MH"),
		grievance(model.PriorityLow, model.StatusPending, days(10), "Nagpur", "MH"),
	}
	got := CityRollup(gs, baseTime)
	assert.Equal(t, model.Rollup{Active: 1}, got["Pune"])
	assert.Equal(t, model.Rollup{Active: 1, Escalations: 1}, got["Nagpur"])

	states := StateRollup(gs, baseTime)
	assert.Equal(t, model.Rollup{Active: 2, Escalations: 1}, states["MH"])
	assert.Equal(t, []string{"Nagpur", "Pune"}, SortedKeys(got))
}

func TestHealthOf(t *testing.T) {
	assert.Equal(t, model.HealthCritical, HealthOf(model.Rollup{Critical: 11, Escalations: 9}))
	assert.Equal(t, model.HealthDelayed, HealthOf(model.Rollup{Critical: 10, Escalations: 6}))
	assert.Equal(t, model.HealthHealthy, HealthOf(model.Rollup{Critical: 10, Escalations: 5}))
}
