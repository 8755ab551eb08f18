package triage

import (
	"testing"

	"grievance-service/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestVisible(t *testing.T) {
	all := []model.Grievance{
		grievance(model.PriorityLow, model.StatusPending, 0, "Pune", "Maharashtra"),
		grievance(model.PriorityLow, model.StatusPending, 0, "Mumbai", "Maharashtra"),
		grievance(model.PriorityLow, model.StatusPending, 0, "Bengaluru", "Karnataka"),
		grievance(model.PriorityLow, model.StatusPending, 0, "Pune", "Maharashtra"),
	}

	t.Run("officer sees only their city", func(t *testing.T) {
		got := Visible(all, model.RoleOfficer, &model.Jurisdiction{City: "Pune"})
		assert.Len(t, got, 2)
		for _, g := range got {
			assert.Equal(t, "Pune", g.City)
		}
		for _, g := range all {
			in := false
			for _, v := range got {
				if v.ID == g.ID {
					in = true
				}
			}
			assert.Equal(t, g.City == "Pune", in)
		}
	})

	t.Run("admin sees whole state", func(t *testing.T) {
		got := Visible(all, model.RoleAdmin, &model.Jurisdiction{State: "Maharashtra", City: "Pune"})
		assert.Len(t, got, 3)
	})

	t.Run("admin narrowed to a city", func(t *testing.T) {
		got := VisibleNarrowed(all, model.RoleAdmin, &model.Jurisdiction{State: "Maharashtra"}, "Mumbai")
		assert.Len(t, got, 1)
		assert.Equal(t, "Mumbai", got[0].City)
	})

	t.Run("empty jurisdiction fields match nothing", func(t *testing.T) {
		assert.Empty(t, Visible(all, model.RoleOfficer, &model.Jurisdiction{State: "Maharashtra"}))
		assert.Empty(t, Visible(all, model.RoleAdmin, &model.Jurisdiction{City: "Pune"}))
	})

	t.Run("citizen or nil jurisdiction sees all", func(t *testing.T) {
		assert.Len(t, Visible(all, model.RoleCitizen, &model.Jurisdiction{City: "Pune"}), 4)
		assert.Len(t, Visible(all, model.RoleOfficer, nil), 4)
	})
}

func TestForViewer(t *testing.T) {
	mine := grievance(model.PriorityLow, model.StatusPending, 0, "Pune", "Maharashtra")
	mine.ReporterID = "citizen-1"
	other := grievance(model.PriorityLow, model.StatusPending, 0, "Pune", "Maharashtra")
	other.ReporterID = "citizen-2"
	all := []model.Grievance{mine, other}

	got := ForViewer(all, model.Viewer{UserID: "citizen-1", Role: model.RoleCitizen})
	assert.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)

	assert.Empty(t, ForViewer(all, model.Viewer{Role: model.RoleCitizen}))
	assert.True(t, CanView(&other, model.Viewer{Role: model.RoleOfficer, Jurisdiction: model.Jurisdiction{City: "Pune"}}))
	assert.False(t, CanView(&other, model.Viewer{UserID: "citizen-1", Role: model.RoleCitizen}))
}

func TestMatching(t *testing.T) {
	a := grievance(model.PriorityHigh, model.StatusPending, 0, "Pune", "Maharashtra")
	a.Category = "Roads"
	b := grievance(model.PriorityLow, model.StatusResolved, 0, "Pune", "Maharashtra")
	b.Category = "Water"
	all := []model.Grievance{a, b}

	assert.Len(t, Matching(all, model.QueueFilter{}), 2)
	assert.Equal(t, a.ID, Matching(all, model.QueueFilter{Priority: model.PriorityHigh})[0].ID)
	assert.Equal(t, b.ID, Matching(all, model.QueueFilter{Status: model.StatusResolved})[0].ID)
	assert.Empty(t, Matching(all, model.QueueFilter{Category: "Roads", Status: model.StatusResolved}))
}
