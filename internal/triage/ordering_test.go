package triage

import (
	"math/rand"
	"testing"
	"time"

	"grievance-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortForQueue(t *testing.T) {
	low := grievance(model.PriorityLow, model.StatusPending, days(1), "Pune", "MH")
	critOld := grievance(model.PriorityCritical, model.StatusPending, days(5), "Pune", "MH")
	critNew := grievance(model.PriorityCritical, model.StatusPending, days(1), "Pune", "MH")
	med := grievance(model.PriorityMedium, model.StatusPending, 0, "Pune", "MH")

	in := []model.Grievance{low, critOld, med, critNew}
	got := SortForQueue(in)

	ids := []interface{}{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []interface{}{critNew.ID, critOld.ID, med.ID, low.ID}, ids)
	assert.Equal(t, low.ID, in[0].ID, "input must not be reordered")
}

func TestSortForQueueStableOnTies(t *testing.T) {
	a := grievance(model.PriorityHigh, model.StatusPending, days(2), "Pune", "MH")
	b := grievance(model.PriorityHigh, model.StatusPending, days(2), "Pune", "MH")
	c := grievance(model.PriorityHigh, model.StatusPending, days(2), "Pune", "MH")

	got := SortForQueue([]model.Grievance{b, c, a})
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, c.ID, got[1].ID)
	assert.Equal(t, a.ID, got[2].ID)
}

func TestSortForQueueOrderingProperty(t *testing.T) {
	priorities := []model.Priority{model.PriorityCritical, model.PriorityHigh, model.PriorityMedium, model.PriorityLow}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		var gs []model.Grievance
		for i := 0; i < 30; i++ {
			p := priorities[rng.Intn(len(priorities))]
			age := time.Duration(rng.Intn(240)) * time.Hour
			gs = append(gs, grievance(p, model.StatusPending, age, "Pune", "MH"))
		}

		got := SortForQueue(gs)
		require.Len(t, got, len(gs))
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			require.GreaterOrEqual(t, prev.Priority.Rank(), cur.Priority.Rank())
			if prev.Priority == cur.Priority {
				require.False(t, cur.Timestamp.After(prev.Timestamp))
			}
		}
	}
}
