package triage

import (
	"sort"

	"grievance-service/internal/model"
)

// SortForQueue orders by priority rank then newest first. The sort is stable
// and works on a copy.
func SortForQueue(gs []model.Grievance) []model.Grievance {
	out := append([]model.Grievance(nil), gs...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
