package triage

import "grievance-service/internal/model"

// Visible narrows all to what role may see within j. A nil jurisdiction, or
// the citizen role, returns the full set; citizens are scoped by OwnedBy.
// An officer with no city, or an admin with no state, sees nothing.
func Visible(all []model.Grievance, role model.Role, j *model.Jurisdiction) []model.Grievance {
	if j == nil {
		return all
	}
	switch role {
	case model.RoleOfficer:
		if j.City == "" {
			return []model.Grievance{}
		}
		return filter(all, func(g *model.Grievance) bool { return g.City == j.City })
	case model.RoleAdmin:
		if j.State == "" {
			return []model.Grievance{}
		}
		return filter(all, func(g *model.Grievance) bool { return g.State == j.State })
	}
	return all
}

// VisibleNarrowed is Visible for admins that additionally pick one city.
func VisibleNarrowed(all []model.Grievance, role model.Role, j *model.Jurisdiction, city string) []model.Grievance {
	out := Visible(all, role, j)
	if role != model.RoleAdmin || city == "" {
		return out
	}
	return filter(out, func(g *model.Grievance) bool { return g.City == city })
}

// OwnedBy returns the grievances filed by reporterID.
func OwnedBy(all []model.Grievance, reporterID string) []model.Grievance {
	if reporterID == "" {
		return []model.Grievance{}
	}
	return filter(all, func(g *model.Grievance) bool { return g.ReporterID == reporterID })
}

// ForViewer applies the visibility rule that matches the viewer's role.
func ForViewer(all []model.Grievance, v model.Viewer) []model.Grievance {
	switch v.Role {
	case model.RoleOfficer, model.RoleAdmin:
		return Visible(all, v.Role, &v.Jurisdiction)
	}
	return OwnedBy(all, v.UserID)
}

// CanView reports whether a single grievance is visible to v.
func CanView(g *model.Grievance, v model.Viewer) bool {
	return len(ForViewer([]model.Grievance{*g}, v)) == 1
}

// Matching applies the optional queue filters.
func Matching(gs []model.Grievance, f model.QueueFilter) []model.Grievance {
	if f == (model.QueueFilter{}) {
		return gs
	}
	return filter(gs, func(g *model.Grievance) bool {
		if f.Status != "" && g.Status != f.Status {
			return false
		}
		if f.Priority != "" && g.Priority != f.Priority {
			return false
		}
		if f.Category != "" && g.Category != f.Category {
			return false
		}
		return true
	})
}

func filter(all []model.Grievance, keep func(*model.Grievance) bool) []model.Grievance {
	out := make([]model.Grievance, 0, len(all))
	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out
}
