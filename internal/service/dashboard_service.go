package service

import (
	"context"
	"time"

	"grievance-service/internal/model"
	"grievance-service/internal/reference"
	"grievance-service/internal/triage"
)

type Snapshotter interface {
	FindAll(ctx context.Context) ([]model.Grievance, error)
}

// DashboardService computes officer and admin dashboards from one snapshot
// of the store per call.
type DashboardService struct {
	store     Snapshotter
	directory *reference.Directory
	now       func() time.Time
}

func NewDashboardService(store Snapshotter, directory *reference.Directory) *DashboardService {
	return &DashboardService{store: store, directory: directory, now: time.Now}
}

func (s *DashboardService) visible(ctx context.Context, viewer model.Viewer, city string) ([]model.Grievance, error) {
	if !isStaff(viewer) {
		return nil, model.ErrAccessDenied
	}
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return triage.VisibleNarrowed(all, viewer.Role, &viewer.Jurisdiction, city), nil
}

// Returns active alerts for the viewer's jurisdiction, most severe first.
func (s *DashboardService) Alerts(ctx context.Context, viewer model.Viewer, city string) (*model.AlertListResponse, error) {
	gs, err := s.visible(ctx, viewer, city)
	if err != nil {
		return nil, err
	}
	alerts := triage.DetectAlerts(gs, s.now())
	return &model.AlertListResponse{Alerts: alerts, Total: len(alerts)}, nil
}

// Returns per-city and per-state counts with a health label. Cities carry
// their geocoded center when the reference table knows it.
func (s *DashboardService) Rollup(ctx context.Context, viewer model.Viewer, city string) (*model.RollupResponse, error) {
	gs, err := s.visible(ctx, viewer, city)
	if err != nil {
		return nil, err
	}
	now := s.now()

	cityStates := triage.CityStates(gs)
	byCity := triage.CityRollup(gs, now)
	resp := &model.RollupResponse{
		Cities: make([]model.CityRollup, 0, len(byCity)),
		States: []model.StateRollup{},
	}
	for _, name := range triage.SortedKeys(byCity) {
		r := byCity[name]
		entry := model.CityRollup{
			City:   name,
			State:  cityStates[name],
			Rollup: r,
			Health: triage.HealthOf(r),
		}
		if center, ok := s.directory.Center(name); ok {
			entry.Center = center
		}
		resp.Cities = append(resp.Cities, entry)
	}

	byState := triage.StateRollup(gs, now)
	for _, name := range triage.SortedKeys(byState) {
		r := byState[name]
		resp.States = append(resp.States, model.StateRollup{
			State:  name,
			Rollup: r,
			Health: triage.HealthOf(r),
		})
	}
	return resp, nil
}

func (s *DashboardService) Officers(viewer model.Viewer) []reference.Officer {
	return s.directory.OfficersFor(viewer)
}
