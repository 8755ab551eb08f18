package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grievance-service/internal/model"
	"grievance-service/internal/reference"
	"grievance-service/internal/triage"

	"github.com/google/uuid"
)

type GrievanceStore interface {
	Create(ctx context.Context, g *model.Grievance, events ...model.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Grievance, error)
	FindAll(ctx context.Context) ([]model.Grievance, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*model.Grievance) ([]model.Event, error)) (*model.Grievance, error)
}

type Classifier interface {
	Classify(ctx context.Context, req model.ClassificationRequest) (*model.Classification, error)
}

// ChangeNotifier is told after every successful write so alert detection can
// run against the new state.
type ChangeNotifier interface {
	Trigger()
}

type GrievanceService struct {
	store      GrievanceStore
	classifier Classifier
	directory  *reference.Directory
	defaults   model.Jurisdiction
	notifier   ChangeNotifier
	now        func() time.Time
	newID      func() uuid.UUID
}

func NewGrievanceService(store GrievanceStore, classifier Classifier, directory *reference.Directory, defaults model.Jurisdiction) *GrievanceService {
	if directory == nil {
		directory = reference.NewDirectory(nil, nil)
	}
	return &GrievanceService{
		store:      store,
		classifier: classifier,
		directory:  directory,
		defaults:   defaults,
		now:        time.Now,
		newID:      uuid.New,
	}
}

// Injects the hook used to wake the alert scanner.
func (s *GrievanceService) SetChangeNotifier(n ChangeNotifier) {
	s.notifier = n
}

// Classifies the complaint and persists it as a PENDING grievance. Nothing
// is stored when classification fails.
func (s *GrievanceService) Submit(ctx context.Context, viewer model.Viewer, req *model.CreateGrievanceRequest) (*model.Grievance, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", model.ErrValidation)
	}
	if len(req.Images) > model.MaxEvidence {
		return nil, model.ErrTooManyEvidence
	}

	jurisdiction := model.Jurisdiction{City: req.City, State: req.State}
	if jurisdiction.City == "" {
		jurisdiction.City = viewer.Jurisdiction.City
	}
	if jurisdiction.State == "" {
		jurisdiction.State = viewer.Jurisdiction.State
	}
	resolved := triage.ResolveJurisdiction(jurisdiction, s.defaults)
	if resolved.City == "" || resolved.State == "" {
		return nil, fmt.Errorf("%w: no city/state for submission", model.ErrJurisdictionMismatch)
	}

	name := strings.TrimSpace(req.CitizenName)
	if name == "" {
		name = viewer.Name
	}

	sub := model.Submission{
		ReporterID:   viewer.UserID,
		CitizenName:  name,
		CitizenPhone: req.CitizenPhone,
		Description:  description,
		Images:       req.Images,
		Location:     req.Location,
		Jurisdiction: jurisdiction,
	}

	cls, err := s.classifier.Classify(ctx, model.ClassificationRequest{
		Text:    description,
		Images:  req.Images,
		Context: classificationContext(resolved, req.Location),
	})
	if err != nil {
		return nil, err
	}

	g, err := triage.BuildGrievance(sub, *cls, s.defaults, s.newID(), s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, g, model.NewGrievanceCreatedEvent(g)); err != nil {
		return nil, err
	}
	s.changed()
	return g, nil
}

func classificationContext(j model.Jurisdiction, loc *model.Location) string {
	parts := []string{}
	if j.City != "" || j.State != "" {
		parts = append(parts, fmt.Sprintf("Jurisdiction: %s, %s", j.City, j.State))
	}
	if loc != nil && loc.Address != "" {
		parts = append(parts, "Address: "+loc.Address)
	}
	return strings.Join(parts, "; ")
}

// Returns the viewer's visible grievances in queue order, narrowed by filter.
func (s *GrievanceService) Queue(ctx context.Context, viewer model.Viewer, filter model.QueueFilter) (*model.GrievanceListResponse, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, filter.Status)
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", model.ErrValidation, filter.Priority)
	}

	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	visible := triage.Matching(triage.ForViewer(all, viewer), filter)
	ordered := triage.SortForQueue(visible)
	return &model.GrievanceListResponse{
		Grievances: ordered,
		Total:      len(ordered),
	}, nil
}

func (s *GrievanceService) Get(ctx context.Context, viewer model.Viewer, id uuid.UUID) (*model.Grievance, error) {
	g, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !triage.CanView(g, viewer) {
		return nil, model.ErrAccessDenied
	}
	return g, nil
}

// Applies a status transition under the store's per-grievance lock.
func (s *GrievanceService) UpdateStatus(ctx context.Context, viewer model.Viewer, id uuid.UUID, req *model.UpdateStatusRequest) (*model.Grievance, error) {
	if !isStaff(viewer) {
		return nil, model.ErrAccessDenied
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, req.Status)
	}

	g, err := s.store.Update(ctx, id, func(g *model.Grievance) ([]model.Event, error) {
		if !triage.CanView(g, viewer) {
			return nil, model.ErrAccessDenied
		}
		old := g.Status
		now := s.now()
		if err := triage.SetStatus(g, req.Status, req.ResolutionNote, now); err != nil {
			return nil, err
		}
		return []model.Event{model.NewStatusUpdateEvent(g, old, now)}, nil
	})
	if err != nil {
		return nil, err
	}
	s.changed()
	return g, nil
}

// Assigns or, with an empty name, unassigns the handling officer.
func (s *GrievanceService) Assign(ctx context.Context, viewer model.Viewer, id uuid.UUID, req *model.AssignRequest) (*model.Grievance, error) {
	if !isStaff(viewer) {
		return nil, model.ErrAccessDenied
	}

	officer := strings.TrimSpace(req.Officer)
	if officer != "" && !s.directory.Empty() {
		known, ok := s.directory.Officer(officer)
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownOfficer, officer)
		}
		officer = known.Name
	}

	g, err := s.store.Update(ctx, id, func(g *model.Grievance) ([]model.Event, error) {
		if !triage.CanView(g, viewer) {
			return nil, model.ErrAccessDenied
		}
		now := s.now()
		triage.Assign(g, officer, now)
		return []model.Event{model.NewAssignmentEvent(g, now)}, nil
	})
	if err != nil {
		return nil, err
	}
	s.changed()
	return g, nil
}

func (s *GrievanceService) changed() {
	if s.notifier != nil {
		s.notifier.Trigger()
	}
}

func isStaff(v model.Viewer) bool {
	return v.Role == model.RoleOfficer || v.Role == model.RoleAdmin
}
