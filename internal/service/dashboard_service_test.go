package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"grievance-service/internal/model"
	"grievance-service/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSnapshot struct {
	items []model.Grievance
	err   error
}

func (s staticSnapshot) FindAll(ctx context.Context) ([]model.Grievance, error) {
	return s.items, s.err
}

func grievanceAt(city, state string, p model.Priority, status model.Status, age time.Duration) model.Grievance {
	return model.Grievance{
		ID:        uuid.New(),
		City:      city,
		State:     state,
		Priority:  p,
		Status:    status,
		Timestamp: testNow.Add(-age),
	}
}

func newDashboard(items ...model.Grievance) *DashboardService {
	svc := NewDashboardService(staticSnapshot{items: items}, testDirectory())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestAlerts_ScopedAndOrdered(t *testing.T) {
	day := 24 * time.Hour
	overdue := grievanceAt("Pune", "Maharashtra", model.PriorityLow, model.StatusPending, 10*day)
	both := grievanceAt("Pune", "Maharashtra", model.PriorityCritical, model.StatusInProgress, 9*day)
	critical := grievanceAt("Pune", "Maharashtra", model.PriorityCritical, model.StatusPending, day)
	closed := grievanceAt("Pune", "Maharashtra", model.PriorityCritical, model.StatusResolved, 20*day)
	elsewhere := grievanceAt("Mumbai", "Maharashtra", model.PriorityCritical, model.StatusPending, day)

	svc := newDashboard(overdue, both, critical, closed, elsewhere)

	resp, err := svc.Alerts(context.Background(), officer, "")
	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)
	assert.Equal(t, model.AlertBoth, resp.Alerts[0].Type)
	assert.Equal(t, both.ID, resp.Alerts[0].GrievanceID)
	require.NotNil(t, resp.Alerts[0].DaysOverdue)
	assert.Equal(t, 2, *resp.Alerts[0].DaysOverdue)
	assert.Equal(t, model.AlertCritical, resp.Alerts[1].Type)
	assert.Equal(t, model.AlertSLA, resp.Alerts[2].Type)
	assert.Equal(t, "Overdue by 3 days", resp.Alerts[2].Message)

	resp, err = svc.Alerts(context.Background(), admin, "Mumbai")
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, elsewhere.ID, resp.Alerts[0].GrievanceID)
}

func TestAlerts_CitizenDenied(t *testing.T) {
	svc := newDashboard()
	_, err := svc.Alerts(context.Background(), citizen, "")
	assert.ErrorIs(t, err, model.ErrAccessDenied)

	_, err = svc.Rollup(context.Background(), citizen, "")
	assert.ErrorIs(t, err, model.ErrAccessDenied)
}

func TestRollup_CountsHealthAndCenters(t *testing.T) {
	day := 24 * time.Hour
	var items []model.Grievance
	for i := 0; i < 11; i++ {
		items = append(items, grievanceAt("Pune", "Maharashtra", model.PriorityCritical, model.StatusPending, time.Hour))
	}
	for i := 0; i < 6; i++ {
		items = append(items, grievanceAt("Nagpur", "Maharashtra", model.PriorityLow, model.StatusPending, 8*day))
	}
	items = append(items, grievanceAt("Nagpur", "Maharashtra", model.PriorityLow, model.StatusResolved, 30*day))
	items = append(items, grievanceAt("Jaipur", "Rajasthan", model.PriorityLow, model.StatusPending, time.Hour))

	svc := newDashboard(items...)
	resp, err := svc.Rollup(context.Background(), admin, "")
	require.NoError(t, err)

	require.Len(t, resp.Cities, 2)
	nagpur, pune := resp.Cities[0], resp.Cities[1]

	assert.Equal(t, "Nagpur", nagpur.City)
	assert.Equal(t, 6, nagpur.Active)
	assert.Equal(t, 6, nagpur.Escalations)
	assert.Equal(t, model.HealthDelayed, nagpur.Health)
	assert.Nil(t, nagpur.Center)

	assert.Equal(t, "Pune", pune.City)
	assert.Equal(t, "Maharashtra", pune.State)
	assert.Equal(t, 11, pune.Critical)
	assert.Equal(t, model.HealthCritical, pune.Health)
	require.NotNil(t, pune.Center)
	assert.InDelta(t, 18.52, pune.Center.Lat, 0.001)

	require.Len(t, resp.States, 1)
	assert.Equal(t, "Maharashtra", resp.States[0].State)
	assert.Equal(t, 17, resp.States[0].Active)
	assert.Equal(t, model.HealthCritical, resp.States[0].Health)
}

func TestRollup_OfficerWithoutCitySeesNothing(t *testing.T) {
	svc := newDashboard(grievanceAt("Pune", "Maharashtra", model.PriorityLow, model.StatusPending, time.Hour))
	resp, err := svc.Rollup(context.Background(), model.Viewer{Role: model.RoleOfficer}, "")
	require.NoError(t, err)
	assert.Empty(t, resp.Cities)
	assert.Empty(t, resp.States)
}

func TestRollup_StoreError(t *testing.T) {
	svc := NewDashboardService(staticSnapshot{err: errors.New("db down")}, testDirectory())
	_, err := svc.Rollup(context.Background(), admin, "")
	assert.EqualError(t, err, "db down")
}

func TestOfficers_ByJurisdiction(t *testing.T) {
	svc := newDashboard()
	assert.Len(t, svc.Officers(officer), 1)
	assert.Len(t, svc.Officers(admin), 1)
	assert.Empty(t, svc.Officers(model.Viewer{Role: model.RoleAdmin, Jurisdiction: model.Jurisdiction{State: "Goa"}}))
	assert.Empty(t, svc.Officers(citizen))
}

func TestWaitlist_Join(t *testing.T) {
	svc := NewWaitlistService(repository.NewMemoryWaitlist())
	ctx := context.Background()

	resp, err := svc.Join(ctx, "  Asha@Example.com ")
	require.NoError(t, err)
	assert.True(t, resp.Success)

	resp, err = svc.Join(ctx, "asha@example.com")
	assert.ErrorIs(t, err, model.ErrAlreadyRegistered)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "This email is already on the waitlist", resp.Message)

	_, err = svc.Join(ctx, "not-an-email")
	assert.ErrorIs(t, err, model.ErrInvalidEmail)

	_, err = svc.Join(ctx, "")
	assert.ErrorIs(t, err, model.ErrInvalidEmail)
}

func TestRecipients(t *testing.T) {
	assert.Equal(t, []string{"user-1"}, Recipients(citizen))
	assert.Equal(t, []string{"off-1", "city:Pune"}, Recipients(officer))
	assert.Equal(t, []string{"adm-1", "state:Maharashtra"}, Recipients(admin))
	assert.Empty(t, Recipients(model.Viewer{Role: model.RoleOfficer}))
}

func TestNotificationService_ListAndMarkRead(t *testing.T) {
	store := repository.NewMemoryNotificationStore()
	ctx := context.Background()
	own := model.Notification{ID: uuid.New(), Recipient: "off-1", Title: "Direct", CreatedAt: testNow}
	channel := model.Notification{ID: uuid.New(), Recipient: "city:Pune", Title: "New Grievance", CreatedAt: testNow.Add(time.Minute)}
	foreign := model.Notification{ID: uuid.New(), Recipient: "city:Mumbai", Title: "Other", CreatedAt: testNow}
	for _, n := range []model.Notification{own, channel, foreign} {
		n := n
		require.NoError(t, store.Create(ctx, &n))
	}

	svc := NewNotificationService(store, nil)

	resp, err := svc.List(ctx, officer)
	require.NoError(t, err)
	assert.Len(t, resp.Notifications, 2)
	assert.Equal(t, 2, resp.UnreadCount)

	err = svc.MarkAsRead(ctx, officer, "garbage")
	assert.ErrorIs(t, err, model.ErrValidation)

	err = svc.MarkAsRead(ctx, officer, foreign.ID.String())
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, svc.MarkAsRead(ctx, officer, channel.ID.String()))
	resp, err = svc.List(ctx, officer)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.UnreadCount)

	require.NoError(t, svc.MarkAllAsRead(ctx, officer))
	resp, err = svc.List(ctx, officer)
	require.NoError(t, err)
	assert.Zero(t, resp.UnreadCount)

	resp, err = svc.List(ctx, model.Viewer{Role: model.RoleCitizen})
	require.NoError(t, err)
	assert.NotNil(t, resp.Notifications)
	assert.Empty(t, resp.Notifications)
}
