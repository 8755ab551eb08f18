package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"grievance-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []model.Event
}

func (s *recordingSink) Publish(ctx context.Context, e model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func TestMemoryGrievanceStore_ReadersGetCopies(t *testing.T) {
	store := NewMemoryGrievanceStore()
	ctx := context.Background()
	g := sampleGrievance()
	require.NoError(t, store.Create(ctx, g))

	got, err := store.FindByID(ctx, g.ID)
	require.NoError(t, err)
	got.History = append(got.History, model.HistoryEntry{Action: "tampered"})
	got.EvidenceURLs[0] = "changed.jpg"

	again, err := store.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, again.History, 1)
	assert.Equal(t, "a.jpg", again.EvidenceURLs[0])
}

func TestMemoryGrievanceStore_FindAllKeepsInsertionOrder(t *testing.T) {
	store := NewMemoryGrievanceStore()
	ctx := context.Background()
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		g := sampleGrievance()
		g.ID = uuid.New()
		ids = append(ids, g.ID)
		require.NoError(t, store.Create(ctx, g))
	}

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, g := range all {
		assert.Equal(t, ids[i], g.ID)
	}
}

func TestMemoryGrievanceStore_UpdateFailureLeavesRecord(t *testing.T) {
	store := NewMemoryGrievanceStore()
	sink := &recordingSink{}
	store.SetSink(sink)
	ctx := context.Background()
	g := sampleGrievance()
	require.NoError(t, store.Create(ctx, g, model.NewGrievanceCreatedEvent(g)))

	_, err := store.Update(ctx, g.ID, func(cur *model.Grievance) ([]model.Event, error) {
		cur.Status = model.StatusRejected
		return nil, model.ErrInvalidTransition
	})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	got, err := store.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Len(t, sink.events, 1)
}

func TestMemoryGrievanceStore_ConcurrentUpdatesSerialize(t *testing.T) {
	store := NewMemoryGrievanceStore()
	ctx := context.Background()
	g := sampleGrievance()
	require.NoError(t, store.Create(ctx, g))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, g.ID, func(cur *model.Grievance) ([]model.Event, error) {
				cur.History = append(cur.History, model.HistoryEntry{Timestamp: time.Now(), Action: model.ActionAssigned})
				return nil, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, got.History, 51)
}

func TestMemoryGrievanceStore_UpdateMissing(t *testing.T) {
	store := NewMemoryGrievanceStore()
	_, err := store.Update(context.Background(), uuid.New(), func(*model.Grievance) ([]model.Event, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryNotificationStore_RecipientScoping(t *testing.T) {
	store := NewMemoryNotificationStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	mine := model.Notification{ID: uuid.New(), Recipient: "user-1", Title: "a", CreatedAt: base}
	city := model.Notification{ID: uuid.New(), Recipient: "city:Pune", Title: "b", CreatedAt: base.Add(time.Minute)}
	other := model.Notification{ID: uuid.New(), Recipient: "user-2", Title: "c", CreatedAt: base}
	for _, n := range []model.Notification{mine, city, other} {
		n := n
		require.NoError(t, store.Create(ctx, &n))
	}

	recipients := []string{"user-1", "city:Pune"}
	list, err := store.ListForRecipients(ctx, recipients)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, city.ID, list[0].ID)

	assert.ErrorIs(t, store.MarkAsRead(ctx, other.ID, recipients), model.ErrNotFound)
	require.NoError(t, store.MarkAsRead(ctx, mine.ID, recipients))

	unread, err := store.UnreadCount(ctx, recipients)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, store.MarkAllAsRead(ctx, recipients))
	unread, err = store.UnreadCount(ctx, recipients)
	require.NoError(t, err)
	assert.Zero(t, unread)

	unread, err = store.UnreadCount(ctx, []string{"user-2"})
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}

func TestMemoryWaitlist_Duplicate(t *testing.T) {
	w := NewMemoryWaitlist()
	ctx := context.Background()
	require.NoError(t, w.Add(ctx, "a@b.in"))
	assert.ErrorIs(t, w.Add(ctx, "A@B.in"), model.ErrAlreadyRegistered)
}
