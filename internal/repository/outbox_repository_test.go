package repository

import (
	"context"
	"testing"
	"time"

	"grievance-service/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository_ClaimPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOutboxRepository(db)
	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "routing_key", "payload", "created_at", "retry_count", "last_error", "status"}).
		AddRow(id.String(), model.RoutingKeyGrievanceCreated, []byte(`{"grievance_id":"x"}`), time.Now(), 0, nil, "processing")

	mock.ExpectQuery("UPDATE outbox_messages SET status = 'processing'(.+)FOR UPDATE SKIP LOCKED(.+)RETURNING").
		WithArgs(50).
		WillReturnRows(rows)

	msgs, err := repo.ClaimPending(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.Equal(t, "processing", msgs[0].Status)
	assert.Nil(t, msgs[0].LastError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkAsFailedCapsRetries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOutboxRepository(db)
	id := uuid.New()

	mock.ExpectExec("UPDATE outbox_messages").
		WithArgs(id.String(), "broker down", maxOutboxRetries).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkAsFailed(context.Background(), id, "broker down"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_PublishQueuesPendingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOutboxRepository(db)
	mock.ExpectExec("INSERT INTO outbox_messages").
		WithArgs(sqlmock.AnyArg(), model.RoutingKeyAlertRaised, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Publish(context.Background(), model.Event{RoutingKey: model.RoutingKeyAlertRaised, Payload: map[string]string{"type": "SLA"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ReleaseStaleAndCleanup(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOutboxRepository(db)
	mock.ExpectExec("SET status = 'pending', claimed_at = NULL").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM outbox_messages").WillReturnResult(sqlmock.NewResult(0, 7))

	released, err := repo.ReleaseStale(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, released)

	deleted, err := repo.DeletePublished(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 7, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_GetStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOutboxRepository(db)
	mock.ExpectQuery("SELECT status, COUNT").WillReturnRows(
		sqlmock.NewRows([]string{"status", "count"}).AddRow("pending", 3).AddRow("published", 10),
	)

	stats, err := repo.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"pending": 3, "published": 10}, stats)
}

func TestNotificationRepository_MarkAsReadScopedToRecipients(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNotificationRepository(db)
	id := uuid.New()
	recipients := []string{"user-1", "city:Pune"}

	mock.ExpectExec("UPDATE notifications SET is_read = TRUE WHERE id = \\$1").
		WithArgs(id.String(), pq.Array(recipients)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.MarkAsRead(context.Background(), id, recipients)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_ListForRecipients(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNotificationRepository(db)
	gid := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "recipient", "grievance_id", "title", "message", "is_read", "created_at"}).
		AddRow(uuid.New().String(), "user-1", gid.String(), "Status Updated", "now In Progress", false, time.Now()).
		AddRow(uuid.New().String(), "city:Pune", nil, "New grievance", "Water", true, time.Now())

	mock.ExpectQuery("FROM notifications").
		WithArgs(pq.Array([]string{"user-1", "city:Pune"}), notificationPageSize).
		WillReturnRows(rows)

	got, err := repo.ListForRecipients(context.Background(), []string{"user-1", "city:Pune"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].GrievanceID)
	assert.Equal(t, gid, *got[0].GrievanceID)
	assert.Nil(t, got[1].GrievanceID)
}

func TestNotificationRepository_ProcessedMessages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNotificationRepository(db)
	mock.ExpectQuery("SELECT 1 FROM processed_messages").WithArgs("m-1").WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO processed_messages").WithArgs("m-1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT 1 FROM processed_messages").WithArgs("m-1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ctx := context.Background()
	seen, err := repo.IsMessageProcessed(ctx, "m-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, repo.MarkMessageProcessed(ctx, "m-1"))

	seen, err = repo.IsMessageProcessed(ctx, "m-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestWaitlistRepository_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWaitlistRepository(db)
	mock.ExpectExec("INSERT INTO waitlist").WithArgs("a@b.in").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO waitlist").WithArgs("a@b.in").WillReturnError(&pq.Error{Code: uniqueViolation})

	ctx := context.Background()
	require.NoError(t, repo.Add(ctx, "a@b.in"))
	assert.ErrorIs(t, repo.Add(ctx, "a@b.in"), model.ErrAlreadyRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}
