package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"grievance-service/internal/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const notificationPageSize = 50

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient, grievance_id, title, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		notification.ID,
		notification.Recipient,
		notification.GrievanceID,
		notification.Title,
		notification.Message,
		notification.IsRead,
		notification.CreatedAt,
	)
	return err
}

// ListForRecipients returns the newest notifications addressed to any of
// recipients.
func (r *NotificationRepository) ListForRecipients(ctx context.Context, recipients []string) ([]model.Notification, error) {
	query := `
		SELECT id, recipient, grievance_id, title, message, is_read, created_at
		FROM notifications
		WHERE recipient = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(recipients), notificationPageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		var grievanceID uuid.NullUUID
		err := rows.Scan(
			&n.ID,
			&n.Recipient,
			&grievanceID,
			&n.Title,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if grievanceID.Valid {
			id := grievanceID.UUID
			n.GrievanceID = &id
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, recipients []string) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient = ANY($1) AND is_read = FALSE`
	var count int
	err := r.db.QueryRowContext(ctx, query, pq.Array(recipients)).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID, recipients []string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient = ANY($2)`
	result, err := r.db.ExecContext(ctx, query, id, pq.Array(recipients))
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", id, model.ErrNotFound)
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, recipients []string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE recipient = ANY($1) AND is_read = FALSE`
	_, err := r.db.ExecContext(ctx, query, pq.Array(recipients))
	return err
}

func (r *NotificationRepository) IsMessageProcessed(ctx context.Context, messageID string) (bool, error) {
	query := `SELECT 1 FROM processed_messages WHERE message_id = $1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, messageID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *NotificationRepository) MarkMessageProcessed(ctx context.Context, messageID string) error {
	query := `INSERT INTO processed_messages (message_id, processed_at) VALUES ($1, $2) ON CONFLICT (message_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, messageID, time.Now())
	return err
}
