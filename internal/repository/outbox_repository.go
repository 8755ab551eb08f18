package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"grievance-service/internal/model"

	"github.com/google/uuid"
)

const maxOutboxRetries = 5

type OutboxMessage struct {
	ID          uuid.UUID       `json:"id"`
	RoutingKey  string          `json:"routing_key"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
	RetryCount  int             `json:"retry_count"`
	LastError   *string         `json:"last_error,omitempty"`
	Status      string          `json:"status"`
}

type OutboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) CreateInTransaction(ctx context.Context, tx *sql.Tx, routingKey string, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO outbox_messages (id, routing_key, payload, status)
		VALUES ($1, $2, $3, 'pending')
	`
	_, err = tx.ExecContext(ctx, query, uuid.New(), routingKey, payloadBytes)
	return err
}

// Publish queues an event that is not tied to a grievance write, such as a
// raised alert.
func (r *OutboxRepository) Publish(ctx context.Context, e model.Event) error {
	payloadBytes, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO outbox_messages (id, routing_key, payload, status)
		VALUES ($1, $2, $3, 'pending')
	`
	_, err = r.db.ExecContext(ctx, query, uuid.New(), e.RoutingKey, payloadBytes)
	return err
}

// ClaimPending moves up to limit pending rows to processing and returns them.
// Concurrent workers skip rows another worker has locked.
func (r *OutboxRepository) ClaimPending(ctx context.Context, limit int) ([]OutboxMessage, error) {
	query := `
		UPDATE outbox_messages
		SET status = 'processing', claimed_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_messages
			WHERE status = 'pending'
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, routing_key, payload, created_at, retry_count, last_error, status
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []OutboxMessage
	for rows.Next() {
		var m OutboxMessage
		var lastError sql.NullString
		err := rows.Scan(
			&m.ID,
			&m.RoutingKey,
			&m.Payload,
			&m.CreatedAt,
			&m.RetryCount,
			&lastError,
			&m.Status,
		)
		if err != nil {
			return nil, err
		}
		if lastError.Valid {
			m.LastError = &lastError.String
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (r *OutboxRepository) MarkAsPublished(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE outbox_messages
		SET status = 'published', published_at = NOW(), claimed_at = NULL
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// MarkAsFailed returns the row to pending, or parks it as failed once it has
// used up its retries.
func (r *OutboxRepository) MarkAsFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE outbox_messages
		SET retry_count = retry_count + 1, last_error = $2, claimed_at = NULL,
		    status = CASE WHEN retry_count + 1 >= $3 THEN 'failed' ELSE 'pending' END
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, errMsg, maxOutboxRetries)
	return err
}

// ReleaseStale hands back rows claimed by a worker that never finished them.
func (r *OutboxRepository) ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE outbox_messages
		SET status = 'pending', claimed_at = NULL
		WHERE status = 'processing' AND claimed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *OutboxRepository) DeletePublished(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		DELETE FROM outbox_messages
		WHERE status = 'published' AND published_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *OutboxRepository) GetStats(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*) as count
		FROM outbox_messages
		GROUP BY status
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}

	return stats, rows.Err()
}
