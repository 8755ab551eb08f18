package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"grievance-service/internal/model"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type WaitlistRepository struct {
	db *sql.DB
}

func NewWaitlistRepository(db *sql.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

func (r *WaitlistRepository) Add(ctx context.Context, email string) error {
	query := `INSERT INTO waitlist (email, created_at) VALUES ($1, NOW())`
	_, err := r.db.ExecContext(ctx, query, email)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", email, model.ErrAlreadyRegistered)
	}
	return err
}
