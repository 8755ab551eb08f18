package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"grievance-service/internal/model"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const grievanceColumns = `id, reporter_id, citizen_name, citizen_phone, category, department, description,
	location, city, state, priority, status, evidence_urls, assigned_to, resolution_note,
	ai_analysis, history, created_at, updated_at`

type GrievanceRepository struct {
	db     *sql.DB
	outbox *OutboxRepository
}

func NewGrievanceRepository(db *sql.DB, outbox *OutboxRepository) *GrievanceRepository {
	return &GrievanceRepository{db: db, outbox: outbox}
}

// Create inserts g and queues events in the same transaction.
func (r *GrievanceRepository) Create(ctx context.Context, g *model.Grievance, events ...model.Event) error {
	location, evidence, analysis, history, err := encodeJSONColumns(g)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO grievances (` + grievanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = tx.ExecContext(ctx, query,
		g.ID,
		g.ReporterID,
		g.CitizenName,
		g.CitizenPhone,
		g.Category,
		g.Department,
		g.Description,
		location,
		g.City,
		g.State,
		g.Priority,
		g.Status,
		evidence,
		g.AssignedTo,
		g.ResolutionNote,
		analysis,
		history,
		g.Timestamp,
		g.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := r.queue(ctx, tx, events); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *GrievanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Grievance, error) {
	query := `SELECT ` + grievanceColumns + ` FROM grievances WHERE id = $1`
	g, err := scanGrievance(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("grievance %s: %w", id, model.ErrNotFound)
	}
	return g, err
}

// FindAll reads the whole working set in a single statement so callers get
// one consistent snapshot.
func (r *GrievanceRepository) FindAll(ctx context.Context) ([]model.Grievance, error) {
	query := `SELECT ` + grievanceColumns + ` FROM grievances ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grievances := []model.Grievance{}
	for rows.Next() {
		g, err := scanGrievance(rows)
		if err != nil {
			return nil, err
		}
		grievances = append(grievances, *g)
	}
	return grievances, rows.Err()
}

// Update locks the row, hands a copy to fn and writes back the mutable
// fields. If fn fails nothing is written.
func (r *GrievanceRepository) Update(ctx context.Context, id uuid.UUID, fn func(*model.Grievance) ([]model.Event, error)) (*model.Grievance, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `SELECT ` + grievanceColumns + ` FROM grievances WHERE id = $1 FOR UPDATE`
	g, err := scanGrievance(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("grievance %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	events, err := fn(g)
	if err != nil {
		return nil, err
	}

	history, err := json.Marshal(g.History)
	if err != nil {
		return nil, err
	}

	update := `
		UPDATE grievances
		SET status = $1, assigned_to = $2, resolution_note = $3, category = $4,
			department = $5, history = $6, updated_at = $7
		WHERE id = $8
	`
	_, err = tx.ExecContext(ctx, update,
		g.Status,
		g.AssignedTo,
		g.ResolutionNote,
		g.Category,
		g.Department,
		history,
		g.UpdatedAt,
		g.ID,
	)
	if err != nil {
		return nil, err
	}

	if err := r.queue(ctx, tx, events); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GrievanceRepository) queue(ctx context.Context, tx *sql.Tx, events []model.Event) error {
	if r.outbox == nil {
		return nil
	}
	for _, e := range events {
		if err := r.outbox.CreateInTransaction(ctx, tx, e.RoutingKey, e.Payload); err != nil {
			return fmt.Errorf("queue %s: %w", e.RoutingKey, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGrievance(row rowScanner) (*model.Grievance, error) {
	g := &model.Grievance{}
	var phone, assignedTo, note sql.NullString
	var location, evidence, analysis, history []byte

	err := row.Scan(
		&g.ID,
		&g.ReporterID,
		&g.CitizenName,
		&phone,
		&g.Category,
		&g.Department,
		&g.Description,
		&location,
		&g.City,
		&g.State,
		&g.Priority,
		&g.Status,
		&evidence,
		&assignedTo,
		&note,
		&analysis,
		&history,
		&g.Timestamp,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		g.CitizenPhone = &phone.String
	}
	if assignedTo.Valid {
		g.AssignedTo = &assignedTo.String
	}
	if note.Valid {
		g.ResolutionNote = &note.String
	}
	if len(location) > 0 && string(location) != "null" {
		g.Location = &model.Location{}
		if err := json.Unmarshal(location, g.Location); err != nil {
			return nil, fmt.Errorf("decode location: %w", err)
		}
	}
	if len(analysis) > 0 && string(analysis) != "null" {
		g.AIAnalysis = &model.AIAnalysis{}
		if err := json.Unmarshal(analysis, g.AIAnalysis); err != nil {
			return nil, fmt.Errorf("decode ai_analysis: %w", err)
		}
	}
	g.EvidenceURLs = []string{}
	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &g.EvidenceURLs); err != nil {
			return nil, fmt.Errorf("decode evidence_urls: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &g.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}
	return g, nil
}

func encodeJSONColumns(g *model.Grievance) (location, evidence, analysis, history []byte, err error) {
	if g.Location != nil {
		if location, err = json.Marshal(g.Location); err != nil {
			return
		}
	}
	urls := g.EvidenceURLs
	if urls == nil {
		urls = []string{}
	}
	if evidence, err = json.Marshal(urls); err != nil {
		return
	}
	if g.AIAnalysis != nil {
		if analysis, err = json.Marshal(g.AIAnalysis); err != nil {
			return
		}
	}
	history, err = json.Marshal(g.History)
	return
}
