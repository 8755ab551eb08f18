package repository

import (
	"context"
	"database/sql"
	_ "embed"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the tables the service needs if they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
