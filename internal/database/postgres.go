package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS reviews (
	id         UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	name       TEXT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	comment    TEXT NOT NULL,
	rating     NUMERIC(2,1) NOT NULL,
	published  BOOLEAN NOT NULL DEFAULT false
);
`

// ConnectPostgres opens a connection pool and verifies it with a ping.
// Caller should call db.Close().
func ConnectPostgres(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the reviews table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
