package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS venues (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			capacity INT NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			equipment TEXT[] NOT NULL DEFAULT '{}',
			status TEXT NOT NULL DEFAULT 'available',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS materials (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			unit TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			total_quantity INT NOT NULL,
			committed_quantity INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'available',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			CHECK (committed_quantity >= 0 AND committed_quantity <= total_quantity)
		)`,
		`CREATE TABLE IF NOT EXISTS commitments (
			application_id UUID NOT NULL,
			material_id UUID NOT NULL REFERENCES materials(id),
			quantity INT NOT NULL CHECK (quantity > 0),
			PRIMARY KEY (application_id, material_id)
		)`,
		`CREATE TABLE IF NOT EXISTS intervals (
			venue_id UUID NOT NULL REFERENCES venues(id),
			application_id UUID NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (venue_id, application_id),
			CHECK (start_time < end_time)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			real_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'member',
			password_hash TEXT NOT NULL,
			salt TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY,
			requester_id UUID NOT NULL,
			activity_name TEXT NOT NULL,
			activity_description TEXT NOT NULL DEFAULT '',
			venue_id UUID NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			materials JSONB NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			rejection_reason TEXT,
			reviewer_id UUID,
			created_at TIMESTAMPTZ NOT NULL,
			reviewed_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_requester ON applications (requester_id)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_status ON applications (status)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
