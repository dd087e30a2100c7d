package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent so startup is safe to repeat.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			email         TEXT NOT NULL,
			full_name     TEXT NOT NULL,
			role          TEXT NOT NULL,
			password_hash BYTEA NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (lower(email))`,

		`CREATE TABLE IF NOT EXISTS events (
			id          UUID PRIMARY KEY,
			owner_id    UUID NOT NULL,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			schedule    TIMESTAMPTZ NOT NULL,
			capacity    INTEGER NOT NULL CHECK (capacity >= 0),
			status      TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS events_owner_idx ON events (owner_id)`,

		`CREATE TABLE IF NOT EXISTS registrations (
			id            UUID PRIMARY KEY,
			event_id      UUID NOT NULL REFERENCES events (id) ON DELETE CASCADE,
			student_id    UUID NOT NULL,
			state         TEXT NOT NULL,
			position      INTEGER NOT NULL DEFAULT 0,
			registered_at TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS registrations_live_idx
			ON registrations (event_id, student_id) WHERE state <> 'cancelled'`,
		`CREATE INDEX IF NOT EXISTS registrations_event_idx ON registrations (event_id)`,
		`CREATE INDEX IF NOT EXISTS registrations_student_idx ON registrations (student_id)`,

		`CREATE TABLE IF NOT EXISTS audit_entries (
			id          UUID PRIMARY KEY,
			actor_id    UUID NOT NULL,
			actor_role  TEXT NOT NULL,
			action      TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id   TEXT NOT NULL,
			timestamp   TIMESTAMPTZ NOT NULL,
			outcome     TEXT NOT NULL,
			reason      TEXT NOT NULL DEFAULT '',
			client_ip   TEXT NOT NULL DEFAULT '',
			user_agent  TEXT NOT NULL DEFAULT '',
			request_id  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS audit_entries_actor_idx ON audit_entries (actor_id, timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS audit_entries_target_idx ON audit_entries (target_type, target_id, timestamp DESC)`,

		`CREATE TABLE IF NOT EXISTS outbox (
			id             UUID PRIMARY KEY,
			aggregate_type TEXT NOT NULL,
			aggregate_id   TEXT NOT NULL,
			event_type     TEXT NOT NULL,
			payload        JSONB NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS outbox_created_idx ON outbox (created_at)`,

		`CREATE TABLE IF NOT EXISTS feedback (
			id         UUID PRIMARY KEY,
			event_id   UUID NOT NULL REFERENCES events (id) ON DELETE CASCADE,
			student_id UUID NOT NULL,
			rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment    TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS feedback_event_student_idx ON feedback (event_id, student_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
