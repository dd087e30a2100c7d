package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventhub/pkg/domain"
	txcontext "eventhub/pkg/platform/tx"
)

// PostgresStore implements Store using the transactional outbox pattern.
// Append writes both the materialized audit_entries row and an outbox row
// inside the caller's transaction; the outbox worker publishes the entries
// to Kafka after commit.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	exec := s.execer(ctx)

	_, err = exec.ExecContext(ctx, `
		INSERT INTO audit_entries (
			id, actor_id, actor_role, action, target_type, target_id,
			timestamp, outcome, reason, client_ip, user_agent, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		entry.ID,
		uuid.UUID(entry.ActorID),
		string(entry.ActorRole),
		string(entry.Action),
		string(entry.TargetType),
		entry.TargetID,
		entry.Timestamp,
		string(entry.Outcome),
		entry.Reason,
		entry.ClientIP,
		entry.UserAgent,
		entry.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.New(),
		string(entry.TargetType),
		entry.TargetID,
		string(entry.Action),
		payload,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

const listColumns = `
	id, actor_id, actor_role, action, target_type, target_id,
	timestamp, outcome, reason, client_ip, user_agent, request_id`

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+listColumns+`
		FROM audit_entries
		ORDER BY timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *PostgresStore) ListByActor(ctx context.Context, actorID domain.UserID, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+listColumns+`
		FROM audit_entries
		WHERE actor_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, uuid.UUID(actorID), limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries by actor: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *PostgresStore) ListByTarget(ctx context.Context, targetType TargetType, targetID string, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+listColumns+`
		FROM audit_entries
		WHERE target_type = $1 AND target_id = $2
		ORDER BY timestamp DESC
		LIMIT $3
	`, string(targetType), targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries by target: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			actorID   uuid.UUID
			actorRole string
			action    string
			target    string
			outcome   string
		)
		err := rows.Scan(
			&e.ID, &actorID, &actorRole, &action, &target, &e.TargetID,
			&e.Timestamp, &outcome, &e.Reason, &e.ClientIP, &e.UserAgent, &e.RequestID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.ActorID = domain.UserID(actorID)
		e.ActorRole = domain.Role(actorRole)
		e.Action = Action(action)
		e.TargetType = TargetType(target)
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
