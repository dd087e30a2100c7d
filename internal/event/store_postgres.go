package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
	txcontext "eventhub/pkg/platform/tx"
)

// PostgresStore persists events in the events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbHandle interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) handle(ctx context.Context) dbHandle {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const eventColumns = `
	id, owner_id, title, description, schedule, capacity, status, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, event *Event) error {
	_, err := s.handle(ctx).ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		uuid.UUID(event.ID), uuid.UUID(event.OwnerID), event.Title, event.Description,
		event.Schedule, event.Capacity, string(event.Status), event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.EventID) (*Event, error) {
	row := s.handle(ctx).QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1
	`, uuid.UUID(id))
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return event, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Event, error) {
	return s.list(ctx, `
		SELECT `+eventColumns+`
		FROM events
		ORDER BY created_at
	`)
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*Event, error) {
	return s.list(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE owner_id = $1
		ORDER BY created_at
	`, uuid.UUID(ownerID))
}

func (s *PostgresStore) Update(ctx context.Context, event *Event) error {
	res, err := s.handle(ctx).ExecContext(ctx, `
		UPDATE events
		SET title = $2, description = $3, schedule = $4, capacity = $5,
		    status = $6, updated_at = $7
		WHERE id = $1
	`,
		uuid.UUID(event.ID), event.Title, event.Description, event.Schedule,
		event.Capacity, string(event.Status), event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.EventID) error {
	res, err := s.handle(ctx).ExecContext(ctx, `DELETE FROM events WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := s.handle(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*Event, error) {
	var (
		e       Event
		id      uuid.UUID
		ownerID uuid.UUID
		status  string
	)
	err := row.Scan(&id, &ownerID, &e.Title, &e.Description, &e.Schedule,
		&e.Capacity, &status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.ID = domain.EventID(id)
	e.OwnerID = domain.UserID(ownerID)
	e.Status = Status(status)
	return &e, nil
}
