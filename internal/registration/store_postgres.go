package registration

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

// PostgresStore persists registrations in the registrations table. A
// partial unique index on (event_id, student_id) WHERE state <> 'cancelled'
// backs the single-live-registration invariant at the storage layer.
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

const regColumns = `
	id, event_id, student_id, state, position, registered_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, reg *Registration) error {
	_, err := s.handle(ctx).ExecContext(ctx, `
		INSERT INTO registrations (`+regColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		uuid.UUID(reg.ID), uuid.UUID(reg.EventID), uuid.UUID(reg.StudentID),
		string(reg.State), reg.Position, reg.RegisteredAt, reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.RegistrationID) (*Registration, error) {
	row := s.handle(ctx).QueryRowContext(ctx, `
		SELECT `+regColumns+`
		FROM registrations
		WHERE id = $1
	`, uuid.UUID(id))
	return s.scanOne(row, "find registration")
}

func (s *PostgresStore) FindLive(ctx context.Context, eventID domain.EventID, studentID domain.UserID) (*Registration, error) {
	row := s.handle(ctx).QueryRowContext(ctx, `
		SELECT `+regColumns+`
		FROM registrations
		WHERE event_id = $1 AND student_id = $2 AND state <> 'cancelled'
	`, uuid.UUID(eventID), uuid.UUID(studentID))
	return s.scanOne(row, "find live registration")
}

func (s *PostgresStore) ListByEvent(ctx context.Context, eventID domain.EventID) ([]*Registration, error) {
	return s.list(ctx, `
		SELECT `+regColumns+`
		FROM registrations
		WHERE event_id = $1
		ORDER BY registered_at
	`, uuid.UUID(eventID))
}

func (s *PostgresStore) ListByStudent(ctx context.Context, studentID domain.UserID) ([]*Registration, error) {
	return s.list(ctx, `
		SELECT `+regColumns+`
		FROM registrations
		WHERE student_id = $1
		ORDER BY registered_at
	`, uuid.UUID(studentID))
}

func (s *PostgresStore) ConfirmedCount(ctx context.Context, eventID domain.EventID) (int, error) {
	return s.countByState(ctx, eventID, StateConfirmed)
}

func (s *PostgresStore) WaitlistCount(ctx context.Context, eventID domain.EventID) (int, error) {
	return s.countByState(ctx, eventID, StateWaitlisted)
}

func (s *PostgresStore) countByState(ctx context.Context, eventID domain.EventID, state State) (int, error) {
	var n int
	err := s.handle(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM registrations
		WHERE event_id = $1 AND state = $2
	`, uuid.UUID(eventID), string(state)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Update(ctx context.Context, reg *Registration) error {
	res, err := s.handle(ctx).ExecContext(ctx, `
		UPDATE registrations
		SET state = $2, position = $3, updated_at = $4
		WHERE id = $1
	`, uuid.UUID(reg.ID), string(reg.State), reg.Position, reg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FirstWaitlisted(ctx context.Context, eventID domain.EventID) (*Registration, error) {
	row := s.handle(ctx).QueryRowContext(ctx, `
		SELECT `+regColumns+`
		FROM registrations
		WHERE event_id = $1 AND state = 'waitlisted'
		ORDER BY position
		LIMIT 1
	`, uuid.UUID(eventID))
	return s.scanOne(row, "first waitlisted")
}

func (s *PostgresStore) ShiftWaitlist(ctx context.Context, eventID domain.EventID, vacatedPosition int) error {
	_, err := s.handle(ctx).ExecContext(ctx, `
		UPDATE registrations
		SET position = position - 1
		WHERE event_id = $1 AND state = 'waitlisted' AND position > $2
	`, uuid.UUID(eventID), vacatedPosition)
	if err != nil {
		return fmt.Errorf("shift waitlist: %w", err)
	}
	return nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Registration, error) {
	rows, err := s.handle(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	var regs []*Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return regs, nil
}

func (s *PostgresStore) scanOne(row *sql.Row, op string) (*Registration, error) {
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reg, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row scanner) (*Registration, error) {
	var (
		r         Registration
		id        uuid.UUID
		eventID   uuid.UUID
		studentID uuid.UUID
		state     string
	)
	err := row.Scan(&id, &eventID, &studentID, &state, &r.Position, &r.RegisteredAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.ID = domain.RegistrationID(id)
	r.EventID = domain.EventID(eventID)
	r.StudentID = domain.UserID(studentID)
	r.State = State(state)
	return &r, nil
}
