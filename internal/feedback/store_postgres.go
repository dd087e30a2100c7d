package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
	txcontext "eventhub/pkg/platform/tx"
)

// PostgresStore persists feedback in the feedback table. A unique index on
// (event_id, student_id) backs the one-entry-per-attendee rule.
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

const feedbackColumns = `
	id, event_id, student_id, rating, comment, created_at`

func (s *PostgresStore) Create(ctx context.Context, fb *Feedback) error {
	_, err := s.handle(ctx).ExecContext(ctx, `
		INSERT INTO feedback (`+feedbackColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		fb.ID, uuid.UUID(fb.EventID), uuid.UUID(fb.StudentID),
		fb.Rating, fb.Comment, fb.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByEvent(ctx context.Context, eventID domain.EventID) ([]*Feedback, error) {
	rows, err := s.handle(ctx).QueryContext(ctx, `
		SELECT `+feedbackColumns+`
		FROM feedback
		WHERE event_id = $1
		ORDER BY created_at
	`, uuid.UUID(eventID))
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var out []*Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByEventAndStudent(ctx context.Context, eventID domain.EventID, studentID domain.UserID) (*Feedback, error) {
	row := s.handle(ctx).QueryRowContext(ctx, `
		SELECT `+feedbackColumns+`
		FROM feedback
		WHERE event_id = $1 AND student_id = $2
	`, uuid.UUID(eventID), uuid.UUID(studentID))
	fb, err := scanFeedback(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find feedback: %w", err)
	}
	return fb, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row scanner) (*Feedback, error) {
	var (
		f         Feedback
		eventID   uuid.UUID
		studentID uuid.UUID
	)
	err := row.Scan(&f.ID, &eventID, &studentID, &f.Rating, &f.Comment, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	f.EventID = domain.EventID(eventID)
	f.StudentID = domain.UserID(studentID)
	return &f, nil
}
