package service

import (
	"context"
	"errors"
	"log/slog"

	"eventhub/internal/audit"
	"eventhub/internal/authz"
	"eventhub/internal/event"
	"eventhub/internal/feedback"
	"eventhub/internal/registration"
	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/sentinel"
	"eventhub/pkg/platform/tx"
	"eventhub/pkg/requestcontext"
)

// EventSource reads the event whose feedback window is being checked.
type EventSource interface {
	FindByID(ctx context.Context, id domain.EventID) (*event.Event, error)
}

// AttendanceChecker confirms the student actually held a seat.
type AttendanceChecker interface {
	FindLive(ctx context.Context, eventID domain.EventID, studentID domain.UserID) (*registration.Registration, error)
}

// AuditPublisher records feedback submissions and denials.
type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// Service accepts feedback from confirmed attendees of completed events.
type Service struct {
	store      feedback.Store
	events     EventSource
	attendance AttendanceChecker
	tx         tx.Runner
	audit      AuditPublisher
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store feedback.Store, events EventSource, attendance AttendanceChecker, txRunner tx.Runner, auditPub AuditPublisher, opts ...Option) *Service {
	s := &Service{
		store:      store,
		events:     events,
		attendance: attendance,
		tx:         txRunner,
		audit:      auditPub,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Submit records a student's feedback. The event must be completed and the
// student must still hold a confirmed registration for it.
func (s *Service) Submit(ctx context.Context, actor domain.Actor, eventID domain.EventID, rating int, comment string) (*feedback.Feedback, error) {
	decision := authz.Decide(actor, authz.ActionFeedbackCreate, authz.Resource{})
	if !decision.Allowed {
		return nil, s.denied(ctx, actor, eventID, decision.Reason)
	}

	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "event lookup failed")
	}
	if ev.Status != event.StatusCompleted {
		return nil, dErrors.New(dErrors.CodeConflict, "feedback opens once the event has completed")
	}

	reg, err := s.attendance.FindLive(ctx, eventID, actor.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeConflict, "only confirmed attendees may leave feedback")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "registration lookup failed")
	}
	if reg.State != registration.StateConfirmed {
		return nil, dErrors.New(dErrors.CodeConflict, "only confirmed attendees may leave feedback")
	}

	fb, err := feedback.New(eventID, actor.UserID, rating, comment, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.Create(txCtx, fb); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "feedback already submitted for this event")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store feedback")
		}
		err := s.audit.Emit(txCtx, audit.Entry{
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Action:     audit.ActionFeedbackCreate,
			TargetType: audit.TargetFeedback,
			TargetID:   fb.ID.String(),
			Outcome:    audit.OutcomeSuccess,
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeConsistency, "audit write failed; mutation rolled back")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "feedback submitted",
		"event_id", eventID, "student_id", actor.UserID, "rating", rating,
		"request_id", requestcontext.RequestID(ctx))
	return fb, nil
}

// ListForEvent returns an event's feedback in submission order.
func (s *Service) ListForEvent(ctx context.Context, eventID domain.EventID) ([]*feedback.Feedback, error) {
	return s.store.ListByEvent(ctx, eventID)
}

func (s *Service) denied(ctx context.Context, actor domain.Actor, eventID domain.EventID, reason string) error {
	err := s.audit.Emit(ctx, audit.Entry{
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Action:     audit.ActionFeedbackCreate,
		TargetType: audit.TargetEvent,
		TargetID:   eventID.String(),
		Outcome:    audit.OutcomeDenied,
		Reason:     reason,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record denial", "error", err,
			"request_id", requestcontext.RequestID(ctx))
	}
	return dErrors.New(dErrors.CodeAuthz, reason)
}
