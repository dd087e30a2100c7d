package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"eventhub/internal/audit"
	"eventhub/internal/authz"
	"eventhub/internal/event"
	"eventhub/internal/registration"
	regmetrics "eventhub/internal/registration/metrics"
	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/keymutex"
	"eventhub/pkg/platform/sentinel"
	"eventhub/pkg/platform/tx"
	"eventhub/pkg/requestcontext"
)

// EventSource is the slice of the event store the engine needs: status and
// capacity reads under the per-event lock.
type EventSource interface {
	FindByID(ctx context.Context, id domain.EventID) (*event.Event, error)
}

// AuditPublisher records admissions, cancellations, promotions, and
// denials.
type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// Service is the registration engine. All seat accounting for one event
// runs under that event's lock, so check-then-act admission decisions
// never interleave:
//
//	lock(event) -> read status, counts -> decide seat -> persist -> unlock
//
// Confirmed never exceeds capacity and waitlist positions stay contiguous
// from 1 in arrival order.
type Service struct {
	store   registration.Store
	events  EventSource
	locks   *keymutex.KeyMutex
	tx      tx.Runner
	audit   AuditPublisher
	logger  *slog.Logger
	metrics *regmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *regmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the registration engine. The key mutex must be the same
// instance the event service locks on.
func New(store registration.Store, events EventSource, locks *keymutex.KeyMutex, txRunner tx.Runner, auditPub AuditPublisher, opts ...Option) *Service {
	s := &Service{
		store:  store,
		events: events,
		locks:  locks,
		tx:     txRunner,
		audit:  auditPub,
		tracer: otel.Tracer("eventhub/registration"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Register admits a student to an event. Seats go to confirmed while
// capacity remains; after that arrivals join the waitlist in FIFO order.
func (s *Service) Register(ctx context.Context, actor domain.Actor, eventID domain.EventID) (*registration.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.register")
	defer span.End()

	decision := authz.Decide(actor, authz.ActionRegistrationCreate, authz.Resource{})
	if !decision.Allowed {
		return nil, s.denied(ctx, actor, audit.ActionRegistrationCreate, audit.TargetEvent, eventID.String(), decision.Reason)
	}

	s.locks.Lock(eventID.String())
	defer s.locks.Unlock(eventID.String())

	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "event lookup failed")
	}
	if !ev.Status.IsOpen() {
		return nil, dErrors.New(dErrors.CodeEventNotOpen,
			"registration is open only while the event is published or active")
	}

	if _, err := s.store.FindLive(ctx, eventID, actor.UserID); err == nil {
		return nil, dErrors.New(dErrors.CodeDuplicateRegistration,
			"student already holds a live registration for this event")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "registration lookup failed")
	}

	confirmed, err := s.store.ConfirmedCount(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count confirmed registrations")
	}

	now := requestcontext.Now(ctx)
	reg := &registration.Registration{
		ID:           domain.NewRegistrationID(),
		EventID:      eventID,
		StudentID:    actor.UserID,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if confirmed < ev.Capacity {
		reg.State = registration.StateConfirmed
	} else {
		waiting, err := s.store.WaitlistCount(ctx, eventID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count waitlist")
		}
		reg.State = registration.StateWaitlisted
		reg.Position = waiting + 1
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.Create(txCtx, reg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registration")
		}
		return s.emit(txCtx, actor, audit.ActionRegistrationCreate, reg.ID.String(), reg.State.String())
	})
	if err != nil {
		return nil, err
	}

	s.observeAdmission(ctx, reg)
	return reg, nil
}

// Cancel releases a registration. Cancelling an already cancelled
// registration is a no-op and writes no audit entry. When a confirmed seat
// is released and the waitlist is non-empty, the head of the waitlist is
// promoted in the same transaction.
//
// An admin cancelling on a student's behalf must supply a reason; it lands
// in the audit entry.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, id domain.RegistrationID, reason string) (*registration.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.cancel")
	defer span.End()

	reg, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "registration lookup failed")
	}

	decision := authz.Decide(actor, authz.ActionRegistrationCancel, authz.Resource{OwnerID: reg.StudentID})
	if !decision.Allowed {
		return nil, s.denied(ctx, actor, audit.ActionRegistrationCancel, audit.TargetRegistration, id.String(), decision.Reason)
	}

	onBehalf := actor.UserID != reg.StudentID
	if onBehalf && reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation,
			"a reason is required when cancelling on a student's behalf")
	}

	s.locks.Lock(reg.EventID.String())
	defer s.locks.Unlock(reg.EventID.String())

	// Re-read under the lock; a cascade or concurrent cancel may have won.
	reg, err = s.store.FindByID(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "registration lookup failed")
	}
	if reg.State == registration.StateCancelled {
		return reg, nil
	}

	wasConfirmed := reg.State == registration.StateConfirmed
	vacated := reg.Position
	now := requestcontext.Now(ctx)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		reg.Cancel(now)
		if err := s.store.Update(txCtx, reg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel registration")
		}

		if !wasConfirmed {
			if err := s.store.ShiftWaitlist(txCtx, reg.EventID, vacated); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to compact waitlist")
			}
		} else if err := s.promoteHead(txCtx, actor, reg.EventID); err != nil {
			return err
		}

		return s.emit(txCtx, actor, audit.ActionRegistrationCancel, id.String(), reason)
	})
	if err != nil {
		return nil, err
	}

	s.observeCancellation(ctx, actor, reg)
	return reg, nil
}

// promoteHead confirms the waitlist head after a confirmed seat opens.
// Runs inside the cancellation's transaction and event lock. The
// promotion gets its own audit entry attributed to the canceller.
func (s *Service) promoteHead(ctx context.Context, actor domain.Actor, eventID domain.EventID) error {
	head, err := s.store.FirstWaitlisted(ctx, eventID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read waitlist head")
	}

	head.Confirm(requestcontext.Now(ctx))
	if err := s.store.Update(ctx, head); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to promote waitlisted registration")
	}
	if err := s.store.ShiftWaitlist(ctx, eventID, 1); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to compact waitlist")
	}

	if s.metrics != nil {
		s.metrics.IncrementPromotion()
	}
	return s.emit(ctx, actor, audit.ActionRegistrationPromote, head.ID.String(), "seat released")
}

// CascadeEventCancellation cancels every live registration of an event.
// The event service calls this while already holding the event lock, so
// the cascade never interleaves with an admission. No promotions happen;
// the event is gone.
func (s *Service) CascadeEventCancellation(ctx context.Context, eventID domain.EventID, actor domain.Actor) (int, error) {
	regs, err := s.store.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}

	now := requestcontext.Now(ctx)
	cancelled := 0
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, reg := range regs {
			if !reg.State.IsLive() {
				continue
			}
			reg.Cancel(now)
			if err := s.store.Update(txCtx, reg); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel registration")
			}
			if err := s.emit(txCtx, actor, audit.ActionRegistrationCancel, reg.ID.String(), "event cancelled"); err != nil {
				return err
			}
			cancelled++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.SetWaitlistDepth(eventID.String(), 0)
	}
	return cancelled, nil
}

// ListForEvent returns every registration of an event in arrival order.
// Scoped to the event owner and super-admins.
func (s *Service) ListForEvent(ctx context.Context, actor domain.Actor, eventID domain.EventID) ([]*registration.Registration, error) {
	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "event lookup failed")
	}

	decision := authz.Decide(actor, authz.ActionRegistrationList, authz.Resource{OwnerID: ev.OwnerID})
	if !decision.Allowed {
		return nil, s.denied(ctx, actor, audit.ActionRegistrationList, audit.TargetEvent, eventID.String(), decision.Reason)
	}

	return s.store.ListByEvent(ctx, eventID)
}

// ListForStudent returns a student's registrations. Students read their
// own; super-admins read anyone's.
func (s *Service) ListForStudent(ctx context.Context, actor domain.Actor, studentID domain.UserID) ([]*registration.Registration, error) {
	if actor.UserID != studentID {
		decision := authz.Decide(actor, authz.ActionRegistrationList, authz.Resource{OwnerID: studentID})
		if !decision.Allowed {
			return nil, s.denied(ctx, actor, audit.ActionRegistrationList, audit.TargetUser, studentID.String(), decision.Reason)
		}
	}
	return s.store.ListByStudent(ctx, studentID)
}

// ConfirmedCount exposes the engine's confirmed count to the event
// service for capacity-edit validation.
func (s *Service) ConfirmedCount(ctx context.Context, eventID domain.EventID) (int, error) {
	return s.store.ConfirmedCount(ctx, eventID)
}

func (s *Service) observeAdmission(ctx context.Context, reg *registration.Registration) {
	if s.metrics != nil {
		s.metrics.IncrementAdmission(reg.State.String())
		if waiting, err := s.store.WaitlistCount(ctx, reg.EventID); err == nil {
			s.metrics.SetWaitlistDepth(reg.EventID.String(), waiting)
		}
	}
	s.logger.InfoContext(ctx, "registration admitted",
		"registration_id", reg.ID,
		"event_id", reg.EventID,
		"state", reg.State,
		"position", reg.Position,
		"request_id", requestcontext.RequestID(ctx))
}

func (s *Service) observeCancellation(ctx context.Context, actor domain.Actor, reg *registration.Registration) {
	if s.metrics != nil {
		s.metrics.IncrementCancellation(actor.Role.String())
		if waiting, err := s.store.WaitlistCount(ctx, reg.EventID); err == nil {
			s.metrics.SetWaitlistDepth(reg.EventID.String(), waiting)
		}
	}
	s.logger.InfoContext(ctx, "registration cancelled",
		"registration_id", reg.ID,
		"event_id", reg.EventID,
		"actor_id", actor.UserID,
		"request_id", requestcontext.RequestID(ctx))
}

// emit appends a success entry inside the mutation's transaction. An
// audit failure fails the mutation.
func (s *Service) emit(ctx context.Context, actor domain.Actor, action audit.Action, targetID, reason string) error {
	targetType := audit.TargetRegistration
	err := s.audit.Emit(ctx, audit.Entry{
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Outcome:    audit.OutcomeSuccess,
		Reason:     reason,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeConsistency, "audit write failed; mutation rolled back")
	}
	return nil
}

// denied records the denial and returns the authorization error.
func (s *Service) denied(ctx context.Context, actor domain.Actor, action audit.Action, targetType audit.TargetType, targetID, reason string) error {
	err := s.audit.Emit(ctx, audit.Entry{
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Outcome:    audit.OutcomeDenied,
		Reason:     reason,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record denial", "error", err,
			"request_id", requestcontext.RequestID(ctx))
	}
	return dErrors.New(dErrors.CodeAuthz, reason)
}
