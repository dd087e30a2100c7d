package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"eventhub/internal/audit"
	"eventhub/internal/authz"
	"eventhub/internal/event"
	eventmetrics "eventhub/internal/event/metrics"
	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/keymutex"
	"eventhub/pkg/platform/sentinel"
	"eventhub/pkg/platform/tx"
	"eventhub/pkg/requestcontext"
)

// ConfirmedCounter exposes the registration engine's O(1) confirmed count,
// read under the event lock when validating capacity edits.
type ConfirmedCounter interface {
	ConfirmedCount(ctx context.Context, eventID domain.EventID) (int, error)
}

// Cascader cancels every live registration for an event. Invoked on event
// cancellation with the event lock already held, so a cascade never races
// an in-flight admission.
type Cascader interface {
	CascadeEventCancellation(ctx context.Context, eventID domain.EventID, actor domain.Actor) (int, error)
}

// AuditPublisher records privileged mutations and denials.
type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

// Service owns the event lifecycle: creation, status transitions, capacity
// edits, and draft deletion. Policy is consulted immediately before every
// mutation; every mutation and its audit entry commit as one unit.
type Service struct {
	events    event.Store
	confirmed ConfirmedCounter
	locks     *keymutex.KeyMutex
	tx        tx.Runner
	audit     AuditPublisher
	cascade   Cascader
	logger    *slog.Logger
	metrics   *eventmetrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *eventmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the event service. The key mutex must be the same
// instance the registration engine locks on.
func New(events event.Store, confirmed ConfirmedCounter, locks *keymutex.KeyMutex, txRunner tx.Runner, auditPub AuditPublisher, opts ...Option) *Service {
	s := &Service{
		events:    events,
		confirmed: confirmed,
		locks:     locks,
		tx:        txRunner,
		audit:     auditPub,
		tracer:    otel.Tracer("eventhub/event"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// SetCascader wires the registration engine after both services exist.
func (s *Service) SetCascader(c Cascader) {
	s.cascade = c
}

// CreateParams are the draft fields for a new event.
type CreateParams struct {
	Title       string
	Description string
	Schedule    time.Time
	Capacity    int
}

// Create makes a draft event owned by the acting college-admin.
func (s *Service) Create(ctx context.Context, actor domain.Actor, params CreateParams) (*event.Event, error) {
	decision := authz.Decide(actor, authz.ActionEventCreate, authz.Resource{})
	if !decision.Allowed {
		return nil, s.denied(ctx, actor, audit.ActionEventCreate, audit.TargetEvent, "", decision.Reason)
	}

	now := requestcontext.Now(ctx)
	ev, err := event.New(domain.NewEventID(), actor.UserID, params.Title, params.Description, params.Schedule, params.Capacity, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.events.Create(txCtx, ev); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event")
		}
		return s.emit(txCtx, actor, audit.ActionEventCreate, audit.TargetEvent, ev.ID.String(), "")
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.logger.InfoContext(ctx, "event created",
		"event_id", ev.ID, "owner_id", actor.UserID,
		"request_id", requestcontext.RequestID(ctx))
	return ev, nil
}

// Get returns a single event.
func (s *Service) Get(ctx context.Context, id domain.EventID) (*event.Event, error) {
	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, wrapEventErr(err)
	}
	return ev, nil
}

// List returns all events ordered by creation time.
func (s *Service) List(ctx context.Context) ([]*event.Event, error) {
	return s.events.List(ctx)
}

// ListByOwner returns the events owned by a college-admin.
func (s *Service) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*event.Event, error) {
	return s.events.ListByOwner(ctx, ownerID)
}

// Transition moves an event to target status. Legal moves only; cancelled
// cascades cancellation to every live registration under the same lock.
func (s *Service) Transition(ctx context.Context, actor domain.Actor, id domain.EventID, target event.Status) (*event.Event, error) {
	ctx, span := s.tracer.Start(ctx, "event.transition")
	defer span.End()
	start := time.Now()

	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, wrapEventErr(err)
	}

	decision := authz.Decide(actor, authz.ActionEventTransition, authz.Resource{OwnerID: ev.OwnerID})
	if !decision.Allowed {
		return nil, s.denied(ctx, actor, audit.ActionEventTransition, audit.TargetEvent, id.String(), decision.Reason)
	}

	if err := ev.CanTransition(target); err != nil {
		return nil, err
	}
	ev.ApplyTransition(target, requestcontext.Now(ctx))

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.events.Update(txCtx, ev); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update event")
		}
		return s.emit(txCtx, actor, audit.ActionEventTransition, audit.TargetEvent, id.String(), string(target))
	})
	if err != nil {
		return nil, err
	}

	if target == event.StatusCancelled && s.cascade != nil {
		cancelled, err := s.cascade.CascadeEventCancellation(ctx, id, actor)
		if err != nil {
			// The event is already cancelled; surface the cascade failure
			// rather than pretending the whole operation failed.
			s.logger.ErrorContext(ctx, "cascade cancellation failed",
				"event_id", id, "error", err)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "event cancelled but registration cascade failed")
		}
		s.logger.InfoContext(ctx, "cascade cancelled registrations",
			"event_id", id, "count", cancelled)
	}

	if s.metrics != nil {
		s.metrics.IncrementTransition(string(target))
		s.metrics.ObserveTransition(start)
	}
	return ev, nil
}

// UpdateCapacity edits capacity while the event is still draft/published.
// Lowering below the current confirmed count is rejected; existing
// registrations are never auto-cancelled.
func (s *Service) UpdateCapacity(ctx context.Context, actor domain.Actor, id domain.EventID, newCapacity int) (*event.Event, error) {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, wrapEventErr(err)
	}

	decision := authz.Decide(actor, authz.ActionEventUpdateCapacity, authz.Resource{OwnerID: ev.OwnerID})
	if !decision.Allowed {
		return nil, s.denied(ctx, actor, audit.ActionEventUpdateCapacity, audit.TargetEvent, id.String(), decision.Reason)
	}

	if err := ev.CanUpdateCapacity(newCapacity); err != nil {
		return nil, err
	}

	confirmed, err := s.confirmed.ConfirmedCount(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count confirmed registrations")
	}
	if newCapacity < confirmed {
		return nil, dErrors.New(dErrors.CodeCapacityBelowDemand,
			"new capacity is below the current confirmed registration count")
	}

	ev.ApplyCapacity(newCapacity, requestcontext.Now(ctx))

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.events.Update(txCtx, ev); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update event")
		}
		return s.emit(txCtx, actor, audit.ActionEventUpdateCapacity, audit.TargetEvent, id.String(), "")
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// Delete removes an event that is still a draft. Registrations are
// impossible pre-publish, so nothing cascades.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id domain.EventID) error {
	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return wrapEventErr(err)
	}

	decision := authz.Decide(actor, authz.ActionEventDelete, authz.Resource{OwnerID: ev.OwnerID})
	if !decision.Allowed {
		return s.denied(ctx, actor, audit.ActionEventDelete, audit.TargetEvent, id.String(), decision.Reason)
	}

	if ev.Status != event.StatusDraft {
		return dErrors.New(dErrors.CodeConflict, "only draft events can be deleted")
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.events.Delete(txCtx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete event")
		}
		return s.emit(txCtx, actor, audit.ActionEventDelete, audit.TargetEvent, id.String(), "")
	})
}

// emit appends a success entry inside the mutation's transaction. An audit
// failure fails the mutation: both commit or both roll back.
func (s *Service) emit(ctx context.Context, actor domain.Actor, action audit.Action, targetType audit.TargetType, targetID, reason string) error {
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

// denied records the denial and returns the authorization error. The
// denial entry is written outside any transaction: the mutation never
// happened, but the attempt must still be on record.
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

func wrapEventErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "event store failure")
}
