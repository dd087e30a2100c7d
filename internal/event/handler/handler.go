package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventhub/internal/event"
	"eventhub/internal/event/service"
	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/httputil"
	"eventhub/pkg/requestcontext"
)

// Service defines the event operations the handler depends on.
type Service interface {
	Create(ctx context.Context, actor domain.Actor, params service.CreateParams) (*event.Event, error)
	Get(ctx context.Context, id domain.EventID) (*event.Event, error)
	List(ctx context.Context) ([]*event.Event, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*event.Event, error)
	Transition(ctx context.Context, actor domain.Actor, id domain.EventID, target event.Status) (*event.Event, error)
	UpdateCapacity(ctx context.Context, actor domain.Actor, id domain.EventID, newCapacity int) (*event.Event, error)
	Delete(ctx context.Context, actor domain.Actor, id domain.EventID) error
}

// Handler wires event lifecycle endpoints to the event service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts event endpoints on the router. Routes are registered
// flat so sibling handlers can hang their own routes under /events.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events", h.HandleCreate)
	r.Get("/events", h.HandleList)
	r.Get("/events/{eventID}", h.HandleGet)
	r.Post("/events/{eventID}/transition", h.HandleTransition)
	r.Patch("/events/{eventID}/capacity", h.HandleUpdateCapacity)
	r.Delete("/events/{eventID}", h.HandleDelete)
}

// HandleCreate handles POST /events requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor := requestcontext.Actor(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ev, err := h.service.Create(ctx, actor, service.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Schedule:    req.Schedule,
		Capacity:    req.Capacity,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "event creation rejected",
			"request_id", requestID,
			"actor_id", actor.UserID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromEvent(ev))
}

// HandleList handles GET /events requests. ?mine=true scopes the listing
// to events owned by the caller.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.Actor(ctx)

	var (
		events []*event.Event
		err    error
	)
	if r.URL.Query().Get("mine") == "true" {
		events, err = h.service.ListByOwner(ctx, actor.UserID)
	} else {
		events, err = h.service.List(ctx)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

// HandleGet handles GET /events/{eventID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return
	}

	ev, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEvent(ev))
}

// HandleTransition handles POST /events/{eventID}/transition requests.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor := requestcontext.Actor(ctx)

	id, err := domain.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	target, err := req.ParsedStatus()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ev, err := h.service.Transition(ctx, actor, id, target)
	if err != nil {
		h.logger.WarnContext(ctx, "event transition rejected",
			"request_id", requestID,
			"actor_id", actor.UserID,
			"event_id", id,
			"target", target,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEvent(ev))
}

// HandleUpdateCapacity handles PATCH /events/{eventID}/capacity requests.
func (h *Handler) HandleUpdateCapacity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor := requestcontext.Actor(ctx)

	id, err := domain.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CapacityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.Capacity == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "capacity is required"))
		return
	}

	ev, err := h.service.UpdateCapacity(ctx, actor, id, *req.Capacity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEvent(ev))
}

// HandleDelete handles DELETE /events/{eventID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.Actor(ctx)

	id, err := domain.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return
	}

	if err := h.service.Delete(ctx, actor, id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
