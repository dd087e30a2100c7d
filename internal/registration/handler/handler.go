package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventhub/internal/registration"
	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/httputil"
	"eventhub/pkg/requestcontext"
)

// Service defines the registration operations the handler depends on.
type Service interface {
	Register(ctx context.Context, actor domain.Actor, eventID domain.EventID) (*registration.Registration, error)
	Cancel(ctx context.Context, actor domain.Actor, id domain.RegistrationID, reason string) (*registration.Registration, error)
	ListForEvent(ctx context.Context, actor domain.Actor, eventID domain.EventID) ([]*registration.Registration, error)
	ListForStudent(ctx context.Context, actor domain.Actor, studentID domain.UserID) ([]*registration.Registration, error)
}

// Handler wires registration endpoints to the registration engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/registrations", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/mine", h.HandleListMine)
		r.Post("/{registrationID}/cancel", h.HandleCancel)
	})
	r.Get("/events/{eventID}/registrations", h.HandleListForEvent)
}

// HandleCreate handles POST /registrations requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor := requestcontext.Actor(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateRegistrationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	eventID, err := domain.ParseEventID(req.EventID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return
	}

	reg, err := h.service.Register(ctx, actor, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"request_id", requestID,
			"actor_id", actor.UserID,
			"event_id", eventID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromRegistration(reg))
}

// HandleCancel handles POST /registrations/{registrationID}/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor := requestcontext.Actor(ctx)

	id, err := domain.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid registration id"))
		return
	}

	// The body is optional for self-cancellation.
	var reason string
	if r.ContentLength > 0 {
		req, ok := httputil.DecodeAndPrepare[CancelRegistrationRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		reason = req.Reason
	}

	reg, err := h.service.Cancel(ctx, actor, id, reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRegistration(reg))
}

// HandleListMine handles GET /registrations/mine.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.Actor(ctx)

	regs, err := h.service.ListForStudent(ctx, actor, actor.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRegistrations(regs))
}

// HandleListForEvent handles GET /events/{eventID}/registrations.
func (h *Handler) HandleListForEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.Actor(ctx)

	eventID, err := domain.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return
	}

	regs, err := h.service.ListForEvent(ctx, actor, eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRegistrations(regs))
}
