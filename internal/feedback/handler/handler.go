package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventhub/internal/feedback"
	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/httputil"
	"eventhub/pkg/requestcontext"
)

// Service defines the feedback operations the handler depends on.
type Service interface {
	Submit(ctx context.Context, actor domain.Actor, eventID domain.EventID, rating int, comment string) (*feedback.Feedback, error)
	ListForEvent(ctx context.Context, eventID domain.EventID) ([]*feedback.Feedback, error)
}

// Handler wires feedback endpoints to the feedback service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts feedback endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/feedbacks", h.HandleSubmit)
	r.Get("/events/{eventID}/feedbacks", h.HandleListForEvent)
}

// HandleSubmit handles POST /feedbacks.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor := requestcontext.Actor(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitFeedbackRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	eventID, err := domain.ParseEventID(req.EventID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return
	}

	fb, err := h.service.Submit(ctx, actor, eventID, req.Rating, req.Comment)
	if err != nil {
		h.logger.WarnContext(ctx, "feedback rejected",
			"request_id", requestID,
			"actor_id", actor.UserID,
			"event_id", eventID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromFeedback(fb))
}

// HandleListForEvent handles GET /events/{eventID}/feedbacks.
func (h *Handler) HandleListForEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := domain.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return
	}

	list, err := h.service.ListForEvent(ctx, eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromFeedbackList(list))
}
