package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eventhub/internal/audit"
	"eventhub/internal/authz"
	"eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/httputil"
	"eventhub/pkg/requestcontext"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Handler exposes the read-only audit feed to super-admins.
type Handler struct {
	store     audit.Store
	publisher *audit.Publisher
	logger    *slog.Logger
}

func New(store audit.Store, publisher *audit.Publisher, logger *slog.Logger) *Handler {
	return &Handler{store: store, publisher: publisher, logger: logger}
}

// Register mounts the audit feed on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/adminlogs", h.HandleList)
}

// HandleList handles GET /adminlogs. Optional filters: ?actorId=,
// ?targetId=, ?limit=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.Actor(ctx)

	decision := authz.Decide(actor, authz.ActionAuditRead, authz.Resource{})
	if !decision.Allowed {
		err := h.publisher.Emit(ctx, audit.Entry{
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Action:     audit.ActionAuditRead,
			TargetType: audit.TargetUser,
			TargetID:   actor.UserID.String(),
			Outcome:    audit.OutcomeDenied,
			Reason:     decision.Reason,
		})
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to record denial", "error", err)
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeAuthz, decision.Reason))
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = min(n, maxLimit)
	}

	var (
		entries []audit.Entry
		err     error
	)
	switch {
	case r.URL.Query().Get("actorId") != "":
		var actorID domain.UserID
		actorID, err = domain.ParseUserID(r.URL.Query().Get("actorId"))
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid actorId"))
			return
		}
		entries, err = h.store.ListByActor(ctx, actorID, limit)
	case r.URL.Query().Get("targetId") != "":
		targetType := audit.TargetType(r.URL.Query().Get("targetType"))
		if targetType == "" {
			targetType = audit.TargetEvent
		}
		entries, err = h.store.ListByTarget(ctx, targetType, r.URL.Query().Get("targetId"), limit)
	default:
		entries, err = h.store.ListRecent(ctx, limit)
	}
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "audit read failed"))
		return
	}

	if entries == nil {
		entries = []audit.Entry{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
