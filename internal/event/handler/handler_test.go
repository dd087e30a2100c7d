package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"eventhub/internal/audit"
	"eventhub/internal/event"
	"eventhub/internal/event/service"
	"eventhub/pkg/domain"
	"eventhub/pkg/keymutex"
	"eventhub/pkg/platform/tx"
	"eventhub/pkg/requestcontext"
)

type fixedCounter int

func (c fixedCounter) ConfirmedCount(context.Context, domain.EventID) (int, error) {
	return int(c), nil
}

func newTestRouter(t *testing.T, actor domain.Actor, now time.Time) (chi.Router, *service.Service) {
	t.Helper()

	svc := service.New(
		event.NewInMemoryStore(),
		fixedCounter(0),
		keymutex.New(),
		tx.NopRunner{},
		audit.NewPublisher(audit.NewInMemoryStore()),
	)
	h := New(svc, slog.New(slog.DiscardHandler))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithActor(req.Context(), actor)
			ctx = requestcontext.WithTime(ctx, now)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.Register(r)
	return r, svc
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEvent(t *testing.T, body io.Reader) EventResponse {
	t.Helper()
	var resp EventResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestCreateAndFetchEvent(t *testing.T) {
	now := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	admin := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	router, _ := newTestRouter(t, admin, now)

	w := doJSON(t, router, http.MethodPost, "/events", CreateEventRequest{
		Title:    "Spring Hackathon",
		Schedule: now.Add(72 * time.Hour),
		Capacity: 40,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	created := decodeEvent(t, w.Body)
	require.Equal(t, "draft", created.Status)
	require.Equal(t, admin.UserID.String(), created.OwnerID)

	w = doJSON(t, router, http.MethodGet, "/events/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, created.ID, decodeEvent(t, w.Body).ID)
}

func TestCreateEventValidation(t *testing.T) {
	now := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	admin := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	router, _ := newTestRouter(t, admin, now)

	w := doJSON(t, router, http.MethodPost, "/events", CreateEventRequest{
		Title:    "",
		Schedule: now.Add(time.Hour),
		Capacity: 5,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, "validation_error", body["error"])
}

func TestStudentCannotCreateEvent(t *testing.T) {
	now := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	student := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleStudent}
	router, _ := newTestRouter(t, student, now)

	w := doJSON(t, router, http.MethodPost, "/events", CreateEventRequest{
		Title:    "Party",
		Schedule: now.Add(time.Hour),
		Capacity: 5,
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTransitionEndpoint(t *testing.T) {
	now := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	admin := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	router, _ := newTestRouter(t, admin, now)

	w := doJSON(t, router, http.MethodPost, "/events", CreateEventRequest{
		Title:    "Career Fair",
		Schedule: now.Add(time.Hour),
		Capacity: 100,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeEvent(t, w.Body).ID

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/events/%s/transition", id), TransitionRequest{Status: "published"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "published", decodeEvent(t, w.Body).Status)

	// Skipping a lifecycle stage is a conflict, not a bad request.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/events/%s/transition", id), TransitionRequest{Status: "completed"})
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/events/%s/transition", id), TransitionRequest{Status: "onfire"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCapacityEndpoint(t *testing.T) {
	now := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	admin := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	router, _ := newTestRouter(t, admin, now)

	w := doJSON(t, router, http.MethodPost, "/events", CreateEventRequest{
		Title:    "Workshop",
		Schedule: now.Add(time.Hour),
		Capacity: 10,
	})
	id := decodeEvent(t, w.Body).ID

	capacity := 25
	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/events/%s/capacity", id), CapacityRequest{Capacity: &capacity})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 25, decodeEvent(t, w.Body).Capacity)

	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/events/%s/capacity", id), CapacityRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEndpointScoping(t *testing.T) {
	now := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	admin := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	router, svc := newTestRouter(t, admin, now)

	ctx := requestcontext.WithTime(context.Background(), now)
	other := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	for _, actor := range []domain.Actor{admin, other} {
		_, err := svc.Create(ctx, actor, service.CreateParams{
			Title:    "Event",
			Schedule: now.Add(time.Hour),
			Capacity: 5,
		})
		require.NoError(t, err)
	}

	w := doJSON(t, router, http.MethodGet, "/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all ListEventsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&all))
	require.Len(t, all.Events, 2)

	w = doJSON(t, router, http.MethodGet, "/events?mine=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine ListEventsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&mine))
	require.Len(t, mine.Events, 1)
	require.Equal(t, admin.UserID.String(), mine.Events[0].OwnerID)
}

func TestDeleteEndpoint(t *testing.T) {
	now := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	admin := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleCollegeAdmin}
	router, _ := newTestRouter(t, admin, now)

	w := doJSON(t, router, http.MethodPost, "/events", CreateEventRequest{
		Title:    "Draft Only",
		Schedule: now.Add(time.Hour),
		Capacity: 5,
	})
	id := decodeEvent(t, w.Body).ID

	w = doJSON(t, router, http.MethodDelete, "/events/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/events/"+id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
