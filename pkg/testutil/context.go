package testutil

import (
	"net/http"
	"time"

	"eventhub/pkg/domain"
	"eventhub/pkg/requestcontext"
)

// AsActor injects a resolved actor into the request context, simulating
// what the auth middleware does for authenticated requests.
func AsActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// AsStudent injects a fresh student actor and returns it alongside the
// request.
func AsStudent(req *http.Request) (*http.Request, domain.Actor) {
	actor := domain.Actor{UserID: domain.NewUserID(), Role: domain.RoleStudent}
	return AsActor(req, actor), actor
}

// AtTime pins the request-scoped clock, the way the request-id middleware
// does on a live server.
func AtTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
