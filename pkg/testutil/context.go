package testutil

import (
	"net/http"
	"time"

	id "medcommons/pkg/domain"
	"medcommons/pkg/requestcontext"
)

// AsActor pins an actor onto the request context.
// This simulates what the auth middleware would do for authenticated requests.
func AsActor(req *http.Request, actor id.ActorID) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), actor))
}

// AtTime pins the request clock, the way the request-time middleware does.
func AtTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
