package middleware

// identity.go defines helpers shared across middleware files and handlers.
// ActorFrom assembles the typed authz.Actor from the claims JWTAuth stored
// in the Echo context, so every check downstream works on an explicit value
// rather than on loose context lookups.

import (
	"github.com/labstack/echo/v4"

	"github.com/safehaven/peer-support-core/internal/authz"
)

// ActorFrom builds the request's Actor from context. Zero values are
// returned for anything JWTAuth did not set, which downstream checks treat
// as "not authenticated in that dimension".
func ActorFrom(c echo.Context) authz.Actor {
	a := authz.Actor{IP: c.RealIP()}
	if v, ok := c.Get(ctxUserID).(uint64); ok {
		a.ID = v
	}
	if v, ok := c.Get(ctxRole).(string); ok {
		a.Role = v
	}
	if v, ok := c.Get(ctxSchoolID).(uint64); ok {
		a.SchoolID = v
	}
	if v, ok := c.Get(ctxMinor).(bool); ok {
		a.IsMinor = v
	}
	return a
}
