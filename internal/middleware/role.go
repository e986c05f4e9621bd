package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/safehaven/peer-support-core/internal/errcode"
)

// RequireRole returns a middleware that enforces that the authenticated user
// has one of the specified roles, as stored in the JWT's "role" claim. If
// the role is not in the allowed set the request is aborted with a 403 and
// the INSUFFICIENT_PRIVILEGES code. It assumes JWTAuth already ran and
// extracted the role into the context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get(ctxRole)
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": errcode.InsufficientPrivileges})
			}
			return next(c)
		}
	}
}
