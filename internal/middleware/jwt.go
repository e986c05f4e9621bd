package middleware // reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// Context keys populated by JWTAuth and consumed by ActorFrom and the
// consent gate.
const (
	ctxUserID   = "user_id"
	ctxRole     = "role"
	ctxSchoolID = "school_id"
	ctxMinor    = "minor"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject, role, school and minor-flag claims into
// the request context. The provided secret must match the one used when
// issuing tokens. This middleware wraps every protected route; downstream
// middleware and handlers read the claims via ActorFrom.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret; reject any other signing
			// method.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// Numeric JWT claims decode as float64; convert once here so
			// downstream consumers get typed values.
			c.Set(ctxUserID, claimUint64(claims, "sub"))
			if role, ok := claims["role"].(string); ok {
				c.Set(ctxRole, role)
			}
			c.Set(ctxSchoolID, claimUint64(claims, "school_id"))
			if minor, ok := claims["minor"].(bool); ok {
				c.Set(ctxMinor, minor)
			}
			return next(c)
		}
	}
}

// claimUint64 reads a numeric claim, tolerating the float64 form the JWT
// library decodes numbers into.
func claimUint64(claims jwt.MapClaims, key string) uint64 {
	switch v := claims[key].(type) {
	case float64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	case uint64:
		return v
	case int64:
		if v < 0 {
			return 0
		}
		return uint64(v)
	}
	return 0
}
