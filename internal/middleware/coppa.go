package middleware

// coppa.go implements the request-level access gate for under-13 student
// accounts. The gate sits between JWTAuth and the handlers on every
// sensitive route: it reads the student's latest consent record through the
// ledger (never cached, so a revocation bites on the very next request),
// applies the pure consent.Evaluate rule, and fails secure on any internal
// error. Every denial and every enforcement error emits one audit event.

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/safehaven/peer-support-core/internal/audit"
	"github.com/safehaven/peer-support-core/internal/consent"
	"github.com/safehaven/peer-support-core/internal/errcode"
	"github.com/safehaven/peer-support-core/internal/model"
)

// gateSkipPrefixes lists endpoints the gate must never block: blocking the
// auth or consent flows would deadlock the approval process, and health
// checks carry no student data.
var gateSkipPrefixes = []string{
	"/healthz",
	"/v1/auth/",
	"/v1/logout",
	"/v1/consent/",
}

// gateAlwaysPrefixes overrides the skip list. The consent record write path
// shares the /v1/consent/ prefix but is an admin surface, not part of the
// student's approval flow, so it stays behind the gate.
var gateAlwaysPrefixes = []string{
	"/v1/consent/records/",
}

// gateExempt reports whether the gate must let the path through unchecked.
func gateExempt(path string) bool {
	for _, p := range gateAlwaysPrefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	for _, p := range gateSkipPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// ConsentGate returns the COPPA enforcement middleware. Only requests from
// accounts flagged as under-13 students are gated; all other requests pass
// through untouched. A request with no minor flag at all (e.g. a token
// issued mid-registration before a birth date existed) is treated as not yet
// subject to enforcement and allowed.
func ConsentGate(ledger consent.Ledger, rec *audit.Recorder, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if gateExempt(path) {
				return next(c)
			}

			actor := ActorFrom(c)
			if actor.Role != model.RoleStudent || !actor.IsMinor {
				return next(c)
			}

			rec0, err := ledger.Latest(c.Request().Context(), actor.ID)
			if err != nil && err != consent.ErrNoRecord {
				// Fail secure: an unresolvable consent state denies access,
				// with a code distinct from a plain denial so the caller can
				// show a different message.
				log.Error("consent lookup failed", zap.Uint64("student_id", actor.ID), zap.Error(err))
				auditErr := rec.Record(c.Request().Context(), model.AuditEvent{
					ActorID:   strconv.FormatUint(actor.ID, 10),
					ActorRole: actor.Role,
					SchoolID:  actor.SchoolID,
					Action:    model.AuditConsentCheckError,
					TargetID:  path,
					Outcome:   model.OutcomeError,
					Details:   map[string]string{"error": err.Error()},
					IPAddress: actor.IP,
				})
				if auditErr != nil {
					// The deny stands regardless; the missing audit record is
					// a separate operational fault already logged by the
					// recorder.
					log.Error("audit trail incomplete for enforcement error", zap.Error(auditErr))
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": errcode.CoppaEnforcementError})
			}

			var decision consent.Decision
			if err == consent.ErrNoRecord {
				decision = consent.Decision{Allowed: false, Code: errcode.CoppaConsentRequired}
			} else {
				decision = consent.Evaluate(rec0, time.Now().UTC())
			}

			if !decision.Allowed {
				_ = rec.Record(c.Request().Context(), model.AuditEvent{
					ActorID:   strconv.FormatUint(actor.ID, 10),
					ActorRole: actor.Role,
					SchoolID:  actor.SchoolID,
					Action:    model.AuditConsentCheckDenied,
					TargetID:  path,
					Outcome:   model.OutcomeDenied,
					Details:   map[string]string{"consent_status": string(decision.Status)},
					IPAddress: actor.IP,
				})
				return c.JSON(http.StatusForbidden, echo.Map{"error": decision.Code})
			}

			return next(c)
		}
	}
}
