package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safehaven/peer-support-core/internal/middleware"
	"github.com/safehaven/peer-support-core/internal/workflow"
)

// maxDispositionLen bounds the counselor's closing note.
const maxDispositionLen = 500

// ReviewHandler exposes the counselor queue operations. Role gating happens
// in middleware; the school-scoping decision (and its audit trail) lives in
// the workflow so it cannot be bypassed by a new route.
type ReviewHandler struct {
	Workflow *workflow.Service
}

func NewReviewHandler(w *workflow.Service) *ReviewHandler {
	return &ReviewHandler{Workflow: w}
}

// Queue lists held and under-review submissions for one school,
// time-sensitive first.
func (h *ReviewHandler) Queue(c echo.Context) error {
	schoolID, ok := pathUint(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid school id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Workflow.Queue(ctx, middleware.ActorFrom(c), schoolID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Open transitions a held item to UNDER_REVIEW for the acting counselor.
func (h *ReviewHandler) Open(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid submission id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Workflow.Open(ctx, middleware.ActorFrom(c), id); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type resolveReq struct {
	Disposition string `json:"disposition"`
}

// Resolve records the counselor's disposition and closes the item. The
// transition is terminal; a second resolve returns 409.
func (h *ReviewHandler) Resolve(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid submission id"})
	}
	var req resolveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Disposition = strings.TrimSpace(req.Disposition)
	if req.Disposition == "" || len(req.Disposition) > maxDispositionLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "disposition required (max 500 chars)"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Workflow.Resolve(ctx, middleware.ActorFrom(c), id, req.Disposition); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ExpireStale sweeps held items older than the retention window to EXPIRED.
// Admin-only; the retention window comes from configuration.
func (h *ReviewHandler) ExpireStale(retentionDays int) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
		defer cancel()

		cutoff := time.Now().UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)
		n, err := h.Workflow.ExpireStale(ctx, middleware.ActorFrom(c), cutoff)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"expired": n})
	}
}
