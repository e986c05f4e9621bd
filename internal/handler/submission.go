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

// SubmissionHandler exposes the student-facing submission endpoint. By the
// time a request reaches it, JWTAuth has established identity and the
// consent gate has already cleared the author, so the handler's job is
// validation plus handing off to the workflow.
type SubmissionHandler struct {
	Workflow *workflow.Service
}

func NewSubmissionHandler(w *workflow.Service) *SubmissionHandler {
	return &SubmissionHandler{Workflow: w}
}

type submitReq struct {
	Text string `json:"text"`
}

// Submit accepts an anonymous entry, classifies it synchronously and returns
// the visibility decision along with any emergency resources the
// classification warrants. The author's own school is always the target;
// students cannot post into other schools' feeds.
func (h *SubmissionHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	// Whitespace-only text is treated as empty; it still classifies (to
	// SAFE) rather than erroring, matching the classifier contract.
	req.Text = strings.TrimSpace(req.Text)

	actor := middleware.ActorFrom(c)
	if actor.ID == 0 || actor.SchoolID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Workflow.Submit(ctx, actor, actor.SchoolID, req.Text)
	if err != nil {
		if err == workflow.ErrTextTooLong {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}
