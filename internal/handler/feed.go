package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safehaven/peer-support-core/internal/catalog"
	"github.com/safehaven/peer-support-core/internal/repository"
)

// FeedHandler serves the anonymous public feed and the emergency resource
// directory. Only PUBLISHED entries ever leave this handler; held content is
// reachable exclusively through the counselor queue.
type FeedHandler struct {
	Submissions *repository.SubmissionRepo
	Catalog     *catalog.Catalog
}

func NewFeedHandler(s *repository.SubmissionRepo, cat *catalog.Catalog) *FeedHandler {
	return &FeedHandler{Submissions: s, Catalog: cat}
}

// Feed returns the most recent published entries for a school. Responses
// carry no author information. Use the optional ?limit query parameter
// (default 50, max 100).
func (h *FeedHandler) Feed(c echo.Context) error {
	schoolID, ok := pathUint(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid school id"})
	}
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Submissions.ListPublished(ctx, schoolID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": entries})
}

// Resources returns the full emergency resource directory, so clients can
// show help options without any submission at all.
func (h *FeedHandler) Resources(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"resources": h.Catalog.All()})
}
