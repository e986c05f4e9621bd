package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safehaven/peer-support-core/internal/audit"
	"github.com/safehaven/peer-support-core/internal/consent"
	"github.com/safehaven/peer-support-core/internal/errcode"
	"github.com/safehaven/peer-support-core/internal/middleware"
	"github.com/safehaven/peer-support-core/internal/model"
	"github.com/safehaven/peer-support-core/internal/repository"
)

// ConsentStore is the consent persistence surface the handler needs. The SQL
// implementation is repository.ConsentRepo; tests use an in-memory fake.
type ConsentStore interface {
	Latest(ctx context.Context, studentID uint64) (model.ConsentRecord, error)
	Approve(ctx context.Context, recordID uint64) error
	Deny(ctx context.Context, recordID uint64) error
}

// StudentDirectory resolves student accounts; Status uses it to school-scope
// counselor reads.
type StudentDirectory interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// ConsentHandler exposes consent status reads and the write path used by the
// external approval workflow. Approval/denial are admin-guarded: the
// approval service authenticates as an admin account.
type ConsentHandler struct {
	Consents ConsentStore
	Users    StudentDirectory
	Audit    *audit.Recorder
}

func NewConsentHandler(cr ConsentStore, users StudentDirectory, rec *audit.Recorder) *ConsentHandler {
	return &ConsentHandler{Consents: cr, Users: users, Audit: rec}
}

type consentResp struct {
	ID            uint64              `json:"id"`
	StudentID     uint64              `json:"student_id"`
	Status        model.ConsentStatus `json:"status"`
	LinkExpiresAt *time.Time          `json:"link_expires_at,omitempty"`
	IsImmutable   bool                `json:"is_immutable"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Status returns the student's authoritative consent record. Students may
// read their own; counselors may read students of their own school; admins
// anywhere.
func (h *ConsentHandler) Status(c echo.Context) error {
	studentID, ok := pathUint(c, "studentID")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid student id"})
	}
	actor := middleware.ActorFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch actor.Role {
	case model.RoleAdmin:
		// The external approval workflow authenticates as admin.
	case model.RoleCounselor:
		u, err := h.Users.GetByID(ctx, studentID)
		if err != nil {
			if err == repository.ErrNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": errcode.NotFound})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
		if u.SchoolID != actor.SchoolID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": errcode.CrossSchoolAccessDenied})
		}
	case model.RoleStudent:
		if actor.ID != studentID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": errcode.InsufficientPrivileges})
		}
	default:
		return c.JSON(http.StatusForbidden, echo.Map{"error": errcode.InsufficientPrivileges})
	}

	rec, err := h.Consents.Latest(ctx, studentID)
	if err != nil {
		if err == consent.ErrNoRecord {
			return c.JSON(http.StatusNotFound, echo.Map{"error": errcode.NotFound})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, consentResp{
		ID:            rec.ID,
		StudentID:     rec.StudentID,
		Status:        rec.Status,
		LinkExpiresAt: rec.LinkExpiresAt,
		IsImmutable:   rec.IsImmutable,
		CreatedAt:     rec.CreatedAt,
	})
}

// Approve finalizes a pending consent record as approved and immutable.
// From that moment the approval never lapses; only a newer revocation record
// can supersede it.
func (h *ConsentHandler) Approve(c echo.Context) error {
	return h.finalize(c, true)
}

// Deny marks a pending consent record as denied.
func (h *ConsentHandler) Deny(c echo.Context) error {
	return h.finalize(c, false)
}

func (h *ConsentHandler) finalize(c echo.Context, approve bool) error {
	recordID, ok := pathUint(c, "recordID")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid record id"})
	}
	actor := middleware.ActorFrom(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var err error
	action := model.AuditConsentDenied
	if approve {
		err = h.Consents.Approve(ctx, recordID)
		action = model.AuditConsentApproved
	} else {
		err = h.Consents.Deny(ctx, recordID)
	}
	if err != nil {
		return writeDomainError(c, err)
	}
	_ = h.Audit.Record(ctx, model.AuditEvent{
		ActorID:   formatUint(actor.ID),
		ActorRole: actor.Role,
		SchoolID:  actor.SchoolID,
		Action:    action,
		TargetID:  formatUint(recordID),
		Outcome:   model.OutcomeSuccess,
		IPAddress: actor.IP,
	})
	return c.NoContent(http.StatusNoContent)
}
