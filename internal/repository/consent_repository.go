package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/safehaven/peer-support-core/internal/consent"
	"github.com/safehaven/peer-support-core/internal/model"
)

// ConsentRepo stores parental consent records. It is the one piece of
// genuinely shared mutable state in the service: the approval workflow
// writes new rows while access checks read concurrently. Latest always hits
// the database so a revocation is effective on the very next request.
type ConsentRepo struct{ DB *sql.DB }

func NewConsentRepo(db *sql.DB) *ConsentRepo { return &ConsentRepo{DB: db} }

// compile-time check: ConsentRepo is the SQL-backed consent.Ledger.
var _ consent.Ledger = (*ConsentRepo)(nil)

const consentColumns = "id,student_id,status,link_expires_at,is_immutable,created_at"

// Latest returns the authoritative (most recently created) consent record
// for a student. Older rows are history and never consulted for access
// decisions.
func (r *ConsentRepo) Latest(ctx context.Context, studentID uint64) (model.ConsentRecord, error) {
	var (
		rec model.ConsentRecord
		exp sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+consentColumns+" FROM consent_records WHERE student_id=? ORDER BY created_at DESC, id DESC LIMIT 1",
		studentID).Scan(&rec.ID, &rec.StudentID, &rec.Status, &exp, &rec.IsImmutable, &rec.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ConsentRecord{}, consent.ErrNoRecord
		}
		return model.ConsentRecord{}, err
	}
	if exp.Valid {
		e := exp.Time
		rec.LinkExpiresAt = &e
	}
	return rec, nil
}

// CreatePending inserts a fresh pending record with the given approval-link
// expiry. Called on under-13 registration intake.
func (r *ConsentRepo) CreatePending(ctx context.Context, studentID uint64, linkExpiresAt time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO consent_records (student_id, status, link_expires_at) VALUES (?,?,?)",
		studentID, model.ConsentPending, linkExpiresAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Approve finalizes a pending record as approved and immutable. The WHERE
// clause enforces the immutability invariant at the storage layer: a record
// that already left pending can never transition again through this path.
func (r *ConsentRepo) Approve(ctx context.Context, recordID uint64) error {
	return r.transition(ctx, recordID, model.ConsentApproved, true)
}

// Deny marks a pending record as denied.
func (r *ConsentRepo) Deny(ctx context.Context, recordID uint64) error {
	return r.transition(ctx, recordID, model.ConsentDenied, false)
}

func (r *ConsentRepo) transition(ctx context.Context, recordID uint64, to model.ConsentStatus, immutable bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE consent_records SET status=?, is_immutable=? WHERE id=? AND status=?",
		to, immutable, recordID, model.ConsentPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row is missing or it already left pending.
		var status model.ConsentStatus
		err := r.DB.QueryRowContext(ctx,
			"SELECT status FROM consent_records WHERE id=? LIMIT 1", recordID).Scan(&status)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrInvalidState
	}
	return nil
}

// Revoke appends a new revoked record for the student, which becomes the
// authoritative one by creation order. Existing rows are never rewritten.
func (r *ConsentRepo) Revoke(ctx context.Context, studentID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO consent_records (student_id, status) VALUES (?,?)",
		studentID, model.ConsentRevoked)
	return err
}
