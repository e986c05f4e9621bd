package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/safehaven/peer-support-core/internal/audit"
	"github.com/safehaven/peer-support-core/internal/model"
)

// AuditRepo writes audit events. Insert is the only operation: the table is
// append-only and nothing in the codebase updates or deletes rows from it.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

var _ audit.Store = (*AuditRepo)(nil)

// Insert appends one event. Details are serialized to JSON; a nil map is
// stored as SQL NULL.
func (r *AuditRepo) Insert(ctx context.Context, ev model.AuditEvent) error {
	var details any
	if len(ev.Details) > 0 {
		b, err := json.Marshal(ev.Details)
		if err != nil {
			return err
		}
		details = b
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_events (id, actor_id, actor_role, school_id, action, target_id, outcome, details, ip_address, created_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		ev.ID, ev.ActorID, ev.ActorRole, ev.SchoolID, ev.Action, ev.TargetID, ev.Outcome, details, ev.IPAddress, ev.CreatedAt)
	return err
}
