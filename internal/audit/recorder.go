// Package audit records security-relevant decisions. Events are write-once;
// there is no update or delete path anywhere in the codebase.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safehaven/peer-support-core/internal/model"
)

// Store persists audit events. The SQL implementation lives in the
// repository package; tests substitute an in-memory collector.
type Store interface {
	Insert(ctx context.Context, ev model.AuditEvent) error
}

// Recorder writes audit events after the decision they describe has already
// been finalized. A failed write therefore never flips an allow into a deny
// or vice versa — but it is never silent either: failures are logged at error
// level and returned so deny-path callers can surface the operational fault.
type Recorder struct {
	store Store
	log   *zap.Logger
}

// NewRecorder returns a Recorder writing through the given store.
func NewRecorder(store Store, log *zap.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Record assigns the event an ID and timestamp and persists it. The decision
// the event describes must already be final when Record is called.
func (r *Recorder) Record(ctx context.Context, ev model.AuditEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if err := r.store.Insert(ctx, ev); err != nil {
		// Fail loud: a missing audit record is an operational fault even
		// though the decision itself stands.
		r.log.Error("audit write failed",
			zap.String("action", ev.Action),
			zap.String("target_id", ev.TargetID),
			zap.String("outcome", string(ev.Outcome)),
			zap.Error(err),
		)
		return err
	}
	return nil
}
