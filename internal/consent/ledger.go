// Package consent holds the parental-consent ledger contract and the pure
// decision rule the access gate applies to it.
package consent

import (
	"context"
	"errors"
	"time"

	"github.com/safehaven/peer-support-core/internal/errcode"
	"github.com/safehaven/peer-support-core/internal/model"
)

// ErrNoRecord is returned by a Ledger when the student has no consent record
// at all. The gate treats absence as a denial, not an error.
var ErrNoRecord = errors.New("no consent record")

// Ledger resolves the authoritative consent record for a student. The single
// method is intentional: every caller goes through Latest, so the
// "always read the latest record, never cache" invariant lives in exactly one
// place. Implementations must hit the backing store on every call — a
// revocation has to take effect on the very next request.
type Ledger interface {
	Latest(ctx context.Context, studentID uint64) (model.ConsentRecord, error)
}

// Decision is the outcome of evaluating a consent record.
type Decision struct {
	Allowed bool
	Code    string              // errcode value when denied, empty when allowed
	Status  model.ConsentStatus // status observed at check time, for the audit trail
}

// Evaluate applies the consent validity rule to a record.
//
// An approved record marked immutable grants access unconditionally; the link
// expiry is deliberately NOT re-checked, because immutability means the
// approval itself never lapses. A pending or not-yet-immutable approval is
// valid only while now <= LinkExpiresAt. Every other status denies.
func Evaluate(rec model.ConsentRecord, now time.Time) Decision {
	switch rec.Status {
	case model.ConsentApproved:
		if rec.IsImmutable {
			return Decision{Allowed: true, Status: rec.Status}
		}
		return linkWindow(rec, now)
	case model.ConsentPending:
		return linkWindow(rec, now)
	case model.ConsentDenied, model.ConsentExpired, model.ConsentRevoked:
		return Decision{Allowed: false, Code: errcode.CoppaConsentRequired, Status: rec.Status}
	}
	// Unknown status: fail secure.
	return Decision{Allowed: false, Code: errcode.CoppaConsentRequired, Status: rec.Status}
}

// linkWindow allows access only while the approval link is still valid. A
// record without an expiry set cannot grant access pre-approval.
func linkWindow(rec model.ConsentRecord, now time.Time) Decision {
	if rec.LinkExpiresAt != nil && !now.After(*rec.LinkExpiresAt) {
		return Decision{Allowed: true, Status: rec.Status}
	}
	return Decision{Allowed: false, Code: errcode.CoppaConsentRequired, Status: rec.Status}
}
