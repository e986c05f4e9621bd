package consent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/safehaven/peer-support-core/internal/errcode"
	"github.com/safehaven/peer-support-core/internal/model"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		rec     model.ConsentRecord
		allowed bool
		code    string
	}{
		{
			name:    "immutable approval allows regardless of link expiry",
			rec:     model.ConsentRecord{Status: model.ConsentApproved, IsImmutable: true, LinkExpiresAt: &past},
			allowed: true,
		},
		{
			name:    "immutable approval without expiry allows",
			rec:     model.ConsentRecord{Status: model.ConsentApproved, IsImmutable: true},
			allowed: true,
		},
		{
			name:    "mutable approval allows only inside the link window",
			rec:     model.ConsentRecord{Status: model.ConsentApproved, LinkExpiresAt: &future},
			allowed: true,
		},
		{
			name:    "mutable approval past the link window denies",
			rec:     model.ConsentRecord{Status: model.ConsentApproved, LinkExpiresAt: &past},
			allowed: false,
			code:    errcode.CoppaConsentRequired,
		},
		{
			name:    "pending with valid link allows",
			rec:     model.ConsentRecord{Status: model.ConsentPending, LinkExpiresAt: &future},
			allowed: true,
		},
		{
			name:    "pending with expired link denies",
			rec:     model.ConsentRecord{Status: model.ConsentPending, LinkExpiresAt: &past},
			allowed: false,
			code:    errcode.CoppaConsentRequired,
		},
		{
			name:    "pending without expiry denies",
			rec:     model.ConsentRecord{Status: model.ConsentPending},
			allowed: false,
			code:    errcode.CoppaConsentRequired,
		},
		{
			name:    "denied denies",
			rec:     model.ConsentRecord{Status: model.ConsentDenied},
			allowed: false,
			code:    errcode.CoppaConsentRequired,
		},
		{
			name:    "expired denies",
			rec:     model.ConsentRecord{Status: model.ConsentExpired},
			allowed: false,
			code:    errcode.CoppaConsentRequired,
		},
		{
			name:    "revoked denies even with a future link",
			rec:     model.ConsentRecord{Status: model.ConsentRevoked, LinkExpiresAt: &future},
			allowed: false,
			code:    errcode.CoppaConsentRequired,
		},
		{
			name:    "unknown status fails secure",
			rec:     model.ConsentRecord{Status: model.ConsentStatus("garbled")},
			allowed: false,
			code:    errcode.CoppaConsentRequired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.rec, now)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.code, d.Code)
			assert.Equal(t, tt.rec.Status, d.Status)
		})
	}
}

func TestEvaluateLinkBoundaryIsInclusive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exact := now
	d := Evaluate(model.ConsentRecord{Status: model.ConsentPending, LinkExpiresAt: &exact}, now)
	assert.True(t, d.Allowed, "a link expiring exactly now is still valid")
}
