package model

import "time"

// ConsentStatus enumerates the lifecycle of a parental consent record.
type ConsentStatus string

const (
	ConsentPending  ConsentStatus = "pending"
	ConsentApproved ConsentStatus = "approved"
	ConsentDenied   ConsentStatus = "denied"
	ConsentExpired  ConsentStatus = "expired"
	ConsentRevoked  ConsentStatus = "revoked"
)

// ConsentRecord mirrors the `consent_records` table. Only the latest record
// per student is authoritative; older rows are history. Once a record reaches
// approved with IsImmutable set, it can never transition again and
// LinkExpiresAt stops mattering — the approval itself never lapses.
//
// Fields:
//  ID            – primary key.
//  StudentID     – the student the consent covers.
//  Status        – current status (see constants above).
//  LinkExpiresAt – validity deadline of the approval link; governs access only
//                  before an immutable approval. Nullable.
//  IsImmutable   – set when the approval workflow finalizes the record.
type ConsentRecord struct {
	ID            uint64
	StudentID     uint64
	Status        ConsentStatus
	LinkExpiresAt *time.Time
	IsImmutable   bool
	CreatedAt     time.Time
}
