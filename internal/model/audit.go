package model

import "time"

// AuditOutcome records how a security-relevant decision ended.
type AuditOutcome string

const (
	OutcomeSuccess AuditOutcome = "success"
	OutcomeDenied  AuditOutcome = "denied"
	OutcomeError   AuditOutcome = "error"
)

// Audit actions describe which decision produced the event. Every access
// decision and every classification-triggered visibility decision produces
// exactly one event with one of these actions.
const (
	AuditSubmissionPublished   = "submission_published"
	AuditSubmissionHeld        = "submission_held"
	AuditQueueViewed           = "queue_viewed"
	AuditItemOpened            = "item_opened"
	AuditItemResolved          = "item_resolved"
	AuditItemExpired           = "item_expired"
	AuditConsentCheckDenied    = "consent_check_denied"
	AuditConsentCheckError     = "consent_check_error"
	AuditCounselorDenied       = "counselor_access_denied"
	AuditConsentApproved       = "consent_approved"
	AuditConsentDenied         = "consent_denied"
	AuditConsentIntakeRecorded = "consent_intake_recorded"
)

// AuditEvent is one append-only row in the `audit_events` table. Events are
// never updated or deleted.
//
// Fields:
//  ID        – UUID primary key.
//  ActorID   – who triggered the decision ("system" for workflow-internal events).
//  ActorRole – role of the actor at decision time.
//  SchoolID  – school scope of the decision (0 when not applicable).
//  Action    – one of the Audit* constants.
//  TargetID  – the submission, student or record the decision was about.
//  Outcome   – success, denied or error.
//  Details   – free-form key/value context, stored as JSON.
//  IPAddress – client address when the decision came from a request.
type AuditEvent struct {
	ID        string
	ActorID   string
	ActorRole string
	SchoolID  uint64
	Action    string
	TargetID  string
	Outcome   AuditOutcome
	Details   map[string]string
	IPAddress string
	CreatedAt time.Time
}
