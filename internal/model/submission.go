package model

import "time"

// ReviewState tracks a submission through the crisis workflow. A submission
// is classified synchronously on intake, so the persisted states begin at
// PUBLISHED/HELD; RESOLVED and EXPIRED are terminal.
type ReviewState string

const (
	StatePublished   ReviewState = "PUBLISHED"
	StateHeld        ReviewState = "HELD"
	StateUnderReview ReviewState = "UNDER_REVIEW"
	StateResolved    ReviewState = "RESOLVED"
	StateExpired     ReviewState = "EXPIRED"
)

// Submission is one anonymous peer-support entry as stored in the
// `submissions` table. The text is immutable once classified; the only
// columns that ever change afterwards are the workflow state and the
// resolution fields.
//
// Fields:
//  ID            – UUID primary key.
//  AuthorID      – student who posted; never exposed on the public feed.
//  SchoolID      – school the entry belongs to; counselor queues are scoped by it.
//  Text          – the free-text entry.
//  State         – current workflow state.
//  TimeSensitive – set for CRISIS-level entries so the notification collaborator
//                  can prioritize delivery; the workflow applies no SLA timer itself.
//  Disposition   – counselor's closing note, set exactly once on resolve.
//  ResolvedBy    – counselor who resolved the entry (null until resolved).
type Submission struct {
	ID            string
	AuthorID      uint64
	SchoolID      uint64
	Text          string
	State         ReviewState
	TimeSensitive bool
	Disposition   *string
	ResolvedBy    *uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
