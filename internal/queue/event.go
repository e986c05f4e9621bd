// Package queue defines message payloads exchanged over the message broker.
package queue

import amqp "github.com/rabbitmq/amqp091-go"

// ReviewQueueName is the durable queue carrying review-required events.
const ReviewQueueName = "review.required"

// ReviewQueueArgs must accompany every declaration of the review queue.
// Without x-max-priority the broker silently ignores per-message priority,
// and crisis events would lose their head-of-line treatment.
var ReviewQueueArgs = amqp.Table{"x-max-priority": int32(10)}

// ReviewRequiredEvent is published when a submission is held for counselor
// review. It is the notification *decision*; delivery (push, SMS, email) is
// the consumer's concern. The payload deliberately excludes the submission
// text and author so the broker never carries student content.
type ReviewRequiredEvent struct {
	SubmissionID  string `json:"submission_id"`
	SchoolID      uint64 `json:"school_id"`
	SafetyLevel   string `json:"safety_level"`
	Urgency       string `json:"urgency"`
	TimeSensitive bool   `json:"time_sensitive"` // set for CRISIS; consumers prioritize delivery
	SignalCount   int    `json:"signal_count"`
	HeldAt        string `json:"held_at"`
}
