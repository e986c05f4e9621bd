// Package workflow orchestrates the crisis pipeline: classify a submission,
// decide its visibility, queue it for school-scoped counselor review when
// held, and drive it to a terminal state. Every branch emits exactly one
// audit event after the decision it records is final.
package workflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safehaven/peer-support-core/internal/audit"
	"github.com/safehaven/peer-support-core/internal/authz"
	"github.com/safehaven/peer-support-core/internal/catalog"
	"github.com/safehaven/peer-support-core/internal/classifier"
	"github.com/safehaven/peer-support-core/internal/model"
	"github.com/safehaven/peer-support-core/internal/queue"
	"github.com/safehaven/peer-support-core/internal/repository"
)

// MaxTextLen bounds a submission's text. Longer input is a validation
// error rejected before classification.
const MaxTextLen = 2000

// ErrTextTooLong is returned when a submission exceeds MaxTextLen.
var ErrTextTooLong = fmt.Errorf("text exceeds %d characters", MaxTextLen)

// Store is the persistence surface the workflow needs. The SQL
// implementation is repository.SubmissionRepo; tests use an in-memory fake.
type Store interface {
	CreateWithClassification(ctx context.Context, sub model.Submission, cls model.ClassificationResult) error
	GetByID(ctx context.Context, id string) (model.Submission, error)
	ListQueue(ctx context.Context, schoolID uint64) ([]repository.QueueItem, error)
	Open(ctx context.Context, id string) error
	Resolve(ctx context.Context, id string, counselorID uint64, disposition string) error
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Notifier carries the "review required" decision to the notification
// collaborator. Only the decision is in scope here; delivery is not.
type Notifier interface {
	PublishReviewRequired(ctx context.Context, ev queue.ReviewRequiredEvent) error
}

// Service wires the classifier, catalog, store, audit recorder and notifier
// into the submission state machine.
type Service struct {
	cls     *classifier.Classifier
	catalog *catalog.Catalog
	store   Store
	audit   *audit.Recorder
	notify  Notifier
	log     *zap.Logger
}

func NewService(cls *classifier.Classifier, cat *catalog.Catalog, store Store, rec *audit.Recorder, notify Notifier, log *zap.Logger) *Service {
	return &Service{cls: cls, catalog: cat, store: store, audit: rec, notify: notify, log: log}
}

// SubmitResult is returned to the submitting student. Resources accompany
// any non-SAFE classification so help is offered immediately, whether or not
// the entry was held.
type SubmitResult struct {
	SubmissionID string                    `json:"submission_id"`
	SafetyLevel  model.SafetyLevel         `json:"safety_level"`
	Visible      bool                      `json:"visible"`
	Resources    []model.EmergencyResource `json:"resources,omitempty"`
}

// Submit runs the Received→Classified→{Published|Held} portion of the state
// machine. Classification happens synchronously before anything else touches
// the submission, and the submission plus its classification are persisted
// in one transaction before either is queryable anywhere.
func (s *Service) Submit(ctx context.Context, actor authz.Actor, schoolID uint64, text string) (SubmitResult, error) {
	if len(text) > MaxTextLen {
		return SubmitResult{}, ErrTextTooLong
	}

	result := s.cls.Classify(text)

	sub := model.Submission{
		ID:            uuid.NewString(),
		AuthorID:      actor.ID,
		SchoolID:      schoolID,
		Text:          text,
		State:         model.StatePublished,
		TimeSensitive: result.Level == model.LevelCrisis,
	}
	action := model.AuditSubmissionPublished
	if result.HideFromPublic {
		sub.State = model.StateHeld
		action = model.AuditSubmissionHeld
	}

	if err := s.store.CreateWithClassification(ctx, sub, result); err != nil {
		return SubmitResult{}, err
	}

	// Visibility is decided; audit it. A failed audit write cannot reverse
	// the persisted decision.
	_ = s.audit.Record(ctx, model.AuditEvent{
		ActorID:   strconv.FormatUint(actor.ID, 10),
		ActorRole: actor.Role,
		SchoolID:  schoolID,
		Action:    action,
		TargetID:  sub.ID,
		Outcome:   model.OutcomeSuccess,
		Details: map[string]string{
			"safety_level": result.Level.String(),
			"score":        strconv.Itoa(result.Score),
			"urgency":      result.Urgency.String(),
		},
		IPAddress: actor.IP,
	})

	if sub.State == model.StateHeld {
		ev := queue.ReviewRequiredEvent{
			SubmissionID:  sub.ID,
			SchoolID:      schoolID,
			SafetyLevel:   result.Level.String(),
			Urgency:       result.Urgency.String(),
			TimeSensitive: sub.TimeSensitive,
			SignalCount:   len(result.MatchedSignals),
			HeldAt:        time.Now().UTC().Format(time.RFC3339),
		}
		// Notification is best-effort from the workflow's point of view: the
		// entry is already safely held and in the counselor queue.
		if err := s.notify.PublishReviewRequired(ctx, ev); err != nil {
			s.log.Error("review notification publish failed",
				zap.String("submission_id", sub.ID), zap.Error(err))
		}
	}

	return SubmitResult{
		SubmissionID: sub.ID,
		SafetyLevel:  result.Level,
		Visible:      !result.HideFromPublic,
		Resources:    s.catalog.Select(result.Level, result.MatchedSignals),
	}, nil
}

// Queue returns the school's held and under-review submissions. The caller
// must pass counselor authorization first; denials are audited here and
// returned as authz errors.
func (s *Service) Queue(ctx context.Context, actor authz.Actor, schoolID uint64) ([]repository.QueueItem, error) {
	if err := s.authorize(ctx, actor, schoolID, "queue:"+strconv.FormatUint(schoolID, 10)); err != nil {
		return nil, err
	}
	items, err := s.store.ListQueue(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	_ = s.audit.Record(ctx, model.AuditEvent{
		ActorID:   strconv.FormatUint(actor.ID, 10),
		ActorRole: actor.Role,
		SchoolID:  schoolID,
		Action:    model.AuditQueueViewed,
		TargetID:  "queue:" + strconv.FormatUint(schoolID, 10),
		Outcome:   model.OutcomeSuccess,
		Details:   map[string]string{"items": strconv.Itoa(len(items))},
		IPAddress: actor.IP,
	})
	return items, nil
}

// Open transitions a held submission to UNDER_REVIEW on behalf of a
// counselor.
func (s *Service) Open(ctx context.Context, actor authz.Actor, submissionID string) error {
	sub, err := s.store.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, sub.SchoolID, submissionID); err != nil {
		return err
	}
	if err := s.store.Open(ctx, submissionID); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, model.AuditEvent{
		ActorID:   strconv.FormatUint(actor.ID, 10),
		ActorRole: actor.Role,
		SchoolID:  sub.SchoolID,
		Action:    model.AuditItemOpened,
		TargetID:  submissionID,
		Outcome:   model.OutcomeSuccess,
		IPAddress: actor.IP,
	})
	return nil
}

// Resolve records a counselor's disposition and closes the item permanently.
// RESOLVED is terminal; the submission is never re-classified and a second
// resolve is rejected by the store with ErrInvalidState.
func (s *Service) Resolve(ctx context.Context, actor authz.Actor, submissionID, disposition string) error {
	sub, err := s.store.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, sub.SchoolID, submissionID); err != nil {
		return err
	}
	if err := s.store.Resolve(ctx, submissionID, actor.ID, disposition); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, model.AuditEvent{
		ActorID:   strconv.FormatUint(actor.ID, 10),
		ActorRole: actor.Role,
		SchoolID:  sub.SchoolID,
		Action:    model.AuditItemResolved,
		TargetID:  submissionID,
		Outcome:   model.OutcomeSuccess,
		Details:   map[string]string{"disposition": disposition},
		IPAddress: actor.IP,
	})
	return nil
}

// ExpireStale moves held items older than the cutoff to EXPIRED. Admin-only:
// expiry policy is set by the operator, not by individual counselors.
func (s *Service) ExpireStale(ctx context.Context, actor authz.Actor, cutoff time.Time) (int64, error) {
	if actor.Role != model.RoleAdmin {
		s.auditDenied(ctx, actor, 0, "expire_sweep", authz.ErrInsufficientRole)
		return 0, authz.ErrInsufficientRole
	}
	n, err := s.store.ExpireStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	_ = s.audit.Record(ctx, model.AuditEvent{
		ActorID:   strconv.FormatUint(actor.ID, 10),
		ActorRole: actor.Role,
		Action:    model.AuditItemExpired,
		TargetID:  "expire_sweep",
		Outcome:   model.OutcomeSuccess,
		Details:   map[string]string{"expired": strconv.FormatInt(n, 10), "cutoff": cutoff.UTC().Format(time.RFC3339)},
		IPAddress: actor.IP,
	})
	return n, nil
}

// authorize applies the counselor role/school check and audits denials
// before returning them.
func (s *Service) authorize(ctx context.Context, actor authz.Actor, schoolID uint64, targetID string) error {
	if err := authz.Authorize(actor, schoolID); err != nil {
		s.auditDenied(ctx, actor, schoolID, targetID, err)
		return err
	}
	return nil
}

func (s *Service) auditDenied(ctx context.Context, actor authz.Actor, schoolID uint64, targetID string, cause error) {
	_ = s.audit.Record(ctx, model.AuditEvent{
		ActorID:   strconv.FormatUint(actor.ID, 10),
		ActorRole: actor.Role,
		SchoolID:  schoolID,
		Action:    model.AuditCounselorDenied,
		TargetID:  targetID,
		Outcome:   model.OutcomeDenied,
		Details:   map[string]string{"reason": cause.Error(), "actor_school": strconv.FormatUint(actor.SchoolID, 10)},
		IPAddress: actor.IP,
	})
}
