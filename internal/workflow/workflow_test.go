package workflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safehaven/peer-support-core/internal/audit"
	"github.com/safehaven/peer-support-core/internal/authz"
	"github.com/safehaven/peer-support-core/internal/catalog"
	"github.com/safehaven/peer-support-core/internal/classifier"
	"github.com/safehaven/peer-support-core/internal/model"
	"github.com/safehaven/peer-support-core/internal/queue"
	"github.com/safehaven/peer-support-core/internal/repository"
	"github.com/safehaven/peer-support-core/internal/rules"
)

// fakeStore is an in-memory Store with the same transition guards as the SQL
// implementation.
type fakeStore struct {
	subs map[string]model.Submission
	cls  map[string]model.ClassificationResult
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subs: make(map[string]model.Submission),
		cls:  make(map[string]model.ClassificationResult),
	}
}

func (f *fakeStore) CreateWithClassification(_ context.Context, sub model.Submission, cls model.ClassificationResult) error {
	sub.CreatedAt = time.Now().UTC()
	f.subs[sub.ID] = sub
	f.cls[sub.ID] = cls
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (model.Submission, error) {
	sub, ok := f.subs[id]
	if !ok {
		return model.Submission{}, repository.ErrNotFound
	}
	return sub, nil
}

func (f *fakeStore) ListQueue(_ context.Context, schoolID uint64) ([]repository.QueueItem, error) {
	var items []repository.QueueItem
	for id, sub := range f.subs {
		if sub.SchoolID != schoolID {
			continue
		}
		if sub.State != model.StateHeld && sub.State != model.StateUnderReview {
			continue
		}
		cls := f.cls[id]
		items = append(items, repository.QueueItem{
			ID:            id,
			AuthorID:      sub.AuthorID,
			SchoolID:      sub.SchoolID,
			Text:          sub.Text,
			State:         sub.State,
			TimeSensitive: sub.TimeSensitive,
			SafetyLevel:   cls.Level,
			Score:         cls.Score,
		})
	}
	return items, nil
}

func (f *fakeStore) Open(_ context.Context, id string) error {
	sub, ok := f.subs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if sub.State != model.StateHeld {
		return repository.ErrInvalidState
	}
	sub.State = model.StateUnderReview
	f.subs[id] = sub
	return nil
}

func (f *fakeStore) Resolve(_ context.Context, id string, counselorID uint64, disposition string) error {
	sub, ok := f.subs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if sub.State != model.StateUnderReview {
		return repository.ErrInvalidState
	}
	sub.State = model.StateResolved
	sub.Disposition = &disposition
	sub.ResolvedBy = &counselorID
	f.subs[id] = sub
	return nil
}

func (f *fakeStore) ExpireStale(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, sub := range f.subs {
		if sub.State == model.StateHeld && sub.CreatedAt.Before(cutoff) {
			sub.State = model.StateExpired
			f.subs[id] = sub
			n++
		}
	}
	return n, nil
}

type fakeAudit struct {
	events []model.AuditEvent
}

func (f *fakeAudit) Insert(_ context.Context, ev model.AuditEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeAudit) byAction(action string) []model.AuditEvent {
	var out []model.AuditEvent
	for _, ev := range f.events {
		if ev.Action == action {
			out = append(out, ev)
		}
	}
	return out
}

type fakeNotifier struct {
	events []queue.ReviewRequiredEvent
	err    error
}

func (f *fakeNotifier) PublishReviewRequired(_ context.Context, ev queue.ReviewRequiredEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeAudit, *fakeNotifier) {
	t.Helper()
	rs := rules.Default()
	store := newFakeStore()
	sink := &fakeAudit{}
	notify := &fakeNotifier{}
	cat := catalog.New([]model.EmergencyResource{
		{Title: "Lifeline", Category: model.CategorySuicide, IsPriority: true},
		{Title: "Text Line", Category: model.CategoryCrisis, IsPriority: true},
	}, rs)
	svc := NewService(classifier.New(rs), cat, store, audit.NewRecorder(sink, zap.NewNop()), notify, zap.NewNop())
	return svc, store, sink, notify
}

func student(id, school uint64) authz.Actor {
	return authz.Actor{ID: id, Role: model.RoleStudent, SchoolID: school}
}

func counselor(id, school uint64) authz.Actor {
	return authz.Actor{ID: id, Role: model.RoleCounselor, SchoolID: school}
}

func TestSubmitSafePublishes(t *testing.T) {
	svc, store, sink, notify := newTestService(t)

	res, err := svc.Submit(context.Background(), student(1, 10), 10, "Great game today!")
	require.NoError(t, err)

	assert.Equal(t, model.LevelSafe, res.SafetyLevel)
	assert.True(t, res.Visible)
	assert.Empty(t, res.Resources)

	sub := store.subs[res.SubmissionID]
	assert.Equal(t, model.StatePublished, sub.State)
	assert.False(t, sub.TimeSensitive)

	assert.Empty(t, notify.events, "safe submissions never notify")
	require.Len(t, sink.byAction(model.AuditSubmissionPublished), 1)
	assert.Empty(t, sink.byAction(model.AuditSubmissionHeld))
}

func TestSubmitCrisisHeldAndNotified(t *testing.T) {
	svc, store, sink, notify := newTestService(t)

	res, err := svc.Submit(context.Background(), student(1, 10), 10, "I want to kill myself tonight")
	require.NoError(t, err)

	assert.Equal(t, model.LevelCrisis, res.SafetyLevel)
	assert.False(t, res.Visible)
	assert.NotEmpty(t, res.Resources, "crisis submissions come back with help resources")

	sub := store.subs[res.SubmissionID]
	assert.Equal(t, model.StateHeld, sub.State)
	assert.True(t, sub.TimeSensitive)

	require.Len(t, notify.events, 1)
	ev := notify.events[0]
	assert.Equal(t, res.SubmissionID, ev.SubmissionID)
	assert.Equal(t, "CRISIS", ev.SafetyLevel)
	assert.Equal(t, "critical", ev.Urgency)
	assert.True(t, ev.TimeSensitive)

	held := sink.byAction(model.AuditSubmissionHeld)
	require.Len(t, held, 1)
	assert.Equal(t, model.OutcomeSuccess, held[0].Outcome)
	assert.Equal(t, res.SubmissionID, held[0].TargetID)
}

func TestSubmitNotifyFailureDoesNotFailSubmission(t *testing.T) {
	svc, store, _, notify := newTestService(t)
	notify.err = assert.AnError

	res, err := svc.Submit(context.Background(), student(1, 10), 10, "I hate myself")
	require.NoError(t, err)
	assert.Equal(t, model.StateHeld, store.subs[res.SubmissionID].State)
}

func TestSubmitRejectsOverlongText(t *testing.T) {
	svc, store, _, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), student(1, 10), 10, strings.Repeat("a", MaxTextLen+1))
	assert.ErrorIs(t, err, ErrTextTooLong)
	assert.Empty(t, store.subs, "nothing persisted on validation failure")
}

func TestQueueCrossSchoolDeniedAndAudited(t *testing.T) {
	svc, _, sink, _ := newTestService(t)

	_, err := svc.Queue(context.Background(), counselor(5, 10), 20)
	assert.ErrorIs(t, err, authz.ErrCrossSchool)

	denied := sink.byAction(model.AuditCounselorDenied)
	require.Len(t, denied, 1)
	assert.Equal(t, model.OutcomeDenied, denied[0].Outcome)
	assert.Equal(t, uint64(20), denied[0].SchoolID)
}

func TestQueueStudentDenied(t *testing.T) {
	svc, _, sink, _ := newTestService(t)

	_, err := svc.Queue(context.Background(), student(5, 10), 10)
	assert.ErrorIs(t, err, authz.ErrInsufficientRole)
	assert.Len(t, sink.byAction(model.AuditCounselorDenied), 1)
}

func TestQueueOwnSchool(t *testing.T) {
	svc, _, sink, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), student(1, 10), 10, "I've been cutting")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), student(2, 20), 20, "hurt myself")
	require.NoError(t, err)

	items, err := svc.Queue(context.Background(), counselor(5, 10), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint64(10), items[0].SchoolID)

	viewed := sink.byAction(model.AuditQueueViewed)
	require.Len(t, viewed, 1)
	assert.Equal(t, model.OutcomeSuccess, viewed[0].Outcome)
}

func TestQueueAdminCrossesSchools(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	admin := authz.Actor{ID: 99, Role: model.RoleAdmin, SchoolID: 1}

	_, err := svc.Queue(context.Background(), admin, 20)
	assert.NoError(t, err)
}

func TestOpenAndResolveLifecycle(t *testing.T) {
	svc, store, sink, _ := newTestService(t)

	res, err := svc.Submit(context.Background(), student(1, 10), 10, "no reason to live")
	require.NoError(t, err)
	c := counselor(5, 10)

	require.NoError(t, svc.Open(context.Background(), c, res.SubmissionID))
	assert.Equal(t, model.StateUnderReview, store.subs[res.SubmissionID].State)

	require.NoError(t, svc.Resolve(context.Background(), c, res.SubmissionID, "contacted student"))
	sub := store.subs[res.SubmissionID]
	assert.Equal(t, model.StateResolved, sub.State)
	require.NotNil(t, sub.Disposition)
	assert.Equal(t, "contacted student", *sub.Disposition)
	require.NotNil(t, sub.ResolvedBy)
	assert.Equal(t, c.ID, *sub.ResolvedBy)

	assert.Len(t, sink.byAction(model.AuditItemOpened), 1)
	assert.Len(t, sink.byAction(model.AuditItemResolved), 1)
}

func TestResolveIsTerminal(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	res, err := svc.Submit(context.Background(), student(1, 10), 10, "no reason to live")
	require.NoError(t, err)
	c := counselor(5, 10)

	require.NoError(t, svc.Open(context.Background(), c, res.SubmissionID))
	require.NoError(t, svc.Resolve(context.Background(), c, res.SubmissionID, "done"))

	err = svc.Resolve(context.Background(), c, res.SubmissionID, "again")
	assert.ErrorIs(t, err, repository.ErrInvalidState)
}

func TestOpenRequiresHeldState(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	// Published entries are not in the review pipeline.
	res, err := svc.Submit(context.Background(), student(1, 10), 10, "nice day")
	require.NoError(t, err)

	err = svc.Open(context.Background(), counselor(5, 10), res.SubmissionID)
	assert.ErrorIs(t, err, repository.ErrInvalidState)
}

func TestOpenCrossSchoolDenied(t *testing.T) {
	svc, store, sink, _ := newTestService(t)

	res, err := svc.Submit(context.Background(), student(1, 10), 10, "want to die")
	require.NoError(t, err)

	err = svc.Open(context.Background(), counselor(5, 20), res.SubmissionID)
	assert.ErrorIs(t, err, authz.ErrCrossSchool)
	assert.Equal(t, model.StateHeld, store.subs[res.SubmissionID].State)
	assert.Len(t, sink.byAction(model.AuditCounselorDenied), 1)
}

func TestOpenMissingSubmission(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	err := svc.Open(context.Background(), counselor(5, 10), "no-such-id")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestExpireStaleAdminOnly(t *testing.T) {
	svc, store, sink, _ := newTestService(t)

	res, err := svc.Submit(context.Background(), student(1, 10), 10, "want to die")
	require.NoError(t, err)
	// Backdate the held entry past the cutoff.
	sub := store.subs[res.SubmissionID]
	sub.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	store.subs[res.SubmissionID] = sub

	_, err = svc.ExpireStale(context.Background(), counselor(5, 10), time.Now().UTC())
	assert.ErrorIs(t, err, authz.ErrInsufficientRole)
	assert.Len(t, sink.byAction(model.AuditCounselorDenied), 1)

	admin := authz.Actor{ID: 99, Role: model.RoleAdmin}
	n, err := svc.ExpireStale(context.Background(), admin, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, model.StateExpired, store.subs[res.SubmissionID].State)
	assert.Len(t, sink.byAction(model.AuditItemExpired), 1)
}
