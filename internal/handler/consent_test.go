package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safehaven/peer-support-core/internal/audit"
	"github.com/safehaven/peer-support-core/internal/errcode"
	"github.com/safehaven/peer-support-core/internal/model"
	"github.com/safehaven/peer-support-core/internal/repository"
)

type fakeConsentStore struct {
	rec     model.ConsentRecord
	err     error
	queried []uint64
}

func (f *fakeConsentStore) Latest(_ context.Context, studentID uint64) (model.ConsentRecord, error) {
	f.queried = append(f.queried, studentID)
	return f.rec, f.err
}
func (f *fakeConsentStore) Approve(context.Context, uint64) error { return nil }
func (f *fakeConsentStore) Deny(context.Context, uint64) error    { return nil }

type fakeDirectory struct {
	users map[uint64]model.User
}

func (f *fakeDirectory) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type noopAudit struct{}

func (noopAudit) Insert(context.Context, model.AuditEvent) error { return nil }

func statusRequest(t *testing.T, h *ConsentHandler, studentID string, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/consent/"+studentID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/consent/:studentID")
	c.SetParamNames("studentID")
	c.SetParamValues(studentID)
	setup(c)
	require.NoError(t, h.Status(c))
	return rec
}

func asActor(id uint64, role string, schoolID uint64) func(echo.Context) {
	return func(c echo.Context) {
		c.Set("user_id", id)
		c.Set("role", role)
		c.Set("school_id", schoolID)
	}
}

func newConsentTestHandler() (*ConsentHandler, *fakeConsentStore) {
	exp := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeConsentStore{rec: model.ConsentRecord{
		ID:            1,
		StudentID:     42,
		Status:        model.ConsentPending,
		LinkExpiresAt: &exp,
	}}
	dir := &fakeDirectory{users: map[uint64]model.User{
		42: {ID: 42, Role: model.RoleStudent, SchoolID: 10},
	}}
	return NewConsentHandler(store, dir, audit.NewRecorder(noopAudit{}, zap.NewNop())), store
}

func TestConsentStatusStudentReadsOwn(t *testing.T) {
	h, _ := newConsentTestHandler()
	rec := statusRequest(t, h, "42", asActor(42, model.RoleStudent, 10))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
}

func TestConsentStatusStudentCannotReadOthers(t *testing.T) {
	h, store := newConsentTestHandler()
	rec := statusRequest(t, h, "42", asActor(7, model.RoleStudent, 10))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), errcode.InsufficientPrivileges)
	assert.Empty(t, store.queried, "ledger must not be consulted on denial")
}

func TestConsentStatusCounselorSameSchool(t *testing.T) {
	h, store := newConsentTestHandler()
	rec := statusRequest(t, h, "42", asActor(5, model.RoleCounselor, 10))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"student_id":42`)
	assert.Equal(t, []uint64{42}, store.queried)
}

func TestConsentStatusCounselorCrossSchoolDenied(t *testing.T) {
	h, store := newConsentTestHandler()
	rec := statusRequest(t, h, "42", asActor(5, model.RoleCounselor, 20))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), errcode.CrossSchoolAccessDenied)
	assert.Empty(t, store.queried)
}

func TestConsentStatusCounselorUnknownStudent(t *testing.T) {
	h, _ := newConsentTestHandler()
	rec := statusRequest(t, h, "99", asActor(5, model.RoleCounselor, 10))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), errcode.NotFound)
}

func TestConsentStatusAdminCrossesSchools(t *testing.T) {
	h, _ := newConsentTestHandler()
	rec := statusRequest(t, h, "42", asActor(99, model.RoleAdmin, 20))
	assert.Equal(t, http.StatusOK, rec.Code)
}
