package intake_test

import (
	"encoding/json"
	"errors"
	"testing"

	"speakup/backend/internal/intake"
	"speakup/backend/internal/models"
	"speakup/backend/internal/pipeline"
	"speakup/backend/internal/screening"
	"speakup/backend/internal/tasks"
	"speakup/backend/internal/trust"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const validContent = "The heating in the west wing has been broken for over a week now."

type fixture struct {
	store     *MockStore
	gate      *MockGate
	trust     *MockTrust
	lifecycle *MockLifecycle
	queue     *MockQueue
	service   *intake.Service
}

func newFixture() *fixture {
	f := &fixture{
		store:     new(MockStore),
		gate:      new(MockGate),
		trust:     new(MockTrust),
		lifecycle: new(MockLifecycle),
		queue:     new(MockQueue),
	}
	f.service = intake.NewService(f.store, f.gate, f.trust, f.lifecycle, f.queue)
	return f
}

func (f *fixture) withUser(id, role string) {
	f.store.On("GetUserByID", id).Return(&models.User{ID: id, Role: role, TrustScore: 50}, nil)
}

// TestSubmitAdmitsAndDispatches verifies the happy path: atomic admission
// followed by the classify and route tasks.
func TestSubmitAdmitsAndDispatches(t *testing.T) {
	f := newFixture()
	f.withUser("user-1", models.RoleSubmitter)
	f.gate.On("Screen", validContent, "user-1").Return(screening.Verdict{})
	f.store.On("AdmitComplaint", mock.AnythingOfType("*models.Complaint"), "user-1").Return(nil)
	f.queue.On("EnqueueTask", mock.Anything).Return(nil)

	complaint, err := f.service.Submit("user-1", "Broken heating", "facilities", validContent)

	assert.NoError(t, err)
	assert.Equal(t, "Broken heating", complaint.Title)
	assert.Equal(t, "facilities", complaint.Category)

	// Two tasks, classify and route, both carrying the complaint id.
	assert.Len(t, f.queue.payloads, 2)
	kinds := make(map[string]tasks.Task)
	for _, payload := range f.queue.payloads {
		var task tasks.Task
		assert.NoError(t, json.Unmarshal(payload, &task))
		assert.Equal(t, complaint.ID, task.ComplaintID)
		kinds[task.Kind] = task
	}
	assert.Contains(t, kinds, tasks.KindClassify)
	assert.Contains(t, kinds, tasks.KindRoute)
	assert.Equal(t, validContent, kinds[tasks.KindClassify].Content)
	assert.Equal(t, "facilities", kinds[tasks.KindRoute].Category)

	f.trust.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubmitSpamRejected verifies the rejection path: no admission, a spam
// report, the trust penalty, and the reasons surfaced to the caller.
func TestSubmitSpamRejected(t *testing.T) {
	f := newFixture()
	f.withUser("user-1", models.RoleSubmitter)
	reasons := []string{"Spam keywords detected: test", "Content too short (minimum 20 characters)"}
	f.gate.On("Screen", "asdf test", "user-1").Return(screening.Verdict{IsSpam: true, Reasons: reasons})
	f.store.On("CreateSpamReport", mock.AnythingOfType("*models.SpamReport")).Return(nil)
	f.trust.On("Apply", "user-1", trust.ActionSpamDetected, (*string)(nil)).
		Return(&trust.Result{OldScore: 50, NewScore: 40, Change: -10}, nil)

	complaint, err := f.service.Submit("user-1", "Title here", "facilities", "asdf test")

	assert.Nil(t, complaint)
	var spam *pipeline.SpamRejectedError
	assert.ErrorAs(t, err, &spam)
	assert.Equal(t, reasons, spam.Reasons)

	f.store.AssertNotCalled(t, "AdmitComplaint", mock.Anything, mock.Anything)
	assert.Empty(t, f.queue.payloads)
	f.trust.AssertExpectations(t)
}

// TestSubmitValidation verifies empty fields are rejected before any side
// effect, screening included.
func TestSubmitValidation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name     string
		title    string
		category string
		content  string
	}{
		{"empty title", " ", "facilities", validContent},
		{"empty category", "Broken heating", "", validContent},
		{"empty content", "Broken heating", "facilities", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Submit("user-1", tt.title, tt.category, tt.content)

			var validation *pipeline.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
	f.gate.AssertNotCalled(t, "Screen", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "AdmitComplaint", mock.Anything, mock.Anything)
}

// TestSubmitUnknownSubmitter verifies submissions from ids the identity
// provider never issued are refused.
func TestSubmitUnknownSubmitter(t *testing.T) {
	f := newFixture()
	f.store.On("GetUserByID", "ghost").Return(nil, nil)

	_, err := f.service.Submit("ghost", "Broken heating", "facilities", validContent)

	assert.ErrorIs(t, err, pipeline.ErrNotFound)
}

// TestSubmitEnqueueFailureDoesNotFailSubmission verifies the
// fire-and-forget contract: a dead queue is logged, the admitted
// submission still succeeds.
func TestSubmitEnqueueFailureDoesNotFailSubmission(t *testing.T) {
	f := newFixture()
	f.withUser("user-1", models.RoleSubmitter)
	f.gate.On("Screen", validContent, "user-1").Return(screening.Verdict{})
	f.store.On("AdmitComplaint", mock.AnythingOfType("*models.Complaint"), "user-1").Return(nil)
	f.queue.On("EnqueueTask", mock.Anything).Return(errors.New("redis down"))

	complaint, err := f.service.Submit("user-1", "Broken heating", "facilities", validContent)

	assert.NoError(t, err)
	assert.NotNil(t, complaint)
}

// TestRevealIdentityForbiddenRoles verifies non-auditors are refused and
// the mapping is never touched, so no audit row can exist either.
func TestRevealIdentityForbiddenRoles(t *testing.T) {
	for _, role := range []string{models.RoleSubmitter, models.RoleHandler} {
		f := newFixture()
		f.withUser("actor-1", role)

		_, err := f.service.RevealIdentity("actor-1", "c-1")

		assert.ErrorIs(t, err, pipeline.ErrForbidden)
		f.store.AssertNotCalled(t, "RevealSubmitter", mock.Anything, mock.Anything)
	}
}

// TestRevealIdentityAuditor verifies the auditor path goes through the
// audited reveal exactly once per call.
func TestRevealIdentityAuditor(t *testing.T) {
	f := newFixture()
	f.withUser("auditor-1", models.RoleAuditor)
	f.store.On("RevealSubmitter", "c-1", "auditor-1").Return("user-9", nil)

	submitterID, err := f.service.RevealIdentity("auditor-1", "c-1")

	assert.NoError(t, err)
	assert.Equal(t, "user-9", submitterID)
	f.store.AssertNumberOfCalls(t, "RevealSubmitter", 1)
}

// TestRevealIdentityUnknownComplaint verifies the not-found path.
func TestRevealIdentityUnknownComplaint(t *testing.T) {
	f := newFixture()
	f.withUser("auditor-1", models.RoleAuditor)
	f.store.On("RevealSubmitter", "missing", "auditor-1").Return("", nil)

	_, err := f.service.RevealIdentity("auditor-1", "missing")

	assert.ErrorIs(t, err, pipeline.ErrNotFound)
}

// TestUpdateStatusRequiresHandlerRole verifies the role gate in front of
// the lifecycle manager.
func TestUpdateStatusRequiresHandlerRole(t *testing.T) {
	f := newFixture()
	f.withUser("user-1", models.RoleSubmitter)

	_, err := f.service.UpdateStatus("c-1", models.StatusInProgress, "user-1")

	assert.ErrorIs(t, err, pipeline.ErrForbidden)
	f.lifecycle.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

// TestUpdateStatusDelegatesForHandler verifies handlers reach the state
// machine.
func TestUpdateStatusDelegatesForHandler(t *testing.T) {
	f := newFixture()
	f.withUser("handler-1", models.RoleHandler)
	expected := &models.Complaint{ID: "c-1", Status: models.StatusInProgress}
	f.lifecycle.On("UpdateStatus", "c-1", models.StatusInProgress, "handler-1").Return(expected, nil)

	complaint, err := f.service.UpdateStatus("c-1", models.StatusInProgress, "handler-1")

	assert.NoError(t, err)
	assert.Equal(t, expected, complaint)
}

// TestValidateComplaintFirstTime verifies the single credit on a first
// validation.
func TestValidateComplaintFirstTime(t *testing.T) {
	f := newFixture()
	f.withUser("auditor-1", models.RoleAuditor)
	f.store.On("RevealSubmitter", "c-1", "auditor-1").Return("user-9", nil)
	f.store.On("CountTrustActions", "user-9", trust.ActionValidated).Return(int64(0), nil)
	f.trust.On("Apply", "user-9", trust.ActionValidated, mock.Anything).
		Return(&trust.Result{OldScore: 50, NewScore: 55, Change: 5}, nil).Once()

	err := f.service.ValidateComplaint("auditor-1", "c-1")

	assert.NoError(t, err)
	f.trust.AssertExpectations(t)
	f.trust.AssertNumberOfCalls(t, "Apply", 1)
}

// TestValidateComplaintRepeated verifies the extra reward once a prior
// validated complaint is on record.
func TestValidateComplaintRepeated(t *testing.T) {
	f := newFixture()
	f.withUser("auditor-1", models.RoleAuditor)
	f.store.On("RevealSubmitter", "c-2", "auditor-1").Return("user-9", nil)
	f.store.On("CountTrustActions", "user-9", trust.ActionValidated).Return(int64(1), nil)
	f.trust.On("Apply", "user-9", trust.ActionValidated, mock.Anything).
		Return(&trust.Result{OldScore: 55, NewScore: 60, Change: 5}, nil).Once()
	f.trust.On("Apply", "user-9", trust.ActionRepeatedValid, mock.Anything).
		Return(&trust.Result{OldScore: 60, NewScore: 62, Change: 2}, nil).Once()

	err := f.service.ValidateComplaint("auditor-1", "c-2")

	assert.NoError(t, err)
	f.trust.AssertExpectations(t)
}

// TestDismissComplaint verifies the false-complaint penalty lands on the
// mapped submitter.
func TestDismissComplaint(t *testing.T) {
	f := newFixture()
	f.withUser("auditor-1", models.RoleAuditor)
	f.store.On("RevealSubmitter", "c-1", "auditor-1").Return("user-9", nil)
	f.trust.On("Apply", "user-9", trust.ActionFalseComplaint, mock.Anything).
		Return(&trust.Result{OldScore: 50, NewScore: 35, Change: -15}, nil).Once()

	err := f.service.DismissComplaint("auditor-1", "c-1")

	assert.NoError(t, err)
	f.trust.AssertExpectations(t)
}

// TestGetTrustHistoryCapsPageSize verifies the submitter view is limited
// to the recent entries.
func TestGetTrustHistoryCapsPageSize(t *testing.T) {
	f := newFixture()
	f.store.On("GetTrustHistory", "user-1", 10).Return([]models.TrustHistory{}, nil)

	_, err := f.service.GetTrustHistory("user-1")

	assert.NoError(t, err)
	f.store.AssertExpectations(t)
}
