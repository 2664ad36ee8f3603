package intake_test

import (
	"time"

	"speakup/backend/internal/models"
	"speakup/backend/internal/screening"
	"speakup/backend/internal/storage"
	"speakup/backend/internal/trust"

	"github.com/stretchr/testify/mock"
)

// MockStore covers the orchestrator's slice of the storage surface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) AdmitComplaint(complaint *models.Complaint, userID string) error {
	args := m.Called(complaint, userID)
	return args.Error(0)
}

func (m *MockStore) GetComplaintByID(id string) (*models.Complaint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStore) ListOwnComplaints(userID string) ([]models.Complaint, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStore) ListComplaints(filter storage.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStore) RevealSubmitter(complaintID, viewerID string) (string, error) {
	args := m.Called(complaintID, viewerID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetSubmitterID(complaintID string) (string, error) {
	args := m.Called(complaintID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetTrustHistory(userID string, limit int) ([]models.TrustHistory, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TrustHistory), args.Error(1)
}

func (m *MockStore) CountTrustActions(userID, action string) (int64, error) {
	args := m.Called(userID, action)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) CreateSpamReport(report *models.SpamReport) error {
	args := m.Called(report)
	return args.Error(0)
}

// MockGate returns a canned screening verdict.
type MockGate struct {
	mock.Mock
}

func (m *MockGate) Screen(content, submitterID string) screening.Verdict {
	args := m.Called(content, submitterID)
	return args.Get(0).(screening.Verdict)
}

type MockTrust struct {
	mock.Mock
}

func (m *MockTrust) Apply(userID, action string, complaintID *string) (*trust.Result, error) {
	args := m.Called(userID, action, complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trust.Result), args.Error(1)
}

type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) UpdateStatus(complaintID, newStatus, actorID string) (*models.Complaint, error) {
	args := m.Called(complaintID, newStatus, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockLifecycle) SubmitFeedback(submitterID, complaintID string, rating int, comment string) (*models.Feedback, error) {
	args := m.Called(submitterID, complaintID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feedback), args.Error(1)
}

// MockQueue captures enqueued task payloads for inspection.
type MockQueue struct {
	mock.Mock
	payloads [][]byte
}

func (m *MockQueue) EnqueueTask(payload []byte) error {
	m.payloads = append(m.payloads, payload)
	args := m.Called(payload)
	return args.Error(0)
}

func (m *MockQueue) DequeueTask(timeout time.Duration) ([]byte, error) {
	args := m.Called(timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
