package tasks_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"speakup/backend/internal/routing"
	"speakup/backend/internal/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) EnqueueTask(payload []byte) error {
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

type MockStore struct {
	mock.Mock
}

func (m *MockStore) UpdateComplaintSeverity(id, severity string) error {
	args := m.Called(id, severity)
	return args.Error(0)
}

type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) Route(complaintID, category string) (routing.Result, error) {
	args := m.Called(complaintID, category)
	return args.Get(0).(routing.Result), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ComplaintAssigned(complaintID, title, handlerID, department string) {
	m.Called(complaintID, title, handlerID, department)
}

func (m *MockNotifier) CriticalComplaint(complaintID, title string) {
	m.Called(complaintID, title)
}

// TestEnqueueSerializesTask verifies the wire shape of a queued task.
func TestEnqueueSerializesTask(t *testing.T) {
	queue := new(MockQueue)
	queue.On("EnqueueTask", mock.Anything).Return(nil)

	err := tasks.Enqueue(queue, tasks.Task{
		Kind:        tasks.KindRoute,
		ComplaintID: "c-1",
		Category:    "facilities",
	})

	assert.NoError(t, err)
	payload := queue.Calls[0].Arguments.Get(0).([]byte)
	var decoded tasks.Task
	assert.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, tasks.KindRoute, decoded.Kind)
	assert.Equal(t, "c-1", decoded.ComplaintID)
	assert.Equal(t, "facilities", decoded.Category)
	assert.Zero(t, decoded.Attempts)
}

// TestHandleClassifyUpdatesSeverity verifies the classify task stores the
// computed tier.
func TestHandleClassifyUpdatesSeverity(t *testing.T) {
	store := new(MockStore)
	store.On("UpdateComplaintSeverity", "c-1", "low").Return(nil)
	worker := tasks.NewWorker(new(MockQueue), store, new(MockRouter), nil)

	err := worker.Handle(tasks.Task{
		Kind:        tasks.KindClassify,
		ComplaintID: "c-1",
		Content:     "The projector in room 204 keeps turning itself off during lectures.",
	})

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

// TestHandleClassifyCriticalAlerts verifies a critical classification
// triggers the notifier.
func TestHandleClassifyCriticalAlerts(t *testing.T) {
	store := new(MockStore)
	store.On("UpdateComplaintSeverity", "c-1", "critical").Return(nil)
	notifier := new(MockNotifier)
	notifier.On("CriticalComplaint", "c-1", "Urgent danger").Return()
	worker := tasks.NewWorker(new(MockQueue), store, new(MockRouter), notifier)

	err := worker.Handle(tasks.Task{
		Kind:        tasks.KindClassify,
		ComplaintID: "c-1",
		Title:       "Urgent danger",
		Content:     "urgent dangerous threat harassment abuse assault violence emergency unsafe injury",
	})

	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

// TestHandleRouteNotifiesAssignment verifies the route task alerts on a
// successful assignment.
func TestHandleRouteNotifiesAssignment(t *testing.T) {
	router := new(MockRouter)
	router.On("Route", "c-1", "facilities").
		Return(routing.Result{Assigned: true, HandlerID: "h-1", Department: "Facilities & Maintenance"}, nil)
	notifier := new(MockNotifier)
	notifier.On("ComplaintAssigned", "c-1", "Broken heating", "h-1", "Facilities & Maintenance").Return()
	worker := tasks.NewWorker(new(MockQueue), new(MockStore), router, notifier)

	err := worker.Handle(tasks.Task{
		Kind:        tasks.KindRoute,
		ComplaintID: "c-1",
		Title:       "Broken heating",
		Category:    "facilities",
	})

	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

// TestHandleRouteUnassignedStaysQuiet verifies no alert fires for a
// complaint left in the unrouted pool.
func TestHandleRouteUnassignedStaysQuiet(t *testing.T) {
	router := new(MockRouter)
	router.On("Route", "c-1", "astrology").Return(routing.Result{}, nil)
	notifier := new(MockNotifier)
	worker := tasks.NewWorker(new(MockQueue), new(MockStore), router, notifier)

	err := worker.Handle(tasks.Task{Kind: tasks.KindRoute, ComplaintID: "c-1", Category: "astrology"})

	assert.NoError(t, err)
	notifier.AssertNotCalled(t, "ComplaintAssigned", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestHandlePropagatesStoreErrors verifies a failing side effect surfaces
// so the worker can requeue.
func TestHandlePropagatesStoreErrors(t *testing.T) {
	store := new(MockStore)
	store.On("UpdateComplaintSeverity", "c-1", mock.Anything).Return(errors.New("db down"))
	worker := tasks.NewWorker(new(MockQueue), store, new(MockRouter), nil)

	err := worker.Handle(tasks.Task{Kind: tasks.KindClassify, ComplaintID: "c-1", Content: "some text"})

	assert.Error(t, err)
}

// TestHandleUnknownKindDropped verifies malformed kinds are dropped without
// error, so they are never requeued.
func TestHandleUnknownKindDropped(t *testing.T) {
	worker := tasks.NewWorker(new(MockQueue), new(MockStore), new(MockRouter), nil)

	err := worker.Handle(tasks.Task{Kind: "mystery", ComplaintID: "c-1"})

	assert.NoError(t, err)
}
