// Package lifecycle owns the complaint status state machine and the
// feedback rules, including reopening on negative ratings.
package lifecycle

import (
	"log"
	"time"

	"speakup/backend/internal/models"
	"speakup/backend/internal/pipeline"
	"speakup/backend/internal/trust"
)

type Store interface {
	GetComplaintByID(id string) (*models.Complaint, error)
	SaveComplaint(complaint *models.Complaint) error
	GetSubmitterID(complaintID string) (string, error)
	GetFeedbackByComplaint(complaintID string) (*models.Feedback, error)
	CreateFeedback(feedback *models.Feedback) error
}

// TrustEngine is the closed mutation surface for submitter scores.
type TrustEngine interface {
	Apply(userID, action string, complaintID *string) (*trust.Result, error)
}

type Manager struct {
	Store Store
	Trust TrustEngine
}

func NewManager(store Store, trustEngine TrustEngine) *Manager {
	return &Manager{Store: store, Trust: trustEngine}
}

// canTransition encodes the handler-driven moves of the state machine:
//
//	pending -> in_progress -> resolved -> reopened -> in_progress
//
// The resolved -> reopened edge is missing on purpose: reopening happens
// only through feedback with a low rating, never by direct status update.
func canTransition(from, to string) bool {
	switch from {
	case models.StatusPending:
		return to == models.StatusInProgress
	case models.StatusInProgress:
		return to == models.StatusResolved
	case models.StatusReopened:
		return to == models.StatusInProgress
	default:
		return false
	}
}

// UpdateStatus applies a handler transition. Invalid transitions fail with
// ErrInvalidTransition and leave the complaint untouched.
func (m *Manager) UpdateStatus(complaintID, newStatus, actorID string) (*models.Complaint, error) {
	complaint, err := m.Store.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, pipeline.ErrNotFound
	}

	if !canTransition(complaint.Status, newStatus) {
		return nil, pipeline.ErrInvalidTransition
	}

	complaint.Status = newStatus

	switch newStatus {
	case models.StatusInProgress:
		if complaint.AssignedTo == nil {
			actor := actorID
			complaint.AssignedTo = &actor
		}
	case models.StatusResolved:
		now := time.Now()
		complaint.ResolvedAt = &now
	}

	if err := m.Store.SaveComplaint(complaint); err != nil {
		return nil, err
	}

	log.Printf("INFO: Complaint %s moved to %s by %s", complaintID, newStatus, actorID)
	return complaint, nil
}

// SubmitFeedback records the submitter's rating of a resolved complaint.
// The submitter is verified against the anonymous map, never taken from
// the request. A rating >= 3 credits the resolution; a rating < 3 applies
// the low-rating penalty and reopens the complaint.
func (m *Manager) SubmitFeedback(submitterID, complaintID string, rating int, comment string) (*models.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, &pipeline.ValidationError{Field: "rating", Msg: "must be between 1 and 5"}
	}

	complaint, err := m.Store.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, pipeline.ErrNotFound
	}

	mappedID, err := m.Store.GetSubmitterID(complaintID)
	if err != nil {
		return nil, err
	}
	if mappedID != submitterID {
		return nil, pipeline.ErrForbidden
	}

	if complaint.Status != models.StatusResolved {
		return nil, pipeline.ErrInvalidTransition
	}

	existing, err := m.Store.GetFeedbackByComplaint(complaintID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &pipeline.ValidationError{Field: "complaint_id", Msg: "feedback already submitted"}
	}

	feedback := &models.Feedback{
		ComplaintID: complaintID,
		Rating:      rating,
		Comment:     comment,
	}
	if err := m.Store.CreateFeedback(feedback); err != nil {
		return nil, err
	}

	if rating >= 3 {
		// The resolution credit is feedback-driven, not automatic on the
		// status change to resolved.
		if _, err := m.Trust.Apply(submitterID, trust.ActionResolvedPositive, &complaintID); err != nil {
			return nil, err
		}
		if _, err := m.Trust.Apply(submitterID, trust.ActionHighRating, &complaintID); err != nil {
			return nil, err
		}
		return feedback, nil
	}

	// Reopen before applying the penalty: a failed save must not leave a
	// low-rating entry against a complaint still marked resolved.
	complaint.Status = models.StatusReopened
	if err := m.Store.SaveComplaint(complaint); err != nil {
		return nil, err
	}
	log.Printf("INFO: Complaint %s reopened after rating %d", complaintID, rating)

	if _, err := m.Trust.Apply(submitterID, trust.ActionLowRating, &complaintID); err != nil {
		return nil, err
	}

	return feedback, nil
}
