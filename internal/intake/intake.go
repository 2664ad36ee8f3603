// Package intake composes the screening gate, anonymity store, classifier,
// router, lifecycle manager, and trust engine into the end-to-end
// submission pipeline, and exposes its public operations.
package intake

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"

	"speakup/backend/internal/config"
	"speakup/backend/internal/models"
	"speakup/backend/internal/pipeline"
	"speakup/backend/internal/screening"
	"speakup/backend/internal/storage"
	"speakup/backend/internal/tasks"
	"speakup/backend/internal/trust"
)

type Store interface {
	GetUserByID(id string) (*models.User, error)
	AdmitComplaint(complaint *models.Complaint, userID string) error
	GetComplaintByID(id string) (*models.Complaint, error)
	ListOwnComplaints(userID string) ([]models.Complaint, error)
	ListComplaints(filter storage.ComplaintFilter) ([]models.Complaint, error)
	RevealSubmitter(complaintID, viewerID string) (string, error)
	GetSubmitterID(complaintID string) (string, error)
	GetTrustHistory(userID string, limit int) ([]models.TrustHistory, error)
	CountTrustActions(userID, action string) (int64, error)
	CreateSpamReport(report *models.SpamReport) error
}

type Gate interface {
	Screen(content, submitterID string) screening.Verdict
}

type TrustEngine interface {
	Apply(userID, action string, complaintID *string) (*trust.Result, error)
}

type Lifecycle interface {
	UpdateStatus(complaintID, newStatus, actorID string) (*models.Complaint, error)
	SubmitFeedback(submitterID, complaintID string, rating int, comment string) (*models.Feedback, error)
}

// Service is the intake orchestrator.
type Service struct {
	Store     Store
	Gate      Gate
	Trust     TrustEngine
	Lifecycle Lifecycle
	Queue     tasks.Queue
}

func NewService(store Store, gate Gate, trustEngine TrustEngine, lifecycle Lifecycle, queue tasks.Queue) *Service {
	return &Service{
		Store:     store,
		Gate:      gate,
		Trust:     trustEngine,
		Lifecycle: lifecycle,
		Queue:     queue,
	}
}

// Submit runs the full admission flow: validation, screening, atomic
// creation of the complaint and its anonymous mapping, then dispatch of
// the classification and routing tasks. By the time the tasks run, the
// submission has already succeeded; their failures are logged, never
// surfaced.
func (s *Service) Submit(submitterID, title, category, content string) (*models.Complaint, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &pipeline.ValidationError{Field: "title", Msg: "must not be empty"}
	}
	if strings.TrimSpace(category) == "" {
		return nil, &pipeline.ValidationError{Field: "category", Msg: "must not be empty"}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &pipeline.ValidationError{Field: "content", Msg: "must not be empty"}
	}

	submitter, err := s.Store.GetUserByID(submitterID)
	if err != nil {
		return nil, err
	}
	if submitter == nil {
		return nil, pipeline.ErrNotFound
	}

	verdict := s.Gate.Screen(content, submitterID)
	if verdict.IsSpam {
		s.recordRejection(submitterID, content, verdict.Reasons)
		return nil, &pipeline.SpamRejectedError{Reasons: verdict.Reasons}
	}

	complaint := &models.Complaint{
		Title:    title,
		Content:  content,
		Category: category,
	}
	if err := s.Store.AdmitComplaint(complaint, submitterID); err != nil {
		return nil, err
	}

	s.dispatch(tasks.Task{
		Kind:        tasks.KindClassify,
		ComplaintID: complaint.ID,
		Title:       complaint.Title,
		Content:     complaint.Content,
	})
	s.dispatch(tasks.Task{
		Kind:        tasks.KindRoute,
		ComplaintID: complaint.ID,
		Title:       complaint.Title,
		Category:    complaint.Category,
	})

	return complaint, nil
}

// recordRejection persists the spam report and applies the trust penalty.
// Both are side effects of an already-decided rejection: failures are
// logged, the rejection stands either way.
func (s *Service) recordRejection(submitterID, content string, reasons []string) {
	hash := sha256.Sum256([]byte(content))
	report := &models.SpamReport{
		UserID:      submitterID,
		Reasons:     reasons,
		ContentHash: hex.EncodeToString(hash[:]),
	}
	if err := s.Store.CreateSpamReport(report); err != nil {
		log.Printf("ERROR: Failed to record spam report for user %s: %v", submitterID, err)
	}

	if _, err := s.Trust.Apply(submitterID, trust.ActionSpamDetected, nil); err != nil {
		log.Printf("ERROR: Failed to apply spam penalty for user %s: %v", submitterID, err)
	}
}

func (s *Service) dispatch(task tasks.Task) {
	if err := tasks.Enqueue(s.Queue, task); err != nil {
		log.Printf("ERROR: Failed to enqueue %s task for complaint %s: %v", task.Kind, task.ComplaintID, err)
	}
}

// ListOwn returns the caller's complaints, resolved through the anonymous
// mapping.
func (s *Service) ListOwn(submitterID string) ([]models.Complaint, error) {
	return s.Store.ListOwnComplaints(submitterID)
}

// ListAll is the handler/auditor view over all complaints. It exposes no
// submitter identity.
func (s *Service) ListAll(filter storage.ComplaintFilter) ([]models.Complaint, error) {
	return s.Store.ListComplaints(filter)
}

// UpdateStatus applies a handler lifecycle transition.
func (s *Service) UpdateStatus(complaintID, newStatus, actorID string) (*models.Complaint, error) {
	actor, err := s.Store.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Role != models.RoleHandler {
		return nil, pipeline.ErrForbidden
	}
	return s.Lifecycle.UpdateStatus(complaintID, newStatus, actorID)
}

// SubmitFeedback records the submitter's rating of a resolved complaint.
func (s *Service) SubmitFeedback(submitterID, complaintID string, rating int, comment string) (*models.Feedback, error) {
	return s.Lifecycle.SubmitFeedback(submitterID, complaintID, rating, comment)
}

// RevealIdentity resolves a complaint's submitter for an auditor. The
// audit record is durable before the identity is returned; any other role
// fails with ErrForbidden and leaves no trace of an attempt on the map.
func (s *Service) RevealIdentity(actorID, complaintID string) (string, error) {
	actor, err := s.Store.GetUserByID(actorID)
	if err != nil {
		return "", err
	}
	if actor == nil || actor.Role != models.RoleAuditor {
		return "", pipeline.ErrForbidden
	}

	submitterID, err := s.Store.RevealSubmitter(complaintID, actorID)
	if err != nil {
		return "", err
	}
	if submitterID == "" {
		return "", pipeline.ErrNotFound
	}
	return submitterID, nil
}

// GetTrustHistory returns the submitter's most recent trust mutations.
func (s *Service) GetTrustHistory(submitterID string) ([]models.TrustHistory, error) {
	return s.Store.GetTrustHistory(submitterID, config.TrustHistoryLimit)
}

// ValidateComplaint is the auditor acknowledging a complaint as genuine:
// the mapped submitter is credited, with an extra reward when they already
// have a validated complaint on record.
func (s *Service) ValidateComplaint(actorID, complaintID string) error {
	submitterID, err := s.auditedSubmitter(actorID, complaintID)
	if err != nil {
		return err
	}

	prior, err := s.Store.CountTrustActions(submitterID, trust.ActionValidated)
	if err != nil {
		return err
	}

	if _, err := s.Trust.Apply(submitterID, trust.ActionValidated, &complaintID); err != nil {
		return err
	}
	if prior > 0 {
		if _, err := s.Trust.Apply(submitterID, trust.ActionRepeatedValid, &complaintID); err != nil {
			return err
		}
	}
	return nil
}

// DismissComplaint is the auditor marking a complaint as false; the mapped
// submitter takes the penalty.
func (s *Service) DismissComplaint(actorID, complaintID string) error {
	submitterID, err := s.auditedSubmitter(actorID, complaintID)
	if err != nil {
		return err
	}
	_, err = s.Trust.Apply(submitterID, trust.ActionFalseComplaint, &complaintID)
	return err
}

// auditedSubmitter gates on the auditor role and resolves the submitter
// through the audited reveal path, so validation and dismissal leave the
// same trail as any other identity access.
func (s *Service) auditedSubmitter(actorID, complaintID string) (string, error) {
	actor, err := s.Store.GetUserByID(actorID)
	if err != nil {
		return "", err
	}
	if actor == nil || actor.Role != models.RoleAuditor {
		return "", pipeline.ErrForbidden
	}

	submitterID, err := s.Store.RevealSubmitter(complaintID, actorID)
	if err != nil {
		return "", err
	}
	if submitterID == "" {
		return "", pipeline.ErrNotFound
	}
	return submitterID, nil
}
