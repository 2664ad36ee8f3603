package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"speakup/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Storage is the persistence surface the pipeline is built on. Postgres
// holds the durable tables; Redis carries the task queue and the thread
// pub/sub channels.
type Storage interface {
	SaveUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListHandlers() ([]models.User, error)

	ApplyTrustAction(userID string, complaintID *string, action string, calc func(current int) (delta, next int)) (*models.TrustHistory, error)
	GetTrustHistory(userID string, limit int) ([]models.TrustHistory, error)
	CountTrustActions(userID, action string) (int64, error)

	AdmitComplaint(complaint *models.Complaint, userID string) error
	GetComplaintByID(id string) (*models.Complaint, error)
	SaveComplaint(complaint *models.Complaint) error
	ListComplaints(filter ComplaintFilter) ([]models.Complaint, error)
	ListOwnComplaints(userID string) ([]models.Complaint, error)
	UpdateComplaintSeverity(id, severity string) error
	AssignComplaint(id, handlerID string) error

	CountRecentComplaints(userID string, since time.Time) (int64, error)
	HasRecentDuplicate(userID, content string, since time.Time) (bool, error)

	GetSubmitterID(complaintID string) (string, error)
	RevealSubmitter(complaintID, viewerID string) (string, error)

	GetFeedbackByComplaint(complaintID string) (*models.Feedback, error)
	CreateFeedback(feedback *models.Feedback) error

	GetDepartmentByCategory(category string) (*models.Department, error)
	ListDepartments() ([]models.Department, error)
	SeedDepartments(departments []models.Department) error

	CreateSpamReport(report *models.SpamReport) error

	SaveThreadMessage(msg *models.ThreadMessage) error
	GetThreadMessages(complaintID string) ([]models.ThreadMessage, error)
	PublishThreadMessage(msg *models.ThreadMessage) error

	EnqueueTask(payload []byte) error
	DequeueTask(timeout time.Duration) ([]byte, error)
}

// ComplaintFilter narrows ListComplaints. Zero values mean "no filter".
type ComplaintFilter struct {
	Status   string
	Category string
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// taskQueueKey is the Redis list the intake worker consumes from.
const taskQueueKey = "intake_tasks"

func threadChannel(complaintID string) string {
	return "thread:" + complaintID
}

// --- Users ---

func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListHandlers returns the handler pool in a stable order so routing stays
// deterministic.
func (s *Service) ListHandlers() ([]models.User, error) {
	var handlers []models.User
	err := s.DB.Where("role = ?", models.RoleHandler).
		Order("email asc").
		Find(&handlers).Error
	if err != nil {
		log.Printf("ERROR: Failed to list handlers: %v", err)
		return nil, err
	}
	return handlers, nil
}

// --- Trust ---

// ApplyTrustAction runs a locked read-modify-write on the user's trust
// score and appends the history entry in the same transaction. The row lock
// serializes concurrent mutations for the same submitter; different
// submitters do not block each other.
func (s *Service) ApplyTrustAction(userID string, complaintID *string, action string, calc func(current int) (delta, next int)) (*models.TrustHistory, error) {
	var entry models.TrustHistory

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		delta, next := calc(user.TrustScore)

		entry = models.TrustHistory{
			UserID:      userID,
			ComplaintID: complaintID,
			Action:      action,
			OldScore:    user.TrustScore,
			NewScore:    next,
			Change:      delta,
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("trust_score", next).Error; err != nil {
			return err
		}

		return tx.Create(&entry).Error
	})
	if err != nil {
		log.Printf("ERROR: Failed to apply trust action %s for user %s: %v", action, userID, err)
		return nil, err
	}
	return &entry, nil
}

func (s *Service) GetTrustHistory(userID string, limit int) ([]models.TrustHistory, error) {
	var history []models.TrustHistory
	q := s.DB.Where("user_id = ?", userID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Service) CountTrustActions(userID, action string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.TrustHistory{}).
		Where("user_id = ? AND action = ?", userID, action).
		Count(&count).Error
	return count, err
}

// --- Complaints ---

// AdmitComplaint creates the complaint and its anonymous mapping in a
// single transaction. A failure on either side leaves neither persisted,
// so a complaint never exists without exactly one mapping.
func (s *Service) AdmitComplaint(complaint *models.Complaint, userID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(complaint).Error; err != nil {
			return err
		}
		mapping := models.AnonymousMap{
			ComplaintID: complaint.ID,
			UserID:      userID,
		}
		return tx.Create(&mapping).Error
	})
}

func (s *Service) GetComplaintByID(id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.First(&complaint, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (s *Service) SaveComplaint(complaint *models.Complaint) error {
	return s.DB.Save(complaint).Error
}

func (s *Service) ListComplaints(filter ComplaintFilter) ([]models.Complaint, error) {
	var complaints []models.Complaint
	q := s.DB.Order("created_at desc")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if err := q.Find(&complaints).Error; err != nil {
		log.Printf("ERROR: Failed to list complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

// ListOwnComplaints resolves the submitter's complaint ids through the
// mapping and then fetches the complaints. The direction matters: listing
// complaints is never used to infer identity.
func (s *Service) ListOwnComplaints(userID string) ([]models.Complaint, error) {
	var ids []string
	if err := s.DB.Model(&models.AnonymousMap{}).
		Where("user_id = ?", userID).
		Pluck("complaint_id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Complaint{}, nil
	}

	var complaints []models.Complaint
	if err := s.DB.Where("id IN ?", ids).
		Order("created_at desc").
		Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}

func (s *Service) UpdateComplaintSeverity(id, severity string) error {
	return s.DB.Model(&models.Complaint{}).
		Where("id = ?", id).
		Update("severity", severity).Error
}

// AssignComplaint sets the assigned handler. Re-assignment overwrites the
// previous value; it never duplicates.
func (s *Service) AssignComplaint(id, handlerID string) error {
	return s.DB.Model(&models.Complaint{}).
		Where("id = ?", id).
		Update("assigned_to", handlerID).Error
}

// --- Screening history ---

// CountRecentComplaints counts the submitter's admissions inside the
// trailing window. The count survives restarts because it is a query over
// durable history, not an in-memory counter.
func (s *Service) CountRecentComplaints(userID string, since time.Time) (int64, error) {
	var count int64
	err := s.DB.Model(&models.AnonymousMap{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

// HasRecentDuplicate reports whether the submitter already filed the exact
// same content inside the window. Only the submitter's own history is
// compared, to avoid cross-submitter identity correlation.
func (s *Service) HasRecentDuplicate(userID, content string, since time.Time) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Complaint{}).
		Joins("JOIN anonymous_maps ON anonymous_maps.complaint_id = complaints.id").
		Where("anonymous_maps.user_id = ?", userID).
		Where("complaints.content = ?", content).
		Where("complaints.created_at >= ?", since).
		Count(&count).Error
	return count > 0, err
}

// --- Anonymity boundary ---

func (s *Service) GetSubmitterID(complaintID string) (string, error) {
	var mapping models.AnonymousMap
	err := s.DB.First(&mapping, "complaint_id = ?", complaintID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return mapping.UserID, nil
}

// RevealSubmitter resolves the mapping and writes the audit row in one
// transaction. The audit write is durable before the identity is returned;
// there is no unlogged path to the mapping.
func (s *Service) RevealSubmitter(complaintID, viewerID string) (string, error) {
	var userID string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var mapping models.AnonymousMap
		if err := tx.First(&mapping, "complaint_id = ?", complaintID).Error; err != nil {
			return err
		}
		userID = mapping.UserID

		audit := models.RevealAudit{
			ComplaintID: complaintID,
			ViewerID:    viewerID,
		}
		return tx.Create(&audit).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to reveal submitter for complaint %s: %v", complaintID, err)
		return "", err
	}
	return userID, nil
}

// --- Feedback ---

func (s *Service) GetFeedbackByComplaint(complaintID string) (*models.Feedback, error) {
	var feedback models.Feedback
	err := s.DB.First(&feedback, "complaint_id = ?", complaintID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (s *Service) CreateFeedback(feedback *models.Feedback) error {
	return s.DB.Create(feedback).Error
}

// --- Departments ---

func (s *Service) GetDepartmentByCategory(category string) (*models.Department, error) {
	var dept models.Department
	err := s.DB.First(&dept, "category = ?", category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (s *Service) ListDepartments() ([]models.Department, error) {
	var depts []models.Department
	if err := s.DB.Order("category asc").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

func (s *Service) SeedDepartments(departments []models.Department) error {
	for i := range departments {
		dept := departments[i]
		result := s.DB.Where("category = ?", dept.Category).FirstOrCreate(&dept)
		if result.Error != nil {
			log.Printf("ERROR: Failed to seed department %s: %v", dept.Category, result.Error)
			return result.Error
		}
	}
	return nil
}

// --- Spam reports ---

func (s *Service) CreateSpamReport(report *models.SpamReport) error {
	if err := s.DB.Create(report).Error; err != nil {
		log.Printf("ERROR: Failed to save spam report for user %s: %v", report.UserID, err)
		return err
	}
	return nil
}

// --- Thread message log ---

func (s *Service) SaveThreadMessage(msg *models.ThreadMessage) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save thread message for complaint %s: %v", msg.ComplaintID, err)
		return err
	}
	return nil
}

func (s *Service) GetThreadMessages(complaintID string) ([]models.ThreadMessage, error) {
	var messages []models.ThreadMessage
	err := s.DB.Where("complaint_id = ?", complaintID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// PublishThreadMessage fans a message out over Redis Pub/Sub so every
// connected websocket on the complaint's thread receives it.
func (s *Service) PublishThreadMessage(msg *models.ThreadMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, threadChannel(msg.ComplaintID), payload).Err()
}

// SubscribeThread subscribes to the live message channel of one complaint.
func (s *Service) SubscribeThread(complaintID string) *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, threadChannel(complaintID))
}

// --- Task queue ---

func (s *Service) EnqueueTask(payload []byte) error {
	return s.Redis.LPush(s.Ctx, taskQueueKey, payload).Err()
}

// DequeueTask blocks up to timeout waiting for the next task. A nil payload
// with a nil error means the wait timed out.
func (s *Service) DequeueTask(timeout time.Duration) ([]byte, error) {
	result, err := s.Redis.BRPop(s.Ctx, timeout, taskQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// BRPop returns [key, value].
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}
