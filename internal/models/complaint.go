package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Severity tiers assigned by the classifier.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityCritical = "critical"
)

// Lifecycle states. There is no terminal state: a complaint may cycle
// through resolved/reopened repeatedly.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusReopened   = "reopened"
)

// Complaint is an admitted submission. Content is immutable once created;
// only the lifecycle manager and the routing engine mutate the record, and
// it carries no reference to its submitter.
type Complaint struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"type:text;not null" json:"title"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	Category   string     `gorm:"type:text;not null;index" json:"category"`
	Severity   string     `gorm:"type:text;not null;default:low" json:"severity"`
	Status     string     `gorm:"type:text;not null;default:pending;index" json:"status"`
	AssignedTo *string    `gorm:"index" json:"assigned_to,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Severity == "" {
		c.Severity = SeverityLow
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	return
}

// AnonymousMap is the one-way link between a complaint and its submitter.
// It is created in the same transaction as the complaint, never updated,
// and resolved only through the audited reveal path.
type AnonymousMap struct {
	ComplaintID string    `gorm:"primaryKey" json:"complaint_id"`
	UserID      string    `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}
