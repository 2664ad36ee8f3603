package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// RevealAudit records every identity reveal: which complaint, who looked,
// when. The row is committed before the identity leaves the store.
type RevealAudit struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	ComplaintID string    `gorm:"not null;index" json:"complaint_id"`
	ViewerID    string    `gorm:"not null" json:"viewer_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *RevealAudit) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}

// SpamReport is the durable record of a rejected submission. It names the
// submitter, so it lives behind the same boundary as the anonymous map and
// is never exposed through complaint reads.
type SpamReport struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	UserID      string         `gorm:"not null;index" json:"user_id"`
	Reasons     pq.StringArray `gorm:"type:text[]" json:"reasons"`
	ContentHash string         `gorm:"type:text;not null" json:"content_hash"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (r *SpamReport) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
