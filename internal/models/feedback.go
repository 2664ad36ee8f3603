package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is the submitter's rating of a resolved complaint. One per
// complaint; the submitter is resolved from the anonymous map, never from
// the request.
type Feedback struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	ComplaintID string    `gorm:"uniqueIndex;not null" json:"complaint_id"`
	Rating      int       `gorm:"not null" json:"rating"`
	Comment     string    `gorm:"type:text" json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return
}

// Department is static routing reference data: one handling group per
// complaint category.
type Department struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Category string `gorm:"uniqueIndex;not null" json:"category"`
	Name     string `gorm:"not null" json:"name"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}
