package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrustHistory is the append-only audit trail of trust score mutations.
// Exactly one entry is written per applied action.
type TrustHistory struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"not null;index" json:"user_id"`
	ComplaintID *string   `json:"complaint_id,omitempty"`
	Action      string    `gorm:"type:text;not null" json:"action"`
	OldScore    int       `gorm:"not null" json:"old_score"`
	NewScore    int       `gorm:"not null" json:"new_score"`
	Change      int       `gorm:"not null" json:"change"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *TrustHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return
}
