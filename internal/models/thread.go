package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ThreadMessage is one entry in the append-only message log attached to a
// complaint. Senders are identified by role only, so the log leaks no
// identity. The intake pipeline itself never reads this table.
type ThreadMessage struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	ComplaintID string    `gorm:"not null;index:idx_thread_msg" json:"complaint_id"`
	SenderRole  string    `gorm:"type:text;not null" json:"sender_role"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m *ThreadMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
