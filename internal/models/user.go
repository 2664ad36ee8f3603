package models

import (
	"speakup/backend/internal/config"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles known to the pipeline. The identity provider vouches for the pair
// (id, role); the pipeline trusts it as-is.
const (
	RoleSubmitter = "submitter"
	RoleHandler   = "handler"
	RoleAuditor   = "auditor"
)

// User represents an authenticated member of the organization.
// TrustScore is owned exclusively by the trust engine; no other component
// writes it.
type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"type:text;not null;default:submitter" json:"role"`
	TrustScore   int    `gorm:"not null;default:50" json:"trust_score"`
}

// BeforeCreate is a GORM hook that assigns a UUID and the default trust
// score if they are not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.TrustScore == 0 {
		u.TrustScore = config.DefaultTrustScore
	}
	return
}
