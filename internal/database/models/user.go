package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the primary admin user this deployment is configured for.
// Exactly one row exists per deployment; it is created lazily on first access
// and never mutated or deleted by this service.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	EmailAccounts []EmailAccount `gorm:"foreignKey:UserID" json:"email_accounts,omitempty"`
	Settings      []UserSetting  `gorm:"foreignKey:UserID" json:"settings,omitempty"`
}

// BeforeCreate assigns a UUID primary key if one is not set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserSetting stores one settings document for a (user, key) pair.
// Value holds an arbitrary JSON object; at most one row exists per pair,
// writes are upserts and the last write wins.
type UserSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_user_settings_user_key" json:"user_id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex:idx_user_settings_user_key" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"` // JSON document
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
