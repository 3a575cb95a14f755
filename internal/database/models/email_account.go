package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Provider types for email accounts
const (
	ProviderTypeIMAP  = "imap"
	ProviderTypeGmail = "gmail"
)

// EmailAccount represents an email account connected for a user.
// Secret fields (OAuth tokens, token expiry, encrypted password) are
// write-only from the API's perspective and are never serialized.
type EmailAccount struct {
	ID            string  `gorm:"primaryKey;size:36" json:"id"`
	UserID        string  `gorm:"size:36;index;not null" json:"user_id"`
	ProviderType  string  `gorm:"size:50;not null;default:'imap'" json:"provider_type"`
	OAuthProvider *string `gorm:"size:50" json:"oauth_provider"`
	EmailAddress  string  `gorm:"size:255;not null" json:"email_address"`
	DisplayName   *string `gorm:"size:200" json:"display_name"`
	IsPrimary     bool    `gorm:"default:false" json:"is_primary"`
	IsActive      bool    `gorm:"default:true" json:"is_active"`

	// Optional connection metadata (non-secret)
	IMAPHost *string `gorm:"size:255" json:"imap_host"`
	IMAPPort *int    `json:"imap_port"`
	IMAPSSL  *bool   `json:"imap_ssl"`
	SMTPHost *string `gorm:"size:255" json:"smtp_host"`
	SMTPPort *int    `json:"smtp_port"`
	SMTPSSL  *bool   `json:"smtp_ssl"`
	Username *string `gorm:"size:255" json:"username"`

	// Secrets: never exposed through JSON
	OAuthAccessToken  *string    `gorm:"column:oauth_access_token;size:2000" json:"-"`
	OAuthRefreshToken *string    `gorm:"column:oauth_refresh_token;size:2000" json:"-"`
	OAuthExpiresAt    *time.Time `gorm:"column:oauth_expires_at" json:"-"`
	PasswordEnc       *string    `gorm:"size:500" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key if one is not set
func (a *EmailAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
