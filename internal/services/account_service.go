package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"github.com/vozlia/control/internal/database/models"
	"gorm.io/gorm"
)

var (
	// ErrAccountNotFound indicates the email account was not found
	ErrAccountNotFound = errors.New("email account not found")
	// ErrAccountAlreadyExists indicates the email account already exists for this user
	ErrAccountAlreadyExists = errors.New("email account already exists for this user")
	// ErrInvalidAccountData indicates invalid account data
	ErrInvalidAccountData = errors.New("invalid account data")
	// ErrEncryptionFailed indicates password encryption failed
	ErrEncryptionFailed = errors.New("password encryption failed")
	// ErrDecryptionFailed indicates password decryption failed
	ErrDecryptionFailed = errors.New("password decryption failed")
)

// Disconnect status values returned to callers
const (
	DisconnectStatusDeleted      = "deleted"
	DisconnectStatusDisconnected = "disconnected"
)

// AccountService handles email account administration
type AccountService struct {
	db            *gorm.DB
	encryptionKey []byte // 32 bytes for AES-256
	auditService  *AuditService
}

// NewAccountService creates a new AccountService instance
func NewAccountService(db *gorm.DB, encryptionKey []byte) *AccountService {
	// Ensure key is 32 bytes for AES-256
	key := make([]byte, 32)
	copy(key, encryptionKey)
	return &AccountService{
		db:            db,
		encryptionKey: key,
		auditService:  NewAuditService(db),
	}
}

// encryptSecret encrypts a secret using AES-256-GCM
func (s *AccountService) encryptSecret(secret string) (string, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", ErrEncryptionFailed
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", ErrEncryptionFailed
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", ErrEncryptionFailed
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(secret), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decryptSecret decrypts a secret using AES-256-GCM
func (s *AccountService) decryptSecret(encryptedSecret string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encryptedSecret)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", ErrDecryptionFailed
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// GetAccountByIDAndUserID retrieves an email account by ID scoped to a user
func (s *AccountService) GetAccountByIDAndUserID(id, userID string) (*models.EmailAccount, error) {
	var account models.EmailAccount
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// ListAccounts retrieves the accounts for a user, most recent first.
// When includeInactive is false, only active accounts are returned.
func (s *AccountService) ListAccounts(userID string, includeInactive bool) ([]models.EmailAccount, error) {
	query := s.db.Where("user_id = ?", userID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var accounts []models.EmailAccount
	if err := query.Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// PatchAccountInput represents a partial update to an email account.
// Nil fields are left untouched.
type PatchAccountInput struct {
	IsActive    *bool
	IsPrimary   *bool
	DisplayName *string
}

// PatchAccount applies the provided fields to an account.
//
// Promoting an account to primary demotes every other account of the same
// user first; demote and promote happen inside one transaction so at most
// one account per user is primary at any time. A display name that is empty
// after trimming is stored as NULL.
func (s *AccountService) PatchAccount(id, userID string, input PatchAccountInput) (*models.EmailAccount, error) {
	var account *models.EmailAccount

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var row models.EmailAccount
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		if input.DisplayName != nil {
			trimmed := strings.TrimSpace(*input.DisplayName)
			if trimmed == "" {
				row.DisplayName = nil
			} else {
				row.DisplayName = &trimmed
			}
		}

		if input.IsActive != nil {
			row.IsActive = *input.IsActive
		}

		if input.IsPrimary != nil && *input.IsPrimary {
			// Demote others before promoting this one
			if err := tx.Model(&models.EmailAccount{}).
				Where("user_id = ? AND id <> ?", userID, row.ID).
				Update("is_primary", false).Error; err != nil {
				return err
			}
			row.IsPrimary = true
		}

		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		account = &row
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.LogAccountPatched(userID, account.ID, patchedFields(input))

	return account, nil
}

// patchedFields names the fields present in a patch, for the audit trail
func patchedFields(input PatchAccountInput) []string {
	fields := make([]string, 0, 3)
	if input.IsActive != nil {
		fields = append(fields, "is_active")
	}
	if input.IsPrimary != nil {
		fields = append(fields, "is_primary")
	}
	if input.DisplayName != nil {
		fields = append(fields, "display_name")
	}
	return fields
}

// DisconnectResult reports the outcome of a disconnect
type DisconnectResult struct {
	Status string `json:"status"`
	Hard   bool   `json:"hard"`
}

// DisconnectAccount removes an account (hard) or deactivates it and scrubs
// its stored credentials while keeping the row (soft).
func (s *AccountService) DisconnectAccount(id, userID string, hard bool) (*DisconnectResult, error) {
	account, err := s.GetAccountByIDAndUserID(id, userID)
	if err != nil {
		return nil, err
	}

	if hard {
		if err := s.db.Delete(account).Error; err != nil {
			return nil, err
		}
		s.auditService.LogAccountDisconnected(userID, id, true)
		return &DisconnectResult{Status: DisconnectStatusDeleted, Hard: true}, nil
	}

	// Soft disconnect: deactivate and wipe every secret field
	updates := map[string]interface{}{
		"is_active":           false,
		"is_primary":          false,
		"oauth_access_token":  nil,
		"oauth_refresh_token": nil,
		"oauth_expires_at":    nil,
		"password_enc":        nil,
	}
	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.auditService.LogAccountDisconnected(userID, id, false)

	return &DisconnectResult{Status: DisconnectStatusDisconnected, Hard: false}, nil
}

// CreateAccountInput represents the input for provisioning an email account
type CreateAccountInput struct {
	UserID       string
	ProviderType string
	EmailAddress string
	DisplayName  string
	IMAPHost     string
	IMAPPort     int
	IMAPSSL      bool
	SMTPHost     string
	SMTPPort     int
	SMTPSSL      bool
	Username     string
	Password     string // optional; stored encrypted when present
}

// CreateAccount provisions a new email account row for a user. Used by the
// CLI; credential acquisition flows (OAuth consent, IMAP verification) live
// outside this service.
func (s *AccountService) CreateAccount(input CreateAccountInput) (*models.EmailAccount, error) {
	if input.UserID == "" || input.EmailAddress == "" {
		return nil, ErrInvalidAccountData
	}

	// One row per (user, address)
	var existing models.EmailAccount
	if err := s.db.Where("user_id = ? AND email_address = ?", input.UserID, input.EmailAddress).First(&existing).Error; err == nil {
		return nil, ErrAccountAlreadyExists
	}

	providerType := input.ProviderType
	if providerType == "" {
		providerType = models.ProviderTypeIMAP
	}

	account := &models.EmailAccount{
		UserID:       input.UserID,
		ProviderType: providerType,
		EmailAddress: input.EmailAddress,
		IsActive:     true,
	}

	if trimmed := strings.TrimSpace(input.DisplayName); trimmed != "" {
		account.DisplayName = &trimmed
	}
	if input.IMAPHost != "" {
		account.IMAPHost = &input.IMAPHost
		account.IMAPPort = &input.IMAPPort
		account.IMAPSSL = &input.IMAPSSL
	}
	if input.SMTPHost != "" {
		account.SMTPHost = &input.SMTPHost
		account.SMTPPort = &input.SMTPPort
		account.SMTPSSL = &input.SMTPSSL
	}
	if input.Username != "" {
		account.Username = &input.Username
	}
	if input.Password != "" {
		encrypted, err := s.encryptSecret(input.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordEnc = &encrypted
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, err
	}

	s.auditService.LogAccountCreated(input.UserID, account.ID, account.EmailAddress)

	return account, nil
}

// GetDecryptedPassword retrieves the decrypted password for an account
func (s *AccountService) GetDecryptedPassword(account *models.EmailAccount) (string, error) {
	if account.PasswordEnc == nil {
		return "", nil
	}
	return s.decryptSecret(*account.PasswordEnc)
}
