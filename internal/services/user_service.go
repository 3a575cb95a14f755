package services

import (
	"errors"

	"github.com/vozlia/control/internal/config"
	"github.com/vozlia/control/internal/database/models"
	"gorm.io/gorm"
)

// ErrUserNotFound indicates the user was not found
var ErrUserNotFound = errors.New("user not found")

// UserService resolves the primary admin user for this deployment
type UserService struct {
	db           *gorm.DB
	adminEmail   string
	auditService *AuditService
}

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB, adminEmail string) *UserService {
	return &UserService{
		db:           db,
		adminEmail:   adminEmail,
		auditService: NewAuditService(db),
	}
}

// GetOrCreatePrimaryUser returns the admin user configured via ADMIN_EMAIL,
// creating it on first use. A missing admin email is a deployment fault, not
// a request error.
//
// Concurrent first calls may race on the insert; the unique index on email
// makes one winner and losers retry the lookup instead of failing.
func (s *UserService) GetOrCreatePrimaryUser() (*models.User, error) {
	if s.adminEmail == "" {
		return nil, config.ErrAdminEmailNotConfigured
	}

	var user models.User
	err := s.db.Where("email = ?", s.adminEmail).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{Email: s.adminEmail}
	if createErr := s.db.Create(&user).Error; createErr != nil {
		// Lost the insert race: the row exists now, fetch it
		var existing models.User
		if lookupErr := s.db.Where("email = ?", s.adminEmail).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, createErr
	}

	s.auditService.LogUserCreated(user.ID, user.Email)

	return &user, nil
}

// GetUserByEmail retrieves a user by email address
func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
