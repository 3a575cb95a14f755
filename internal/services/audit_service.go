package services

import (
	"encoding/json"
	"strings"

	"github.com/vozlia/control/internal/database/models"
	"gorm.io/gorm"
)

// AuditService records admin actions to the database
type AuditService struct {
	db       *gorm.DB
	logLevel models.AuditLevel
}

// NewAuditService creates a new AuditService instance
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{
		db:       db,
		logLevel: models.AuditLevelInfo,
	}
}

// NewAuditServiceWithLevel creates a new AuditService instance with the
// specified minimum level
func NewAuditServiceWithLevel(db *gorm.DB, level string) *AuditService {
	return &AuditService{
		db:       db,
		logLevel: parseAuditLevel(level),
	}
}

// parseAuditLevel converts a string to AuditLevel
func parseAuditLevel(level string) models.AuditLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return models.AuditLevelDebug
	case "INFO":
		return models.AuditLevelInfo
	case "WARN", "WARNING":
		return models.AuditLevelWarn
	case "ERROR":
		return models.AuditLevelError
	default:
		return models.AuditLevelInfo
	}
}

// shouldLog checks if an entry should be recorded based on level
func (s *AuditService) shouldLog(level models.AuditLevel) bool {
	levelPriority := map[models.AuditLevel]int{
		models.AuditLevelDebug: 0,
		models.AuditLevelInfo:  1,
		models.AuditLevelWarn:  2,
		models.AuditLevelError: 3,
	}

	return levelPriority[level] >= levelPriority[s.logLevel]
}

// AuditEntry represents an entry to be created
type AuditEntry struct {
	UserID  string
	Level   models.AuditLevel
	Module  models.AuditModule
	Action  string
	Message string
	Details interface{} // Will be serialized to JSON
}

// Log creates a new audit log entry
func (s *AuditService) Log(entry AuditEntry) error {
	if !s.shouldLog(entry.Level) {
		return nil
	}

	var detailsJSON string
	if entry.Details != nil {
		bytes, err := json.Marshal(entry.Details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(bytes)
		}
	}

	row := &models.AuditLog{
		UserID:  entry.UserID,
		Level:   string(entry.Level),
		Module:  string(entry.Module),
		Action:  entry.Action,
		Message: entry.Message,
		Details: detailsJSON,
	}

	return s.db.Create(row).Error
}

// LogUserCreated records the lazy creation of the primary user
func (s *AuditService) LogUserCreated(userID, email string) error {
	return s.Log(AuditEntry{
		UserID:  userID,
		Level:   models.AuditLevelInfo,
		Module:  models.AuditModuleUser,
		Action:  "user_created",
		Message: "Primary user provisioned",
		Details: map[string]interface{}{"email": email},
	})
}

// LogSettingsUpdated records a settings patch
func (s *AuditService) LogSettingsUpdated(userID string, fields []string) error {
	return s.Log(AuditEntry{
		UserID:  userID,
		Level:   models.AuditLevelInfo,
		Module:  models.AuditModuleSettings,
		Action:  "settings_update",
		Message: "Admin settings updated",
		Details: map[string]interface{}{"fields": fields},
	})
}

// LogAccountPatched records an email account patch
func (s *AuditService) LogAccountPatched(userID, accountID string, fields []string) error {
	return s.Log(AuditEntry{
		UserID:  userID,
		Level:   models.AuditLevelInfo,
		Module:  models.AuditModuleAccount,
		Action:  "account_patched",
		Message: "Email account updated",
		Details: map[string]interface{}{"account_id": accountID, "fields": fields},
	})
}

// LogAccountDisconnected records a soft or hard disconnect
func (s *AuditService) LogAccountDisconnected(userID, accountID string, hard bool) error {
	return s.Log(AuditEntry{
		UserID:  userID,
		Level:   models.AuditLevelInfo,
		Module:  models.AuditModuleAccount,
		Action:  "account_disconnected",
		Message: "Email account disconnected",
		Details: map[string]interface{}{"account_id": accountID, "hard": hard},
	})
}

// LogAccountCreated records CLI provisioning of an account row
func (s *AuditService) LogAccountCreated(userID, accountID, email string) error {
	return s.Log(AuditEntry{
		UserID:  userID,
		Level:   models.AuditLevelInfo,
		Module:  models.AuditModuleAccount,
		Action:  "account_created",
		Message: "Email account provisioned",
		Details: map[string]interface{}{"account_id": accountID, "email": email},
	})
}
