package models

import (
	"time"
)

// AuditLog represents a recorded admin action
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;index" json:"user_id"`
	Level     string    `gorm:"size:20;index" json:"level"` // DEBUG, INFO, WARN, ERROR
	Module    string    `gorm:"size:50;index" json:"module"`
	Action    string    `gorm:"size:100" json:"action"`
	Message   string    `gorm:"type:text" json:"message"`
	Details   string    `gorm:"type:text" json:"details"` // JSON string for additional details
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// AuditLevel represents the audit log level
type AuditLevel string

const (
	AuditLevelDebug AuditLevel = "DEBUG"
	AuditLevelInfo  AuditLevel = "INFO"
	AuditLevelWarn  AuditLevel = "WARN"
	AuditLevelError AuditLevel = "ERROR"
)

// AuditModule represents the module that generated the entry
type AuditModule string

const (
	AuditModuleUser     AuditModule = "user"
	AuditModuleSettings AuditModule = "settings"
	AuditModuleAccount  AuditModule = "account"
	AuditModuleCLI      AuditModule = "cli"
)
