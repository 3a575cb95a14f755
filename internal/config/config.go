package config

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

var (
	// ErrAdminKeyNotConfigured indicates ADMIN_API_KEY is unset
	ErrAdminKeyNotConfigured = errors.New("ADMIN_API_KEY not configured")
	// ErrAdminEmailNotConfigured indicates ADMIN_EMAIL is unset
	ErrAdminEmailNotConfigured = errors.New("ADMIN_EMAIL not configured")
)

// Config holds the application configuration
type Config struct {
	DatabasePath  string `json:"database_path"`
	APIPort       string `json:"api_port"`
	LogLevel      string `json:"log_level"`
	DataDir       string `json:"data_dir"`
	AdminAPIKey   string `json:"admin_api_key"`
	AdminEmail    string `json:"admin_email"`
	EncryptionKey string `json:"encryption_key"` // empty: derived from AdminAPIKey
	CORSOrigins   string `json:"cors_origins"`   // comma separated, * for all
}

// Default configuration values
const (
	DefaultDatabasePath = "data/control.db"
	DefaultAPIPort      = "8080"
	DefaultLogLevel     = "INFO"
	DefaultDataDir      = "data"
	DefaultCORSOrigins  = "*"
)

// Load loads configuration from environment variables and config file
// Priority: Environment variables > Config file > Default values
func Load() (*Config, error) {
	// A .env file is optional; ignore when absent
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath: DefaultDatabasePath,
		APIPort:      DefaultAPIPort,
		LogLevel:     DefaultLogLevel,
		DataDir:      DefaultDataDir,
		CORSOrigins:  DefaultCORSOrigins,
	}

	// Config file is optional
	_ = cfg.loadFromFile()

	// Override with environment variables
	cfg.loadFromEnv()

	return cfg, nil
}

// loadFromFile loads configuration from config.json file
func (c *Config) loadFromFile() error {
	// Look for config file in current directory and data directory
	configPaths := []string{
		"config.json",
		filepath.Join(c.DataDir, "config.json"),
	}

	for _, path := range configPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		if err := json.Unmarshal(data, c); err != nil {
			return err
		}
		return nil
	}

	return nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if val := os.Getenv("VOZLIA_DATABASE_PATH"); val != "" {
		c.DatabasePath = val
	}
	if val := os.Getenv("VOZLIA_API_PORT"); val != "" {
		c.APIPort = val
	}
	if val := os.Getenv("VOZLIA_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("VOZLIA_DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("VOZLIA_CORS_ORIGINS"); val != "" {
		c.CORSOrigins = val
	}
	if val := os.Getenv("ADMIN_API_KEY"); val != "" {
		c.AdminAPIKey = val
	}
	if val := os.Getenv("ADMIN_EMAIL"); val != "" {
		c.AdminEmail = val
	}
	if val := os.Getenv("VOZLIA_ENCRYPTION_KEY"); val != "" {
		c.EncryptionKey = val
	}
}

// GetEncryptionKey returns the key used to encrypt stored account secrets.
// Falls back to a derivation of the admin API key when unset.
func (c *Config) GetEncryptionKey() []byte {
	if c.EncryptionKey != "" {
		hash := sha256.Sum256([]byte(c.EncryptionKey))
		return hash[:]
	}
	hash := sha256.Sum256([]byte(c.AdminAPIKey + "-encryption"))
	return hash[:]
}

// Validate checks that the deployment-critical values are present.
// A missing admin key or email means a misdeployed instance.
func (c *Config) Validate() error {
	if c.AdminAPIKey == "" {
		return ErrAdminKeyNotConfigured
	}
	if c.AdminEmail == "" {
		return ErrAdminEmailNotConfigured
	}
	return nil
}

// Save saves the current configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
