package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/vozlia/control/internal/database/models"
	"gorm.io/gorm"
)

// Setting keys recognized by the store
const (
	KeyAgentGreeting          = "agent_greeting"
	KeyGmailSummaryEnabled    = "gmail_summary_enabled"
	KeyGmailAccountID         = "gmail_account_id"
	KeyGmailEnabledAccounts   = "gmail_enabled_accounts"
	KeyRealtimePromptAddendum = "realtime_prompt_addendum"
)

// Default values surfaced by the typed accessors
const (
	DefaultAgentGreeting = "Hello! How can I assist you today?"

	DefaultRealtimePromptAddendum = "CALL OPENING RULE (FIRST UTTERANCE ONLY): " +
		"Greet the caller and introduce yourself as Vozlia in one short sentence. " +
		"Example: \"Hello, you're speaking with Vozlia — how can I help today?\" " +
		"Do not repeat the brand intro after the first utterance."

	// DefaultGmailAccountID is the legacy selected-account placeholder kept in
	// the raw defaults table. The typed accessor reports "no selection" as nil
	// instead of falling back to this constant.
	DefaultGmailAccountID = "d8c8cd99-c9bc-4e8c-a560-d220782665a1"
)

// defaultDocuments maps each recognized key to its default JSON document
var defaultDocuments = map[string]string{
	KeyAgentGreeting:          `{"text":"` + DefaultAgentGreeting + `"}`,
	KeyGmailSummaryEnabled:    `{"enabled":true}`,
	KeyGmailAccountID:         `{"account_id":"` + DefaultGmailAccountID + `"}`,
	KeyGmailEnabledAccounts:   `{"account_ids":[]}`,
	KeyRealtimePromptAddendum: "", // built in init, the text needs JSON escaping
}

func init() {
	doc, err := json.Marshal(map[string]string{"text": DefaultRealtimePromptAddendum})
	if err != nil {
		panic(err)
	}
	defaultDocuments[KeyRealtimePromptAddendum] = string(doc)
}

// SettingsService provides per-user key/value settings storage with typed
// accessors layered on top of a generic JSON-document store
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new SettingsService instance
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// isObjectDocument reports whether raw is a well-formed JSON object
func isObjectDocument(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed))
}

// GetRaw returns the stored document for (user, key) without default
// fallback. The second return value reports whether a well-formed
// document was found.
func (s *SettingsService) GetRaw(userID, key string) (string, bool, error) {
	var row models.UserSetting
	err := s.db.Where("user_id = ? AND key = ?", userID, key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if !isObjectDocument(row.Value) {
		return "", false, nil
	}
	return row.Value, true, nil
}

// Get returns the stored document for (user, key) if present and well-typed,
// else the registered default document for the key, else an empty document.
// Unknown keys never fail.
func (s *SettingsService) Get(userID, key string) (string, error) {
	value, found, err := s.GetRaw(userID, key)
	if err != nil {
		return "", err
	}
	if found {
		return value, nil
	}
	if def, ok := defaultDocuments[key]; ok {
		return def, nil
	}
	return "{}", nil
}

// Set upserts the document for (user, key) and returns the stored value.
// The write commits immediately.
func (s *SettingsService) Set(userID, key, value string) (string, error) {
	var row models.UserSetting
	err := s.db.Where("user_id = ? AND key = ?", userID, key).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		row = models.UserSetting{UserID: userID, Key: key, Value: value}
		if err := s.db.Create(&row).Error; err != nil {
			return "", err
		}
		return row.Value, nil
	}

	row.Value = value
	if err := s.db.Save(&row).Error; err != nil {
		return "", err
	}
	return row.Value, nil
}

// setDocument marshals a typed document and stores it
func (s *SettingsService) setDocument(userID, key string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.Set(userID, key, string(data))
	return err
}

// Per-key typed documents. Pointer fields distinguish absent/null values
// from zero values in stored documents.
type (
	textDocument struct {
		Text *string `json:"text"`
	}
	toggleDocument struct {
		Enabled *bool `json:"enabled"`
	}
	accountIDDocument struct {
		AccountID *string `json:"account_id"`
	}
	accountListDocument struct {
		AccountIDs []string `json:"account_ids"`
	}
)

// AgentGreeting returns the greeting text the agent opens calls with
func (s *SettingsService) AgentGreeting(userID string) (string, error) {
	return s.textSetting(userID, KeyAgentGreeting, DefaultAgentGreeting)
}

// SetAgentGreeting stores the greeting text, trimmed
func (s *SettingsService) SetAgentGreeting(userID, text string) error {
	return s.setDocument(userID, KeyAgentGreeting, textDocument{Text: ptr(strings.TrimSpace(text))})
}

// RealtimePromptAddendum returns the call-opening script appended to the
// realtime prompt
func (s *SettingsService) RealtimePromptAddendum(userID string) (string, error) {
	return s.textSetting(userID, KeyRealtimePromptAddendum, DefaultRealtimePromptAddendum)
}

// SetRealtimePromptAddendum stores the prompt addendum, trimmed
func (s *SettingsService) SetRealtimePromptAddendum(userID, text string) error {
	return s.setDocument(userID, KeyRealtimePromptAddendum, textDocument{Text: ptr(strings.TrimSpace(text))})
}

// textSetting reads a {"text": ...} document, falling back to def when the
// field is absent, null, or blank
func (s *SettingsService) textSetting(userID, key, def string) (string, error) {
	raw, err := s.Get(userID, key)
	if err != nil {
		return "", err
	}
	var doc textDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return def, nil
	}
	if doc.Text != nil && strings.TrimSpace(*doc.Text) != "" {
		return strings.TrimSpace(*doc.Text), nil
	}
	return def, nil
}

// GmailSummaryEnabled reports whether the Gmail summary feature is on.
// A missing or null flag means enabled.
func (s *SettingsService) GmailSummaryEnabled(userID string) (bool, error) {
	raw, err := s.Get(userID, KeyGmailSummaryEnabled)
	if err != nil {
		return false, err
	}
	var doc toggleDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return true, nil
	}
	if doc.Enabled == nil {
		return true, nil
	}
	return *doc.Enabled, nil
}

// SetGmailSummaryEnabled stores the Gmail summary toggle
func (s *SettingsService) SetGmailSummaryEnabled(userID string, enabled bool) error {
	return s.setDocument(userID, KeyGmailSummaryEnabled, toggleDocument{Enabled: &enabled})
}

// SelectedGmailAccountID returns the selected Gmail account id, or nil when
// no selection has been made
func (s *SettingsService) SelectedGmailAccountID(userID string) (*string, error) {
	raw, found, err := s.GetRaw(userID, KeyGmailAccountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var doc accountIDDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, nil
	}
	if doc.AccountID == nil {
		return nil, nil
	}
	id := strings.TrimSpace(*doc.AccountID)
	if id == "" {
		return nil, nil
	}
	return &id, nil
}

// SetSelectedGmailAccountID stores the selected Gmail account id, trimmed
func (s *SettingsService) SetSelectedGmailAccountID(userID, accountID string) error {
	return s.setDocument(userID, KeyGmailAccountID, accountIDDocument{AccountID: ptr(strings.TrimSpace(accountID))})
}

// EnabledGmailAccountIDs returns the allowlist of Gmail account ids that
// participate in summary/search features.
//
// nil means "no allowlist": treat all active accounts as enabled. An empty,
// non-nil list is a concrete (empty) allowlist set by a previous write.
func (s *SettingsService) EnabledGmailAccountIDs(userID string) ([]string, error) {
	raw, found, err := s.GetRaw(userID, KeyGmailEnabledAccounts)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var doc accountListDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, nil
	}
	if doc.AccountIDs == nil {
		return nil, nil
	}
	return cleanAccountIDs(doc.AccountIDs), nil
}

// SetEnabledGmailAccountIDs stores the allowlist. The stored document always
// carries a concrete list: trimmed entries, empties dropped, [] for no input.
func (s *SettingsService) SetEnabledGmailAccountIDs(userID string, accountIDs []string) error {
	return s.setDocument(userID, KeyGmailEnabledAccounts, accountListDocument{AccountIDs: cleanAccountIDs(accountIDs)})
}

// cleanAccountIDs trims entries and drops empties, always returning a
// non-nil slice
func cleanAccountIDs(ids []string) []string {
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func ptr[T any](v T) *T {
	return &v
}
