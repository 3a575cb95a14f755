package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vozlia/control/internal/config"
	"github.com/vozlia/control/internal/services"
)

// SettingsHandler handles admin settings requests
type SettingsHandler struct {
	userService     *services.UserService
	settingsService *services.SettingsService
	auditService    *services.AuditService
}

// NewSettingsHandler creates a new SettingsHandler instance
func NewSettingsHandler(userService *services.UserService, settingsService *services.SettingsService, auditService *services.AuditService) *SettingsHandler {
	return &SettingsHandler{
		userService:     userService,
		settingsService: settingsService,
		auditService:    auditService,
	}
}

// SettingsResponse represents the full admin settings snapshot
type SettingsResponse struct {
	AgentGreeting          string   `json:"agent_greeting"`
	GmailSummaryEnabled    bool     `json:"gmail_summary_enabled"`
	GmailAccountID         *string  `json:"gmail_account_id"`
	GmailEnabledAccountIDs []string `json:"gmail_enabled_account_ids"`
	RealtimePromptAddendum string   `json:"realtime_prompt_addendum"`
}

// PatchSettingsRequest represents a partial settings update. Nil fields are
// left untouched.
type PatchSettingsRequest struct {
	AgentGreeting          *string   `json:"agent_greeting" binding:"omitempty,min=1,max=500"`
	GmailSummaryEnabled    *bool     `json:"gmail_summary_enabled"`
	GmailAccountID         *string   `json:"gmail_account_id"`
	GmailEnabledAccountIDs *[]string `json:"gmail_enabled_account_ids"`
	RealtimePromptAddendum *string   `json:"realtime_prompt_addendum" binding:"omitempty,min=1,max=4000"`
}

// snapshot assembles the settings response for a user
func (h *SettingsHandler) snapshot(userID string) (*SettingsResponse, error) {
	greeting, err := h.settingsService.AgentGreeting(userID)
	if err != nil {
		return nil, err
	}
	summaryEnabled, err := h.settingsService.GmailSummaryEnabled(userID)
	if err != nil {
		return nil, err
	}
	accountID, err := h.settingsService.SelectedGmailAccountID(userID)
	if err != nil {
		return nil, err
	}
	enabledIDs, err := h.settingsService.EnabledGmailAccountIDs(userID)
	if err != nil {
		return nil, err
	}
	addendum, err := h.settingsService.RealtimePromptAddendum(userID)
	if err != nil {
		return nil, err
	}

	return &SettingsResponse{
		AgentGreeting:          greeting,
		GmailSummaryEnabled:    summaryEnabled,
		GmailAccountID:         accountID,
		GmailEnabledAccountIDs: enabledIDs,
		RealtimePromptAddendum: addendum,
	}, nil
}

// resolveUser resolves the primary user, writing the appropriate error
// response on failure
func resolveUser(c *gin.Context, userService *services.UserService) (string, bool) {
	user, err := userService.GetOrCreatePrimaryUser()
	if err != nil {
		if err == config.ErrAdminEmailNotConfigured {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFIG_ERROR",
					"message": "ADMIN_EMAIL not configured",
				},
			})
			return "", false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to resolve primary user",
			},
		})
		return "", false
	}
	return user.ID, true
}

// GetSettings returns the current settings snapshot
// GET /admin/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, ok := resolveUser(c, h.userService)
	if !ok {
		return
	}

	response, err := h.snapshot(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to retrieve settings",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

// PatchSettings applies the provided fields and returns the refreshed snapshot
// PATCH /admin/settings
func (h *SettingsHandler) PatchSettings(c *gin.Context) {
	userID, ok := resolveUser(c, h.userService)
	if !ok {
		return
	}

	var req PatchSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request body",
				"details": err.Error(),
			},
		})
		return
	}

	var updated []string
	var err error

	if req.AgentGreeting != nil {
		err = h.settingsService.SetAgentGreeting(userID, *req.AgentGreeting)
		updated = append(updated, "agent_greeting")
	}
	if err == nil && req.GmailSummaryEnabled != nil {
		err = h.settingsService.SetGmailSummaryEnabled(userID, *req.GmailSummaryEnabled)
		updated = append(updated, "gmail_summary_enabled")
	}
	if err == nil && req.GmailAccountID != nil {
		err = h.settingsService.SetSelectedGmailAccountID(userID, *req.GmailAccountID)
		updated = append(updated, "gmail_account_id")
	}
	if err == nil && req.GmailEnabledAccountIDs != nil {
		err = h.settingsService.SetEnabledGmailAccountIDs(userID, *req.GmailEnabledAccountIDs)
		updated = append(updated, "gmail_enabled_account_ids")
	}
	if err == nil && req.RealtimePromptAddendum != nil {
		err = h.settingsService.SetRealtimePromptAddendum(userID, *req.RealtimePromptAddendum)
		updated = append(updated, "realtime_prompt_addendum")
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to update settings",
			},
		})
		return
	}

	if len(updated) > 0 {
		h.auditService.LogSettingsUpdated(userID, updated)
	}

	response, err := h.snapshot(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to retrieve settings",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}
