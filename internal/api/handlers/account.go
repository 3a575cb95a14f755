package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vozlia/control/internal/database/models"
	"github.com/vozlia/control/internal/services"
)

// AccountHandler handles email account administration requests
type AccountHandler struct {
	userService    *services.UserService
	accountService *services.AccountService
}

// NewAccountHandler creates a new AccountHandler instance
func NewAccountHandler(userService *services.UserService, accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{
		userService:    userService,
		accountService: accountService,
	}
}

// PatchAccountRequest represents a partial update to an email account
type PatchAccountRequest struct {
	IsActive    *bool   `json:"is_active"`
	IsPrimary   *bool   `json:"is_primary"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=200"`
}

// AccountResponse represents an email account as returned to callers.
// Secret fields have no place in this struct, so they cannot leak.
type AccountResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ProviderType  string    `json:"provider_type"`
	OAuthProvider *string   `json:"oauth_provider"`
	EmailAddress  string    `json:"email_address"`
	DisplayName   *string   `json:"display_name"`
	IsPrimary     bool      `json:"is_primary"`
	IsActive      bool      `json:"is_active"`
	IMAPHost      *string   `json:"imap_host"`
	IMAPPort      *int      `json:"imap_port"`
	IMAPSSL       *bool     `json:"imap_ssl"`
	SMTPHost      *string   `json:"smtp_host"`
	SMTPPort      *int      `json:"smtp_port"`
	SMTPSSL       *bool     `json:"smtp_ssl"`
	Username      *string   `json:"username"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// toAccountResponse converts an EmailAccount model to AccountResponse
func toAccountResponse(account *models.EmailAccount) AccountResponse {
	return AccountResponse{
		ID:            account.ID,
		UserID:        account.UserID,
		ProviderType:  account.ProviderType,
		OAuthProvider: account.OAuthProvider,
		EmailAddress:  account.EmailAddress,
		DisplayName:   account.DisplayName,
		IsPrimary:     account.IsPrimary,
		IsActive:      account.IsActive,
		IMAPHost:      account.IMAPHost,
		IMAPPort:      account.IMAPPort,
		IMAPSSL:       account.IMAPSSL,
		SMTPHost:      account.SMTPHost,
		SMTPPort:      account.SMTPPort,
		SMTPSSL:       account.SMTPSSL,
		Username:      account.Username,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
}

// ListAccounts returns the email accounts of the primary user
// GET /admin/email-accounts?include_inactive=bool
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID, ok := resolveUser(c, h.userService)
	if !ok {
		return
	}

	includeInactive := true
	if raw := c.Query("include_inactive"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid include_inactive value",
				},
			})
			return
		}
		includeInactive = parsed
	}

	accounts, err := h.accountService.ListAccounts(userID, includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to retrieve accounts",
			},
		})
		return
	}

	response := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		response = append(response, toAccountResponse(&accounts[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

// PatchAccount applies a partial update to an email account
// PATCH /admin/email-accounts/:id
func (h *AccountHandler) PatchAccount(c *gin.Context) {
	userID, ok := resolveUser(c, h.userService)
	if !ok {
		return
	}

	var req PatchAccountRequest
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

	account, err := h.accountService.PatchAccount(c.Param("id"), userID, services.PatchAccountInput{
		IsActive:    req.IsActive,
		IsPrimary:   req.IsPrimary,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		if err == services.ErrAccountNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Email account not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to update account",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toAccountResponse(account),
	})
}

// DeleteAccount disconnects an email account.
//
// soft (default): deactivate and wipe stored credentials/tokens
// hard=true: delete the row entirely
// DELETE /admin/email-accounts/:id?hard=bool
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, ok := resolveUser(c, h.userService)
	if !ok {
		return
	}

	hard := false
	if raw := c.Query("hard"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid hard value",
				},
			})
			return
		}
		hard = parsed
	}

	result, err := h.accountService.DisconnectAccount(c.Param("id"), userID, hard)
	if err != nil {
		if err == services.ErrAccountNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Email account not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to disconnect account",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
