package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vozlia/control/internal/database/models"
	"github.com/vozlia/control/internal/services"
)

func (s *testServer) createAccount(t *testing.T, address string) *models.EmailAccount {
	t.Helper()

	user, err := s.userService.GetOrCreatePrimaryUser()
	require.NoError(t, err)

	account, err := s.accountService.CreateAccount(services.CreateAccountInput{
		UserID:       user.ID,
		EmailAddress: address,
		IMAPHost:     "imap.test.com",
		IMAPPort:     993,
		IMAPSSL:      true,
		Username:     address,
		Password:     "secret",
	})
	require.NoError(t, err)
	return account
}

func TestListEmailAccounts(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	server.createAccount(t, "a@example.com")
	server.createAccount(t, "b@example.com")

	recorder, env := server.request(t, http.MethodGet, "/admin/email-accounts", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, env.Success)

	var accounts []AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &accounts))
	require.Len(t, accounts, 2)
}

func TestListEmailAccountsExcludesSecrets(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	server.createAccount(t, "a@example.com")

	recorder, env := server.request(t, http.MethodGet, "/admin/email-accounts", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	require.Len(t, raw, 1)

	for _, secret := range []string{"oauth_access_token", "oauth_refresh_token", "oauth_expires_at", "password_enc"} {
		_, present := raw[0][secret]
		require.False(t, present, "secret field %q leaked into the response", secret)
	}
}

func TestPatchEmailAccountPromotesPrimary(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	a := server.createAccount(t, "a@example.com")
	b := server.createAccount(t, "b@example.com")

	// Make A primary first
	recorder, _ := server.request(t, http.MethodPatch, "/admin/email-accounts/"+a.ID, map[string]interface{}{
		"is_primary": true,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	// Promote B; A must be demoted
	recorder, env := server.request(t, http.MethodPatch, "/admin/email-accounts/"+b.ID, map[string]interface{}{
		"is_primary": true,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var patched AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &patched))
	require.True(t, patched.IsPrimary)

	recorder, env = server.request(t, http.MethodGet, "/admin/email-accounts", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var accounts []AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &accounts))
	require.Len(t, accounts, 2)
	for _, account := range accounts {
		switch account.ID {
		case a.ID:
			require.False(t, account.IsPrimary, "A should be demoted")
		case b.ID:
			require.True(t, account.IsPrimary, "B should be primary")
		}
	}
}

func TestPatchEmailAccountNotFound(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	recorder, env := server.request(t, http.MethodPatch, "/admin/email-accounts/00000000-0000-0000-0000-000000000000", map[string]interface{}{
		"is_active": false,
	})
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.False(t, env.Success)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestDeleteEmailAccountSoftThenHard(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	account := server.createAccount(t, "a@example.com")

	// Soft disconnect keeps the row
	recorder, env := server.request(t, http.MethodDelete, "/admin/email-accounts/"+account.ID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result services.DisconnectResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Equal(t, "disconnected", result.Status)
	require.False(t, result.Hard)

	// The soft-disconnected account is excluded from the active listing
	recorder, env = server.request(t, http.MethodGet, "/admin/email-accounts?include_inactive=false", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var accounts []AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &accounts))
	require.Len(t, accounts, 0)

	// But still present when inactive rows are included
	recorder, env = server.request(t, http.MethodGet, "/admin/email-accounts", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(env.Data, &accounts))
	require.Len(t, accounts, 1)
	require.False(t, accounts[0].IsActive)

	// Hard disconnect removes it
	recorder, env = server.request(t, http.MethodDelete, "/admin/email-accounts/"+account.ID+"?hard=true", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Equal(t, "deleted", result.Status)
	require.True(t, result.Hard)

	// Gone for good
	recorder, env = server.request(t, http.MethodDelete, "/admin/email-accounts/"+account.ID, nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestDeleteEmailAccountInvalidHardValue(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	account := server.createAccount(t, "a@example.com")

	recorder, env := server.request(t, http.MethodDelete, "/admin/email-accounts/"+account.ID+"?hard=banana", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}
