package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/vozlia/control/internal/api/middleware"
	"github.com/vozlia/control/internal/database/models"
	"github.com/vozlia/control/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminKey   = "test-admin-key"
	testAdminEmail = "admin@vozlia.test"
)

type testServer struct {
	engine         *gin.Engine
	db             *gorm.DB
	accountService *services.AccountService
	userService    *services.UserService
}

// envelope mirrors the response wrapper emitted by every handler
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpFile, err := os.CreateTemp("", "test_*.db")
	require.NoError(t, err)
	tmpFile.Close()

	db, err := gorm.Open(sqlite.Open(tmpFile.Name()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserSetting{},
		&models.EmailAccount{},
		&models.AuditLog{},
	))

	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db, testAdminEmail)
	settingsService := services.NewSettingsService(db)
	accountService := services.NewAccountService(db, []byte("test-encryption-key-32-bytes!!"))

	settingsHandler := NewSettingsHandler(userService, settingsService, auditService)
	accountHandler := NewAccountHandler(userService, accountService)

	engine := gin.New()
	admin := engine.Group("/admin")
	admin.Use(middleware.AdminKeyMiddleware(middleware.NewAdminKeyValidator(testAdminKey)))
	admin.GET("/settings", settingsHandler.GetSettings)
	admin.PATCH("/settings", settingsHandler.PatchSettings)
	admin.GET("/email-accounts", accountHandler.ListAccounts)
	admin.PATCH("/email-accounts/:id", accountHandler.PatchAccount)
	admin.DELETE("/email-accounts/:id", accountHandler.DeleteAccount)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		os.Remove(tmpFile.Name())
	}

	return &testServer{
		engine:         engine,
		db:             db,
		accountService: accountService,
		userService:    userService,
	}, cleanup
}

func (s *testServer) request(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)

	recorder := httptest.NewRecorder()
	s.engine.ServeHTTP(recorder, req)

	var env envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &env))
	return recorder, &env
}

func TestGetSettingsDefaults(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	recorder, env := server.request(t, http.MethodGet, "/admin/settings", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, env.Success)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	require.Equal(t, services.DefaultAgentGreeting, data["agent_greeting"])
	require.Equal(t, true, data["gmail_summary_enabled"])
	require.Nil(t, data["gmail_account_id"])
	require.Nil(t, data["gmail_enabled_account_ids"])
	require.Equal(t, services.DefaultRealtimePromptAddendum, data["realtime_prompt_addendum"])
}

func TestPatchSettingsTrimsGreeting(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	recorder, env := server.request(t, http.MethodPatch, "/admin/settings", map[string]interface{}{
		"agent_greeting": "  Hi there  ",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, env.Success)

	// The patch response and a subsequent read both carry the trimmed text
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "Hi there", data["agent_greeting"])

	recorder, env = server.request(t, http.MethodGet, "/admin/settings", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "Hi there", data["agent_greeting"])
}

func TestPatchSettingsPartialUpdate(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, _ = server.request(t, http.MethodPatch, "/admin/settings", map[string]interface{}{
		"agent_greeting": "Welcome",
	})

	// Patching another field leaves the greeting untouched
	recorder, env := server.request(t, http.MethodPatch, "/admin/settings", map[string]interface{}{
		"gmail_summary_enabled": false,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "Welcome", data["agent_greeting"])
	require.Equal(t, false, data["gmail_summary_enabled"])
}

func TestPatchSettingsAllowlistEmptyVersusUnset(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	// Never set: null
	_, env := server.request(t, http.MethodGet, "/admin/settings", nil)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Nil(t, data["gmail_enabled_account_ids"])

	// Set to []: concrete empty list, not null
	recorder, env := server.request(t, http.MethodPatch, "/admin/settings", map[string]interface{}{
		"gmail_enabled_account_ids": []string{},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(env.Data, &data))

	ids, ok := data["gmail_enabled_account_ids"].([]interface{})
	require.True(t, ok, "expected a concrete list, got %v", data["gmail_enabled_account_ids"])
	require.Len(t, ids, 0)
}

func TestPatchSettingsValidation(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	recorder, env := server.request(t, http.MethodPatch, "/admin/settings", map[string]interface{}{
		"agent_greeting": strings.Repeat("x", 501),
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.False(t, env.Success)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestAdminRoutesRequireKey(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	recorder := httptest.NewRecorder()
	server.engine.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	req.Header.Set(middleware.AdminKeyHeader, "wrong-key")
	recorder = httptest.NewRecorder()
	server.engine.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}
