package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vozlia/control/internal/api/handlers"
	"github.com/vozlia/control/internal/api/middleware"
	"github.com/vozlia/control/internal/config"
	"github.com/vozlia/control/internal/services"
	"gorm.io/gorm"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.AdminKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Initialize services
	auditService := services.NewAuditServiceWithLevel(db, cfg.LogLevel)
	userService := services.NewUserService(db, cfg.AdminEmail)
	settingsService := services.NewSettingsService(db)
	accountService := services.NewAccountService(db, cfg.GetEncryptionKey())

	// Initialize handlers
	settingsHandler := handlers.NewSettingsHandler(userService, settingsService, auditService)
	accountHandler := handlers.NewAccountHandler(userService, accountService)

	// Health check endpoint (no auth required)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Admin routes, gated by the shared admin key
	admin := router.Group("/admin")
	{
		admin.Use(middleware.AdminKeyMiddleware(middleware.NewAdminKeyValidator(cfg.AdminAPIKey)))

		admin.GET("/settings", settingsHandler.GetSettings)
		admin.PATCH("/settings", settingsHandler.PatchSettings)

		accounts := admin.Group("/email-accounts")
		{
			accounts.GET("", accountHandler.ListAccounts)
			accounts.PATCH("/:id", accountHandler.PatchAccount)
			accounts.DELETE("/:id", accountHandler.DeleteAccount)
		}
	}

	return router
}
