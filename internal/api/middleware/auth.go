package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	// ErrInvalidAdminKey indicates the admin key is invalid
	ErrInvalidAdminKey = errors.New("invalid admin key")
	// ErrAdminKeyNotFound indicates no admin key was provided
	ErrAdminKeyNotFound = errors.New("admin key not found")
)

// AdminKeyHeader is the header carrying the shared admin secret
const AdminKeyHeader = "X-Vozlia-Admin-Key"

// AdminKeyValidator validates the shared admin API key
type AdminKeyValidator struct {
	expectedKey string
}

// NewAdminKeyValidator creates a new AdminKeyValidator instance
func NewAdminKeyValidator(expectedKey string) *AdminKeyValidator {
	return &AdminKeyValidator{expectedKey: expectedKey}
}

// Configured reports whether a server-side key is set
func (v *AdminKeyValidator) Configured() bool {
	return v.expectedKey != ""
}

// ValidateKey validates the provided admin key
func (v *AdminKeyValidator) ValidateKey(key string) bool {
	if v.expectedKey == "" || key == "" {
		return false
	}

	// Use constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(v.expectedKey), []byte(key)) == 1
}

// AdminKeyMiddleware rejects requests that do not carry the shared admin
// secret. A missing server-side key is a deployment fault and reported as a
// server error, not as unauthorized.
func AdminKeyMiddleware(validator *AdminKeyValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !validator.Configured() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFIG_ERROR",
					"message": "ADMIN_API_KEY not configured",
				},
			})
			return
		}

		key := c.GetHeader(AdminKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "AUTH_FAILED",
					"message": "Admin key is required",
				},
			})
			return
		}

		if !validator.ValidateKey(key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "AUTH_FAILED",
					"message": "Invalid admin key",
				},
			})
			return
		}

		c.Next()
	}
}
