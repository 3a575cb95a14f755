package services

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/vozlia/control/internal/config"
	"github.com/vozlia/control/internal/database/models"
)

// Property: resolving the primary user any number of times yields the same
// row, and exactly one user exists afterwards.
func TestProperty_GetOrCreatePrimaryUserIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	localPartGen := gen.SliceOfN(8, gen.AlphaLowerChar()).Map(func(chars []rune) string {
		return string(chars)
	})

	properties.Property("resolver_is_idempotent", prop.ForAll(
		func(localPart string, calls int) bool {
			db, cleanup := setupTestDB(t)
			defer cleanup()

			email := localPart + "@example.com"
			service := NewUserService(db, email)

			first, err := service.GetOrCreatePrimaryUser()
			if err != nil {
				return false
			}

			for i := 0; i < calls; i++ {
				next, err := service.GetOrCreatePrimaryUser()
				if err != nil {
					return false
				}
				if next.ID != first.ID || next.Email != email {
					return false
				}
			}

			var count int64
			if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
				return false
			}
			return count == 1
		},
		localPartGen,
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}

func TestGetOrCreatePrimaryUserRequiresAdminEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	service := NewUserService(db, "")
	_, err := service.GetOrCreatePrimaryUser()
	if !errors.Is(err, config.ErrAdminEmailNotConfigured) {
		t.Errorf("expected ErrAdminEmailNotConfigured, got %v", err)
	}
}

func TestGetOrCreatePrimaryUserSurvivesInsertConflict(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	email := "admin@example.com"
	service := NewUserService(db, email)

	// Simulate losing the first-creation race: the row already exists when
	// the resolver goes to insert.
	existing := createTestUser(t, db, email)

	user, err := service.GetOrCreatePrimaryUser()
	if err != nil {
		t.Fatalf("GetOrCreatePrimaryUser failed: %v", err)
	}
	if user.ID != existing.ID {
		t.Errorf("expected the existing user, got %s", user.ID)
	}
}

func TestGetUserByEmailNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	service := NewUserService(db, "admin@example.com")
	_, err := service.GetUserByEmail("missing@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
