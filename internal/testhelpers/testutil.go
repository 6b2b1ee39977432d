package testhelpers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kitkuhar/kitkuhar/backend/internal/identity"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

const (
	TestJWTSecret = "test-jwt-secret"
	TestPassword  = "testpassword123"
)

// NewAuthService returns an auth service signing with the test secret
func NewAuthService(db *gorm.DB) *service.AuthService {
	return service.NewAuthService(db, TestJWTSecret, time.Hour)
}

// CreateTestUserAndToken creates an active user with TestPassword and logs them in
func CreateTestUserAndToken(t *testing.T, auth *service.AuthService, isAdmin bool) (*models.User, string) {
	t.Helper()
	ctx := context.Background()

	suffix := uuid.NewString()[:8]
	user, err := auth.CreateUser(ctx,
		fmt.Sprintf("cook+%s@example.com", suffix),
		"cook_"+suffix,
		TestPassword,
		isAdmin,
	)
	require.NoError(t, err)

	token, err := auth.Login(ctx, user.Username, TestPassword)
	require.NoError(t, err)
	return user, token.AccessToken
}

// UserCaller is the resolved identity of an account
func UserCaller(user *models.User) identity.Caller {
	return identity.NewAuthenticated(user.ID, user.Username, user.IsAdmin)
}

// AnonymousCaller is the identity of a visitor with the given address and user agent
func AnonymousCaller(ip, userAgent string) identity.Caller {
	return identity.NewAnonymous(identity.SessionToken(ip, userAgent))
}

// CreateTestCategory creates a category with the given name
func CreateTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	require.NoError(t, db.Create(category).Error)
	return category
}

// CreateTestTag creates a tag with the given name
func CreateTestTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateTestRecipe stores a recipe directly. A nil author makes it system-owned.
func CreateTestRecipe(t *testing.T, db *gorm.DB, title string, categoryID uint, authorID *uint) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		Title:       title,
		Ingredients: models.Ingredients{{Name: "water", Quantity: 1, Unit: "l"}},
		Steps:       types.TextSteps("Cook it."),
		Servings:    2,
		CategoryID:  categoryID,
		AuthorID:    authorID,
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

// JSONMarshal marshals v or fails the test
func JSONMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal JSON: %v", err)
	}
	return data
}
