package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
	"github.com/kitkuhar/kitkuhar/backend/internal/testhelpers"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

func setupAuthTest(t *testing.T) (*gorm.DB, *service.AuthService) {
	db := testhelpers.SetupSQLite(t)
	return db, testhelpers.NewAuthService(db)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestAuthService_Register(t *testing.T) {
	_, auth := setupAuthTest(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, types.RegisterRequest{
		Email:    "  Olena@Example.com ",
		Username: "olena",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "olena@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := auth.Register(ctx, types.RegisterRequest{Email: "olena@example.com", Username: "other", Password: "secret1"})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := auth.Register(ctx, types.RegisterRequest{Email: "new@example.com", Username: "olena", Password: "secret1"})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := auth.Register(ctx, types.RegisterRequest{Email: "x@example.com", Username: "xavier", Password: "123"})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestAuthService_Login(t *testing.T) {
	db, auth := setupAuthTest(t)
	ctx := context.Background()

	user, err := auth.CreateUser(ctx, "chef@example.com", "chef", "password1", true)
	require.NoError(t, err)

	token, err := auth.Login(ctx, "chef", "password1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)

	claims, err := auth.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "chef", claims.Username)
	assert.Equal(t, "chef", claims.Subject)
	assert.True(t, claims.IsAdmin)

	_, err = auth.Login(ctx, "chef", "wrong")
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = auth.Login(ctx, "nobody", "password1")
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = auth.Login(ctx, "chef", "password1")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAuthService_ValidateToken(t *testing.T) {
	db, auth := setupAuthTest(t)
	user, token := testhelpers.CreateTestUserAndToken(t, auth, false)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	t.Run("wrong secret", func(t *testing.T) {
		other := service.NewAuthService(db, "another-secret", time.Hour)
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		expired := service.NewAuthService(db, testhelpers.TestJWTSecret, -time.Minute)
		stale, err := expired.GenerateToken(user)
		require.NoError(t, err)
		_, err = auth.ValidateToken(stale)
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestAuthService_UpdateMe(t *testing.T) {
	_, auth := setupAuthTest(t)
	ctx := context.Background()

	user, _ := testhelpers.CreateTestUserAndToken(t, auth, false)
	other, _ := testhelpers.CreateTestUserAndToken(t, auth, false)

	updated, err := auth.UpdateMe(ctx, user.ID, types.UpdateMeRequest{Username: strPtr("renamed"), Password: strPtr("newpass1")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)

	_, err = auth.Login(ctx, "renamed", "newpass1")
	assert.NoError(t, err)

	_, err = auth.UpdateMe(ctx, user.ID, types.UpdateMeRequest{Email: strPtr(other.Email)})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestAuthService_AdminUserManagement(t *testing.T) {
	db, auth := setupAuthTest(t)
	ctx := context.Background()

	admin, _ := testhelpers.CreateTestUserAndToken(t, auth, true)
	user, _ := testhelpers.CreateTestUserAndToken(t, auth, false)

	users, err := auth.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	updated, err := auth.UpdateUser(ctx, user.ID, types.AdminUpdateUserRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = auth.UpdateUser(ctx, 9999, types.AdminUpdateUserRequest{IsActive: boolPtr(true)})
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, auth.DeleteUser(ctx, admin.ID, admin.ID), service.ErrInvalidInput)

	category := testhelpers.CreateTestCategory(t, db, "Soups")
	recipe := testhelpers.CreateTestRecipe(t, db, "Borscht", category.ID, &user.ID)

	require.NoError(t, auth.DeleteUser(ctx, admin.ID, user.ID))

	_, err = auth.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	var kept models.Recipe
	require.NoError(t, db.First(&kept, recipe.ID).Error)
	assert.Nil(t, kept.AuthorID)
	assert.True(t, kept.IsSystemOwned())
}
