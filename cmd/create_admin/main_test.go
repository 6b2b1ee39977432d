package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitkuhar/kitkuhar/backend/internal/service"
	"github.com/kitkuhar/kitkuhar/backend/internal/testhelpers"
)

func TestEnsureAdmin(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := testhelpers.NewAuthService(db)
	ctx := context.Background()

	admin, err := ensureAdmin(ctx, db, auth, "chef", "chef@example.com", "secret123", false)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	_, err = ensureAdmin(ctx, db, auth, "chef", "chef@example.com", "secret123", false)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestEnsureAdminPromotesExistingUser(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := testhelpers.NewAuthService(db)
	user, _ := testhelpers.CreateTestUserAndToken(t, auth, false)

	promoted, err := ensureAdmin(context.Background(), db, auth, user.Username, user.Email, "whatever1", true)
	require.NoError(t, err)
	assert.Equal(t, user.ID, promoted.ID)
	assert.True(t, promoted.IsAdmin)
}
