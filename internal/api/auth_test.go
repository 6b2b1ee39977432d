package api_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitkuhar/kitkuhar/backend/internal/testhelpers"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", types.RegisterRequest{
		Email:    "olena@example.com",
		Username: "olena",
		Password: "borscht1",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user types.UserResponse
	decode(t, w, &user)
	assert.Equal(t, "olena", user.Username)
	assert.False(t, user.IsAdmin)
	assert.True(t, user.IsActive)
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{Username: "olena", Password: "borscht1"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var token types.TokenResponse
	decode(t, w, &token)
	assert.Equal(t, "bearer", strings.ToLower(token.TokenType))
	require.NotEmpty(t, token.AccessToken)

	w = env.do(t, http.MethodGet, "/api/v1/auth/me", nil, token.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var me types.UserResponse
	decode(t, w, &me)
	assert.Equal(t, user.ID, me.ID)
}

func TestLoginAcceptsFormBody(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.userToken(t)

	form := url.Values{"username": {user.Username}, "password": {testhelpers.TestPassword}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := env.serve(req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  types.RegisterRequest
	}{
		{"bad email", types.RegisterRequest{Email: "nope", Username: "olena", Password: "borscht1"}},
		{"short password", types.RegisterRequest{Email: "o@example.com", Username: "olena", Password: "123"}},
		{"blank username", types.RegisterRequest{Email: "o@example.com", Username: "    ", Password: "borscht1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/auth/register", tt.req, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	req := types.RegisterRequest{Email: "olena@example.com", Username: "olena", Password: "borscht1"}

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/auth/register", req, "").Code)
	w := env.do(t, http.MethodPost, "/api/v1/auth/register", req, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.userToken(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{Username: user.Username, Password: "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = env.do(t, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{Username: "ghost", Password: "whatever"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/auth/me", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/auth/me", nil, "garbage").Code)
}

func TestUpdateMe(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.userToken(t)

	name := "new_name"
	w := env.do(t, http.MethodPut, "/api/v1/auth/me", types.UpdateMeRequest{Username: &name}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me types.UserResponse
	decode(t, w, &me)
	assert.Equal(t, "new_name", me.Username)
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	user, userToken := env.userToken(t)

	// regular users are refused
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/v1/auth/users", nil, userToken).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/auth/users", nil, "").Code)

	w := env.do(t, http.MethodGet, "/api/v1/auth/users", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var users []types.UserResponse
	decode(t, w, &users)
	assert.Len(t, users, 2)

	w = env.do(t, http.MethodPost, "/api/v1/auth/users", map[string]interface{}{
		"email":    "moderator@example.com",
		"username": "moderator",
		"password": "secret123",
		"is_admin": true,
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created types.UserResponse
	decode(t, w, &created)
	assert.True(t, created.IsAdmin)

	inactive := false
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/auth/users/%d", user.ID), types.AdminUpdateUserRequest{IsActive: &inactive}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// a deactivated account's token no longer resolves
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/auth/me", nil, userToken).Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/auth/users/%d", user.ID), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"detail":"User deleted successfully"}`, w.Body.String())

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/auth/users/%d", user.ID), nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	env := newTestEnv(t)
	admin, token := testhelpers.CreateTestUserAndToken(t, env.auth, true)

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/auth/users/%d", admin.ID), nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
