// Package identity resolves who is calling: a signed-in account or an
// anonymous visitor identified by a hash of client address and User-Agent.
//
// Visitors behind the same NAT or proxy with the same User-Agent share one
// anonymous identity.
package identity

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

type Kind int

const (
	Anonymous Kind = iota
	Authenticated
)

func (k Kind) String() string {
	if k == Authenticated {
		return "user"
	}
	return "anonymous"
}

// Caller is either Authenticated(user) or Anonymous(session token).
type Caller struct {
	kind     Kind
	userID   uint
	username string
	isAdmin  bool
	session  string
}

func NewAuthenticated(userID uint, username string, isAdmin bool) Caller {
	return Caller{kind: Authenticated, userID: userID, username: username, isAdmin: isAdmin}
}

func NewAnonymous(sessionToken string) Caller {
	return Caller{kind: Anonymous, session: sessionToken}
}

func (c Caller) Kind() Kind { return c.kind }

func (c Caller) IsAuthenticated() bool { return c.kind == Authenticated }

// UserID returns the account id; ok is false for anonymous callers.
func (c Caller) UserID() (id uint, ok bool) {
	return c.userID, c.kind == Authenticated
}

// SessionToken returns the anonymous token; ok is false for account holders.
func (c Caller) SessionToken() (token string, ok bool) {
	return c.session, c.kind == Anonymous
}

func (c Caller) Username() string { return c.username }

func (c Caller) IsAdmin() bool { return c.kind == Authenticated && c.isAdmin }

// Key identifies the caller in rate limit buckets and logs.
func (c Caller) Key() string {
	if c.kind == Authenticated {
		return "user:" + strconv.FormatUint(uint64(c.userID), 10)
	}
	return "session:" + c.session
}

// SessionToken is the lowercase hex MD5 of "clientIP:userAgent".
func SessionToken(clientIP, userAgent string) string {
	sum := md5.Sum([]byte(clientIP + ":" + userAgent))
	return hex.EncodeToString(sum[:])
}

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// UserLookup loads the account behind a token
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// Resolver turns request attributes into a Caller
type Resolver struct {
	tokens TokenValidator
	users  UserLookup
}

func NewResolver(tokens TokenValidator, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve never fails: a missing, malformed, expired or orphaned token, or an
// inactive account, yields the anonymous identity.
func (r *Resolver) Resolve(ctx context.Context, authHeader, clientIP, userAgent string) Caller {
	if user := r.userFromHeader(ctx, authHeader); user != nil {
		return NewAuthenticated(user.ID, user.Username, user.IsAdmin)
	}
	return NewAnonymous(SessionToken(clientIP, userAgent))
}

func (r *Resolver) userFromHeader(ctx context.Context, authHeader string) *models.User {
	token, ok := BearerToken(authHeader)
	if !ok {
		return nil
	}
	claims, err := r.tokens.ValidateToken(token)
	if err != nil {
		return nil
	}
	user, err := r.users.GetUserByID(ctx, claims.UserID)
	if err != nil || user == nil || !user.IsActive {
		return nil
	}
	return user
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
