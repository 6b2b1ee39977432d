package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register creates a regular, active account
func (s *AuthService) Register(ctx context.Context, req types.RegisterRequest) (*models.User, error) {
	return s.CreateUser(ctx, req.Email, req.Username, req.Password, false)
}

// CreateUser creates an active account with the given role
func (s *AuthService) CreateUser(ctx context.Context, email, username, password string, isAdmin bool) (*models.User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" {
		return nil, invalidInput("email and username are required")
	}
	if len(password) < 6 {
		return nil, invalidInput("password must be at least 6 characters")
	}

	if err := s.ensureUnique(ctx, 0, email, username); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsAdmin:      isAdmin,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("email or username already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Str("username", user.Username).Bool("is_admin", isAdmin).Msg("user registered")
	return &user, nil
}

// Login checks credentials and returns a signed access token
func (s *AuthService) Login(ctx context.Context, username, password string) (*types.TokenResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorized("incorrect username or password")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logging.Ctx(ctx).Info().Str("username", user.Username).Msg("login rejected")
		return nil, unauthorized("incorrect username or password")
	}
	if !user.IsActive {
		return nil, unauthorized("account is inactive")
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user logged in")
	return &types.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// GenerateToken signs an HS256 token for the user
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, unauthorized("invalid token: %v", err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, unauthorized("invalid token")
	}
	return claims, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, recordNotFound(err, "user")
	}
	return &user, nil
}

// UpdateMe lets a user change their own email, username or password
func (s *AuthService) UpdateMe(ctx context.Context, userID uint, req types.UpdateMeRequest) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	email, username := user.Email, user.Username
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
		updates["email"] = email
	}
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
		updates["username"] = username
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, invalidInput("password must be at least 6 characters")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password_hash"] = string(hashed)
	}

	return s.applyUserUpdates(ctx, user, email, username, updates)
}

// ListUsers returns accounts ordered by id
func (s *AuthService) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	skip, limit = pageBounds(skip, limit, 100, 500)
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser is the admin edit of another account
func (s *AuthService) UpdateUser(ctx context.Context, id uint, req types.AdminUpdateUserRequest) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	email, username := user.Email, user.Username
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
		updates["email"] = email
	}
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
		updates["username"] = username
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsAdmin != nil {
		updates["is_admin"] = *req.IsAdmin
	}

	return s.applyUserUpdates(ctx, user, email, username, updates)
}

// DeleteUser removes an account. Authored recipes, ratings and comments
// stay in place with their user reference cleared.
func (s *AuthService) DeleteUser(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return invalidInput("you cannot delete your own account")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return recordNotFound(err, "user")
		}
		if err := tx.Model(&models.Recipe{}).Where("author_id = ?", id).Update("author_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Rating{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Uint("user_id", id).Uint("actor_id", actorID).Msg("user deleted")
	return nil
}

func (s *AuthService) applyUserUpdates(ctx context.Context, user *models.User, email, username string, updates map[string]interface{}) (*models.User, error) {
	if len(updates) == 0 {
		return user, nil
	}
	if email == "" || username == "" {
		return nil, invalidInput("email and username must not be empty")
	}
	if err := s.ensureUnique(ctx, user.ID, email, username); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("email or username already registered")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetUserByID(ctx, user.ID)
}

// ensureUnique rejects an email or username held by another account
func (s *AuthService) ensureUnique(ctx context.Context, selfID uint, email, username string) error {
	var existing models.User
	err := s.db.WithContext(ctx).
		Where("(email = ? OR username = ?) AND id <> ?", email, username, selfID).
		First(&existing).Error
	if err == nil {
		if existing.Email == email {
			return conflict("email already registered")
		}
		return conflict("username already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
