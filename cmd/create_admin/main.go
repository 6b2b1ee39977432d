// Command create_admin creates an administrator account, or with -promote
// grants admin rights to an existing one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/kitkuhar/kitkuhar/backend/config"
	"github.com/kitkuhar/kitkuhar/backend/internal/database"
	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/service"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

func main() {
	username := flag.String("username", "admin", "Admin username")
	email := flag.String("email", "admin@example.com", "Admin email")
	promote := flag.Bool("promote", false, "Grant admin rights if the username already exists")
	flag.Parse()

	logging.Init(logging.Config{Format: "console"})

	// Kept out of flags so it does not end up in shell history
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		logging.Fatal().Msg("ADMIN_PASSWORD must be set")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logging.Fatal().Err(err).Msg("Failed to migrate database")
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	user, err := ensureAdmin(context.Background(), db, auth, *username, *email, password, *promote)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create admin")
	}
	logging.Info().
		Uint("id", user.ID).
		Str("username", user.Username).
		Str("email", user.Email).
		Msg("Admin account ready")
}

func ensureAdmin(ctx context.Context, db *gorm.DB, auth *service.AuthService, username, email, password string, promote bool) (*models.User, error) {
	user, err := auth.CreateUser(ctx, email, username, password, true)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, service.ErrConflict) || !promote {
		return nil, err
	}

	var existing models.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("user %q exists but could not be loaded: %w", username, err)
	}
	isAdmin, isActive := true, true
	return auth.UpdateUser(ctx, existing.ID, types.AdminUpdateUserRequest{IsAdmin: &isAdmin, IsActive: &isActive})
}
