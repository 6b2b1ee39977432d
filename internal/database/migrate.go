package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
)

// Migrate creates or updates every table the application uses
func Migrate(db *gorm.DB) error {
	logging.Info().Str("dialect", db.Dialector.Name()).Msg("Running schema migration")

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// SQLite only honours foreign keys per connection when asked to
	if db.Dialector.Name() == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return nil
}
