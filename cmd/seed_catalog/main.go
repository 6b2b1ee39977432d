// Command seed_catalog inserts the default categories and tags. Existing
// names are left untouched, so it is safe to run repeatedly.
package main

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kitkuhar/kitkuhar/backend/config"
	"github.com/kitkuhar/kitkuhar/backend/internal/database"
	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
)

var defaultCategories = []string{
	"Супи",
	"Салати",
	"М'ясні страви",
	"Рибні страви",
	"Овочеві страви",
	"Десерти",
	"Напої",
	"Закуски",
	"Випічка",
	"Каші та гарніри",
}

var defaultTags = []string{
	"Швидко",
	"Легко",
	"Вегетаріанське",
	"Веганське",
	"Без глютену",
	"Дієтичне",
	"Святкове",
	"Для дітей",
	"Гостре",
	"Солодке",
	"Українська кухня",
	"Італійська кухня",
	"Азійська кухня",
	"На грилі",
	"Запечене",
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logging.Fatal().Err(err).Msg("Failed to migrate database")
	}

	categories, tags, err := seedCatalog(db, defaultCategories, defaultTags)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed catalog")
	}
	logging.Info().Int("categories", categories).Int("tags", tags).Msg("Catalog seeded")
}

// seedCatalog inserts missing names and reports how many rows were added
func seedCatalog(db *gorm.DB, categoryNames, tagNames []string) (int, int, error) {
	var categories, tags int
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, name := range categoryNames {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Category{Name: name})
			if res.Error != nil {
				return fmt.Errorf("failed to add category %q: %w", name, res.Error)
			}
			categories += int(res.RowsAffected)
		}
		for _, name := range tagNames {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Tag{Name: name})
			if res.Error != nil {
				return fmt.Errorf("failed to add tag %q: %w", name, res.Error)
			}
			tags += int(res.RowsAffected)
		}
		return nil
	})
	return categories, tags, err
}
