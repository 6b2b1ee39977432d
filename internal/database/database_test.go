package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitkuhar/kitkuhar/backend/config"
	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

func TestDatabase(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		LogLevel:   "disabled",
	}

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))
	require.NoError(t, HealthCheck(context.Background(), db))

	category := models.Category{Name: "Soups"}
	require.NoError(t, db.Create(&category).Error)

	recipe := models.Recipe{
		Title:       "Borscht",
		Ingredients: models.Ingredients{{Name: "beet", Quantity: 500, Unit: "g"}},
		Steps:       types.TextSteps("boil and simmer"),
		Servings:    4,
		CategoryID:  category.ID,
	}
	require.NoError(t, db.Create(&recipe).Error)
	assert.NotZero(t, recipe.ID)

	var loaded models.Recipe
	require.NoError(t, db.First(&loaded, recipe.ID).Error)
	assert.Equal(t, "boil and simmer", loaded.Steps.Text())
	assert.Equal(t, recipe.Ingredients, loaded.Ingredients)
	assert.True(t, loaded.IsSystemOwned())
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "kitkuhar.db?_foreign_keys=1", SQLiteDSN("kitkuhar.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=1", SQLiteDSN("file:x?mode=memory"))
	assert.Equal(t, "a.db?_foreign_keys=0", SQLiteDSN("a.db?_foreign_keys=0"))
}
