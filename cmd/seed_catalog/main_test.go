package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitkuhar/kitkuhar/backend/internal/models"
	"github.com/kitkuhar/kitkuhar/backend/internal/testhelpers"
)

func TestSeedCatalogIsIdempotent(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateTestCategory(t, db, "Супи")

	categories, tags, err := seedCatalog(db, defaultCategories, defaultTags)
	require.NoError(t, err)
	assert.Equal(t, len(defaultCategories)-1, categories)
	assert.Equal(t, len(defaultTags), tags)

	categories, tags, err = seedCatalog(db, defaultCategories, defaultTags)
	require.NoError(t, err)
	assert.Zero(t, categories)
	assert.Zero(t, tags)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(len(defaultCategories)), count)
}
