package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowalik/libris/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestNewDatabase_SeedsDefaultCategories(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	var categories []entities.Category
	require.NoError(t, db.DB.Find(&categories).Error)

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
		assert.Equal(t, 0, c.Level)
		assert.Nil(t, c.ParentID)
	}
	assert.ElementsMatch(t, []string{"Uncategorized", "Fiction", "Non-Fiction"}, names)
}

func TestNewDatabase_SeedingIsIdempotent(t *testing.T) {
	dbPath := "./test_" + t.Name() + ".db"
	defer os.Remove(dbPath)

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening must not duplicate the defaults.
	db, err = NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int64
	require.NoError(t, db.DB.Model(&entities.Category{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestUncategorizedID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	id, err := db.UncategorizedID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
