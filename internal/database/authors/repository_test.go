package authors

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowalik/libris/internal/audit"
	"github.com/mkowalik/libris/internal/catalog"
	"github.com/mkowalik/libris/internal/database"
	auditdb "github.com/mkowalik/libris/internal/database/audit"
	"github.com/mkowalik/libris/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()
	dbPath := "./test_authors_" + t.Name() + ".db"

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	recorder := audit.NewRecorder(auditdb.NewRepository(db.DB))
	repo := NewRepository(db.DB, recorder, db.Notifiers)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return repo, cleanup
}

func TestRepository_Insert(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	author, err := repo.Insert(entities.Author{
		Name:        "Ursula K. Le Guin",
		Email:       "ursula@example.com",
		Nationality: "American",
	}, "alice")

	require.NoError(t, err)
	assert.NotEmpty(t, author.ID)

	loaded, err := repo.GetByID(author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ursula K. Le Guin", loaded.Name)
}

func TestRepository_Insert_Validation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Insert(entities.Author{Name: "  ", Email: "not-an-email"}, "alice")

	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Author name cannot be empty", "Invalid email format"}, verr.Messages)
}

func TestRepository_Insert_EmailOptional(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Insert(entities.Author{Name: "Anonymous"}, "alice")
	require.NoError(t, err)
}

func TestRepository_SearchByName(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Insert(entities.Author{Name: "George Orwell"}, "alice")
	require.NoError(t, err)
	_, err = repo.Insert(entities.Author{Name: "George Eliot"}, "alice")
	require.NoError(t, err)
	_, err = repo.Insert(entities.Author{Name: "Frank Herbert"}, "alice")
	require.NoError(t, err)

	matches, err := repo.SearchByName("george")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = repo.SearchByName("herb")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Frank Herbert", matches[0].Name)
}

func TestRepository_SoftDelete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	author, err := repo.Insert(entities.Author{Name: "George Orwell"}, "alice")
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(author.ID, "alice"))

	_, err = repo.GetByID(author.ID)
	var nfe *catalog.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "author", nfe.Entity)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRepository_Update_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Update(entities.Author{ID: "missing", Name: "Ghost"}, "alice")
	var nfe *catalog.NotFoundError
	require.ErrorAs(t, err, &nfe)
}
