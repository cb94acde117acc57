package books

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowalik/libris/internal/audit"
	auditdb "github.com/mkowalik/libris/internal/database/audit"
	"github.com/mkowalik/libris/internal/catalog"
	"github.com/mkowalik/libris/internal/database"
	"github.com/mkowalik/libris/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *database.Database, func()) {
	t.Helper()
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	recorder := audit.NewRecorder(auditdb.NewRepository(db.DB))
	repo := NewRepository(db.DB, recorder, db.Notifiers)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return repo, db, cleanup
}

func insertAuthor(t *testing.T, db *database.Database, id, name string) {
	t.Helper()
	require.NoError(t, db.DB.Create(&entities.Author{ID: id, Name: name}).Error)
}

func TestRepository_InsertWithAuthors(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	insertAuthor(t, db, "author-1", "George Orwell")

	book, err := repo.InsertWithAuthors(entities.Book{
		Title:       "1984",
		ISBN:        "9780452284234",
		Publisher:   "Plume",
		PublishYear: 1949,
		PageCount:   328,
	}, []string{"author-1"}, nil, "alice")

	require.NoError(t, err)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, entities.BookStatusAvailable, book.Status)

	links, err := repo.AuthorLinks(book.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "author-1", links[0].AuthorID)
	assert.Equal(t, entities.RoleAuthor, links[0].Role)
}

func TestRepository_InsertWithAuthors_Validation(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.InsertWithAuthors(entities.Book{
		Title: "",
		ISBN:  "not-an-isbn",
	}, nil, nil, "alice")

	require.Error(t, err)
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages, "Book title cannot be empty")
	assert.Contains(t, verr.Messages, "Invalid ISBN format")
}

func TestRepository_InsertWithAuthors_MissingAuthorRollsBack(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.InsertWithAuthors(entities.Book{
		Title:     "Orphaned",
		ISBN:      "0452284236",
		PageCount: 200,
	}, []string{"ghost-author"}, nil, "alice")

	require.Error(t, err)
	var nfe *catalog.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "author", nfe.Entity)

	// Nothing from the failed insert must be visible.
	books, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByID("missing")
	var nfe *catalog.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "book", nfe.Entity)
	assert.Equal(t, "missing", nfe.ID)
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book, err := repo.InsertWithAuthors(entities.Book{
		Title:     "1984",
		ISBN:      "9780452284234",
		PageCount: 328,
	}, nil, nil, "alice")
	require.NoError(t, err)

	// available -> maintenance is legal.
	updated, err := repo.UpdateStatus(book.ID, entities.BookStatusMaintenance, "alice")
	require.NoError(t, err)
	assert.Equal(t, entities.BookStatusMaintenance, updated.Status)

	// maintenance -> borrowed is not.
	_, err = repo.UpdateStatus(book.ID, entities.BookStatusBorrowed, "alice")
	var cerr *catalog.ConflictError
	require.ErrorAs(t, err, &cerr)

	// The failed transition must leave the stored status alone.
	current, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.BookStatusMaintenance, current.Status)
}

func TestRepository_UpdateStatus_SameStatusRejected(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book, err := repo.InsertWithAuthors(entities.Book{Title: "Dune", ISBN: "0306406152", PageCount: 412}, nil, nil, "alice")
	require.NoError(t, err)

	_, err = repo.UpdateStatus(book.ID, entities.BookStatusAvailable, "alice")
	var cerr *catalog.ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestRepository_SoftDelete(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book, err := repo.InsertWithAuthors(entities.Book{Title: "Dune", ISBN: "0306406152", PageCount: 412}, nil, nil, "alice")
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(book.ID, "alice"))

	_, err = repo.GetByID(book.ID)
	var nfe *catalog.NotFoundError
	require.ErrorAs(t, err, &nfe)

	books, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestRepository_SoftDelete_BorrowedRejected(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book, err := repo.InsertWithAuthors(entities.Book{Title: "Dune", ISBN: "0306406152", PageCount: 412}, nil, nil, "alice")
	require.NoError(t, err)
	_, err = repo.UpdateStatus(book.ID, entities.BookStatusBorrowed, "alice")
	require.NoError(t, err)

	err = repo.SoftDelete(book.ID, "alice")
	var cerr *catalog.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "Cannot delete borrowed book", cerr.Reason)

	// Still visible to readers.
	_, err = repo.GetByID(book.ID)
	require.NoError(t, err)
}

func TestRepository_SetAuthors(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	insertAuthor(t, db, "author-1", "George Orwell")
	insertAuthor(t, db, "author-2", "Frank Herbert")

	book, err := repo.InsertWithAuthors(entities.Book{Title: "Dune", ISBN: "0306406152", PageCount: 412},
		[]string{"author-1"}, nil, "alice")
	require.NoError(t, err)

	err = repo.SetAuthors(book.ID, []string{"author-2"}, []entities.AuthorRole{entities.RoleEditor}, "alice")
	require.NoError(t, err)

	links, err := repo.AuthorLinks(book.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "author-2", links[0].AuthorID)
	assert.Equal(t, entities.RoleEditor, links[0].Role)
}

func TestRepository_GetByStatus(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	a, err := repo.InsertWithAuthors(entities.Book{Title: "A", ISBN: "0306406152", PageCount: 100}, nil, nil, "alice")
	require.NoError(t, err)
	_, err = repo.InsertWithAuthors(entities.Book{Title: "B", ISBN: "9780306406157", PageCount: 100}, nil, nil, "alice")
	require.NoError(t, err)
	_, err = repo.UpdateStatus(a.ID, entities.BookStatusReserved, "alice")
	require.NoError(t, err)

	reserved, err := repo.GetByStatus(entities.BookStatusReserved)
	require.NoError(t, err)
	require.Len(t, reserved, 1)
	assert.Equal(t, a.ID, reserved[0].ID)
}

func TestRepository_Watch(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, stop := repo.Watch(ctx)
	defer stop()

	select {
	case books := <-ch:
		assert.Empty(t, books)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	_, err := repo.InsertWithAuthors(entities.Book{Title: "Dune", ISBN: "0306406152", PageCount: 412}, nil, nil, "alice")
	require.NoError(t, err)

	select {
	case books := <-ch:
		require.Len(t, books, 1)
		assert.Equal(t, "Dune", books[0].Title)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after insert")
	}
}
