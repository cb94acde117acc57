// Package books provides the book repository: validated, audited writes over
// the books table and its author/category cross-references, plus observable
// list reads.
package books

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkowalik/libris/internal/audit"
	"github.com/mkowalik/libris/internal/catalog"
	"github.com/mkowalik/libris/internal/database"
	"github.com/mkowalik/libris/internal/entities"
	"github.com/mkowalik/libris/internal/stream"
	"github.com/mkowalik/libris/internal/validation"
)

type Repository struct {
	db        *gorm.DB
	recorder  *audit.Recorder
	notifiers *database.Notifiers
}

func NewRepository(db *gorm.DB, recorder *audit.Recorder, notifiers *database.Notifiers) *Repository {
	return &Repository{db: db, recorder: recorder, notifiers: notifiers}
}

// GetAll retrieves every non-deleted book.
func (r *Repository) GetAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("is_deleted = ?", false).Order("title").Find(&books).Error
	if err != nil {
		return nil, catalog.WrapStorage("list books", err)
	}
	return books, nil
}

// GetByID retrieves a single live book. Soft-deleted books are reported as
// not found.
func (r *Repository) GetByID(id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&book).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &catalog.NotFoundError{Entity: "book", ID: id}
	}
	if err != nil {
		return nil, catalog.WrapStorage("load book", err)
	}
	return &book, nil
}

// GetByStatus retrieves non-deleted books with the given status.
func (r *Repository) GetByStatus(status entities.BookStatus) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("status = ? AND is_deleted = ?", status, false).Order("title").Find(&books).Error
	if err != nil {
		return nil, catalog.WrapStorage("list books by status", err)
	}
	return books, nil
}

// Watch pushes the full non-deleted book list after every committed write.
// The stream runs until ctx is cancelled or the returned cancel is called.
func (r *Repository) Watch(ctx context.Context) (<-chan []entities.Book, context.CancelFunc) {
	return stream.Watch(ctx, r.notifiers.Books, r.GetAll)
}

// AuthorLinks retrieves the author cross-references of a book.
func (r *Repository) AuthorLinks(bookID string) ([]entities.BookAuthor, error) {
	var links []entities.BookAuthor
	err := r.db.Where("book_id = ?", bookID).Find(&links).Error
	if err != nil {
		return nil, catalog.WrapStorage("list book authors", err)
	}
	return links, nil
}

// CategoryLinks retrieves the category cross-references of a book.
func (r *Repository) CategoryLinks(bookID string) ([]entities.BookCategory, error) {
	var links []entities.BookCategory
	err := r.db.Where("book_id = ?", bookID).Find(&links).Error
	if err != nil {
		return nil, catalog.WrapStorage("list book categories", err)
	}
	return links, nil
}

// InsertWithAuthors validates the book, verifies every author id resolves to
// a live author, then writes the book row and one cross-reference per author
// in a single transaction: a missing author leaves no partial link rows
// behind. Roles shorter than authorIDs are padded with the "author" role.
func (r *Repository) InsertWithAuthors(book entities.Book, authorIDs []string, roles []entities.AuthorRole, actor string) (*entities.Book, error) {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	if book.Status == "" {
		book.Status = entities.BookStatusAvailable
	}
	if errs := validation.ValidateBook(book); len(errs) > 0 {
		return nil, validation.AsError(errs)
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, authorID := range authorIDs {
			if err := ensureAuthorExists(tx, authorID); err != nil {
				return err
			}
		}
		if err := tx.Create(&book).Error; err != nil {
			return err
		}
		for i, authorID := range authorIDs {
			role := entities.RoleAuthor
			if i < len(roles) && roles[i] != "" {
				role = roles[i]
			}
			link := entities.BookAuthor{BookID: book.ID, AuthorID: authorID, Role: role}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, catalog.WrapStorage("insert book", err)
	}

	r.recorder.Record(entities.Book{}.TableName(), book.ID, entities.OpInsert, nil, book, actor)
	r.notifiers.Books.Notify()
	return &book, nil
}

// Update validates and writes a full-row update of a live book.
func (r *Repository) Update(book entities.Book, actor string) (*entities.Book, error) {
	old, err := r.GetByID(book.ID)
	if err != nil {
		return nil, err
	}
	if errs := validation.ValidateBook(book); len(errs) > 0 {
		return nil, validation.AsError(errs)
	}

	book.CreatedAt = old.CreatedAt
	book.IsDeleted = false
	if err := r.db.Save(&book).Error; err != nil {
		return nil, catalog.WrapStorage("update book", err)
	}

	r.recorder.Record(entities.Book{}.TableName(), book.ID, entities.OpUpdate, old, book, actor)
	r.notifiers.Books.Notify()
	return &book, nil
}

// UpdateStatus moves a book through the status state machine. Transitions
// outside the table fail with a conflict naming both states.
func (r *Repository) UpdateStatus(bookID string, next entities.BookStatus, actor string) (*entities.Book, error) {
	book, err := r.GetByID(bookID)
	if err != nil {
		return nil, err
	}
	if err := catalog.ValidateTransition(book.Status, next); err != nil {
		return nil, err
	}

	old := *book
	book.Status = next
	if err := r.db.Save(book).Error; err != nil {
		return nil, catalog.WrapStorage("update book status", err)
	}

	r.recorder.Record(entities.Book{}.TableName(), bookID, entities.OpUpdate, old, book, actor)
	r.notifiers.Books.Notify()
	return book, nil
}

// SoftDelete marks a book deleted. Borrowed books cannot be removed.
func (r *Repository) SoftDelete(bookID string, actor string) error {
	book, err := r.GetByID(bookID)
	if err != nil {
		return err
	}
	if book.Status == entities.BookStatusBorrowed {
		return &catalog.ConflictError{Reason: "Cannot delete borrowed book"}
	}

	err = r.db.Model(&entities.Book{}).Where("id = ?", bookID).
		Update("is_deleted", true).Error
	if err != nil {
		return catalog.WrapStorage("soft delete book", err)
	}

	r.recorder.Record(entities.Book{}.TableName(), bookID, entities.OpSoftDelete, book, nil, actor)
	r.notifiers.Books.Notify()
	return nil
}

// HardDelete permanently removes a book and its cross-references. Part of
// the storage contract; the facade only soft-deletes.
func (r *Repository) HardDelete(bookID string, actor string) error {
	var book entities.Book
	err := r.db.Where("id = ?", bookID).First(&book).Error
	if err == gorm.ErrRecordNotFound {
		return &catalog.NotFoundError{Entity: "book", ID: bookID}
	}
	if err != nil {
		return catalog.WrapStorage("load book", err)
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.BookAuthor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.BookCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, "id = ?", bookID).Error
	})
	if err != nil {
		return catalog.WrapStorage("hard delete book", err)
	}

	r.recorder.Record(entities.Book{}.TableName(), bookID, entities.OpDelete, book, nil, actor)
	r.notifiers.Books.Notify()
	return nil
}

// SetAuthors replaces the book's author cross-references. Every author must
// resolve to a live author or nothing changes.
func (r *Repository) SetAuthors(bookID string, authorIDs []string, roles []entities.AuthorRole, actor string) error {
	if _, err := r.GetByID(bookID); err != nil {
		return err
	}
	oldLinks, err := r.AuthorLinks(bookID)
	if err != nil {
		return err
	}

	newLinks := make([]entities.BookAuthor, 0, len(authorIDs))
	err = r.db.Transaction(func(tx *gorm.DB) error {
		for _, authorID := range authorIDs {
			if err := ensureAuthorExists(tx, authorID); err != nil {
				return err
			}
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.BookAuthor{}).Error; err != nil {
			return err
		}
		for i, authorID := range authorIDs {
			role := entities.RoleAuthor
			if i < len(roles) && roles[i] != "" {
				role = roles[i]
			}
			link := entities.BookAuthor{BookID: bookID, AuthorID: authorID, Role: role}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
			newLinks = append(newLinks, link)
		}
		return nil
	})
	if err != nil {
		return catalog.WrapStorage("set book authors", err)
	}

	r.recorder.Record(entities.BookAuthor{}.TableName(), bookID, entities.OpUpdate, oldLinks, newLinks, actor)
	r.notifiers.Books.Notify()
	return nil
}

// SetCategories replaces the book's category cross-references. Every
// category must resolve to a live category or nothing changes.
func (r *Repository) SetCategories(bookID string, categoryIDs []string, actor string) error {
	if _, err := r.GetByID(bookID); err != nil {
		return err
	}
	oldLinks, err := r.CategoryLinks(bookID)
	if err != nil {
		return err
	}

	newLinks := make([]entities.BookCategory, 0, len(categoryIDs))
	err = r.db.Transaction(func(tx *gorm.DB) error {
		for _, categoryID := range categoryIDs {
			var count int64
			err := tx.Model(&entities.Category{}).
				Where("id = ? AND is_deleted = ?", categoryID, false).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count == 0 {
				return &catalog.NotFoundError{Entity: "category", ID: categoryID}
			}
		}
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.BookCategory{}).Error; err != nil {
			return err
		}
		for _, categoryID := range categoryIDs {
			link := entities.BookCategory{BookID: bookID, CategoryID: categoryID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
			newLinks = append(newLinks, link)
		}
		return nil
	})
	if err != nil {
		return catalog.WrapStorage("set book categories", err)
	}

	r.recorder.Record(entities.BookCategory{}.TableName(), bookID, entities.OpUpdate, oldLinks, newLinks, actor)
	r.notifiers.Books.Notify()
	return nil
}

func ensureAuthorExists(tx *gorm.DB, authorID string) error {
	var count int64
	err := tx.Model(&entities.Author{}).
		Where("id = ? AND is_deleted = ?", authorID, false).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return &catalog.NotFoundError{Entity: "author", ID: authorID}
	}
	return nil
}
