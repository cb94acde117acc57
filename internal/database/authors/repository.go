// Package authors provides the author repository.
package authors

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

// GetAll retrieves every non-deleted author.
func (r *Repository) GetAll() ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.Where("is_deleted = ?", false).Order("name").Find(&authors).Error
	if err != nil {
		return nil, catalog.WrapStorage("list authors", err)
	}
	return authors, nil
}

// GetByID retrieves a single live author.
func (r *Repository) GetByID(id string) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&author).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &catalog.NotFoundError{Entity: "author", ID: id}
	}
	if err != nil {
		return nil, catalog.WrapStorage("load author", err)
	}
	return &author, nil
}

// SearchByName retrieves non-deleted authors whose name contains the query,
// case-insensitive.
func (r *Repository) SearchByName(query string) ([]entities.Author, error) {
	var authors []entities.Author
	pattern := "%" + query + "%"
	err := r.db.Where("is_deleted = ? AND LOWER(name) LIKE LOWER(?)", false, pattern).
		Order("name").Find(&authors).Error
	if err != nil {
		return nil, catalog.WrapStorage("search authors", err)
	}
	return authors, nil
}

// Watch pushes the full non-deleted author list after every committed write.
func (r *Repository) Watch(ctx context.Context) (<-chan []entities.Author, context.CancelFunc) {
	return stream.Watch(ctx, r.notifiers.Authors, r.GetAll)
}

// Insert validates and writes a new author.
func (r *Repository) Insert(author entities.Author, actor string) (*entities.Author, error) {
	if author.ID == "" {
		author.ID = uuid.NewString()
	}
	if errs := validation.ValidateAuthor(author); len(errs) > 0 {
		return nil, validation.AsError(errs)
	}

	if err := r.db.Create(&author).Error; err != nil {
		return nil, catalog.WrapStorage("insert author", err)
	}

	r.recorder.Record(entities.Author{}.TableName(), author.ID, entities.OpInsert, nil, author, actor)
	r.notifiers.Authors.Notify()
	return &author, nil
}

// Update validates and writes a full-row update of a live author.
func (r *Repository) Update(author entities.Author, actor string) (*entities.Author, error) {
	old, err := r.GetByID(author.ID)
	if err != nil {
		return nil, err
	}
	if errs := validation.ValidateAuthor(author); len(errs) > 0 {
		return nil, validation.AsError(errs)
	}

	author.CreatedAt = old.CreatedAt
	author.IsDeleted = false
	if err := r.db.Save(&author).Error; err != nil {
		return nil, catalog.WrapStorage("update author", err)
	}

	r.recorder.Record(entities.Author{}.TableName(), author.ID, entities.OpUpdate, old, author, actor)
	r.notifiers.Authors.Notify()
	return &author, nil
}

// SoftDelete marks an author deleted. Their book cross-references remain for
// history; books listing authors resolve only live ones.
func (r *Repository) SoftDelete(authorID string, actor string) error {
	author, err := r.GetByID(authorID)
	if err != nil {
		return err
	}

	err = r.db.Model(&entities.Author{}).Where("id = ?", authorID).
		Update("is_deleted", true).Error
	if err != nil {
		return catalog.WrapStorage("soft delete author", err)
	}

	r.recorder.Record(entities.Author{}.TableName(), authorID, entities.OpSoftDelete, author, nil, actor)
	r.notifiers.Authors.Notify()
	return nil
}

// HardDelete permanently removes an author and their book cross-references.
func (r *Repository) HardDelete(authorID string, actor string) error {
	var author entities.Author
	err := r.db.Where("id = ?", authorID).First(&author).Error
	if err == gorm.ErrRecordNotFound {
		return &catalog.NotFoundError{Entity: "author", ID: authorID}
	}
	if err != nil {
		return catalog.WrapStorage("load author", err)
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("author_id = ?", authorID).Delete(&entities.BookAuthor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Author{}, "id = ?", authorID).Error
	})
	if err != nil {
		return catalog.WrapStorage("hard delete author", err)
	}

	r.recorder.Record(entities.Author{}.TableName(), authorID, entities.OpDelete, author, nil, actor)
	r.notifiers.Authors.Notify()
	return nil
}
