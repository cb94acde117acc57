// Package categories provides the category repository: hierarchy-aware
// validated writes, recursive subtree queries, and the cascading delete
// policy for the books linked to a category.
package categories

import (
	"context"
	"fmt"

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

// GetAll retrieves every non-deleted category, shallowest first.
func (r *Repository) GetAll() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Where("is_deleted = ?", false).Order("level, name").Find(&categories).Error
	if err != nil {
		return nil, catalog.WrapStorage("list categories", err)
	}
	return categories, nil
}

// GetByID retrieves a single live category.
func (r *Repository) GetByID(id string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&category).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &catalog.NotFoundError{Entity: "category", ID: id}
	}
	if err != nil {
		return nil, catalog.WrapStorage("load category", err)
	}
	return &category, nil
}

// SubCategories retrieves the direct children of parentID; a nil parentID
// lists the roots.
func (r *Repository) SubCategories(parentID *string) ([]entities.Category, error) {
	var categories []entities.Category
	query := r.db.Where("is_deleted = ?", false)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	err := query.Order("name").Find(&categories).Error
	if err != nil {
		return nil, catalog.WrapStorage("list subcategories", err)
	}
	return categories, nil
}

// Watch pushes the full non-deleted category list after every committed write.
func (r *Repository) Watch(ctx context.Context) (<-chan []entities.Category, context.CancelFunc) {
	return stream.Watch(ctx, r.notifiers.Categories, r.GetAll)
}

// DescendantIDs returns the subtree rooted at categoryID, itself included.
func (r *Repository) DescendantIDs(categoryID string) ([]string, error) {
	forest, _, err := r.forest()
	if err != nil {
		return nil, err
	}
	if !forest.Contains(categoryID) {
		return nil, &catalog.NotFoundError{Entity: "category", ID: categoryID}
	}
	return forest.DescendantIDs(categoryID), nil
}

// AncestorIDs returns the path from categoryID's parent up to its root.
func (r *Repository) AncestorIDs(categoryID string) ([]string, error) {
	forest, _, err := r.forest()
	if err != nil {
		return nil, err
	}
	if !forest.Contains(categoryID) {
		return nil, &catalog.NotFoundError{Entity: "category", ID: categoryID}
	}
	return forest.AncestorIDs(categoryID), nil
}

// BooksInCategory retrieves the non-deleted books linked to the category;
// with recursive set, books linked anywhere in its subtree.
func (r *Repository) BooksInCategory(categoryID string, recursive bool) ([]entities.Book, error) {
	categoryIDs := []string{categoryID}
	if recursive {
		ids, err := r.DescendantIDs(categoryID)
		if err != nil {
			return nil, err
		}
		categoryIDs = ids
	} else if _, err := r.GetByID(categoryID); err != nil {
		return nil, err
	}

	var books []entities.Book
	err := r.db.Distinct("books.*").
		Joins("INNER JOIN book_categories ON book_categories.book_id = books.id").
		Where("book_categories.category_id IN ? AND books.is_deleted = ?", categoryIDs, false).
		Order("books.title").
		Find(&books).Error
	if err != nil {
		return nil, catalog.WrapStorage("list books in category", err)
	}
	return books, nil
}

// Insert validates and writes a new category. The stored level is derived
// from the parent chain, never taken from the caller.
func (r *Repository) Insert(category entities.Category, actor string) (*entities.Category, error) {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	forest, existing, err := r.forest()
	if err != nil {
		return nil, err
	}
	if err := classifyRuleErrors(validation.ValidateCategory(category, existing), category); err != nil {
		return nil, err
	}

	category.Level = 0
	if category.ParentID != nil {
		category.Level = forest.Depth(*category.ParentID) + 1
	}
	if err := r.db.Create(&category).Error; err != nil {
		return nil, catalog.WrapStorage("insert category", err)
	}

	r.recorder.Record(entities.Category{}.TableName(), category.ID, entities.OpInsert, nil, category, actor)
	r.notifiers.Categories.Notify()
	return &category, nil
}

// Update validates and writes a category, re-checking the hierarchy for
// cycles even when the parent pointer did not change. When the category
// moves, the levels of its entire subtree are recomputed in the same
// transaction.
func (r *Repository) Update(category entities.Category, actor string) (*entities.Category, error) {
	old, err := r.GetByID(category.ID)
	if err != nil {
		return nil, err
	}

	forest, existing, err := r.forest()
	if err != nil {
		return nil, err
	}
	if err := classifyRuleErrors(validation.ValidateCategory(category, existing), category); err != nil {
		return nil, err
	}
	// Defensive re-check directly against the forest, independent of the
	// validator's view.
	if category.ParentID != nil && forest.WouldCreateCycle(category.ID, *category.ParentID) {
		return nil, &catalog.ConflictError{Reason: validation.MsgCategoryCycle}
	}

	category.CreatedAt = old.CreatedAt
	category.IsDeleted = false
	category.Level = 0
	if category.ParentID != nil {
		category.Level = forest.Depth(*category.ParentID) + 1
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&category).Error; err != nil {
			return err
		}
		return recomputeSubtreeLevels(tx, category.ID)
	})
	if err != nil {
		return nil, catalog.WrapStorage("update category", err)
	}

	r.recorder.Record(entities.Category{}.TableName(), category.ID, entities.OpUpdate, old, category, actor)
	r.notifiers.Categories.Notify()
	return &category, nil
}

// DeleteWithBooks soft-deletes a category, applying the chosen policy to the
// books linked to it. If any linked book is borrowed the whole operation
// fails and nothing changes. With deleteBooks, every linked book is
// soft-deleted; with moveToUncategorized, the links are detached (callers
// re-link to the default bucket); with neither flag, links are detached as
// well, so no cross-reference is left pointing at a deleted category. The
// two flags are mutually exclusive.
func (r *Repository) DeleteWithBooks(categoryID string, deleteBooks, moveToUncategorized bool, actor string) error {
	if deleteBooks && moveToUncategorized {
		return validation.AsError([]string{"deleteBooks and moveToUncategorized are mutually exclusive"})
	}

	category, err := r.GetByID(categoryID)
	if err != nil {
		return err
	}

	var bookIDs []string
	err = r.db.Model(&entities.BookCategory{}).
		Where("category_id = ?", categoryID).
		Pluck("book_id", &bookIDs).Error
	if err != nil {
		return catalog.WrapStorage("list category books", err)
	}

	if len(bookIDs) > 0 {
		var borrowed int64
		err = r.db.Model(&entities.Book{}).
			Where("id IN ? AND status = ?", bookIDs, entities.BookStatusBorrowed).
			Count(&borrowed).Error
		if err != nil {
			return catalog.WrapStorage("count borrowed books", err)
		}
		if borrowed > 0 {
			return &catalog.ConflictError{
				Reason: fmt.Sprintf("Cannot delete category with %d borrowed books", borrowed),
			}
		}
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if deleteBooks {
			if len(bookIDs) > 0 {
				err := tx.Model(&entities.Book{}).
					Where("id IN ?", bookIDs).
					Update("is_deleted", true).Error
				if err != nil {
					return err
				}
			}
		} else {
			if err := tx.Where("category_id = ?", categoryID).Delete(&entities.BookCategory{}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&entities.Category{}).
			Where("id = ?", categoryID).
			Update("is_deleted", true).Error
	})
	if err != nil {
		return catalog.WrapStorage("delete category", err)
	}

	r.recorder.Record(entities.Category{}.TableName(), categoryID, entities.OpDelete, category, nil, actor)
	r.notifiers.Categories.Notify()
	if len(bookIDs) > 0 {
		r.notifiers.Books.Notify()
	}
	return nil
}

// forest loads the live category set and its in-memory tree view.
func (r *Repository) forest() (*catalog.Forest, []entities.Category, error) {
	var categories []entities.Category
	err := r.db.Where("is_deleted = ?", false).Find(&categories).Error
	if err != nil {
		return nil, nil, catalog.WrapStorage("load category tree", err)
	}
	return catalog.NewForest(categories), categories, nil
}

// recomputeSubtreeLevels rewrites the derived level of categoryID and every
// descendant from the current parent chains.
func recomputeSubtreeLevels(tx *gorm.DB, categoryID string) error {
	var categories []entities.Category
	if err := tx.Where("is_deleted = ?", false).Find(&categories).Error; err != nil {
		return err
	}
	forest := catalog.NewForest(categories)
	for _, id := range forest.DescendantIDs(categoryID) {
		err := tx.Model(&entities.Category{}).
			Where("id = ?", id).
			Update("level", forest.Depth(id)).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// classifyRuleErrors maps validator messages onto the error taxonomy:
// duplicate names and cycles are conflicts, a missing parent is not-found,
// anything else is a plain validation failure.
func classifyRuleErrors(messages []string, category entities.Category) error {
	if len(messages) == 0 {
		return nil
	}
	for _, msg := range messages {
		switch msg {
		case validation.MsgCategoryCycle, validation.MsgCategoryNameExists:
			return &catalog.ConflictError{Reason: msg}
		case validation.MsgCategoryParentMissing:
			parentID := ""
			if category.ParentID != nil {
				parentID = *category.ParentID
			}
			return &catalog.NotFoundError{Entity: "category", ID: parentID}
		}
	}
	return &catalog.ValidationError{Messages: messages}
}
