// Package validation implements stateless rule checking for catalog entities.
// Each function returns the ordered list of human-readable violations, nil
// when the entity is valid. Nothing here touches storage; callers supply any
// context (such as existing categories) the rules need.
package validation

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/mkowalik/libris/internal/catalog"
	"github.com/mkowalik/libris/internal/entities"
)

// Category rule messages, exported so repositories can classify them into the
// error taxonomy (duplicate names and cycles surface as conflicts, a missing
// parent as not-found).
const (
	MsgCategoryNameEmpty     = "Category name cannot be empty"
	MsgCategoryNameExists    = "Category name already exists"
	MsgCategoryParentMissing = "Parent category not found"
	MsgCategoryCycle         = "Creating cyclic reference in category hierarchy"
)

// ValidateBook checks title, ISBN (including check digit), publish year, page
// count and status.
func ValidateBook(book entities.Book) []string {
	var errs []string

	if strings.TrimSpace(book.Title) == "" {
		errs = append(errs, "Book title cannot be empty")
	}

	if strings.TrimSpace(book.ISBN) == "" {
		errs = append(errs, "ISBN cannot be empty")
	} else if !IsValidISBN(book.ISBN) {
		errs = append(errs, "Invalid ISBN format")
	}

	if book.PublishYear < 0 || book.PublishYear > time.Now().Year() {
		errs = append(errs, "Invalid publish year")
	}

	if err := validation.Validate(book.PageCount,
		validation.Required.Error("Page count must be positive"),
		validation.Min(1).Error("Page count must be positive"),
	); err != nil {
		errs = append(errs, "Page count must be positive")
	}

	if _, err := entities.ParseBookStatus(string(book.Status)); err != nil {
		errs = append(errs, "Invalid book status")
	}

	return errs
}

// ValidateAuthor checks the name and, when present, the email address.
func ValidateAuthor(author entities.Author) []string {
	var errs []string

	if strings.TrimSpace(author.Name) == "" {
		errs = append(errs, "Author name cannot be empty")
	}

	if author.Email != "" {
		if err := validation.Validate(author.Email, is.EmailFormat); err != nil {
			errs = append(errs, "Invalid email format")
		}
	}

	return errs
}

// ValidateCategory checks the name, its uniqueness among existing non-deleted
// categories (case-insensitive, the category itself excluded), that any
// parent resolves to a live category, and that assigning the parent would not
// create a cycle. existing is the current non-deleted category set.
func ValidateCategory(category entities.Category, existing []entities.Category) []string {
	var errs []string

	if strings.TrimSpace(category.Name) == "" {
		errs = append(errs, MsgCategoryNameEmpty)
	}

	for _, other := range existing {
		if other.ID == category.ID || other.IsDeleted {
			continue
		}
		if strings.EqualFold(other.Name, category.Name) {
			errs = append(errs, MsgCategoryNameExists)
			break
		}
	}

	if category.ParentID != nil {
		forest := catalog.NewForest(existing)
		switch {
		case !forest.Contains(*category.ParentID):
			errs = append(errs, MsgCategoryParentMissing)
		case forest.WouldCreateCycle(category.ID, *category.ParentID):
			errs = append(errs, MsgCategoryCycle)
		}
	}

	return errs
}

// ValidateStatusTransition checks the move against the status state machine.
// Both statuses must parse; unknown values are rejected before the table is
// consulted.
func ValidateStatusTransition(current, next string) []string {
	from, err := entities.ParseBookStatus(current)
	if err != nil {
		return []string{fmt.Sprintf("Invalid book status %q", current)}
	}
	to, err := entities.ParseBookStatus(next)
	if err != nil {
		return []string{fmt.Sprintf("Invalid book status %q", next)}
	}
	if err := catalog.ValidateTransition(from, to); err != nil {
		return []string{err.Error()}
	}
	return nil
}

// AsError converts a non-empty message list into a catalog ValidationError.
func AsError(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	return &catalog.ValidationError{Messages: messages}
}
