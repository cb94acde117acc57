package entities

import (
	"fmt"
	"strings"
	"time"
)

type BookStatus string

const (
	BookStatusAvailable   BookStatus = "available"
	BookStatusBorrowed    BookStatus = "borrowed"
	BookStatusReserved    BookStatus = "reserved"
	BookStatusMaintenance BookStatus = "maintenance"
)

// ValidBookStatuses lists every status a book may hold.
var ValidBookStatuses = []BookStatus{
	BookStatusAvailable,
	BookStatusBorrowed,
	BookStatusReserved,
	BookStatusMaintenance,
}

// ParseBookStatus converts a raw string into a BookStatus, rejecting unknown
// values at the boundary instead of letting them reach the database.
func ParseBookStatus(s string) (BookStatus, error) {
	status := BookStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidBookStatuses {
		if status == valid {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown book status %q", s)
}

type AuthorRole string

const (
	RoleAuthor     AuthorRole = "author"
	RoleCoAuthor   AuthorRole = "co-author"
	RoleEditor     AuthorRole = "editor"
	RoleTranslator AuthorRole = "translator"
)

var ValidAuthorRoles = []AuthorRole{RoleAuthor, RoleCoAuthor, RoleEditor, RoleTranslator}

// ParseAuthorRole converts a raw string into an AuthorRole.
func ParseAuthorRole(s string) (AuthorRole, error) {
	role := AuthorRole(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidAuthorRoles {
		if role == valid {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown author role %q", s)
}

type Book struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"index;size:512" json:"title"`
	ISBN        string     `gorm:"index;size:20" json:"isbn"`
	Publisher   string     `gorm:"size:256" json:"publisher,omitempty"`
	PublishYear int        `json:"publish_year"`
	PageCount   int        `json:"page_count"`
	Language    string     `gorm:"size:50" json:"language,omitempty"`
	Status      BookStatus `gorm:"index;size:20;default:available" json:"status"`
	Location    string     `gorm:"size:100" json:"location,omitempty"`
	IsDeleted   bool       `gorm:"index;default:false" json:"is_deleted"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

type Author struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"index;size:256" json:"name"`
	Email       string    `gorm:"size:255" json:"email,omitempty"`
	Biography   string    `gorm:"type:text" json:"biography,omitempty"`
	Nationality string    `gorm:"size:100" json:"nationality,omitempty"`
	IsDeleted   bool      `gorm:"index;default:false" json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Author) TableName() string {
	return "authors"
}

// Category is one node of the catalog's category forest. ParentID is nil for
// root categories. Level is derived from the ancestor chain on every write and
// stored only so list reads can order by depth without rebuilding the tree.
type Category struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"index;size:256" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ParentID    *string   `gorm:"index;size:36" json:"parent_id,omitempty"`
	Level       int       `gorm:"default:0" json:"level"`
	IsDeleted   bool      `gorm:"index;default:false" json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// BookAuthor is one edge of the book/author many-to-many relationship.
type BookAuthor struct {
	BookID   string     `gorm:"primaryKey;size:36" json:"book_id"`
	AuthorID string     `gorm:"primaryKey;size:36" json:"author_id"`
	Role     AuthorRole `gorm:"size:20;default:author" json:"role"`
}

func (BookAuthor) TableName() string {
	return "book_authors"
}

// BookCategory is one edge of the book/category many-to-many relationship.
type BookCategory struct {
	BookID     string `gorm:"primaryKey;size:36" json:"book_id"`
	CategoryID string `gorm:"primaryKey;size:36" json:"category_id"`
}

func (BookCategory) TableName() string {
	return "book_categories"
}
