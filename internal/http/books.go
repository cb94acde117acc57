package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkowalik/libris/internal/entities"
)

// BookStore defines the repository operations the books API needs.
type BookStore interface {
	GetAll() ([]entities.Book, error)
	GetByID(id string) (*entities.Book, error)
	GetByStatus(status entities.BookStatus) ([]entities.Book, error)
	AuthorLinks(bookID string) ([]entities.BookAuthor, error)
	CategoryLinks(bookID string) ([]entities.BookCategory, error)
	InsertWithAuthors(book entities.Book, authorIDs []string, roles []entities.AuthorRole, actor string) (*entities.Book, error)
	Update(book entities.Book, actor string) (*entities.Book, error)
	UpdateStatus(bookID string, next entities.BookStatus, actor string) (*entities.Book, error)
	SoftDelete(bookID string, actor string) error
	SetAuthors(bookID string, authorIDs []string, roles []entities.AuthorRole, actor string) error
	SetCategories(bookID string, categoryIDs []string, actor string) error
}

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{store: store}
}

type bookRequest struct {
	Title       string `json:"title"`
	ISBN        string `json:"isbn"`
	Publisher   string `json:"publisher"`
	PublishYear int    `json:"publish_year"`
	PageCount   int    `json:"page_count"`
	Language    string `json:"language"`
	Status      string `json:"status"`
	Location    string `json:"location"`
}

func (r bookRequest) toEntity(id string) entities.Book {
	return entities.Book{
		ID:          id,
		Title:       r.Title,
		ISBN:        r.ISBN,
		Publisher:   r.Publisher,
		PublishYear: r.PublishYear,
		PageCount:   r.PageCount,
		Language:    r.Language,
		Status:      entities.BookStatus(r.Status),
		Location:    r.Location,
	}
}

// bookWithLinks is the detail representation: the book plus its author and
// category cross-references.
type bookWithLinks struct {
	entities.Book
	Authors    []entities.BookAuthor   `json:"authors"`
	Categories []entities.BookCategory `json:"categories"`
}

// GetAllBooks returns every non-deleted book, optionally filtered by status.
// GET /api/books?status=available
func (bc *BooksController) GetAllBooks(c *gin.Context) {
	if raw := c.Query("status"); raw != "" {
		status, err := entities.ParseBookStatus(raw)
		if err != nil {
			respondBadRequest(c, "invalid status filter")
			return
		}
		books, err := bc.store.GetByStatus(status)
		if err != nil {
			respondCatalogError(c, err, "get books by status")
			return
		}
		c.JSON(http.StatusOK, books)
		return
	}

	books, err := bc.store.GetAll()
	if err != nil {
		respondCatalogError(c, err, "get all books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// GetBook returns one book with its author and category links.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	book, err := bc.store.GetByID(c.Param("id"))
	if err != nil {
		respondCatalogError(c, err, "get book")
		return
	}

	authorLinks, err := bc.store.AuthorLinks(book.ID)
	if err != nil {
		respondCatalogError(c, err, "get book authors")
		return
	}
	categoryLinks, err := bc.store.CategoryLinks(book.ID)
	if err != nil {
		respondCatalogError(c, err, "get book categories")
		return
	}

	c.JSON(http.StatusOK, bookWithLinks{
		Book:       *book,
		Authors:    authorLinks,
		Categories: categoryLinks,
	})
}

// CreateBook inserts a book together with its author links in one unit.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req struct {
		bookRequest
		AuthorIDs   []string `json:"author_ids"`
		AuthorRoles []string `json:"author_roles"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	roles := make([]entities.AuthorRole, 0, len(req.AuthorRoles))
	for _, raw := range req.AuthorRoles {
		role, err := entities.ParseAuthorRole(raw)
		if err != nil {
			respondBadRequest(c, "invalid author role: "+raw)
			return
		}
		roles = append(roles, role)
	}

	book, err := bc.store.InsertWithAuthors(req.toEntity(""), req.AuthorIDs, roles, actorFrom(c))
	if err != nil {
		respondCatalogError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

// UpdateBook replaces the book's scalar fields.
// PUT /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := bc.store.Update(req.toEntity(c.Param("id")), actorFrom(c))
	if err != nil {
		respondCatalogError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// UpdateBookStatus moves the book through the status state machine.
// PATCH /api/books/:id/status
func (bc *BooksController) UpdateBookStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	status, err := entities.ParseBookStatus(req.Status)
	if err != nil {
		respondBadRequest(c, "invalid status: "+req.Status)
		return
	}

	book, err := bc.store.UpdateStatus(c.Param("id"), status, actorFrom(c))
	if err != nil {
		respondCatalogError(c, err, "update book status")
		return
	}
	c.JSON(http.StatusOK, book)
}

// SetBookAuthors replaces the book's author links.
// PUT /api/books/:id/authors
func (bc *BooksController) SetBookAuthors(c *gin.Context) {
	var req struct {
		AuthorIDs   []string `json:"author_ids"`
		AuthorRoles []string `json:"author_roles"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	roles := make([]entities.AuthorRole, 0, len(req.AuthorRoles))
	for _, raw := range req.AuthorRoles {
		role, err := entities.ParseAuthorRole(raw)
		if err != nil {
			respondBadRequest(c, "invalid author role: "+raw)
			return
		}
		roles = append(roles, role)
	}

	if err := bc.store.SetAuthors(c.Param("id"), req.AuthorIDs, roles, actorFrom(c)); err != nil {
		respondCatalogError(c, err, "set book authors")
		return
	}
	respondSuccess(c, "authors updated")
}

// SetBookCategories replaces the book's category links.
// PUT /api/books/:id/categories
func (bc *BooksController) SetBookCategories(c *gin.Context) {
	var req struct {
		CategoryIDs []string `json:"category_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := bc.store.SetCategories(c.Param("id"), req.CategoryIDs, actorFrom(c)); err != nil {
		respondCatalogError(c, err, "set book categories")
		return
	}
	respondSuccess(c, "categories updated")
}

// DeleteBook soft-deletes a book. Borrowed books are refused.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	if err := bc.store.SoftDelete(c.Param("id"), actorFrom(c)); err != nil {
		respondCatalogError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}
