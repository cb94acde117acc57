package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkowalik/libris/internal/entities"
)

// AuthorStore defines the repository operations the authors API needs.
type AuthorStore interface {
	GetAll() ([]entities.Author, error)
	GetByID(id string) (*entities.Author, error)
	SearchByName(query string) ([]entities.Author, error)
	Insert(author entities.Author, actor string) (*entities.Author, error)
	Update(author entities.Author, actor string) (*entities.Author, error)
	SoftDelete(authorID string, actor string) error
}

type AuthorsController struct {
	store AuthorStore
}

func NewAuthorsController(store AuthorStore) *AuthorsController {
	return &AuthorsController{store: store}
}

type authorRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Biography   string `json:"biography"`
	Nationality string `json:"nationality"`
}

func (r authorRequest) toEntity(id string) entities.Author {
	return entities.Author{
		ID:          id,
		Name:        r.Name,
		Email:       r.Email,
		Biography:   r.Biography,
		Nationality: r.Nationality,
	}
}

// GetAllAuthors returns every non-deleted author, optionally filtered by a
// case-insensitive name search.
// GET /api/authors?q=orwell
func (ac *AuthorsController) GetAllAuthors(c *gin.Context) {
	if query := c.Query("q"); query != "" {
		authors, err := ac.store.SearchByName(query)
		if err != nil {
			respondCatalogError(c, err, "search authors")
			return
		}
		c.JSON(http.StatusOK, authors)
		return
	}

	authors, err := ac.store.GetAll()
	if err != nil {
		respondCatalogError(c, err, "get all authors")
		return
	}
	c.JSON(http.StatusOK, authors)
}

// GetAuthor returns one author.
// GET /api/authors/:id
func (ac *AuthorsController) GetAuthor(c *gin.Context) {
	author, err := ac.store.GetByID(c.Param("id"))
	if err != nil {
		respondCatalogError(c, err, "get author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// CreateAuthor inserts a new author.
// POST /api/authors
func (ac *AuthorsController) CreateAuthor(c *gin.Context) {
	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	author, err := ac.store.Insert(req.toEntity(""), actorFrom(c))
	if err != nil {
		respondCatalogError(c, err, "create author")
		return
	}
	respondCreated(c, author)
}

// UpdateAuthor replaces the author's fields.
// PUT /api/authors/:id
func (ac *AuthorsController) UpdateAuthor(c *gin.Context) {
	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	author, err := ac.store.Update(req.toEntity(c.Param("id")), actorFrom(c))
	if err != nil {
		respondCatalogError(c, err, "update author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// DeleteAuthor soft-deletes an author.
// DELETE /api/authors/:id
func (ac *AuthorsController) DeleteAuthor(c *gin.Context) {
	if err := ac.store.SoftDelete(c.Param("id"), actorFrom(c)); err != nil {
		respondCatalogError(c, err, "delete author")
		return
	}
	respondSuccess(c, "author deleted")
}
