package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkowalik/libris/internal/entities"
)

// CategoryStore defines the repository operations the categories API needs.
type CategoryStore interface {
	GetAll() ([]entities.Category, error)
	GetByID(id string) (*entities.Category, error)
	SubCategories(parentID *string) ([]entities.Category, error)
	DescendantIDs(categoryID string) ([]string, error)
	AncestorIDs(categoryID string) ([]string, error)
	BooksInCategory(categoryID string, recursive bool) ([]entities.Book, error)
	Insert(category entities.Category, actor string) (*entities.Category, error)
	Update(category entities.Category, actor string) (*entities.Category, error)
	DeleteWithBooks(categoryID string, deleteBooks, moveToUncategorized bool, actor string) error
}

type CategoriesController struct {
	store CategoryStore
}

func NewCategoriesController(store CategoryStore) *CategoriesController {
	return &CategoriesController{store: store}
}

type categoryRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id"`
}

func (r categoryRequest) toEntity(id string) entities.Category {
	return entities.Category{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		ParentID:    r.ParentID,
	}
}

// GetAllCategories returns the full category forest, shallowest first.
// GET /api/categories
func (cc *CategoriesController) GetAllCategories(c *gin.Context) {
	categories, err := cc.store.GetAll()
	if err != nil {
		respondCatalogError(c, err, "get all categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory returns one category.
// GET /api/categories/:id
func (cc *CategoriesController) GetCategory(c *gin.Context) {
	category, err := cc.store.GetByID(c.Param("id"))
	if err != nil {
		respondCatalogError(c, err, "get category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// GetSubCategories returns the direct children of a category.
// GET /api/categories/:id/children
func (cc *CategoriesController) GetSubCategories(c *gin.Context) {
	id := c.Param("id")
	children, err := cc.store.SubCategories(&id)
	if err != nil {
		respondCatalogError(c, err, "get subcategories")
		return
	}
	c.JSON(http.StatusOK, children)
}

// GetDescendants returns the ids of the subtree rooted at the category.
// GET /api/categories/:id/descendants
func (cc *CategoriesController) GetDescendants(c *gin.Context) {
	ids, err := cc.store.DescendantIDs(c.Param("id"))
	if err != nil {
		respondCatalogError(c, err, "get descendants")
		return
	}
	c.JSON(http.StatusOK, ids)
}

// GetAncestors returns the path from the category's parent to its root.
// GET /api/categories/:id/ancestors
func (cc *CategoriesController) GetAncestors(c *gin.Context) {
	ids, err := cc.store.AncestorIDs(c.Param("id"))
	if err != nil {
		respondCatalogError(c, err, "get ancestors")
		return
	}
	c.JSON(http.StatusOK, ids)
}

// GetCategoryBooks returns the books linked to a category; ?recursive=true
// includes the whole subtree.
// GET /api/categories/:id/books
func (cc *CategoriesController) GetCategoryBooks(c *gin.Context) {
	books, err := cc.store.BooksInCategory(c.Param("id"), parseBoolQuery(c, "recursive"))
	if err != nil {
		respondCatalogError(c, err, "get category books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// CreateCategory inserts a new category. The depth is derived server-side.
// POST /api/categories
func (cc *CategoriesController) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	category, err := cc.store.Insert(req.toEntity(""), actorFrom(c))
	if err != nil {
		respondCatalogError(c, err, "create category")
		return
	}
	respondCreated(c, category)
}

// UpdateCategory replaces a category's fields, re-checking the hierarchy.
// PUT /api/categories/:id
func (cc *CategoriesController) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	category, err := cc.store.Update(req.toEntity(c.Param("id")), actorFrom(c))
	if err != nil {
		respondCatalogError(c, err, "update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory soft-deletes a category, applying the chosen policy to
// linked books: ?delete_books=true soft-deletes them,
// ?move_to_uncategorized=true detaches them, neither detaches as well.
// DELETE /api/categories/:id
func (cc *CategoriesController) DeleteCategory(c *gin.Context) {
	err := cc.store.DeleteWithBooks(
		c.Param("id"),
		parseBoolQuery(c, "delete_books"),
		parseBoolQuery(c, "move_to_uncategorized"),
		actorFrom(c),
	)
	if err != nil {
		respondCatalogError(c, err, "delete category")
		return
	}
	respondSuccess(c, "category deleted")
}
