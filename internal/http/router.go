// Package http exposes the catalog engine over a JSON API.
package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RateLimitMiddleware(cfg.RateLimitPerSecond, cfg.RateLimitBurst))

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.BookStore)
	authorsController := NewAuthorsController(cfg.AuthorStore)
	categoriesController := NewCategoriesController(cfg.CategoryStore)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Books API endpoints
	router.GET("/api/books", booksController.GetAllBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.POST("/api/books", booksController.CreateBook)
	router.PUT("/api/books/:id", booksController.UpdateBook)
	router.PATCH("/api/books/:id/status", booksController.UpdateBookStatus)
	router.PUT("/api/books/:id/authors", booksController.SetBookAuthors)
	router.PUT("/api/books/:id/categories", booksController.SetBookCategories)
	router.DELETE("/api/books/:id", booksController.DeleteBook)

	// Authors API endpoints
	router.GET("/api/authors", authorsController.GetAllAuthors)
	router.GET("/api/authors/:id", authorsController.GetAuthor)
	router.POST("/api/authors", authorsController.CreateAuthor)
	router.PUT("/api/authors/:id", authorsController.UpdateAuthor)
	router.DELETE("/api/authors/:id", authorsController.DeleteAuthor)

	// Categories API endpoints
	router.GET("/api/categories", categoriesController.GetAllCategories)
	router.GET("/api/categories/:id", categoriesController.GetCategory)
	router.GET("/api/categories/:id/children", categoriesController.GetSubCategories)
	router.GET("/api/categories/:id/descendants", categoriesController.GetDescendants)
	router.GET("/api/categories/:id/ancestors", categoriesController.GetAncestors)
	router.GET("/api/categories/:id/books", categoriesController.GetCategoryBooks)
	router.POST("/api/categories", categoriesController.CreateCategory)
	router.PUT("/api/categories/:id", categoriesController.UpdateCategory)
	router.DELETE("/api/categories/:id", categoriesController.DeleteCategory)

	// Audit trail endpoints
	if cfg.AuditStore != nil {
		auditController := NewAuditController(cfg.AuditStore)
		router.GET("/api/audit", auditController.ListEntries)
	}

	return router
}
