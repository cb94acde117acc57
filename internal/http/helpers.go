package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkowalik/libris/internal/catalog"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"` // additional context (validation messages, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 500 response. The actual
// error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondCatalogError maps the catalog error taxonomy onto HTTP statuses:
// validation 400, not-found 404, conflict 409, storage 500.
func respondCatalogError(c *gin.Context, err error, context string) {
	var verr *catalog.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: verr.Messages,
		})
		return
	}
	var nfe *catalog.NotFoundError
	if errors.As(err, &nfe) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: nfe.Error()})
		return
	}
	var cerr *catalog.ConflictError
	if errors.As(err, &cerr) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: cerr.Reason})
		return
	}
	respondInternalError(c, err, context)
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// actorFrom extracts the acting user from the X-Actor header; empty when the
// caller did not identify itself.
func actorFrom(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("X-Actor"))
}

// parsePagination reads limit/offset query parameters with sane bounds.
func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

// parseBoolQuery reads a boolean query parameter, defaulting to false for
// anything but explicit truthy values.
func parseBoolQuery(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}
