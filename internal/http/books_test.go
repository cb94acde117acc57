package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBook(t *testing.T, router *gin.Engine, body string) map[string]any {
	t.Helper()
	w := doRequest(router, "POST", "/api/books", body, map[string]string{"X-Actor": "alice"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var book map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	return book
}

func TestBooksAPI_CreateAndGet(t *testing.T) {
	router, _, cleanup := setupTestRouter(t)
	defer cleanup()

	book := createTestBook(t, router, `{
		"title": "1984",
		"isbn": "9780452284234",
		"publisher": "Plume",
		"publish_year": 1949,
		"page_count": 328
	}`)
	id := book["id"].(string)
	assert.Equal(t, "available", book["status"])

	w := doRequest(router, "GET", "/api/books/"+id, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var detail map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "1984", detail["title"])
	assert.Empty(t, detail["authors"])
}

func TestBooksAPI_CreateValidation(t *testing.T) {
	router, _, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doRequest(router, "POST", "/api/books", `{"title": "", "isbn": "bogus"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	details := resp["details"].([]any)
	assert.Contains(t, details, "Book title cannot be empty")
	assert.Contains(t, details, "Invalid ISBN format")
}

func TestBooksAPI_StatusTransitions(t *testing.T) {
	router, _, cleanup := setupTestRouter(t)
	defer cleanup()

	book := createTestBook(t, router, `{"title": "Dune", "isbn": "0306406152", "page_count": 412}`)
	id := book["id"].(string)

	w := doRequest(router, "PATCH", "/api/books/"+id+"/status", `{"status": "borrowed"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// borrowed -> reserved is not a legal move.
	w = doRequest(router, "PATCH", "/api/books/"+id+"/status", `{"status": "reserved"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Borrowed books cannot be deleted.
	w = doRequest(router, "DELETE", "/api/books/"+id, "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(router, "PATCH", "/api/books/"+id+"/status", `{"status": "available"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "DELETE", "/api/books/"+id, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/api/books/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooksAPI_StatusFilter(t *testing.T) {
	router, _, cleanup := setupTestRouter(t)
	defer cleanup()

	book := createTestBook(t, router, `{"title": "Dune", "isbn": "0306406152", "page_count": 412}`)
	createTestBook(t, router, `{"title": "Emma", "isbn": "9780306406157", "page_count": 300}`)

	w := doRequest(router, "PATCH", "/api/books/"+book["id"].(string)+"/status", `{"status": "reserved"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/api/books?status=reserved", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var books []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0]["title"])

	w = doRequest(router, "GET", "/api/books?status=no-such-status", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBooksAPI_CreateWithMissingAuthor(t *testing.T) {
	router, _, cleanup := setupTestRouter(t)
	defer cleanup()

	w := doRequest(router, "POST", "/api/books", `{
		"title": "Orphaned",
		"isbn": "0452284236",
		"page_count": 100,
		"author_ids": ["ghost"]
	}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Nothing was written.
	w = doRequest(router, "GET", "/api/books", "", nil)
	var books []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
	assert.Empty(t, books)
}

func TestBooksAPI_AuditTrail(t *testing.T) {
	router, _, cleanup := setupTestRouter(t)
	defer cleanup()

	book := createTestBook(t, router, `{"title": "Dune", "isbn": "0306406152", "page_count": 412}`)
	id := book["id"].(string)

	w := doRequest(router, "PATCH", "/api/books/"+id+"/status", `{"status": "maintenance"}`,
		map[string]string{"X-Actor": "bob"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/api/audit?record_id="+id, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data  []map[string]any `json:"data"`
		Total int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.Total)
	// Newest first: the status change on top.
	assert.Equal(t, "UPDATE", resp.Data[0]["operation"])
	assert.Equal(t, "bob", resp.Data[0]["actor"])
	assert.Equal(t, "INSERT", resp.Data[1]["operation"])
	assert.Equal(t, "alice", resp.Data[1]["actor"])
}
