package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mkowalik/libris/internal/audit"
	"github.com/mkowalik/libris/internal/database"
	auditdb "github.com/mkowalik/libris/internal/database/audit"
	"github.com/mkowalik/libris/internal/database/authors"
	"github.com/mkowalik/libris/internal/database/books"
	"github.com/mkowalik/libris/internal/database/categories"
)

// setupTestRouter wires a full router over a fresh database, mirroring the
// production wiring in the entrypoint.
func setupTestRouter(t *testing.T) (*gin.Engine, *database.Database, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	recorder := audit.NewRecorder(auditdb.NewRepository(db.DB))
	router := NewRouter(RouterConfig{
		Database:      db,
		BookStore:     books.NewRepository(db.DB, recorder, db.Notifiers),
		AuthorStore:   authors.NewRepository(db.DB, recorder, db.Notifiers),
		CategoryStore: categories.NewRepository(db.DB, recorder, db.Notifiers),
		AuditStore:    recorder,
		Version:       "test",
	})

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return router, db, cleanup
}

// newTestEngine builds a bare engine with the given middleware and a single
// /limited endpoint.
func newTestEngine(middleware gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware)
	engine.GET("/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return engine
}

func doRequest(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}
