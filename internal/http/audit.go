package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkowalik/libris/internal/entities"
)

// AuditStore defines read access to the audit trail.
type AuditStore interface {
	List(limit, offset int) ([]entities.AuditLog, int64, error)
	ListByTable(tableName string, limit, offset int) ([]entities.AuditLog, int64, error)
	ListByRecord(recordID string, limit, offset int) ([]entities.AuditLog, int64, error)
}

type AuditController struct {
	store AuditStore
}

func NewAuditController(store AuditStore) *AuditController {
	return &AuditController{store: store}
}

// ListEntries returns the audit trail, newest first. Filter with ?table= or
// ?record_id= (record_id wins when both are given).
// GET /api/audit
func (ac *AuditController) ListEntries(c *gin.Context) {
	limit, offset := parsePagination(c)

	var (
		entries []entities.AuditLog
		total   int64
		err     error
	)
	switch {
	case c.Query("record_id") != "":
		entries, total, err = ac.store.ListByRecord(c.Query("record_id"), limit, offset)
	case c.Query("table") != "":
		entries, total, err = ac.store.ListByTable(c.Query("table"), limit, offset)
	default:
		entries, total, err = ac.store.List(limit, offset)
	}
	if err != nil {
		respondCatalogError(c, err, "list audit entries")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(entries)) < total,
	})
}
