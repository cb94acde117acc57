// Package audit provides the engine's mutation trail: every repository write
// is recorded with JSON snapshots of the entity before and after the change.
package audit

import (
	"encoding/json"
	"log"
	"time"

	auditdb "github.com/mkowalik/libris/internal/database/audit"
	"github.com/mkowalik/libris/internal/entities"
)

// Recorder appends audit entries on behalf of the repositories. Recording is
// best-effort: a failure to write the trail is logged and never fails the
// business operation that triggered it.
type Recorder struct {
	repo *auditdb.Repository
}

func NewRecorder(repo *auditdb.Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one entry. oldValue and newValue are the full entity states
// before and after the mutation (nil when absent, e.g. before an INSERT);
// they are serialized to JSON. actor may be empty for unattributed changes.
func (r *Recorder) Record(tableName, recordID string, op entities.Operation, oldValue, newValue any, actor string) {
	entry := &entities.AuditLog{
		TableName: tableName,
		RecordID:  recordID,
		Operation: op,
		OldValues: marshalSnapshot(oldValue),
		NewValues: marshalSnapshot(newValue),
		Actor:     actor,
	}
	if err := r.repo.Append(entry); err != nil {
		log.Printf("Failed to record audit entry for %s %s: %v", tableName, recordID, err)
	}
}

// List retrieves paginated audit entries.
func (r *Recorder) List(limit, offset int) ([]entities.AuditLog, int64, error) {
	return r.repo.List(limit, offset)
}

// ListByTable retrieves entries for one table.
func (r *Recorder) ListByTable(tableName string, limit, offset int) ([]entities.AuditLog, int64, error) {
	return r.repo.ListByTable(tableName, limit, offset)
}

// ListByRecord retrieves the history of one record.
func (r *Recorder) ListByRecord(recordID string, limit, offset int) ([]entities.AuditLog, int64, error) {
	return r.repo.ListByRecord(recordID, limit, offset)
}

// Purge removes entries older than the retention window and returns how many
// were deleted.
func (r *Recorder) Purge(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return r.repo.DeleteOldEntries(cutoff)
}

func marshalSnapshot(value any) string {
	if value == nil {
		return ""
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("Failed to marshal audit snapshot: %v", err)
		return ""
	}
	return string(data)
}
