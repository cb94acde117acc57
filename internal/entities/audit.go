package entities

import (
	"fmt"
	"strings"
	"time"
)

type Operation string

const (
	OpInsert     Operation = "INSERT"
	OpUpdate     Operation = "UPDATE"
	OpSoftDelete Operation = "SOFT_DELETE"
	OpDelete     Operation = "DELETE"
)

var ValidOperations = []Operation{OpInsert, OpUpdate, OpSoftDelete, OpDelete}

// ParseOperation converts a raw string into an Operation.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToUpper(strings.TrimSpace(s)))
	for _, valid := range ValidOperations {
		if op == valid {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown audit operation %q", s)
}

// AuditLog is one append-only record of a catalog mutation. OldValues and
// NewValues hold JSON snapshots of the full entity state, not diffs. Rows are
// never updated; the only permitted delete is the retention purge.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TableName string    `gorm:"index;size:64" json:"table_name"`
	RecordID  string    `gorm:"index;size:36" json:"record_id"`
	Operation Operation `gorm:"size:20" json:"operation"`
	OldValues string    `gorm:"type:text" json:"old_values,omitempty"`
	NewValues string    `gorm:"type:text" json:"new_values,omitempty"`
	Actor     string    `gorm:"size:100" json:"actor,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
