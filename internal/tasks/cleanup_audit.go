package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// AuditPurger deletes audit entries older than the retention window.
type AuditPurger interface {
	Purge(retention time.Duration) (int64, error)
}

// CleanupAuditTask removes audit entries older than the configured retention
// period. Enqueued on a schedule; safe to run concurrently with writes since
// the purge only touches rows past the cutoff.
type CleanupAuditTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditProcessor creates a processor function for CleanupAuditTask.
func CleanupAuditProcessor(purger AuditPurger) backlite.QueueProcessor[CleanupAuditTask] {
	return func(ctx context.Context, task CleanupAuditTask) error {
		if purger == nil {
			return fmt.Errorf("audit purger not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}
		retention := time.Duration(retentionDays) * 24 * time.Hour

		deleted, err := purger.Purge(retention)
		if err != nil {
			return fmt.Errorf("cleanup audit entries: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d audit entries older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewCleanupAuditQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditQueue(purger AuditPurger) backlite.Queue {
	return backlite.NewQueue(CleanupAuditProcessor(purger))
}
