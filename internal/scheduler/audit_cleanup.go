// Package scheduler drives periodic maintenance jobs off cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mkowalik/libris/internal/config"
	"github.com/mkowalik/libris/internal/tasks"
)

// AuditCleanupScheduler enqueues the audit retention purge on a cron
// schedule. The purge itself runs on the task queue so a slow delete never
// blocks the scheduler tick.
type AuditCleanupScheduler struct {
	taskClient *tasks.Client
	cfg        config.AuditCleanup
	retention  int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewAuditCleanupScheduler(taskClient *tasks.Client, cfg config.AuditCleanup, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		taskClient: taskClient,
		cfg:        cfg,
		retention:  retentionDays,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if cleanup is enabled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Audit cleanup scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.enqueueCleanup()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit cleanup scheduler: started with schedule '%s', retention %d days",
		s.cfg.Schedule, s.retention)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running tick to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Audit cleanup scheduler: stopped")
}

// RunNow triggers an immediate cleanup.
func (s *AuditCleanupScheduler) RunNow() {
	s.enqueueCleanup()
}

// IsRunning returns whether the scheduler is active.
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next cleanup will be enqueued.
func (s *AuditCleanupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *AuditCleanupScheduler) enqueueCleanup() {
	if s.taskClient == nil {
		return
	}
	_, err := s.taskClient.Add(tasks.CleanupAuditTask{RetentionDays: s.retention}).Save()
	if err != nil {
		log.Printf("Audit cleanup scheduler: failed to enqueue cleanup task: %v", err)
		return
	}
	log.Printf("Audit cleanup scheduler: cleanup task enqueued")
}
