package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/mazo/internal/reconcile"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scanner repairs pending write intents older than minAge.
type Scanner interface {
	Scan(ctx context.Context, minAge time.Duration) (reconcile.Summary, error)
}

// CleanupEnqueuer schedules removal of old audit events and closed intents.
type CleanupEnqueuer interface {
	EnqueueCleanup(ctx context.Context, retentionDays int) error
}

type Config struct {
	Schedule        string
	MinAge          time.Duration
	ScanTimeout     time.Duration
	CleanupSchedule string // empty disables cleanup
	RetentionDays   int
}

// ReconcileScheduler periodically scans the write-intent log for partial
// writes and repairs them.
type ReconcileScheduler struct {
	scanner Scanner
	cleanup CleanupEnqueuer
	config  Config

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isScanning bool
	lastRun    *time.Time
	lastResult *reconcile.Summary
}

// NewReconcileScheduler creates a scheduler. cleanup may be nil.
func NewReconcileScheduler(scanner Scanner, cleanup CleanupEnqueuer, cfg Config) *ReconcileScheduler {
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = 10 * time.Minute
	}
	return &ReconcileScheduler{
		scanner: scanner,
		cleanup: cleanup,
		config:  cfg,
		cron:    cron.New(cron.WithParser(parser)),
	}
}

// Start registers the jobs and starts the cron loop. It stops when ctx is done.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runScan(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile job: %w", err)
	}
	s.entryID = entryID

	if s.cleanup != nil && s.config.CleanupSchedule != "" {
		if err := ValidateCronSchedule(s.config.CleanupSchedule); err != nil {
			return fmt.Errorf("invalid cleanup schedule '%s': %w", s.config.CleanupSchedule, err)
		}
		if _, err := s.cron.AddFunc(s.config.CleanupSchedule, func() {
			if err := s.cleanup.EnqueueCleanup(ctx, s.config.RetentionDays); err != nil {
				log.Printf("[RECONCILE] Failed to enqueue cleanup: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("failed to schedule cleanup job: %w", err)
		}
	}

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.config.Schedule)
	log.Printf("[RECONCILE] Scheduler started with schedule '%s' (%s). Next run: %v",
		s.config.Schedule, CronDescription(s.config.Schedule), nextRun)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running scan to finish and stops the cron loop.
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	done := s.cron.Stop()
	<-done.Done()

	s.isRunning = false
	log.Printf("[RECONCILE] Scheduler stopped")
}

// RunNow triggers an immediate scan in the background.
func (s *ReconcileScheduler) RunNow(ctx context.Context) {
	go s.runScan(context.WithoutCancel(ctx))
}

func (s *ReconcileScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *ReconcileScheduler) IsScanning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isScanning
}

// LastResult returns the time and summary of the last completed scan.
func (s *ReconcileScheduler) LastResult() (*time.Time, *reconcile.Summary) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.lastResult
}

// NextRunTime returns when the next scan will occur.
func (s *ReconcileScheduler) NextRunTime() *time.Time {
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

func (s *ReconcileScheduler) runScan(ctx context.Context) {
	s.mu.Lock()
	if s.isScanning {
		s.mu.Unlock()
		log.Printf("[RECONCILE] Scan skipped (already scanning)")
		return
	}
	s.isScanning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isScanning = false
		s.mu.Unlock()
	}()

	scanCtx, cancel := context.WithTimeout(ctx, s.config.ScanTimeout)
	defer cancel()

	started := time.Now()
	summary, err := s.scanner.Scan(scanCtx, s.config.MinAge)
	if err != nil {
		log.Printf("[RECONCILE] Scan failed after %v: %v", time.Since(started).Round(time.Millisecond), err)
		return
	}

	s.mu.Lock()
	s.lastRun = &started
	s.lastResult = &summary
	s.mu.Unlock()
}

// ValidateCronSchedule checks that schedule is a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// CronDescription returns a human-readable description of a cron schedule.
func CronDescription(schedule string) string {
	switch schedule {
	case "* * * * *":
		return "Every minute"
	case "*/5 * * * *":
		return "Every 5 minutes"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "0 * * * *":
		return "Every hour at :00"
	case "0 3 * * *":
		return "Daily at 03:00"
	default:
		return "Custom schedule: " + schedule
	}
}

// NextRunTime calculates when schedule next fires.
func NextRunTime(schedule string) (*time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
