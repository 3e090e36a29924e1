package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// AuditEventCleaner deletes audit events older than a cutoff.
type AuditEventCleaner interface {
	DeleteOldEvents(olderThan time.Time) (int64, error)
}

// IntentCleaner deletes closed write intents older than a cutoff.
type IntentCleaner interface {
	DeleteClosedBefore(t time.Time) (int64, error)
}

// CleanupTask removes audit events and closed write intents older than the
// retention period. Pending intents are never removed.
type CleanupTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for cleanup tasks.
func (t CleanupTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_history",
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

// CleanupProcessor creates a processor function for CleanupTask. Either
// cleaner may be nil.
func CleanupProcessor(events AuditEventCleaner, intents IntentCleaner) backlite.QueueProcessor[CleanupTask] {
	return func(ctx context.Context, task CleanupTask) error {
		if events == nil && intents == nil {
			return fmt.Errorf("no cleaners configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}
		cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)

		if events != nil {
			deleted, err := events.DeleteOldEvents(cutoff)
			if err != nil {
				return fmt.Errorf("cleanup audit events: %w", err)
			}
			log.Printf("[TASK] Cleaned up %d audit events older than %d days", deleted, retentionDays)
		}
		if intents != nil {
			deleted, err := intents.DeleteClosedBefore(cutoff)
			if err != nil {
				return fmt.Errorf("cleanup write intents: %w", err)
			}
			log.Printf("[TASK] Cleaned up %d closed write intents older than %d days", deleted, retentionDays)
		}
		return nil
	}
}

// NewCleanupQueue creates a backlite queue for cleanup tasks.
func NewCleanupQueue(events AuditEventCleaner, intents IntentCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupProcessor(events, intents))
}
