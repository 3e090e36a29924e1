package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/reconcile"
)

// IntentReconciler repairs pending write intents.
type IntentReconciler interface {
	ReconcileIntent(ctx context.Context, id string) (reconcile.Outcome, error)
	Scan(ctx context.Context, minAge time.Duration) (reconcile.Summary, error)
}

// ReconcileIntentTask repairs one pending write intent. It is scheduled right
// after a multi-step write fails part way.
type ReconcileIntentTask struct {
	IntentID string `json:"intent_id"`
}

func (t ReconcileIntentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reconcile_intent",
		MaxAttempts: 5,
		Backoff:     time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReconcileIntentProcessor returns an error while the intent stays pending so
// that backlite retries it with backoff. Once the task runs out of attempts the
// periodic scan takes over.
func ReconcileIntentProcessor(r IntentReconciler) backlite.QueueProcessor[ReconcileIntentTask] {
	return func(ctx context.Context, task ReconcileIntentTask) error {
		if r == nil {
			return fmt.Errorf("reconciler not configured")
		}
		outcome, err := r.ReconcileIntent(ctx, task.IntentID)
		if err != nil {
			return fmt.Errorf("reconcile intent %s: %w", task.IntentID, err)
		}
		if outcome.Status == entities.IntentStatusPending {
			return fmt.Errorf("intent %s still pending: %s", task.IntentID, outcome.Error)
		}
		log.Printf("[TASK] Intent %s closed as %s", task.IntentID, outcome.Status)
		return nil
	}
}

func NewReconcileIntentQueue(r IntentReconciler) backlite.Queue {
	return backlite.NewQueue(ReconcileIntentProcessor(r))
}

// ReconcileAllTask scans for every pending intent older than MinAgeSeconds.
type ReconcileAllTask struct {
	MinAgeSeconds int `json:"min_age_seconds"`
}

func (t ReconcileAllTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reconcile_all",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func ReconcileAllProcessor(r IntentReconciler) backlite.QueueProcessor[ReconcileAllTask] {
	return func(ctx context.Context, task ReconcileAllTask) error {
		if r == nil {
			return fmt.Errorf("reconciler not configured")
		}
		summary, err := r.Scan(ctx, time.Duration(task.MinAgeSeconds)*time.Second)
		if err != nil {
			return fmt.Errorf("scan intents: %w", err)
		}
		log.Printf("[TASK] Reconciled %d of %d pending intents, %d still pending", summary.Resolved, summary.Scanned, summary.Retrying)
		return nil
	}
}

func NewReconcileAllQueue(r IntentReconciler) backlite.Queue {
	return backlite.NewQueue(ReconcileAllProcessor(r))
}
