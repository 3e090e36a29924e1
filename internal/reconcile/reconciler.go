// Package reconcile completes or closes write intents left pending by
// multi-step writes that failed part way.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/mazo/internal/audit"
	"github.com/mrlokans/mazo/internal/entities"
)

// DefaultMaxAttempts is the number of failed repairs after which an intent is abandoned.
const DefaultMaxAttempts = 10

// IntentStore is the part of the write-intent log the reconciler needs.
type IntentStore interface {
	Get(id string) (*entities.WriteIntent, error)
	ListOpen(olderThan time.Time) ([]entities.WriteIntent, error)
	Resolve(id string, status entities.IntentStatus, cause error) error
	RecordAttempt(id string, cause error) error
}

// Repairer completes one kind of intent. It returns the status to close the
// intent with, or an empty status and an error when the attempt should be
// retried later.
type Repairer interface {
	Repair(ctx context.Context, intent *entities.WriteIntent) (entities.IntentStatus, error)
}

// Outcome describes what happened to one intent.
type Outcome struct {
	IntentID  string                   `json:"intentId"`
	Operation entities.IntentOperation `json:"operation"`
	Status    entities.IntentStatus    `json:"status"`
	Error     string                   `json:"error,omitempty"`
}

// Summary aggregates the outcomes of a scan.
type Summary struct {
	Scanned  int       `json:"scanned"`
	Resolved int       `json:"resolved"`
	Retrying int       `json:"retrying"`
	Outcomes []Outcome `json:"outcomes"`
}

type Reconciler struct {
	intents     IntentStore
	audit       *audit.Service
	maxAttempts int
	now         func() time.Time

	mu        sync.RWMutex
	repairers map[entities.IntentOperation]Repairer

	// scanMu serializes scans and single-intent repairs so one intent is
	// never repaired twice at the same time.
	scanMu sync.Mutex
}

func New(intents IntentStore, auditSvc *audit.Service, maxAttempts int) *Reconciler {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Reconciler{
		intents:     intents,
		audit:       auditSvc,
		maxAttempts: maxAttempts,
		now:         time.Now,
		repairers:   make(map[entities.IntentOperation]Repairer),
	}
}

// Register sets the repairer for intents of op.
func (r *Reconciler) Register(op entities.IntentOperation, repairer Repairer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repairers[op] = repairer
}

// Scan repairs every pending intent untouched for at least minAge. Intents
// younger than that may still belong to a request in flight.
func (r *Reconciler) Scan(ctx context.Context, minAge time.Duration) (Summary, error) {
	r.scanMu.Lock()
	defer r.scanMu.Unlock()

	open, err := r.intents.ListOpen(r.now().Add(-minAge))
	if err != nil {
		return Summary{}, fmt.Errorf("list open intents: %w", err)
	}

	summary := Summary{Scanned: len(open), Outcomes: make([]Outcome, 0, len(open))}
	for i := range open {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outcome := r.reconcile(ctx, &open[i])
		if outcome.Status == entities.IntentStatusPending {
			summary.Retrying++
		} else {
			summary.Resolved++
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	if summary.Scanned > 0 {
		log.Printf("[RECONCILE] Scanned %d intents: %d resolved, %d retrying", summary.Scanned, summary.Resolved, summary.Retrying)
	}
	return summary, nil
}

// ReconcileIntent repairs a single intent regardless of its age. Closed
// intents are returned unchanged.
func (r *Reconciler) ReconcileIntent(ctx context.Context, id string) (Outcome, error) {
	r.scanMu.Lock()
	defer r.scanMu.Unlock()

	intent, err := r.intents.Get(id)
	if err != nil {
		return Outcome{}, err
	}
	if !intent.Open() {
		return Outcome{IntentID: intent.ID, Operation: intent.Operation, Status: intent.Status}, nil
	}
	return r.reconcile(ctx, intent), nil
}

func (r *Reconciler) reconcile(ctx context.Context, intent *entities.WriteIntent) Outcome {
	outcome := Outcome{IntentID: intent.ID, Operation: intent.Operation}

	r.mu.RLock()
	repairer, ok := r.repairers[intent.Operation]
	r.mu.RUnlock()

	var status entities.IntentStatus
	var err error
	if !ok {
		status, err = entities.IntentStatusAbandoned, fmt.Errorf("no repairer for operation %s", intent.Operation)
	} else {
		status, err = repairer.Repair(ctx, intent)
	}

	if status == "" && intent.Attempts+1 >= r.maxAttempts {
		status = entities.IntentStatusAbandoned
		err = fmt.Errorf("giving up after %d attempts: %w", intent.Attempts+1, err)
	}

	if status == "" {
		if errors.Is(err, context.Canceled) {
			outcome.Status, outcome.Error = entities.IntentStatusPending, err.Error()
			return outcome
		}
		if recErr := r.intents.RecordAttempt(intent.ID, err); recErr != nil {
			log.Printf("[RECONCILE] Failed to record attempt on intent %s: %v", intent.ID, recErr)
		}
		log.Printf("[RECONCILE] Intent %s (%s) still pending: %v", intent.ID, intent.Operation, err)
		r.audit.LogReconcile(intent, entities.IntentStatusPending, err)
		outcome.Status, outcome.Error = entities.IntentStatusPending, errorText(err)
		return outcome
	}

	if resErr := r.intents.Resolve(intent.ID, status, err); resErr != nil {
		log.Printf("[RECONCILE] Failed to close intent %s as %s: %v", intent.ID, status, resErr)
		outcome.Status, outcome.Error = entities.IntentStatusPending, resErr.Error()
		return outcome
	}
	if err != nil {
		log.Printf("[RECONCILE] Intent %s (%s) closed as %s: %v", intent.ID, intent.Operation, status, err)
	} else {
		log.Printf("[RECONCILE] Intent %s (%s) closed as %s", intent.ID, intent.Operation, status)
	}
	r.audit.LogReconcile(intent, status, err)
	outcome.Status, outcome.Error = status, errorText(err)
	return outcome
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
