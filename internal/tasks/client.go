// Package tasks runs background work on a backlite queue: delayed repairs of
// partial writes, full reconciliation scans and history cleanup.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client owns the backlite queue and its SQLite database.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	config Config

	mu      sync.RWMutex
	started bool
}

// QueueDBPath returns the path of the queue database kept next to the
// intent database: data/mazo.db becomes data/mazo-tasks.db.
func QueueDBPath(intentDBPath string) string {
	ext := filepath.Ext(intentDBPath)
	return strings.TrimSuffix(intentDBPath, ext) + "-tasks" + ext
}

// NewClient opens the queue database next to intentDBPath and installs the
// backlite schema. Queues are registered afterwards with Register.
func NewClient(intentDBPath string, cfg Config) (*Client, error) {
	db, err := sql.Open("sqlite3", QueueDBPath(intentDBPath)+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          &stdLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}
	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}

	return &Client{client: client, db: db, config: cfg}, nil
}

// Register adds queues to the client. Must be called before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.client.Register(q)
	}
}

// Start runs the workers until ctx is cancelled or Stop is called.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	log.Printf("[TASK] Queue started with %d workers", c.config.Workers)
	c.client.Start(ctx)
}

// Stop waits for running tasks until ctx expires. It reports whether every
// worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()
	if !started {
		return true
	}

	ok := c.client.Stop(ctx)
	if ok {
		log.Println("[TASK] Queue stopped gracefully")
	} else {
		log.Println("[TASK] Queue stopped with timeout, some tasks may not have completed")
	}
	return ok
}

// Close releases the queue database. Call after Stop.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Add starts an operation to enqueue one or more tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.client.Add(tasks...)
}

// Status returns the status of a task by ID.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.client.Status(ctx, taskID)
}

// ScheduleIntent enqueues a repair of the pending write intent intentID,
// delayed by Config.RepairDelay.
func (c *Client) ScheduleIntent(ctx context.Context, intentID string) error {
	op := c.client.Add(ReconcileIntentTask{IntentID: intentID}).Ctx(ctx)
	if c.config.RepairDelay > 0 {
		op = op.Wait(c.config.RepairDelay)
	}
	if _, err := op.Save(); err != nil {
		return fmt.Errorf("schedule repair of intent %s: %w", intentID, err)
	}
	log.Printf("[TASK] Scheduled repair of intent %s", intentID)
	return nil
}

// EnqueueReconcileAll schedules a full scan of intents older than minAge.
func (c *Client) EnqueueReconcileAll(ctx context.Context, minAge time.Duration) (string, error) {
	ids, err := c.client.Add(ReconcileAllTask{MinAgeSeconds: int(minAge / time.Second)}).Ctx(ctx).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue reconcile scan: %w", err)
	}
	return ids[0], nil
}

// EnqueueCleanup schedules a CleanupTask.
func (c *Client) EnqueueCleanup(ctx context.Context, retentionDays int) error {
	if _, err := c.client.Add(CleanupTask{RetentionDays: retentionDays}).Ctx(ctx).Save(); err != nil {
		return fmt.Errorf("enqueue cleanup: %w", err)
	}
	return nil
}

// stdLogger routes backlite logs through the standard logger.
type stdLogger struct{}

func (l *stdLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (l *stdLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
