package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mrlokans/mazo/internal/apperr"
)

// RetryConfig bounds the exponential backoff applied to failed store calls.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns the retry policy used when none is configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      4,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

type retryingClient struct {
	next Client
	cfg  RetryConfig
}

// WithRetry wraps next so that rate-limited and retryable upstream failures are
// retried with exponential backoff.
//
// Reads, header writes and cell updates are idempotent and retry on any
// retryable error. AppendRows and DeleteRow retry only on rate limiting: a
// timed out append may already have landed and a repeated delete would remove
// the wrong row.
func WithRetry(next Client, cfg RetryConfig) Client {
	return &retryingClient{next: next, cfg: cfg}
}

func (c *retryingClient) ReadRows(ctx context.Context, table string, r Range) ([][]string, error) {
	var rows [][]string
	err := c.do(ctx, OpReadRows, apperr.IsRetryable, func() error {
		var err error
		rows, err = c.next.ReadRows(ctx, table, r)
		return err
	})
	return rows, err
}

func (c *retryingClient) BatchRead(ctx context.Context, tables []string, r Range) ([][][]string, error) {
	var out [][][]string
	err := c.do(ctx, OpBatchRead, apperr.IsRetryable, func() error {
		var err error
		out, err = c.next.BatchRead(ctx, tables, r)
		return err
	})
	return out, err
}

func (c *retryingClient) AppendRows(ctx context.Context, table string, rows [][]string) error {
	return c.do(ctx, OpAppendRows, isRateLimited, func() error {
		return c.next.AppendRows(ctx, table, rows)
	})
}

func (c *retryingClient) BatchUpdate(ctx context.Context, table string, updates []CellUpdate) error {
	return c.do(ctx, OpBatchUpdate, apperr.IsRetryable, func() error {
		return c.next.BatchUpdate(ctx, table, updates)
	})
}

func (c *retryingClient) DeleteRow(ctx context.Context, table string, index int) error {
	return c.do(ctx, OpDeleteRow, isRateLimited, func() error {
		return c.next.DeleteRow(ctx, table, index)
	})
}

func (c *retryingClient) ListTables(ctx context.Context) ([]string, error) {
	var names []string
	err := c.do(ctx, OpListTables, apperr.IsRetryable, func() error {
		var err error
		names, err = c.next.ListTables(ctx)
		return err
	})
	return names, err
}

func (c *retryingClient) EnsureTables(ctx context.Context, specs ...TableSpec) ([]string, error) {
	var created []string
	err := c.do(ctx, OpEnsureTables, apperr.IsRetryable, func() error {
		names, err := c.next.EnsureTables(ctx, specs...)
		created = append(created, names...)
		return err
	})
	return created, err
}

func (c *retryingClient) do(ctx context.Context, op string, retryable func(error) bool, fn func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.cfg.InitialInterval
	exp.MaxInterval = c.cfg.MaxInterval
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0
	exp.Reset()

	var policy backoff.BackOff = exp
	if c.cfg.MaxRetries >= 0 {
		policy = backoff.WithMaxRetries(exp, uint64(c.cfg.MaxRetries))
	}

	return backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		log.Printf("[STORE] %s failed, retrying in %v: %v", op, wait, err)
	})
}

func isRateLimited(err error) bool {
	return errors.Is(err, apperr.ErrRateLimited)
}
