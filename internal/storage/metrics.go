package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mrlokans/mazo/internal/apperr"
)

var (
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mazo",
			Subsystem: "store",
			Name:      "calls_total",
			Help:      "Tabular store calls by operation, table and outcome.",
		},
		[]string{"op", "table", "outcome"},
	)

	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mazo",
			Subsystem: "store",
			Name:      "call_duration_seconds",
			Help:      "Tabular store call latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op", "table"},
	)
)

// Outcome labels.
const (
	outcomeOK          = "ok"
	outcomeRateLimited = "rate_limited"
	outcomeNotFound    = "not_found"
	outcomeError       = "error"
)

type metricsClient struct {
	next Client
}

// WithMetrics records a counter and a latency observation for every call on next.
func WithMetrics(next Client) Client {
	return &metricsClient{next: next}
}

func (c *metricsClient) ReadRows(ctx context.Context, table string, r Range) ([][]string, error) {
	defer observe(OpReadRows, table)()
	rows, err := c.next.ReadRows(ctx, table, r)
	count(OpReadRows, table, err)
	return rows, err
}

func (c *metricsClient) BatchRead(ctx context.Context, tables []string, r Range) ([][][]string, error) {
	label := strings.Join(tables, ",")
	defer observe(OpBatchRead, label)()
	out, err := c.next.BatchRead(ctx, tables, r)
	count(OpBatchRead, label, err)
	return out, err
}

func (c *metricsClient) AppendRows(ctx context.Context, table string, rows [][]string) error {
	defer observe(OpAppendRows, table)()
	err := c.next.AppendRows(ctx, table, rows)
	count(OpAppendRows, table, err)
	return err
}

func (c *metricsClient) BatchUpdate(ctx context.Context, table string, updates []CellUpdate) error {
	defer observe(OpBatchUpdate, table)()
	err := c.next.BatchUpdate(ctx, table, updates)
	count(OpBatchUpdate, table, err)
	return err
}

func (c *metricsClient) DeleteRow(ctx context.Context, table string, index int) error {
	defer observe(OpDeleteRow, table)()
	err := c.next.DeleteRow(ctx, table, index)
	count(OpDeleteRow, table, err)
	return err
}

func (c *metricsClient) ListTables(ctx context.Context) ([]string, error) {
	defer observe(OpListTables, "")()
	names, err := c.next.ListTables(ctx)
	count(OpListTables, "", err)
	return names, err
}

func (c *metricsClient) EnsureTables(ctx context.Context, specs ...TableSpec) ([]string, error) {
	defer observe(OpEnsureTables, "")()
	created, err := c.next.EnsureTables(ctx, specs...)
	count(OpEnsureTables, "", err)
	return created, err
}

func observe(op, table string) func() {
	start := time.Now()
	return func() {
		callDuration.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
	}
}

func count(op, table string, err error) {
	callsTotal.WithLabelValues(op, table, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, apperr.ErrRateLimited):
		return outcomeRateLimited
	case errors.Is(err, ErrTableNotFound):
		return outcomeNotFound
	default:
		return outcomeError
	}
}
