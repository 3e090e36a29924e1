package storage

import (
	"context"
	"time"
)

type timeoutClient struct {
	next    Client
	timeout time.Duration
}

// WithTimeout bounds every call on next by d. A non-positive d returns next unchanged.
func WithTimeout(next Client, d time.Duration) Client {
	if d <= 0 {
		return next
	}
	return &timeoutClient{next: next, timeout: d}
}

func (c *timeoutClient) ReadRows(ctx context.Context, table string, r Range) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.ReadRows(ctx, table, r)
}

func (c *timeoutClient) BatchRead(ctx context.Context, tables []string, r Range) ([][][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.BatchRead(ctx, tables, r)
}

func (c *timeoutClient) AppendRows(ctx context.Context, table string, rows [][]string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.AppendRows(ctx, table, rows)
}

func (c *timeoutClient) BatchUpdate(ctx context.Context, table string, updates []CellUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.BatchUpdate(ctx, table, updates)
}

func (c *timeoutClient) DeleteRow(ctx context.Context, table string, index int) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.DeleteRow(ctx, table, index)
}

func (c *timeoutClient) ListTables(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.ListTables(ctx)
}

func (c *timeoutClient) EnsureTables(ctx context.Context, specs ...TableSpec) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.EnsureTables(ctx, specs...)
}
