// Package memory implements storage.Client on in-process tables.
//
// It backs the "memory" store mode and the service tests. Failures can be
// injected per operation with FailNext to exercise retry and partial-write paths.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mrlokans/mazo/internal/storage"
)

// Client is an in-memory workspace. The zero value is not usable; use NewClient.
type Client struct {
	mu     sync.Mutex
	order  []string
	tables map[string][][]string
	faults map[string][]error
	calls  map[string]int

	// OnAppend, when set, runs after every successful append with the lock released.
	OnAppend func(table string, rows [][]string)
}

// NewClient creates an empty workspace.
func NewClient() *Client {
	return &Client{
		tables: make(map[string][][]string),
		faults: make(map[string][]error),
		calls:  make(map[string]int),
	}
}

// Seed creates or replaces table with a header and data rows.
func (c *Client) Seed(table string, header []string, rows ...[]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tables[table]; !ok {
		c.order = append(c.order, table)
	}
	data := [][]string{copyRow(header)}
	for _, row := range rows {
		data = append(data, copyRow(row))
	}
	c.tables[table] = data
}

// Rows returns a copy of every row of table, header included.
func (c *Client) Rows(table string) [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyRows(c.tables[table])
}

// FailNext makes the next call of op fail with err. Calls queue up in order.
func (c *Client) FailNext(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults[op] = append(c.faults[op], err)
}

// Calls reports how many times op was invoked, failed calls included.
func (c *Client) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

func (c *Client) ReadRows(ctx context.Context, table string, r storage.Range) ([][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enter(ctx, storage.OpReadRows); err != nil {
		return nil, err
	}
	return c.read(table, r)
}

func (c *Client) BatchRead(ctx context.Context, tables []string, r storage.Range) ([][][]string, error) {
	c.mu.Lock()
	err := c.enter(ctx, storage.OpBatchRead)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return storage.ConcurrentBatchRead(ctx, c.readLocked, tables, r)
}

func (c *Client) AppendRows(ctx context.Context, table string, rows [][]string) error {
	c.mu.Lock()
	if err := c.enter(ctx, storage.OpAppendRows); err != nil {
		c.mu.Unlock()
		return err
	}
	data, ok := c.tables[table]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("append to %s: %w", table, storage.ErrTableNotFound)
	}
	c.tables[table] = append(data, copyRows(rows)...)
	hook := c.OnAppend
	c.mu.Unlock()

	if hook != nil {
		hook(table, rows)
	}
	return nil
}

func (c *Client) BatchUpdate(ctx context.Context, table string, updates []storage.CellUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enter(ctx, storage.OpBatchUpdate); err != nil {
		return err
	}
	data, ok := c.tables[table]
	if !ok {
		return fmt.Errorf("update %s: %w", table, storage.ErrTableNotFound)
	}
	for _, u := range updates {
		if u.Row < 0 || u.Col < 0 {
			return fmt.Errorf("update %s: invalid cell (%d, %d)", table, u.Row, u.Col)
		}
		for len(data) <= u.Row {
			data = append(data, nil)
		}
		row := data[u.Row]
		for len(row) < u.Col+len(u.Values) {
			row = append(row, "")
		}
		copy(row[u.Col:], u.Values)
		data[u.Row] = row
	}
	c.tables[table] = data
	return nil
}

func (c *Client) DeleteRow(ctx context.Context, table string, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enter(ctx, storage.OpDeleteRow); err != nil {
		return err
	}
	data, ok := c.tables[table]
	if !ok {
		return fmt.Errorf("delete from %s: %w", table, storage.ErrTableNotFound)
	}
	if index < 0 || index >= len(data) {
		return fmt.Errorf("delete from %s: row %d out of range (%d rows)", table, index, len(data))
	}
	c.tables[table] = append(data[:index], data[index+1:]...)
	return nil
}

func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enter(ctx, storage.OpListTables); err != nil {
		return nil, err
	}
	return append([]string(nil), c.order...), nil
}

func (c *Client) EnsureTables(ctx context.Context, specs ...storage.TableSpec) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enter(ctx, storage.OpEnsureTables); err != nil {
		return nil, err
	}
	var created []string
	for _, spec := range storage.MissingSpecs(c.order, specs) {
		c.order = append(c.order, spec.Name)
		c.tables[spec.Name] = [][]string{copyRow(spec.Header)}
		created = append(created, spec.Name)
	}
	return created, nil
}

// enter counts the call and pops an injected fault. Callers hold c.mu.
func (c *Client) enter(ctx context.Context, op string) error {
	c.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if queue := c.faults[op]; len(queue) > 0 {
		c.faults[op] = queue[1:]
		return queue[0]
	}
	return nil
}

func (c *Client) read(table string, r storage.Range) ([][]string, error) {
	data, ok := c.tables[table]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", table, storage.ErrTableNotFound)
	}
	lo, hi := r.Clip(len(data))
	return copyRows(data[lo:hi]), nil
}

// readLocked serves the per-table reads of BatchRead without counting them as ReadRows calls.
func (c *Client) readLocked(ctx context.Context, table string, r storage.Range) ([][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.read(table, r)
}

func copyRow(row []string) []string {
	return append([]string(nil), row...)
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = copyRow(row)
	}
	return out
}
