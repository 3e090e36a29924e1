package storage

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Operation names, used for metrics labels, log lines and fault injection.
const (
	OpReadRows     = "read_rows"
	OpBatchRead    = "batch_read"
	OpAppendRows   = "append_rows"
	OpBatchUpdate  = "batch_update"
	OpDeleteRow    = "delete_row"
	OpListTables   = "list_tables"
	OpEnsureTables = "ensure_tables"
)

// ErrTableNotFound is returned when an operation targets a table that does not exist.
var ErrTableNotFound = errors.New("table not found")

// Range addresses a contiguous block of absolute rows in a table.
// Row 0 is the header row. End is exclusive; 0 means "to the last row".
type Range struct {
	Start int
	End   int
}

var (
	// HeaderRange selects only the header row.
	HeaderRange = Range{Start: 0, End: 1}
	// AllRows selects the header row and every data row.
	AllRows = Range{Start: 0}
)

// Clip returns the [lo, hi) slice bounds of r within a table of n rows.
func (r Range) Clip(n int) (int, int) {
	lo, hi := r.Start, r.End
	if lo < 0 {
		lo = 0
	}
	if hi <= 0 || hi > n {
		hi = n
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// CellUpdate overwrites consecutive cells of one row, starting at column Col
// (0-based) of absolute row Row.
type CellUpdate struct {
	Row    int
	Col    int
	Values []string
}

// TableSpec describes a table to create: its name and header row.
type TableSpec struct {
	Name   string
	Header []string
}

// Client is the narrow interface the tabular store must satisfy.
//
// No operation is atomic with respect to any other: there are no transactions,
// no row locks and no compare-and-swap. AppendRows is at-least-once and makes
// no ordering promise against concurrent appends; BatchUpdate applies each
// CellUpdate independently; DeleteRow shifts every following row up by one, so
// the index must come from a read taken shortly before.
type Client interface {
	// ReadRows returns the rows of table within r. An empty table yields an
	// empty slice, never an error. Rows may be shorter than the header.
	ReadRows(ctx context.Context, table string, r Range) ([][]string, error)

	// BatchRead reads the same range from several tables, in one round trip
	// where the backend supports it. Results are in the order of tables.
	BatchRead(ctx context.Context, tables []string, r Range) ([][][]string, error)

	// AppendRows adds rows after all existing rows of table.
	AppendRows(ctx context.Context, table string, rows [][]string) error

	// BatchUpdate overwrites cell ranges of table.
	BatchUpdate(ctx context.Context, table string, updates []CellUpdate) error

	// DeleteRow removes the row at the absolute index.
	DeleteRow(ctx context.Context, table string, index int) error

	// ListTables returns the names of the tables in the workspace.
	ListTables(ctx context.Context) ([]string, error)

	// EnsureTables creates every missing table of specs in one structural
	// batch and writes its header row. Existing tables are left untouched.
	// It returns the names of the tables it created.
	EnsureTables(ctx context.Context, specs ...TableSpec) ([]string, error)
}

// ReadFunc reads a range of one table.
type ReadFunc func(ctx context.Context, table string, r Range) ([][]string, error)

// ConcurrentBatchRead implements Client.BatchRead for backends without a
// multi-range read by issuing one read per table concurrently.
func ConcurrentBatchRead(ctx context.Context, read ReadFunc, tables []string, r Range) ([][][]string, error) {
	results := make([][][]string, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	for i, table := range tables {
		g.Go(func() error {
			rows, err := read(gctx, table, r)
			if err != nil {
				return fmt.Errorf("read %s: %w", table, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MissingSpecs returns the specs whose table is not in existing.
func MissingSpecs(existing []string, specs []TableSpec) []TableSpec {
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}
	var missing []TableSpec
	for _, spec := range specs {
		if !have[spec.Name] {
			missing = append(missing, spec)
		}
	}
	return missing
}

// ColumnName converts a 0-based column index into spreadsheet letters (0 -> A, 26 -> AA).
func ColumnName(col int) string {
	name := ""
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		name = string(rune('A'+(n-1)%26)) + name
	}
	return name
}
