package tables

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mrlokans/mazo/internal/storage"
)

// ErrSchemaMissing is returned when a table has no header row.
var ErrSchemaMissing = errors.New("table has no header row")

// SchemaMismatchError reports declared columns absent from a live header.
type SchemaMismatchError struct {
	Table   string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("table %s is missing columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// Record is a row keyed by column name.
type Record map[string]string

// Header is the ordered column list read from a table's first row.
type Header []string

// ResolveHeader turns the rows returned for a header read into a Header.
func ResolveHeader(table string, rows [][]string) (Header, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%s: %w", table, ErrSchemaMissing)
	}
	h := make(Header, len(rows[0]))
	for i, name := range rows[0] {
		h[i] = strings.TrimSpace(name)
	}
	return h, nil
}

// LoadHeader reads only the header row of table.
func LoadHeader(ctx context.Context, client storage.Client, table string) (Header, error) {
	rows, err := client.ReadRows(ctx, table, storage.HeaderRange)
	if err != nil {
		return nil, err
	}
	return ResolveHeader(table, rows)
}

// Index returns the position of column, or -1.
func (h Header) Index(column string) int {
	for i, name := range h {
		if name == column {
			return i
		}
	}
	return -1
}

// Validate checks that every column declared by def is present in h.
func (h Header) Validate(def TableDef) error {
	var missing []string
	for _, col := range def.Columns {
		if h.Index(col) < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaMismatchError{Table: def.Name, Missing: missing}
	}
	return nil
}

// Encode lays rec out in header order. Columns absent from rec are written as
// empty strings. Fields of rec with no matching column are returned as dropped.
func (h Header) Encode(rec Record) (row []string, dropped []string) {
	row = make([]string, len(h))
	for i, name := range h {
		row[i] = rec[name]
	}
	for name := range rec {
		if h.Index(name) < 0 {
			dropped = append(dropped, name)
		}
	}
	sort.Strings(dropped)
	return row, dropped
}

// Decode maps row onto the header. Missing trailing cells decode as empty strings.
func (h Header) Decode(row []string) Record {
	rec := make(Record, len(h))
	for i, name := range h {
		if name == "" {
			continue
		}
		if i < len(row) {
			rec[name] = row[i]
		} else {
			rec[name] = ""
		}
	}
	return rec
}

// Update builds the cell updates that write the given fields of rec into
// absolute row. Fields with no matching column are returned as dropped.
func (h Header) Update(row int, rec Record) (updates []storage.CellUpdate, dropped []string) {
	for name, value := range rec {
		col := h.Index(name)
		if col < 0 {
			dropped = append(dropped, name)
			continue
		}
		updates = append(updates, storage.CellUpdate{Row: row, Col: col, Values: []string{value}})
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].Col < updates[j].Col })
	sort.Strings(dropped)
	return updates, dropped
}
