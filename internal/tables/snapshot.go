package tables

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/mazo/internal/storage"
)

// Snapshot is a point-in-time read of a whole table. Row positions are only
// valid until the next append or delete by anyone.
type Snapshot struct {
	Table  string
	Header Header
	Rows   [][]string
}

// Load reads table in full.
func Load(ctx context.Context, client storage.Client, table string) (*Snapshot, error) {
	rows, err := client.ReadRows(ctx, table, storage.AllRows)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return newSnapshot(table, rows)
}

// LoadMany reads several tables in one batch read. Snapshots are returned in
// the order of names.
func LoadMany(ctx context.Context, client storage.Client, names ...string) ([]*Snapshot, error) {
	results, err := client.BatchRead(ctx, names, storage.AllRows)
	if err != nil {
		return nil, fmt.Errorf("batch read: %w", err)
	}
	snaps := make([]*Snapshot, len(names))
	for i, name := range names {
		if snaps[i], err = newSnapshot(name, results[i]); err != nil {
			return nil, err
		}
	}
	return snaps, nil
}

func newSnapshot(table string, rows [][]string) (*Snapshot, error) {
	header, err := ResolveHeader(table, rows)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Table: table, Header: header, Rows: rows[1:]}, nil
}

// Len is the number of data rows.
func (s *Snapshot) Len() int { return len(s.Rows) }

// Record decodes data row i.
func (s *Snapshot) Record(i int) Record { return s.Header.Decode(s.Rows[i]) }

// Records decodes every data row.
func (s *Snapshot) Records() []Record {
	out := make([]Record, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = s.Header.Decode(row)
	}
	return out
}

// AbsoluteRow converts a data row index into the store's absolute row index.
func (s *Snapshot) AbsoluteRow(i int) int { return i + 1 }

// Find returns the index of the first data row for which match is true, or -1.
func (s *Snapshot) Find(match func(Record) bool) int {
	for i := range s.Rows {
		if match(s.Record(i)) {
			return i
		}
	}
	return -1
}

// Column returns the values of column for every data row.
func (s *Snapshot) Column(column string) []string {
	col := s.Header.Index(column)
	out := make([]string, len(s.Rows))
	if col < 0 {
		return out
	}
	for i, row := range s.Rows {
		if col < len(row) {
			out[i] = row[col]
		}
	}
	return out
}

// Append encodes records against the live header of table and appends them.
// Fields without a column are logged and dropped.
func Append(ctx context.Context, client storage.Client, table string, records ...Record) error {
	header, err := LoadHeader(ctx, client, table)
	if err != nil {
		return err
	}
	return AppendWith(ctx, client, table, header, records...)
}

// AppendWith is Append with a header the caller already holds.
func AppendWith(ctx context.Context, client storage.Client, table string, header Header, records ...Record) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([][]string, len(records))
	for i, rec := range records {
		row, dropped := header.Encode(rec)
		if len(dropped) > 0 {
			log.Printf("[STORE] %s: dropping fields without a column: %v", table, dropped)
		}
		rows[i] = row
	}
	if err := client.AppendRows(ctx, table, rows); err != nil {
		return fmt.Errorf("append %s: %w", table, err)
	}
	return nil
}
