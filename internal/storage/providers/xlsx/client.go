// Package xlsx implements storage.Client on a local Excel workbook, one sheet per table.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/mazo/internal/storage"
)

const defaultSheet = "Sheet1"

// Client stores tables as sheets of the workbook at Path. The workbook is
// opened and closed around every call so no file handle outlives a call.
type Client struct {
	path string
	mu   sync.Mutex
}

// NewClient creates a client for the workbook at path. The file is created on
// the first EnsureTables call if it does not exist.
func NewClient(path string) *Client {
	return &Client{path: path}
}

func (c *Client) ReadRows(ctx context.Context, table string, r storage.Range) ([][]string, error) {
	var out [][]string
	err := c.withFile(ctx, false, func(f *excelize.File) error {
		rows, err := readSheet(f, table)
		if err != nil {
			return err
		}
		lo, hi := r.Clip(len(rows))
		out = rows[lo:hi]
		return nil
	})
	return out, err
}

func (c *Client) BatchRead(ctx context.Context, tables []string, r storage.Range) ([][][]string, error) {
	out := make([][][]string, len(tables))
	err := c.withFile(ctx, false, func(f *excelize.File) error {
		for i, table := range tables {
			rows, err := readSheet(f, table)
			if err != nil {
				return err
			}
			lo, hi := r.Clip(len(rows))
			out[i] = rows[lo:hi]
		}
		return nil
	})
	return out, err
}

func (c *Client) AppendRows(ctx context.Context, table string, rows [][]string) error {
	return c.withFile(ctx, true, func(f *excelize.File) error {
		existing, err := readSheet(f, table)
		if err != nil {
			return err
		}
		next := len(existing)
		for i, row := range rows {
			if err := writeRow(f, table, next+i, 0, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Client) BatchUpdate(ctx context.Context, table string, updates []storage.CellUpdate) error {
	return c.withFile(ctx, true, func(f *excelize.File) error {
		if !slices.Contains(f.GetSheetList(), table) {
			return fmt.Errorf("update %s: %w", table, storage.ErrTableNotFound)
		}
		for _, u := range updates {
			if err := writeRow(f, table, u.Row, u.Col, u.Values); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *Client) DeleteRow(ctx context.Context, table string, index int) error {
	return c.withFile(ctx, true, func(f *excelize.File) error {
		rows, err := readSheet(f, table)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(rows) {
			return fmt.Errorf("delete from %s: row %d out of range (%d rows)", table, index, len(rows))
		}
		return f.RemoveRow(table, index+1)
	})
}

func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	var names []string
	err := c.withFile(ctx, false, func(f *excelize.File) error {
		names = f.GetSheetList()
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return names, err
}

func (c *Client) EnsureTables(ctx context.Context, specs ...storage.TableSpec) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, fresh, err := c.openOrCreate()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var created []string
	for _, spec := range storage.MissingSpecs(f.GetSheetList(), specs) {
		if _, err := f.NewSheet(spec.Name); err != nil {
			return created, fmt.Errorf("create sheet %s: %w", spec.Name, err)
		}
		if err := writeRow(f, spec.Name, 0, 0, spec.Header); err != nil {
			return created, err
		}
		created = append(created, spec.Name)
	}
	if fresh && len(created) > 0 && !slices.Contains(created, defaultSheet) {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return created, fmt.Errorf("remove default sheet: %w", err)
		}
	}
	if len(created) == 0 && !fresh {
		return nil, nil
	}
	if err := f.SaveAs(c.path); err != nil {
		return created, fmt.Errorf("save workbook: %w", err)
	}
	return created, nil
}

func (c *Client) withFile(ctx context.Context, write bool, fn func(f *excelize.File) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := excelize.OpenFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("open workbook %s: %w", c.path, err)
		}
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return err
	}
	if write {
		if err := f.Save(); err != nil {
			return fmt.Errorf("save workbook: %w", err)
		}
	}
	return nil
}

func (c *Client) openOrCreate() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(c.path)
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("open workbook: %w", err)
	}
	return excelize.NewFile(), true, nil
}

func readSheet(f *excelize.File, table string) ([][]string, error) {
	if !slices.Contains(f.GetSheetList(), table) {
		return nil, fmt.Errorf("read %s: %w", table, storage.ErrTableNotFound)
	}
	rows, err := f.GetRows(table)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return rows, nil
}

// writeRow writes values starting at the 0-based (row, col) cell.
func writeRow(f *excelize.File, table string, row, col int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(table, cell, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", table, cell, err)
	}
	return nil
}
