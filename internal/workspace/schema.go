package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/tables"
)

// ValidateSchemas checks the live header of every declared table against the
// registry in one batch read. Missing tables, empty headers and missing
// columns are all reported together.
func (s *Service) ValidateSchemas(ctx context.Context) error {
	existing, err := s.store.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}

	var errs []error
	var present []tables.TableDef
	for _, def := range tables.All() {
		if !slices.Contains(existing, def.Name) {
			errs = append(errs, fmt.Errorf("%s: %w", def.Name, storage.ErrTableNotFound))
			continue
		}
		present = append(present, def)
	}
	if len(present) == 0 {
		return errors.Join(errs...)
	}

	names := make([]string, len(present))
	for i, def := range present {
		names[i] = def.Name
	}
	headers, err := s.store.BatchRead(ctx, names, storage.HeaderRange)
	if err != nil {
		return fmt.Errorf("read headers: %w", err)
	}
	for i, def := range present {
		h, err := tables.ResolveHeader(def.Name, headers[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := h.Validate(def); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// restoreHeaders writes the declared header row into every existing table
// whose first row is blank. This happens when a table was created but the
// header write that follows it failed. It returns the tables it repaired.
func (s *Service) restoreHeaders(ctx context.Context, existing []string) ([]string, error) {
	var present []tables.TableDef
	for _, def := range tables.All() {
		if slices.Contains(existing, def.Name) {
			present = append(present, def)
		}
	}
	if len(present) == 0 {
		return nil, nil
	}

	names := make([]string, len(present))
	for i, def := range present {
		names[i] = def.Name
	}
	headers, err := s.store.BatchRead(ctx, names, storage.HeaderRange)
	if err != nil {
		return nil, fmt.Errorf("read headers: %w", err)
	}

	var restored []string
	for i, def := range present {
		if len(headers[i]) > 0 && !blankRow(headers[i][0]) {
			continue
		}
		update := storage.CellUpdate{Row: 0, Col: 0, Values: slices.Clone(def.Columns)}
		if err := s.store.BatchUpdate(ctx, def.Name, []storage.CellUpdate{update}); err != nil {
			return restored, fmt.Errorf("write header of %s: %w", def.Name, err)
		}
		restored = append(restored, def.Name)
	}
	return restored, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
