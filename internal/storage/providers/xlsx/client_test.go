package xlsx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mazo/internal/storage"
)

func newWorkbook(t *testing.T) *Client {
	t.Helper()
	c := NewClient(filepath.Join(t.TempDir(), "workspace.xlsx"))
	_, err := c.EnsureTables(context.Background(),
		storage.TableSpec{Name: "Users", Header: []string{"id", "email", "name"}},
		storage.TableSpec{Name: "Cards", Header: []string{"id", "front"}},
	)
	require.NoError(t, err)
	return c
}

func TestListTables_MissingFile(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "absent.xlsx"))
	names, err := c.ListTables(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEnsureTables_CreatesWorkbook(t *testing.T) {
	c := newWorkbook(t)
	ctx := context.Background()

	names, err := c.ListTables(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Users", "Cards"}, names)

	header, err := c.ReadRows(ctx, "Users", storage.HeaderRange)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "email", "name"}}, header)

	created, err := c.EnsureTables(ctx, storage.TableSpec{Name: "Users", Header: []string{"id"}})
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestAppendAndUpdate(t *testing.T) {
	c := newWorkbook(t)
	ctx := context.Background()

	require.NoError(t, c.AppendRows(ctx, "Users", [][]string{
		{"u1", "a@example.com", "Ana"},
		{"u2", "b@example.com"},
	}))
	require.NoError(t, c.BatchUpdate(ctx, "Users", []storage.CellUpdate{{Row: 2, Col: 2, Values: []string{"Ben"}}}))

	rows, err := c.ReadRows(ctx, "Users", storage.Range{Start: 1})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"u1", "a@example.com", "Ana"},
		{"u2", "b@example.com", "Ben"},
	}, rows)
}

func TestDeleteRow(t *testing.T) {
	c := newWorkbook(t)
	ctx := context.Background()
	require.NoError(t, c.AppendRows(ctx, "Cards", [][]string{{"c1", "hola"}, {"c2", "adiós"}, {"c3", "gracias"}}))

	require.NoError(t, c.DeleteRow(ctx, "Cards", 2))

	rows, err := c.ReadRows(ctx, "Cards", storage.Range{Start: 1})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"c1", "hola"}, {"c3", "gracias"}}, rows)
	assert.Error(t, c.DeleteRow(ctx, "Cards", 9))
}

func TestBatchRead_MissingTable(t *testing.T) {
	c := newWorkbook(t)
	_, err := c.BatchRead(context.Background(), []string{"Users", "Decks"}, storage.AllRows)
	assert.ErrorIs(t, err, storage.ErrTableNotFound)
}
