package tables

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/storage/providers/memory"
)

func TestResolveHeader(t *testing.T) {
	h, err := ResolveHeader(Decks, [][]string{{"id", " userId ", "createdAt"}})
	require.NoError(t, err)
	assert.Equal(t, Header{"id", "userId", "createdAt"}, h)

	_, err = ResolveHeader(Decks, nil)
	assert.ErrorIs(t, err, ErrSchemaMissing)

	_, err = ResolveHeader(Decks, [][]string{{}})
	assert.ErrorIs(t, err, ErrSchemaMissing)
}

func TestEncode_FollowsLiveHeaderOrder(t *testing.T) {
	h := Header{"size", "id", "extra", "userId"}
	row, dropped := h.Encode(Record{"id": "Mazo-0-abc", "userId": "u1", "size": "10", "createdAt": "2026-01-01T00:00:00Z"})

	assert.Equal(t, []string{"10", "Mazo-0-abc", "", "u1"}, row)
	assert.Equal(t, []string{"createdAt"}, dropped)
}

func TestDecode_ToleratesShortRows(t *testing.T) {
	h := Header{"userId", "wordId", "status", "easeFactor"}
	rec := h.Decode([]string{"u1", "w1"})

	assert.Equal(t, "u1", rec["userId"])
	assert.Equal(t, "w1", rec["wordId"])
	assert.Equal(t, "", rec["status"])
	assert.Contains(t, rec, "easeFactor")
}

func TestValidate_NamesMissingColumns(t *testing.T) {
	def, ok := Lookup(Decks)
	require.True(t, ok)

	assert.NoError(t, Header{"createdAt", "id", "size", "userId", "notes"}.Validate(def))

	err := Header{"id", "userId"}.Validate(def)
	var mismatch *SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"createdAt", "size"}, mismatch.Missing)
}

func TestUpdate_BuildsCellUpdates(t *testing.T) {
	h := Header{"userId", "wordId", "status"}
	updates, dropped := h.Update(4, Record{"status": "Learning", "bogus": "x"})

	assert.Equal(t, []storage.CellUpdate{{Row: 4, Col: 2, Values: []string{"Learning"}}}, updates)
	assert.Equal(t, []string{"bogus"}, dropped)
}

func TestRegistry(t *testing.T) {
	all := All()
	require.Len(t, all, 10)
	assert.Equal(t, Config, all[0].Name)

	specs := Specs()
	require.Len(t, specs, len(all))
	for i, def := range all {
		assert.Equal(t, def.Name, specs[i].Name)
		assert.Equal(t, def.Columns, specs[i].Header)
	}

	_, ok := Lookup("Highlights")
	assert.False(t, ok)
}

func TestSnapshot(t *testing.T) {
	mem := memory.NewClient()
	mem.Seed(Cards, []string{"id", "front"}, []string{"c1", "hola"}, []string{"c2"})
	mem.Seed(Leads, []string{"phone", "name"})
	ctx := context.Background()

	snap, err := Load(ctx, mem, Cards)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, 1, snap.Find(func(r Record) bool { return r["id"] == "c2" }))
	assert.Equal(t, 2, snap.AbsoluteRow(1))
	assert.Equal(t, []string{"hola", ""}, snap.Column("front"))
	assert.Equal(t, []string{"", ""}, snap.Column("missing"))

	snaps, err := LoadMany(ctx, mem, Leads, Cards)
	require.NoError(t, err)
	assert.Equal(t, 0, snaps[0].Len())
	assert.Equal(t, 2, snaps[1].Len())
}

func TestAppend_UsesLiveHeader(t *testing.T) {
	mem := memory.NewClient()
	mem.Seed(Newsletter, []string{"subscribedAt", "email"})

	err := Append(context.Background(), mem, Newsletter, Record{"email": "a@example.com", "subscribedAt": "2026-01-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-01T00:00:00Z", "a@example.com"}, mem.Rows(Newsletter)[1])
}

func TestLoad_EmptyTableIsSchemaMissing(t *testing.T) {
	mem := memory.NewClient()
	mem.Seed(Users, nil)

	_, err := Load(context.Background(), mem, Users)
	assert.ErrorIs(t, err, ErrSchemaMissing)
}
