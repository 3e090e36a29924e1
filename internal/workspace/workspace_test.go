package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/database"
	"github.com/mrlokans/mazo/internal/database/intents"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/storage/providers/memory"
	"github.com/mrlokans/mazo/internal/tables"
)

var seedWords = []entities.MasterWord{
	{SourceText: "perro", TargetText: "dog"},
	{SourceText: "gato", TargetText: "cat"},
	{ID: "w-casa", SourceText: "casa", TargetText: "house"},
}

func newService(t *testing.T, mem *memory.Client) (*Service, *intents.Repository) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "mazo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := intents.NewRepository(db.DB)
	svc := NewService(mem, repo, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	return svc, repo
}

func configValues(mem *memory.Client) map[string]string {
	rows := mem.Rows(tables.Config)
	h := tables.Header(rows[0])
	out := make(map[string]string)
	for _, row := range rows[1:] {
		rec := h.Decode(row)
		out[rec["key"]] = rec["value"]
	}
	return out
}

func TestEnsureWorkspace_FreshWorkspace(t *testing.T) {
	mem := memory.NewClient()
	svc, repo := newService(t, mem)

	result, err := svc.EnsureWorkspace(context.Background(), "owner@example.com", seedWords)
	require.NoError(t, err)
	assert.Len(t, result.CreatedTables, len(tables.All()))
	assert.Equal(t, 3, result.SeededWords)
	assert.False(t, result.Resumed)

	names, err := mem.ListTables(context.Background())
	require.NoError(t, err)
	for _, def := range tables.All() {
		assert.Contains(t, names, def.Name)
		assert.Equal(t, def.Columns, mem.Rows(def.Name)[0])
	}

	config := configValues(mem)
	assert.Equal(t, "owner@example.com", config[KeyOwnerEmail])
	assert.Equal(t, SeedComplete, config[KeySeedStatus])
	assert.Len(t, mem.Rows(tables.MasterWords), 4)

	list, _, err := repo.List(entities.IntentStatusCompleted, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entities.IntentSeedWorkspace, list[0].Operation)
}

func TestEnsureWorkspace_IsIdempotent(t *testing.T) {
	mem := memory.NewClient()
	svc, _ := newService(t, mem)
	ctx := context.Background()

	_, err := svc.EnsureWorkspace(ctx, "owner@example.com", seedWords)
	require.NoError(t, err)
	appends, updates := mem.Calls(storage.OpAppendRows), mem.Calls(storage.OpBatchUpdate)

	result, err := svc.EnsureWorkspace(ctx, "owner@example.com", seedWords)
	require.NoError(t, err)
	assert.Empty(t, result.CreatedTables)
	assert.Zero(t, result.SeededWords)
	assert.Equal(t, appends, mem.Calls(storage.OpAppendRows))
	assert.Equal(t, updates, mem.Calls(storage.OpBatchUpdate))
	assert.Equal(t, 1, mem.Calls(storage.OpEnsureTables))
	assert.Len(t, mem.Rows(tables.MasterWords), 4)
}

func TestEnsureWorkspace_ResumesInterruptedSeeding(t *testing.T) {
	mem := memory.NewClient()
	svc, _ := newService(t, mem)
	ctx := context.Background()

	mem.FailNext(storage.OpAppendRows, nil)
	mem.FailNext(storage.OpAppendRows, apperr.Upstream(storage.OpAppendRows, errors.New("503"), true))

	_, err := svc.EnsureWorkspace(ctx, "owner@example.com", seedWords)
	var pw *apperr.PartialWriteError
	require.True(t, errors.As(err, &pw))
	assert.Equal(t, "seed_catalog", pw.Step)
	assert.Equal(t, SeedPending, configValues(mem)[KeySeedStatus])
	assert.Len(t, mem.Rows(tables.MasterWords), 1)

	result, err := svc.EnsureWorkspace(ctx, "owner@example.com", seedWords)
	require.NoError(t, err)
	assert.True(t, result.Resumed)
	assert.Equal(t, 3, result.SeededWords)
	assert.Equal(t, SeedComplete, configValues(mem)[KeySeedStatus])
	assert.Len(t, mem.Rows(tables.Config), 4, "owner rows are not written twice")
}

func TestRepair_ResumesSeeding(t *testing.T) {
	mem := memory.NewClient()
	svc, repo := newService(t, mem)
	ctx := context.Background()

	mem.FailNext(storage.OpAppendRows, nil)
	mem.FailNext(storage.OpAppendRows, nil)
	mem.FailNext(storage.OpBatchUpdate, apperr.RateLimited(storage.OpBatchUpdate, nil))

	_, err := svc.EnsureWorkspace(ctx, "owner@example.com", seedWords)
	var pw *apperr.PartialWriteError
	require.True(t, errors.As(err, &pw))
	assert.Equal(t, "mark_seed_complete", pw.Step)

	intent, err := repo.Get(pw.IntentID)
	require.NoError(t, err)
	assert.Equal(t, StepCatalogSeeded, intent.Step)

	outcome, err := svc.Repair(ctx, intent)
	require.NoError(t, err)
	assert.Equal(t, entities.IntentStatusReconciled, outcome)
	assert.Equal(t, SeedComplete, configValues(mem)[KeySeedStatus])
	assert.Len(t, mem.Rows(tables.MasterWords), 4)
}

func TestEnsureWorkspace_HandMadeConfigCountsAsSeeded(t *testing.T) {
	mem := memory.NewClient()
	def, _ := tables.Lookup(tables.Config)
	mem.Seed(tables.Config, def.Columns, []string{"ownerEmail", "someone@example.com", ""})
	svc, _ := newService(t, mem)

	result, err := svc.EnsureWorkspace(context.Background(), "owner@example.com", seedWords)
	require.NoError(t, err)
	assert.Len(t, result.CreatedTables, len(tables.All())-1)
	assert.Zero(t, result.SeededWords)
	assert.Len(t, mem.Rows(tables.MasterWords), 1)
}

func TestEnsureWorkspace_RestoresMissingHeaders(t *testing.T) {
	mem := memory.NewClient()
	for _, def := range tables.All() {
		mem.Seed(def.Name, nil)
	}
	svc, _ := newService(t, mem)
	ctx := context.Background()

	result, err := svc.EnsureWorkspace(ctx, "owner@example.com", seedWords)
	require.NoError(t, err)
	assert.Empty(t, result.CreatedTables)
	assert.Len(t, result.RestoredHeaders, len(tables.All()))
	assert.Equal(t, 3, result.SeededWords)

	for _, def := range tables.All() {
		assert.Equal(t, def.Columns, mem.Rows(def.Name)[0], def.Name)
	}
	assert.Equal(t, SeedComplete, configValues(mem)[KeySeedStatus])
	require.NoError(t, svc.ValidateSchemas(ctx))

	result, err = svc.EnsureWorkspace(ctx, "owner@example.com", seedWords)
	require.NoError(t, err)
	assert.Empty(t, result.RestoredHeaders)
	assert.Zero(t, result.SeededWords)
}

func TestEnsureWorkspace_HeaderWriteFailureIsPartial(t *testing.T) {
	mem := memory.NewClient()
	def, _ := tables.Lookup(tables.Config)
	mem.Seed(tables.Config, def.Columns)
	mem.Seed(tables.MasterWords, nil)
	mem.Seed(tables.Users, nil)
	svc, _ := newService(t, mem)
	ctx := context.Background()

	mem.FailNext(storage.OpBatchUpdate, nil)
	mem.FailNext(storage.OpBatchUpdate, apperr.Upstream(storage.OpBatchUpdate, errors.New("503"), true))
	_, err := svc.EnsureWorkspace(ctx, "owner@example.com", seedWords)
	var pw *apperr.PartialWriteError
	require.True(t, errors.As(err, &pw))
	assert.Equal(t, "write_headers", pw.Step)
	assert.Len(t, pw.IDs, 1)

	result, err := svc.EnsureWorkspace(ctx, "owner@example.com", seedWords)
	require.NoError(t, err)
	assert.Len(t, result.RestoredHeaders, 1)
	assert.Equal(t, 3, result.SeededWords)
	require.NoError(t, svc.ValidateSchemas(ctx))
}

func TestEnsureWorkspace_Validation(t *testing.T) {
	svc, _ := newService(t, memory.NewClient())
	ctx := context.Background()

	_, err := svc.EnsureWorkspace(ctx, "not-an-email", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.EnsureWorkspace(ctx, "owner@example.com", []entities.MasterWord{{SourceText: "perro"}})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "targetText", verr.Field)
}

func TestValidateSchemas(t *testing.T) {
	mem := memory.NewClient()
	svc, _ := newService(t, mem)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ValidateSchemas(ctx), storage.ErrTableNotFound)

	_, err := svc.EnsureWorkspace(ctx, "owner@example.com", nil)
	require.NoError(t, err)
	require.NoError(t, svc.ValidateSchemas(ctx))

	mem.Seed(tables.Decks, []string{"userId", "id", "createdAt"})
	mem.Seed(tables.Leads, nil)
	err = svc.ValidateSchemas(ctx)

	var mismatch *tables.SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, tables.Decks, mismatch.Table)
	assert.Equal(t, []string{"size"}, mismatch.Missing)
	assert.ErrorIs(t, err, tables.ErrSchemaMissing)
}

func TestLoadSeedFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.csv")
	require.NoError(t, os.WriteFile(path, []byte("targetText,sourceText\ndog,perro\n,gato\nhouse, casa\n"), 0644))

	words, err := LoadSeedFile(path)
	require.NoError(t, err)
	assert.Equal(t, []entities.MasterWord{
		{SourceText: "perro", TargetText: "dog"},
		{SourceText: "casa", TargetText: "house"},
	}, words)
}

func TestLoadSeedFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"id", "sourceText", "targetText"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"w1", "libro", "book"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	words, err := LoadSeedFile(path)
	require.NoError(t, err)
	assert.Equal(t, []entities.MasterWord{{ID: "w1", SourceText: "libro", TargetText: "book"}}, words)
}

func TestLoadSeedFile_Unsupported(t *testing.T) {
	_, err := LoadSeedFile("words.json")
	assert.ErrorIs(t, err, ErrUnsupportedSeedFile)
}
