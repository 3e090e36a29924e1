package leads

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/storage/providers/memory"
	"github.com/mrlokans/mazo/internal/tables"
)

func newService(t *testing.T) (*Service, *memory.Client) {
	t.Helper()
	mem := memory.NewClient()
	for _, name := range []string{tables.Leads, tables.Newsletter} {
		def, _ := tables.Lookup(name)
		mem.Seed(def.Name, def.Columns)
	}
	svc := NewService(mem, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	return svc, mem
}

func TestRegisterLead_DeduplicatesOpenLead(t *testing.T) {
	svc, mem := newService(t)
	ctx := context.Background()

	_, created, err := svc.RegisterLead(ctx, "+34 600 000 000")
	require.NoError(t, err)
	assert.True(t, created)

	lead, created, err := svc.RegisterLead(ctx, "+34600000000")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "+34600000000", lead.Phone)
	assert.Len(t, mem.Rows(tables.Leads), 2)
	assert.Equal(t, 1, mem.Calls(storage.OpAppendRows))
}

func TestRegisterLead_AfterCompletionAppendsAgain(t *testing.T) {
	svc, mem := newService(t)
	ctx := context.Background()

	_, _, err := svc.RegisterLead(ctx, "+34600000000")
	require.NoError(t, err)
	completed, err := svc.CompleteLead(ctx, "+34600000000", "Ana", "ana@example.com", "instagram")
	require.NoError(t, err)
	assert.Equal(t, "Ana", completed.Name)
	assert.Equal(t, []string{"+34600000000", "Ana", "ana@example.com", "instagram", "2026-05-04T10:00:00Z"}, mem.Rows(tables.Leads)[1])

	_, created, err := svc.RegisterLead(ctx, "+34600000000")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, mem.Rows(tables.Leads), 3)
}

func TestCompleteLead_Errors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CompleteLead(ctx, "+34600000000", "Ana", "", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CompleteLead(ctx, "+34600000000", "", "", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CompleteLead(ctx, "+34600000000", "", "nope", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegisterLead_ConcurrentFirstRegistrationsMayDuplicate(t *testing.T) {
	svc, mem := newService(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.RegisterLead(context.Background(), "+34600000001")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// At least one row, possibly more: the read and the append are not atomic.
	rows := mem.Rows(tables.Leads)[1:]
	assert.GreaterOrEqual(t, len(rows), 1)
	assert.LessOrEqual(t, len(rows), 8)
	for _, row := range rows {
		assert.Equal(t, "+34600000001", row[0])
	}
}

func TestSubscribe(t *testing.T) {
	svc, mem := newService(t)
	ctx := context.Background()

	sub, created, err := svc.Subscribe(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ana@example.com", sub.Email)

	_, created, err = svc.Subscribe(ctx, "ANA@example.com ")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, mem.Rows(tables.Newsletter), 2)

	_, _, err = svc.Subscribe(ctx, "not-an-email")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSubscribe_UpstreamFailure(t *testing.T) {
	svc, mem := newService(t)
	mem.FailNext(storage.OpReadRows, apperr.RateLimited(storage.OpReadRows, nil))

	_, _, err := svc.Subscribe(context.Background(), "ana@example.com")
	assert.ErrorIs(t, err, apperr.ErrRateLimited)
	assert.Len(t, mem.Rows(tables.Newsletter), 1)
}
