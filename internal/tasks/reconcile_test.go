package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/reconcile"
)

type fakeReconciler struct {
	called  chan string
	outcome reconcile.Outcome
	err     error
	minAge  time.Duration
}

func (f *fakeReconciler) ReconcileIntent(_ context.Context, id string) (reconcile.Outcome, error) {
	if f.called != nil {
		f.called <- id
	}
	if f.outcome.Status == "" && f.err == nil {
		return reconcile.Outcome{IntentID: id, Status: entities.IntentStatusReconciled}, nil
	}
	return f.outcome, f.err
}

func (f *fakeReconciler) Scan(_ context.Context, minAge time.Duration) (reconcile.Summary, error) {
	f.minAge = minAge
	return reconcile.Summary{Scanned: 2, Resolved: 1, Retrying: 1}, f.err
}

func TestReconcileIntentProcessor(t *testing.T) {
	tests := []struct {
		name    string
		rec     *fakeReconciler
		wantErr string
	}{
		{"closed", &fakeReconciler{}, ""},
		{"still pending", &fakeReconciler{outcome: reconcile.Outcome{Status: entities.IntentStatusPending, Error: "rate limited"}}, "still pending: rate limited"},
		{"lookup failure", &fakeReconciler{err: errors.New("db locked")}, "db locked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ReconcileIntentProcessor(tt.rec)(context.Background(), ReconcileIntentTask{IntentID: "i-1"})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReconcileAllProcessor(t *testing.T) {
	rec := &fakeReconciler{}
	err := ReconcileAllProcessor(rec)(context.Background(), ReconcileAllTask{MinAgeSeconds: 300})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, rec.minAge)

	assert.Error(t, ReconcileAllProcessor(nil)(context.Background(), ReconcileAllTask{}))
}

func TestTaskConfigs(t *testing.T) {
	cfg := ReconcileIntentTask{}.Config()
	assert.Equal(t, "reconcile_intent", cfg.Name)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Retention)

	cfg = ReconcileAllTask{}.Config()
	assert.Equal(t, "reconcile_all", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)

	cfg = CleanupTask{}.Config()
	assert.Equal(t, "cleanup_history", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
}

type fakeCleaner struct {
	cutoff time.Time
}

func (f *fakeCleaner) DeleteOldEvents(olderThan time.Time) (int64, error) {
	f.cutoff = olderThan
	return 3, nil
}

func (f *fakeCleaner) DeleteClosedBefore(t time.Time) (int64, error) {
	f.cutoff = t
	return 1, nil
}

func TestCleanupProcessor(t *testing.T) {
	events, intents := &fakeCleaner{}, &fakeCleaner{}

	err := CleanupProcessor(events, intents)(context.Background(), CleanupTask{RetentionDays: 7})
	require.NoError(t, err)

	want := time.Now().Add(-7 * 24 * time.Hour)
	assert.WithinDuration(t, want, events.cutoff, time.Minute)
	assert.WithinDuration(t, want, intents.cutoff, time.Minute)

	assert.Error(t, CleanupProcessor(nil, nil)(context.Background(), CleanupTask{}))
}
