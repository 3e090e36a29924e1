package intents

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/mazo/internal/entities"
)

type deckPayload struct {
	DeckID  string   `json:"deckId"`
	WordIDs []string `json:"wordIds"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.WriteIntent{})
	require.NoError(t, err)

	return db
}

func TestRepository_BeginAndComplete(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	intent, err := repo.Begin(entities.IntentCreateDeck, "Mazo-0-abcd1234", deckPayload{DeckID: "Mazo-0-abcd1234", WordIDs: []string{"w1"}})
	require.NoError(t, err)
	assert.NotEmpty(t, intent.ID)
	assert.True(t, intent.Open())

	require.NoError(t, repo.MarkStep(intent.ID, "deck_appended"))
	require.NoError(t, repo.Complete(intent.ID))

	got, err := repo.Get(intent.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.IntentStatusCompleted, got.Status)
	assert.Equal(t, "deck_appended", got.Step)
	assert.NotNil(t, got.CompletedAt)

	var p deckPayload
	require.NoError(t, DecodePayload(got, &p))
	assert.Equal(t, []string{"w1"}, p.WordIDs)
}

func TestRepository_RecordAttempt(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	intent, err := repo.Begin(entities.IntentSeedWorkspace, "owner@example.com", map[string]int{"words": 3})
	require.NoError(t, err)

	require.NoError(t, repo.RecordAttempt(intent.ID, errors.New("rate limited")))
	require.NoError(t, repo.RecordAttempt(intent.ID, errors.New("still rate limited")))

	got, err := repo.Get(intent.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, "still rate limited", got.Error)
	assert.True(t, got.Open())
}

func TestRepository_ListOpen(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	old, err := repo.Begin(entities.IntentCreateDeck, "old", nil)
	require.NoError(t, err)
	fresh, err := repo.Begin(entities.IntentCreateDeck, "fresh", nil)
	require.NoError(t, err)
	done, err := repo.Begin(entities.IntentCreateDeck, "done", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Complete(done.ID))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&entities.WriteIntent{}).Where("id IN ?", []string{old.ID, done.ID}).
		UpdateColumn("updated_at", past).Error)

	open, err := repo.ListOpen(time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, old.ID, open[0].ID)
	assert.NotEqual(t, fresh.ID, open[0].ID)
}

func TestRepository_List(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	for i := 0; i < 3; i++ {
		_, err := repo.Begin(entities.IntentCreateDeck, "d", nil)
		require.NoError(t, err)
	}
	abandoned, err := repo.Begin(entities.IntentCreateDeck, "x", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Resolve(abandoned.ID, entities.IntentStatusAbandoned, errors.New("deck row missing")))

	all, total, err := repo.List("", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)

	only, total, err := repo.List(entities.IntentStatusAbandoned, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "deck row missing", only[0].Error)
}

func TestRepository_DeleteClosedBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	pending, err := repo.Begin(entities.IntentCreateDeck, "p", nil)
	require.NoError(t, err)
	closed, err := repo.Begin(entities.IntentCreateDeck, "c", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Complete(closed.ID))
	require.NoError(t, db.Model(&entities.WriteIntent{}).Where("1 = 1").UpdateColumn("updated_at", time.Now().Add(-48*time.Hour)).Error)

	deleted, err := repo.DeleteClosedBefore(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.Get(pending.ID)
	assert.NoError(t, err)
}

func TestRepository_UnknownID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	assert.ErrorIs(t, repo.Complete("missing"), ErrIntentNotFound)
	_, err := repo.Get("missing")
	assert.ErrorIs(t, err, ErrIntentNotFound)
}
