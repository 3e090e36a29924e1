package learner

import (
	"context"
	"fmt"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/ids"
	"github.com/mrlokans/mazo/internal/tables"
	"github.com/mrlokans/mazo/internal/validation"
)

// StartSession appends a study session for a deck owned by userID.
func (s *Service) StartSession(ctx context.Context, userID, deckID string) (entities.StudySession, error) {
	if err := validation.Required("userId", userID); err != nil {
		return entities.StudySession{}, err
	}
	if err := validation.Required("deckId", deckID); err != nil {
		return entities.StudySession{}, err
	}

	decks, err := tables.Load(ctx, s.store, tables.Decks)
	if err != nil {
		return entities.StudySession{}, err
	}
	i := decks.Find(func(r tables.Record) bool { return r["id"] == deckID && r["userId"] == userID })
	if i < 0 {
		return entities.StudySession{}, apperr.NotFound("deck", deckID)
	}

	session := entities.StudySession{
		ID:        ids.NewContentID(),
		DeckID:    deckID,
		UserID:    userID,
		StartedAt: s.now().UTC(),
	}
	if err := tables.Append(ctx, s.store, tables.StudySessions, tables.SessionToRecord(session)); err != nil {
		return entities.StudySession{}, fmt.Errorf("start session for deck %s: %w", deckID, err)
	}
	return session, nil
}
