package decks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/ids"
	"github.com/mrlokans/mazo/internal/tables"
)

// Repair finishes a create-deck intent left pending by a failed CreateDeck.
// It returns the status the intent should be closed with, or an error if the
// attempt should be retried later.
//
// A missing Deck row means the append never landed and nothing was written.
// Otherwise the status transition is re-applied to every requested word whose
// status is still the one observed at creation time, so repeated repairs are
// harmless and words the learner has since moved on are left alone.
func (s *Service) Repair(ctx context.Context, intent *entities.WriteIntent) (entities.IntentStatus, error) {
	if intent.Operation != entities.IntentCreateDeck {
		return "", fmt.Errorf("intent %s: unexpected operation %s", intent.ID, intent.Operation)
	}
	var p payload
	if err := json.Unmarshal([]byte(intent.Payload), &p); err != nil {
		return entities.IntentStatusAbandoned, fmt.Errorf("decode intent %s: %w", intent.ID, err)
	}
	if _, _, err := ids.ParseDeckID(p.Deck.ID); err != nil {
		return entities.IntentStatusAbandoned, fmt.Errorf("intent %s: %w", intent.ID, err)
	}

	snaps, err := tables.LoadMany(ctx, s.store, tables.UserWordStates, tables.Decks)
	if err != nil {
		return "", err
	}
	progress, decks := snaps[0], snaps[1]

	if decks.Find(func(r tables.Record) bool { return r["id"] == p.Deck.ID }) < 0 {
		if intent.Step == "" {
			log.Printf("[DECK] deck %s was never appended, closing intent %s", p.Deck.ID, intent.ID)
			return entities.IntentStatusFailed, nil
		}
		return entities.IntentStatusAbandoned, fmt.Errorf("deck %s was appended but is no longer present", p.Deck.ID)
	}

	rows, current := matchProgress(progress, p.Deck.UserID, p.WordIDs)
	pending := make(map[string]int)
	for wordID, i := range rows {
		if current[wordID] == p.Status {
			continue
		}
		if before, ok := p.Prior[wordID]; ok && current[wordID] != before {
			continue
		}
		pending[wordID] = i
	}
	if len(pending) > 0 {
		if err := s.store.BatchUpdate(ctx, tables.UserWordStates, statusUpdates(progress, pending, p.Status)); err != nil {
			return "", err
		}
	}
	log.Printf("[DECK] repaired deck %s: %d word states updated", p.Deck.ID, len(pending))
	return entities.IntentStatusReconciled, nil
}
