package decks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/ids"
	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/tables"
)

const opCreateDeck = "create_deck"

// Request describes a deck to compose.
type Request struct {
	UserID  string
	WordIDs []string
	// Size is persisted on the Deck row. Zero means len(WordIDs).
	Size int
	// Status is applied to the words of the deck. Empty means Learning.
	Status entities.WordStatus
}

// payload is stored with the intent and carries what Repair needs.
type payload struct {
	Deck    entities.Deck                  `json:"deck"`
	WordIDs []string                       `json:"wordIds"`
	Status  entities.WordStatus            `json:"status"`
	Prior   map[string]entities.WordStatus `json:"prior"`
}

// CreateDeck appends a Deck row for the user and moves the requested words to
// the target status.
//
// Every requested word must already have a progress row for the user;
// otherwise a PreconditionFailedError naming the missing ids is returned and
// nothing is written. A failure after the Deck row is appended returns a
// PartialWriteError and leaves the intent pending for reconciliation.
func (s *Service) CreateDeck(ctx context.Context, req Request) (entities.Deck, error) {
	req, err := normalize(req)
	if err != nil {
		return entities.Deck{}, err
	}

	snaps, err := tables.LoadMany(ctx, s.store, tables.UserWordStates, tables.Decks)
	if err != nil {
		return entities.Deck{}, err
	}
	progress, decks := snaps[0], snaps[1]

	rows, prior := matchProgress(progress, req.UserID, req.WordIDs)
	var missing []string
	for _, id := range req.WordIDs {
		if _, ok := rows[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return entities.Deck{}, &apperr.PreconditionFailedError{
			Op:         opCreateDeck,
			Message:    "words have no progress row for user " + req.UserID,
			MissingIDs: missing,
		}
	}

	deck := entities.Deck{
		ID:        ids.NewDeckID(decks.Len()),
		UserID:    req.UserID,
		CreatedAt: s.now().UTC(),
		Size:      req.Size,
	}
	intent, err := s.intents.Begin(entities.IntentCreateDeck, deck.ID, payload{
		Deck: deck, WordIDs: req.WordIDs, Status: req.Status, Prior: prior,
	})
	if err != nil {
		return entities.Deck{}, fmt.Errorf("create deck: %w", err)
	}

	if err := tables.AppendWith(ctx, s.store, tables.Decks, decks.Header, tables.DeckToRecord(deck)); err != nil {
		err = s.appendFailed(ctx, intent, deck, req.WordIDs, err)
		s.audit.LogDeck(req.UserID, deck.ID, req.WordIDs, err)
		return entities.Deck{}, err
	}
	s.markStep(intent.ID, StepDeckAppended)

	updates := statusUpdates(progress, rows, req.Status)
	if err := s.store.BatchUpdate(ctx, tables.UserWordStates, updates); err != nil {
		pw := &apperr.PartialWriteError{
			Op:       opCreateDeck,
			Step:     StepUpdateWordStates,
			IntentID: intent.ID,
			IDs:      append([]string{deck.ID}, req.WordIDs...),
			Err:      err,
		}
		log.Printf("[DECK] %v", pw)
		s.scheduleRepair(ctx, intent.ID)
		s.audit.LogDeck(req.UserID, deck.ID, req.WordIDs, pw)
		return deck, pw
	}
	s.markStep(intent.ID, StepWordStatesUpdated)

	if err := s.intents.Complete(intent.ID); err != nil {
		log.Printf("[DECK] failed to complete intent %s: %v", intent.ID, err)
	}
	s.audit.LogDeck(req.UserID, deck.ID, req.WordIDs, nil)
	return deck, nil
}

// appendFailed settles the intent of a deck whose row could not be appended
// and returns the error for the caller.
// A rejected call (rate limit, missing table) wrote nothing and err is
// returned as is. Any other failure may have landed the row: the intent stays
// pending for the reconciler and a PartialWriteError at step append_deck is
// returned.
func (s *Service) appendFailed(ctx context.Context, intent *entities.WriteIntent, deck entities.Deck, wordIDs []string, err error) error {
	if errors.Is(err, apperr.ErrRateLimited) || errors.Is(err, storage.ErrTableNotFound) || errors.Is(err, context.Canceled) {
		if ferr := s.intents.Fail(intent.ID, err); ferr != nil {
			log.Printf("[DECK] failed to close intent %s: %v", intent.ID, ferr)
		}
		return err
	}
	pw := &apperr.PartialWriteError{
		Op:       opCreateDeck,
		Step:     StepAppendDeck,
		IntentID: intent.ID,
		IDs:      append([]string{deck.ID}, wordIDs...),
		Err:      err,
	}
	log.Printf("[DECK] append of deck %s is in doubt, leaving intent pending: %v", deck.ID, pw)
	s.scheduleRepair(ctx, intent.ID)
	return pw
}

func (s *Service) markStep(intentID, step string) {
	if err := s.intents.MarkStep(intentID, step); err != nil {
		log.Printf("[DECK] failed to record step %s of intent %s: %v", step, intentID, err)
	}
}

func (s *Service) scheduleRepair(ctx context.Context, intentID string) {
	if s.repairs == nil {
		return
	}
	if err := s.repairs.ScheduleIntent(context.WithoutCancel(ctx), intentID); err != nil {
		log.Printf("[DECK] failed to schedule repair of intent %s: %v", intentID, err)
	}
}

func normalize(req Request) (Request, error) {
	if req.UserID == "" {
		return req, apperr.Validation("userId", "is required")
	}
	seen := make(map[string]bool, len(req.WordIDs))
	words := make([]string, 0, len(req.WordIDs))
	for _, id := range req.WordIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		words = append(words, id)
	}
	if len(words) == 0 {
		return req, apperr.Validation("wordIds", "must not be empty")
	}
	req.WordIDs = words

	if req.Size < 0 {
		return req, apperr.Validation("deckSize", "must not be negative")
	}
	if req.Size == 0 {
		req.Size = len(words)
	}
	if req.Status == "" {
		req.Status = entities.WordStatusLearning
	}
	if !req.Status.Valid() {
		return req, apperr.Validation("status", "must be one of New, Learning, Review, Mastered")
	}
	return req, nil
}

// matchProgress returns the data-row index and current status of the user's
// progress row for each requested word that has one.
func matchProgress(progress *tables.Snapshot, userID string, wordIDs []string) (map[string]int, map[string]entities.WordStatus) {
	wanted := make(map[string]bool, len(wordIDs))
	for _, id := range wordIDs {
		wanted[id] = true
	}
	rows := make(map[string]int)
	prior := make(map[string]entities.WordStatus)
	for i, rec := range progress.Records() {
		if rec["userId"] != userID || !wanted[rec["wordId"]] {
			continue
		}
		if _, dup := rows[rec["wordId"]]; dup {
			continue
		}
		rows[rec["wordId"]] = i
		prior[rec["wordId"]] = entities.WordStatus(rec["status"])
	}
	return rows, prior
}

// statusUpdates writes status into the located rows, reusing the indices from
// the precondition read.
func statusUpdates(progress *tables.Snapshot, rows map[string]int, status entities.WordStatus) []storage.CellUpdate {
	updates := make([]storage.CellUpdate, 0, len(rows))
	for _, i := range rows {
		u, _ := progress.Header.Update(progress.AbsoluteRow(i), tables.Record{"status": string(status)})
		updates = append(updates, u...)
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].Row < updates[j].Row })
	return updates
}
