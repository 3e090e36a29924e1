package learner

import (
	"context"
	"log"

	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/tables"
	"github.com/mrlokans/mazo/internal/validation"
)

// LoadView returns the learner's words joined with the catalog, their decks and
// their study sessions. An unknown user yields an empty view with exists=false
// and no error.
//
// Progress rows whose word is not in the catalog are kept with empty catalog
// fields and CatalogMissing set. The reads are independent, so the view may mix
// states from slightly different moments.
func (s *Service) LoadView(ctx context.Context, userID string) (entities.LearnerView, bool, error) {
	view := entities.LearnerView{
		Words:    []entities.LearnerWord{},
		Decks:    []entities.Deck{},
		Sessions: []entities.StudySession{},
	}
	if err := validation.Required("userId", userID); err != nil {
		return view, false, err
	}

	exists, err := s.userExists(ctx, userID)
	if err != nil || !exists {
		return view, false, err
	}

	snaps, err := tables.LoadMany(ctx, s.store,
		tables.MasterWords, tables.UserWordStates, tables.Decks, tables.StudySessions)
	if err != nil {
		return view, true, err
	}
	catalog, progress, decks, sessions := snaps[0], snaps[1], snaps[2], snaps[3]

	words := make(map[string]entities.MasterWord, catalog.Len())
	for _, rec := range catalog.Records() {
		w := tables.MasterWordFromRecord(rec)
		words[w.ID] = w
	}

	dangling := 0
	for _, rec := range progress.Records() {
		if rec["userId"] != userID {
			continue
		}
		lw := entities.LearnerWord{UserWordState: tables.WordStateFromRecord(rec)}
		if w, ok := words[lw.WordID]; ok {
			lw.SourceText = w.SourceText
			lw.TargetText = w.TargetText
		} else {
			lw.CatalogMissing = true
			dangling++
		}
		view.Words = append(view.Words, lw)
	}
	if dangling > 0 {
		log.Printf("[LEARNER] user %s has %d progress rows without a catalog word", userID, dangling)
	}

	for _, rec := range decks.Records() {
		if rec["userId"] == userID {
			view.Decks = append(view.Decks, tables.DeckFromRecord(rec))
		}
	}
	for _, rec := range sessions.Records() {
		if rec["userId"] == userID {
			view.Sessions = append(view.Sessions, tables.SessionFromRecord(rec))
		}
	}
	return view, true, nil
}

func (s *Service) userExists(ctx context.Context, userID string) (bool, error) {
	users, err := tables.Load(ctx, s.store, tables.Users)
	if err != nil {
		return false, err
	}
	for _, id := range users.Column("id") {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
