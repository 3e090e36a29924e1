package learner

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/tables"
	"github.com/mrlokans/mazo/internal/validation"
)

// EnrollWords creates default progress rows for the catalog words the user is
// not yet learning. It returns the ids that were enrolled by this call.
// Words missing from the catalog fail the whole call with no rows written.
func (s *Service) EnrollWords(ctx context.Context, userID string, wordIDs []string) ([]string, error) {
	if err := validation.Required("userId", userID); err != nil {
		return nil, err
	}
	wordIDs = dedupe(wordIDs)
	if len(wordIDs) == 0 {
		return nil, apperr.Validation("wordIds", "must not be empty")
	}

	exists, err := s.userExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("user", userID)
	}

	snaps, err := tables.LoadMany(ctx, s.store, tables.MasterWords, tables.UserWordStates)
	if err != nil {
		return nil, err
	}
	catalog, progress := snaps[0], snaps[1]

	known := make(map[string]bool, catalog.Len())
	for _, id := range catalog.Column("id") {
		known[id] = true
	}
	var unknown []string
	for _, id := range wordIDs {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, &apperr.PreconditionFailedError{Op: "enroll_words", Message: "words not in catalog", MissingIDs: unknown}
	}

	enrolled := make(map[string]bool)
	for _, rec := range progress.Records() {
		if rec["userId"] == userID {
			enrolled[rec["wordId"]] = true
		}
	}

	var added []string
	var records []tables.Record
	for _, id := range wordIDs {
		if enrolled[id] {
			continue
		}
		records = append(records, tables.WordStateToRecord(entities.NewUserWordState(userID, id)))
		added = append(added, id)
	}
	if err := tables.AppendWith(ctx, s.store, tables.UserWordStates, progress.Header, records...); err != nil {
		return nil, fmt.Errorf("enroll words for %s: %w", userID, err)
	}
	return added, nil
}

// RecordReview applies the outcome of one review to the learner's progress row
// for wordID. The SRS values come from the caller; the ease factor is clamped
// to its floor and the counters and running response mean are updated here.
// The read and the write are not atomic: concurrent reviews of the same word
// may lose one update.
func (s *Service) RecordReview(ctx context.Context, userID, wordID string, update entities.ReviewUpdate) (entities.UserWordState, error) {
	if err := validation.Required("userId", userID); err != nil {
		return entities.UserWordState{}, err
	}
	if err := validation.Required("wordId", wordID); err != nil {
		return entities.UserWordState{}, err
	}
	if update.Status != "" && !update.Status.Valid() {
		return entities.UserWordState{}, apperr.Validation("status", "must be one of New, Learning, Review, Mastered")
	}
	if update.SRSInterval < 0 || update.ResponseMs < 0 {
		return entities.UserWordState{}, apperr.Validation("review", "interval and response time must not be negative")
	}

	progress, err := tables.Load(ctx, s.store, tables.UserWordStates)
	if err != nil {
		return entities.UserWordState{}, err
	}
	i := progress.Find(func(r tables.Record) bool { return r["userId"] == userID && r["wordId"] == wordID })
	if i < 0 {
		return entities.UserWordState{}, apperr.NotFound("progress", userID+"/"+wordID)
	}

	state := applyReview(tables.WordStateFromRecord(progress.Record(i)), update, s.now().UTC())

	rec := tables.WordStateToRecord(state)
	delete(rec, "userId")
	delete(rec, "wordId")
	updates, _ := progress.Header.Update(progress.AbsoluteRow(i), rec)
	if err := s.store.BatchUpdate(ctx, tables.UserWordStates, updates); err != nil {
		return entities.UserWordState{}, fmt.Errorf("record review %s/%s: %w", userID, wordID, err)
	}
	return state, nil
}

func applyReview(state entities.UserWordState, u entities.ReviewUpdate, now time.Time) entities.UserWordState {
	reviews := state.CorrectCount + state.IncorrectCount
	if u.Correct {
		state.CorrectCount++
	} else {
		state.IncorrectCount++
	}
	if u.ResponseMs > 0 {
		state.AvgResponseMs = (state.AvgResponseMs*reviews + u.ResponseMs) / (reviews + 1)
	}
	if u.Status != "" {
		state.Status = u.Status
	}
	state.SRSInterval = u.SRSInterval
	if u.EaseFactor != 0 {
		state.EaseFactor = max(u.EaseFactor, entities.MinEaseFactor)
	}
	if !u.NextReviewAt.IsZero() {
		next := u.NextReviewAt.UTC()
		state.NextReviewAt = &next
	}
	reviewed := now
	if !u.ReviewedAt.IsZero() {
		reviewed = u.ReviewedAt.UTC()
	}
	state.LastReviewedAt = &reviewed
	return state
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
