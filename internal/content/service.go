// Package content adds and deletes the global flashcard and exercise rows.
package content

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/audit"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/ids"
	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/tables"
	"github.com/mrlokans/mazo/internal/validation"
)

type CardInput struct {
	CategoryID string `json:"categoryId" validate:"required"`
	Front      string `json:"front" validate:"required"`
	Back       string `json:"back" validate:"required"`
	Example    string `json:"example"`
	AudioURL   string `json:"audioUrl" validate:"omitempty,url"`
}

type ExerciseInput struct {
	LessonID    string   `json:"lessonId" validate:"required"`
	Type        string   `json:"type" validate:"required"`
	Prompt      string   `json:"prompt" validate:"required"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer" validate:"required"`
	Explanation string   `json:"explanation"`
}

type Service struct {
	store storage.Client
	audit *audit.Service
	now   func() time.Time
}

func NewService(store storage.Client, auditSvc *audit.Service) *Service {
	return &Service{store: store, audit: auditSvc, now: time.Now}
}

// TableFor returns the table holding rows of kind.
func TableFor(kind entities.ContentKind) (string, error) {
	switch kind {
	case entities.ContentKindCard:
		return tables.Cards, nil
	case entities.ContentKindExercise:
		return tables.Exercises, nil
	}
	return "", apperr.Validation("kind", fmt.Sprintf("unknown content kind %q", kind))
}

func (s *Service) AddCard(ctx context.Context, in CardInput) (entities.Card, error) {
	in.CategoryID, in.Front, in.Back = strings.TrimSpace(in.CategoryID), strings.TrimSpace(in.Front), strings.TrimSpace(in.Back)
	if err := validation.Struct(in); err != nil {
		return entities.Card{}, err
	}

	card := entities.Card{
		ID:         ids.NewContentID(),
		CategoryID: in.CategoryID,
		Front:      in.Front,
		Back:       in.Back,
		Example:    strings.TrimSpace(in.Example),
		AudioURL:   strings.TrimSpace(in.AudioURL),
		CreatedAt:  s.now().UTC(),
	}
	err := tables.Append(ctx, s.store, tables.Cards, tables.CardToRecord(card))
	s.audit.LogContent("card_add", entities.ContentKindCard, card.ID, err)
	if err != nil {
		return entities.Card{}, fmt.Errorf("add card: %w", err)
	}
	return card, nil
}

func (s *Service) AddExercise(ctx context.Context, in ExerciseInput) (entities.Exercise, error) {
	in.LessonID, in.Type, in.Prompt, in.Answer = strings.TrimSpace(in.LessonID), strings.TrimSpace(in.Type), strings.TrimSpace(in.Prompt), strings.TrimSpace(in.Answer)
	if err := validation.Struct(in); err != nil {
		return entities.Exercise{}, err
	}

	var options []string
	for _, opt := range in.Options {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}

	exercise := entities.Exercise{
		ID:          ids.NewContentID(),
		LessonID:    in.LessonID,
		Type:        in.Type,
		Prompt:      in.Prompt,
		Options:     options,
		Answer:      in.Answer,
		Explanation: strings.TrimSpace(in.Explanation),
		CreatedAt:   s.now().UTC(),
	}
	err := tables.Append(ctx, s.store, tables.Exercises, tables.ExerciseToRecord(exercise))
	s.audit.LogContent("exercise_add", entities.ContentKindExercise, exercise.ID, err)
	if err != nil {
		return entities.Exercise{}, fmt.Errorf("add exercise: %w", err)
	}
	return exercise, nil
}

// Delete removes the row of kind with the given id.
//
// The row index comes from a read taken immediately before the delete. A
// concurrent append does not move the row. A concurrent delete above it does,
// and the second delete then removes its neighbour.
func (s *Service) Delete(ctx context.Context, kind entities.ContentKind, id string) error {
	id = strings.TrimSpace(id)
	if err := validation.Required("id", id); err != nil {
		return err
	}
	table, err := TableFor(kind)
	if err != nil {
		return err
	}

	snap, err := tables.Load(ctx, s.store, table)
	if err != nil {
		return err
	}
	i := snap.Find(func(r tables.Record) bool { return r["id"] == id })
	if i < 0 {
		return apperr.NotFound(string(kind), id)
	}

	err = s.store.DeleteRow(ctx, table, snap.AbsoluteRow(i))
	s.audit.LogContent(string(kind)+"_delete", kind, id, err)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	log.Printf("[CONTENT] Deleted %s %s (row %d)", kind, id, snap.AbsoluteRow(i))
	return nil
}
