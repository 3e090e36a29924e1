// Package decks composes study decks: it appends a Deck row and moves the
// chosen words of the learner into the deck's study status.
//
// The two writes cannot be made atomic against the tabular store. Each
// creation is recorded in the write-intent log first, so a failure between the
// writes leaves a pending intent that Repair can finish later.
package decks

import (
	"context"
	"time"

	"github.com/mrlokans/mazo/internal/audit"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/storage"
)

// Intent steps.
const (
	StepDeckAppended      = "deck_appended"
	StepWordStatesUpdated = "word_states_updated"
)

// Steps named by PartialWriteError.
const (
	StepAppendDeck       = "append_deck"
	StepUpdateWordStates = "update_word_states"
)

// IntentLog records the progress of multi-step writes.
type IntentLog interface {
	Begin(op entities.IntentOperation, subject string, payload any) (*entities.WriteIntent, error)
	MarkStep(id, step string) error
	Complete(id string) error
	Fail(id string, cause error) error
}

// RepairQueue schedules the reconciliation of a pending intent.
type RepairQueue interface {
	ScheduleIntent(ctx context.Context, intentID string) error
}

type Service struct {
	store   storage.Client
	intents IntentLog
	repairs RepairQueue
	audit   *audit.Service
	now     func() time.Time
}

// NewService creates a deck composer. intents is required; repairs and
// auditSvc may be nil.
func NewService(store storage.Client, intents IntentLog, repairs RepairQueue, auditSvc *audit.Service) *Service {
	return &Service{
		store:   store,
		intents: intents,
		repairs: repairs,
		audit:   auditSvc,
		now:     time.Now,
	}
}

// SetRepairQueue replaces the repair queue. The task client is built after the
// services, so it is attached once available.
func (s *Service) SetRepairQueue(q RepairQueue) {
	s.repairs = q
}
