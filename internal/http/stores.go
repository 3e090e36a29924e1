package http

import (
	"context"
	"time"

	"github.com/mrlokans/mazo/internal/content"
	"github.com/mrlokans/mazo/internal/decks"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/reconcile"
	"github.com/mrlokans/mazo/internal/workspace"
)

// Each controller depends only on the operations it calls. The services in
// internal/content, decks, learner, workspace, leads, speech and reconcile
// satisfy these.

type ContentService interface {
	AddCard(ctx context.Context, in content.CardInput) (entities.Card, error)
	AddExercise(ctx context.Context, in content.ExerciseInput) (entities.Exercise, error)
	Delete(ctx context.Context, kind entities.ContentKind, id string) error
}

type DeckComposer interface {
	CreateDeck(ctx context.Context, req decks.Request) (entities.Deck, error)
}

type LearnerService interface {
	LoadView(ctx context.Context, userID string) (entities.LearnerView, bool, error)
	RegisterUser(ctx context.Context, id, email, name string) (entities.User, bool, error)
	EnrollWords(ctx context.Context, userID string, wordIDs []string) ([]string, error)
	RecordReview(ctx context.Context, userID, wordID string, update entities.ReviewUpdate) (entities.UserWordState, error)
	StartSession(ctx context.Context, userID, deckID string) (entities.StudySession, error)
}

type WorkspaceProvisioner interface {
	EnsureWorkspace(ctx context.Context, ownerEmail string, seedWords []entities.MasterWord) (workspace.Result, error)
}

type LeadService interface {
	RegisterLead(ctx context.Context, phone string) (entities.Lead, bool, error)
	CompleteLead(ctx context.Context, phone, name, email, reference string) (entities.Lead, error)
	Subscribe(ctx context.Context, email string) (entities.Subscriber, bool, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (string, error)
}

type IntentLister interface {
	Get(id string) (*entities.WriteIntent, error)
	List(status entities.IntentStatus, limit, offset int) ([]entities.WriteIntent, int64, error)
}

type IntentReconciler interface {
	ReconcileIntent(ctx context.Context, id string) (reconcile.Outcome, error)
	Scan(ctx context.Context, minAge time.Duration) (reconcile.Summary, error)
}

// StoreChecker is the part of the store the health check touches.
type StoreChecker interface {
	ListTables(ctx context.Context) ([]string, error)
}
