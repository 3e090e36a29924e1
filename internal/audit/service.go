package audit

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/database/audit"
	"github.com/mrlokans/mazo/internal/entities"
)

// Service provides high-level audit logging functionality.
// A nil *Service is valid and records nothing.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	if s == nil {
		return nil
	}
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every event passed to LogAsync has been written.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.pending.Wait()
}

// LogContent records a card or exercise being added or removed.
func (s *Service) LogContent(action string, kind entities.ContentKind, id string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventContent,
		Action:      string(kind) + "_" + action,
		Description: action + " " + string(kind) + " " + id,
		EntityType:  string(kind),
		EntityID:    id,
	}
	s.LogAsync(withOutcome(event, err))
}

// LogDeck records a deck creation attempt.
func (s *Service) LogDeck(userID, deckID string, wordIDs []string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventDeck,
		Action:      "deck_create",
		Description: "Created deck " + deckID,
		EntityType:  "deck",
		EntityID:    deckID,
		Metadata:    metadata(map[string]any{"word_ids": wordIDs}),
	}
	s.LogAsync(withOutcome(event, err))
}

// LogWorkspace records a provisioning run.
func (s *Service) LogWorkspace(owner string, created []string, seeded int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventWorkspace,
		Action:      "workspace_provision",
		Description: "Provisioned workspace for " + owner,
		EntityType:  "workspace",
		EntityID:    owner,
		Metadata:    metadata(map[string]any{"created_tables": created, "seeded_words": seeded}),
	}
	s.LogAsync(withOutcome(event, err))
}

// LogLead records a lead or newsletter operation. key is the phone or email.
func (s *Service) LogLead(action, key string, err error) {
	event := &entities.AuditEvent{
		EventType:  entities.AuditEventLead,
		Action:     action,
		EntityType: "lead",
		EntityID:   key,
	}
	s.LogAsync(withOutcome(event, err))
}

// LogReconcile records the outcome of a reconciliation attempt on intent.
func (s *Service) LogReconcile(intent *entities.WriteIntent, outcome entities.IntentStatus, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventReconcile,
		Action:      string(intent.Operation) + "_reconcile",
		Description: "Intent " + intent.ID + " " + string(outcome),
		EntityType:  "intent",
		EntityID:    intent.Subject,
		Metadata:    metadata(map[string]any{"intent_id": intent.ID, "step": intent.Step, "attempts": intent.Attempts}),
	}
	withOutcome(event, err)
	if err == nil && outcome == entities.IntentStatusAbandoned {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

func withOutcome(event *entities.AuditEvent, err error) *entities.AuditEvent {
	switch {
	case err == nil:
		event.Status = entities.AuditStatusSuccess
	case errors.Is(err, apperr.ErrPartialWrite):
		event.Status = entities.AuditStatusPartial
		event.ErrorMsg = truncate(err.Error(), 500)
	default:
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

func metadata(fields map[string]any) string {
	raw, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(raw)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
