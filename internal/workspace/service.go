// Package workspace provisions the tabular store: it creates every declared
// table with its header row and seeds the word catalog on first use.
package workspace

import (
	"time"

	"github.com/mrlokans/mazo/internal/audit"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/storage"
)

// Config table keys written by the provisioner.
const (
	KeyOwnerEmail = "ownerEmail"
	KeyCreatedAt  = "createdAt"
	KeySeedStatus = "seedStatus"

	SeedPending  = "pending"
	SeedComplete = "complete"
)

// IntentLog records the progress of multi-step writes.
type IntentLog interface {
	Begin(op entities.IntentOperation, subject string, payload any) (*entities.WriteIntent, error)
	MarkStep(id, step string) error
	Complete(id string) error
}

type Service struct {
	store   storage.Client
	intents IntentLog
	audit   *audit.Service
	now     func() time.Time
}

// NewService creates a provisioner. auditSvc may be nil.
func NewService(store storage.Client, intents IntentLog, auditSvc *audit.Service) *Service {
	return &Service{store: store, intents: intents, audit: auditSvc, now: time.Now}
}

// Result reports what a provisioning run did.
type Result struct {
	CreatedTables   []string `json:"createdTables"`
	RestoredHeaders []string `json:"restoredHeaders,omitempty"`
	SeededWords     int      `json:"seededWords"`
	Resumed         bool     `json:"resumed"`
}
