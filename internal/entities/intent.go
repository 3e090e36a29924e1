package entities

import (
	"time"
)

type IntentOperation string

const (
	IntentCreateDeck    IntentOperation = "create_deck"
	IntentSeedWorkspace IntentOperation = "seed_workspace"
)

type IntentStatus string

const (
	IntentStatusPending    IntentStatus = "pending"
	IntentStatusCompleted  IntentStatus = "completed"
	IntentStatusFailed     IntentStatus = "failed"     // nothing was written
	IntentStatusReconciled IntentStatus = "reconciled" // completed by the reconciler
	IntentStatusAbandoned  IntentStatus = "abandoned"  // reconciler gave up, needs an operator
)

// WriteIntent is a saga log entry for a multi-step write against the tabular
// store. It is recorded before the first write and completed after the last,
// so intents left pending identify partial writes.
type WriteIntent struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	Operation   IntentOperation `gorm:"size:50;index" json:"operation"`
	Status      IntentStatus    `gorm:"size:20;index" json:"status"`
	Subject     string          `gorm:"size:255;index" json:"subject"` // deck id, owner email
	Payload     string          `gorm:"type:text" json:"payload"`      // JSON, operation specific
	Step        string          `gorm:"size:100" json:"step"`          // last committed step
	Attempts    int             `json:"attempts"`
	Error       string          `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

func (WriteIntent) TableName() string {
	return "write_intents"
}

// Open reports whether the intent still needs completion or reconciliation.
func (w WriteIntent) Open() bool {
	return w.Status == IntentStatusPending
}
