package entities

import "time"

type AuditEventType string

const (
	AuditEventContent   AuditEventType = "content"
	AuditEventDeck      AuditEventType = "deck"
	AuditEventWorkspace AuditEventType = "workspace"
	AuditEventLead      AuditEventType = "lead"
	AuditEventReconcile AuditEventType = "reconcile"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
	AuditStatusPartial AuditStatus = "partial"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      string         `gorm:"index;size:100" json:"user_id,omitempty"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "card_delete", "deck_create"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  string         `gorm:"size:50" json:"entity_type"`  // "card", "deck", ...
	EntityID    string         `gorm:"index;size:100" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
