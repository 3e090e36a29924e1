package intents

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/mazo/internal/entities"
)

// ErrIntentNotFound is returned when no intent has the requested id.
var ErrIntentNotFound = errors.New("write intent not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Begin records a pending intent for op on subject. payload is stored as JSON
// and must carry everything the reconciler needs to finish the write.
func (r *Repository) Begin(op entities.IntentOperation, subject string, payload any) (*entities.WriteIntent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode intent payload: %w", err)
	}
	intent := &entities.WriteIntent{
		ID:        uuid.NewString(),
		Operation: op,
		Status:    entities.IntentStatusPending,
		Subject:   subject,
		Payload:   string(raw),
	}
	if err := r.db.Create(intent).Error; err != nil {
		return nil, fmt.Errorf("record intent: %w", err)
	}
	return intent, nil
}

// MarkStep records the last step of the intent that committed in the store.
func (r *Repository) MarkStep(id, step string) error {
	return r.update(id, map[string]any{"step": step})
}

// Complete marks the intent as fully applied by the operation that began it.
func (r *Repository) Complete(id string) error {
	return r.finish(id, entities.IntentStatusCompleted, "")
}

// Fail marks an intent whose operation failed before writing anything.
func (r *Repository) Fail(id string, cause error) error {
	return r.finish(id, entities.IntentStatusFailed, errorText(cause))
}

// Resolve closes an intent on behalf of the reconciler with status
// reconciled or abandoned.
func (r *Repository) Resolve(id string, status entities.IntentStatus, cause error) error {
	return r.finish(id, status, errorText(cause))
}

// RecordAttempt notes a failed repair attempt and leaves the intent pending.
func (r *Repository) RecordAttempt(id string, cause error) error {
	return r.update(id, map[string]any{
		"attempts": gorm.Expr("attempts + 1"),
		"error":    errorText(cause),
	})
}

func (r *Repository) Get(id string) (*entities.WriteIntent, error) {
	var intent entities.WriteIntent
	err := r.db.First(&intent, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrIntentNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// ListOpen returns pending intents last touched before olderThan, oldest first.
func (r *Repository) ListOpen(olderThan time.Time) ([]entities.WriteIntent, error) {
	var out []entities.WriteIntent
	err := r.db.
		Where("status = ? AND updated_at < ?", entities.IntentStatusPending, olderThan).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// List returns the most recent intents, optionally filtered by status.
func (r *Repository) List(status entities.IntentStatus, limit, offset int) ([]entities.WriteIntent, int64, error) {
	var out []entities.WriteIntent
	var total int64

	query := r.db.Model(&entities.WriteIntent{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}

// DeleteClosedBefore removes finished intents older than t. Pending intents are kept.
func (r *Repository) DeleteClosedBefore(t time.Time) (int64, error) {
	result := r.db.
		Where("status <> ? AND updated_at < ?", entities.IntentStatusPending, t).
		Delete(&entities.WriteIntent{})
	return result.RowsAffected, result.Error
}

// DecodePayload unmarshals the JSON payload of intent into v.
func DecodePayload(intent *entities.WriteIntent, v any) error {
	if err := json.Unmarshal([]byte(intent.Payload), v); err != nil {
		return fmt.Errorf("decode payload of intent %s: %w", intent.ID, err)
	}
	return nil
}

func (r *Repository) finish(id string, status entities.IntentStatus, errText string) error {
	now := time.Now()
	fields := map[string]any{
		"status":       status,
		"completed_at": &now,
	}
	if errText != "" {
		fields["error"] = errText
	}
	return r.update(id, fields)
}

func (r *Repository) update(id string, fields map[string]any) error {
	result := r.db.Model(&entities.WriteIntent{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", id, ErrIntentNotFound)
	}
	return nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
