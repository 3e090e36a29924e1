// Package learner aggregates and updates per-user learning state: the user
// registry, vocabulary progress, and study sessions.
package learner

import (
	"time"

	"github.com/mrlokans/mazo/internal/storage"
)

// Service reads and writes learner state through the tabular store.
type Service struct {
	store storage.Client
	now   func() time.Time
}

func NewService(store storage.Client) *Service {
	return &Service{store: store, now: time.Now}
}
