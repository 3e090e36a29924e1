package entities

import "time"

// User is a registered learner.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Deck is a study deck composed for a learner. Append-only.
type Deck struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int       `json:"size"`
}

// StudySession records a learner starting to study a deck. Append-only.
type StudySession struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deckId"`
	UserID    string    `json:"userId"`
	StartedAt time.Time `json:"startedAt"`
}

// LearnerView is the aggregated per-user snapshot of catalog, progress, decks
// and sessions.
type LearnerView struct {
	Words    []LearnerWord  `json:"words"`
	Decks    []Deck         `json:"decks"`
	Sessions []StudySession `json:"sessions"`
}
