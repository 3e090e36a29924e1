package entities

import "time"

// WordStatus is the learning state of a word in a learner's curriculum.
type WordStatus string

const (
	WordStatusNew      WordStatus = "New"
	WordStatusLearning WordStatus = "Learning"
	WordStatusReview   WordStatus = "Review"
	WordStatusMastered WordStatus = "Mastered"
)

// Valid reports whether s is one of the known statuses.
func (s WordStatus) Valid() bool {
	switch s {
	case WordStatusNew, WordStatusLearning, WordStatusReview, WordStatusMastered:
		return true
	}
	return false
}

const (
	// MinEaseFactor is the floor for UserWordState.EaseFactor.
	MinEaseFactor = 1.3
	// DefaultEaseFactor is assigned to newly enrolled words.
	DefaultEaseFactor = 2.5
)

// MasterWord is an entry of the shared vocabulary catalog. Immutable once written.
type MasterWord struct {
	ID         string `json:"id"`
	SourceText string `json:"sourceText" validate:"required"`
	TargetText string `json:"targetText" validate:"required"`
}

// UserWordState is a learner's progress on a single catalog word.
// There is at most one row per (UserID, WordID).
type UserWordState struct {
	UserID         string     `json:"userId"`
	WordID         string     `json:"wordId"`
	Status         WordStatus `json:"status"`
	SRSInterval    int        `json:"srsInterval"`
	NextReviewAt   *time.Time `json:"nextReviewAt,omitempty"`
	EaseFactor     float64    `json:"easeFactor"`
	LastReviewedAt *time.Time `json:"lastReviewedAt,omitempty"`
	CorrectCount   int        `json:"correctCount"`
	IncorrectCount int        `json:"incorrectCount"`
	AvgResponseMs  int        `json:"avgResponseMs"`
}

// NewUserWordState returns the initial progress row for a freshly enrolled word.
func NewUserWordState(userID, wordID string) UserWordState {
	return UserWordState{
		UserID:     userID,
		WordID:     wordID,
		Status:     WordStatusNew,
		EaseFactor: DefaultEaseFactor,
	}
}

// LearnerWord is a progress row joined with its catalog entry.
// CatalogMissing is set when the progress row references a word that is not in
// the catalog; SourceText and TargetText are empty in that case.
type LearnerWord struct {
	UserWordState
	SourceText     string `json:"sourceText"`
	TargetText     string `json:"targetText"`
	CatalogMissing bool   `json:"catalogMissing,omitempty"`
}

// ReviewUpdate carries the outcome of a review event. The SRS values are
// computed by the scheduling collaborator; the store only persists them.
type ReviewUpdate struct {
	Correct      bool
	ResponseMs   int
	Status       WordStatus
	SRSInterval  int
	EaseFactor   float64
	NextReviewAt time.Time
	ReviewedAt   time.Time
}
