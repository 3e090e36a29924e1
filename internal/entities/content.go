package entities

import "time"

// ContentKind identifies which content table a row belongs to.
type ContentKind string

const (
	ContentKindCard     ContentKind = "card"
	ContentKindExercise ContentKind = "exercise"
)

// Card is a flashcard content row. Not user-scoped.
type Card struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"categoryId"`
	Front      string    `json:"front"`
	Back       string    `json:"back"`
	Example    string    `json:"example,omitempty"`
	AudioURL   string    `json:"audioUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Exercise is a lesson exercise content row. Not user-scoped.
type Exercise struct {
	ID          string    `json:"id"`
	LessonID    string    `json:"lessonId"`
	Type        string    `json:"type"`
	Prompt      string    `json:"prompt"`
	Options     []string  `json:"options,omitempty"`
	Answer      string    `json:"answer"`
	Explanation string    `json:"explanation,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
