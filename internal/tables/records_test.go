package tables

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/mazo/internal/entities"
)

func TestWordStateRoundTrip(t *testing.T) {
	next := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	state := entities.UserWordState{
		UserID: "u1", WordID: "w1", Status: entities.WordStatusReview,
		SRSInterval: 6, NextReviewAt: &next, EaseFactor: 2.36,
		CorrectCount: 4, IncorrectCount: 1, AvgResponseMs: 1800,
	}

	got := WordStateFromRecord(WordStateToRecord(state))
	assert.Equal(t, state, got)
}

func TestWordStateFromRecord_Lenient(t *testing.T) {
	got := WordStateFromRecord(Record{"userId": "u1", "wordId": "w1", "easeFactor": "0.9", "srsInterval": "abc"})

	assert.Equal(t, entities.WordStatusNew, got.Status)
	assert.Equal(t, entities.MinEaseFactor, got.EaseFactor)
	assert.Equal(t, 0, got.SRSInterval)
	assert.Nil(t, got.NextReviewAt)

	blank := WordStateFromRecord(Record{"userId": "u1", "wordId": "w2"})
	assert.Equal(t, entities.DefaultEaseFactor, blank.EaseFactor)
}

func TestParseTime(t *testing.T) {
	assert.True(t, ParseTime("").IsZero())
	assert.True(t, ParseTime("not a date").IsZero())
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), ParseTime("2026-01-02"))
	assert.Equal(t, "2026-01-02T03:04:05Z", FormatTime(ParseTime("2026-01-02T04:04:05+01:00")))
	assert.Equal(t, "", FormatTime(time.Time{}))
}

func TestParseInt_AcceptsSpreadsheetFloats(t *testing.T) {
	assert.Equal(t, 10, ParseInt("10"))
	assert.Equal(t, 10, ParseInt("10.0"))
	assert.Equal(t, 0, ParseInt(""))
}

func TestExerciseOptions(t *testing.T) {
	ex := entities.Exercise{ID: "e1", LessonID: "l1", Type: "choice", Prompt: "¿?", Options: []string{"sí", "no"}, Answer: "sí"}
	rec := ExerciseToRecord(ex)
	assert.Equal(t, `["sí","no"]`, rec["options"])
	assert.Equal(t, []string{"sí", "no"}, ExerciseFromRecord(rec).Options)

	handTyped := ExerciseFromRecord(Record{"options": "uno | dos|tres"})
	assert.Equal(t, []string{"uno", "dos", "tres"}, handTyped.Options)
}
