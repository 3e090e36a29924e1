package tables

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/mazo/internal/entities"
)

// FormatTime renders t as an RFC 3339 UTC cell. The zero time is blank.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatTime(*t)
}

// ParseTime and the other Parse helpers are lenient: blank or malformed cells
// decode to the zero value.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseTimePtr(s string) *time.Time {
	t := ParseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

func ParseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return n
}

func ParseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// UserToRecord / UserFromRecord map the Users table.
func UserToRecord(u entities.User) Record {
	return Record{
		"id":        u.ID,
		"email":     u.Email,
		"name":      u.Name,
		"createdAt": FormatTime(u.CreatedAt),
	}
}

func UserFromRecord(r Record) entities.User {
	return entities.User{
		ID:        r["id"],
		Email:     r["email"],
		Name:      r["name"],
		CreatedAt: ParseTime(r["createdAt"]),
	}
}

func MasterWordToRecord(w entities.MasterWord) Record {
	return Record{"id": w.ID, "sourceText": w.SourceText, "targetText": w.TargetText}
}

func MasterWordFromRecord(r Record) entities.MasterWord {
	return entities.MasterWord{ID: r["id"], SourceText: r["sourceText"], TargetText: r["targetText"]}
}

func WordStateToRecord(s entities.UserWordState) Record {
	return Record{
		"userId":         s.UserID,
		"wordId":         s.WordID,
		"status":         string(s.Status),
		"srsInterval":    strconv.Itoa(s.SRSInterval),
		"nextReviewAt":   formatTimePtr(s.NextReviewAt),
		"easeFactor":     formatFloat(s.EaseFactor),
		"lastReviewedAt": formatTimePtr(s.LastReviewedAt),
		"correctCount":   strconv.Itoa(s.CorrectCount),
		"incorrectCount": strconv.Itoa(s.IncorrectCount),
		"avgResponseMs":  strconv.Itoa(s.AvgResponseMs),
	}
}

// WordStateFromRecord decodes a progress row. A blank ease factor decodes as
// the default; a stored value below the floor is clamped.
func WordStateFromRecord(r Record) entities.UserWordState {
	ease := entities.DefaultEaseFactor
	if strings.TrimSpace(r["easeFactor"]) != "" {
		ease = max(ParseFloat(r["easeFactor"]), entities.MinEaseFactor)
	}
	status := entities.WordStatus(strings.TrimSpace(r["status"]))
	if status == "" {
		status = entities.WordStatusNew
	}
	return entities.UserWordState{
		UserID:         r["userId"],
		WordID:         r["wordId"],
		Status:         status,
		SRSInterval:    ParseInt(r["srsInterval"]),
		NextReviewAt:   parseTimePtr(r["nextReviewAt"]),
		EaseFactor:     ease,
		LastReviewedAt: parseTimePtr(r["lastReviewedAt"]),
		CorrectCount:   ParseInt(r["correctCount"]),
		IncorrectCount: ParseInt(r["incorrectCount"]),
		AvgResponseMs:  ParseInt(r["avgResponseMs"]),
	}
}

func DeckToRecord(d entities.Deck) Record {
	return Record{
		"id":        d.ID,
		"userId":    d.UserID,
		"createdAt": FormatTime(d.CreatedAt),
		"size":      strconv.Itoa(d.Size),
	}
}

func DeckFromRecord(r Record) entities.Deck {
	return entities.Deck{
		ID:        r["id"],
		UserID:    r["userId"],
		CreatedAt: ParseTime(r["createdAt"]),
		Size:      ParseInt(r["size"]),
	}
}

func SessionToRecord(s entities.StudySession) Record {
	return Record{
		"id":        s.ID,
		"deckId":    s.DeckID,
		"userId":    s.UserID,
		"startedAt": FormatTime(s.StartedAt),
	}
}

func SessionFromRecord(r Record) entities.StudySession {
	return entities.StudySession{
		ID:        r["id"],
		DeckID:    r["deckId"],
		UserID:    r["userId"],
		StartedAt: ParseTime(r["startedAt"]),
	}
}

func CardToRecord(c entities.Card) Record {
	return Record{
		"id":         c.ID,
		"categoryId": c.CategoryID,
		"front":      c.Front,
		"back":       c.Back,
		"example":    c.Example,
		"audioUrl":   c.AudioURL,
		"createdAt":  FormatTime(c.CreatedAt),
	}
}

func CardFromRecord(r Record) entities.Card {
	return entities.Card{
		ID:         r["id"],
		CategoryID: r["categoryId"],
		Front:      r["front"],
		Back:       r["back"],
		Example:    r["example"],
		AudioURL:   r["audioUrl"],
		CreatedAt:  ParseTime(r["createdAt"]),
	}
}

// Exercise options are stored as a JSON array in a single cell.
func ExerciseToRecord(e entities.Exercise) Record {
	options := ""
	if len(e.Options) > 0 {
		raw, _ := json.Marshal(e.Options)
		options = string(raw)
	}
	return Record{
		"id":          e.ID,
		"lessonId":    e.LessonID,
		"type":        e.Type,
		"prompt":      e.Prompt,
		"options":     options,
		"answer":      e.Answer,
		"explanation": e.Explanation,
		"createdAt":   FormatTime(e.CreatedAt),
	}
}

// ExerciseFromRecord accepts both the JSON array form and a "|" separated list
// for options typed by hand into the sheet.
func ExerciseFromRecord(r Record) entities.Exercise {
	var options []string
	if raw := strings.TrimSpace(r["options"]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &options); err != nil {
			options = nil
			for _, opt := range strings.Split(raw, "|") {
				if opt = strings.TrimSpace(opt); opt != "" {
					options = append(options, opt)
				}
			}
		}
	}
	return entities.Exercise{
		ID:          r["id"],
		LessonID:    r["lessonId"],
		Type:        r["type"],
		Prompt:      r["prompt"],
		Options:     options,
		Answer:      r["answer"],
		Explanation: r["explanation"],
		CreatedAt:   ParseTime(r["createdAt"]),
	}
}

func LeadToRecord(l entities.Lead) Record {
	return Record{
		"phone":     l.Phone,
		"name":      l.Name,
		"email":     l.Email,
		"reference": l.Reference,
		"createdAt": FormatTime(l.CreatedAt),
	}
}

func LeadFromRecord(r Record) entities.Lead {
	return entities.Lead{
		Phone:     r["phone"],
		Name:      r["name"],
		Email:     r["email"],
		Reference: r["reference"],
		CreatedAt: ParseTime(r["createdAt"]),
	}
}

func SubscriberToRecord(s entities.Subscriber) Record {
	return Record{"email": s.Email, "subscribedAt": FormatTime(s.SubscribedAt)}
}

func SubscriberFromRecord(r Record) entities.Subscriber {
	return entities.Subscriber{Email: r["email"], SubscribedAt: ParseTime(r["subscribedAt"])}
}

// ConfigRecord builds a row of the Config key/value table.
func ConfigRecord(key, value string, updatedAt time.Time) Record {
	return Record{"key": key, "value": value, "updatedAt": FormatTime(updatedAt)}
}
