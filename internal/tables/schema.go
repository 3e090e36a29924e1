// Package tables declares the logical tables of the workspace and converts
// between raw rows and named records.
//
// Column positions are never hard-coded: every read resolves them from the
// live header row, so columns may be reordered or added in the store without
// breaking readers or writers.
package tables

import (
	"github.com/mrlokans/mazo/internal/storage"
)

// Table names.
const (
	Config         = "Config"
	Users          = "Users"
	MasterWords    = "MasterWords"
	UserWordStates = "UserWordStates"
	Decks          = "Decks"
	StudySessions  = "StudySessions"
	Cards          = "Cards"
	Exercises      = "Exercises"
	Leads          = "Leads"
	Newsletter     = "Newsletter"
)

// TableDef is the declared shape of a table.
type TableDef struct {
	Name    string
	Columns []string
}

// Spec converts the definition into the storage form used when creating the table.
func (d TableDef) Spec() storage.TableSpec {
	return storage.TableSpec{Name: d.Name, Header: append([]string(nil), d.Columns...)}
}

var registry = []TableDef{
	{Name: Config, Columns: []string{"key", "value", "updatedAt"}},
	{Name: Users, Columns: []string{"id", "email", "name", "createdAt"}},
	{Name: MasterWords, Columns: []string{"id", "sourceText", "targetText"}},
	{Name: UserWordStates, Columns: []string{
		"userId", "wordId", "status", "srsInterval", "nextReviewAt", "easeFactor",
		"lastReviewedAt", "correctCount", "incorrectCount", "avgResponseMs",
	}},
	{Name: Decks, Columns: []string{"id", "userId", "createdAt", "size"}},
	{Name: StudySessions, Columns: []string{"id", "deckId", "userId", "startedAt"}},
	{Name: Cards, Columns: []string{"id", "categoryId", "front", "back", "example", "audioUrl", "createdAt"}},
	{Name: Exercises, Columns: []string{"id", "lessonId", "type", "prompt", "options", "answer", "explanation", "createdAt"}},
	{Name: Leads, Columns: []string{"phone", "name", "email", "reference", "createdAt"}},
	{Name: Newsletter, Columns: []string{"email", "subscribedAt"}},
}

// All returns every declared table in creation order.
func All() []TableDef {
	out := make([]TableDef, len(registry))
	copy(out, registry)
	return out
}

// Specs returns the storage specs for every declared table.
func Specs() []storage.TableSpec {
	specs := make([]storage.TableSpec, len(registry))
	for i, def := range registry {
		specs[i] = def.Spec()
	}
	return specs
}

// Lookup returns the definition of the named table.
func Lookup(name string) (TableDef, bool) {
	for _, def := range registry {
		if def.Name == name {
			return def, true
		}
	}
	return TableDef{}, false
}
