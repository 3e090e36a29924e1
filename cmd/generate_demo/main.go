// Command generate_demo builds a demo workspace workbook with a seeded
// Spanish-English catalog, a demo learner, a deck and a few flashcards.
// Usage: go run cmd/generate_demo/main.go [-out path/to/demo.xlsx]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/mrlokans/mazo/internal/content"
	"github.com/mrlokans/mazo/internal/database"
	"github.com/mrlokans/mazo/internal/database/intents"
	"github.com/mrlokans/mazo/internal/decks"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/learner"
	"github.com/mrlokans/mazo/internal/storage/providers/xlsx"
	"github.com/mrlokans/mazo/internal/workspace"
)

const defaultDemoWorkbookPath = "./demo/demo.xlsx"

func main() {
	out := flag.String("out", defaultDemoWorkbookPath, "path to the demo workbook")
	flag.Parse()

	log.Printf("Generating demo workspace at %s...", *out)

	// Delete existing demo workbook to start fresh
	if err := os.Remove(*out); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo workbook: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	tmp, err := os.MkdirTemp("", "mazo-demo-*")
	if err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tmp)

	db, err := database.NewDatabase(filepath.Join(tmp, "intents.db"))
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	store := xlsx.NewClient(*out)
	repo := intents.NewRepository(db.DB)

	result, err := workspace.NewService(store, repo, nil).EnsureWorkspace(ctx, "demo@example.com", demoWords())
	if err != nil {
		log.Fatalf("Failed to provision workspace: %v", err)
	}
	log.Printf("Created %d tables, seeded %d words", len(result.CreatedTables), result.SeededWords)

	learners := learner.NewService(store)
	user, _, err := learners.RegisterUser(ctx, "demo-learner", "learner@example.com", "Demo Learner")
	if err != nil {
		log.Fatalf("Failed to register demo learner: %v", err)
	}

	wordIDs := []string{"es-perro", "es-gato", "es-casa", "es-libro", "es-agua"}
	if _, err := learners.EnrollWords(ctx, user.ID, wordIDs); err != nil {
		log.Fatalf("Failed to enroll words: %v", err)
	}

	deck, err := decks.NewService(store, repo, nil, nil).CreateDeck(ctx, decks.Request{
		UserID:  user.ID,
		WordIDs: wordIDs[:3],
	})
	if err != nil {
		log.Fatalf("Failed to create deck: %v", err)
	}
	log.Printf("Created deck %s for %s", deck.ID, user.ID)

	cards := content.NewService(store, nil)
	for _, in := range demoCards() {
		if _, err := cards.AddCard(ctx, in); err != nil {
			log.Printf("Failed to add card %s: %v", in.Front, err)
		}
	}

	log.Println("Demo workspace generated successfully!")
}

func demoWords() []entities.MasterWord {
	return []entities.MasterWord{
		{ID: "es-perro", SourceText: "perro", TargetText: "dog"},
		{ID: "es-gato", SourceText: "gato", TargetText: "cat"},
		{ID: "es-casa", SourceText: "casa", TargetText: "house"},
		{ID: "es-libro", SourceText: "libro", TargetText: "book"},
		{ID: "es-agua", SourceText: "agua", TargetText: "water"},
		{ID: "es-pan", SourceText: "pan", TargetText: "bread"},
		{ID: "es-manzana", SourceText: "manzana", TargetText: "apple"},
		{ID: "es-ciudad", SourceText: "ciudad", TargetText: "city"},
		{ID: "es-amigo", SourceText: "amigo", TargetText: "friend"},
		{ID: "es-tiempo", SourceText: "tiempo", TargetText: "time"},
	}
}

func demoCards() []content.CardInput {
	return []content.CardInput{
		{CategoryID: "animals", Front: "el perro", Back: "the dog", Example: "El perro corre en el parque."},
		{CategoryID: "animals", Front: "el gato", Back: "the cat", Example: "El gato duerme en la casa."},
		{CategoryID: "food", Front: "el pan", Back: "the bread", Example: "Compro pan cada mañana."},
	}
}
