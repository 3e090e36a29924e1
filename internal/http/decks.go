package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mazo/internal/decks"
	"github.com/mrlokans/mazo/internal/entities"
)

type DecksController struct {
	composer DeckComposer
}

func NewDecksController(composer DeckComposer) *DecksController {
	return &DecksController{composer: composer}
}

type createDeckRequest struct {
	UserID   string              `json:"userId"`
	WordIDs  []string            `json:"wordIds"`
	DeckSize int                 `json:"deckSize"`
	Status   entities.WordStatus `json:"status"`
}

// CreateDeck composes a deck and moves its words to the target status.
// POST /api/decks
func (dc *DecksController) CreateDeck(c *gin.Context) {
	var req createDeckRequest
	if !bindJSON(c, &req) {
		return
	}

	deck, err := dc.composer.CreateDeck(c.Request.Context(), decks.Request{
		UserID:  req.UserID,
		WordIDs: req.WordIDs,
		Size:    req.DeckSize,
		Status:  req.Status,
	})
	if err != nil {
		respondServiceError(c, err, "create deck")
		return
	}
	respondCreated(c, fmt.Sprintf("deck %s created with %d words", deck.ID, len(req.WordIDs)), deck)
}
