package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mazo/internal/content"
	"github.com/mrlokans/mazo/internal/entities"
)

type ContentController struct {
	service ContentService
}

func NewContentController(service ContentService) *ContentController {
	return &ContentController{service: service}
}

// AddCard appends a flashcard row.
// POST /api/cards
func (cc *ContentController) AddCard(c *gin.Context) {
	var in content.CardInput
	if !bindJSON(c, &in) {
		return
	}
	card, err := cc.service.AddCard(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err, "add card")
		return
	}
	respondCreated(c, "card added", card)
}

// AddExercise appends an exercise row.
// POST /api/exercises
func (cc *ContentController) AddExercise(c *gin.Context) {
	var in content.ExerciseInput
	if !bindJSON(c, &in) {
		return
	}
	exercise, err := cc.service.AddExercise(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err, "add exercise")
		return
	}
	respondCreated(c, "exercise added", exercise)
}

// DeleteCard removes a flashcard row.
// DELETE /api/cards?id=
func (cc *ContentController) DeleteCard(c *gin.Context) {
	cc.delete(c, entities.ContentKindCard)
}

// DeleteExercise removes an exercise row.
// DELETE /api/exercises?id=
func (cc *ContentController) DeleteExercise(c *gin.Context) {
	cc.delete(c, entities.ContentKindExercise)
}

func (cc *ContentController) delete(c *gin.Context, kind entities.ContentKind) {
	id, ok := requireQuery(c, "id")
	if !ok {
		return
	}
	if err := cc.service.Delete(c.Request.Context(), kind, id); err != nil {
		respondServiceError(c, err, "delete "+string(kind))
		return
	}
	respondOK(c, string(kind)+" deleted", nil)
}
