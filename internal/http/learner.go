package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mazo/internal/entities"
)

type LearnerController struct {
	service LearnerService
}

func NewLearnerController(service LearnerService) *LearnerController {
	return &LearnerController{service: service}
}

// LearnerViewResponse is the envelope of GET /api/learner. An unknown user
// is a success with UserExists false and empty collections.
type LearnerViewResponse struct {
	Success    bool                 `json:"success"`
	UserExists bool                 `json:"userExists"`
	Data       entities.LearnerView `json:"data"`
}

// GetView returns the learner's words, decks and sessions.
// GET /api/learner?userId=
func (lc *LearnerController) GetView(c *gin.Context) {
	userID, ok := requireQuery(c, "userId")
	if !ok {
		return
	}
	view, exists, err := lc.service.LoadView(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "load learner view")
		return
	}
	c.JSON(http.StatusOK, LearnerViewResponse{Success: true, UserExists: exists, Data: view})
}

type registerUserRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RegisterUser adds a learner unless one with the same id exists.
// POST /api/users
func (lc *LearnerController) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, created, err := lc.service.RegisterUser(c.Request.Context(), req.ID, req.Email, req.Name)
	if err != nil {
		respondServiceError(c, err, "register user")
		return
	}
	if !created {
		respondOK(c, "user already registered", user)
		return
	}
	respondCreated(c, "user registered", user)
}

type enrollRequest struct {
	UserID  string   `json:"userId"`
	WordIDs []string `json:"wordIds"`
}

// Enroll creates progress rows for catalog words the learner has not started.
// POST /api/progress/enroll
func (lc *LearnerController) Enroll(c *gin.Context) {
	var req enrollRequest
	if !bindJSON(c, &req) {
		return
	}
	added, err := lc.service.EnrollWords(c.Request.Context(), req.UserID, req.WordIDs)
	if err != nil {
		respondServiceError(c, err, "enroll words")
		return
	}
	respondOK(c, "words enrolled", gin.H{"added": added})
}

type reviewRequest struct {
	UserID       string              `json:"userId"`
	WordID       string              `json:"wordId"`
	Correct      bool                `json:"correct"`
	ResponseMs   int                 `json:"responseMs"`
	Status       entities.WordStatus `json:"status"`
	SRSInterval  int                 `json:"srsInterval"`
	EaseFactor   float64             `json:"easeFactor"`
	NextReviewAt time.Time           `json:"nextReviewAt"`
	ReviewedAt   time.Time           `json:"reviewedAt"`
}

// RecordReview persists the outcome of one review.
// POST /api/progress/review
func (lc *LearnerController) RecordReview(c *gin.Context) {
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	state, err := lc.service.RecordReview(c.Request.Context(), strings.TrimSpace(req.UserID), strings.TrimSpace(req.WordID), entities.ReviewUpdate{
		Correct:      req.Correct,
		ResponseMs:   req.ResponseMs,
		Status:       req.Status,
		SRSInterval:  req.SRSInterval,
		EaseFactor:   req.EaseFactor,
		NextReviewAt: req.NextReviewAt,
		ReviewedAt:   req.ReviewedAt,
	})
	if err != nil {
		respondServiceError(c, err, "record review")
		return
	}
	respondOK(c, "review recorded", state)
}

type startSessionRequest struct {
	UserID string `json:"userId"`
	DeckID string `json:"deckId"`
}

// StartSession records the learner starting one of their decks.
// POST /api/sessions
func (lc *LearnerController) StartSession(c *gin.Context) {
	var req startSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := lc.service.StartSession(c.Request.Context(), req.UserID, req.DeckID)
	if err != nil {
		respondServiceError(c, err, "start session")
		return
	}
	respondCreated(c, "session started", session)
}
