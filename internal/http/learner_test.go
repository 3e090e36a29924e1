package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearnerFlow(t *testing.T) {
	env := newTestEnv(t)
	env.provision(t)

	w := env.do(t, http.MethodPost, "/api/users", gin.H{"id": "u1", "email": "ana@example.com", "name": "Ana"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/users", gin.H{"id": "u1", "email": "ana@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user already registered", decode(t, w)["message"])

	w = env.do(t, http.MethodPost, "/api/progress/enroll", gin.H{"userId": "u1", "wordIds": []string{"w1", "w2"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := decode(t, w)["data"].(map[string]any)["added"].([]any)
	assert.Len(t, added, 2)

	w = env.do(t, http.MethodPost, "/api/decks", gin.H{"userId": "u1", "wordIds": []string{"w1"}, "deckSize": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	deck := decode(t, w)["data"].(map[string]any)
	deckID := deck["id"].(string)
	assert.True(t, strings.HasPrefix(deckID, "Mazo-0-"), deckID)

	w = env.do(t, http.MethodPost, "/api/sessions", gin.H{"userId": "u1", "deckId": deckID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/progress/review", gin.H{
		"userId": "u1", "wordId": "w2", "correct": true, "responseMs": 1200, "status": "Learning", "srsInterval": 1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	state := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(1), state["correctCount"])
	assert.Equal(t, "Learning", state["status"])

	w = env.do(t, http.MethodGet, "/api/learner?userId=u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["userExists"])
	view := body["data"].(map[string]any)
	assert.Len(t, view["words"], 2)
	assert.Len(t, view["decks"], 1)
	assert.Len(t, view["sessions"], 1)

	for _, raw := range view["words"].([]any) {
		word := raw.(map[string]any)
		if word["wordId"] == "w1" {
			assert.Equal(t, "Learning", word["status"], "deck words move to Learning")
			assert.Equal(t, "perro", word["sourceText"])
		}
	}
}

func TestGetLearnerView_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	env.provision(t)

	w := env.do(t, http.MethodGet, "/api/learner?userId=ghost", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["userExists"])
	view := body["data"].(map[string]any)
	assert.Empty(t, view["words"])
	assert.Empty(t, view["decks"])
	assert.Empty(t, view["sessions"])
}

func TestGetLearnerView_RequiresUserID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/learner", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, CodeValidation, resp.Code)
	assert.Equal(t, "userId", resp.Field)
}

func TestGetLearnerView_UnprovisionedWorkspace(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/learner?userId=u1", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, CodeSchema, decodeError(t, w).Code)
}

func TestRegisterUser_InvalidEmail(t *testing.T) {
	env := newTestEnv(t)
	env.provision(t)

	w := env.do(t, http.MethodPost, "/api/users", gin.H{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decodeError(t, w).Field)
}

func TestEnroll_UnknownWords(t *testing.T) {
	env := newTestEnv(t)
	env.provision(t)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/users", gin.H{"id": "u1", "email": "ana@example.com"}).Code)

	w := env.do(t, http.MethodPost, "/api/progress/enroll", gin.H{"userId": "u1", "wordIds": []string{"w1", "w404"}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, CodePreconditionFailed, resp.Code)
	assert.Equal(t, []string{"w404"}, resp.MissingIDs)
}

func TestRecordReview_NotEnrolled(t *testing.T) {
	env := newTestEnv(t)
	env.provision(t)

	w := env.do(t, http.MethodPost, "/api/progress/review", gin.H{"userId": "u1", "wordId": "w1", "correct": false})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, w).Code)
}

func TestStartSession_UnknownDeck(t *testing.T) {
	env := newTestEnv(t)
	env.provision(t)

	w := env.do(t, http.MethodPost, "/api/sessions", gin.H{"userId": "u1", "deckId": "Mazo-0-deadbeef"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/users", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, CodeValidation, resp.Code)
	assert.Equal(t, "body", resp.Field)
}
