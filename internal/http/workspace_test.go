package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mazo/internal/tables"
)

func TestProvisionWorkspace_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	body := gin.H{
		"email":       "owner@example.com",
		"masterWords": []gin.H{{"sourceText": "perro", "targetText": "dog"}},
	}
	w := env.do(t, http.MethodPost, "/api/workspace", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode(t, w)["data"].(map[string]any)
	assert.Len(t, result["createdTables"], len(tables.All()))
	assert.Equal(t, float64(1), result["seededWords"])

	w = env.do(t, http.MethodPost, "/api/workspace", body)
	require.Equal(t, http.StatusOK, w.Code)
	result = decode(t, w)["data"].(map[string]any)
	assert.Empty(t, result["createdTables"])
	assert.Equal(t, float64(0), result["seededWords"])
	assert.Len(t, env.mem.Rows(tables.MasterWords), 2)
}

func TestProvisionWorkspace_InvalidEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/workspace", gin.H{"email": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeValidation, decodeError(t, w).Code)
}
