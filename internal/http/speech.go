package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SpeechController struct {
	synthesizer SpeechSynthesizer
}

func NewSpeechController(synthesizer SpeechSynthesizer) *SpeechController {
	return &SpeechController{synthesizer: synthesizer}
}

type synthesizeRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Synthesize proxies text to the speech API.
// POST /api/speech
func (sc *SpeechController) Synthesize(c *gin.Context) {
	var req synthesizeRequest
	if !bindJSON(c, &req) {
		return
	}
	audio, err := sc.synthesizer.Synthesize(c.Request.Context(), req.Text, req.Lang)
	if err != nil {
		respondServiceError(c, err, "synthesize speech")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "audioContent": audio})
}
