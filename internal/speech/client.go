// Package speech forwards text to the Google Cloud Text-to-Speech REST API
// and returns the synthesized audio untouched.
package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mrlokans/mazo/internal/apperr"
)

const (
	DefaultBaseURL = "https://texttospeech.googleapis.com"
	// APIKeyEnv names the setting holding the API key.
	APIKeyEnv = "TTS_API_KEY"

	opSynthesize = "text_synthesize"
	maxTextLen   = 5000
)

// Voice selects the voice used for a language.
type Voice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

var voices = map[string]Voice{
	"es": {LanguageCode: "es-ES", Name: "es-ES-Standard-A"},
	"en": {LanguageCode: "en-US", Name: "en-US-Standard-C"},
	"fr": {LanguageCode: "fr-FR", Name: "fr-FR-Standard-A"},
	"de": {LanguageCode: "de-DE", Name: "de-DE-Standard-A"},
	"it": {LanguageCode: "it-IT", Name: "it-IT-Standard-A"},
	"pt": {LanguageCode: "pt-BR", Name: "pt-BR-Standard-A"},
}

// Languages returns the supported language codes, sorted.
func Languages() []string {
	out := make([]string, 0, len(voices))
	for lang := range voices {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

type Client struct {
	http   *resty.Client
	apiKey string
}

// NewClient creates a client against baseURL (DefaultBaseURL when empty). A
// blank apiKey is accepted here and reported as a configuration error on the
// first Synthesize call, so the rest of the service can start without it.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	return &Client{http: c, apiKey: apiKey}
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice       Voice `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Synthesize returns the base64-encoded MP3 audio for text spoken in lang.
func (c *Client) Synthesize(ctx context.Context, text, lang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.Validation("text", "is required")
	}
	if len(text) > maxTextLen {
		return "", apperr.Validation("text", fmt.Sprintf("must be at most %d bytes", maxTextLen))
	}
	voice, ok := voices[strings.ToLower(strings.TrimSpace(lang))]
	if !ok {
		return "", apperr.Validation("lang", fmt.Sprintf("must be one of [%s]", strings.Join(Languages(), " ")))
	}
	if c.apiKey == "" {
		return "", apperr.MissingConfig(APIKeyEnv)
	}

	var body synthesizeRequest
	body.Input.Text = text
	body.Voice = voice
	body.AudioConfig.AudioEncoding = "MP3"

	var out synthesizeResponse
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(&body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/text:synthesize")
	if err != nil {
		retryable := !errors.Is(err, context.Canceled)
		return "", apperr.Upstream(opSynthesize, err, retryable)
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusTooManyRequests:
		return "", apperr.RateLimited(opSynthesize, errors.New(apiErr.Error.Message))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "", &apperr.ConfigurationError{Key: APIKeyEnv, Message: "was rejected: " + apiErr.Error.Message}
	case status >= 400:
		return "", apperr.Upstream(opSynthesize, fmt.Errorf("status %d: %s", status, apiErr.Error.Message), status >= 500)
	}
	if out.AudioContent == "" {
		return "", apperr.Upstream(opSynthesize, errors.New("empty audio content"), true)
	}
	return out.AudioContent, nil
}
