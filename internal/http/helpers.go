package http

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/tables"
)

// Machine-readable error codes carried in ErrorResponse.Code.
const (
	CodeValidation         = "VALIDATION"
	CodeNotFound           = "NOT_FOUND"
	CodePreconditionFailed = "PRECONDITION_FAILED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeUpstream           = "UPSTREAM"
	CodePartialWrite       = "PARTIAL_WRITE"
	CodeConfiguration      = "CONFIGURATION"
	CodeSchema             = "SCHEMA"
	CodeInternal           = "INTERNAL"
)

// DefaultRetryAfter is sent with rate-limited responses.
const DefaultRetryAfter = 30 * time.Second

// --- Response Types ---

// ErrorResponse is the envelope of every failed request. Success is always false.
type ErrorResponse struct {
	Success    bool     `json:"success"`
	Error      string   `json:"error"`
	Code       string   `json:"code"`
	Field      string   `json:"field,omitempty"`
	MissingIDs []string `json:"missingIds,omitempty"`
	IntentID   string   `json:"intentId,omitempty"`
	Detail     string   `json:"detail,omitempty"`
}

// SuccessResponse is the envelope of a successful request.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// --- Error Response Helpers ---

func respondError(c *gin.Context, status int, resp ErrorResponse) {
	resp.Success = false
	c.AbortWithStatusJSON(status, resp)
}

// respondBadRequest sends a 400 naming the offending field.
func respondBadRequest(c *gin.Context, field, message string) {
	respondError(c, http.StatusBadRequest, ErrorResponse{
		Error: strings.TrimSpace(field + " " + message),
		Code:  CodeValidation,
		Field: field,
	})
}

// respondInternalError logs err and sends a 500 without exposing it.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	respondError(c, http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal})
}

// respondServiceError maps an error returned by a service onto the status
// and envelope the API promises for its class.
func respondServiceError(c *gin.Context, err error, context string) {
	var (
		validationErr   *apperr.ValidationError
		preconditionErr *apperr.PreconditionFailedError
		partialErr      *apperr.PartialWriteError
		configErr       *apperr.ConfigurationError
		schemaErr       *tables.SchemaMismatchError
	)

	switch {
	case errors.As(err, &validationErr):
		respondBadRequest(c, validationErr.Field, validationErr.Message)

	case errors.Is(err, apperr.ErrNotFound):
		respondError(c, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound})

	case errors.As(err, &partialErr):
		log.Printf("[HTTP] Partial write (%s): %v", context, err)
		message := "the operation was only partly applied and will be completed in the background"
		if partialErr.IntentID == "" {
			message = "the operation was only partly applied, repeat it to finish"
		}
		respondError(c, http.StatusInternalServerError, ErrorResponse{
			Error:    message,
			Code:     CodePartialWrite,
			IntentID: partialErr.IntentID,
			Detail:   err.Error(),
		})

	case errors.As(err, &preconditionErr):
		respondError(c, http.StatusInternalServerError, ErrorResponse{
			Error:      preconditionErr.Message,
			Code:       CodePreconditionFailed,
			MissingIDs: preconditionErr.MissingIDs,
		})

	case errors.As(err, &configErr):
		log.Printf("[HTTP] Configuration error (%s): %v", context, err)
		respondError(c, http.StatusInternalServerError, ErrorResponse{
			Error:  "service is not configured",
			Code:   CodeConfiguration,
			Detail: configErr.Key,
		})

	case errors.Is(err, apperr.ErrRateLimited):
		log.Printf("[HTTP] Rate limited (%s): %v", context, err)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(DefaultRetryAfter.Seconds()))))
		respondError(c, http.StatusServiceUnavailable, ErrorResponse{
			Error:  "upstream store is rate limiting requests, retry later",
			Code:   CodeRateLimited,
			Detail: err.Error(),
		})

	case errors.As(err, &schemaErr), errors.Is(err, tables.ErrSchemaMissing), errors.Is(err, storage.ErrTableNotFound):
		log.Printf("[HTTP] Workspace schema error (%s): %v", context, err)
		respondError(c, http.StatusInternalServerError, ErrorResponse{
			Error:  "workspace tables are missing or malformed",
			Code:   CodeSchema,
			Detail: err.Error(),
		})

	case errors.Is(err, apperr.ErrUpstream):
		log.Printf("[HTTP] Upstream error (%s): %v", context, err)
		respondError(c, http.StatusInternalServerError, ErrorResponse{
			Error:  "upstream store request failed",
			Code:   CodeUpstream,
			Detail: err.Error(),
		})

	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Message: message, Data: data})
}

// respondAccepted sends a 202 for work handed to the task queue.
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Success: true, Message: message, Data: data})
}

// --- Request Parsing ---

// bindJSON decodes the request body into v or responds with a 400.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondBadRequest(c, "body", "must be valid JSON: "+err.Error())
		return false
	}
	return true
}

// requireQuery returns a non-blank query parameter or responds with a 400.
func requireQuery(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		respondBadRequest(c, name, "is required")
		return "", false
	}
	return value, true
}

// parsePagination reads limit/offset query parameters with defaults and bounds.
func parsePagination(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err = strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
