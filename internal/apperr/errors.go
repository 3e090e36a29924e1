// Package apperr defines the error taxonomy shared by the store, the services
// and the HTTP layer.
//
// Every error produced below the HTTP boundary either is, or wraps, one of the
// sentinel errors declared here, so callers classify failures with errors.Is
// and errors.As instead of string matching.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrUpstream           = errors.New("upstream unavailable")
	ErrRateLimited        = errors.New("upstream rate limit exceeded")
	ErrPartialWrite       = errors.New("partial write")
	ErrConfiguration      = errors.New("configuration error")
)

// ValidationError describes missing or malformed input for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation creates a ValidationError for a single field.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFound wraps ErrNotFound with the kind and identifier of the missing entity.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// PreconditionFailedError reports that an operation's required prior state is
// missing. MissingIDs names the offending identifiers.
type PreconditionFailedError struct {
	Op         string
	Message    string
	MissingIDs []string
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("%s: %s: [%s]", e.Op, e.Message, strings.Join(e.MissingIDs, ", "))
}

func (e *PreconditionFailedError) Unwrap() error { return ErrPreconditionFailed }

// UpstreamError wraps a failure reported by the tabular store or a third-party API.
type UpstreamError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstream, e.Err} }

// Upstream creates an UpstreamError.
func Upstream(op string, err error, retryable bool) *UpstreamError {
	return &UpstreamError{Op: op, Err: err, Retryable: retryable}
}

// RateLimited creates a retryable UpstreamError wrapping ErrRateLimited.
func RateLimited(op string, detail error) *UpstreamError {
	err := ErrRateLimited
	if detail != nil {
		err = fmt.Errorf("%w: %v", ErrRateLimited, detail)
	}
	return &UpstreamError{Op: op, Err: err, Retryable: true}
}

// IsRetryable reports whether err may succeed if the call is repeated after a backoff.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Retryable
	}
	return false
}

// PartialWriteError reports a multi-step write that committed some but not all
// of its steps. Step names the step that failed; IDs lists the identifiers
// needed to reconcile (deck id, word ids, ...).
type PartialWriteError struct {
	Op       string
	Step     string
	IntentID string
	IDs      []string
	Err      error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write in %s at step %s (intent %s, ids [%s]): %v",
		e.Op, e.Step, e.IntentID, strings.Join(e.IDs, ", "), e.Err)
}

func (e *PartialWriteError) Unwrap() []error { return []error{ErrPartialWrite, e.Err} }

// ConfigurationError reports a missing or invalid credential or setting.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Key, e.Message)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// MissingConfig creates a ConfigurationError for an unset key.
func MissingConfig(key string) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: "is required"}
}
