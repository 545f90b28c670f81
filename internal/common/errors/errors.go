// internal/common/errors/errors.go
// Package errors provides standardized error handling for the advisory
// orchestration engine.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Router / planning errors
	ErrCodePlanEmpty            ErrorCode = "PLAN_EMPTY"
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"

	// Specialist unit errors
	ErrCodeUnitTimeout         ErrorCode = "UNIT_TIMEOUT"
	ErrCodeUnitDataUnavailable ErrorCode = "UNIT_DATA_UNAVAILABLE"
	ErrCodeUnitInvalidInput    ErrorCode = "UNIT_INVALID_INPUT"

	// Context store errors
	ErrCodeContextUnavailable ErrorCode = "CONTEXT_UNAVAILABLE"
	ErrCodeContextCorrupt     ErrorCode = "CONTEXT_CORRUPT"
	ErrCodeSessionClosed      ErrorCode = "SESSION_CLOSED"

	// Decision scoring errors
	ErrCodeScoringInvalidInput ErrorCode = "SCORING_INVALID_INPUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Category  string                 `json:"category,omitempty"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewPlanEmptyError signals that the router could not produce a usable plan.
func NewPlanEmptyError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePlanEmpty,
		Message:   "Router produced no executable plan",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationFailedError wraps a failure of the injected classifier.
func NewClassificationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationFailed,
		Message:   "Query classification failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnitTimeoutError creates a retryable specialist timeout error.
func NewUnitTimeoutError(category string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnitTimeout,
		Category:  category,
		Message:   "Specialist unit exceeded its deadline",
		Details:   fmt.Sprintf("category: %s", category),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnitDataUnavailableError creates a retryable upstream-data error.
func NewUnitDataUnavailableError(category string, err error) *StandardError {
	details := fmt.Sprintf("category: %s", category)
	if err != nil {
		details = fmt.Sprintf("category: %s, error: %s", category, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeUnitDataUnavailable,
		Category:  category,
		Message:   "Specialist unit could not reach its data source",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnitInvalidInputError creates a non-retryable specialist input error.
func NewUnitInvalidInputError(category, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnitInvalidInput,
		Category:  category,
		Message:   "Specialist unit received invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextUnavailableError creates a fatal-for-the-turn store error.
func NewContextUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextUnavailable,
		Message:   "Context store is unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextCorruptError signals an undecodable persisted context.
func NewContextCorruptError(sessionID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextCorrupt,
		Message:   "Persisted context could not be decoded",
		Details:   fmt.Sprintf("sessionId: %s, error: %s", sessionID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionClosedError signals dispatch against a closed session.
func NewSessionClosedError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionClosed,
		Message:   "Session is closed; a reset is required before further queries",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringInvalidInputError records a malformed candidate or factor input.
// Scoring recovers by treating the offending factor as worst-case, so this
// error is informational rather than fatal.
func NewScoringInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringInvalidInput,
		Message:   "Malformed input passed to the decision engine",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the in-turn retry budget for an error code. Specialist
// timeouts and upstream-data failures are retried once with the same inputs;
// everything else degrades or fails immediately.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUnitTimeout, ErrCodeUnitDataUnavailable:
		return 1
	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// ==========================
// 4. Utility Functions
// ==========================

// AsStandard extracts a *StandardError from err, or wraps err as a
// data-unavailable specialist error for the given category.
func AsStandard(err error, category string) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewUnitDataUnavailableError(category, err)
}

// CodeOf returns the error code of err, or empty when err is not standard.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsUnitError reports whether err belongs to the specialist-unit taxonomy.
func IsUnitError(err error) bool {
	return strings.HasPrefix(string(CodeOf(err)), "UNIT_")
}

// IsContextError reports whether err belongs to the context-store taxonomy.
func IsContextError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeContextUnavailable, ErrCodeContextCorrupt:
		return true
	default:
		return false
	}
}

// IsPlanError reports whether err means the router could not plan the turn.
func IsPlanError(err error) bool {
	switch CodeOf(err) {
	case ErrCodePlanEmpty, ErrCodeClassificationFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the coarse category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PLAN") || strings.HasPrefix(codeStr, "CLASSIFICATION"):
		return "ROUTING"
	case strings.HasPrefix(codeStr, "UNIT"):
		return "SPECIALIST"
	case strings.HasPrefix(codeStr, "CONTEXT") || strings.HasPrefix(codeStr, "SESSION"):
		return "CONTEXT"
	case strings.HasPrefix(codeStr, "SCORING"):
		return "SCORING"
	default:
		return "OTHER"
	}
}
