package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/quill-social/quill/pkg/api"
	"github.com/quill-social/quill/pkg/swipe"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	// Authentication errors
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeForbidden      ErrorType = "forbidden"
	ErrorTypeSessionExpired ErrorType = "session_expired"

	// Validation errors
	ErrorTypeValidation ErrorType = "validation"

	// Server errors
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeConflict  ErrorType = "conflict"
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// Discovery errors
	ErrorTypeDailyLimit ErrorType = "daily_limit"
	ErrorTypeExhausted  ErrorType = "exhausted"
	ErrorTypeFollow     ErrorType = "follow"

	ErrorTypeUnknown ErrorType = "unknown"
)

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
	RetryAfter int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, nil)
	err.Suggestion = "Check your internet connection and the api.base_url setting."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError() *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", nil)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// AuthError creates an authentication error
func AuthError(message string) *CLIError {
	err := NewCLIError(ErrorTypeAuth, message, nil)
	err.Suggestion = "Try logging in again with 'quill auth login'"
	return err
}

// NotLoggedInError is returned by commands that need a session
func NotLoggedInError() *CLIError {
	return AuthError("Not logged in")
}

// SessionExpiredError creates a session expired error
func SessionExpiredError() *CLIError {
	err := NewCLIError(ErrorTypeSessionExpired, "Your session has expired", nil)
	err.Suggestion = "Run 'quill auth login' to refresh your session."
	return err
}

// UnauthorizedError creates an unauthorized error
func UnauthorizedError() *CLIError {
	err := NewCLIError(ErrorTypeUnauthorized, "You don't have permission to perform this action", nil)
	err.Suggestion = "Make sure you're logged in."
	return err
}

// ForbiddenError creates a forbidden error
func ForbiddenError() *CLIError {
	err := NewCLIError(ErrorTypeForbidden, "Access denied", nil)
	err.Suggestion = "Row level security rejected the request for this account."
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	message := fmt.Sprintf("Validation error: %s - %s", field, reason)
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// ServerError creates a server error
func ServerError() *CLIError {
	err := NewCLIError(ErrorTypeServer, "Server error", nil)
	err.Suggestion = "The server encountered an error. Try again in a few moments."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	return NewCLIError(ErrorTypeNotFound,
		fmt.Sprintf("%s not found: %s", resourceType, identifier),
		nil)
}

// RateLimitError creates a rate limit error
func RateLimitError(retryAfter int) *CLIError {
	err := NewCLIError(ErrorTypeRateLimit,
		"Rate limit exceeded. Too many requests.",
		nil)
	err.RetryAfter = retryAfter
	err.Suggestion = fmt.Sprintf("Please wait %d seconds before trying again.", retryAfter)
	return err
}

// ConflictError creates a conflict error
func ConflictError(message string) *CLIError {
	err := NewCLIError(ErrorTypeConflict, message, nil)
	err.Suggestion = "This resource already exists."
	return err
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	if c := categorizeDiscovery(err); c != nil {
		return c
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return categorizeAPI(apiErr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimeoutError()
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NetworkError("Could not connect to server. Make sure it's running.")
	}

	// resty wraps transport errors in url.Error strings; fall back to text
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused"), strings.Contains(errMsg, "no such host"):
		return NetworkError("Could not connect to server. Make sure it's running.")
	case strings.Contains(errMsg, "timeout"):
		return TimeoutError()
	default:
		return NewCLIError(ErrorTypeUnknown, errMsg, err)
	}
}

func categorizeDiscovery(err error) *CLIError {
	switch {
	case errors.Is(err, swipe.ErrDailyLimitReached):
		e := NewCLIError(ErrorTypeDailyLimit, "You've used all of today's swipes", err)
		e.Suggestion = "Come back tomorrow, or run 'quill discover reset' to start over."
		return e
	case errors.Is(err, swipe.ErrExhausted):
		e := NewCLIError(ErrorTypeExhausted, "No more profiles to discover", err)
		e.Suggestion = "Passed profiles return after their cooldown ends."
		return e
	case errors.Is(err, swipe.ErrFollowFailed):
		e := NewCLIError(ErrorTypeFollow, "Could not follow this profile", err)
		e.Suggestion = "The profile is still current. Try again."
		return e
	}
	return nil
}

func categorizeAPI(apiErr *api.APIError) *CLIError {
	var c *CLIError
	switch {
	case apiErr.StatusCode == 401:
		if apiErr.Code == "invalid_grant" {
			c = AuthError("Invalid email or password")
		} else {
			c = SessionExpiredError()
		}
	case apiErr.StatusCode == 403:
		c = ForbiddenError()
	case apiErr.StatusCode == 404:
		c = NewCLIError(ErrorTypeNotFound, apiErr.Message, nil)
	case apiErr.StatusCode == 409:
		c = ConflictError(apiErr.Message)
	case apiErr.StatusCode == 429:
		c = RateLimitError(60)
	case apiErr.StatusCode >= 500:
		c = ServerError()
	case apiErr.StatusCode == 400 && apiErr.Code == "invalid_grant":
		c = AuthError("Invalid email or password")
	default:
		c = NewCLIError(ErrorTypeValidation, apiErr.Message, nil)
	}
	c.Cause = apiErr
	c.StatusCode = apiErr.StatusCode
	return c
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	if cliErr.Type == ErrorTypeRateLimit && cliErr.RetryAfter > 0 {
		sb.WriteString(fmt.Sprintf("Retry in: %d seconds\n", cliErr.RetryAfter))
	}

	return sb.String()
}
