package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries an operator-facing message, a user-facing message and
// enough classification for the centralized handler to log and report it.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewValidationError classifies user input that fails validation. The
// caller re-prompts in the same state.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: fmt.Sprintf("❌ Invalid input. %s", msg),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewStoreError classifies a record store read or write failure.
func NewStoreError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("Record store error: %s", underlyingMsg),
		UserMessage: "⚠️ Temporary problem, please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewGatewayError classifies a transport failure, timeout or malformed
// response from the payment processor.
func NewGatewayError(operation string, cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     fmt.Sprintf("Payment gateway error: %s", operation),
		UserMessage: "❌ Unable to reach the payment service. Please try again later.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewGatewayUnavailableError indicates that no processor credentials are
// configured, so the payment feature is disabled.
func NewGatewayUnavailableError() *AppError {
	return &AppError{
		Code:        "E301",
		Message:     "payment gateway credentials are not configured",
		UserMessage: "❌ Payment system is not configured. Please contact the administrator.",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewNotFoundError classifies a selection that references an entity that
// no longer exists.
func NewNotFoundError(what string) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     fmt.Sprintf("%s not found", what),
		UserMessage: fmt.Sprintf("❌ %s not found.", what),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewStateError classifies an operation attempted from a conversation
// state that does not permit it.
func NewStateError(msg string) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     msg,
		UserMessage: "⚠️ That action is not available right now.",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       nil,
	}
}
