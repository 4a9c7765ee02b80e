package errors

import (
	stderrors "errors"
	"fmt"
)

// StreamError is the unified error type of the library.
type StreamError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *StreamError) Unwrap() error { return e.Cause }

// Is matches any *StreamError with the same code, so the package sentinels
// work with errors.Is regardless of message or details.
func (e *StreamError) Is(target error) bool {
	t, ok := target.(*StreamError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *StreamError) WithCause(cause error) *StreamError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *StreamError) WithDetail(key string, value any) *StreamError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new StreamError.
func New(code ErrorCode, message string) *StreamError {
	return &StreamError{Code: code, Message: message}
}

// Sentinels for errors.Is. They only carry a code.
var (
	ErrIllegalShape      = &StreamError{Code: ErrCodeIllegalShape}
	ErrUnsupportedStage  = &StreamError{Code: ErrCodeUnsupportedStage}
	ErrInvalidArgument   = &StreamError{Code: ErrCodeInvalidArgument}
	ErrStreamFailure     = &StreamError{Code: ErrCodeStreamFailure}
	ErrContractViolation = &StreamError{Code: ErrCodeContractViolation}
	ErrNullValue         = &StreamError{Code: ErrCodeNullValue}
	ErrCancelled         = &StreamError{Code: ErrCodeCancelled}
	ErrEngineResolution  = &StreamError{Code: ErrCodeEngineResolution}
	ErrInvalidConfig     = &StreamError{Code: ErrCodeInvalidConfig}
)

// --- Constructors ---

// IllegalShape creates an error for a stage that cannot be appended to a graph.
func IllegalShape(stage, shape, reason string) *StreamError {
	return &StreamError{
		Code:    ErrCodeIllegalShape,
		Message: fmt.Sprintf("cannot add %s stage to %s graph: %s", stage, shape, reason),
		Details: map[string]any{"stage": stage, "shape": shape},
	}
}

// UnsupportedStage creates an error for a stage an engine cannot run.
func UnsupportedStage(engine, stage string) *StreamError {
	return &StreamError{
		Code:    ErrCodeUnsupportedStage,
		Message: fmt.Sprintf("engine %s does not support %s stages", engine, stage),
		Details: map[string]any{"engine": engine, "stage": stage},
	}
}

// InvalidArgument creates an error for an unusable operator argument.
func InvalidArgument(operator, reason string) *StreamError {
	return &StreamError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("%s: %s", operator, reason),
		Details: map[string]any{"operator": operator},
	}
}

// StreamFailure wraps a failure raised inside operator logic.
func StreamFailure(stage string, cause error) *StreamError {
	return &StreamError{
		Code:    ErrCodeStreamFailure,
		Message: fmt.Sprintf("%s stage failed", stage),
		Details: map[string]any{"stage": stage},
		Cause:   cause,
	}
}

// Panicked converts a recovered panic value into a stream failure.
func Panicked(stage string, recovered any) *StreamError {
	if err, ok := recovered.(error); ok {
		return StreamFailure(stage, err)
	}
	return StreamFailure(stage, fmt.Errorf("panic: %v", recovered))
}

// ContractViolation creates an error for a broken signalling rule.
func ContractViolation(rule string) *StreamError {
	return &StreamError{
		Code:    ErrCodeContractViolation,
		Message: rule,
	}
}

// NullValue creates an error for a nil element where a value is required.
func NullValue(where string) *StreamError {
	return &StreamError{
		Code:    ErrCodeNullValue,
		Message: fmt.Sprintf("%s produced a nil value", where),
		Details: map[string]any{"source": where},
	}
}

// Cancelled creates an error for a result abandoned by cancellation.
func Cancelled(reason string) *StreamError {
	return &StreamError{
		Code:    ErrCodeCancelled,
		Message: reason,
	}
}

// EngineResolution creates an error for a failed engine lookup.
func EngineResolution(reason string) *StreamError {
	return &StreamError{
		Code:    ErrCodeEngineResolution,
		Message: reason,
	}
}

// InvalidConfig creates an error for a configuration that failed validation.
func InvalidConfig(message string) *StreamError {
	return &StreamError{
		Code:    ErrCodeInvalidConfig,
		Message: message,
	}
}

// --- Inspection ---

// IsStreamError checks if an error is a StreamError.
func IsStreamError(err error) bool {
	var se *StreamError
	return stderrors.As(err, &se)
}

// AsStreamError converts an error to a StreamError if possible.
func AsStreamError(err error) (*StreamError, bool) {
	var se *StreamError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// CodeOf returns the code of the first StreamError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if se, ok := AsStreamError(err); ok {
		return se.Code
	}
	return ""
}
