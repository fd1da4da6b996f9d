// Package agenterrors defines the error taxonomy shared across the agent
// runtime. Every operation that can fail returns one of these types (or
// wraps one), so callers can classify failures with errors.Is/errors.As
// instead of matching on strings.
package agenterrors

import (
	"errors"
	"fmt"
)

// Sentinel errors used with errors.Is for coarse-grained classification.
var (
	ErrValidation        = errors.New("validation_error")
	ErrConfig            = errors.New("config_error")
	ErrExecution         = errors.New("execution_error")
	ErrRouting           = errors.New("routing_error")
	ErrQueueOverflow     = errors.New("queue_overflow")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidAgent      = errors.New("invalid_agent")
	ErrMountFailed       = errors.New("mount_failed")
)

// Error is the common shape for every taxonomy entry: a classification
// type, a human message, and optional structured details.
type Error struct {
	Type    string
	Message string
	Details any
	sentinel error
}

func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is(err, agenterrors.ErrValidation) and friends to
// work against the concrete *Error values returned by the package.
func (e *Error) Unwrap() error { return e.sentinel }

// NewValidationError builds a validation_error carrying optional details
// (the offending value, typically).
func NewValidationError(message string, details any) *Error {
	return &Error{Type: "validation_error", Message: message, Details: details, sentinel: ErrValidation}
}

// NewConfigError builds a config_error, e.g. referencing an unregistered
// action or a missing module.
func NewConfigError(message string, details any) *Error {
	return &Error{Type: "config_error", Message: message, Details: details, sentinel: ErrConfig}
}

// NewExecutionError builds an execution_error for a runtime failure inside
// an action or the directive executor.
func NewExecutionError(message string, details any) *Error {
	return &Error{Type: "execution_error", Message: message, Details: details, sentinel: ErrExecution}
}

// NewRoutingError builds a routing_error for a signal with no matching route.
func NewRoutingError(message string, details any) *Error {
	return &Error{Type: "routing_error", Message: message, Details: details, sentinel: ErrRouting}
}

// NewQueueOverflowError builds a queue_overflow error, carrying the queue
// size/max/dropped details used in the emitted queue.overflow signal.
func NewQueueOverflowError(details any) *Error {
	return &Error{Type: "queue_overflow", Message: "queue is full", Details: details, sentinel: ErrQueueOverflow}
}

// InvalidTransitionDetails describes an illegal state-machine move.
type InvalidTransitionDetails struct {
	From string
	To   string
}

// NewInvalidTransitionError builds an invalid_transition error.
func NewInvalidTransitionError(from, to string) *Error {
	return &Error{
		Type:     "invalid_transition",
		Message:  fmt.Sprintf("cannot transition from %s to %s", from, to),
		Details:  InvalidTransitionDetails{From: from, To: to},
		sentinel: ErrInvalidTransition,
	}
}

// NewNotFoundError builds a not_found error for an unknown agent reference
// or instance-manager key.
func NewNotFoundError(message string, details any) *Error {
	return &Error{Type: "not_found", Message: message, Details: details, sentinel: ErrNotFound}
}

// NewInvalidAgentError builds an invalid_agent error, returned when a
// server is started with a nil agent.
func NewInvalidAgentError(message string) *Error {
	return &Error{Type: "invalid_agent", Message: message, sentinel: ErrInvalidAgent}
}

// NewMountFailedError builds a mount_failed error, wrapping the underlying
// cause returned by a lifecycle hook.
func NewMountFailedError(cause error) *Error {
	return &Error{Type: "mount_failed", Message: "mount failed", Details: cause, sentinel: ErrMountFailed}
}
