package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Backend and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Ordering and reconciliation errors
	ErrNotFound      = fmt.Errorf("not found")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrNoChange      = fmt.Errorf("no change")
	ErrAlreadyLinked = fmt.Errorf("already linked")
	ErrStaleSnapshot = fmt.Errorf("stale snapshot")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// NotFoundError reports an identity that does not exist in the collection it was looked up in.
//
// Matches [ErrNotFound] with [errors.Is].
type NotFoundError struct {
	Kind string // e.g. "item", "scanner", "assignment"
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("not found: %s", e.ID)
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFound returns a [NotFoundError] for the given kind and id.
func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvalidInputError reports malformed input. Err optionally carries a more specific sentinel such as [ErrNoChange].
//
// Matches [ErrInvalidInput] with [errors.Is].
type InvalidInputError struct {
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// NewInvalidInput returns an [InvalidInputError] with a formatted reason.
func NewInvalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// Error codes carried by REST error bodies and per-member link results.
const (
	CodeNotFound      = "not_found"
	CodeInvalidInput  = "invalid_input"
	CodeNoChange      = "no_change"
	CodeAlreadyLinked = "already_linked"
	CodeStaleSnapshot = "stale_snapshot"
	CodeInternal      = "internal"
)

// ErrorCode classifies err into one of the wire error codes.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyLinked):
		return CodeAlreadyLinked
	case errors.Is(err, ErrStaleSnapshot):
		return CodeStaleSnapshot
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrNoChange):
		return CodeNoChange
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	default:
		return CodeInternal
	}
}

// ErrorFromCode rebuilds an error that matches the sentinel for code, keeping message as its text.
func ErrorFromCode(code, message string) error {
	switch code {
	case CodeAlreadyLinked:
		return fmt.Errorf("%s: %w", message, ErrAlreadyLinked)
	case CodeStaleSnapshot:
		return fmt.Errorf("%s: %w", message, ErrStaleSnapshot)
	case CodeNotFound:
		return fmt.Errorf("%s: %w", message, ErrNotFound)
	case CodeInvalidInput:
		return &InvalidInputError{Reason: message}
	case CodeNoChange:
		return &InvalidInputError{Reason: message, Err: ErrNoChange}
	default:
		return fmt.Errorf("%w: %s", ErrAPIRequest, message)
	}
}
