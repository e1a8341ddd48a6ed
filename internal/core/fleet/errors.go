package fleet

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrMissingCredentials is returned when the client is constructed
	// without an access key id or secret access key.
	ErrMissingCredentials = errors.New("access key id and secret access key are required")

	// ErrNotFound is returned when a named stack, app, or resource is absent.
	ErrNotFound = errors.New("resource not found")

	// ErrConfigNotFound is returned when the expected custom environment is
	// missing from the stack metadata blob.
	ErrConfigNotFound = errors.New("custom environment not found in stack metadata")

	// ErrValidation is returned when a required argument is missing.
	ErrValidation = errors.New("invalid argument")

	// ErrNoInstances is returned when the resolved target instance set is
	// empty after filtering for online status.
	ErrNoInstances = errors.New("no online instances in target layers")

	// ErrDeploymentFailed is returned when a job reaches a non-successful
	// terminal status.
	ErrDeploymentFailed = errors.New("deployment failed")

	// ErrDeploymentTimeout is returned when the completion deadline is
	// exceeded while polling.
	ErrDeploymentTimeout = errors.New("deployment timed out")
)

// Error wraps a sentinel with the operation and identifiers it concerns.
type Error struct {
	Op      string // Operation that failed (e.g., "GetStack")
	Entity  string // Entity type (e.g., "stack", "app")
	Name    string // Entity name or id if applicable
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %s %q: %s", e.Op, e.Entity, e.Name, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error.
func NewError(op, entity, name, message string, err error) *Error {
	return &Error{
		Op:      op,
		Entity:  entity,
		Name:    name,
		Message: message,
		Err:     err,
	}
}
