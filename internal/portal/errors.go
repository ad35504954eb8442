package portal

import (
	"errors"
	"fmt"

	"medtrack/internal/model"
	"medtrack/internal/transport"
)

var (
	// ErrUnauthenticated is returned before any network round-trip when a
	// protected call is made without an established session.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrRequestInFlight is returned when the same mutating action is
	// re-submitted while a previous attempt is still outstanding.
	ErrRequestInFlight = errors.New("request already in flight")
)

// AuthError means the identity service rejected the credentials or could
// not be reached. Message is surfaced to the user verbatim.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ValidationError is raised before any network call when required input
// is missing or malformed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ForbiddenError is the backend's authorization denial.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// NotFoundError covers both a missing entity and one the caller may not
// see; the backend deliberately does not distinguish the two.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// InvalidTransitionError is an illegal status change request: either the
// target is not a permitted outbound state, or the appointment is already
// in a terminal state.
type InvalidTransitionError struct {
	Target model.Status
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid transition to %q", e.Target)
}

// translate maps a transport failure onto the portal error taxonomy.
// Unmapped statuses pass through as *transport.APIError.
func translate(err error) error {
	var api *transport.APIError
	if !errors.As(err, &api) {
		return err
	}
	switch api.StatusCode {
	case 400:
		return &ValidationError{Message: api.Message}
	case 401:
		return ErrUnauthenticated
	case 403:
		return &ForbiddenError{Message: api.Message}
	case 404:
		return &NotFoundError{Message: api.Message}
	case 409:
		return &InvalidTransitionError{Reason: api.Message}
	}
	return err
}
