package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/bullpair-events/repositories"
)

// Виды ошибок. Конкретные ошибки - *DomainError, у которых Unwrap возвращает вид,
// поэтому errors.Is(err, ErrConflict) работает для любого конфликта.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotFound           = errors.New("requested resource not found")
	ErrConflict           = errors.New("conflict with the current state")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
)

type DomainError struct {
	Kind    error
	Message string
	// Retryable marks transient contention that the caller may safely retry.
	Retryable bool
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

// ErrConcurrentUpdate is returned when a transaction could not get through contention
// within its retry budget.
var ErrConcurrentUpdate = &DomainError{
	Kind:      ErrConflict,
	Message:   "the resource is being modified concurrently, please retry",
	Retryable: true,
}

func IsRetryable(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Retryable
}

func validationError(format string, args ...interface{}) error {
	return &DomainError{Kind: ErrValidationFailed, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(what string) error {
	return &DomainError{Kind: ErrNotFound, Message: what + " not found"}
}

func conflictError(format string, args ...interface{}) error {
	return &DomainError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func forbiddenError(message string) error {
	return &DomainError{Kind: ErrForbiddenOperation, Message: message}
}

func invalidTransitionError[S ~string](entity string, current, target S) error {
	return &DomainError{
		Kind:    ErrInvalidTransition,
		Message: fmt.Sprintf("cannot move %s from %s to %s", entity, current, target),
	}
}

// mapRepositoryError translates storage sentinels into domain errors. Domain errors and
// unknown errors pass through unchanged.
func mapRepositoryError(err error) error {
	var de *DomainError
	if err == nil || errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrTxContention):
		return ErrConcurrentUpdate
	case errors.Is(err, repositories.ErrEventNotFound):
		return notFoundError("event")
	case errors.Is(err, repositories.ErrEventDayNotFound):
		return notFoundError("event day")
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return notFoundError("registration")
	case errors.Is(err, repositories.ErrDayEntryNotFound):
		return notFoundError("day entry")
	case errors.Is(err, repositories.ErrTeamNotFound):
		return notFoundError("team")
	case errors.Is(err, repositories.ErrRegistrationConflict):
		return conflictError("team is already registered for this event")
	case errors.Is(err, repositories.ErrEventDayConflict):
		return conflictError("an event day already exists for this date")
	case errors.Is(err, repositories.ErrEntryPlayingConflict):
		return conflictError("another pair is currently playing")
	case errors.Is(err, repositories.ErrEventHasDays):
		return conflictError("event cannot be deleted once event days exist")
	case errors.Is(err, repositories.ErrEventHasRegistrations):
		return conflictError("event cannot be deleted while registrations exist")
	}
	return err
}
