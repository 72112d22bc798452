package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrEventHasDays          = errors.New("event is referenced by event days")
	ErrEventHasRegistrations = errors.New("event is referenced by registrations")
	ErrEventDayNotFound      = errors.New("event day not found")
	ErrEventDayConflict      = errors.New("an event day already exists for this date")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrRegistrationConflict  = errors.New("team is already registered for this event")
	ErrDayEntryNotFound      = errors.New("day entry not found")
	ErrEntryPlayingConflict  = errors.New("another pair is currently playing")
	ErrTeamNotFound          = errors.New("team not found")

	// ErrTxContention is returned once the retry budget for serialization failures,
	// deadlocks or lock timeouts is exhausted.
	ErrTxContention = errors.New("transaction aborted by concurrent update")
)

const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqLockNotAvailable     = "55P03"
)

// Имена ограничений из db/migrations.
const (
	constraintRegistrationUnique  = "event_registrations_event_id_team_id_key"
	constraintDayDateUnique       = "event_days_event_id_day_date_key"
	constraintOnePlayingPerDay    = "day_entries_one_playing_per_day"
	constraintDayEventFK          = "event_days_event_id_fkey"
	constraintRegistrationEventFK = "event_registrations_event_id_fkey"
)

// classifyError maps storage-level violations onto repository sentinels. Unknown errors are
// returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		switch pqErr.Constraint {
		case constraintRegistrationUnique:
			return ErrRegistrationConflict
		case constraintDayDateUnique:
			return ErrEventDayConflict
		case constraintOnePlayingPerDay:
			return ErrEntryPlayingConflict
		}
	case pqForeignKeyViolation:
		switch pqErr.Constraint {
		case constraintDayEventFK:
			return ErrEventHasDays
		case constraintRegistrationEventFK:
			return ErrEventHasRegistrations
		}
	}
	return err
}

// IsContention reports whether err is a transient failure worth retrying the whole transaction for.
func IsContention(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case pqSerializationFailure, pqDeadlockDetected, pqLockNotAvailable:
		return true
	}
	return false
}
