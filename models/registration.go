package models

import "time"

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationApproved RegistrationStatus = "APPROVED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
		return true
	}
	return false
}

// EventRegistration связывает команду с событием (одна запись на пару event/team).
type EventRegistration struct {
	ID              int                `json:"id" db:"id"`
	EventID         int                `json:"event_id" db:"event_id"`
	TeamID          int                `json:"team_id" db:"team_id"`
	RegisteredBy    int                `json:"registered_by" db:"registered_by"`
	CaptainName     string             `json:"captain_name" db:"captain_name"`
	BullPairIDs     []int              `json:"bull_pair_ids" db:"bull_pair_ids"`
	MemberIDs       []int              `json:"member_ids" db:"member_ids"`
	Status          RegistrationStatus `json:"status" db:"status"`
	RejectionReason *string            `json:"rejection_reason,omitempty" db:"rejection_reason"`
	AdminNotes      *string            `json:"admin_notes,omitempty" db:"admin_notes"`
	DecidedBy       *int               `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt       *time.Time         `json:"decided_at,omitempty" db:"decided_at"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" db:"updated_at"`

	// Порядковый номер среди одобренных участников (заполняется сервисом).
	RegistrationOrder int `json:"registration_order,omitempty" db:"-"`
}

// HasBullPair reports whether the pair was selected in this registration.
func (r *EventRegistration) HasBullPair(bullPairID int) bool {
	for _, id := range r.BullPairIDs {
		if id == bullPairID {
			return true
		}
	}
	return false
}
