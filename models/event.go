package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Event представляет многодневное соревнование.
type Event struct {
	ID          int             `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description *string         `json:"description,omitempty" db:"description"`
	Venue       string          `json:"venue" db:"venue"`
	City        string          `json:"city" db:"city"`
	StartsAt    time.Time       `json:"starts_at" db:"starts_at"`
	EndsAt      time.Time       `json:"ends_at" db:"ends_at"`
	PrizePool   decimal.Decimal `json:"prize_pool" db:"prize_pool"`
	State       EventState      `json:"state" db:"state"`
	Winners     Winners         `json:"winners" db:"winners"`
	CreatedBy   int             `json:"created_by" db:"created_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// RegistrationOpenAt reports whether the registration window is still open at now.
// The window closes at EndsAt inclusive.
func (e *Event) RegistrationOpenAt(now time.Time) bool {
	return now.Before(e.EndsAt)
}

type Winner struct {
	Position int             `json:"position"`
	Name     string          `json:"name"`
	Prize    decimal.Decimal `json:"prize"`
}

// Winners хранится в колонке JSONB.
type Winners []Winner

func (w Winners) Value() (driver.Value, error) {
	if w == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w)
}

func (w *Winners) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*w = Winners{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Winners", src)
	}
	if len(data) == 0 {
		*w = Winners{}
		return nil
	}
	return json.Unmarshal(data, w)
}

var (
	errWinnerPosition  = errors.New("winner position must be a positive integer")
	errWinnerName      = errors.New("winner name is required")
	errWinnerPrize     = errors.New("winner prize must not be negative")
	errWinnersEmpty    = errors.New("at least one winner is required")
	errWinnerDuplicate = errors.New("winner positions must be unique")
)

// Validate checks every winner and the uniqueness of positions within the list.
func (w Winners) Validate() error {
	if len(w) == 0 {
		return errWinnersEmpty
	}
	seen := make(map[int]struct{}, len(w))
	for _, winner := range w {
		if winner.Position < 1 {
			return errWinnerPosition
		}
		if winner.Name == "" {
			return errWinnerName
		}
		if winner.Prize.IsNegative() {
			return errWinnerPrize
		}
		if _, dup := seen[winner.Position]; dup {
			return fmt.Errorf("%w: position %d appears more than once", errWinnerDuplicate, winner.Position)
		}
		seen[winner.Position] = struct{}{}
	}
	return nil
}
