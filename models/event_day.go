package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date token accepted for event days.
const DateLayout = "2006-01-02"

type EventDay struct {
	ID         int             `json:"id" db:"id"`
	EventID    int             `json:"event_id" db:"event_id"`
	Date       string          `json:"date" db:"day_date"`
	PrizeMoney decimal.Decimal `json:"prize_money" db:"prize_money"`
	Status     DayStatus       `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// ParseDayDate accepts only a strict YYYY-MM-DD token naming a real calendar day.
func ParseDayDate(s string) (time.Time, bool) {
	if len(s) != len(DateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
