package models

import "time"

// DayResultSheet is the ranked snapshot of one event day, published after result calculation.
type DayResultSheet struct {
	EventID      int              `json:"event_id"`
	EventDayID   int              `json:"event_day_id"`
	Date         string           `json:"date"`
	CalculatedAt time.Time        `json:"calculated_at"`
	Rows         []LeaderboardRow `json:"rows"`
}
