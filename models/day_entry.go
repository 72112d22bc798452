package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Performance - результат заезда пары. Nil-поля означают «не записано».
type Performance struct {
	RockWeightKg   *float64 `json:"rock_weight_kg"`
	DistanceMeters *float64 `json:"distance_meters"`
	TimeSeconds    *float64 `json:"time_seconds"`
}

// DayEntry is one bull pair scheduled to play on one event day.
type DayEntry struct {
	ID               int                 `json:"id" db:"id"`
	EventID          int                 `json:"event_id" db:"event_id"`
	EventDayID       int                 `json:"event_day_id" db:"event_day_id"`
	TeamID           int                 `json:"team_id" db:"team_id"`
	RegistrationID   int                 `json:"registration_id" db:"registration_id"`
	BullPairID       int                 `json:"bull_pair_id" db:"bull_pair_id"`
	Category         Category            `json:"category" db:"-"`
	GameStatus       GameStatus          `json:"game_status" db:"game_status"`
	Performance      Performance         `json:"performance" db:"-"`
	PlayedAt         *time.Time          `json:"played_at,omitempty" db:"played_at"`
	Rank             *int                `json:"rank,omitempty" db:"rank"`
	ResultCalculated bool                `json:"result_calculated" db:"result_calculated"`
	IsWinner         bool                `json:"is_winner" db:"is_winner"`
	WinnerPrizeMoney decimal.NullDecimal `json:"winner_prize_money" db:"winner_prize_money"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
}

// NewDayEntryInput is one element of an add-pairs-to-day batch.
type NewDayEntryInput struct {
	RegistrationID int `json:"registration_id"`
	TeamID         int `json:"team_id"`
	BullPairID     int `json:"bull_pair_id"`
}
