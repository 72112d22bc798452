package services

import (
	"errors"
	"testing"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/shopspring/decimal"
)

func TestCreateDay(t *testing.T) {
	prize := decimal.NewFromInt(5000)
	negative := decimal.NewFromInt(-10)
	tests := []struct {
		name    string
		input   CreateDayInput
		wantErr error
	}{
		{name: "valid", input: CreateDayInput{Date: "2026-01-11", PrizeMoney: &prize}},
		{name: "zero prize", input: CreateDayInput{Date: "2026-01-11", PrizeMoney: &decimal.Zero}},
		{name: "bad date", input: CreateDayInput{Date: "11/01/2026", PrizeMoney: &prize}, wantErr: ErrValidationFailed},
		{name: "timestamp instead of date", input: CreateDayInput{Date: "2026-01-11T10:00:00Z", PrizeMoney: &prize}, wantErr: ErrValidationFailed},
		{name: "missing prize", input: CreateDayInput{Date: "2026-01-11"}, wantErr: ErrValidationFailed},
		{name: "negative prize", input: CreateDayInput{Date: "2026-01-11", PrizeMoney: &negative}, wantErr: ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			event := f.createEvent(t)
			day, err := f.days.CreateDay(ctx, event.ID, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if day.Status != models.DayStatusUpcoming || day.Date != tt.input.Date || day.EventID != event.ID {
				t.Fatalf("day = %+v", day)
			}
		})
	}
}

func TestCreateDayGating(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t)
	f.createDay(t, event.ID, "2026-01-11")

	prize := decimal.NewFromInt(100)
	if _, err := f.days.CreateDay(ctx, event.ID, CreateDayInput{Date: "2026-01-11", PrizeMoney: &prize}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate date: err = %v, want conflict", err)
	}
	if _, err := f.days.CreateDay(ctx, 404, CreateDayInput{Date: "2026-01-12", PrizeMoney: &prize}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown event: err = %v, want not found", err)
	}

	for _, s := range []models.EventState{models.EventStateOngoing, models.EventStateCompleted} {
		if _, err := f.events.TransitionState(ctx, event.ID, s); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := f.days.CreateDay(ctx, event.ID, CreateDayInput{Date: "2026-01-12", PrizeMoney: &prize}); !errors.Is(err, ErrConflict) {
		t.Fatalf("completed event: err = %v, want conflict", err)
	}

	days, err := f.days.ListDays(ctx, event.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 {
		t.Fatalf("days = %d, want 1", len(days))
	}
}

func TestDayStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []models.DayStatus
		wantErr error
	}{
		{name: "full lifecycle", path: []models.DayStatus{models.DayStatusOngoing, models.DayStatusCompleted}},
		{name: "skip ongoing", path: []models.DayStatus{models.DayStatusCompleted}, wantErr: ErrInvalidTransition},
		{name: "reopen", path: []models.DayStatus{models.DayStatusOngoing, models.DayStatusCompleted, models.DayStatusOngoing}, wantErr: ErrInvalidTransition},
		{name: "repeat", path: []models.DayStatus{models.DayStatusOngoing, models.DayStatusOngoing}, wantErr: ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			event := f.createEvent(t)
			day := f.createDay(t, event.ID, "2026-01-11")
			var err error
			for _, s := range tt.path {
				if _, err = f.days.TransitionDayStatus(ctx, day.ID, s); err != nil {
					break
				}
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
