package memrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories"
)

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.Transactor().WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		e := &models.Event{Title: "Spring Cup", StartsAt: time.Now(), EndsAt: time.Now().Add(time.Hour)}
		if err := s.Events().Create(ctx, exec, e); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	if n, _ := s.Events().Count(ctx); n != 0 {
		t.Fatalf("event survived rollback: count = %d", n)
	}
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := New()

	day := &models.EventDay{EventID: 1, Date: "2026-01-10", Status: models.DayStatusOngoing}
	if err := s.EventDays().Create(ctx, nil, day); err != nil {
		t.Fatal(err)
	}
	if err := s.EventDays().Create(ctx, nil, &models.EventDay{EventID: 1, Date: "2026-01-10"}); !errors.Is(err, repositories.ErrEventDayConflict) {
		t.Fatalf("day: got %v", err)
	}

	if err := s.Registrations().Create(ctx, nil, &models.EventRegistration{EventID: 1, TeamID: 7}); err != nil {
		t.Fatal(err)
	}
	if err := s.Registrations().Create(ctx, nil, &models.EventRegistration{EventID: 1, TeamID: 7}); !errors.Is(err, repositories.ErrRegistrationConflict) {
		t.Fatalf("registration: got %v", err)
	}

	a := &models.DayEntry{EventDayID: day.ID, BullPairID: 1, GameStatus: models.GameStatusNext}
	b := &models.DayEntry{EventDayID: day.ID, BullPairID: 2, GameStatus: models.GameStatusNext}
	for _, e := range []*models.DayEntry{a, b} {
		if ok, err := s.DayEntries().Upsert(ctx, nil, e); err != nil || !ok {
			t.Fatalf("upsert: %v %v", ok, err)
		}
	}
	if ok, err := s.DayEntries().Upsert(ctx, nil, &models.DayEntry{EventDayID: day.ID, BullPairID: 1}); err != nil || ok {
		t.Fatalf("re-upsert should be a no-op, got %v %v", ok, err)
	}

	now := time.Now()
	if err := s.DayEntries().UpdateStatus(ctx, nil, a.ID, models.GameStatusPlaying, &now); err != nil {
		t.Fatal(err)
	}
	if err := s.DayEntries().UpdateStatus(ctx, nil, b.ID, models.GameStatusPlaying, &now); !errors.Is(err, repositories.ErrEntryPlayingConflict) {
		t.Fatalf("playing: got %v", err)
	}
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.SeedTeam(models.Team{ID: 3, BullPairs: []models.BullPair{{ID: 1, BullA: "Raja", BullB: "Mani"}}})

	team, err := s.Teams().GetByID(ctx, nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	team.BullPairs[0].BullA = "changed"

	again, _ := s.Teams().GetByID(ctx, nil, 3)
	if again.BullPairs[0].BullA != "Raja" {
		t.Fatal("store was mutated through a returned value")
	}
}
