package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories"
)

type PerformanceInput struct {
	RockWeightKg   *float64 `json:"rock_weight_kg"`
	DistanceMeters *float64 `json:"distance_meters"`
	TimeSeconds    *float64 `json:"time_seconds"`
}

// ResultPublisher stores a ranked day sheet outside the database and returns its location.
type ResultPublisher interface {
	PublishDayResults(ctx context.Context, sheet models.DayResultSheet) (string, error)
}

type GameplayService interface {
	AddPairsToDay(ctx context.Context, dayID int, entries []models.NewDayEntryInput) ([]models.DayEntry, error)
	ListDayEntries(ctx context.Context, dayID int) ([]models.DayEntry, error)
	TransitionEntryStatus(ctx context.Context, entryID int, target models.GameStatus) (*models.DayEntry, error)
	RecordPerformance(ctx context.Context, entryID int, input PerformanceInput) (*models.DayEntry, error)
	CalculateDayResults(ctx context.Context, dayID int) ([]models.DayEntry, error)
}

type gameplayService struct {
	tx        repositories.Transactor
	dayRepo   repositories.EventDayRepository
	regRepo   repositories.RegistrationRepository
	entryRepo repositories.DayEntryRepository
	teamRepo  repositories.TeamRepository
	publisher ResultPublisher
	logger    *slog.Logger
	now       Clock
}

// NewGameplayService creates the pair-entry engine. publisher may be nil.
func NewGameplayService(
	tx repositories.Transactor,
	dayRepo repositories.EventDayRepository,
	regRepo repositories.RegistrationRepository,
	entryRepo repositories.DayEntryRepository,
	teamRepo repositories.TeamRepository,
	publisher ResultPublisher,
	logger *slog.Logger,
	clock Clock,
) GameplayService {
	return &gameplayService{
		tx:        tx,
		dayRepo:   dayRepo,
		regRepo:   regRepo,
		entryRepo: entryRepo,
		teamRepo:  teamRepo,
		publisher: publisher,
		logger:    logger,
		now:       clockOrDefault(clock),
	}
}

func (s *gameplayService) AddPairsToDay(ctx context.Context, dayID int, inputs []models.NewDayEntryInput) ([]models.DayEntry, error) {
	if len(inputs) == 0 {
		return nil, validationError("at least one bull pair entry is required")
	}
	for i, in := range inputs {
		if in.RegistrationID <= 0 || in.TeamID <= 0 || in.BullPairID <= 0 {
			return nil, validationError("entry %d: registration_id, team_id and bull_pair_id are required", i)
		}
	}

	var entries []models.DayEntry
	added := 0
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		day, err := s.dayRepo.GetForUpdate(ctx, exec, dayID)
		if err != nil {
			return err
		}
		if day.Status == models.DayStatusCompleted {
			return conflictError("cannot add pairs to a completed day")
		}

		teams := make(map[int]*models.Team)
		for _, in := range inputs {
			reg, err := s.regRepo.GetByID(ctx, exec, in.RegistrationID)
			if err != nil {
				return err
			}
			if reg.EventID != day.EventID {
				return validationError("registration %d does not belong to this event", reg.ID)
			}
			if reg.TeamID != in.TeamID {
				return forbiddenError(fmt.Sprintf("registration %d does not belong to team %d", reg.ID, in.TeamID))
			}
			if reg.Status != models.RegistrationApproved {
				return conflictError("registration %d is %s, only approved registrations can be scheduled", reg.ID, reg.Status)
			}
			if !reg.HasBullPair(in.BullPairID) {
				return validationError("bull pair %d is not part of registration %d", in.BullPairID, reg.ID)
			}

			team, ok := teams[in.TeamID]
			if !ok {
				if team, err = s.teamRepo.GetByID(ctx, exec, in.TeamID); err != nil {
					return err
				}
				teams[in.TeamID] = team
			}
			pair, ok := team.FindBullPair(in.BullPairID)
			if !ok {
				return validationError("bull pair %d is no longer in the roster of team %d", in.BullPairID, in.TeamID)
			}

			active, err := s.entryRepo.FindActiveOnOtherDay(ctx, exec, in.BullPairID, dayID)
			if err != nil {
				return err
			}
			if active != nil {
				return conflictError("bull pair %d is already %s on ongoing day %d", in.BullPairID, active.GameStatus, active.EventDayID)
			}

			inserted, err := s.entryRepo.Upsert(ctx, exec, &models.DayEntry{
				EventID:        day.EventID,
				EventDayID:     dayID,
				TeamID:         in.TeamID,
				RegistrationID: reg.ID,
				BullPairID:     in.BullPairID,
				Category:       pair.Category,
				GameStatus:     models.GameStatusNext,
			})
			if err != nil {
				return err
			}
			if inserted {
				added++
			}
		}

		entries, err = s.entryRepo.ListByDay(ctx, exec, dayID)
		return err
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("bull pairs added to day",
		slog.Int("event_day_id", dayID),
		slog.Int("requested", len(inputs)),
		slog.Int("added", added))
	return entries, nil
}

// ListDayEntries returns played entries first in playing order, then the ones still waiting.
func (s *gameplayService) ListDayEntries(ctx context.Context, dayID int) ([]models.DayEntry, error) {
	if _, err := s.dayRepo.GetByID(ctx, nil, dayID); err != nil {
		return nil, mapRepositoryError(err)
	}
	entries, err := s.entryRepo.ListByDay(ctx, nil, dayID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	sortForDisplay(entries)
	return entries, nil
}

var displayStatusOrder = map[models.GameStatus]int{
	models.GameStatusCompleted: 0,
	models.GameStatusPlaying:   1,
	models.GameStatusNext:      2,
}

func sortForDisplay(entries []models.DayEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.PlayedAt != nil && b.PlayedAt == nil:
			return true
		case a.PlayedAt == nil && b.PlayedAt != nil:
			return false
		case a.PlayedAt != nil && !a.PlayedAt.Equal(*b.PlayedAt):
			return a.PlayedAt.Before(*b.PlayedAt)
		case displayStatusOrder[a.GameStatus] != displayStatusOrder[b.GameStatus]:
			return displayStatusOrder[a.GameStatus] < displayStatusOrder[b.GameStatus]
		}
		return a.ID < b.ID
	})
}

// lockEntry reads the entry, locks its day and then the entry itself. The day lock comes first
// so that every mutation on one day is serialized in the same order.
func (s *gameplayService) lockEntry(ctx context.Context, exec repositories.SQLExecutor, entryID int) (*models.DayEntry, *models.EventDay, error) {
	entry, err := s.entryRepo.GetByID(ctx, exec, entryID)
	if err != nil {
		return nil, nil, err
	}
	day, err := s.dayRepo.GetForUpdate(ctx, exec, entry.EventDayID)
	if err != nil {
		return nil, nil, err
	}
	entry, err = s.entryRepo.GetForUpdate(ctx, exec, entryID)
	if err != nil {
		return nil, nil, err
	}
	return entry, day, nil
}

func (s *gameplayService) TransitionEntryStatus(ctx context.Context, entryID int, target models.GameStatus) (*models.DayEntry, error) {
	var updated *models.DayEntry
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		entry, day, err := s.lockEntry(ctx, exec, entryID)
		if err != nil {
			return err
		}
		if day.Status != models.DayStatusOngoing {
			return conflictError("pair status can only change while the day is ONGOING (day is %s)", day.Status)
		}
		if entry.ResultCalculated {
			return conflictError("results for this day are already calculated")
		}
		if !entry.GameStatus.CanTransitionTo(target) {
			return invalidTransitionError("pair entry", entry.GameStatus, target)
		}

		var playedAt *time.Time
		if target == models.GameStatusPlaying {
			playing, err := s.entryRepo.FindPlaying(ctx, exec, entry.EventDayID)
			if err != nil {
				return err
			}
			if playing != nil && playing.ID != entry.ID {
				return conflictError("another pair is currently playing")
			}
			elsewhere, err := s.entryRepo.FindPlayingOnOtherDay(ctx, exec, entry.BullPairID, entry.EventDayID)
			if err != nil {
				return err
			}
			if elsewhere != nil {
				return conflictError("bull pair %d is already PLAYING on ongoing day %d", entry.BullPairID, elsewhere.EventDayID)
			}
			if entry.PlayedAt == nil {
				now := s.now()
				playedAt = &now
			}
		}

		if err := s.entryRepo.UpdateStatus(ctx, exec, entryID, target, playedAt); err != nil {
			return err
		}
		updated, err = s.entryRepo.GetByID(ctx, exec, entryID)
		return err
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("pair entry status changed",
		slog.Int("entry_id", entryID),
		slog.Int("event_day_id", updated.EventDayID),
		slog.String("status", string(target)))
	return updated, nil
}

func (s *gameplayService) RecordPerformance(ctx context.Context, entryID int, input PerformanceInput) (*models.DayEntry, error) {
	if !validMeasure(input.RockWeightKg) || !validMeasure(input.DistanceMeters) || !validMeasure(input.TimeSeconds) {
		return nil, validationError("rock_weight_kg, distance_meters and time_seconds are required non-negative numbers")
	}
	perf := models.Performance{
		RockWeightKg:   input.RockWeightKg,
		DistanceMeters: input.DistanceMeters,
		TimeSeconds:    input.TimeSeconds,
	}

	var updated *models.DayEntry
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		entry, day, err := s.lockEntry(ctx, exec, entryID)
		if err != nil {
			return err
		}
		if entry.ResultCalculated {
			return conflictError("results for this day are already calculated")
		}
		if day.Status == models.DayStatusCompleted {
			return conflictError("performance cannot change once the day is completed")
		}
		if entry.GameStatus != models.GameStatusPlaying && entry.GameStatus != models.GameStatusCompleted {
			return conflictError("performance can only be recorded for a PLAYING or COMPLETED pair (pair is %s)", entry.GameStatus)
		}
		if err := s.entryRepo.UpdatePerformance(ctx, exec, entryID, perf); err != nil {
			return err
		}
		updated, err = s.entryRepo.GetByID(ctx, exec, entryID)
		return err
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("pair performance recorded", slog.Int("entry_id", entryID))
	return updated, nil
}

func (s *gameplayService) CalculateDayResults(ctx context.Context, dayID int) ([]models.DayEntry, error) {
	var (
		day    *models.EventDay
		ranked []models.DayEntry
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		var err error
		day, err = s.dayRepo.GetForUpdate(ctx, exec, dayID)
		if err != nil {
			return err
		}
		if day.Status == models.DayStatusCompleted {
			return conflictError("results are frozen once the day is completed")
		}

		entries, err := s.entryRepo.ListByDay(ctx, exec, dayID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return conflictError("no pairs are scheduled for this day")
		}
		pending := 0
		for _, e := range entries {
			if e.GameStatus != models.GameStatusCompleted {
				pending++
			}
		}
		if pending > 0 {
			return conflictError("all pairs must be COMPLETED before calculating results (%d pending)", pending)
		}

		if err := s.entryRepo.ResetResults(ctx, exec, dayID); err != nil {
			return err
		}
		for id, rank := range RankEntries(entries) {
			if err := s.entryRepo.AssignRank(ctx, exec, id, rank); err != nil {
				return err
			}
		}

		ranked, err = s.entryRepo.ListByDay(ctx, exec, dayID)
		return err
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("day results calculated", slog.Int("event_day_id", dayID), slog.Int("entries", len(ranked)))

	s.publishResults(ctx, day, ranked)
	return ranked, nil
}

// publishResults archives the committed ranking. Failures are logged and never undo the ranking.
func (s *gameplayService) publishResults(ctx context.Context, day *models.EventDay, ranked []models.DayEntry) {
	if s.publisher == nil {
		return
	}
	teams, err := loadTeams(ctx, s.teamRepo, teamIDsOf(ranked))
	if err != nil {
		s.logger.Warn("result sheet published without team names", slog.Int("event_day_id", day.ID), slog.Any("error", err))
	}
	sheet := models.DayResultSheet{
		EventID:      day.EventID,
		EventDayID:   day.ID,
		Date:         day.Date,
		CalculatedAt: s.now(),
		Rows:         BuildLeaderboard(ranked, teams),
	}
	location, err := s.publisher.PublishDayResults(ctx, sheet)
	if err != nil {
		s.logger.Error("failed to publish day results", slog.Int("event_day_id", day.ID), slog.Any("error", err))
		return
	}
	s.logger.Info("day results published", slog.Int("event_day_id", day.ID), slog.String("location", location))
}
