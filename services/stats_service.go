package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories"
)

type StatsFilter struct {
	EventID    *int
	RankedOnly bool
}

type StatsService interface {
	PairStats(ctx context.Context, filter StatsFilter) ([]models.PairStats, error)
	TeamStats(ctx context.Context, filter StatsFilter) ([]models.TeamStats, error)
	DayLeaderboard(ctx context.Context, dayID int) ([]models.LeaderboardRow, error)
	Dashboard(ctx context.Context) (models.DashboardStats, error)
}

type statsService struct {
	eventRepo repositories.EventRepository
	dayRepo   repositories.EventDayRepository
	entryRepo repositories.DayEntryRepository
	teamRepo  repositories.TeamRepository
}

func NewStatsService(
	eventRepo repositories.EventRepository,
	dayRepo repositories.EventDayRepository,
	entryRepo repositories.DayEntryRepository,
	teamRepo repositories.TeamRepository,
) StatsService {
	return &statsService{
		eventRepo: eventRepo,
		dayRepo:   dayRepo,
		entryRepo: entryRepo,
		teamRepo:  teamRepo,
	}
}

func (s *statsService) pairStats(ctx context.Context, filter StatsFilter) ([]models.PairStats, error) {
	entries, err := s.entryRepo.ListCompleted(ctx, repositories.EntryStatsFilter{
		EventID:    filter.EventID,
		RankedOnly: filter.RankedOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load completed entries: %w", err)
	}
	pairs := AggregatePairs(entries)

	teams, err := loadTeams(ctx, s.teamRepo, teamIDsOf(entries))
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	for i := range pairs {
		team, ok := teams[pairs[i].TeamID]
		if !ok {
			continue
		}
		pairs[i].TeamName = team.Name
		if pair, ok := team.FindBullPair(pairs[i].BullPairID); ok {
			pairs[i].PairName = pair.DisplayName()
		}
	}
	return pairs, nil
}

func (s *statsService) PairStats(ctx context.Context, filter StatsFilter) ([]models.PairStats, error) {
	return s.pairStats(ctx, filter)
}

func (s *statsService) TeamStats(ctx context.Context, filter StatsFilter) ([]models.TeamStats, error) {
	pairs, err := s.pairStats(ctx, filter)
	if err != nil {
		return nil, err
	}
	return AggregateTeams(pairs), nil
}

func (s *statsService) DayLeaderboard(ctx context.Context, dayID int) ([]models.LeaderboardRow, error) {
	if _, err := s.dayRepo.GetByID(ctx, nil, dayID); err != nil {
		return nil, mapRepositoryError(err)
	}
	entries, err := s.entryRepo.ListCompleted(ctx, repositories.EntryStatsFilter{EventDayID: &dayID})
	if err != nil {
		return nil, fmt.Errorf("failed to load day entries: %w", err)
	}
	teams, err := loadTeams(ctx, s.teamRepo, teamIDsOf(entries))
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	return BuildLeaderboard(entries, teams), nil
}

func (s *statsService) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	teams, pairs, err := s.teamRepo.CountActive(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	events, err := s.eventRepo.Count(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	return models.DashboardStats{
		TeamsTotal:  teams,
		BullsTotal:  pairs * 2,
		EventsTotal: events,
	}, nil
}
