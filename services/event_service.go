package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories"
	"github.com/shopspring/decimal"
)

type CreateEventInput struct {
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Venue       string          `json:"venue"`
	City        string          `json:"city"`
	StartsAt    time.Time       `json:"starts_at"`
	EndsAt      time.Time       `json:"ends_at"`
	PrizePool   decimal.Decimal `json:"prize_pool"`
}

// UpdateEventInput содержит только описательные поля; state и winners не патчатся.
type UpdateEventInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Venue       *string          `json:"venue"`
	City        *string          `json:"city"`
	StartsAt    *time.Time       `json:"starts_at"`
	EndsAt      *time.Time       `json:"ends_at"`
	PrizePool   *decimal.Decimal `json:"prize_pool"`
}

type EventService interface {
	CreateEvent(ctx context.Context, actor models.Actor, input CreateEventInput) (*models.Event, error)
	GetEvent(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, error)
	UpdateDetails(ctx context.Context, id int, input UpdateEventInput) (*models.Event, error)
	TransitionState(ctx context.Context, id int, target models.EventState) (*models.Event, error)
	AddWinners(ctx context.Context, id int, winners models.Winners) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int) error
}

type eventService struct {
	tx        repositories.Transactor
	eventRepo repositories.EventRepository
	dayRepo   repositories.EventDayRepository
	logger    *slog.Logger
}

func NewEventService(
	tx repositories.Transactor,
	eventRepo repositories.EventRepository,
	dayRepo repositories.EventDayRepository,
	logger *slog.Logger,
) EventService {
	return &eventService{
		tx:        tx,
		eventRepo: eventRepo,
		dayRepo:   dayRepo,
		logger:    logger,
	}
}

func validateEventDetails(e *models.Event) error {
	switch {
	case isBlank(e.Title):
		return validationError("event title is required")
	case isBlank(e.Venue) || isBlank(e.City):
		return validationError("event venue and city are required")
	case e.StartsAt.IsZero() || e.EndsAt.IsZero():
		return validationError("event timings are required")
	case !e.EndsAt.After(e.StartsAt):
		return validationError("event end date must be after start date")
	case e.PrizePool.IsNegative():
		return validationError("prize pool must not be negative")
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, actor models.Actor, input CreateEventInput) (*models.Event, error) {
	event := &models.Event{
		Title:       input.Title,
		Description: input.Description,
		Venue:       input.Venue,
		City:        input.City,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		PrizePool:   input.PrizePool,
		State:       models.EventStateUpcoming,
		Winners:     models.Winners{},
		CreatedBy:   actor.UserID,
	}
	if err := validateEventDetails(event); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, nil, event); err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("event created", slog.Int("event_id", event.ID), slog.Int("created_by", actor.UserID))
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, error) {
	if filter.State != nil && !filter.State.IsValid() {
		return nil, validationError("unknown event state %q", *filter.State)
	}
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return events, nil
}

func (s *eventService) UpdateDetails(ctx context.Context, id int, input UpdateEventInput) (*models.Event, error) {
	var updated *models.Event
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		event, err := s.eventRepo.GetForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		days, err := s.dayRepo.ListByEvent(ctx, exec, id)
		if err != nil {
			return err
		}
		for _, d := range days {
			if d.Status != models.DayStatusUpcoming {
				return conflictError("event details cannot be changed once an event day is %s", d.Status)
			}
		}

		if input.Title != nil {
			event.Title = *input.Title
		}
		if input.Description != nil {
			event.Description = input.Description
		}
		if input.Venue != nil {
			event.Venue = *input.Venue
		}
		if input.City != nil {
			event.City = *input.City
		}
		if input.StartsAt != nil {
			event.StartsAt = *input.StartsAt
		}
		if input.EndsAt != nil {
			event.EndsAt = *input.EndsAt
		}
		if input.PrizePool != nil {
			event.PrizePool = *input.PrizePool
		}
		if err := validateEventDetails(event); err != nil {
			return err
		}
		if err := s.eventRepo.UpdateDetails(ctx, exec, event); err != nil {
			return err
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("event details updated", slog.Int("event_id", id))
	return updated, nil
}

func (s *eventService) TransitionState(ctx context.Context, id int, target models.EventState) (*models.Event, error) {
	var updated *models.Event
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		event, err := s.eventRepo.GetForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		if !event.State.CanTransitionTo(target) {
			return invalidTransitionError("event", event.State, target)
		}
		if err := s.eventRepo.UpdateState(ctx, exec, id, target); err != nil {
			return err
		}
		event.State = target
		updated = event
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("event state changed", slog.Int("event_id", id), slog.String("state", string(target)))
	return updated, nil
}

func (s *eventService) AddWinners(ctx context.Context, id int, winners models.Winners) (*models.Event, error) {
	var updated *models.Event
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		event, err := s.eventRepo.GetForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		if event.State != models.EventStateCompleted {
			return conflictError("winners can only be recorded for a completed event (current state %s)", event.State)
		}
		if err := winners.Validate(); err != nil {
			return validationError("%s", err.Error())
		}
		if err := s.eventRepo.UpdateWinners(ctx, exec, id, winners); err != nil {
			return err
		}
		event.Winners = winners
		updated = event
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("event winners recorded", slog.Int("event_id", id), slog.Int("winners", len(winners)))
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id int) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if _, err := s.eventRepo.GetForUpdate(ctx, exec, id); err != nil {
			return err
		}
		days, err := s.dayRepo.ListByEvent(ctx, exec, id)
		if err != nil {
			return err
		}
		if len(days) > 0 {
			return conflictError("event cannot be deleted once event days exist")
		}
		return s.eventRepo.Delete(ctx, exec, id)
	})
	if err != nil {
		return mapRepositoryError(err)
	}
	s.logger.Info("event deleted", slog.Int("event_id", id))
	return nil
}
