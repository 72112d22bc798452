package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/Dosada05/bullpair-events/repositories"
	"github.com/shopspring/decimal"
)

type CreateDayInput struct {
	Date       string           `json:"date"`
	PrizeMoney *decimal.Decimal `json:"prize_money"`
}

type EventDayService interface {
	CreateDay(ctx context.Context, eventID int, input CreateDayInput) (*models.EventDay, error)
	GetDay(ctx context.Context, dayID int) (*models.EventDay, error)
	ListDays(ctx context.Context, eventID int) ([]models.EventDay, error)
	TransitionDayStatus(ctx context.Context, dayID int, target models.DayStatus) (*models.EventDay, error)
}

type eventDayService struct {
	tx        repositories.Transactor
	eventRepo repositories.EventRepository
	dayRepo   repositories.EventDayRepository
	logger    *slog.Logger
}

func NewEventDayService(
	tx repositories.Transactor,
	eventRepo repositories.EventRepository,
	dayRepo repositories.EventDayRepository,
	logger *slog.Logger,
) EventDayService {
	return &eventDayService{
		tx:        tx,
		eventRepo: eventRepo,
		dayRepo:   dayRepo,
		logger:    logger,
	}
}

func (s *eventDayService) CreateDay(ctx context.Context, eventID int, input CreateDayInput) (*models.EventDay, error) {
	if _, ok := models.ParseDayDate(input.Date); !ok {
		return nil, validationError("date must be a calendar day in YYYY-MM-DD format")
	}
	if input.PrizeMoney == nil {
		return nil, validationError("prize money is required")
	}
	if input.PrizeMoney.IsNegative() {
		return nil, validationError("prize money must not be negative")
	}

	day := &models.EventDay{
		EventID:    eventID,
		Date:       input.Date,
		PrizeMoney: *input.PrizeMoney,
		Status:     models.DayStatusUpcoming,
	}

	// Строка события блокируется, чтобы день не появился параллельно с завершением события.
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		event, err := s.eventRepo.GetForUpdate(ctx, exec, eventID)
		if err != nil {
			return err
		}
		if event.State == models.EventStateCompleted {
			return conflictError("cannot add a day to a completed event")
		}
		return s.dayRepo.Create(ctx, exec, day)
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("event day created",
		slog.Int("event_id", eventID),
		slog.Int("event_day_id", day.ID),
		slog.String("date", day.Date))
	return day, nil
}

func (s *eventDayService) GetDay(ctx context.Context, dayID int) (*models.EventDay, error) {
	day, err := s.dayRepo.GetByID(ctx, nil, dayID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return day, nil
}

func (s *eventDayService) ListDays(ctx context.Context, eventID int) ([]models.EventDay, error) {
	if _, err := s.eventRepo.GetByID(ctx, nil, eventID); err != nil {
		return nil, mapRepositoryError(err)
	}
	days, err := s.dayRepo.ListByEvent(ctx, nil, eventID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return days, nil
}

func (s *eventDayService) TransitionDayStatus(ctx context.Context, dayID int, target models.DayStatus) (*models.EventDay, error) {
	var updated *models.EventDay
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		day, err := s.dayRepo.GetForUpdate(ctx, exec, dayID)
		if err != nil {
			return err
		}
		if !day.Status.CanTransitionTo(target) {
			return invalidTransitionError("event day", day.Status, target)
		}
		if err := s.dayRepo.UpdateStatus(ctx, exec, dayID, target); err != nil {
			return err
		}
		day.Status = target
		updated = day
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("event day status changed", slog.Int("event_day_id", dayID), slog.String("status", string(target)))
	return updated, nil
}
