package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/bullpair-events/models"
)

type EventDayRepository interface {
	Create(ctx context.Context, exec SQLExecutor, day *models.EventDay) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.EventDay, error)
	// GetForUpdate locks the day row. Every gameplay mutation of the day's entries takes this
	// lock first, which serializes them per day.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.EventDay, error)
	ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]models.EventDay, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.DayStatus) error
}

type postgresEventDayRepository struct {
	db *sql.DB
}

func NewPostgresEventDayRepository(db *sql.DB) EventDayRepository {
	return &postgresEventDayRepository{db: db}
}

func (r *postgresEventDayRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const eventDayColumns = ` id, event_id, day_date, prize_money, status, created_at, updated_at `

func scanEventDay(row rowScanner) (*models.EventDay, error) {
	d := &models.EventDay{}
	var date time.Time
	if err := row.Scan(&d.ID, &d.EventID, &date, &d.PrizeMoney, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Date = date.Format(models.DateLayout)
	return d, nil
}

func (r *postgresEventDayRepository) Create(ctx context.Context, exec SQLExecutor, d *models.EventDay) error {
	query := `
		INSERT INTO event_days (event_id, day_date, prize_money, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, d.EventID, d.Date, d.PrizeMoney, d.Status).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return classifyError(err)
	}
	return nil
}

func (r *postgresEventDayRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.EventDay, error) {
	return r.get(ctx, exec, id, "")
}

func (r *postgresEventDayRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.EventDay, error) {
	return r.get(ctx, exec, id, " FOR UPDATE")
}

func (r *postgresEventDayRepository) get(ctx context.Context, exec SQLExecutor, id int, lock string) (*models.EventDay, error) {
	query := `SELECT` + eventDayColumns + `FROM event_days WHERE id = $1` + lock
	d, err := scanEventDay(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventDayNotFound
		}
		return nil, fmt.Errorf("failed to get event day %d: %w", id, err)
	}
	return d, nil
}

func (r *postgresEventDayRepository) ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]models.EventDay, error) {
	query := `SELECT` + eventDayColumns + `FROM event_days WHERE event_id = $1 ORDER BY day_date ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list days for event %d: %w", eventID, err)
	}
	defer rows.Close()

	days := make([]models.EventDay, 0)
	for rows.Next() {
		d, scanErr := scanEventDay(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan event day: %w", scanErr)
		}
		days = append(days, *d)
	}
	return days, rows.Err()
}

func (r *postgresEventDayRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.DayStatus) error {
	query := `UPDATE event_days SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update event day status: %w", err)
	}
	return checkAffectedRows(result, ErrEventDayNotFound)
}
