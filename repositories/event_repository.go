package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bullpair-events/models"
)

type ListEventsFilter struct {
	State  *models.EventState
	Limit  int
	Offset int
}

type EventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.Event) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error)
	// GetForUpdate reads the event and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error)
	List(ctx context.Context, filter ListEventsFilter) ([]models.Event, error)
	UpdateDetails(ctx context.Context, exec SQLExecutor, event *models.Event) error
	UpdateState(ctx context.Context, exec SQLExecutor, id int, state models.EventState) error
	UpdateWinners(ctx context.Context, exec SQLExecutor, id int, winners models.Winners) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	Count(ctx context.Context) (int, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const eventColumns = `
	id, title, description, venue, city, starts_at, ends_at,
	prize_pool, state, winners, created_by, created_at, updated_at`

func scanEvent(row rowScanner) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Venue, &e.City, &e.StartsAt, &e.EndsAt,
		&e.PrizePool, &e.State, &e.Winners, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *postgresEventRepository) Create(ctx context.Context, exec SQLExecutor, e *models.Event) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO events (title, description, venue, city, starts_at, ends_at, prize_pool, state, winners, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Venue, e.City, e.StartsAt, e.EndsAt, e.PrizePool, e.State, e.Winners, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", classifyError(err))
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error) {
	return r.get(ctx, exec, id, "")
}

func (r *postgresEventRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error) {
	return r.get(ctx, exec, id, " FOR UPDATE")
}

func (r *postgresEventRepository) get(ctx context.Context, exec SQLExecutor, id int, lock string) (*models.Event, error) {
	query := `SELECT` + eventColumns + ` FROM events WHERE id = $1` + lock
	e, err := scanEvent(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return e, nil
}

func (r *postgresEventRepository) List(ctx context.Context, filter ListEventsFilter) ([]models.Event, error) {
	query := `SELECT` + eventColumns + ` FROM events WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.State != nil {
		query += fmt.Sprintf(" AND state = $%d", argID)
		args = append(args, *filter.State)
		argID++
	}

	query += " ORDER BY starts_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		e, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan event: %w", scanErr)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *postgresEventRepository) UpdateDetails(ctx context.Context, exec SQLExecutor, e *models.Event) error {
	query := `
		UPDATE events SET
			title = $1,
			description = $2,
			venue = $3,
			city = $4,
			starts_at = $5,
			ends_at = $6,
			prize_pool = $7,
			updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		e.Title, e.Description, e.Venue, e.City, e.StartsAt, e.EndsAt, e.PrizePool, e.ID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to update event %d: %w", e.ID, classifyError(err))
	}
	return nil
}

func (r *postgresEventRepository) UpdateState(ctx context.Context, exec SQLExecutor, id int, state models.EventState) error {
	query := `UPDATE events SET state = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, state, id)
	if err != nil {
		return fmt.Errorf("failed to update event state: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateWinners(ctx context.Context, exec SQLExecutor, id int, winners models.Winners) error {
	query := `UPDATE events SET winners = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, winners, id)
	if err != nil {
		return fmt.Errorf("failed to update event winners: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return classifyError(err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}
