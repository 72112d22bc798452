package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/bullpair-events/models"
)

// EntryStatsFilter selects completed entries for aggregation.
type EntryStatsFilter struct {
	EventID    *int
	EventDayID *int
	BullPairID *int
	TeamID     *int
	RankedOnly bool
}

type DayEntryRepository interface {
	// Upsert inserts the entry unless (event_day_id, bull_pair_id) already exists.
	// It reports whether a new row was written.
	Upsert(ctx context.Context, exec SQLExecutor, entry *models.DayEntry) (bool, error)
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.DayEntry, error)
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.DayEntry, error)
	ListByDay(ctx context.Context, exec SQLExecutor, dayID int) ([]models.DayEntry, error)
	// FindPlaying returns the day's PLAYING entry, or nil.
	FindPlaying(ctx context.Context, exec SQLExecutor, dayID int) (*models.DayEntry, error)
	// FindActiveOnOtherDay returns a NEXT or PLAYING entry of the pair on another ONGOING day, or nil.
	FindActiveOnOtherDay(ctx context.Context, exec SQLExecutor, bullPairID, dayID int) (*models.DayEntry, error)
	// FindPlayingOnOtherDay returns a PLAYING entry of the pair on another ONGOING day, or nil.
	FindPlayingOnOtherDay(ctx context.Context, exec SQLExecutor, bullPairID, dayID int) (*models.DayEntry, error)
	// UpdateStatus sets game_status; played_at is written only if it is still empty.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.GameStatus, playedAt *time.Time) error
	UpdatePerformance(ctx context.Context, exec SQLExecutor, id int, perf models.Performance) error
	// ResetResults clears rank, result_calculated and the legacy winner fields for the whole day.
	ResetResults(ctx context.Context, exec SQLExecutor, dayID int) error
	AssignRank(ctx context.Context, exec SQLExecutor, id int, rank int) error
	ListCompleted(ctx context.Context, filter EntryStatsFilter) ([]models.DayEntry, error)
}

type postgresDayEntryRepository struct {
	db *sql.DB
}

func NewPostgresDayEntryRepository(db *sql.DB) DayEntryRepository {
	return &postgresDayEntryRepository{db: db}
}

func (r *postgresDayEntryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const dayEntryColumns = `
	de.id, de.event_id, de.event_day_id, de.team_id, de.registration_id, de.bull_pair_id,
	de.category_type, de.category_value, de.game_status,
	de.rock_weight_kg, de.distance_meters, de.time_seconds,
	de.played_at, de.rank, de.result_calculated, de.is_winner, de.winner_prize_money,
	de.created_at, de.updated_at `

func scanDayEntry(row rowScanner) (*models.DayEntry, error) {
	e := &models.DayEntry{}
	err := row.Scan(
		&e.ID, &e.EventID, &e.EventDayID, &e.TeamID, &e.RegistrationID, &e.BullPairID,
		&e.Category.Type, &e.Category.Value, &e.GameStatus,
		&e.Performance.RockWeightKg, &e.Performance.DistanceMeters, &e.Performance.TimeSeconds,
		&e.PlayedAt, &e.Rank, &e.ResultCalculated, &e.IsWinner, &e.WinnerPrizeMoney,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func scanDayEntries(rows *sql.Rows) ([]models.DayEntry, error) {
	defer rows.Close()
	entries := make([]models.DayEntry, 0)
	for rows.Next() {
		e, err := scanDayEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan day entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *postgresDayEntryRepository) Upsert(ctx context.Context, exec SQLExecutor, e *models.DayEntry) (bool, error) {
	query := `
		INSERT INTO day_entries (
			event_id, event_day_id, team_id, registration_id, bull_pair_id,
			category_type, category_value, game_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_day_id, bull_pair_id) DO NOTHING
		RETURNING id, created_at, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		e.EventID, e.EventDayID, e.TeamID, e.RegistrationID, e.BullPairID,
		e.Category.Type, e.Category.Value, e.GameStatus,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to upsert day entry for pair %d: %w", e.BullPairID, classifyError(err))
	}
	return true, nil
}

func (r *postgresDayEntryRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.DayEntry, error) {
	return r.getOne(ctx, exec, `SELECT`+dayEntryColumns+`FROM day_entries de WHERE de.id = $1`, id)
}

func (r *postgresDayEntryRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.DayEntry, error) {
	return r.getOne(ctx, exec, `SELECT`+dayEntryColumns+`FROM day_entries de WHERE de.id = $1 FOR UPDATE`, id)
}

func (r *postgresDayEntryRepository) getOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.DayEntry, error) {
	e, err := scanDayEntry(r.getExecutor(exec).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDayEntryNotFound
		}
		return nil, fmt.Errorf("failed to get day entry: %w", err)
	}
	return e, nil
}

func (r *postgresDayEntryRepository) ListByDay(ctx context.Context, exec SQLExecutor, dayID int) ([]models.DayEntry, error) {
	query := `SELECT` + dayEntryColumns + `FROM day_entries de WHERE de.event_day_id = $1 ORDER BY de.id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, dayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for day %d: %w", dayID, err)
	}
	return scanDayEntries(rows)
}

func (r *postgresDayEntryRepository) FindPlaying(ctx context.Context, exec SQLExecutor, dayID int) (*models.DayEntry, error) {
	query := `SELECT` + dayEntryColumns + `FROM day_entries de WHERE de.event_day_id = $1 AND de.game_status = $2 LIMIT 1`
	e, err := r.getOne(ctx, exec, query, dayID, models.GameStatusPlaying)
	if errors.Is(err, ErrDayEntryNotFound) {
		return nil, nil
	}
	return e, err
}

func (r *postgresDayEntryRepository) FindActiveOnOtherDay(ctx context.Context, exec SQLExecutor, bullPairID, dayID int) (*models.DayEntry, error) {
	query := `SELECT` + dayEntryColumns + `
		FROM day_entries de
		JOIN event_days d ON d.id = de.event_day_id
		WHERE de.bull_pair_id = $1
		  AND de.event_day_id <> $2
		  AND d.status = $3
		  AND de.game_status IN ($4, $5)
		LIMIT 1`
	e, err := r.getOne(ctx, exec, query,
		bullPairID, dayID, models.DayStatusOngoing, models.GameStatusNext, models.GameStatusPlaying)
	if errors.Is(err, ErrDayEntryNotFound) {
		return nil, nil
	}
	return e, err
}

func (r *postgresDayEntryRepository) FindPlayingOnOtherDay(ctx context.Context, exec SQLExecutor, bullPairID, dayID int) (*models.DayEntry, error) {
	query := `SELECT` + dayEntryColumns + `
		FROM day_entries de
		JOIN event_days d ON d.id = de.event_day_id
		WHERE de.bull_pair_id = $1
		  AND de.event_day_id <> $2
		  AND d.status = $3
		  AND de.game_status = $4
		LIMIT 1`
	e, err := r.getOne(ctx, exec, query, bullPairID, dayID, models.DayStatusOngoing, models.GameStatusPlaying)
	if errors.Is(err, ErrDayEntryNotFound) {
		return nil, nil
	}
	return e, err
}

func (r *postgresDayEntryRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.GameStatus, playedAt *time.Time) error {
	query := `
		UPDATE day_entries SET
			game_status = $1,
			played_at = COALESCE(played_at, $2),
			updated_at = NOW()
		WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, playedAt, id)
	if err != nil {
		return classifyError(err)
	}
	return checkAffectedRows(result, ErrDayEntryNotFound)
}

func (r *postgresDayEntryRepository) UpdatePerformance(ctx context.Context, exec SQLExecutor, id int, perf models.Performance) error {
	query := `
		UPDATE day_entries SET
			rock_weight_kg = $1,
			distance_meters = $2,
			time_seconds = $3,
			updated_at = NOW()
		WHERE id = $4`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, perf.RockWeightKg, perf.DistanceMeters, perf.TimeSeconds, id)
	if err != nil {
		return fmt.Errorf("failed to update performance for entry %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrDayEntryNotFound)
}

func (r *postgresDayEntryRepository) ResetResults(ctx context.Context, exec SQLExecutor, dayID int) error {
	query := `
		UPDATE day_entries SET
			rank = NULL,
			result_calculated = FALSE,
			is_winner = FALSE,
			winner_prize_money = NULL,
			updated_at = NOW()
		WHERE event_day_id = $1`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, dayID); err != nil {
		return fmt.Errorf("failed to reset results for day %d: %w", dayID, err)
	}
	return nil
}

func (r *postgresDayEntryRepository) AssignRank(ctx context.Context, exec SQLExecutor, id int, rank int) error {
	query := `
		UPDATE day_entries SET
			rank = $1,
			result_calculated = TRUE,
			is_winner = FALSE,
			updated_at = NOW()
		WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, rank, id)
	if err != nil {
		return fmt.Errorf("failed to assign rank to entry %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrDayEntryNotFound)
}

func (r *postgresDayEntryRepository) ListCompleted(ctx context.Context, filter EntryStatsFilter) ([]models.DayEntry, error) {
	query := `SELECT` + dayEntryColumns + `FROM day_entries de WHERE de.game_status = $1`
	args := []interface{}{models.GameStatusCompleted}
	argID := 2

	if filter.EventID != nil {
		query += fmt.Sprintf(" AND de.event_id = $%d", argID)
		args = append(args, *filter.EventID)
		argID++
	}
	if filter.EventDayID != nil {
		query += fmt.Sprintf(" AND de.event_day_id = $%d", argID)
		args = append(args, *filter.EventDayID)
		argID++
	}
	if filter.BullPairID != nil {
		query += fmt.Sprintf(" AND de.bull_pair_id = $%d", argID)
		args = append(args, *filter.BullPairID)
		argID++
	}
	if filter.TeamID != nil {
		query += fmt.Sprintf(" AND de.team_id = $%d", argID)
		args = append(args, *filter.TeamID)
	}
	if filter.RankedOnly {
		query += " AND de.result_calculated = TRUE"
	}
	query += " ORDER BY de.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed entries: %w", err)
	}
	return scanDayEntries(rows)
}
