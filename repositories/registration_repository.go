package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bullpair-events/models"
	"github.com/lib/pq"
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.EventRegistration) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.EventRegistration, error)
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.EventRegistration, error)
	GetByEventAndTeam(ctx context.Context, exec SQLExecutor, eventID, teamID int) (*models.EventRegistration, error)
	// ListByEvent returns registrations in creation order. A nil status lists all of them.
	ListByEvent(ctx context.Context, eventID int, status *models.RegistrationStatus) ([]models.EventRegistration, error)
	UpdateDecision(ctx context.Context, exec SQLExecutor, reg *models.EventRegistration) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `
	id, event_id, team_id, registered_by, captain_name, bull_pair_ids, member_ids, status,
	rejection_reason, admin_notes, decided_by, decided_at, created_at, updated_at `

func scanRegistration(row rowScanner) (*models.EventRegistration, error) {
	reg := &models.EventRegistration{}
	var pairIDs, memberIDs pq.Int64Array
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.TeamID, &reg.RegisteredBy, &reg.CaptainName, &pairIDs, &memberIDs, &reg.Status,
		&reg.RejectionReason, &reg.AdminNotes, &reg.DecidedBy, &reg.DecidedAt, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.BullPairIDs = arrayToInts(pairIDs)
	reg.MemberIDs = arrayToInts(memberIDs)
	return reg, nil
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.EventRegistration) error {
	query := `
		INSERT INTO event_registrations (event_id, team_id, registered_by, captain_name, bull_pair_ids, member_ids, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		reg.EventID, reg.TeamID, reg.RegisteredBy, reg.CaptainName,
		pq.Int64Array(intsToArray(reg.BullPairIDs)), pq.Int64Array(intsToArray(reg.MemberIDs)), reg.Status,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return classifyError(err)
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.EventRegistration, error) {
	return r.getOne(ctx, exec, `SELECT`+registrationColumns+`FROM event_registrations WHERE id = $1`, id)
}

func (r *postgresRegistrationRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.EventRegistration, error) {
	return r.getOne(ctx, exec, `SELECT`+registrationColumns+`FROM event_registrations WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresRegistrationRepository) GetByEventAndTeam(ctx context.Context, exec SQLExecutor, eventID, teamID int) (*models.EventRegistration, error) {
	return r.getOne(ctx, exec,
		`SELECT`+registrationColumns+`FROM event_registrations WHERE event_id = $1 AND team_id = $2`, eventID, teamID)
}

func (r *postgresRegistrationRepository) getOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.EventRegistration, error) {
	reg, err := scanRegistration(r.getExecutor(exec).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByEvent(ctx context.Context, eventID int, status *models.RegistrationStatus) ([]models.EventRegistration, error) {
	query := `SELECT` + registrationColumns + `FROM event_registrations WHERE event_id = $1`
	args := []interface{}{eventID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for event %d: %w", eventID, err)
	}
	defer rows.Close()

	regs := make([]models.EventRegistration, 0)
	for rows.Next() {
		reg, scanErr := scanRegistration(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", scanErr)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func (r *postgresRegistrationRepository) UpdateDecision(ctx context.Context, exec SQLExecutor, reg *models.EventRegistration) error {
	query := `
		UPDATE event_registrations SET
			status = $1,
			rejection_reason = $2,
			admin_notes = $3,
			decided_by = $4,
			decided_at = $5,
			updated_at = NOW()
		WHERE id = $6`
	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		reg.Status, reg.RejectionReason, reg.AdminNotes, reg.DecidedBy, reg.DecidedAt, reg.ID)
	if err != nil {
		return fmt.Errorf("failed to update registration %d: %w", reg.ID, err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
