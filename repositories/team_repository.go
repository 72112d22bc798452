package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bullpair-events/models"
)

// TeamRepository - доступ только на чтение к составам команд, которые ведёт внешняя система.
type TeamRepository interface {
	// GetByID loads the team together with its bull pairs and members.
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	// CountActive returns the number of active teams and the number of bull pairs they own.
	CountActive(ctx context.Context) (teams int, pairs int, err error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	executor := r.getExecutor(exec)

	team := &models.Team{}
	err := executor.QueryRowContext(ctx,
		`SELECT id, name, status, is_active, created_at FROM teams WHERE id = $1`, id,
	).Scan(&team.ID, &team.Name, &team.Status, &team.IsActive, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}

	pairRows, err := executor.QueryContext(ctx, `
		SELECT id, team_id, bull_a, bull_b, category_type, category_value
		FROM team_bull_pairs WHERE team_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list bull pairs of team %d: %w", id, err)
	}
	defer pairRows.Close()
	team.BullPairs = make([]models.BullPair, 0)
	for pairRows.Next() {
		var p models.BullPair
		if err := pairRows.Scan(&p.ID, &p.TeamID, &p.BullA, &p.BullB, &p.Category.Type, &p.Category.Value); err != nil {
			return nil, fmt.Errorf("failed to scan bull pair: %w", err)
		}
		team.BullPairs = append(team.BullPairs, p)
	}
	if err := pairRows.Err(); err != nil {
		return nil, err
	}

	memberRows, err := executor.QueryContext(ctx, `
		SELECT id, team_id, user_id, name, role
		FROM team_members WHERE team_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", id, err)
	}
	defer memberRows.Close()
	team.Members = make([]models.TeamMember, 0)
	for memberRows.Next() {
		var m models.TeamMember
		if err := memberRows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Name, &m.Role); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		team.Members = append(team.Members, m)
	}
	return team, memberRows.Err()
}

func (r *postgresTeamRepository) CountActive(ctx context.Context) (int, int, error) {
	var teams, pairs int
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM teams WHERE is_active),
			(SELECT COUNT(*) FROM team_bull_pairs p JOIN teams t ON t.id = p.team_id WHERE t.is_active)`,
	).Scan(&teams, &pairs)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count active teams: %w", err)
	}
	return teams, pairs, nil
}
