package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/sportsedge/internal/database"
	"github.com/yourusername/sportsedge/internal/models"
)

const (
	errScanTeam       = "failed to scan team: %w"
	teamColumns       = `id, name, sport, league, rating, rating_updated_at, active, created_at`
	pgUniqueViolation = "23505"
)

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Create inserts a team together with its initial rating history point
func (r *PostgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	now := time.Now().UTC()
	if team.CreatedAt.IsZero() {
		team.CreatedAt = now
	}
	if team.RatingUpdatedAt.IsZero() {
		team.RatingUpdatedAt = now
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO teams (id, name, sport, league, rating, rating_updated_at, active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			team.ID, team.Name, string(team.Sport), team.League, team.Rating,
			team.RatingUpdatedAt, team.Active, team.CreatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return fmt.Errorf("team %s/%s: %w", team.Sport, team.Name, models.ErrDuplicateKey)
			}
			return fmt.Errorf("failed to create team: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO rating_history (team_id, recorded_at, rating, match_id)
			VALUES ($1, $2, $3, NULL)`,
			team.ID, team.RatingUpdatedAt, team.Rating,
		)
		if err != nil {
			return fmt.Errorf("failed to record initial rating: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a team by ID
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row := r.db.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	return scanTeam(row)
}

// GetByName retrieves a team by sport and name
func (r *PostgresTeamRepository) GetByName(ctx context.Context, sport models.Sport, name string) (*models.Team, error) {
	row := r.db.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE sport = $1 AND name = $2`, string(sport), name)
	return scanTeam(row)
}

// GetBySport retrieves every team of a sport ordered by name
func (r *PostgresTeamRepository) GetBySport(ctx context.Context, sport models.Sport) ([]*models.Team, error) {
	rows, err := r.db.Query(ctx, `SELECT `+teamColumns+` FROM teams WHERE sport = $1 ORDER BY name`, string(sport))
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	team := &models.Team{}
	var sport string
	err := row.Scan(&team.ID, &team.Name, &sport, &team.League, &team.Rating,
		&team.RatingUpdatedAt, &team.Active, &team.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errScanTeam, err)
	}
	team.Sport = models.Sport(sport)
	return team, nil
}
