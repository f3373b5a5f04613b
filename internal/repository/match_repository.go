package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/sportsedge/internal/database"
	"github.com/yourusername/sportsedge/internal/models"
)

const matchColumns = `id, home_team_id, away_team_id, sport, league, scheduled_at, status, home_score, away_score`

// checkTransition refuses to rewrite a completed match. Ratings have already
// moved on its result.
func checkTransition(existing, next *models.Match) error {
	if !existing.IsCompleted() {
		return nil
	}
	if !next.IsCompleted() {
		return fmt.Errorf("%w: match %s is completed and cannot become %s",
			models.ErrInvalidMatchResult, next.ID, next.Status)
	}
	if *existing.HomeScore != *next.HomeScore || *existing.AwayScore != *next.AwayScore {
		return fmt.Errorf("%w: match %s final score cannot change", models.ErrInvalidMatchResult, next.ID)
	}
	return nil
}

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

// Upsert validates and stores a match, refusing to rewrite a completed result
func (r *PostgresMatchRepository) Upsert(ctx context.Context, match *models.Match) error {
	if err := match.Validate(); err != nil {
		return err
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		existing, err := scanMatch(tx.QueryRow(ctx,
			`SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, match.ID))
		switch {
		case errors.Is(err, models.ErrNotFound):
		case err != nil:
			return err
		default:
			if err := checkTransition(existing, match); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO matches (id, home_team_id, away_team_id, sport, league, scheduled_at, status, home_score, away_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				scheduled_at = EXCLUDED.scheduled_at,
				status = EXCLUDED.status,
				home_score = EXCLUDED.home_score,
				away_score = EXCLUDED.away_score`,
			match.ID, match.HomeTeamID, match.AwayTeamID, string(match.Sport), match.League,
			match.ScheduledAt, string(match.Status), match.HomeScore, match.AwayScore,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert match: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a match by ID
func (r *PostgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	return scanMatch(r.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
}

// GetUpcoming retrieves scheduled matches in [from, to)
func (r *PostgresMatchRepository) GetUpcoming(ctx context.Context, sport models.Sport, from, to time.Time) ([]*models.Match, error) {
	matches, err := r.query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE sport = $1 AND status = 'scheduled' AND scheduled_at >= $2 AND scheduled_at < $3
		ORDER BY scheduled_at ASC, id ASC`,
		string(sport), from, to)
	if err != nil {
		return nil, err
	}
	return pointers(matches), nil
}

// GetCompletedSince retrieves completed matches kicked off at or after since
func (r *PostgresMatchRepository) GetCompletedSince(ctx context.Context, sport models.Sport, since time.Time) ([]*models.Match, error) {
	matches, err := r.query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE sport = $1 AND status = 'completed' AND scheduled_at >= $2
		ORDER BY scheduled_at ASC, id ASC`,
		string(sport), since)
	if err != nil {
		return nil, err
	}
	return pointers(matches), nil
}

// GetHeadToHead retrieves the most recent completed meetings of two teams
func (r *PostgresMatchRepository) GetHeadToHead(ctx context.Context, teamA, teamB uuid.UUID, limit int) ([]models.Match, error) {
	return r.query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE status = 'completed'
		  AND ((home_team_id = $1 AND away_team_id = $2) OR (home_team_id = $2 AND away_team_id = $1))
		ORDER BY scheduled_at DESC, id ASC
		LIMIT $3`,
		teamA, teamB, limitArg(limit))
}

// GetRecentByTeam retrieves the team's most recent completed matches
func (r *PostgresMatchRepository) GetRecentByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]models.Match, error) {
	return r.query(ctx, `
		SELECT `+matchColumns+` FROM matches
		WHERE status = 'completed' AND (home_team_id = $1 OR away_team_id = $1)
		ORDER BY scheduled_at DESC, id ASC
		LIMIT $2`,
		teamID, limitArg(limit))
}

func (r *PostgresMatchRepository) query(ctx context.Context, query string, args ...any) ([]models.Match, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// limitArg maps a non-positive limit to NULL, which Postgres reads as no limit
func limitArg(limit int) any {
	if limit > 0 {
		return limit
	}
	return nil
}

func scanMatch(row pgx.Row) (*models.Match, error) {
	m := &models.Match{}
	var sport, status string
	err := row.Scan(&m.ID, &m.HomeTeamID, &m.AwayTeamID, &sport, &m.League,
		&m.ScheduledAt, &status, &m.HomeScore, &m.AwayScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	m.Sport = models.Sport(sport)
	m.Status = models.MatchStatus(status)
	return m, nil
}
