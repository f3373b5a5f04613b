package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/sportsedge/internal/database"
	"github.com/yourusername/sportsedge/internal/models"
)

// PostgresRatingRepository implements RatingRepository for PostgreSQL
type PostgresRatingRepository struct {
	db *database.DB
}

// NewPostgresRatingRepository creates a new rating repository
func NewPostgresRatingRepository(db *database.DB) RatingRepository {
	return &PostgresRatingRepository{db: db}
}

// ApplyMatch locks both team rows in ID order inside one transaction, refuses
// a match already in either team's history, then writes both new ratings
// and history points computed from the locked values.
func (r *PostgresRatingRepository) ApplyMatch(ctx context.Context, matchID, homeID, awayID uuid.UUID, at time.Time, compute RatingCompute) (*RatingUpdate, error) {
	if homeID == awayID {
		return nil, fmt.Errorf("match %s: team plays itself: %w", matchID, models.ErrInvalidMatchResult)
	}

	var update *RatingUpdate
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := lockRatings(ctx, tx, homeID, awayID)
		if err != nil {
			return err
		}

		var homeDone, awayDone bool
		err = tx.QueryRow(ctx, `
			SELECT
				EXISTS (SELECT 1 FROM rating_history WHERE team_id = $1 AND match_id = $3),
				EXISTS (SELECT 1 FROM rating_history WHERE team_id = $2 AND match_id = $3)`,
			homeID, awayID, matchID,
		).Scan(&homeDone, &awayDone)
		if err != nil {
			return fmt.Errorf("failed to check rating history: %w", err)
		}
		if err := appliedState(matchID, homeDone, awayDone); err != nil {
			return err
		}

		home, away := current[homeID], current[awayID]
		homeDelta, awayDelta, err := compute(home, away)
		if err != nil {
			return err
		}
		u := &RatingUpdate{
			HomeBefore: home,
			AwayBefore: away,
			HomeAfter:  home + homeDelta,
			AwayAfter:  away + awayDelta,
		}

		if err := writeRating(ctx, tx, homeID, matchID, u.HomeAfter, at); err != nil {
			return err
		}
		if err := writeRating(ctx, tx, awayID, matchID, u.AwayAfter, at); err != nil {
			return err
		}
		update = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}

// lockRatings selects the teams' ratings FOR UPDATE, locking rows in ID order
func lockRatings(ctx context.Context, tx pgx.Tx, ids ...uuid.UUID) (map[uuid.UUID]float64, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := tx.Query(ctx,
		`SELECT id, rating FROM teams WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`,
		keys,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to lock team ratings: %w", err)
	}
	defer rows.Close()

	ratings := make(map[uuid.UUID]float64, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var rating float64
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan team rating: %w", err)
		}
		ratings[id] = rating
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to lock team ratings: %w", err)
	}

	for _, id := range ids {
		if _, ok := ratings[id]; !ok {
			return nil, fmt.Errorf("team %s: %w", id, models.ErrNotFound)
		}
	}
	return ratings, nil
}

func writeRating(ctx context.Context, tx pgx.Tx, teamID, matchID uuid.UUID, rating float64, at time.Time) error {
	if _, err := tx.Exec(ctx,
		`UPDATE teams SET rating = $2, rating_updated_at = $3 WHERE id = $1`,
		teamID, rating, at,
	); err != nil {
		return fmt.Errorf("failed to update rating of team %s: %w", teamID, err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO rating_history (team_id, recorded_at, rating, match_id) VALUES ($1, $2, $3, $4)`,
		teamID, at, rating, matchID,
	); err != nil {
		return fmt.Errorf("failed to append rating history: %w", err)
	}
	return nil
}

// GetHistory returns the team's most recent points in chronological order
func (r *PostgresRatingRepository) GetHistory(ctx context.Context, teamID uuid.UUID, limit int) ([]models.RatingHistoryPoint, error) {
	query := `
		SELECT team_id, recorded_at, rating, match_id FROM (
			SELECT team_id, recorded_at, rating, match_id
			FROM rating_history
			WHERE team_id = $1
			ORDER BY recorded_at DESC
			LIMIT $2
		) recent
		ORDER BY recorded_at ASC
	`

	rows, err := r.db.Query(ctx, query, teamID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var points []models.RatingHistoryPoint
	for rows.Next() {
		var p models.RatingHistoryPoint
		if err := rows.Scan(&p.TeamID, &p.RecordedAt, &p.Rating, &p.MatchID); err != nil {
			return nil, fmt.Errorf("failed to scan rating history: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
