package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/sportsedge/internal/database"
	"github.com/yourusername/sportsedge/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Upsert stores the prediction, replacing any earlier one for the match
func (r *PostgresPredictionRepository) Upsert(ctx context.Context, p *models.Prediction) error {
	query := `
		INSERT INTO predictions (id, match_id, home_win_probability, away_win_probability,
			draw_probability, confidence_score, model_version, components, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (match_id) DO UPDATE SET
			id = EXCLUDED.id,
			home_win_probability = EXCLUDED.home_win_probability,
			away_win_probability = EXCLUDED.away_win_probability,
			draw_probability = EXCLUDED.draw_probability,
			confidence_score = EXCLUDED.confidence_score,
			model_version = EXCLUDED.model_version,
			components = EXCLUDED.components,
			created_at = EXCLUDED.created_at
	`

	var draw *float64
	if d, ok := p.Draw(); ok {
		draw = &d
	}
	components := p.Components
	if components == nil {
		components = []models.ComponentScore{}
	}

	_, err := r.db.Exec(ctx, query,
		p.ID, p.MatchID, p.HomeWin(), p.AwayWin(), draw,
		p.Confidence, p.ModelVersion, components, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert prediction: %w", err)
	}
	return nil
}

// GetByMatchID retrieves the current prediction for a match
func (r *PostgresPredictionRepository) GetByMatchID(ctx context.Context, matchID uuid.UUID) (*models.Prediction, error) {
	query := `
		SELECT p.id, p.match_id, m.sport, p.home_win_probability, p.away_win_probability,
		       p.draw_probability, p.confidence_score, p.model_version, p.components, p.created_at
		FROM predictions p
		JOIN matches m ON m.id = p.match_id
		WHERE p.match_id = $1
	`

	var (
		p          models.Prediction
		sport      string
		home, away float64
		draw       *float64
	)
	err := r.db.QueryRow(ctx, query, matchID).Scan(
		&p.ID, &p.MatchID, &sport, &home, &away, &draw,
		&p.Confidence, &p.ModelVersion, &p.Components, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	p.Sport = models.Sport(sport)
	p.Outcomes = models.OutcomesFromColumns(home, away, draw)
	return &p, nil
}
