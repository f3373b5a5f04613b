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

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

// Upsert stores one bookmaker's quote for a match
func (o *PostgresOddsRepository) Upsert(ctx context.Context, odds *models.MarketOdds) error {
	query := `
		INSERT INTO market_odds (match_id, bookmaker, home_odds, away_odds, draw_odds, is_live, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (match_id, bookmaker) DO UPDATE SET
			home_odds = EXCLUDED.home_odds,
			away_odds = EXCLUDED.away_odds,
			draw_odds = EXCLUDED.draw_odds,
			is_live = EXCLUDED.is_live,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err := o.db.Exec(ctx, query,
		odds.MatchID, odds.Bookmaker, odds.Home, odds.Away, odds.Draw, odds.IsLive, odds.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert market odds: %w", err)
	}
	return nil
}

// GetLatest retrieves the freshest quote for a match
func (o *PostgresOddsRepository) GetLatest(ctx context.Context, matchID uuid.UUID) (*models.MarketOdds, error) {
	query := `
		SELECT match_id, bookmaker, home_odds, away_odds, draw_odds, is_live, fetched_at
		FROM market_odds
		WHERE match_id = $1
		ORDER BY fetched_at DESC, bookmaker ASC
		LIMIT 1
	`

	odds := &models.MarketOdds{}
	err := o.db.QueryRow(ctx, query, matchID).Scan(
		&odds.MatchID, &odds.Bookmaker, &odds.Home, &odds.Away, &odds.Draw, &odds.IsLive, &odds.FetchedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest odds: %w", err)
	}
	return odds, nil
}
