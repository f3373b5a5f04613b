package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/sportsedge/internal/models"
)

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetByName(ctx context.Context, sport models.Sport, name string) (*models.Team, error)
	GetBySport(ctx context.Context, sport models.Sport) ([]*models.Team, error)
}

// RatingCompute derives the home and away deltas of a match from both teams'
// current ratings. It runs while both teams are locked.
type RatingCompute func(home, away float64) (homeDelta, awayDelta float64, err error)

// RatingUpdate holds both teams' ratings either side of one applied match
type RatingUpdate struct {
	HomeBefore float64
	AwayBefore float64
	HomeAfter  float64
	AwayAfter  float64
}

// RatingRepository defines the interface for rating updates and history.
//
// ApplyMatch locks both teams in ID order, passes their current ratings to
// compute and writes both new ratings and history points as one unit. It is
// idempotent per match: a match already applied to both teams returns
// models.ErrAlreadyApplied, one applied to a single team returns
// models.ErrPartiallyApplied. On any error nothing is written.
type RatingRepository interface {
	ApplyMatch(ctx context.Context, matchID, homeID, awayID uuid.UUID, at time.Time, compute RatingCompute) (*RatingUpdate, error)
	// GetHistory returns the last limit points in chronological order; limit <= 0 returns all
	GetHistory(ctx context.Context, teamID uuid.UUID, limit int) ([]models.RatingHistoryPoint, error)
}

// MatchRepository defines the interface for match data access
type MatchRepository interface {
	Upsert(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	// GetUpcoming returns scheduled matches with from <= kickoff < to, earliest first
	GetUpcoming(ctx context.Context, sport models.Sport, from, to time.Time) ([]*models.Match, error)
	// GetCompletedSince returns completed matches kicked off at or after since, earliest first
	GetCompletedSince(ctx context.Context, sport models.Sport, since time.Time) ([]*models.Match, error)
	// GetHeadToHead returns completed meetings of the two teams, most recent first
	GetHeadToHead(ctx context.Context, teamA, teamB uuid.UUID, limit int) ([]models.Match, error)
	// GetRecentByTeam returns the team's completed matches, most recent first
	GetRecentByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]models.Match, error)
}

// PredictionRepository defines the interface for prediction data access.
// Upsert replaces any earlier prediction for the same match.
type PredictionRepository interface {
	Upsert(ctx context.Context, prediction *models.Prediction) error
	GetByMatchID(ctx context.Context, matchID uuid.UUID) (*models.Prediction, error)
}

// OddsRepository defines the interface for market odds data access
type OddsRepository interface {
	Upsert(ctx context.Context, odds *models.MarketOdds) error
	// GetLatest returns the most recently fetched quote for the match
	GetLatest(ctx context.Context, matchID uuid.UUID) (*models.MarketOdds, error)
}
