// Package repository provides persistence for teams, ratings, matches,
// predictions and market odds, backed by PostgreSQL or memory.
package repository

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/sportsedge/internal/database"
	"github.com/yourusername/sportsedge/internal/models"
)

// Repositories holds all repository implementations
type Repositories struct {
	Team       TeamRepository
	Rating     RatingRepository
	Match      MatchRepository
	Prediction PredictionRepository
	Odds       OddsRepository
}

// NewRepositories creates the PostgreSQL repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Team:       NewPostgresTeamRepository(db),
		Rating:     NewPostgresRatingRepository(db),
		Match:      NewPostgresMatchRepository(db),
		Prediction: NewPostgresPredictionRepository(db),
		Odds:       NewPostgresOddsRepository(db),
	}, nil
}

// NewMemoryRepositories creates repositories sharing one in-memory state
func NewMemoryRepositories() *Repositories {
	s := newMemoryState()
	return &Repositories{
		Team:       &memoryTeams{s},
		Rating:     &memoryRatings{s},
		Match:      &memoryMatches{s},
		Prediction: &memoryPredictions{s},
		Odds:       &memoryOdds{s},
	}
}

// appliedState rejects a match already recorded in either team's history
func appliedState(matchID uuid.UUID, homeDone, awayDone bool) error {
	switch {
	case homeDone && awayDone:
		return fmt.Errorf("match %s: %w", matchID, models.ErrAlreadyApplied)
	case homeDone || awayDone:
		return fmt.Errorf("match %s: %w", matchID, models.ErrPartiallyApplied)
	}
	return nil
}
