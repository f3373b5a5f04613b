package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sportsedge/internal/logger"
	"github.com/yourusername/sportsedge/internal/metrics"
	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/rating"
	"github.com/yourusername/sportsedge/internal/repository"
)

// RatingService applies completed match results to team ratings
type RatingService struct {
	engine    *rating.Engine
	ratings   repository.RatingRepository
	matches   repository.MatchRepository
	validator *DataValidator
	logger    *logger.RatingLogger
	now       func() time.Time
}

// NewRatingService creates a new rating service
func NewRatingService(engine *rating.Engine, repos *repository.Repositories, log *logrus.Logger) *RatingService {
	return &RatingService{
		engine:    engine,
		ratings:   repos.Rating,
		matches:   repos.Match,
		validator: NewDataValidator(),
		logger:    logger.NewRatingLogger(log),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProcessMatch rates one completed match. Both teams are locked, rated from
// their current ratings and written together, so a failure leaves neither
// side changed. A replayed match returns models.ErrAlreadyApplied.
func (s *RatingService) ProcessMatch(ctx context.Context, match *models.Match) (rating.Deltas, error) {
	if err := s.validator.ValidateMatch(match); err != nil {
		s.logger.LogInvalidResult(match.ID, err)
		metrics.RecordFailure("rating", "invalid_result")
		return rating.Deltas{}, err
	}
	if !match.IsCompleted() {
		return rating.Deltas{}, fmt.Errorf("match %s is %s: %w", match.ID, match.Status, models.ErrInvalidMatchResult)
	}

	var deltas rating.Deltas
	update, err := s.ratings.ApplyMatch(ctx, match.ID, match.HomeTeamID, match.AwayTeamID, s.now(),
		func(home, away float64) (float64, float64, error) {
			if !models.ValidRating(home) {
				return 0, 0, fmt.Errorf("home team %s has no rating: %w", match.HomeTeamID, models.ErrMissingInput)
			}
			if !models.ValidRating(away) {
				return 0, 0, fmt.Errorf("away team %s has no rating: %w", match.AwayTeamID, models.ErrMissingInput)
			}
			d, err := s.engine.ApplyResult(match, home, away)
			if err != nil {
				return 0, 0, err
			}
			deltas = d
			return d.Home, d.Away, nil
		})

	switch {
	case err == nil:
	case errors.Is(err, models.ErrAlreadyApplied):
		s.logger.LogAlreadyApplied(match.ID)
		return rating.Deltas{}, err
	case errors.Is(err, models.ErrNotFound):
		metrics.RecordFailure("rating", "missing_input")
		return rating.Deltas{}, fmt.Errorf("match %s: %w: %w", match.ID, models.ErrMissingInput, err)
	case errors.Is(err, models.ErrMissingInput):
		metrics.RecordFailure("rating", "missing_input")
		return rating.Deltas{}, err
	case errors.Is(err, models.ErrInvalidMatchResult):
		s.logger.LogInvalidResult(match.ID, err)
		metrics.RecordFailure("rating", "invalid_result")
		return rating.Deltas{}, err
	default:
		metrics.RecordFailure("rating", "store")
		return rating.Deltas{}, fmt.Errorf("failed to update ratings for match %s: %w", match.ID, err)
	}

	s.logger.LogRatingUpdate(match.HomeTeamID, match.ID, update.HomeBefore, deltas.Home)
	s.logger.LogRatingUpdate(match.AwayTeamID, match.ID, update.AwayBefore, deltas.Away)
	for i := 0; i < 2; i++ {
		metrics.RecordRatingUpdate(string(match.Sport))
	}
	return deltas, nil
}

// CatchUp rates every completed match since the given time in kickoff order.
// Matches already applied to both teams are counted as skipped; a match
// rated for one team only is reported as a failure.
func (s *RatingService) CatchUp(ctx context.Context, sport models.Sport, since time.Time) (*CatchUpReport, error) {
	start := time.Now()
	report := newCatchUpReport(sport)

	matches, err := s.matches.GetCompletedSince(ctx, sport, since)
	if err != nil {
		return report, fmt.Errorf("failed to load completed matches: %w", err)
	}
	report.Total = len(matches)

	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		_, err := s.ProcessMatch(ctx, match)
		switch {
		case err == nil:
			report.Applied++
		case errors.Is(err, models.ErrAlreadyApplied):
			report.Skipped++
		default:
			report.Failures[match.ID] = err
		}
	}

	report.Duration = time.Since(start)
	s.logger.WithFields(logrus.Fields{
		"sport":   sport,
		"total":   report.Total,
		"applied": report.Applied,
		"skipped": report.Skipped,
		"failed":  report.Failed(),
	}).Info("Rating catch-up completed")

	return report, nil
}
