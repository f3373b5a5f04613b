package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/sportsedge/internal/logger"
	"github.com/yourusername/sportsedge/internal/metrics"
	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/prediction"
	"github.com/yourusername/sportsedge/internal/repository"
)

// PredictionService assembles prediction contexts from the repositories,
// runs the ensemble and stores the result.
type PredictionService struct {
	predictor   *prediction.Predictor
	teams       repository.TeamRepository
	ratings     repository.RatingRepository
	matches     repository.MatchRepository
	predictions repository.PredictionRepository
	workers     int
	logger      *logger.PredictionLogger
}

// NewPredictionService creates a new prediction service. workers <= 0 selects GOMAXPROCS.
func NewPredictionService(predictor *prediction.Predictor, repos *repository.Repositories, workers int, log *logrus.Logger) *PredictionService {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &PredictionService{
		predictor:   predictor,
		teams:       repos.Team,
		ratings:     repos.Rating,
		matches:     repos.Match,
		predictions: repos.Prediction,
		workers:     workers,
		logger:      logger.NewPredictionLogger(log),
	}
}

// BuildContext loads everything the ensemble needs for one match
func (s *PredictionService) BuildContext(ctx context.Context, match *models.Match) (*prediction.Context, error) {
	cfg := s.predictor.Config()

	home, err := s.team(ctx, match.HomeTeamID)
	if err != nil {
		return nil, err
	}
	away, err := s.team(ctx, match.AwayTeamID)
	if err != nil {
		return nil, err
	}

	h2h, err := s.matches.GetHeadToHead(ctx, home.ID, away.ID, cfg.HeadToHead.MaxSamples)
	if err != nil {
		return nil, fmt.Errorf("failed to load head-to-head: %w", err)
	}

	homeTrajectory, err := s.ratings.GetHistory(ctx, home.ID, cfg.Form.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating history of %s: %w", home.Name, err)
	}
	awayTrajectory, err := s.ratings.GetHistory(ctx, away.ID, cfg.Form.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating history of %s: %w", away.Name, err)
	}

	return &prediction.Context{
		Match:          match,
		HomeTeam:       home,
		AwayTeam:       away,
		HeadToHead:     h2h,
		HomeTrajectory: homeTrajectory,
		AwayTrajectory: awayTrajectory,
	}, nil
}

func (s *PredictionService) team(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("team %s: %w", id, models.ErrMissingInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team %s: %w", id, err)
	}
	return team, nil
}

// PredictMatch predicts one match and overwrites any stored prediction for it
func (s *PredictionService) PredictMatch(ctx context.Context, match *models.Match) (*models.Prediction, error) {
	pctx, err := s.BuildContext(ctx, match)
	if err != nil {
		return nil, err
	}

	pred, err := s.predictor.Predict(pctx)
	if err != nil {
		return nil, err
	}

	if err := s.predictions.Upsert(ctx, pred); err != nil {
		return nil, fmt.Errorf("failed to store prediction: %w", err)
	}

	draw := -1.0
	if d, ok := pred.Draw(); ok {
		draw = d
	}
	s.logger.LogPrediction(match.ID, string(match.Sport), pred.HomeWin(), draw, pred.AwayWin(), pred.Confidence)
	metrics.RecordPrediction(string(match.Sport), pred.Confidence)
	return pred, nil
}

// PredictMatchByID loads the match and predicts it
func (s *PredictionService) PredictMatchByID(ctx context.Context, matchID uuid.UUID) (*models.Prediction, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	return s.PredictMatch(ctx, match)
}

// GenerateBatch predicts every scheduled match of the sport kicking off in
// [from, to) across a bounded worker pool. Failures are recorded per match and
// never stop the rest of the batch; cancelling ctx stops new matches from starting.
func (s *PredictionService) GenerateBatch(ctx context.Context, sport models.Sport, from, to time.Time) (*BatchReport, error) {
	start := time.Now()

	matches, err := s.matches.GetUpcoming(ctx, sport, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming matches: %w", err)
	}
	report := newBatchReport(sport, len(matches))

	var g errgroup.Group
	g.SetLimit(s.workers)

	for _, match := range matches {
		if ctx.Err() != nil {
			break
		}
		match := match
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.recordFailure(match.ID, err)
				return nil
			}
			pred, err := s.PredictMatch(ctx, match)
			if err != nil {
				s.logger.LogPredictionFailure(match.ID, err)
				metrics.RecordFailure("prediction", failureKind(err))
				report.recordFailure(match.ID, err)
				return nil
			}
			report.recordPrediction(pred)
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	metrics.RecordBatchDuration(string(sport), report.Duration.Seconds())
	s.logger.LogBatch(string(sport), report.Total, report.Succeeded(), report.Failed(),
		float64(report.Duration.Microseconds())/1000)

	return report, ctx.Err()
}

// failureKind maps an error onto the failure metric label
func failureKind(err error) string {
	switch {
	case errors.Is(err, models.ErrMissingInput):
		return "missing_input"
	case errors.Is(err, models.ErrInvalidMatchResult):
		return "invalid_result"
	case errors.Is(err, models.ErrInvalidOdds):
		return "invalid_odds"
	case errors.Is(err, models.ErrNumericDrift):
		return "numeric_drift"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
