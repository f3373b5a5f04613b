package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sportsedge/internal/edge"
	"github.com/yourusername/sportsedge/internal/logger"
	"github.com/yourusername/sportsedge/internal/metrics"
	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/repository"
)

// EdgeSink receives detected edges; Redis streams, Telegram and the websocket hub implement it
type EdgeSink interface {
	Name() string
	Publish(ctx context.Context, edge *models.Edge) error
}

// EdgeService compares stored predictions with the latest stored odds
type EdgeService struct {
	detector    *edge.Detector
	matches     repository.MatchRepository
	predictions repository.PredictionRepository
	odds        repository.OddsRepository
	sinks       []EdgeSink
	maxOddsAge  time.Duration
	logger      *logger.PredictionLogger
	now         func() time.Time
}

// NewEdgeService creates a new edge service. maxOddsAge <= 0 disables the staleness check.
func NewEdgeService(detector *edge.Detector, repos *repository.Repositories, maxOddsAge time.Duration, log *logrus.Logger, sinks ...EdgeSink) *EdgeService {
	return &EdgeService{
		detector:    detector,
		matches:     repos.Match,
		predictions: repos.Prediction,
		odds:        repos.Odds,
		sinks:       sinks,
		maxOddsAge:  maxOddsAge,
		logger:      logger.NewPredictionLogger(log),
		now:         time.Now,
	}
}

// EdgeForMatch computes the edge of one match. Missing or stale odds wrap
// models.ErrInvalidOdds; a missing prediction wraps models.ErrMissingInput.
func (s *EdgeService) EdgeForMatch(ctx context.Context, matchID uuid.UUID) (*models.Edge, error) {
	pred, err := s.predictions.GetByMatchID(ctx, matchID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("no prediction for match %s: %w", matchID, models.ErrMissingInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load prediction: %w", err)
	}

	odds, err := s.odds.GetLatest(ctx, matchID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("no odds for match %s: %w", matchID, models.ErrInvalidOdds)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load odds: %w", err)
	}

	if s.maxOddsAge > 0 {
		if age := odds.Age(s.now()); age > s.maxOddsAge {
			return nil, fmt.Errorf("odds for match %s are %s old: %w", matchID, age.Round(time.Minute), models.ErrInvalidOdds)
		}
	}

	return s.detector.Edge(pred, odds)
}

// ScanUpcoming computes edges for every scheduled match in [from, to),
// ranks them and hands medium and high severity edges to the sinks.
func (s *EdgeService) ScanUpcoming(ctx context.Context, sport models.Sport, from, to time.Time) (*EdgeReport, error) {
	report, err := s.Upcoming(ctx, sport, from, to)
	if err != nil {
		return report, err
	}
	s.record(report)
	report.Delivered = s.dispatch(ctx, report.Edges)
	return report, nil
}

// record logs and counts a scan's edges and unavailable matches
func (s *EdgeService) record(report *EdgeReport) {
	for matchID, err := range report.Unavailable {
		s.logger.LogEdgeUnavailable(matchID, err.Error())
		metrics.RecordFailure("edge", failureKind(err))
	}
	for _, e := range report.Edges {
		d := e.Dominant
		metrics.RecordEdge(string(report.Sport), string(d.Severity), math.Abs(d.Edge))
		s.logger.LogEdge(e.MatchID, string(d.Outcome), string(d.Severity), e.Odds.Bookmaker, d.Edge, d.Odds, d.KellyFraction)
	}
}

// Upcoming computes and ranks the edges of scheduled matches in [from, to)
// without delivering, logging or counting them.
func (s *EdgeService) Upcoming(ctx context.Context, sport models.Sport, from, to time.Time) (*EdgeReport, error) {
	matches, err := s.matches.GetUpcoming(ctx, sport, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming matches: %w", err)
	}

	report := &EdgeReport{Sport: sport, Unavailable: make(map[uuid.UUID]error)}
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		e, err := s.EdgeForMatch(ctx, match.ID)
		if err != nil {
			report.Unavailable[match.ID] = err
			continue
		}
		report.Edges = append(report.Edges, e)
	}

	edge.Rank(report.Edges)
	return report, nil
}

func (s *EdgeService) dispatch(ctx context.Context, edges []*models.Edge) int {
	delivered := 0
	for _, e := range edges {
		if e.Dominant.Severity == models.SeverityLow {
			continue
		}
		for _, sink := range s.sinks {
			err := sink.Publish(ctx, e)
			metrics.RecordEdgeDelivery(sink.Name(), err)
			if err != nil {
				s.logger.WithFields(logrus.Fields{
					"sink":     sink.Name(),
					"match_id": e.MatchID.String(),
					"error":    err.Error(),
				}).Warn("Failed to deliver edge")
				continue
			}
			delivered++
		}
	}
	return delivered
}
