package logger

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for predictions and edges.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogPrediction logs a generated prediction. A negative draw marks a
// sport without draws and is left out of the entry.
func (pl *PredictionLogger) LogPrediction(matchID uuid.UUID, sport string, home, draw, away, confidence float64) {
	fields := logrus.Fields{
		"match_id":   matchID.String(),
		"sport":      sport,
		"home_win":   home,
		"away_win":   away,
		"confidence": confidence,
	}
	if draw >= 0 {
		fields["draw"] = draw
	}
	pl.WithFields(fields).Info("Prediction generated")
}

// LogPredictionFailure logs a match the batch could not predict.
func (pl *PredictionLogger) LogPredictionFailure(matchID uuid.UUID, err error) {
	pl.WithFields(logrus.Fields{
		"match_id": matchID.String(),
		"error":    err.Error(),
	}).Warn("Prediction failed")
}

// LogBatch logs the outcome of a prediction batch.
func (pl *PredictionLogger) LogBatch(sport string, total, succeeded, failed int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"sport":       sport,
		"total":       total,
		"succeeded":   succeeded,
		"failed":      failed,
		"duration_ms": durationMs,
	}).Info("Prediction batch completed")
}

// LogEdge logs a detected edge.
func (pl *PredictionLogger) LogEdge(matchID uuid.UUID, outcome, severity, bookmaker string, edge, odds, kelly float64) {
	pl.WithFields(logrus.Fields{
		"match_id":       matchID.String(),
		"outcome":        outcome,
		"severity":       severity,
		"bookmaker":      bookmaker,
		"edge":           edge,
		"odds":           odds,
		"kelly_fraction": kelly,
	}).Info("Edge detected")
}

// LogEdgeUnavailable logs a match whose edge could not be computed.
func (pl *PredictionLogger) LogEdgeUnavailable(matchID uuid.UUID, reason string) {
	pl.WithFields(logrus.Fields{
		"match_id": matchID.String(),
		"reason":   reason,
	}).Debug("Edge unavailable")
}
