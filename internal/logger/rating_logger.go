package logger

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RatingLogger provides dedicated logging for rating updates.
type RatingLogger struct {
	*logrus.Entry
}

// NewRatingLogger creates a new rating logger.
func NewRatingLogger(baseLogger *logrus.Logger) *RatingLogger {
	return &RatingLogger{
		Entry: baseLogger.WithField("component", "rating"),
	}
}

// LogRatingUpdate logs a single team's rating change after a match.
func (rl *RatingLogger) LogRatingUpdate(teamID, matchID uuid.UUID, before, delta float64) {
	rl.WithFields(logrus.Fields{
		"team_id":       teamID.String(),
		"match_id":      matchID.String(),
		"rating_before": before,
		"rating_after":  before + delta,
		"delta":         delta,
	}).Info("Team rating updated")
}

// LogAlreadyApplied logs a replayed match that was skipped.
func (rl *RatingLogger) LogAlreadyApplied(matchID uuid.UUID) {
	rl.WithField("match_id", matchID.String()).Debug("Rating update already applied, skipping")
}

// LogInvalidResult logs a completed match rejected at ingestion.
func (rl *RatingLogger) LogInvalidResult(matchID uuid.UUID, err error) {
	rl.WithFields(logrus.Fields{
		"match_id": matchID.String(),
		"error":    err.Error(),
	}).Warn("Rejected invalid match result")
}
