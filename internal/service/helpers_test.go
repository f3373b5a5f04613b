package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/repository"
)

var (
	kickoff = time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	created = kickoff.AddDate(0, -6, 0)
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTeam(t *testing.T, repos *repository.Repositories, name string, sport models.Sport, rating float64) *models.Team {
	t.Helper()
	team := &models.Team{
		ID:              uuid.New(),
		Name:            name,
		Sport:           sport,
		League:          "test",
		Rating:          rating,
		RatingUpdatedAt: created,
		Active:          true,
	}
	require.NoError(t, repos.Team.Create(context.Background(), team))
	return team
}

func completedMatch(home, away *models.Team, at time.Time, hs, as int) *models.Match {
	return &models.Match{
		ID:          uuid.New(),
		HomeTeamID:  home.ID,
		AwayTeamID:  away.ID,
		Sport:       home.Sport,
		ScheduledAt: at,
		Status:      models.MatchStatusCompleted,
		HomeScore:   intPtr(hs),
		AwayScore:   intPtr(as),
	}
}

func scheduledMatch(home, away *models.Team, at time.Time) *models.Match {
	return &models.Match{
		ID:          uuid.New(),
		HomeTeamID:  home.ID,
		AwayTeamID:  away.ID,
		Sport:       home.Sport,
		ScheduledAt: at,
		Status:      models.MatchStatusScheduled,
	}
}

func store(t *testing.T, repos *repository.Repositories, matches ...*models.Match) {
	t.Helper()
	for _, m := range matches {
		require.NoError(t, repos.Match.Upsert(context.Background(), m))
	}
}
