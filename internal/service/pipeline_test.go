package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sportsedge/internal/edge"
	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/repository"
	"github.com/yourusername/sportsedge/internal/seed"
)

const pipelineSeed = `
teams:
  - name: Arsenal
    sport: football
    league: EPL
  - name: Chelsea
    sport: football
    league: EPL
matches:
  - sport: football
    home: Arsenal
    away: Chelsea
    scheduled_at: 2026-01-10T15:00:00Z
    status: completed
    home_score: 2
    away_score: 0
  - sport: football
    home: Chelsea
    away: Arsenal
    scheduled_at: 2026-01-24T15:00:00Z
    status: completed
    home_score: 0
    away_score: 1
  - sport: football
    home: Arsenal
    away: Chelsea
    scheduled_at: 2026-02-07T15:00:00Z
    status: completed
    home_score: 3
    away_score: 1
  - sport: football
    home: Arsenal
    away: Chelsea
    scheduled_at: 2026-03-01T15:00:00Z
`

func TestSeedRatePredictDetect(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()

	file, err := seed.Parse(strings.NewReader(pipelineSeed))
	require.NoError(t, err)
	seeded, err := seed.NewSeeder(repos.Team, repos.Match, quietLogger()).Apply(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, 2, seeded.TeamsCreated)
	assert.Equal(t, 4, seeded.Matches)

	arsenalID := seed.TeamID(models.SportFootball, "Arsenal")
	chelseaID := seed.TeamID(models.SportFootball, "Chelsea")

	// Ratings
	catchUp, err := newRatingService(repos).CatchUp(ctx, models.SportFootball, kickoff.AddDate(0, -3, 0))
	require.NoError(t, err)
	assert.Equal(t, 3, catchUp.Applied)
	assert.Zero(t, catchUp.Failed())

	arsenal, err := repos.Team.GetByID(ctx, arsenalID)
	require.NoError(t, err)
	chelsea, err := repos.Team.GetByID(ctx, chelseaID)
	require.NoError(t, err)
	assert.Greater(t, arsenal.Rating, 1300.0)
	assert.InDelta(t, 2600.0, arsenal.Rating+chelsea.Rating, 1e-9)

	history, err := repos.Rating.GetHistory(ctx, arsenalID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	// Predictions
	batch, err := newPredictionService(repos, 2).GenerateBatch(ctx, models.SportFootball, kickoff.Add(-time.Hour), kickoff.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, batch.Predictions, 1)
	pred := batch.Predictions[0]
	draw, ok := pred.Draw()
	require.True(t, ok)
	assert.InDelta(t, 1.0, pred.HomeWin()+draw+pred.AwayWin(), 1e-9)
	assert.Greater(t, pred.HomeWin(), pred.AwayWin())

	// Edges
	require.NoError(t, repos.Odds.Upsert(ctx, &models.MarketOdds{
		MatchID:   pred.MatchID,
		Bookmaker: "pinnacle",
		Home:      3.0,
		Draw:      floatPtr(3.4),
		Away:      2.6,
		FetchedAt: kickoff.Add(-2 * time.Hour),
	}))

	sink := &recordingSink{name: "test"}
	edges := NewEdgeService(edge.NewDetector(edge.DefaultConfig()), repos, 0, quietLogger(), sink)
	report, err := edges.ScanUpcoming(ctx, models.SportFootball, kickoff.Add(-time.Hour), kickoff.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, report.Edges, 1)
	assert.Empty(t, report.Unavailable)

	dominant := report.Edges[0].Dominant
	assert.Equal(t, models.OutcomeHome, dominant.Outcome)
	assert.Greater(t, dominant.Edge, 0.0)
	assert.True(t, report.Edges[0].Devigged)

	if dominant.Severity == models.SeverityLow {
		assert.Empty(t, sink.published)
	} else {
		assert.Len(t, sink.published, 1)
		assert.Equal(t, 1, report.Delivered)
	}
}
