package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/prediction"
	"github.com/yourusername/sportsedge/internal/repository"
)

func newPredictionService(repos *repository.Repositories, workers int) *PredictionService {
	return NewPredictionService(prediction.NewPredictor(prediction.DefaultConfig(), quietLogger()), repos, workers, quietLogger())
}

func TestBuildContext(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()
	home := newTeam(t, repos, "Arsenal", models.SportFootball, 1550)
	away := newTeam(t, repos, "Chelsea", models.SportFootball, 1500)
	past := []*models.Match{
		completedMatch(home, away, kickoff.AddDate(0, -3, 0), 2, 0),
		completedMatch(away, home, kickoff.AddDate(0, -2, 0), 1, 1),
		completedMatch(home, away, kickoff.AddDate(0, -1, 0), 0, 1),
	}
	next := scheduledMatch(home, away, kickoff.AddDate(0, 0, 7))
	store(t, repos, append(past, next)...)

	pctx, err := newPredictionService(repos, 1).BuildContext(ctx, next)
	require.NoError(t, err)

	assert.Equal(t, home.ID, pctx.HomeTeam.ID)
	assert.Equal(t, away.ID, pctx.AwayTeam.ID)
	require.Len(t, pctx.HeadToHead, 3)
	assert.Equal(t, past[2].ID, pctx.HeadToHead[0].ID, "head-to-head is most recent first")
	assert.Len(t, pctx.HomeTrajectory, 1)
	assert.Len(t, pctx.AwayTrajectory, 1)
}

func TestPredictMatchStoresPrediction(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()
	home := newTeam(t, repos, "Arsenal", models.SportFootball, 1600)
	away := newTeam(t, repos, "Chelsea", models.SportFootball, 1400)
	match := scheduledMatch(home, away, kickoff)
	store(t, repos, match)

	s := newPredictionService(repos, 1)
	first, err := s.PredictMatchByID(ctx, match.ID)
	require.NoError(t, err)

	draw, ok := first.Draw()
	require.True(t, ok)
	assert.InDelta(t, 1.0, first.HomeWin()+draw+first.AwayWin(), 1e-6)
	assert.Greater(t, first.HomeWin(), first.AwayWin())
	assert.Equal(t, prediction.ModelVersion, first.ModelVersion)

	second, err := s.PredictMatch(ctx, match)
	require.NoError(t, err)

	stored, err := repos.Prediction.GetByMatchID(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, stored.ID, "a new prediction replaces the old one")
}

func TestPredictMatchUnknownTeam(t *testing.T) {
	repos := repository.NewMemoryRepositories()
	home := newTeam(t, repos, "Arsenal", models.SportFootball, 1600)
	ghost := &models.Team{ID: uuid.New(), Sport: models.SportFootball}
	match := scheduledMatch(home, ghost, kickoff)

	_, err := newPredictionService(repos, 1).PredictMatch(context.Background(), match)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMissingInput)
}

func TestGenerateBatchIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()
	celtics := newTeam(t, repos, "Celtics", models.SportBasketball, 1250)
	nuggets := newTeam(t, repos, "Nuggets", models.SportBasketball, 1230)
	lakers := newTeam(t, repos, "Lakers", models.SportBasketball, 1210)
	expansion := newTeam(t, repos, "Expansion", models.SportBasketball, 0)

	broken := scheduledMatch(expansion, celtics, kickoff.Add(2*time.Hour))
	store(t, repos,
		scheduledMatch(celtics, nuggets, kickoff),
		scheduledMatch(nuggets, lakers, kickoff.Add(time.Hour)),
		broken,
		scheduledMatch(lakers, celtics, kickoff.Add(3*time.Hour)),
		scheduledMatch(lakers, nuggets, kickoff.AddDate(0, 1, 0)),
	)

	report, err := newPredictionService(repos, 3).GenerateBatch(ctx, models.SportBasketball, kickoff, kickoff.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 3, report.Succeeded())
	assert.Equal(t, 1, report.Failed())
	require.Contains(t, report.Failures, broken.ID)
	assert.ErrorIs(t, report.Failures[broken.ID], models.ErrMissingInput)

	for _, p := range report.Predictions {
		_, hasDraw := p.Draw()
		assert.False(t, hasDraw)
		assert.InDelta(t, 1.0, p.HomeWin()+p.AwayWin(), 1e-6)

		stored, err := repos.Prediction.GetByMatchID(ctx, p.MatchID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, stored.ID)
	}
}

func TestGenerateBatchCancelled(t *testing.T) {
	repos := repository.NewMemoryRepositories()
	home := newTeam(t, repos, "Celtics", models.SportBasketball, 1250)
	away := newTeam(t, repos, "Nuggets", models.SportBasketball, 1230)
	store(t, repos, scheduledMatch(home, away, kickoff))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPredictionService(repos, 2).GenerateBatch(ctx, models.SportBasketball, kickoff, kickoff.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFailureKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{models.ErrMissingInput, "missing_input"},
		{models.ErrInvalidOdds, "invalid_odds"},
		{models.ErrNumericDrift, "numeric_drift"},
		{models.ErrInvalidMatchResult, "invalid_result"},
		{context.Canceled, "cancelled"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, failureKind(tt.err))
		})
	}
}
