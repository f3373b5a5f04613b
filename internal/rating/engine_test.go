package rating

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sportsedge/internal/models"
)

func intPtr(v int) *int { return &v }

func completedMatch(sport models.Sport, home, away int) *models.Match {
	return &models.Match{
		ID:         uuid.New(),
		HomeTeamID: uuid.New(),
		AwayTeamID: uuid.New(),
		Sport:      sport,
		Status:     models.MatchStatusCompleted,
		HomeScore:  intPtr(home),
		AwayScore:  intPtr(away),
	}
}

func TestExpectedScoreEqualRatings(t *testing.T) {
	assert.Equal(t, 0.5, ExpectedScore(1500, 1500, 400))
	assert.Equal(t, 0.5, ExpectedScore(1234.5, 1234.5, 400))
}

func TestExpectedScoreSymmetry(t *testing.T) {
	a := ExpectedScore(1600, 1400, 400)
	b := ExpectedScore(1400, 1600, 400)
	assert.InDelta(t, 1.0, a+b, 1e-12)
	assert.InDelta(t, 0.759747, a, 1e-6)
}

func TestMarginMultiplier(t *testing.T) {
	tests := []struct {
		name   string
		margin int
		want   float64
	}{
		{"zero floors at one", 0, 1},
		{"one goal floors at one", 1, 1},
		{"two goals", 2, math.Log(3)},
		{"three goals", 3, math.Log(4)},
		{"negative uses magnitude", -3, math.Log(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MarginMultiplier(tt.margin), 1e-12)
		})
	}
}

func TestUpdateWinnerGainsLoserLoses(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	pairs := [][2]float64{{1500, 1500}, {1800, 1200}, {1200, 1800}, {1000, 2000}, {1650.25, 1649.75}}

	for _, venue := range []Venue{Neutral, FirstAtHome, SecondAtHome} {
		for _, p := range pairs {
			for _, margin := range []int{1, 2, 5, 30} {
				w, l, err := engine.Update(p[0], p[1], models.SportBasketball, margin, venue)
				require.NoError(t, err)
				assert.Greater(t, w, 0.0)
				assert.Less(t, l, 0.0)
				assert.Equal(t, w, -l)
			}
		}
	}
}

func TestUpdateZeroMarginRejected(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	_, _, err := engine.Update(1500, 1500, models.SportFootball, 0, FirstAtHome)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidMatchResult))
}

func TestUpdateRejectsNonFiniteRating(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	_, _, err := engine.Update(math.NaN(), 1500, models.SportFootball, 1, Neutral)
	assert.ErrorIs(t, err, models.ErrMissingInput)
}

func TestUpdateHomeWinExample(t *testing.T) {
	engine := NewEngine(Config{KFactor: 32, HomeAdvantage: 100, Scale: 400})

	expected := 1.0 / (1.0 + math.Pow(10, (1400-(1600+100))/400.0))
	assert.InDelta(t, expected, engine.Expected(1600, 1400, FirstAtHome), 1e-12)

	oneGoal, _, err := engine.Update(1600, 1400, models.SportFootball, 1, FirstAtHome)
	require.NoError(t, err)
	threeGoals, _, err := engine.Update(1600, 1400, models.SportFootball, 3, FirstAtHome)
	require.NoError(t, err)

	assert.InDelta(t, 32*(1-expected), oneGoal, 1e-9)
	assert.Greater(t, threeGoals, oneGoal)
	assert.Less(t, threeGoals, 3*oneGoal)
}

func TestHomeAdvantageIsNotPersisted(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	match := completedMatch(models.SportFootball, 2, 1)

	deltas, err := engine.ApplyResult(match, 1500, 1500)
	require.NoError(t, err)
	// The home side was favoured, so its win earns less than 16 points.
	assert.Less(t, deltas.Home, 16.0)
	assert.InDelta(t, 0, deltas.Home+deltas.Away, 1e-12)
}

func TestUpdateDraw(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	a, b, err := engine.UpdateDraw(1500, 1500, models.SportFootball, Neutral)
	require.NoError(t, err)
	assert.Equal(t, 0.0, a)
	assert.Equal(t, 0.0, b)

	a, b, err = engine.UpdateDraw(1500, 1500, models.SportFootball, FirstAtHome)
	require.NoError(t, err)
	assert.Less(t, a, 0.0, "home side drawing at home underperforms")
	assert.Equal(t, a, -b)

	_, _, err = engine.UpdateDraw(1500, 1500, models.SportBasketball, Neutral)
	assert.ErrorIs(t, err, models.ErrInvalidMatchResult)
}

func TestApplyResult(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	tests := []struct {
		name      string
		match     *models.Match
		homeSign  float64
		expectErr error
	}{
		{"home win", completedMatch(models.SportFootball, 3, 0), 1, nil},
		{"away win", completedMatch(models.SportBasketball, 99, 104), -1, nil},
		{"football draw", completedMatch(models.SportFootball, 1, 1), -1, nil},
		{"basketball tie", completedMatch(models.SportBasketball, 100, 100), 0, models.ErrInvalidMatchResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deltas, err := engine.ApplyResult(tt.match, 1500, 1500)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.homeSign, math.Copysign(1, deltas.Home))
			assert.InDelta(t, 0, deltas.Home+deltas.Away, 1e-12)
		})
	}
}

func TestApplyResultRequiresCompletedMatch(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	match := completedMatch(models.SportFootball, 1, 0)
	match.Status = models.MatchStatusScheduled
	match.HomeScore, match.AwayScore = nil, nil

	_, err := engine.ApplyResult(match, 1500, 1500)
	assert.ErrorIs(t, err, models.ErrInvalidMatchResult)
}

func TestNewEngineFillsDefaults(t *testing.T) {
	engine := NewEngine(Config{HomeAdvantage: 60})
	cfg := engine.Config()
	assert.Equal(t, 32.0, cfg.KFactor)
	assert.Equal(t, 400.0, cfg.Scale)
	assert.Equal(t, 60.0, cfg.HomeAdvantage)
}

func TestInitialRating(t *testing.T) {
	assert.Equal(t, 1400.0, InitialRating("Champions League"))
	assert.Equal(t, 1300.0, InitialRating("EPL"))
	assert.Equal(t, 1200.0, InitialRating("NBA"))
	assert.Equal(t, 1200.0, InitialRating("Serie A"))
}

func TestAdaptiveKFactor(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	assert.InDelta(t, 25.6, engine.AdaptiveKFactor(1700, 1), 1e-9)
	assert.InDelta(t, 28.8, engine.AdaptiveKFactor(1500, 1), 1e-9)
	assert.InDelta(t, 64, engine.AdaptiveKFactor(1300, 2), 1e-9)
	assert.InDelta(t, 32, engine.AdaptiveKFactor(1300, 0), 1e-9)
}
