package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v int) *int { return &v }

func TestMatchValidate(t *testing.T) {
	home, away := uuid.New(), uuid.New()
	base := func(status MatchStatus, hs, as *int) *Match {
		return &Match{
			ID:          uuid.New(),
			HomeTeamID:  home,
			AwayTeamID:  away,
			Sport:       SportFootball,
			ScheduledAt: time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC),
			Status:      status,
			HomeScore:   hs,
			AwayScore:   as,
		}
	}

	tests := []struct {
		name    string
		match   func() *Match
		wantErr bool
	}{
		{"scheduled without scores", func() *Match { return base(MatchStatusScheduled, nil, nil) }, false},
		{"completed football draw", func() *Match { return base(MatchStatusCompleted, score(1), score(1)) }, false},
		{"live with running score", func() *Match { return base(MatchStatusLive, score(0), score(1)) }, false},
		{"completed without scores", func() *Match { return base(MatchStatusCompleted, nil, nil) }, true},
		{"scheduled with scores", func() *Match { return base(MatchStatusScheduled, score(2), score(0)) }, true},
		{"postponed with scores", func() *Match { return base(MatchStatusPostponed, score(2), score(0)) }, true},
		{"one score only", func() *Match { return base(MatchStatusCompleted, score(2), nil) }, true},
		{"negative score", func() *Match { return base(MatchStatusCompleted, score(-1), score(0)) }, true},
		{"basketball draw", func() *Match {
			m := base(MatchStatusCompleted, score(100), score(100))
			m.Sport = SportBasketball
			return m
		}, true},
		{"team plays itself", func() *Match {
			m := base(MatchStatusScheduled, nil, nil)
			m.AwayTeamID = m.HomeTeamID
			return m
		}, true},
		{"unknown status", func() *Match { return base(MatchStatus("abandoned"), nil, nil) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.match().Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMatchResult)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMatchResult(t *testing.T) {
	home, away := uuid.New(), uuid.New()
	m := &Match{HomeTeamID: home, AwayTeamID: away, Sport: SportBasketball, Status: MatchStatusCompleted, HomeScore: score(98), AwayScore: score(104)}

	result, err := m.Result()
	require.NoError(t, err)
	assert.Equal(t, SideAway, result.Winner)
	assert.Equal(t, 6, result.Margin)
	assert.False(t, result.IsDraw())

	won, err := m.OutcomeFor(away)
	require.NoError(t, err)
	assert.Equal(t, 1.0, won)
	lost, err := m.OutcomeFor(home)
	require.NoError(t, err)
	assert.Equal(t, 0.0, lost)

	m.Status = MatchStatusScheduled
	_, err = m.Result()
	assert.ErrorIs(t, err, ErrInvalidMatchResult)
}

func TestOutcomes(t *testing.T) {
	var order []Outcome
	Ternary{Home: 0.5, Draw: 0.2, Away: 0.3}.Each(func(o Outcome, _ float64) { order = append(order, o) })
	assert.Equal(t, []Outcome{OutcomeHome, OutcomeDraw, OutcomeAway}, order)

	_, ok := Probability(Binary{Home: 0.6, Away: 0.4}, OutcomeDraw)
	assert.False(t, ok)
	_, ok = Probability(nil, OutcomeHome)
	assert.False(t, ok)

	assert.True(t, WellFormed(Binary{Home: 0.6, Away: 0.4}))
	assert.False(t, WellFormed(Binary{Home: 0.6, Away: 0.5}))
	assert.False(t, WellFormed(Ternary{Home: math.NaN(), Draw: 0.5, Away: 0.5}))
	assert.True(t, WellFormed(Ternary{Home: 0.6, Draw: 0.3, Away: 0.2}.Normalize()))
}

func TestPredictionJSON(t *testing.T) {
	tests := []struct {
		name     string
		pred     Prediction
		wantDraw bool
	}{
		{
			name:     "basketball omits draw",
			pred:     Prediction{ID: uuid.New(), Sport: SportBasketball, Outcomes: Binary{Home: 0.58, Away: 0.42}},
			wantDraw: false,
		},
		{
			name:     "football carries draw",
			pred:     Prediction{ID: uuid.New(), Sport: SportFootball, Outcomes: Ternary{Home: 0.45, Draw: 0.27, Away: 0.28}},
			wantDraw: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.pred)
			require.NoError(t, err)

			var raw map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &raw))
			assert.Contains(t, raw, "home_win_probability")
			assert.Contains(t, raw, "away_win_probability")
			_, hasDraw := raw["draw_probability"]
			assert.Equal(t, tt.wantDraw, hasDraw)

			var back Prediction
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.pred.Outcomes, back.Outcomes)
		})
	}
}

func TestPredictionJSONRejectsMismatchedSport(t *testing.T) {
	data := []byte(`{"sport":"basketball","home_win_probability":0.4,"away_win_probability":0.3,"draw_probability":0.3}`)
	var p Prediction
	assert.Error(t, json.Unmarshal(data, &p))
}

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SeverityHigh.AtLeast(SeverityMedium))
	assert.True(t, SeverityMedium.AtLeast(SeverityMedium))
	assert.False(t, SeverityLow.AtLeast(SeverityMedium))
	assert.Equal(t, -1, Severity("extreme").Rank())
}

func TestMarketOddsPrice(t *testing.T) {
	draw := 3.4
	o := &MarketOdds{Home: 2.1, Away: 3.6, Draw: &draw, FetchedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	p, ok := o.Price(OutcomeDraw)
	require.True(t, ok)
	assert.Equal(t, 3.4, p)

	o.Draw = nil
	_, ok = o.Price(OutcomeDraw)
	assert.False(t, ok)

	assert.Equal(t, 90*time.Minute, o.Age(o.FetchedAt.Add(90*time.Minute)))
}
