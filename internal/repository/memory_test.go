package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sportsedge/internal/models"
)

func intPtr(v int) *int { return &v }

var kickoff = time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

func newTeam(t *testing.T, repos *Repositories, name string, sport models.Sport, rating float64) *models.Team {
	t.Helper()
	team := &models.Team{
		ID:              uuid.New(),
		Name:            name,
		Sport:           sport,
		League:          "EPL",
		Rating:          rating,
		RatingUpdatedAt: kickoff.AddDate(0, -6, 0),
		Active:          true,
	}
	require.NoError(t, repos.Team.Create(context.Background(), team))
	return team
}

func completed(home, away *models.Team, at time.Time, hs, as int) *models.Match {
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

func scheduled(home, away *models.Team, at time.Time) *models.Match {
	return &models.Match{
		ID:          uuid.New(),
		HomeTeamID:  home.ID,
		AwayTeamID:  away.ID,
		Sport:       home.Sport,
		ScheduledAt: at,
		Status:      models.MatchStatusScheduled,
	}
}

func TestMemoryTeamCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	arsenal := newTeam(t, repos, "Arsenal", models.SportFootball, 1300)
	newTeam(t, repos, "Lakers", models.SportBasketball, 1200)

	got, err := repos.Team.GetByID(ctx, arsenal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	got, err = repos.Team.GetByName(ctx, models.SportFootball, "Arsenal")
	require.NoError(t, err)
	assert.Equal(t, arsenal.ID, got.ID)

	football, err := repos.Team.GetBySport(ctx, models.SportFootball)
	require.NoError(t, err)
	assert.Len(t, football, 1)

	_, err = repos.Team.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)

	dup := *arsenal
	dup.ID = uuid.New()
	assert.ErrorIs(t, repos.Team.Create(ctx, &dup), models.ErrDuplicateKey)
}

func fixedDeltas(home, away float64) RatingCompute {
	return func(float64, float64) (float64, float64, error) { return home, away, nil }
}

func TestMemoryApplyMatchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	home := newTeam(t, repos, "Arsenal", models.SportFootball, 1500)
	away := newTeam(t, repos, "Chelsea", models.SportFootball, 1500)
	matchID := uuid.New()

	var seen [2]float64
	update, err := repos.Rating.ApplyMatch(ctx, matchID, home.ID, away.ID, kickoff,
		func(h, a float64) (float64, float64, error) {
			seen = [2]float64{h, a}
			return 12.5, -12.5, nil
		})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{1500, 1500}, seen)
	assert.Equal(t, RatingUpdate{HomeBefore: 1500, AwayBefore: 1500, HomeAfter: 1512.5, AwayAfter: 1487.5}, *update)

	called := false
	_, err = repos.Rating.ApplyMatch(ctx, matchID, home.ID, away.ID, kickoff,
		func(float64, float64) (float64, float64, error) {
			called = true
			return 12.5, -12.5, nil
		})
	assert.ErrorIs(t, err, models.ErrAlreadyApplied)
	assert.False(t, called)

	got, err := repos.Team.GetByID(ctx, home.ID)
	require.NoError(t, err)
	assert.Equal(t, 1512.5, got.Rating)

	history, err := repos.Rating.GetHistory(ctx, away.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].MatchID)
	require.NotNil(t, history[1].MatchID)
	assert.Equal(t, matchID, *history[1].MatchID)
	assert.Equal(t, 1487.5, history[1].Rating)

	_, err = repos.Rating.ApplyMatch(ctx, uuid.New(), home.ID, uuid.New(), kickoff, fixedDeltas(1, -1))
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repos.Rating.ApplyMatch(ctx, uuid.New(), home.ID, home.ID, kickoff, fixedDeltas(1, -1))
	assert.ErrorIs(t, err, models.ErrInvalidMatchResult)
}

func TestMemoryApplyMatchComputeErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	home := newTeam(t, repos, "Arsenal", models.SportFootball, 1500)
	away := newTeam(t, repos, "Chelsea", models.SportFootball, 1500)
	matchID := uuid.New()

	_, err := repos.Rating.ApplyMatch(ctx, matchID, home.ID, away.ID, kickoff,
		func(float64, float64) (float64, float64, error) {
			return 0, 0, models.ErrMissingInput
		})
	assert.ErrorIs(t, err, models.ErrMissingInput)

	for _, team := range []*models.Team{home, away} {
		history, err := repos.Rating.GetHistory(ctx, team.ID, 0)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	}

	_, err = repos.Rating.ApplyMatch(ctx, matchID, home.ID, away.ID, kickoff, fixedDeltas(8, -8))
	assert.NoError(t, err)
}

func TestMemoryApplyMatchPartiallyApplied(t *testing.T) {
	ctx := context.Background()
	s := newMemoryState()
	teams, ratings := &memoryTeams{s}, &memoryRatings{s}

	home := &models.Team{ID: uuid.New(), Name: "Arsenal", Sport: models.SportFootball, League: "EPL", Rating: 1500}
	away := &models.Team{ID: uuid.New(), Name: "Chelsea", Sport: models.SportFootball, League: "EPL", Rating: 1500}
	require.NoError(t, teams.Create(ctx, home))
	require.NoError(t, teams.Create(ctx, away))

	matchID := uuid.New()
	s.applied[appliedKey{team: home.ID, match: matchID}] = struct{}{}

	_, err := ratings.ApplyMatch(ctx, matchID, home.ID, away.ID, kickoff, fixedDeltas(10, -10))
	assert.ErrorIs(t, err, models.ErrPartiallyApplied)
	assert.NotErrorIs(t, err, models.ErrAlreadyApplied)
	assert.Equal(t, 1500.0, s.teams[away.ID].Rating)
}

func TestMemoryApplyMatchConcurrent(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	a := newTeam(t, repos, "A", models.SportBasketball, 1200)
	b := newTeam(t, repos, "B", models.SportBasketball, 1200)
	c := newTeam(t, repos, "C", models.SportBasketball, 1200)

	const updates = 200
	var wg sync.WaitGroup
	for i := 0; i < updates; i++ {
		wg.Add(2)
		at := kickoff.Add(time.Duration(i) * time.Minute)
		// both goroutines contend for b
		go func() {
			defer wg.Done()
			_, err := repos.Rating.ApplyMatch(ctx, uuid.New(), a.ID, b.ID, at, fixedDeltas(1, -1))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := repos.Rating.ApplyMatch(ctx, uuid.New(), b.ID, c.ID, at, fixedDeltas(2, -2))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	want := map[uuid.UUID]float64{a.ID: 1200 + updates, b.ID: 1200 + updates, c.ID: 1200 - 2*updates}
	for id, rating := range want {
		got, err := repos.Team.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, rating, got.Rating, got.Name)
	}

	history, err := repos.Rating.GetHistory(ctx, b.ID, 5)
	require.NoError(t, err)
	assert.Len(t, history, 5)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].RecordedAt.Before(history[i-1].RecordedAt))
	}
}

func TestMemoryApplyMatchDoesNotBlockOtherTeams(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	a := newTeam(t, repos, "A", models.SportFootball, 1500)
	b := newTeam(t, repos, "B", models.SportFootball, 1500)
	c := newTeam(t, repos, "C", models.SportFootball, 1500)
	d := newTeam(t, repos, "D", models.SportFootball, 1500)

	entered := make(chan struct{})
	release := make(chan struct{})
	held := make(chan error, 1)
	go func() {
		_, err := repos.Rating.ApplyMatch(ctx, uuid.New(), a.ID, b.ID, kickoff,
			func(float64, float64) (float64, float64, error) {
				close(entered)
				<-release
				return 5, -5, nil
			})
		held <- err
	}()
	<-entered

	done := make(chan error, 1)
	go func() {
		_, err := repos.Rating.ApplyMatch(ctx, uuid.New(), c.ID, d.ID, kickoff, fixedDeltas(3, -3))
		done <- err
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("update of unrelated teams waited on a locked pair")
	}

	close(release)
	assert.NoError(t, <-held)

	got, err := repos.Team.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1505.0, got.Rating)
}

func TestMemoryMatchQueries(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	home := newTeam(t, repos, "Arsenal", models.SportFootball, 1300)
	away := newTeam(t, repos, "Chelsea", models.SportFootball, 1300)
	other := newTeam(t, repos, "Everton", models.SportFootball, 1250)

	older := completed(home, away, kickoff.Add(-72*time.Hour), 2, 0)
	newer := completed(away, home, kickoff.Add(-24*time.Hour), 1, 1)
	unrelated := completed(home, other, kickoff.Add(-48*time.Hour), 0, 3)
	upcoming := scheduled(home, away, kickoff.Add(24*time.Hour))
	later := scheduled(other, away, kickoff.Add(10*24*time.Hour))
	for _, m := range []*models.Match{older, newer, unrelated, upcoming, later} {
		require.NoError(t, repos.Match.Upsert(ctx, m))
	}

	h2h, err := repos.Match.GetHeadToHead(ctx, home.ID, away.ID, 10)
	require.NoError(t, err)
	require.Len(t, h2h, 2)
	assert.Equal(t, newer.ID, h2h[0].ID)
	assert.Equal(t, older.ID, h2h[1].ID)

	recent, err := repos.Match.GetRecentByTeam(ctx, home.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, newer.ID, recent[0].ID)
	assert.Equal(t, unrelated.ID, recent[1].ID)

	up, err := repos.Match.GetUpcoming(ctx, models.SportFootball, kickoff, kickoff.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, up, 1)
	assert.Equal(t, upcoming.ID, up[0].ID)

	done, err := repos.Match.GetCompletedSince(ctx, models.SportFootball, kickoff.Add(-50*time.Hour))
	require.NoError(t, err)
	require.Len(t, done, 2)
	assert.Equal(t, unrelated.ID, done[0].ID)
	assert.Equal(t, newer.ID, done[1].ID)
}

func TestMemoryMatchUpsertGuards(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	home := newTeam(t, repos, "Celtics", models.SportBasketball, 1200)
	away := newTeam(t, repos, "Knicks", models.SportBasketball, 1200)

	tied := completed(home, away, kickoff, 100, 100)
	assert.ErrorIs(t, repos.Match.Upsert(ctx, tied), models.ErrInvalidMatchResult)

	m := scheduled(home, away, kickoff)
	require.NoError(t, repos.Match.Upsert(ctx, m))

	m.Status = models.MatchStatusCompleted
	m.HomeScore, m.AwayScore = intPtr(101), intPtr(99)
	require.NoError(t, repos.Match.Upsert(ctx, m))

	reverted := *m
	reverted.Status = models.MatchStatusScheduled
	reverted.HomeScore, reverted.AwayScore = nil, nil
	assert.ErrorIs(t, repos.Match.Upsert(ctx, &reverted), models.ErrInvalidMatchResult)

	rescored := *m
	rescored.HomeScore = intPtr(120)
	assert.ErrorIs(t, repos.Match.Upsert(ctx, &rescored), models.ErrInvalidMatchResult)

	require.NoError(t, repos.Match.Upsert(ctx, m))

	ghost := scheduled(home, &models.Team{ID: uuid.New(), Sport: models.SportBasketball}, kickoff)
	assert.ErrorIs(t, repos.Match.Upsert(ctx, ghost), models.ErrNotFound)
}

func TestMemoryMatchCopiesScores(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	home := newTeam(t, repos, "A", models.SportFootball, 1200)
	away := newTeam(t, repos, "B", models.SportFootball, 1200)
	m := completed(home, away, kickoff, 1, 0)
	require.NoError(t, repos.Match.Upsert(ctx, m))

	*m.HomeScore = 9

	got, err := repos.Match.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *got.HomeScore)
}

func TestMemoryPredictionUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	home := newTeam(t, repos, "A", models.SportFootball, 1200)
	away := newTeam(t, repos, "B", models.SportFootball, 1200)
	m := scheduled(home, away, kickoff)
	require.NoError(t, repos.Match.Upsert(ctx, m))

	first := &models.Prediction{ID: uuid.New(), MatchID: m.ID, Sport: m.Sport,
		Outcomes: models.Ternary{Home: 0.5, Draw: 0.25, Away: 0.25}, Confidence: 0.6}
	second := &models.Prediction{ID: uuid.New(), MatchID: m.ID, Sport: m.Sport,
		Outcomes: models.Ternary{Home: 0.4, Draw: 0.25, Away: 0.35}, Confidence: 0.7}

	require.NoError(t, repos.Prediction.Upsert(ctx, first))
	require.NoError(t, repos.Prediction.Upsert(ctx, second))

	got, err := repos.Prediction.GetByMatchID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.InDelta(t, 0.4, got.HomeWin(), 1e-12)

	_, err = repos.Prediction.GetByMatchID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)

	orphan := &models.Prediction{ID: uuid.New(), MatchID: uuid.New()}
	assert.ErrorIs(t, repos.Prediction.Upsert(ctx, orphan), models.ErrNotFound)
}

func TestMemoryOddsLatest(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories()
	home := newTeam(t, repos, "A", models.SportBasketball, 1200)
	away := newTeam(t, repos, "B", models.SportBasketball, 1200)
	m := scheduled(home, away, kickoff)
	require.NoError(t, repos.Match.Upsert(ctx, m))

	_, err := repos.Odds.GetLatest(ctx, m.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, repos.Odds.Upsert(ctx, &models.MarketOdds{MatchID: m.ID, Bookmaker: "pinnacle",
		Home: 1.9, Away: 2.0, FetchedAt: kickoff.Add(-2 * time.Hour)}))
	require.NoError(t, repos.Odds.Upsert(ctx, &models.MarketOdds{MatchID: m.ID, Bookmaker: "bet365",
		Home: 1.8, Away: 2.1, FetchedAt: kickoff.Add(-1 * time.Hour)}))

	latest, err := repos.Odds.GetLatest(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "bet365", latest.Bookmaker)

	require.NoError(t, repos.Odds.Upsert(ctx, &models.MarketOdds{MatchID: m.ID, Bookmaker: "pinnacle",
		Home: 1.95, Away: 1.95, FetchedAt: kickoff}))
	latest, err = repos.Odds.GetLatest(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "pinnacle", latest.Bookmaker)
	assert.Equal(t, 1.95, latest.Home)
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repos := NewMemoryRepositories()

	_, err := repos.Team.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
}
