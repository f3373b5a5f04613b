package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/oddsfeed"
	"github.com/yourusername/sportsedge/internal/repository"
)

type fakeFetcher struct {
	events []oddsfeed.Event
	err    error
	calls  []string
}

func (f *fakeFetcher) FetchEvents(_ context.Context, sportKey, regions string) ([]oddsfeed.Event, error) {
	f.calls = append(f.calls, sportKey+"|"+regions)
	return f.events, f.err
}

func h2h(book string, prices map[string]float64) oddsfeed.Bookmaker {
	market := oddsfeed.Market{Key: "h2h"}
	for name, price := range prices {
		market.Outcomes = append(market.Outcomes, oddsfeed.PriceOutcome{Name: name, Price: decimal.NewFromFloat(price)})
	}
	return oddsfeed.Bookmaker{Key: book, Title: book, Markets: []oddsfeed.Market{market}}
}

func newOddsService(repos *repository.Repositories, fetcher EventFetcher, now time.Time) *OddsService {
	s := NewOddsService(
		fetcher,
		oddsfeed.NewThrottle(12*time.Hour),
		repos,
		map[models.Sport]string{models.SportFootball: "soccer_epl", models.SportBasketball: "basketball_nba"},
		map[models.Sport]string{models.SportFootball: "eu", models.SportBasketball: "us"},
		quietLogger(),
	)
	s.now = func() time.Time { return now }
	return s
}

func TestRefreshSportStoresMatchedQuotes(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()
	now := kickoff.Add(-24 * time.Hour)
	arsenal := newTeam(t, repos, "Arsenal", models.SportFootball, 1300)
	chelsea := newTeam(t, repos, "Chelsea", models.SportFootball, 1300)
	match := scheduledMatch(arsenal, chelsea, kickoff)
	store(t, repos, match)

	fetcher := &fakeFetcher{events: []oddsfeed.Event{
		{
			HomeTeam:     "Arsenal FC",
			AwayTeam:     "Chelsea F.C.",
			CommenceTime: kickoff.Add(time.Hour),
			Bookmakers: []oddsfeed.Bookmaker{
				h2h("unibet", map[string]float64{"Arsenal FC": 2.2, "Chelsea F.C.": 3.5, "Draw": 3.4}),
				h2h("pinnacle", map[string]float64{"Arsenal FC": 2.1, "Chelsea F.C.": 3.4, "Draw": 3.3}),
			},
		},
		{
			HomeTeam:     "Liverpool",
			AwayTeam:     "Everton",
			CommenceTime: kickoff,
			Bookmakers:   []oddsfeed.Bookmaker{h2h("pinnacle", map[string]float64{"Liverpool": 1.5, "Everton": 6.0, "Draw": 4.2})},
		},
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", CommenceTime: kickoff},
	}}

	s := newOddsService(repos, fetcher, now)
	report, err := s.RefreshSport(ctx, models.SportFootball)
	require.NoError(t, err)

	assert.Equal(t, []string{"soccer_epl|eu"}, fetcher.calls)
	assert.Equal(t, 3, report.Events)
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 1, report.Unmatched)
	assert.Equal(t, 1, report.NoQuote)

	odds, err := repos.Odds.GetLatest(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, "pinnacle", odds.Bookmaker)
	assert.InDelta(t, 2.1, odds.Home, 1e-9)
	assert.InDelta(t, 3.4, odds.Away, 1e-9)
	require.NotNil(t, odds.Draw)
	assert.InDelta(t, 3.3, *odds.Draw, 1e-9)
	assert.Equal(t, now, odds.FetchedAt)

	report, err = s.RefreshSport(ctx, models.SportFootball)
	require.NoError(t, err)
	assert.True(t, report.Throttled)
	assert.Len(t, fetcher.calls, 1)
}

func TestRefreshSportRejectsDistantKickoff(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewMemoryRepositories()
	now := kickoff.Add(-24 * time.Hour)
	home := newTeam(t, repos, "Celtics", models.SportBasketball, 1250)
	away := newTeam(t, repos, "Nuggets", models.SportBasketball, 1230)
	match := scheduledMatch(home, away, kickoff)
	store(t, repos, match)

	fetcher := &fakeFetcher{events: []oddsfeed.Event{{
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Denver Nuggets",
		CommenceTime: kickoff.Add(5 * time.Hour),
		Bookmakers:   []oddsfeed.Bookmaker{h2h("pinnacle", map[string]float64{"Boston Celtics": 1.7, "Denver Nuggets": 2.2})},
	}}}

	report, err := newOddsService(repos, fetcher, now).RefreshSport(ctx, models.SportBasketball)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Unmatched)
	assert.Zero(t, report.Stored)

	_, err = repos.Odds.GetLatest(ctx, match.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRefreshSportSkipsWithoutFixtures(t *testing.T) {
	fetcher := &fakeFetcher{}
	repos := repository.NewMemoryRepositories()

	report, err := newOddsService(repos, fetcher, kickoff).RefreshSport(context.Background(), models.SportBasketball)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Empty(t, fetcher.calls)
}

func TestRefreshSportFetchErrorIsRetried(t *testing.T) {
	repos := repository.NewMemoryRepositories()
	home := newTeam(t, repos, "Celtics", models.SportBasketball, 1250)
	away := newTeam(t, repos, "Nuggets", models.SportBasketball, 1230)
	store(t, repos, scheduledMatch(home, away, kickoff))

	fetcher := &fakeFetcher{err: oddsfeed.ErrUnauthorized}
	s := newOddsService(repos, fetcher, kickoff.Add(-time.Hour))

	_, err := s.RefreshSport(context.Background(), models.SportBasketball)
	assert.ErrorIs(t, err, oddsfeed.ErrUnauthorized)

	_, err = s.RefreshSport(context.Background(), models.SportBasketball)
	assert.ErrorIs(t, err, oddsfeed.ErrUnauthorized)
	assert.Len(t, fetcher.calls, 2)
}

func TestRefreshAllJoinsErrors(t *testing.T) {
	repos := repository.NewMemoryRepositories()
	s := newOddsService(repos, &fakeFetcher{}, kickoff)
	delete(s.sportKeys, models.SportFootball)

	reports, err := s.RefreshAll(context.Background(), []models.Sport{models.SportFootball, models.SportBasketball})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "football")
	require.Len(t, reports, 1)
	assert.Equal(t, models.SportBasketball, reports[0].Sport)
}
