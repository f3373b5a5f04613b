package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sportsedge/internal/metrics"
	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/oddsfeed"
	"github.com/yourusername/sportsedge/internal/repository"
)

const (
	// upcomingWindow is how far ahead a sport needs fixtures before the API is called
	upcomingWindow = 72 * time.Hour
	// kickoffTolerance is how far an event's commence time may differ from the stored kickoff
	kickoffTolerance = 4 * time.Hour
)

// EventFetcher returns the odds provider's events for one sport key
type EventFetcher interface {
	FetchEvents(ctx context.Context, sportKey, regions string) ([]oddsfeed.Event, error)
}

// OddsService refreshes stored market odds from the provider
type OddsService struct {
	fetcher   EventFetcher
	throttle  *oddsfeed.Throttle
	teams     repository.TeamRepository
	matches   repository.MatchRepository
	odds      repository.OddsRepository
	validator *DataValidator
	sportKeys map[models.Sport]string
	regions   map[models.Sport]string
	logger    *logrus.Entry
	now       func() time.Time
}

// NewOddsService creates a new odds service
func NewOddsService(
	fetcher EventFetcher,
	throttle *oddsfeed.Throttle,
	repos *repository.Repositories,
	sportKeys map[models.Sport]string,
	regions map[models.Sport]string,
	log *logrus.Logger,
) *OddsService {
	return &OddsService{
		fetcher:   fetcher,
		throttle:  throttle,
		teams:     repos.Team,
		matches:   repos.Match,
		odds:      repos.Odds,
		validator: NewDataValidator(),
		sportKeys: sportKeys,
		regions:   regions,
		logger:    log.WithField("component", "odds"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RefreshSport fetches the sport's events once per throttle interval and
// stores one quote per matched fixture.
func (s *OddsService) RefreshSport(ctx context.Context, sport models.Sport) (*OddsRefreshReport, error) {
	key, ok := s.sportKeys[sport]
	if !ok || key == "" {
		return nil, fmt.Errorf("no odds sport key configured for %s", sport)
	}
	report := &OddsRefreshReport{Sport: sport, SportKey: key}

	if !s.throttle.Stale(key) {
		report.Throttled = true
		metrics.RecordOddsFetch(string(sport), "throttled")
		return report, nil
	}

	now := s.now()
	upcoming, err := s.matches.GetUpcoming(ctx, sport, now, now.Add(upcomingWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming matches: %w", err)
	}
	if len(upcoming) == 0 {
		report.Skipped = true
		metrics.RecordOddsFetch(string(sport), "no_matches")
		s.logger.WithField("sport", sport).Debug("No upcoming matches, skipping odds fetch")
		return report, nil
	}

	events, err := s.fetcher.FetchEvents(ctx, key, s.regions[sport])
	if err != nil {
		metrics.RecordOddsFetch(string(sport), "error")
		return nil, err
	}
	report.Events = len(events)

	names, err := s.teamNames(ctx, upcoming)
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		quote, ok := oddsfeed.BestQuote(event)
		if !ok {
			report.NoQuote++
			continue
		}

		match := matchEvent(event, upcoming, names)
		if match == nil {
			report.Unmatched++
			continue
		}

		home, away, draw := quote.Floats()
		if !sport.SupportsDraws() {
			draw = nil
		}
		odds := &models.MarketOdds{
			MatchID:   match.ID,
			Bookmaker: quote.Bookmaker,
			Home:      home,
			Away:      away,
			Draw:      draw,
			FetchedAt: now,
		}
		if err := s.validator.ValidateOdds(odds, sport); err != nil {
			s.logger.WithError(err).Warn("Discarding invalid quote")
			continue
		}
		if err := s.odds.Upsert(ctx, odds); err != nil {
			return report, fmt.Errorf("failed to store odds for match %s: %w", match.ID, err)
		}
		report.Stored++
	}

	s.throttle.MarkFetched(key, now)
	metrics.RecordOddsFetch(string(sport), "ok")
	s.logger.WithFields(logrus.Fields{
		"sport":     sport,
		"events":    report.Events,
		"stored":    report.Stored,
		"unmatched": report.Unmatched,
		"no_quote":  report.NoQuote,
	}).Info("Odds refreshed")

	return report, nil
}

// RefreshAll refreshes every sport, continuing past failures
func (s *OddsService) RefreshAll(ctx context.Context, sports []models.Sport) ([]*OddsRefreshReport, error) {
	var reports []*OddsRefreshReport
	var errs []error
	for _, sport := range sports {
		report, err := s.RefreshSport(ctx, sport)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sport, err))
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}

type fixtureNames struct{ home, away string }

func (s *OddsService) teamNames(ctx context.Context, matches []*models.Match) (map[uuid.UUID]fixtureNames, error) {
	cache := make(map[uuid.UUID]string)
	lookup := func(id uuid.UUID) (string, error) {
		if name, ok := cache[id]; ok {
			return name, nil
		}
		team, err := s.teams.GetByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to load team %s: %w", id, err)
		}
		cache[id] = team.Name
		return team.Name, nil
	}

	names := make(map[uuid.UUID]fixtureNames, len(matches))
	for _, m := range matches {
		home, err := lookup(m.HomeTeamID)
		if err != nil {
			return nil, err
		}
		away, err := lookup(m.AwayTeamID)
		if err != nil {
			return nil, err
		}
		names[m.ID] = fixtureNames{home: home, away: away}
	}
	return names, nil
}

// matchEvent finds the stored fixture whose kickoff lies within the tolerance
// of the event and whose team names match
func matchEvent(event oddsfeed.Event, matches []*models.Match, names map[uuid.UUID]fixtureNames) *models.Match {
	for _, m := range matches {
		diff := m.ScheduledAt.Sub(event.CommenceTime)
		if diff < -kickoffTolerance || diff > kickoffTolerance {
			continue
		}
		n := names[m.ID]
		if oddsfeed.NamesMatch(n.home, event.HomeTeam) && oddsfeed.NamesMatch(n.away, event.AwayTeam) {
			return m
		}
	}
	return nil
}
