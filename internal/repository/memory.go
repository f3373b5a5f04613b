package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/sportsedge/internal/models"
)

type appliedKey struct {
	team  uuid.UUID
	match uuid.UUID
}

// memoryState backs every in-memory repository. mu guards the maps and is
// held only for map access; the per-team locks span a whole rating
// read-compute-write so updates to different teams proceed concurrently.
type memoryState struct {
	mu          sync.RWMutex
	teams       map[uuid.UUID]models.Team
	teamLocks   map[uuid.UUID]*sync.Mutex
	history     map[uuid.UUID][]models.RatingHistoryPoint
	applied     map[appliedKey]struct{}
	matches     map[uuid.UUID]models.Match
	predictions map[uuid.UUID]models.Prediction
	odds        map[uuid.UUID]map[string]models.MarketOdds
}

func newMemoryState() *memoryState {
	return &memoryState{
		teams:       make(map[uuid.UUID]models.Team),
		teamLocks:   make(map[uuid.UUID]*sync.Mutex),
		history:     make(map[uuid.UUID][]models.RatingHistoryPoint),
		applied:     make(map[appliedKey]struct{}),
		matches:     make(map[uuid.UUID]models.Match),
		predictions: make(map[uuid.UUID]models.Prediction),
		odds:        make(map[uuid.UUID]map[string]models.MarketOdds),
	}
}

func copyMatch(m models.Match) models.Match {
	if m.HomeScore != nil {
		v := *m.HomeScore
		m.HomeScore = &v
	}
	if m.AwayScore != nil {
		v := *m.AwayScore
		m.AwayScore = &v
	}
	return m
}

type memoryTeams struct{ s *memoryState }

func (r *memoryTeams) Create(ctx context.Context, team *models.Team) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.teams[team.ID]; ok {
		return fmt.Errorf("team %s: %w", team.ID, models.ErrDuplicateKey)
	}
	for _, existing := range r.s.teams {
		if existing.Sport == team.Sport && existing.Name == team.Name {
			return fmt.Errorf("team %s/%s: %w", team.Sport, team.Name, models.ErrDuplicateKey)
		}
	}

	now := time.Now().UTC()
	if team.CreatedAt.IsZero() {
		team.CreatedAt = now
	}
	if team.RatingUpdatedAt.IsZero() {
		team.RatingUpdatedAt = now
	}
	r.s.teams[team.ID] = *team
	r.s.teamLocks[team.ID] = &sync.Mutex{}
	r.s.history[team.ID] = []models.RatingHistoryPoint{{
		TeamID:     team.ID,
		RecordedAt: team.RatingUpdatedAt,
		Rating:     team.Rating,
	}}
	return nil
}

func (r *memoryTeams) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	team, ok := r.s.teams[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &team, nil
}

func (r *memoryTeams) GetByName(ctx context.Context, sport models.Sport, name string) (*models.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, team := range r.s.teams {
		if team.Sport == sport && team.Name == name {
			t := team
			return &t, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memoryTeams) GetBySport(ctx context.Context, sport models.Sport) ([]*models.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var teams []*models.Team
	for _, team := range r.s.teams {
		if team.Sport == sport {
			t := team
			teams = append(teams, &t)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

type memoryRatings struct{ s *memoryState }

func (r *memoryRatings) ApplyMatch(ctx context.Context, matchID, homeID, awayID uuid.UUID, at time.Time, compute RatingCompute) (*RatingUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if homeID == awayID {
		return nil, fmt.Errorf("match %s: team plays itself: %w", matchID, models.ErrInvalidMatchResult)
	}

	unlock, err := r.s.lockTeams(homeID, awayID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	r.s.mu.RLock()
	home, away := r.s.teams[homeID].Rating, r.s.teams[awayID].Rating
	_, homeDone := r.s.applied[appliedKey{team: homeID, match: matchID}]
	_, awayDone := r.s.applied[appliedKey{team: awayID, match: matchID}]
	r.s.mu.RUnlock()

	if err := appliedState(matchID, homeDone, awayDone); err != nil {
		return nil, err
	}

	homeDelta, awayDelta, err := compute(home, away)
	if err != nil {
		return nil, err
	}
	update := &RatingUpdate{
		HomeBefore: home,
		AwayBefore: away,
		HomeAfter:  home + homeDelta,
		AwayAfter:  away + awayDelta,
	}

	r.s.mu.Lock()
	r.s.setRating(homeID, matchID, update.HomeAfter, at)
	r.s.setRating(awayID, matchID, update.AwayAfter, at)
	r.s.mu.Unlock()
	return update, nil
}

// lockTeams takes the per-team locks in ID order and returns their release
func (s *memoryState) lockTeams(ids ...uuid.UUID) (func(), error) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	s.mu.RLock()
	locks := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		lock, ok := s.teamLocks[id]
		if !ok {
			s.mu.RUnlock()
			return nil, fmt.Errorf("team %s: %w", id, models.ErrNotFound)
		}
		locks = append(locks, lock)
	}
	s.mu.RUnlock()

	for _, lock := range locks {
		lock.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}, nil
}

// setRating moves a team's rating and appends its history point; mu must be held
func (s *memoryState) setRating(teamID, matchID uuid.UUID, rating float64, at time.Time) {
	team := s.teams[teamID]
	team.Rating = rating
	team.RatingUpdatedAt = at
	s.teams[teamID] = team

	mid := matchID
	s.history[teamID] = append(s.history[teamID], models.RatingHistoryPoint{
		TeamID:     teamID,
		RecordedAt: at,
		Rating:     rating,
		MatchID:    &mid,
	})
	s.applied[appliedKey{team: teamID, match: matchID}] = struct{}{}
}

func (r *memoryRatings) GetHistory(ctx context.Context, teamID uuid.UUID, limit int) ([]models.RatingHistoryPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.teams[teamID]; !ok {
		return nil, fmt.Errorf("team %s: %w", teamID, models.ErrNotFound)
	}

	points := append([]models.RatingHistoryPoint(nil), r.s.history[teamID]...)
	models.SortHistory(points)
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	return points, nil
}

type memoryMatches struct{ s *memoryState }

func (r *memoryMatches) Upsert(ctx context.Context, match *models.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := match.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range []uuid.UUID{match.HomeTeamID, match.AwayTeamID} {
		if _, ok := r.s.teams[id]; !ok {
			return fmt.Errorf("team %s: %w", id, models.ErrNotFound)
		}
	}
	if existing, ok := r.s.matches[match.ID]; ok {
		if err := checkTransition(&existing, match); err != nil {
			return err
		}
	}

	r.s.matches[match.ID] = copyMatch(*match)
	return nil
}

func (r *memoryMatches) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.matches[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	m = copyMatch(m)
	return &m, nil
}

func (r *memoryMatches) filter(keep func(*models.Match) bool) []models.Match {
	var out []models.Match
	for _, m := range r.s.matches {
		if keep(&m) {
			out = append(out, copyMatch(m))
		}
	}
	return out
}

func sortByKickoff(matches []models.Match, newestFirst bool) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].ScheduledAt, matches[j].ScheduledAt
		if a.Equal(b) {
			return matches[i].ID.String() < matches[j].ID.String()
		}
		if newestFirst {
			return a.After(b)
		}
		return a.Before(b)
	})
}

func truncate(matches []models.Match, limit int) []models.Match {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}

func pointers(matches []models.Match) []*models.Match {
	out := make([]*models.Match, len(matches))
	for i := range matches {
		out[i] = &matches[i]
	}
	return out
}

func (r *memoryMatches) GetUpcoming(ctx context.Context, sport models.Sport, from, to time.Time) ([]*models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.filter(func(m *models.Match) bool {
		return m.Sport == sport && m.IsUpcoming() &&
			!m.ScheduledAt.Before(from) && m.ScheduledAt.Before(to)
	})
	sortByKickoff(out, false)
	return pointers(out), nil
}

func (r *memoryMatches) GetCompletedSince(ctx context.Context, sport models.Sport, since time.Time) ([]*models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.filter(func(m *models.Match) bool {
		return m.Sport == sport && m.IsCompleted() && !m.ScheduledAt.Before(since)
	})
	sortByKickoff(out, false)
	return pointers(out), nil
}

func (r *memoryMatches) GetHeadToHead(ctx context.Context, teamA, teamB uuid.UUID, limit int) ([]models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.filter(func(m *models.Match) bool {
		return m.IsCompleted() && m.Involves(teamA) && m.Involves(teamB)
	})
	sortByKickoff(out, true)
	return truncate(out, limit), nil
}

func (r *memoryMatches) GetRecentByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.filter(func(m *models.Match) bool {
		return m.IsCompleted() && m.Involves(teamID)
	})
	sortByKickoff(out, true)
	return truncate(out, limit), nil
}

type memoryPredictions struct{ s *memoryState }

func (r *memoryPredictions) Upsert(ctx context.Context, prediction *models.Prediction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.matches[prediction.MatchID]; !ok {
		return fmt.Errorf("match %s: %w", prediction.MatchID, models.ErrNotFound)
	}
	p := *prediction
	p.Components = append([]models.ComponentScore(nil), prediction.Components...)
	r.s.predictions[prediction.MatchID] = p
	return nil
}

func (r *memoryPredictions) GetByMatchID(ctx context.Context, matchID uuid.UUID) (*models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.predictions[matchID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

type memoryOdds struct{ s *memoryState }

func (r *memoryOdds) Upsert(ctx context.Context, odds *models.MarketOdds) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.matches[odds.MatchID]; !ok {
		return fmt.Errorf("match %s: %w", odds.MatchID, models.ErrNotFound)
	}
	book, ok := r.s.odds[odds.MatchID]
	if !ok {
		book = make(map[string]models.MarketOdds)
		r.s.odds[odds.MatchID] = book
	}
	o := *odds
	if odds.Draw != nil {
		d := *odds.Draw
		o.Draw = &d
	}
	book[odds.Bookmaker] = o
	return nil
}

func (r *memoryOdds) GetLatest(ctx context.Context, matchID uuid.UUID) (*models.MarketOdds, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var latest *models.MarketOdds
	for _, quote := range r.s.odds[matchID] {
		q := quote
		if latest == nil || q.FetchedAt.After(latest.FetchedAt) ||
			(q.FetchedAt.Equal(latest.FetchedAt) && q.Bookmaker < latest.Bookmaker) {
			latest = &q
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return latest, nil
}
