// Package seed loads teams and fixtures from a YAML file into the repositories.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/rating"
	"github.com/yourusername/sportsedge/internal/repository"
)

// namespace derives stable IDs so re-seeding updates rather than duplicates
var namespace = uuid.MustParse("3b241101-e2bb-4255-8caf-4136c566a962")

// File is the on-disk seed document
type File struct {
	Teams   []TeamSeed  `yaml:"teams"`
	Matches []MatchSeed `yaml:"matches"`
}

// TeamSeed describes one team. Rating falls back to the league's initial rating.
type TeamSeed struct {
	Name   string   `yaml:"name"`
	Sport  string   `yaml:"sport"`
	League string   `yaml:"league"`
	Rating *float64 `yaml:"rating"`
}

// MatchSeed describes one fixture by team names
type MatchSeed struct {
	Sport       string    `yaml:"sport"`
	League      string    `yaml:"league"`
	Home        string    `yaml:"home"`
	Away        string    `yaml:"away"`
	ScheduledAt time.Time `yaml:"scheduled_at"`
	Status      string    `yaml:"status"`
	HomeScore   *int      `yaml:"home_score"`
	AwayScore   *int      `yaml:"away_score"`
}

// Report summarises a seeding run
type Report struct {
	TeamsCreated  int
	TeamsExisting int
	Matches       int
}

// Parse decodes a seed document, rejecting unknown fields
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// LoadFile reads and parses a seed file from disk
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// TeamID returns the stable ID for a team name within a sport
func TeamID(sport models.Sport, name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("team|"+string(sport)+"|"+name))
}

// MatchID returns the stable ID for a fixture
func MatchID(sport models.Sport, home, away string, at time.Time) uuid.UUID {
	key := fmt.Sprintf("match|%s|%s|%s|%s", sport, home, away, at.UTC().Format(time.RFC3339))
	return uuid.NewSHA1(namespace, []byte(key))
}

// Seeder writes seed documents through the repositories
type Seeder struct {
	teams   repository.TeamRepository
	matches repository.MatchRepository
	logger  *logrus.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(teams repository.TeamRepository, matches repository.MatchRepository, logger *logrus.Logger) *Seeder {
	return &Seeder{teams: teams, matches: matches, logger: logger}
}

// Apply creates missing teams and upserts every fixture. Existing teams keep their current rating.
func (s *Seeder) Apply(ctx context.Context, f *File) (Report, error) {
	var report Report

	for i, ts := range f.Teams {
		team, err := ts.toTeam()
		if err != nil {
			return report, fmt.Errorf("team %d: %w", i, err)
		}

		err = s.teams.Create(ctx, team)
		switch {
		case errors.Is(err, models.ErrDuplicateKey):
			report.TeamsExisting++
			continue
		case err != nil:
			return report, fmt.Errorf("failed to seed team %s: %w", ts.Name, err)
		}

		report.TeamsCreated++
		s.logger.WithFields(logrus.Fields{
			"team":   team.Name,
			"sport":  team.Sport,
			"league": team.League,
			"rating": team.Rating,
		}).Debug("Seeded team")
	}

	for i, ms := range f.Matches {
		match, err := s.resolveMatch(ctx, ms)
		if err != nil {
			return report, fmt.Errorf("match %d: %w", i, err)
		}
		if err := s.matches.Upsert(ctx, match); err != nil {
			return report, fmt.Errorf("failed to seed match %s vs %s: %w", ms.Home, ms.Away, err)
		}
		report.Matches++
	}

	s.logger.WithFields(logrus.Fields{
		"teams_created":  report.TeamsCreated,
		"teams_existing": report.TeamsExisting,
		"matches":        report.Matches,
	}).Info("Seed applied")

	return report, nil
}

func (ts TeamSeed) toTeam() (*models.Team, error) {
	sport, err := models.ParseSport(ts.Sport)
	if err != nil {
		return nil, err
	}
	if ts.Name == "" || ts.League == "" {
		return nil, fmt.Errorf("name and league are required: %w", models.ErrMissingInput)
	}

	r := rating.InitialRating(ts.League)
	if ts.Rating != nil {
		r = *ts.Rating
	}

	return &models.Team{
		ID:     TeamID(sport, ts.Name),
		Name:   ts.Name,
		Sport:  sport,
		League: ts.League,
		Rating: r,
		Active: true,
	}, nil
}

func (s *Seeder) resolveMatch(ctx context.Context, ms MatchSeed) (*models.Match, error) {
	sport, err := models.ParseSport(ms.Sport)
	if err != nil {
		return nil, err
	}

	home, err := s.teams.GetByName(ctx, sport, ms.Home)
	if err != nil {
		return nil, fmt.Errorf("home team %q: %w", ms.Home, err)
	}
	away, err := s.teams.GetByName(ctx, sport, ms.Away)
	if err != nil {
		return nil, fmt.Errorf("away team %q: %w", ms.Away, err)
	}

	status := models.MatchStatus(ms.Status)
	if status == "" {
		status = models.MatchStatusScheduled
	}
	league := ms.League
	if league == "" {
		league = home.League
	}

	return &models.Match{
		ID:          MatchID(sport, ms.Home, ms.Away, ms.ScheduledAt),
		HomeTeamID:  home.ID,
		AwayTeamID:  away.ID,
		Sport:       sport,
		League:      league,
		ScheduledAt: ms.ScheduledAt.UTC(),
		Status:      status,
		HomeScore:   ms.HomeScore,
		AwayScore:   ms.AwayScore,
	}, nil
}
