package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MatchStatus represents the lifecycle state of a match
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusPostponed MatchStatus = "postponed"
)

// Side identifies one of the two participants of a match
type Side int

const (
	SideNone Side = iota
	SideHome
	SideAway
)

// Match represents a fixture between two teams
type Match struct {
	ID          uuid.UUID   `db:"id" json:"id" validate:"required"`
	HomeTeamID  uuid.UUID   `db:"home_team_id" json:"home_team_id" validate:"required"`
	AwayTeamID  uuid.UUID   `db:"away_team_id" json:"away_team_id" validate:"required"`
	Sport       Sport       `db:"sport" json:"sport" validate:"required,oneof=football basketball"`
	League      string      `db:"league" json:"league"`
	ScheduledAt time.Time   `db:"scheduled_at" json:"scheduled_at" validate:"required"`
	Status      MatchStatus `db:"status" json:"status" validate:"required,oneof=scheduled live completed postponed"`
	HomeScore   *int        `db:"home_score" json:"home_score,omitempty" validate:"omitempty,gte=0"`
	AwayScore   *int        `db:"away_score" json:"away_score,omitempty" validate:"omitempty,gte=0"`
}

// MatchResult is the outcome of a completed match
type MatchResult struct {
	Winner Side
	Margin int
}

// IsDraw reports whether the match ended level
func (r MatchResult) IsDraw() bool {
	return r.Winner == SideNone
}

// IsCompleted reports whether the match has a final result
func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

// IsUpcoming reports whether the match is still waiting to be played
func (m *Match) IsUpcoming() bool {
	return m.Status == MatchStatusScheduled
}

// Involves reports whether the team plays in this match
func (m *Match) Involves(teamID uuid.UUID) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}

// Opponent returns the other participant for the given team
func (m *Match) Opponent(teamID uuid.UUID) uuid.UUID {
	if m.HomeTeamID == teamID {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}

// Result derives winner and margin from the final scores
func (m *Match) Result() (MatchResult, error) {
	if !m.IsCompleted() {
		return MatchResult{}, fmt.Errorf("%w: match %s is %s", ErrInvalidMatchResult, m.ID, m.Status)
	}
	if m.HomeScore == nil || m.AwayScore == nil {
		return MatchResult{}, fmt.Errorf("%w: match %s completed without scores", ErrInvalidMatchResult, m.ID)
	}

	diff := *m.HomeScore - *m.AwayScore
	switch {
	case diff > 0:
		return MatchResult{Winner: SideHome, Margin: diff}, nil
	case diff < 0:
		return MatchResult{Winner: SideAway, Margin: -diff}, nil
	default:
		return MatchResult{Winner: SideNone}, nil
	}
}

// OutcomeFor returns the result from the perspective of the given team:
// 1 for a win, 0.5 for a draw, 0 for a loss
func (m *Match) OutcomeFor(teamID uuid.UUID) (float64, error) {
	result, err := m.Result()
	if err != nil {
		return 0, err
	}
	if result.IsDraw() {
		return 0.5, nil
	}
	won := (result.Winner == SideHome && m.HomeTeamID == teamID) ||
		(result.Winner == SideAway && m.AwayTeamID == teamID)
	if won {
		return 1, nil
	}
	return 0, nil
}

// Validate checks status and score consistency. Any failure wraps ErrInvalidMatchResult.
func (m *Match) Validate() error {
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("%w: team %s cannot play itself", ErrInvalidMatchResult, m.HomeTeamID)
	}
	if !m.Sport.Valid() {
		return fmt.Errorf("%w: unknown sport %q", ErrInvalidMatchResult, m.Sport)
	}

	hasScores := m.HomeScore != nil && m.AwayScore != nil
	partial := (m.HomeScore == nil) != (m.AwayScore == nil)
	if partial {
		return fmt.Errorf("%w: match %s has only one score", ErrInvalidMatchResult, m.ID)
	}

	switch m.Status {
	case MatchStatusCompleted:
		if !hasScores {
			return fmt.Errorf("%w: match %s completed without scores", ErrInvalidMatchResult, m.ID)
		}
		if *m.HomeScore < 0 || *m.AwayScore < 0 {
			return fmt.Errorf("%w: negative score in match %s", ErrInvalidMatchResult, m.ID)
		}
		if *m.HomeScore == *m.AwayScore && !m.Sport.SupportsDraws() {
			return fmt.Errorf("%w: %s match %s cannot end level", ErrInvalidMatchResult, m.Sport, m.ID)
		}
	case MatchStatusScheduled, MatchStatusPostponed:
		if hasScores {
			return fmt.Errorf("%w: %s match %s carries final scores", ErrInvalidMatchResult, m.Status, m.ID)
		}
	case MatchStatusLive:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidMatchResult, m.Status)
	}

	return nil
}
