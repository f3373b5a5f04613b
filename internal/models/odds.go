package models

import (
	"time"

	"github.com/google/uuid"
)

// MarketOdds is a bookmaker's decimal price for each outcome of a match
type MarketOdds struct {
	MatchID   uuid.UUID `db:"match_id" json:"match_id"`
	Bookmaker string    `db:"bookmaker" json:"bookmaker"`
	Home      float64   `db:"home_odds" json:"home_odds"`
	Away      float64   `db:"away_odds" json:"away_odds"`
	Draw      *float64  `db:"draw_odds" json:"draw_odds,omitempty"`
	FetchedAt time.Time `db:"fetched_at" json:"fetched_at"`
	IsLive    bool      `db:"is_live" json:"is_live"`
}

// Price returns the decimal odds quoted for an outcome
func (o *MarketOdds) Price(outcome Outcome) (float64, bool) {
	switch outcome {
	case OutcomeHome:
		return o.Home, o.Home != 0
	case OutcomeAway:
		return o.Away, o.Away != 0
	case OutcomeDraw:
		if o.Draw == nil {
			return 0, false
		}
		return *o.Draw, true
	}
	return 0, false
}

// Age returns how old the quote is relative to now
func (o *MarketOdds) Age(now time.Time) time.Duration {
	return now.Sub(o.FetchedAt)
}
