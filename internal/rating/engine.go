// Package rating implements the ELO rating updater for completed matches.
package rating

import (
	"fmt"
	"math"

	"github.com/yourusername/sportsedge/internal/models"
)

// Config holds the tunable constants of the ELO update
type Config struct {
	KFactor       float64
	HomeAdvantage float64
	Scale         float64
}

// DefaultConfig returns the standard K=32, +100 home, 400-point scale
func DefaultConfig() Config {
	return Config{
		KFactor:       32,
		HomeAdvantage: 100,
		Scale:         400,
	}
}

// Venue says which participant of an update played at home
type Venue int

const (
	Neutral Venue = iota
	FirstAtHome
	SecondAtHome
)

// Engine computes rating deltas. It holds no mutable state.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine, filling zero fields from DefaultConfig
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.KFactor <= 0 {
		cfg.KFactor = def.KFactor
	}
	if cfg.Scale <= 0 {
		cfg.Scale = def.Scale
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// ExpectedScore returns the expected score of a against b on the given scale
func ExpectedScore(ratingA, ratingB, scale float64) float64 {
	if ratingA == ratingB {
		return 0.5
	}
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/scale))
}

// MarginMultiplier scales K by ln(|margin|+1), never below 1
func MarginMultiplier(margin int) float64 {
	m := math.Abs(float64(margin))
	return math.Max(1.0, math.Log(m+1))
}

// adjusted applies the home advantage for the expected-score computation only
func (e *Engine) adjusted(ratingA, ratingB float64, venue Venue) (float64, float64) {
	switch venue {
	case FirstAtHome:
		return ratingA + e.cfg.HomeAdvantage, ratingB
	case SecondAtHome:
		return ratingA, ratingB + e.cfg.HomeAdvantage
	default:
		return ratingA, ratingB
	}
}

// Expected returns the venue-adjusted expected score of the first team
func (e *Engine) Expected(ratingA, ratingB float64, venue Venue) float64 {
	a, b := e.adjusted(ratingA, ratingB, venue)
	return ExpectedScore(a, b, e.cfg.Scale)
}

// Update returns the deltas for a decisive result. The deltas are equal and opposite.
func (e *Engine) Update(winnerRating, loserRating float64, sport models.Sport, margin int, venue Venue) (float64, float64, error) {
	if err := checkRatings(winnerRating, loserRating); err != nil {
		return 0, 0, err
	}
	if margin == 0 {
		return 0, 0, fmt.Errorf("%w: decisive %s result with zero margin", models.ErrInvalidMatchResult, sport)
	}

	expected := e.Expected(winnerRating, loserRating, venue)
	delta := e.cfg.KFactor * MarginMultiplier(margin) * (1.0 - expected)
	return delta, -delta, nil
}

// UpdateDraw returns the deltas for a level result in a sport that allows draws
func (e *Engine) UpdateDraw(ratingA, ratingB float64, sport models.Sport, venue Venue) (float64, float64, error) {
	if err := checkRatings(ratingA, ratingB); err != nil {
		return 0, 0, err
	}
	if !sport.SupportsDraws() {
		return 0, 0, fmt.Errorf("%w: %s does not allow draws", models.ErrInvalidMatchResult, sport)
	}

	expected := e.Expected(ratingA, ratingB, venue)
	delta := e.cfg.KFactor * (0.5 - expected)
	return delta, -delta, nil
}

// Deltas holds the rating change of each participant of a match
type Deltas struct {
	Home float64
	Away float64
}

// ApplyResult dispatches a completed match to Update or UpdateDraw.
// The home team is always treated as playing at home.
func (e *Engine) ApplyResult(match *models.Match, homeRating, awayRating float64) (Deltas, error) {
	if err := match.Validate(); err != nil {
		return Deltas{}, err
	}
	result, err := match.Result()
	if err != nil {
		return Deltas{}, err
	}

	switch result.Winner {
	case models.SideHome:
		w, l, err := e.Update(homeRating, awayRating, match.Sport, result.Margin, FirstAtHome)
		return Deltas{Home: w, Away: l}, err
	case models.SideAway:
		w, l, err := e.Update(awayRating, homeRating, match.Sport, result.Margin, SecondAtHome)
		return Deltas{Home: l, Away: w}, err
	default:
		h, a, err := e.UpdateDraw(homeRating, awayRating, match.Sport, FirstAtHome)
		return Deltas{Home: h, Away: a}, err
	}
}

func checkRatings(ratings ...float64) error {
	for _, r := range ratings {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("%w: rating %v is not finite", models.ErrMissingInput, r)
		}
	}
	return nil
}
