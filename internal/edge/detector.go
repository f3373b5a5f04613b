// Package edge compares model probabilities with market-implied probabilities.
package edge

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/sportsedge/internal/models"
)

// Config holds the severity thresholds and implied-probability policy
type Config struct {
	MediumThreshold float64
	HighThreshold   float64
	// Devig normalizes implied probabilities when every outcome is priced
	Devig bool
	// KellyFraction scales the full Kelly stake reported per outcome
	KellyFraction float64
}

// DefaultConfig returns the 0.08 / 0.15 thresholds with devigging on
func DefaultConfig() Config {
	return Config{
		MediumThreshold: 0.08,
		HighThreshold:   0.15,
		Devig:           true,
		KellyFraction:   0.5,
	}
}

// thresholdEpsilon absorbs float noise at the boundaries, e.g. 0.65-0.50
const thresholdEpsilon = 1e-9

// Detector computes Edge views. It holds no mutable state.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector, filling zero thresholds from DefaultConfig
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.MediumThreshold <= 0 {
		cfg.MediumThreshold = def.MediumThreshold
	}
	if cfg.HighThreshold <= 0 {
		cfg.HighThreshold = def.HighThreshold
	}
	if cfg.KellyFraction <= 0 {
		cfg.KellyFraction = def.KellyFraction
	}
	return &Detector{cfg: cfg}
}

// Severity classifies an edge by its magnitude
func (d *Detector) Severity(edge float64) models.Severity {
	return Classify(edge, d.cfg.MediumThreshold, d.cfg.HighThreshold)
}

// Classify grades |edge| against the medium and high thresholds
func Classify(edge, medium, high float64) models.Severity {
	magnitude := math.Abs(edge)
	switch {
	case magnitude+thresholdEpsilon >= high:
		return models.SeverityHigh
	case magnitude+thresholdEpsilon >= medium:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// Edge compares prediction with odds. Neither argument is modified.
func (d *Detector) Edge(prediction *models.Prediction, odds *models.MarketOdds) (*models.Edge, error) {
	if prediction == nil || prediction.Outcomes == nil {
		return nil, fmt.Errorf("%w: prediction", models.ErrMissingInput)
	}
	if odds == nil {
		return nil, fmt.Errorf("%w: no market odds for match %s", models.ErrInvalidOdds, prediction.MatchID)
	}

	prices, err := requiredPrices(prediction.Outcomes, odds)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", prediction.MatchID, err)
	}

	implied, overround, devigged := d.impliedProbabilities(prices)

	result := &models.Edge{
		MatchID:    prediction.MatchID,
		Prediction: *prediction,
		Odds:       *odds,
		Outcomes:   make([]models.OutcomeEdge, 0, prediction.Outcomes.Len()),
		Devigged:   devigged,
		Overround:  overround,
	}
	prediction.Outcomes.Each(func(outcome models.Outcome, p float64) {
		price := prices[outcome]
		e := p - implied[outcome]
		result.Outcomes = append(result.Outcomes, models.OutcomeEdge{
			Outcome:            outcome,
			ModelProbability:   p,
			Odds:               price,
			ImpliedProbability: implied[outcome],
			Edge:               e,
			ExpectedValue:      ExpectedValue(p, price),
			KellyFraction:      Kelly(p, price) * d.cfg.KellyFraction,
			Severity:           d.Severity(e),
		})
	})

	result.Dominant = dominant(result.Outcomes)
	return result, nil
}

// requiredPrices collects the odds for every outcome of the prediction's set
func requiredPrices(outcomes models.Outcomes, odds *models.MarketOdds) (map[models.Outcome]float64, error) {
	prices := make(map[models.Outcome]float64, outcomes.Len())
	var err error
	outcomes.Each(func(outcome models.Outcome, _ float64) {
		if err != nil {
			return
		}
		price, ok := odds.Price(outcome)
		if !ok {
			err = fmt.Errorf("%w: %s odds missing", models.ErrInvalidOdds, outcome)
			return
		}
		if !(price > 1.0) || math.IsInf(price, 0) {
			err = fmt.Errorf("%w: %s odds %v must be greater than 1.0", models.ErrInvalidOdds, outcome, price)
			return
		}
		prices[outcome] = price
	})
	return prices, err
}

// impliedProbabilities inverts the odds and, when enabled, removes the
// bookmaker overround across the outcome set. Callers guarantee every outcome
// of the set is priced, so the devigged book is always complete.
func (d *Detector) impliedProbabilities(prices map[models.Outcome]float64) (map[models.Outcome]float64, float64, bool) {
	implied := make(map[models.Outcome]float64, len(prices))
	book := 0.0
	for _, outcome := range []models.Outcome{models.OutcomeHome, models.OutcomeDraw, models.OutcomeAway} {
		price, ok := prices[outcome]
		if !ok {
			continue
		}
		implied[outcome] = 1.0 / price
		book += implied[outcome]
	}
	overround := book - 1.0

	if !d.cfg.Devig || len(prices) < 2 {
		return implied, overround, false
	}
	for outcome := range implied {
		implied[outcome] /= book
	}
	return implied, overround, true
}

// dominant picks the largest |edge|; ties keep the earlier outcome
func dominant(edges []models.OutcomeEdge) models.OutcomeEdge {
	var best models.OutcomeEdge
	for i, e := range edges {
		if i == 0 || math.Abs(e.Edge) > math.Abs(best.Edge)+thresholdEpsilon {
			best = e
		}
	}
	return best
}

// ExpectedValue is the return per unit staked at the given decimal odds
func ExpectedValue(probability, odds float64) float64 {
	if probability <= 0 || odds <= 1 {
		return 0
	}
	return probability*odds - 1.0
}

// Kelly returns the full Kelly fraction of bankroll, zero when there is no edge
func Kelly(probability, odds float64) float64 {
	if probability <= 0 || odds <= 1 {
		return 0
	}
	b := odds - 1.0
	kelly := (b*probability - (1.0 - probability)) / b
	if kelly <= 0 {
		return 0
	}
	return kelly
}

// Rank orders edges by dominant magnitude, largest first
func Rank(edges []*models.Edge) {
	sort.SliceStable(edges, func(i, j int) bool {
		return math.Abs(edges[i].Dominant.Edge) > math.Abs(edges[j].Dominant.Edge)
	})
}
