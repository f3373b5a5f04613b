package models

import "github.com/google/uuid"

// Severity grades the magnitude of an edge for presentation
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities low < medium < high. Unknown values rank -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	default:
		return -1
	}
}

// AtLeast reports whether s is as severe as min
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// OutcomeEdge is the model/market disagreement for a single outcome
type OutcomeEdge struct {
	Outcome            Outcome  `json:"outcome"`
	ModelProbability   float64  `json:"model_probability"`
	Odds               float64  `json:"odds"`
	ImpliedProbability float64  `json:"implied_probability"`
	Edge               float64  `json:"edge"`
	ExpectedValue      float64  `json:"expected_value"`
	KellyFraction      float64  `json:"kelly_fraction"`
	Severity           Severity `json:"severity"`
}

// Edge is a derived view of a prediction against market odds
type Edge struct {
	MatchID    uuid.UUID     `json:"match_id"`
	Prediction Prediction    `json:"prediction"`
	Odds       MarketOdds    `json:"market_odds"`
	Outcomes   []OutcomeEdge `json:"outcomes"`
	Dominant   OutcomeEdge   `json:"dominant"`
	Devigged   bool          `json:"devigged"`
	Overround  float64       `json:"overround"`
}
