package models

import "math"

// ProbabilityTolerance bounds how far an outcome distribution may drift from one
const ProbabilityTolerance = 1e-6

// Outcome labels one result of a match
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeDraw Outcome = "draw"
	OutcomeAway Outcome = "away"
)

// Outcomes is a probability distribution over a sport's outcome set.
// It is either Binary or Ternary; no other implementations exist.
type Outcomes interface {
	// Each visits the outcomes in home, draw, away order
	Each(fn func(Outcome, float64))
	Sum() float64
	Len() int
	outcomes()
}

// Binary is the outcome set of sports without draws
type Binary struct {
	Home float64
	Away float64
}

// Ternary is the outcome set of sports with draws
type Ternary struct {
	Home float64
	Draw float64
	Away float64
}

func (Binary) outcomes()  {}
func (Ternary) outcomes() {}

// Each implements Outcomes
func (b Binary) Each(fn func(Outcome, float64)) {
	fn(OutcomeHome, b.Home)
	fn(OutcomeAway, b.Away)
}

// Sum implements Outcomes
func (b Binary) Sum() float64 { return b.Home + b.Away }

// Len implements Outcomes
func (Binary) Len() int { return 2 }

// Normalize rescales the pair to sum to one
func (b Binary) Normalize() Binary {
	total := b.Sum()
	if total <= 0 {
		return Binary{Home: 0.5, Away: 0.5}
	}
	return Binary{Home: b.Home / total, Away: 1 - b.Home/total}
}

// Each implements Outcomes
func (t Ternary) Each(fn func(Outcome, float64)) {
	fn(OutcomeHome, t.Home)
	fn(OutcomeDraw, t.Draw)
	fn(OutcomeAway, t.Away)
}

// Sum implements Outcomes
func (t Ternary) Sum() float64 { return t.Home + t.Draw + t.Away }

// Len implements Outcomes
func (Ternary) Len() int { return 3 }

// Normalize rescales the triple to sum to one, absorbing rounding into away
func (t Ternary) Normalize() Ternary {
	total := t.Sum()
	if total <= 0 {
		return Ternary{Home: 1.0 / 3, Draw: 1.0 / 3, Away: 1.0 / 3}
	}
	home := t.Home / total
	draw := t.Draw / total
	return Ternary{Home: home, Draw: draw, Away: 1 - home - draw}
}

// Probability returns the probability of a single outcome. Draw on a Binary set is absent.
func Probability(o Outcomes, outcome Outcome) (float64, bool) {
	var (
		value float64
		found bool
	)
	if o == nil {
		return 0, false
	}
	o.Each(func(label Outcome, p float64) {
		if label == outcome {
			value, found = p, true
		}
	})
	return value, found
}

// WellFormed reports whether every probability is finite and non-negative and
// the distribution sums to one within ProbabilityTolerance
func WellFormed(o Outcomes) bool {
	ok := true
	o.Each(func(_ Outcome, p float64) {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			ok = false
		}
	})
	return ok && math.Abs(o.Sum()-1) <= ProbabilityTolerance
}
