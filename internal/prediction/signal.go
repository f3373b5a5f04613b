// Package prediction combines rating, head-to-head and form signals into an
// outcome distribution for an upcoming match.
package prediction

import (
	"math"

	"github.com/yourusername/sportsedge/internal/analysis"
	"github.com/yourusername/sportsedge/internal/models"
)

// Context carries every input a signal may read. Callers load it before
// prediction; signals never perform I/O.
type Context struct {
	Match    *models.Match
	HomeTeam *models.Team
	AwayTeam *models.Team

	// HeadToHead holds past meetings of the two teams, most recent first
	HeadToHead []models.Match
	// HomeTrajectory and AwayTrajectory are chronological rating histories
	HomeTrajectory []models.RatingHistoryPoint
	AwayTrajectory []models.RatingHistoryPoint
}

// Component is the home-favouring probability produced by one signal
type Component struct {
	Name        string
	Probability float64
}

// Signal turns a context into a home-win probability in (0, 1)
type Signal interface {
	Name() string
	Score(ctx *Context) (Component, error)
}

func logistic(diff, scale float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, -diff/scale))
}

// EloSignal is the logistic of the effective rating differential
type EloSignal struct {
	HomeAdvantage float64
	Scale         float64
	Form          analysis.FormConfig
}

// Name implements Signal
func (s *EloSignal) Name() string { return "elo" }

// Score implements Signal
func (s *EloSignal) Score(ctx *Context) (Component, error) {
	homeForm := analysis.Form(ctx.HomeTrajectory, s.Form)
	awayForm := analysis.Form(ctx.AwayTrajectory, s.Form)

	home := ctx.HomeTeam.Rating + homeForm.Momentum + s.HomeAdvantage
	away := ctx.AwayTeam.Rating + awayForm.Momentum
	return Component{Name: s.Name(), Probability: logistic(home-away, s.Scale)}, nil
}

// HeadToHeadSignal shifts the sport's baseline home share by the meeting history
type HeadToHeadSignal struct {
	Config analysis.HeadToHeadConfig
	// Baseline is the historical home share of decisive results, per sport
	Baseline map[models.Sport]float64
}

// Name implements Signal
func (s *HeadToHeadSignal) Name() string { return "head_to_head" }

// Score implements Signal
func (s *HeadToHeadSignal) Score(ctx *Context) (Component, error) {
	h := analysis.HeadToHead(ctx.HomeTeam.ID, ctx.AwayTeam.ID, ctx.HeadToHead, s.Config)

	base, ok := s.Baseline[ctx.Match.Sport]
	if !ok || base <= 0 || base >= 1 {
		base = 0.5
	}

	// |Tendency| < 1 keeps the result strictly inside (0, 1).
	p := base
	if h.Tendency > 0 {
		p = base + h.Tendency*(1-base)
	} else if h.Tendency < 0 {
		p = base * (1 + h.Tendency)
	}
	return Component{Name: s.Name(), Probability: p}, nil
}

// FormSignal is the logistic of the momentum differential
type FormSignal struct {
	Scale float64
	Form  analysis.FormConfig
}

// Name implements Signal
func (s *FormSignal) Name() string { return "form" }

// Score implements Signal
func (s *FormSignal) Score(ctx *Context) (Component, error) {
	homeForm := analysis.Form(ctx.HomeTrajectory, s.Form)
	awayForm := analysis.Form(ctx.AwayTrajectory, s.Form)
	return Component{Name: s.Name(), Probability: logistic(homeForm.Momentum-awayForm.Momentum, s.Scale)}, nil
}

// DefaultBaselines are the home shares of decisive results: football
// 0.46 home / 0.27 away, basketball 0.55 / 0.45
func DefaultBaselines() map[models.Sport]float64 {
	return map[models.Sport]float64{
		models.SportFootball:   0.46 / (0.46 + 0.27),
		models.SportBasketball: 0.55,
	}
}
