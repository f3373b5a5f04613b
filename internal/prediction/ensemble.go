package prediction

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/sportsedge/internal/analysis"
	"github.com/yourusername/sportsedge/internal/models"
)

// ModelVersion tags predictions produced by the ensemble
const ModelVersion = "ensemble_v1.0"

// Weights are the fixed ensemble weights of the three signals
type Weights struct {
	Elo        float64
	HeadToHead float64
	Form       float64
}

// Sum returns the total weight
func (w Weights) Sum() float64 { return w.Elo + w.HeadToHead + w.Form }

// Config holds every tunable of the ensemble
type Config struct {
	Weights          Weights
	BaseDraw         float64
	HomeAdvantage    float64
	Scale            float64
	HeadToHead       analysis.HeadToHeadConfig
	Form             analysis.FormConfig
	Baselines        map[models.Sport]float64
	ConfidenceSpread float64
	MaxConfidence    float64
	// Strict turns numeric drift into an error instead of a silent renormalization
	Strict bool
}

// DefaultConfig returns weights 0.5/0.3/0.2 and a 0.25 base draw rate
func DefaultConfig() Config {
	return Config{
		Weights:          Weights{Elo: 0.5, HeadToHead: 0.3, Form: 0.2},
		BaseDraw:         0.25,
		HomeAdvantage:    100,
		Scale:            400,
		HeadToHead:       analysis.DefaultHeadToHeadConfig(),
		Form:             analysis.DefaultFormConfig(),
		Baselines:        DefaultBaselines(),
		ConfidenceSpread: 0.2,
		MaxConfidence:    0.99,
	}
}

type weightedSignal struct {
	signal Signal
	weight float64
}

// Predictor is the ensemble combiner. It is safe for concurrent use.
type Predictor struct {
	cfg     Config
	signals []weightedSignal
	logger  *logrus.Entry
	now     func() time.Time
}

// NewPredictor builds the three-signal pipeline from cfg
func NewPredictor(cfg Config, logger *logrus.Logger) *Predictor {
	if cfg.Scale <= 0 {
		cfg.Scale = 400
	}
	if cfg.ConfidenceSpread <= 0 {
		cfg.ConfidenceSpread = 0.2
	}
	if cfg.MaxConfidence <= 0.5 || cfg.MaxConfidence > 1 {
		cfg.MaxConfidence = 0.99
	}
	if cfg.Baselines == nil {
		cfg.Baselines = DefaultBaselines()
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Predictor{
		cfg: cfg,
		signals: []weightedSignal{
			{&EloSignal{HomeAdvantage: cfg.HomeAdvantage, Scale: cfg.Scale, Form: cfg.Form}, cfg.Weights.Elo},
			{&HeadToHeadSignal{Config: cfg.HeadToHead, Baseline: cfg.Baselines}, cfg.Weights.HeadToHead},
			{&FormSignal{Scale: cfg.Scale, Form: cfg.Form}, cfg.Weights.Form},
		},
		logger: logger.WithField("component", "predictor"),
		now:    time.Now,
	}
}

// Config returns the predictor configuration after defaults were applied
func (p *Predictor) Config() Config {
	return p.cfg
}

// Predict produces the outcome distribution and confidence for ctx.Match
func (p *Predictor) Predict(ctx *Context) (*models.Prediction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	totalWeight := p.cfg.Weights.Sum()
	if totalWeight <= 0 {
		return nil, fmt.Errorf("%w: ensemble weights sum to %v", models.ErrMissingInput, totalWeight)
	}

	components := make([]Component, 0, len(p.signals))
	scores := make([]models.ComponentScore, 0, len(p.signals))
	var raw float64
	for _, ws := range p.signals {
		c, err := ws.signal.Score(ctx)
		if err != nil {
			return nil, fmt.Errorf("signal %s: %w", ws.signal.Name(), err)
		}
		components = append(components, c)
		scores = append(scores, models.ComponentScore{Name: c.Name, Probability: c.Probability, Weight: ws.weight})
		raw += c.Probability * ws.weight
	}
	raw /= totalWeight

	outcomes, err := p.distribute(ctx.Match.Sport, raw)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", ctx.Match.ID, err)
	}

	return &models.Prediction{
		ID:           uuid.New(),
		MatchID:      ctx.Match.ID,
		Sport:        ctx.Match.Sport,
		Outcomes:     outcomes,
		ModelVersion: ModelVersion,
		Confidence:   p.confidence(components),
		Components:   scores,
		CreatedAt:    p.now().UTC(),
	}, nil
}

// distribute spreads the home strength over the sport's outcome set
func (p *Predictor) distribute(sport models.Sport, home float64) (models.Outcomes, error) {
	var outcomes models.Outcomes
	if sport.SupportsDraws() {
		draw := p.cfg.BaseDraw
		outcomes = models.Ternary{
			Home: home * (1 - draw),
			Draw: draw,
			Away: (1 - home) * (1 - draw),
		}.Normalize()
	} else {
		outcomes = models.Binary{Home: home, Away: 1 - home}.Normalize()
	}

	if models.WellFormed(outcomes) {
		return outcomes, nil
	}
	if p.cfg.Strict {
		return nil, fmt.Errorf("%w: sum %.9f", models.ErrNumericDrift, outcomes.Sum())
	}

	p.logger.WithField("sum", outcomes.Sum()).Warn("Renormalizing drifted probability vector")
	switch o := outcomes.(type) {
	case models.Ternary:
		return clampTernary(o).Normalize(), nil
	case models.Binary:
		return clampBinary(o).Normalize(), nil
	}
	return outcomes, nil
}

// confidence rewards agreement between signals and a clear rating gap
func (p *Predictor) confidence(components []Component) float64 {
	if len(components) == 0 {
		return 0.5
	}

	var mean float64
	for _, c := range components {
		mean += c.Probability
	}
	mean /= float64(len(components))

	var variance float64
	for _, c := range components {
		variance += (c.Probability - mean) * (c.Probability - mean)
	}
	spread := math.Sqrt(variance / float64(len(components)))

	agreement := 1 - math.Min(spread/p.cfg.ConfidenceSpread, 1)
	separation := math.Abs(2*components[0].Probability - 1)
	confidence := 0.5 + 0.5*(0.7*agreement+0.3*separation)

	return math.Max(0.5, math.Min(p.cfg.MaxConfidence, confidence))
}

func validateContext(ctx *Context) error {
	if ctx == nil || ctx.Match == nil {
		return fmt.Errorf("%w: match", models.ErrMissingInput)
	}
	m := ctx.Match
	if !ctx.HomeTeam.HasRating() {
		return fmt.Errorf("%w: home team rating for match %s", models.ErrMissingInput, m.ID)
	}
	if !ctx.AwayTeam.HasRating() {
		return fmt.Errorf("%w: away team rating for match %s", models.ErrMissingInput, m.ID)
	}
	if ctx.HomeTeam.ID != m.HomeTeamID || ctx.AwayTeam.ID != m.AwayTeamID {
		return fmt.Errorf("%w: teams do not belong to match %s", models.ErrMissingInput, m.ID)
	}
	if !m.Sport.Valid() || ctx.HomeTeam.Sport != m.Sport || ctx.AwayTeam.Sport != m.Sport {
		return fmt.Errorf("%w: sport mismatch for match %s", models.ErrMissingInput, m.ID)
	}
	return nil
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func clampTernary(t models.Ternary) models.Ternary {
	return models.Ternary{Home: clampUnit(t.Home), Draw: clampUnit(t.Draw), Away: clampUnit(t.Away)}
}

func clampBinary(b models.Binary) models.Binary {
	return models.Binary{Home: clampUnit(b.Home), Away: clampUnit(b.Away)}
}
