package edge

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sportsedge/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func binaryPrediction(home float64) *models.Prediction {
	return &models.Prediction{
		ID:         uuid.New(),
		MatchID:    uuid.New(),
		Sport:      models.SportBasketball,
		Outcomes:   models.Binary{Home: home, Away: 1 - home},
		Confidence: 0.7,
	}
}

func ternaryPrediction(home, draw, away float64) *models.Prediction {
	return &models.Prediction{
		ID:         uuid.New(),
		MatchID:    uuid.New(),
		Sport:      models.SportFootball,
		Outcomes:   models.Ternary{Home: home, Draw: draw, Away: away},
		Confidence: 0.7,
	}
}

func TestEdgeHomeExampleIsHigh(t *testing.T) {
	d := NewDetector(Config{MediumThreshold: 0.08, HighThreshold: 0.15, Devig: false})
	pred := binaryPrediction(0.65)
	odds := &models.MarketOdds{MatchID: pred.MatchID, Home: 2.00, Away: 1.80, FetchedAt: time.Now()}

	e, err := d.Edge(pred, odds)
	require.NoError(t, err)
	require.Len(t, e.Outcomes, 2)

	home := e.Outcomes[0]
	assert.Equal(t, models.OutcomeHome, home.Outcome)
	assert.InDelta(t, 0.5, home.ImpliedProbability, 1e-12)
	assert.InDelta(t, 0.15, home.Edge, 1e-9)
	assert.Equal(t, models.SeverityHigh, home.Severity)
	assert.Equal(t, models.OutcomeHome, e.Dominant.Outcome)
	assert.False(t, e.Devigged)
}

func TestEdgeDevigged(t *testing.T) {
	d := NewDetector(DefaultConfig())
	pred := ternaryPrediction(0.5, 0.25, 0.25)
	odds := &models.MarketOdds{MatchID: pred.MatchID, Home: 1.90, Draw: floatPtr(3.60), Away: 4.20}

	e, err := d.Edge(pred, odds)
	require.NoError(t, err)
	assert.True(t, e.Devigged)

	total := 0.0
	for _, o := range e.Outcomes {
		total += o.ImpliedProbability
	}
	assert.InDelta(t, 1.0, total, 1e-12)
	assert.InDelta(t, 1/1.90+1/3.60+1/4.20-1, e.Overround, 1e-12)
	assert.Greater(t, e.Overround, 0.0)

	sumEdges := 0.0
	for _, o := range e.Outcomes {
		sumEdges += o.Edge
	}
	assert.InDelta(t, 0, sumEdges, 1e-12)
}

func TestEdgeRawImplied(t *testing.T) {
	d := NewDetector(Config{Devig: false})
	pred := ternaryPrediction(0.5, 0.25, 0.25)
	odds := &models.MarketOdds{Home: 2.5, Draw: floatPtr(4), Away: 5}

	e, err := d.Edge(pred, odds)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, e.Outcomes[0].ImpliedProbability, 1e-12)
	assert.InDelta(t, 0.25, e.Outcomes[1].ImpliedProbability, 1e-12)
	assert.InDelta(t, 0.2, e.Outcomes[2].ImpliedProbability, 1e-12)
	assert.InDelta(t, 0.1, e.Outcomes[0].Edge, 1e-12)
	assert.Equal(t, models.SeverityMedium, e.Outcomes[0].Severity)
	assert.InDelta(t, 0.0, e.Outcomes[1].Edge, 1e-12)
}

func TestEdgeNegativeDominant(t *testing.T) {
	d := NewDetector(Config{Devig: false})
	pred := ternaryPrediction(0.30, 0.30, 0.40)
	odds := &models.MarketOdds{Home: 1.6, Draw: floatPtr(4), Away: 6}

	e, err := d.Edge(pred, odds)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeHome, e.Dominant.Outcome)
	assert.InDelta(t, 0.30-0.625, e.Dominant.Edge, 1e-12)
	assert.Equal(t, models.SeverityHigh, e.Dominant.Severity)
	assert.Equal(t, 0.0, e.Dominant.KellyFraction)
	assert.Less(t, e.Dominant.ExpectedValue, 0.0)
}

func TestEdgeInvalidOdds(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tests := []struct {
		name string
		pred *models.Prediction
		odds *models.MarketOdds
	}{
		{"nil odds", binaryPrediction(0.5), nil},
		{"home at evens floor", binaryPrediction(0.5), &models.MarketOdds{Home: 1.0, Away: 2.0}},
		{"away below one", binaryPrediction(0.5), &models.MarketOdds{Home: 2.0, Away: 0.8}},
		{"missing away", binaryPrediction(0.5), &models.MarketOdds{Home: 2.0}},
		{"ternary without draw", ternaryPrediction(0.4, 0.3, 0.3), &models.MarketOdds{Home: 2.0, Away: 3.0}},
		{"ternary draw at one", ternaryPrediction(0.4, 0.3, 0.3), &models.MarketOdds{Home: 2.0, Draw: floatPtr(1.0), Away: 3.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := d.Edge(tt.pred, tt.odds)
			assert.Nil(t, e)
			assert.ErrorIs(t, err, models.ErrInvalidOdds)
		})
	}
}

func TestEdgeBinaryIgnoresDrawQuote(t *testing.T) {
	d := NewDetector(DefaultConfig())
	pred := binaryPrediction(0.6)
	odds := &models.MarketOdds{Home: 1.8, Draw: floatPtr(15), Away: 2.1}

	e, err := d.Edge(pred, odds)
	require.NoError(t, err)
	assert.Len(t, e.Outcomes, 2)
	assert.InDelta(t, 1.0, e.Outcomes[0].ImpliedProbability+e.Outcomes[1].ImpliedProbability, 1e-12)
}

func TestEdgeIsIdempotent(t *testing.T) {
	d := NewDetector(DefaultConfig())
	pred := ternaryPrediction(0.47, 0.26, 0.27)
	odds := &models.MarketOdds{MatchID: pred.MatchID, Home: 2.2, Draw: floatPtr(3.3), Away: 3.4, Bookmaker: "pinnacle"}
	predBefore := *pred
	oddsBefore := *odds

	first, err := d.Edge(pred, odds)
	require.NoError(t, err)
	second, err := d.Edge(pred, odds)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, predBefore, *pred)
	assert.Equal(t, oddsBefore, *odds)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		edge float64
		want models.Severity
	}{
		{0, models.SeverityLow},
		{0.05, models.SeverityLow},
		{0.08, models.SeverityMedium},
		{-0.1, models.SeverityMedium},
		{0.15, models.SeverityHigh},
		{-0.3, models.SeverityHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.edge, 0.08, 0.15), "edge %v", tt.edge)
	}
}

func TestKellyAndExpectedValue(t *testing.T) {
	assert.InDelta(t, 0.3, ExpectedValue(0.65, 2.0), 1e-12)
	assert.InDelta(t, 0.3, Kelly(0.65, 2.0), 1e-12)
	assert.Equal(t, 0.0, Kelly(0.4, 2.0))
	assert.Equal(t, 0.0, Kelly(0.5, 1.0))
	assert.Equal(t, 0.0, ExpectedValue(0, 3.0))
}

func TestRank(t *testing.T) {
	small := &models.Edge{Dominant: models.OutcomeEdge{Edge: 0.02}}
	large := &models.Edge{Dominant: models.OutcomeEdge{Edge: -0.2}}
	mid := &models.Edge{Dominant: models.OutcomeEdge{Edge: 0.1}}

	edges := []*models.Edge{small, large, mid}
	Rank(edges)
	assert.Equal(t, []*models.Edge{large, mid, small}, edges)
}
