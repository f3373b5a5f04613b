package analysis

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/yourusername/sportsedge/internal/models"
)

// FormConfig tunes the momentum calculation
type FormConfig struct {
	// Window is the number of most recent rating points considered
	Window int
	// SlopeScale converts rating points per match into a momentum adjustment
	SlopeScale  float64
	MaxMomentum float64
}

// DefaultFormConfig returns a five-match window capped at ±50 rating points
func DefaultFormConfig() FormConfig {
	return FormConfig{Window: 5, SlopeScale: 2, MaxMomentum: 50}
}

// FormResult is the short-term momentum of one team
type FormResult struct {
	// Momentum is added to the effective rating for prediction only
	Momentum      float64
	Volatility    float64
	HasVolatility bool
	Points        int
}

// Form computes momentum from a chronological rating trajectory.
// Only the last cfg.Window points are used.
func Form(trajectory []models.RatingHistoryPoint, cfg FormConfig) FormResult {
	def := DefaultFormConfig()
	if cfg.Window < 2 {
		cfg.Window = def.Window
	}
	if cfg.MaxMomentum <= 0 {
		cfg.MaxMomentum = def.MaxMomentum
	}
	if cfg.SlopeScale <= 0 {
		cfg.SlopeScale = def.SlopeScale
	}

	window := trajectory
	if len(window) > cfg.Window {
		window = window[len(window)-cfg.Window:]
	}
	if len(window) < 2 {
		return FormResult{Points: len(window)}
	}

	ratings := make([]float64, len(window))
	for i, p := range window {
		ratings[i] = p.Rating
	}

	result := FormResult{Points: len(ratings)}
	momentum := slope(ratings) * cfg.SlopeScale
	result.Momentum = math.Max(-cfg.MaxMomentum, math.Min(cfg.MaxMomentum, momentum))

	if len(ratings) >= 3 {
		changes := make([]float64, len(ratings)-1)
		for i := 1; i < len(ratings); i++ {
			changes[i-1] = ratings[i] - ratings[i-1]
		}
		result.Volatility = stdDev(changes)
		result.HasVolatility = true
	}
	return result
}

// slope is the least-squares gradient of ys against their index
func slope(ys []float64) float64 {
	n := float64(len(ys))
	meanX := (n - 1) / 2
	var meanY float64
	for _, y := range ys {
		meanY += y
	}
	meanY /= n

	var num, den float64
	for i, y := range ys {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

// FormString renders recent results as W/D/L letters, oldest first.
// matches are expected most recent first; at most limit are used.
func FormString(teamID uuid.UUID, matches []models.Match, limit int) string {
	letters := make([]string, 0, limit)
	for i := range matches {
		if len(letters) >= limit {
			break
		}
		m := &matches[i]
		if !m.Involves(teamID) {
			continue
		}
		outcome, err := m.OutcomeFor(teamID)
		if err != nil {
			continue
		}
		switch outcome {
		case 1:
			letters = append(letters, "W")
		case 0:
			letters = append(letters, "L")
		default:
			letters = append(letters, "D")
		}
	}

	for i, j := 0, len(letters)-1; i < j; i, j = i+1, j-1 {
		letters[i], letters[j] = letters[j], letters[i]
	}
	return strings.Join(letters, "")
}
