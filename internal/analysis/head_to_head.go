// Package analysis derives head-to-head and form signals from match history.
package analysis

import (
	"github.com/google/uuid"
	"github.com/yourusername/sportsedge/internal/models"
)

// HeadToHeadConfig tunes the regression of small samples toward zero
type HeadToHeadConfig struct {
	// PseudoCount is k in the shrink factor 1/(1+n/k)
	PseudoCount float64
	MaxSamples  int
}

// DefaultHeadToHeadConfig returns k=5 over the last ten meetings
func DefaultHeadToHeadConfig() HeadToHeadConfig {
	return HeadToHeadConfig{PseudoCount: 5, MaxSamples: 10}
}

// H2H summarises past meetings from team A's perspective
type H2H struct {
	// Tendency is in [-1, 1]; positive favours team A
	Tendency float64
	// Reliability grows with the sample size and stays below 1
	Reliability float64
	DrawRate    float64
	Samples     int
	WinsA       int
	WinsB       int
	Draws       int
}

// HeadToHead scores past meetings of teamA and teamB, most recent first.
// Matches that are not completed, lack scores, or do not involve both teams are skipped.
func HeadToHead(teamA, teamB uuid.UUID, results []models.Match, cfg HeadToHeadConfig) H2H {
	if cfg.PseudoCount <= 0 {
		cfg.PseudoCount = DefaultHeadToHeadConfig().PseudoCount
	}

	var h H2H
	for i := range results {
		if cfg.MaxSamples > 0 && h.Samples >= cfg.MaxSamples {
			break
		}
		m := &results[i]
		if !m.Involves(teamA) || !m.Involves(teamB) || teamA == teamB {
			continue
		}
		outcome, err := m.OutcomeFor(teamA)
		if err != nil {
			continue
		}
		h.Samples++
		switch outcome {
		case 1:
			h.WinsA++
		case 0:
			h.WinsB++
		default:
			h.Draws++
		}
	}

	if h.Samples == 0 {
		return H2H{}
	}

	n := float64(h.Samples)
	raw := float64(h.WinsA-h.WinsB) / n
	shrink := 1.0 / (1.0 + n/cfg.PseudoCount)
	h.Tendency = raw * (1.0 - shrink)
	h.Reliability = n / (n + cfg.PseudoCount)
	h.DrawRate = float64(h.Draws) / n
	return h
}
