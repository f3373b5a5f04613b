package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ComponentScore records one ensemble signal for auditing
type ComponentScore struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Weight      float64 `json:"weight"`
}

// Prediction represents the model's outcome distribution for one match
type Prediction struct {
	ID           uuid.UUID
	MatchID      uuid.UUID
	Sport        Sport
	Outcomes     Outcomes
	ModelVersion string
	Confidence   float64
	Components   []ComponentScore
	CreatedAt    time.Time
}

// HomeWin returns the home-win probability
func (p *Prediction) HomeWin() float64 {
	v, _ := Probability(p.Outcomes, OutcomeHome)
	return v
}

// AwayWin returns the away-win probability
func (p *Prediction) AwayWin() float64 {
	v, _ := Probability(p.Outcomes, OutcomeAway)
	return v
}

// Draw returns the draw probability, present only for sports with draws
func (p *Prediction) Draw() (float64, bool) {
	return Probability(p.Outcomes, OutcomeDraw)
}

// MeetsThreshold checks if the confidence meets the given threshold
func (p *Prediction) MeetsThreshold(threshold float64) bool {
	return p.Confidence >= threshold
}

type predictionJSON struct {
	ID           uuid.UUID        `json:"id"`
	MatchID      uuid.UUID        `json:"match_id"`
	Sport        Sport            `json:"sport"`
	HomeWin      float64          `json:"home_win_probability"`
	AwayWin      float64          `json:"away_win_probability"`
	Draw         *float64         `json:"draw_probability,omitempty"`
	ModelVersion string           `json:"model_version"`
	Confidence   float64          `json:"confidence_score"`
	Components   []ComponentScore `json:"components,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// MarshalJSON flattens the outcome set into the wire shape
func (p Prediction) MarshalJSON() ([]byte, error) {
	out := predictionJSON{
		ID:           p.ID,
		MatchID:      p.MatchID,
		Sport:        p.Sport,
		HomeWin:      p.HomeWin(),
		AwayWin:      p.AwayWin(),
		ModelVersion: p.ModelVersion,
		Confidence:   p.Confidence,
		Components:   p.Components,
		CreatedAt:    p.CreatedAt,
	}
	if d, ok := p.Draw(); ok {
		out.Draw = &d
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the outcome set; draw_probability selects Ternary
func (p *Prediction) UnmarshalJSON(data []byte) error {
	var in predictionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	p.ID = in.ID
	p.MatchID = in.MatchID
	p.Sport = in.Sport
	p.ModelVersion = in.ModelVersion
	p.Confidence = in.Confidence
	p.Components = in.Components
	p.CreatedAt = in.CreatedAt
	p.Outcomes = OutcomesFromColumns(in.HomeWin, in.AwayWin, in.Draw)
	if in.Sport != "" && in.Sport.SupportsDraws() != (in.Draw != nil) {
		return fmt.Errorf("prediction %s: outcome set does not match sport %s", in.ID, in.Sport)
	}
	return nil
}

// OutcomesFromColumns builds the outcome variant from flat storage columns
func OutcomesFromColumns(home, away float64, draw *float64) Outcomes {
	if draw != nil {
		return Ternary{Home: home, Draw: *draw, Away: away}
	}
	return Binary{Home: home, Away: away}
}
