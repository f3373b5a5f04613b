package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// RatingHistoryPoint is one append-only entry of a team's rating trajectory
type RatingHistoryPoint struct {
	TeamID     uuid.UUID  `db:"team_id" json:"team_id"`
	RecordedAt time.Time  `db:"recorded_at" json:"recorded_at"`
	Rating     float64    `db:"rating" json:"rating"`
	MatchID    *uuid.UUID `db:"match_id" json:"match_id,omitempty"`
}

// SortHistory orders points chronologically, keeping insertion order for equal timestamps
func SortHistory(points []RatingHistoryPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].RecordedAt.Before(points[j].RecordedAt)
	})
}
