package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Team represents a rated team
type Team struct {
	ID              uuid.UUID `db:"id" json:"id" validate:"required"`
	Name            string    `db:"name" json:"name" validate:"required"`
	Sport           Sport     `db:"sport" json:"sport" validate:"required,oneof=football basketball"`
	League          string    `db:"league" json:"league" validate:"required"`
	Rating          float64   `db:"rating" json:"rating"`
	RatingUpdatedAt time.Time `db:"rating_updated_at" json:"rating_updated_at"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// HasRating reports whether the team carries a usable finite rating
func (t *Team) HasRating() bool {
	return t != nil && ValidRating(t.Rating)
}

// ValidRating reports whether r is finite and set; zero means unrated
func ValidRating(r float64) bool {
	return !math.IsNaN(r) && !math.IsInf(r, 0) && r != 0
}
