package models

import "fmt"

// Sport identifies the competition type of a team or match
type Sport string

const (
	SportFootball   Sport = "football"
	SportBasketball Sport = "basketball"
)

// SupportsDraws reports whether a match in this sport can end level
func (s Sport) SupportsDraws() bool {
	return s == SportFootball
}

// Valid reports whether the sport is one the engine knows how to rate
func (s Sport) Valid() bool {
	switch s {
	case SportFootball, SportBasketball:
		return true
	default:
		return false
	}
}

// ParseSport converts a configuration or wire value into a Sport
func ParseSport(value string) (Sport, error) {
	s := Sport(value)
	if !s.Valid() {
		return "", fmt.Errorf("unknown sport %q", value)
	}
	return s, nil
}
