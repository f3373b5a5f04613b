package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/sportsedge/internal/models"
)

// DataValidator checks teams, matches and odds before they reach the engine
type DataValidator struct {
	validate *validator.Validate
}

// NewDataValidator creates a new data validator
func NewDataValidator() *DataValidator {
	return &DataValidator{validate: validator.New()}
}

// ValidateTeam checks required team fields
func (v *DataValidator) ValidateTeam(team *models.Team) error {
	if err := v.structErrors(team); err != nil {
		return fmt.Errorf("team %s: %w: %v", team.Name, models.ErrMissingInput, err)
	}
	return nil
}

// ValidateMatch checks struct constraints and the score/status consistency of a match
func (v *DataValidator) ValidateMatch(match *models.Match) error {
	if err := v.structErrors(match); err != nil {
		return fmt.Errorf("match %s: %w: %v", match.ID, models.ErrInvalidMatchResult, err)
	}
	return match.Validate()
}

// ValidateOdds checks a quote against the outcome set of the sport
func (v *DataValidator) ValidateOdds(odds *models.MarketOdds, sport models.Sport) error {
	var problems []string

	if odds.Bookmaker == "" {
		problems = append(problems, "bookmaker is required")
	}
	if odds.Home <= 1.0 {
		problems = append(problems, fmt.Sprintf("home odds must exceed 1.0, got %v", odds.Home))
	}
	if odds.Away <= 1.0 {
		problems = append(problems, fmt.Sprintf("away odds must exceed 1.0, got %v", odds.Away))
	}
	if odds.Draw != nil {
		if !sport.SupportsDraws() {
			problems = append(problems, fmt.Sprintf("%s has no draw market", sport))
		} else if *odds.Draw <= 1.0 {
			problems = append(problems, fmt.Sprintf("draw odds must exceed 1.0, got %v", *odds.Draw))
		}
	}
	if odds.FetchedAt.IsZero() {
		problems = append(problems, "fetched_at is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("match %s: %w: %s", odds.MatchID, models.ErrInvalidOdds, strings.Join(problems, "; "))
	}
	return nil
}

func (v *DataValidator) structErrors(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s has invalid value '%v'", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
