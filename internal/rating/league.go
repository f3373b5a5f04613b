package rating

// InitialRating is the seed rating for a newly imported team of the given league
func InitialRating(league string) float64 {
	switch league {
	case "Champions League":
		return 1400
	case "EPL":
		return 1300
	case "NBA":
		return 1200
	default:
		return 1200
	}
}

// AdaptiveKFactor damps K for established teams and scales it by match importance
func (e *Engine) AdaptiveKFactor(teamRating, importance float64) float64 {
	if importance <= 0 {
		importance = 1
	}
	factor := 1.0
	switch {
	case teamRating > 1600:
		factor = 0.8
	case teamRating > 1400:
		factor = 0.9
	}
	return e.cfg.KFactor * factor * importance
}
