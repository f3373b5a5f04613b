package main

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/sportsedge/internal/analysis"
	"github.com/yourusername/sportsedge/internal/config"
	"github.com/yourusername/sportsedge/internal/database"
	"github.com/yourusername/sportsedge/internal/edge"
	"github.com/yourusername/sportsedge/internal/models"
	"github.com/yourusername/sportsedge/internal/oddsfeed"
	"github.com/yourusername/sportsedge/internal/prediction"
	"github.com/yourusername/sportsedge/internal/rating"
	"github.com/yourusername/sportsedge/internal/repository"
	"github.com/yourusername/sportsedge/internal/service"
)

// app bundles the services shared by every subcommand
type app struct {
	db          *database.DB
	repos       *repository.Repositories
	sports      []models.Sport
	ratings     *service.RatingService
	predictions *service.PredictionService
	edges       *service.EdgeService
	odds        *service.OddsService
	oddsHTTP    *oddsfeed.RateLimitedHTTPClient
}

func newApp(ctx context.Context, sinks ...service.EdgeSink) (*app, error) {
	sports, err := configuredSports(cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.Initialize(ctx, cfg, appLog)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	a := &app{db: db, repos: repos, sports: sports}
	a.wireServices(sinks...)
	return a, nil
}

func (a *app) wireServices(sinks ...service.EdgeSink) {
	predCfg := predictionConfig(cfg)

	a.ratings = service.NewRatingService(rating.NewEngine(ratingConfig(cfg)), a.repos, appLog)
	a.predictions = service.NewPredictionService(prediction.NewPredictor(predCfg, appLog), a.repos, cfg.Prediction.Workers, appLog)
	a.edges = service.NewEdgeService(edge.NewDetector(edgeConfig(cfg)), a.repos, cfg.MaxOddsAge(), appLog, sinks...)

	a.oddsHTTP = oddsfeed.NewRateLimitedHTTPClient(oddsHTTPConfig(cfg), appLog)
	client := oddsfeed.NewClient(a.oddsHTTP, cfg.OddsAPI.BaseURL, cfg.OddsAPI.APIKey, appLog)
	throttle := oddsfeed.NewThrottle(time.Duration(cfg.OddsAPI.RefreshIntervalHours) * time.Hour)
	a.odds = service.NewOddsService(client, throttle, a.repos, sportMap(cfg.OddsAPI.SportKeys), sportMap(cfg.OddsAPI.Regions), appLog)
}

func (a *app) Close() {
	if a.oddsHTTP != nil {
		_ = a.oddsHTTP.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func ratingConfig(c *config.Config) rating.Config {
	rc := rating.DefaultConfig()
	rc.KFactor = c.Rating.KFactor
	rc.HomeAdvantage = c.Rating.HomeAdvantage
	if c.Rating.Scale > 0 {
		rc.Scale = c.Rating.Scale
	}
	return rc
}

func predictionConfig(c *config.Config) prediction.Config {
	pc := prediction.DefaultConfig()
	pc.Weights = prediction.Weights{
		Elo:        c.Prediction.EloWeight,
		HeadToHead: c.Prediction.HeadToHeadWeight,
		Form:       c.Prediction.FormWeight,
	}
	pc.BaseDraw = c.Prediction.BaseDraw
	pc.HomeAdvantage = c.Rating.HomeAdvantage
	if c.Rating.Scale > 0 {
		pc.Scale = c.Rating.Scale
	}
	pc.HeadToHead = analysis.HeadToHeadConfig{
		PseudoCount: c.Prediction.H2HPseudoCount,
		MaxSamples:  c.Prediction.H2HMaxSamples,
	}
	pc.Form.Window = c.Prediction.FormWindow
	pc.Form.MaxMomentum = c.Prediction.MaxMomentum
	if c.Prediction.FormSlopeScale > 0 {
		pc.Form.SlopeScale = c.Prediction.FormSlopeScale
	}
	if c.Prediction.MaxConfidence > 0 {
		pc.MaxConfidence = c.Prediction.MaxConfidence
	}
	pc.Strict = c.Prediction.Strict
	return pc
}

func edgeConfig(c *config.Config) edge.Config {
	ec := edge.DefaultConfig()
	ec.MediumThreshold = c.Edge.MediumThreshold
	ec.HighThreshold = c.Edge.HighThreshold
	ec.Devig = c.Edge.Devig
	if c.Edge.KellyFraction > 0 {
		ec.KellyFraction = c.Edge.KellyFraction
	}
	return ec
}

func oddsHTTPConfig(c *config.Config) oddsfeed.HTTPClientConfig {
	hc := oddsfeed.DefaultHTTPClientConfig()
	if c.OddsAPI.TimeoutSeconds > 0 {
		hc.Timeout = time.Duration(c.OddsAPI.TimeoutSeconds) * time.Second
	}
	if c.OddsAPI.RequestsPerSecond > 0 {
		hc.RateLimit = c.OddsAPI.RequestsPerSecond
	}
	return hc
}

func configuredSports(c *config.Config) ([]models.Sport, error) {
	sports := make([]models.Sport, 0, len(c.Prediction.Sports))
	for _, name := range c.Prediction.Sports {
		s, err := models.ParseSport(name)
		if err != nil {
			return nil, err
		}
		sports = append(sports, s)
	}
	return sports, nil
}

// selectSports narrows the configured sports to the --sport flag value
func selectSports(configured []models.Sport, flag string) ([]models.Sport, error) {
	if flag == "" {
		return configured, nil
	}
	s, err := models.ParseSport(flag)
	if err != nil {
		return nil, err
	}
	return []models.Sport{s}, nil
}

func sportMap(in map[string]string) map[models.Sport]string {
	out := make(map[models.Sport]string, len(in))
	for k, v := range in {
		out[models.Sport(k)] = v
	}
	return out
}
