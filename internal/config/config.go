// Package config provides configuration management for the sportsedge services.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	OddsAPI    OddsAPIConfig    `mapstructure:"odds_api"`
	Rating     RatingConfig     `mapstructure:"rating" validate:"required"`
	Prediction PredictionConfig `mapstructure:"prediction" validate:"required"`
	Edge       EdgeConfig       `mapstructure:"edge" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Features   FeaturesConfig   `mapstructure:"features"`
	API        APIConfig        `mapstructure:"api"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	HealthPort  int    `mapstructure:"health_port" validate:"omitempty,min=1,max=65535"`
	GRPCPort    int    `mapstructure:"grpc_port" validate:"omitempty,min=1,max=65535"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// RedisConfig represents the edge stream connection
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// OddsAPIConfig represents the market odds provider
type OddsAPIConfig struct {
	BaseURL              string            `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey               string            `mapstructure:"api_key"`
	Regions              map[string]string `mapstructure:"regions"`
	SportKeys            map[string]string `mapstructure:"sport_keys"`
	RefreshIntervalHours int               `mapstructure:"refresh_interval_hours" validate:"gte=0"`
	MaxOddsAgeMinutes    int               `mapstructure:"max_odds_age_minutes" validate:"gte=0"`
	RequestsPerSecond    float64           `mapstructure:"requests_per_second" validate:"gte=0"`
	TimeoutSeconds       int               `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// RatingConfig represents the ELO update constants
type RatingConfig struct {
	KFactor       float64 `mapstructure:"k_factor" validate:"required,gt=0"`
	HomeAdvantage float64 `mapstructure:"home_advantage" validate:"gte=0"`
	Scale         float64 `mapstructure:"scale" validate:"omitempty,gt=0"`
}

// PredictionConfig represents the ensemble constants
type PredictionConfig struct {
	EloWeight        float64  `mapstructure:"elo_weight" validate:"gte=0,lte=1"`
	HeadToHeadWeight float64  `mapstructure:"head_to_head_weight" validate:"gte=0,lte=1"`
	FormWeight       float64  `mapstructure:"form_weight" validate:"gte=0,lte=1"`
	BaseDraw         float64  `mapstructure:"base_draw" validate:"gte=0,lt=1"`
	H2HPseudoCount   float64  `mapstructure:"h2h_pseudo_count" validate:"required,gt=0"`
	H2HMaxSamples    int      `mapstructure:"h2h_max_samples" validate:"required,gt=0"`
	FormWindow       int      `mapstructure:"form_window" validate:"required,gte=2"`
	FormSlopeScale   float64  `mapstructure:"form_slope_scale" validate:"omitempty,gt=0"`
	MaxMomentum      float64  `mapstructure:"max_momentum" validate:"required,gt=0"`
	MaxConfidence    float64  `mapstructure:"max_confidence" validate:"omitempty,gt=0.5,lte=1"`
	Workers          int      `mapstructure:"workers" validate:"gte=0"`
	Sports           []string `mapstructure:"sports" validate:"required,min=1,sports"`
	Strict           bool     `mapstructure:"strict"`
}

// EdgeConfig represents edge severity thresholds
type EdgeConfig struct {
	MediumThreshold float64 `mapstructure:"medium_threshold" validate:"required,gt=0,lt=1"`
	HighThreshold   float64 `mapstructure:"high_threshold" validate:"required,gt=0,lt=1"`
	Devig           bool    `mapstructure:"devig"`
	KellyFraction   float64 `mapstructure:"kelly_fraction" validate:"gte=0,lte=1"`
}

// SchedulerConfig represents the cron schedule of background jobs
type SchedulerConfig struct {
	OddsRefresh       string `mapstructure:"odds_refresh"`
	PredictionRefresh string `mapstructure:"prediction_refresh"`
	RatingCatchUp     string `mapstructure:"rating_catch_up"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// NotifyConfig represents the Telegram alert channel
type NotifyConfig struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID string `mapstructure:"telegram_chat_id"`
	MaxRetries     int    `mapstructure:"max_retries" validate:"gte=0"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	PublishEdges   bool `mapstructure:"publish_edges"`
	NotifyHigh     bool `mapstructure:"notify_high"`
	BroadcastEdges bool `mapstructure:"broadcast_edges"`
}

// APIConfig represents the read-only HTTP API mounted on the health server
type APIConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// MaxOddsAge returns how old market odds may be before edges are withheld
func (c *Config) MaxOddsAge() time.Duration {
	if c.OddsAPI.MaxOddsAgeMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.OddsAPI.MaxOddsAgeMinutes) * time.Minute
}
