package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "config/config.yaml"
	envPrefix         = "SPORTSEDGE"
)

// Load reads and parses the configuration from file and environment variables.
// Placeholders of the form ${VAR_NAME} in the YAML are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error; defaults and environment variables are used.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// ReloadFromEnv reloads the configuration from SPORTSEDGE_CONFIG_PATH when set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}

	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sportsedge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.health_port", 8081)
	v.SetDefault("app.grpc_port", 9091)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "sportsedge")
	v.SetDefault("database.user", "sportsedge")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com")
	v.SetDefault("odds_api.refresh_interval_hours", 12)
	v.SetDefault("odds_api.max_odds_age_minutes", 720)
	v.SetDefault("odds_api.requests_per_second", 1.0)
	v.SetDefault("odds_api.timeout_seconds", 30)
	v.SetDefault("odds_api.regions", map[string]string{
		"football":   "uk,eu",
		"basketball": "us",
	})
	v.SetDefault("odds_api.sport_keys", map[string]string{
		"football":   "soccer_epl",
		"basketball": "basketball_nba",
	})

	v.SetDefault("rating.k_factor", 32.0)
	v.SetDefault("rating.home_advantage", 100.0)
	v.SetDefault("rating.scale", 400.0)

	v.SetDefault("prediction.elo_weight", 0.5)
	v.SetDefault("prediction.head_to_head_weight", 0.3)
	v.SetDefault("prediction.form_weight", 0.2)
	v.SetDefault("prediction.base_draw", 0.25)
	v.SetDefault("prediction.h2h_pseudo_count", 5.0)
	v.SetDefault("prediction.h2h_max_samples", 10)
	v.SetDefault("prediction.form_window", 5)
	v.SetDefault("prediction.form_slope_scale", 2.0)
	v.SetDefault("prediction.max_momentum", 50.0)
	v.SetDefault("prediction.max_confidence", 0.99)
	v.SetDefault("prediction.sports", []string{"football", "basketball"})

	v.SetDefault("edge.medium_threshold", 0.08)
	v.SetDefault("edge.high_threshold", 0.15)
	v.SetDefault("edge.devig", true)
	v.SetDefault("edge.kelly_fraction", 0.5)

	v.SetDefault("scheduler.odds_refresh", "@every 12h")
	v.SetDefault("scheduler.prediction_refresh", "@every 1h")
	v.SetDefault("scheduler.rating_catch_up", "@every 15m")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("notify.max_retries", 3)

	v.SetDefault("api.enabled", true)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.timeout_seconds", 10)
}
