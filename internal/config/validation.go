package config

import (
	"fmt"
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"
)

const weightSumTolerance = 1e-9

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// customTags are the validation tags registered by NewValidator
var customTags = map[string]validator.Func{
	"environment": validateEnvironment,
	"loglevel":    validateLogLevel,
	"sports":      validateSports,
}

// NewValidator creates a new validator with custom validation functions.
// It panics if a custom tag cannot be registered.
func NewValidator() *CustomValidator {
	v := validator.New()

	for tag, fn := range customTags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("config: failed to register %q validation: %v", tag, err))
		}
	}

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateSports accepts a non-empty list of known sports without repeats
func validateSports(fl validator.FieldLevel) bool {
	sports, ok := fl.Field().Interface().([]string)
	if !ok || len(sports) == 0 {
		return false
	}

	seen := make(map[string]bool, len(sports))
	for _, s := range sports {
		if s != "football" && s != "basketball" {
			return false
		}
		if seen[s] {
			return false
		}
		seen[s] = true
	}
	return true
}

func validateCrossField(cfg *Config) error {
	p := cfg.Prediction
	sum := p.EloWeight + p.HeadToHeadWeight + p.FormWeight
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("prediction weights must sum to 1, got %.6f", sum)
	}

	if cfg.Edge.MediumThreshold >= cfg.Edge.HighThreshold {
		return fmt.Errorf("edge medium_threshold (%.4f) must be below high_threshold (%.4f)",
			cfg.Edge.MediumThreshold, cfg.Edge.HighThreshold)
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	if cfg.Features.NotifyHigh && (cfg.Notify.TelegramToken == "" || cfg.Notify.TelegramChatID == "") {
		return fmt.Errorf("notify_high requires telegram_token and telegram_chat_id")
	}

	if cfg.Features.PublishEdges && cfg.Redis.Address == "" {
		return fmt.Errorf("publish_edges requires redis.address")
	}

	return nil
}

func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "sports":
			errMsg += fmt.Sprintf("- Field '%s' must list distinct sports from: football, basketball\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		if cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires database SSL mode to be 'require' or 'verify-full'")
		}
		if isTestCredential(cfg.OddsAPI.APIKey) {
			return fmt.Errorf("production environment should not use a test odds API key")
		}
	}

	if cfg.IsDevelopment() && cfg.Features.NotifyHigh {
		return fmt.Errorf("telegram alerts should be disabled in development mode")
	}

	return nil
}

var testCredentialPattern = regexp.MustCompile(`(?i)(test|demo|example|placeholder|YOUR_)`)

func isTestCredential(credential string) bool {
	return testCredentialPattern.MatchString(credential)
}
