// Package config loads the runtime configuration shared by the skill Lambda,
// the HTTP API and the CLI. Configuration is read once at startup and is
// immutable afterwards.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// A missing required value or an invalid format fails Load, and the entry
// points exit on that error.
package config

import (
	"fmt"
	"time"

	"outfitpicker/internal/types"
)

// SecretString is an alias for types.SecretString so secret fields render
// redacted in logs and JSON.
type SecretString = types.SecretString

// Config is the top-level configuration. Components receive only the
// sub-struct they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server        ServerConfig
	Weather       WeatherConfig
	Skill         SkillConfig
	Defaults      DefaultsConfig
	AWS           AWSConfig
	Observability ObservabilityConfig

	// Injected via ldflags, not env.
	Build BuildInfo
}

// ServerConfig holds HTTP API listener settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080" validate:"numeric"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	RequestTimeout  time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"29s"`

	// Per-client token bucket for inbound requests. Zero RPS disables it.
	RateLimitRPS   float64 `envconfig:"API_RATE_LIMIT_RPS" default:"5" validate:"gte=0"`
	RateLimitBurst int     `envconfig:"API_RATE_LIMIT_BURST" default:"10" validate:"gte=1"`

	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// WeatherConfig holds the OpenWeatherMap client settings.
type WeatherConfig struct {
	APIKey         SecretString  `envconfig:"OWM_API_KEY" validate:"required"`
	BaseURL        string        `envconfig:"OWM_BASE_URL" default:"https://api.openweathermap.org/data/2.5" validate:"url"`
	Timeout        time.Duration `envconfig:"WEATHER_TIMEOUT" default:"5s"`
	MaxRetries     int           `envconfig:"WEATHER_MAX_RETRIES" default:"2" validate:"gte=0,lte=5"`
	RateLimitRPS   float64       `envconfig:"WEATHER_RATE_LIMIT_RPS" default:"1" validate:"gte=0"`
	RateLimitBurst int           `envconfig:"WEATHER_RATE_LIMIT_BURST" default:"5" validate:"gte=1"`
}

// SkillConfig holds voice-skill settings.
type SkillConfig struct {
	// APITimeout bounds the device address lookup.
	APITimeout time.Duration `envconfig:"ALEXA_API_TIMEOUT" default:"3s"`
	// ApplicationID, when set, rejects requests addressed to another skill.
	ApplicationID string `envconfig:"ALEXA_SKILL_ID"`
}

// DefaultsConfig is the location used when a caller names none (CLI and
// the HTTP API without query parameters).
type DefaultsConfig struct {
	Zip     string `envconfig:"DEFAULT_ZIP" default:"02144"`
	Country string `envconfig:"DEFAULT_COUNTRY" default:"US" validate:"len=2"`
}

// AWSConfig holds AWS regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`
	// LocalStack support (empty in prod).
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"OutfitPicker"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"false"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// UserAgent is sent on every outbound request.
func (b BuildInfo) UserAgent() string {
	return fmt.Sprintf("OutfitPicker/%s (+%s)", b.Version, b.Commit)
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	ErrValidation    ConfigErrorType = "VALIDATION_FAILED"
	ErrParsing       ConfigErrorType = "PARSING_FAILED"
)

// ConfigError is returned by Load.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
