// Package app builds the dependencies shared by the skill Lambda, the HTTP
// API and the CLI from a loaded config.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"outfitpicker/internal/config"
	"outfitpicker/internal/external"
	"outfitpicker/internal/metrics"
	"outfitpicker/internal/weather"
)

// NewLogger returns a JSON logger at level ("debug", "info", "warn",
// "error"); anything else is info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// NewRecorder returns a CloudWatch recorder when metrics are enabled and a
// no-op recorder otherwise.
func NewRecorder(ctx context.Context, cfg *config.Config, logger *slog.Logger) (metrics.Recorder, error) {
	if !cfg.Observability.EnableMetrics {
		return metrics.NopRecorder{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})
	return metrics.NewCloudWatchRecorder(client, cfg.Observability.MetricNamespace, logger), nil
}

// NewWeatherClient builds the OpenWeatherMap client behind a rate-limited,
// retrying base client. observer may be nil.
func NewWeatherClient(cfg *config.Config, logger *slog.Logger, observer weather.FetchObserver) *weather.Client {
	wc := cfg.Weather
	policy := external.DefaultRetryPolicy()
	policy.MaxRetries = wc.MaxRetries

	base := external.NewBaseClient(
		&http.Client{Timeout: wc.Timeout},
		weather.ProviderName,
		policy,
		cfg.Build.UserAgent(),
		external.WithRateLimit(wc.RateLimitRPS, wc.RateLimitBurst),
	)

	var opts []weather.ClientOption
	if observer != nil {
		opts = append(opts, weather.WithObserver(observer))
	}
	return weather.NewClient(base, wc.BaseURL, wc.APIKey, logger, opts...)
}

// DefaultLocation is the configured fallback location.
func DefaultLocation(cfg *config.Config) weather.Location {
	return weather.PostalCode(cfg.Defaults.Zip, cfg.Defaults.Country)
}
