// Package main is the entry point for the voice skill Lambda function.
//
// Cold start:
//  1. Load configuration, resolving *_SSM_PARAM secrets outside local.
//  2. Build the metrics recorder (CloudWatch when ENABLE_METRICS is set).
//  3. Build the OpenWeatherMap client and the device address locator.
//  4. Register skill.Handler with the Lambda runtime.
//
// With APP_ENV=local a single request envelope is read from stdin and the
// response is printed to stdout instead:
//
//	go run ./cmd/skill < cmd/skill/testdata/get_outfit.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"outfitpicker/internal/app"
	"outfitpicker/internal/config"
	"outfitpicker/internal/external"
	"outfitpicker/internal/skill"
)

func main() {
	cfg, err := config.Load(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := app.NewLogger(os.Stdout, cfg.LogLevel)
	logger.Info("skill Lambda initializing (cold start)",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
	)

	handler, err := newHandler(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize skill", "error", err)
		os.Exit(1)
	}

	if cfg.Environment == "local" {
		if err := runLocal(context.Background(), handler, os.Stdin, os.Stdout); err != nil {
			logger.Error("local invocation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	lambda.Start(handler.Handle)
}

func newHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*skill.Handler, error) {
	recorder, err := app.NewRecorder(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating metrics recorder: %w", err)
	}

	weatherClient := app.NewWeatherClient(cfg, logger, recorder)

	deviceAPI := external.NewBaseClient(
		&http.Client{Timeout: cfg.Skill.APITimeout},
		"device-address",
		external.DefaultRetryPolicy(),
		cfg.Build.UserAgent(),
	)
	locator := skill.NewDeviceLocator(deviceAPI, cfg.Skill.APITimeout, logger)

	return skill.NewHandler(locator, weatherClient, logger,
		skill.WithMetrics(recorder),
		skill.WithApplicationID(cfg.Skill.ApplicationID),
	), nil
}

// runLocal handles one envelope read from in and writes the response to out.
func runLocal(ctx context.Context, handler *skill.Handler, in io.Reader, out io.Writer) error {
	var req skill.Request
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("decoding request envelope: %w", err)
	}

	resp, err := handler.Handle(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
