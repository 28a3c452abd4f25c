package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"outfitpicker/internal/config"
	"outfitpicker/internal/metrics"
	"outfitpicker/internal/types"
	"outfitpicker/internal/weather"
)

type fixedWeather struct {
	conditions types.Conditions
}

func (f fixedWeather) GetCurrent(context.Context, weather.Location) (types.Conditions, error) {
	return f.conditions, nil
}

func buildTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Environment: "local",
		Defaults:    config.DefaultsConfig{Zip: "02144", Country: "US"},
		Server:      config.ServerConfig{RateLimitRPS: 100, RateLimitBurst: 100},
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	provider := fixedWeather{conditions: types.Conditions{
		Temperature: 30,
		Weather:     types.WeatherSnow,
		Wind:        types.WindLight,
		Time:        types.TimeMorning,
	}}

	srv, err := buildServer(cfg, logger, provider, metrics.NopRecorder{})
	if err != nil {
		t.Fatalf("buildServer: %v", err)
	}
	return srv.Handler()
}

func TestHealthEndpoint(t *testing.T) {
	h := buildTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health: got %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status     string                       `json:"status"`
		Components map[string]map[string]string `json:"components"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "healthy" || resp.Components["catalog"]["status"] != "healthy" {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestCurrentOutfitEndpoint(t *testing.T) {
	h := buildTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/outfits/current", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/outfits/current: got %d; body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	// 30°F snow with light wind in the morning feels like 22°F.
	for _, want := range []string{`"effective_temperature":22`, `"location":"02144,US"`, "a winter cap", "gloves"} {
		if !strings.Contains(body, want) {
			t.Errorf("response missing %q: %s", want, body)
		}
	}
}

func TestSelectOutfitEndpoint(t *testing.T) {
	h := buildTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/outfits", strings.NewReader(
		`{"conditions":{"temperature":70,"weather":"clear","wind":"calm","time":"evening"},
		  "preferences":{"sex":"female","intensity":"workout"}}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /v1/outfits: got %d; body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"effective_temperature":83`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
