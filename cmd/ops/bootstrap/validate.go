package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"outfitpicker/internal/external"
	"outfitpicker/internal/types"
	"outfitpicker/internal/weather"
)

// owmKeyPattern matches OpenWeatherMap API keys.
var owmKeyPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

const skillIDPrefix = "amzn1.ask.skill."

// probeLocation is looked up to prove an API key works.
var probeLocation = weather.PostalCode("02144", "US")

// Validator checks values before they are written to SSM.
type Validator struct {
	weatherBaseURL string
	httpClient     *http.Client
	logger         *slog.Logger
}

// NewValidator returns a Validator that probes OpenWeatherMap at baseURL.
func NewValidator(baseURL string, logger *slog.Logger) *Validator {
	return &Validator{
		weatherBaseURL: baseURL,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		logger:         logger,
	}
}

// ValidateOWMKey checks the key format, then fetches current conditions for
// a known postal code with it.
func (v *Validator) ValidateOWMKey(ctx context.Context, key string) error {
	if !owmKeyPattern.MatchString(key) {
		return errors.New("expected 32 lowercase hex characters")
	}

	policy := external.DefaultRetryPolicy()
	policy.MaxRetries = 0
	base := external.NewBaseClient(v.httpClient, weather.ProviderName, policy, "OutfitPicker-bootstrap")
	client := weather.NewClient(base, v.weatherBaseURL, types.SecretString(key), v.logger)

	if _, err := client.GetCurrent(ctx, probeLocation); err != nil {
		var statusErr *external.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			return errors.New("key rejected by OpenWeatherMap (new keys can take a few hours to activate)")
		}
		return fmt.Errorf("probing OpenWeatherMap: %w", err)
	}
	return nil
}

// ValidateSkillID checks for "amzn1.ask.skill." followed by a UUID.
func (v *Validator) ValidateSkillID(_ context.Context, id string) error {
	rest, ok := strings.CutPrefix(id, skillIDPrefix)
	if !ok {
		return fmt.Errorf("skill ID must start with %q", skillIDPrefix)
	}
	if _, err := uuid.Parse(rest); err != nil || len(rest) != 36 {
		return fmt.Errorf("skill ID suffix %q is not a UUID", rest)
	}
	return nil
}
