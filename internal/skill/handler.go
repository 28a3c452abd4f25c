// Package skill answers voice-assistant requests with a running outfit for
// the user's current location and weather.
package skill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"outfitpicker/internal/metrics"
	"outfitpicker/internal/picker"
	"outfitpicker/internal/speech"
	"outfitpicker/internal/types"
	"outfitpicker/internal/weather"
)

// User-facing text.
const (
	helpTitle = "Help"
	helpText  = `Outfit Picker can help you pick a running outfit. Try saying "find me an outfit".`

	outfitTitle = "Outfit"

	noLocationText = "I couldn't figure out your current location. Please enable the location services " +
		"permission for this skill in the Alexa app"

	noWeatherTitle = "No weather data"
	noWeatherText  = "I had an issue retrieving weather data for your location. Please try again later."

	failureTitle = "Technical difficulties 💣"
	failureText  = "We're having some technical difficulties right now. Please try again later."
)

// ErrWrongApplication is returned for requests addressed to another skill.
var ErrWrongApplication = errors.New("request is for a different skill")

// intentIntensity maps the custom intents onto intensities. Unknown custom
// intents fall back to Average.
var intentIntensity = map[string]types.Intensity{
	IntentGetOutfit:        types.IntensityAverage,
	IntentGetOutfitLongRun: types.IntensityLongRun,
	IntentGetOutfitRace:    types.IntensityRace,
	IntentGetOutfitWorkout: types.IntensityWorkout,
}

// Handler is the Lambda entry point.
type Handler struct {
	locator       Locator
	weather       weather.Provider
	selector      *picker.Selector
	metrics       metrics.Recorder
	logger        *slog.Logger
	applicationID string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithSelector overrides the default catalog selector.
func WithSelector(s *picker.Selector) HandlerOption {
	return func(h *Handler) {
		h.selector = s
	}
}

// WithMetrics reports selections to r.
func WithMetrics(r metrics.Recorder) HandlerOption {
	return func(h *Handler) {
		h.metrics = r
	}
}

// WithApplicationID rejects requests whose application id differs.
func WithApplicationID(id string) HandlerOption {
	return func(h *Handler) {
		h.applicationID = id
	}
}

// NewHandler wires a Handler.
func NewHandler(locator Locator, provider weather.Provider, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		locator:  locator,
		weather:  provider,
		selector: picker.DefaultSelector(),
		metrics:  metrics.NopRecorder{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle routes one request. Domain failures become spoken responses; an
// error is returned only for requests the skill must not answer.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	ctx = types.WithRequestID(ctx, req.Request.RequestID)
	logger := h.logger.With("request_id", req.Request.RequestID, "request_type", req.Request.Type)

	if h.applicationID != "" && req.Context.System.Application.ApplicationID != h.applicationID {
		logger.WarnContext(ctx, "rejecting request for another skill",
			"application_id", req.Context.System.Application.ApplicationID)
		return Response{}, ErrWrongApplication
	}

	switch req.Request.Type {
	case RequestTypeLaunch:
		return h.handleOutfit(ctx, logger, req, types.IntensityAverage), nil
	case RequestTypeSessionEnded:
		return End(), nil
	case RequestTypeIntent:
	default:
		logger.WarnContext(ctx, "unsupported request type")
		return End(), nil
	}

	intent := req.Request.Intent
	if intent == nil {
		return Simple(failureTitle, failureText), nil
	}

	switch intent.Name {
	case IntentHelp:
		return Simple(helpTitle, helpText), nil
	case IntentCancel, IntentStop:
		return End(), nil
	}
	if intensity, ok := intentIntensity[intent.Name]; ok {
		return h.handleOutfit(ctx, logger, req, intensity), nil
	}
	if isBuiltIn(intent.Name) {
		logger.InfoContext(ctx, "ending session for unhandled built-in intent", "intent", intent.Name)
		return End(), nil
	}
	return h.handleOutfit(ctx, logger, req, types.IntensityAverage), nil
}

func (h *Handler) handleOutfit(ctx context.Context, logger *slog.Logger, req Request, intensity types.Intensity) Response {
	prefs := types.Preferences{
		Sex:       sexFromSlot(ctx, logger, req.Request.Intent),
		Intensity: intensity,
		Feel:      types.FeelAverage,
	}
	logger.InfoContext(ctx, "picking outfit", "preferences", prefs.String())

	text, err := h.recommend(ctx, req, prefs)
	if err == nil {
		logger.InfoContext(ctx, "recommending outfit", "speech", text)
		return Simple(outfitTitle, text)
	}

	switch {
	case errors.Is(err, ErrNoLocationPermission):
		logger.InfoContext(ctx, "asking for location permission")
		return AskForLocation(noLocationText)
	case errors.Is(err, weather.ErrFetchWeather):
		logger.ErrorContext(ctx, "weather fetch failed", "error", err)
		return Simple(noWeatherTitle, noWeatherText)
	default:
		logger.ErrorContext(ctx, "outfit request failed", "error", err)
		return Simple(failureTitle, failureText)
	}
}

func (h *Handler) recommend(ctx context.Context, req Request, prefs types.Preferences) (string, error) {
	loc, err := h.locator.Locate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("locating device: %w", err)
	}
	conditions, err := h.weather.GetCurrent(ctx, loc)
	if err != nil {
		return "", fmt.Errorf("fetching weather: %w", err)
	}

	params := picker.NewRunParameters(conditions, prefs)
	outfit, err := h.selector.Select(params)
	h.metrics.RecordSelection(ctx, metrics.SourceSkill, prefs.Intensity, err)
	if err != nil {
		return "", err
	}
	return speech.FromOutfit(outfit), nil
}

// sexFromSlot reads the "sex" slot. Only the "female" id selects Female;
// anything else, including an unknown id, is Male.
func sexFromSlot(ctx context.Context, logger *slog.Logger, intent *Intent) types.Sex {
	id := intent.ResolvedID("sex")
	switch id {
	case "female":
		return types.SexFemale
	case "", "male":
		return types.SexMale
	default:
		logger.WarnContext(ctx, "unknown slot id for sex", "id", id)
		return types.SexMale
	}
}

func isBuiltIn(name string) bool {
	return strings.HasPrefix(name, "AMAZON.")
}
