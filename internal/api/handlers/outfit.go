// Package handlers contains the HTTP handlers for the outfit API.
//
// Routes, mounted under /v1/outfits:
//   - POST /          select an outfit for explicit conditions
//   - GET  /current   select an outfit for the live weather at a location
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"outfitpicker/internal/core"
	"outfitpicker/internal/metrics"
	"outfitpicker/internal/picker"
	"outfitpicker/internal/speech"
	"outfitpicker/internal/types"
	"outfitpicker/internal/weather"
)

// SelectRequest is the POST body. Omitted preferences take their defaults.
type SelectRequest struct {
	Conditions  types.Conditions  `json:"conditions"`
	Preferences types.Preferences `json:"preferences"`
}

// OutfitResponse is returned by both routes.
type OutfitResponse struct {
	Location             string            `json:"location,omitempty"`
	Conditions           types.Conditions  `json:"conditions"`
	Preferences          types.Preferences `json:"preferences"`
	EffectiveTemperature int16             `json:"effective_temperature"`
	Outfit               *picker.Outfit    `json:"outfit"`
	Speech               string            `json:"speech"`
}

// OutfitHandler serves outfit selections.
type OutfitHandler struct {
	weather   weather.Provider
	selector  *picker.Selector
	metrics   metrics.Recorder
	validator *core.Validator
	defaults  weather.Location
	logger    *slog.Logger
}

// NewOutfitHandler wires an OutfitHandler. defaults is used by GET /current
// when the query names no location. A nil selector or recorder selects the
// default catalog and a no-op recorder.
func NewOutfitHandler(
	provider weather.Provider,
	sel *picker.Selector,
	rec metrics.Recorder,
	val *core.Validator,
	defaults weather.Location,
	logger *slog.Logger,
) *OutfitHandler {
	if sel == nil {
		sel = picker.DefaultSelector()
	}
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutfitHandler{
		weather:   provider,
		selector:  sel,
		metrics:   rec,
		validator: val,
		defaults:  defaults,
		logger:    logger,
	}
}

// RegisterRoutes mounts the outfit routes.
func (h *OutfitHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleSelect)
	r.Get("/current", h.HandleCurrent)
}

// HandleSelect handles POST /v1/outfits.
func (h *OutfitHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(req.Conditions, types.ErrCodeValidationInvalidConditions); err != nil {
		core.Error(w, r, err)
		return
	}
	// Precipitation plausibility spans fields, so it stays with the type.
	if err := req.Conditions.Validate(); err != nil {
		core.Error(w, r, err)
		return
	}

	prefs := req.Preferences.WithDefaults()
	if err := h.validator.ValidateStruct(prefs, types.ErrCodeValidationInvalidPreferences); err != nil {
		core.Error(w, r, err)
		return
	}

	resp, err := h.selectOutfit(r.Context(), req.Conditions, prefs)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, resp)
}

// HandleCurrent handles GET /v1/outfits/current.
//
// Query parameters: lat and lon, or zip with an optional country; neither
// selects the configured default. sex, intensity and feel accept canonical
// values or labels ("long_run", "LongRun").
func (h *OutfitHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	loc, err := h.locationFromQuery(q)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	prefs, err := preferencesFromQuery(q)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	conditions, err := h.weather.GetCurrent(r.Context(), loc)
	if err != nil {
		h.logger.WarnContext(r.Context(), "weather lookup failed", "location", loc.String(), "error", err)
		core.Error(w, r, err)
		return
	}

	resp, err := h.selectOutfit(r.Context(), conditions, prefs)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	resp.Location = loc.String()
	core.Data(w, r, http.StatusOK, resp)
}

func (h *OutfitHandler) selectOutfit(ctx context.Context, c types.Conditions, p types.Preferences) (*OutfitResponse, error) {
	params := picker.NewRunParameters(c, p)
	outfit, err := h.selector.Select(params)
	h.metrics.RecordSelection(ctx, metrics.SourceAPI, p.Intensity, err)
	if err != nil {
		h.logger.ErrorContext(ctx, "catalog produced an invalid outfit",
			"parameters", params.String(), "error", err)
		return nil, err
	}

	return &OutfitResponse{
		Conditions:           c,
		Preferences:          p,
		EffectiveTemperature: params.EffectiveTemperature(),
		Outfit:               outfit,
		Speech:               speech.FromOutfit(outfit),
	}, nil
}

func (h *OutfitHandler) locationFromQuery(q url.Values) (weather.Location, error) {
	latStr, lonStr, zip := q.Get("lat"), q.Get("lon"), q.Get("zip")

	switch {
	case latStr != "" || lonStr != "":
		if latStr == "" || lonStr == "" {
			return weather.Location{}, types.NewAppError(types.ErrCodeValidationMissingField,
				"lat and lon must be given together", nil)
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return weather.Location{}, types.NewAppError(types.ErrCodeValidationInvalidLocation,
				"lat must be a valid number", err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return weather.Location{}, types.NewAppError(types.ErrCodeValidationInvalidLocation,
				"lon must be a valid number", err)
		}
		loc := weather.Coordinates(lat, lon)
		return loc, loc.Validate()
	case zip != "":
		return weather.PostalCode(zip, q.Get("country")), nil
	default:
		return h.defaults, nil
	}
}

func preferencesFromQuery(q url.Values) (types.Preferences, error) {
	var p types.Preferences
	var err error

	if s := q.Get("sex"); s != "" {
		if p.Sex, err = types.ParseSex(s); err != nil {
			return p, invalidPreference(err)
		}
	}
	if s := q.Get("intensity"); s != "" {
		if p.Intensity, err = types.ParseIntensity(s); err != nil {
			return p, invalidPreference(err)
		}
	}
	if s := q.Get("feel"); s != "" {
		if p.Feel, err = types.ParseFeel(s); err != nil {
			return p, invalidPreference(err)
		}
	}
	return p.WithDefaults(), nil
}

func invalidPreference(err error) error {
	return types.NewAppError(types.ErrCodeValidationInvalidPreferences, err.Error(), types.ErrInvalidPreferences)
}
