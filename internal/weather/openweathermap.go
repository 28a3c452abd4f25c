// Package weather fetches current conditions from OpenWeatherMap and reduces
// them to the coarse buckets the outfit picker works with.
package weather

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"outfitpicker/internal/external"
	"outfitpicker/internal/types"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// ProviderName labels metrics and logs for this source.
const ProviderName = "openweathermap"

// ErrFetchWeather is wrapped by every AppError caused by the upstream call
// itself, as opposed to validation of the data it returned.
var ErrFetchWeather = errors.New("failed to retrieve weather")

// Provider returns the current conditions at a location.
type Provider interface {
	GetCurrent(ctx context.Context, loc Location) (types.Conditions, error)
}

// FetchObserver is notified after every upstream call. metrics.Recorder
// satisfies it.
type FetchObserver interface {
	ObserveWeatherFetch(ctx context.Context, provider string, latency time.Duration, err error)
}

// currentResponse is the subset of /weather we read.
type currentResponse struct {
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// Client is the OpenWeatherMap Provider.
type Client struct {
	base     *external.BaseClient
	baseURL  string
	apiKey   types.SecretString
	logger   *slog.Logger
	observer FetchObserver
	now      func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithObserver reports each fetch's latency and outcome.
func WithObserver(o FetchObserver) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// WithClock overrides the clock used for freshness logging.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates an OpenWeatherMap client. An empty baseURL selects
// DefaultBaseURL.
func NewClient(base *external.BaseClient, baseURL string, apiKey types.SecretString, logger *slog.Logger, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		base:    base,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCurrent fetches the latest observation for loc in imperial units and
// converts it to validated Conditions.
func (c *Client) GetCurrent(ctx context.Context, loc Location) (types.Conditions, error) {
	if err := loc.Validate(); err != nil {
		return types.Conditions{}, err
	}

	q := loc.query()
	q.Set("units", "imperial")
	q.Set("lang", "en")
	q.Set("appid", c.apiKey.Unmask())

	start := time.Now()
	var resp currentResponse
	err := c.base.GetJSON(ctx, c.baseURL+"/weather?"+q.Encode(), nil, &resp)
	if c.observer != nil {
		c.observer.ObserveWeatherFetch(ctx, ProviderName, time.Since(start), err)
	}
	if err != nil {
		return types.Conditions{}, c.mapFetchError(loc, err)
	}

	age := c.now().Sub(time.Unix(resp.Dt, 0))
	if age < 0 {
		age = 0
	}
	c.logger.InfoContext(ctx, "fetched weather observation",
		"location", loc.String(),
		"station", resp.Name,
		"age_minutes", int(age.Minutes()),
		"temp_f", resp.Main.Temp,
	)

	cond, err := types.NewConditions(
		roundTemperature(resp.Main.Temp),
		resolveWeather(resp),
		resolveWind(resp.Wind.Speed),
		resolveTimeOfDay(resp.Dt, resp.Sys.Sunrise, resp.Sys.Sunset),
	)
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return types.Conditions{}, appErr.WithDetails(map[string]any{
			"location": loc.String(),
			"station":  resp.Name,
		})
	}
	return cond, err
}

func (c *Client) mapFetchError(loc Location, err error) error {
	// Transport errors echo the request URL, which carries the API key.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(c.apiKey.Unmask()), c.apiKey.String())
	}

	var statusErr *external.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return types.NewAppErrorWithDetails(types.ErrCodeNotFoundLocation,
			"no weather station for location", errors.Join(ErrFetchWeather, err),
			map[string]any{"location": loc.String()})
	}
	return types.NewAppErrorWithDetails(types.ErrCodeUpstreamWeather,
		"weather provider request failed", errors.Join(ErrFetchWeather, err),
		map[string]any{"location": loc.String(), "provider": ProviderName})
}

func roundTemperature(f float64) int16 {
	r := math.Round(f)
	switch {
	case r > math.MaxInt16:
		return math.MaxInt16
	case r < math.MinInt16:
		return math.MinInt16
	}
	return int16(r)
}

// Wind buckets in mph.
const (
	lightWindMin = 8
	heavyWindMin = 17
)

func resolveWind(mph float64) types.Wind {
	switch {
	case mph < lightWindMin:
		return types.WindCalm
	case mph < heavyWindMin:
		return types.WindLight
	default:
		return types.WindHeavy
	}
}

// resolveTimeOfDay buckets the observation time against sunrise and sunset
// (unix seconds). Morning runs from an hour before sunrise to two hours
// after; evening is within an hour either side of sunset. It ignores polar
// day and night.
func resolveTimeOfDay(dt, sunrise, sunset int64) types.TimeOfDay {
	const hour = 3600
	switch {
	case dt+hour > sunrise && dt < sunrise+2*hour:
		return types.TimeMorning
	case dt >= sunrise+2*hour && dt+hour < sunset:
		return types.TimeDaytime
	case dt+hour >= sunset && dt < sunset+hour:
		return types.TimeEvening
	default:
		return types.TimeNight
	}
}

// Cloud cover thresholds in percent.
const (
	partlyCloudyMin = 25
	overcastMin     = 75
)

// resolveWeather picks the first precipitation condition code, falling back
// to cloud cover. Codes follow the OpenWeatherMap condition table: 5xx rain
// (500, 501 and 520 are light), 6xx snow.
func resolveWeather(r currentResponse) types.Weather {
	for _, w := range r.Weather {
		switch {
		case w.ID >= 600 && w.ID <= 699:
			return types.WeatherSnow
		case w.ID == 500 || w.ID == 501 || w.ID == 520:
			return types.WeatherRain
		case w.ID >= 500 && w.ID <= 599:
			return types.WeatherHeavyRain
		}
	}
	switch {
	case r.Clouds.All > overcastMin:
		return types.WeatherOvercast
	case r.Clouds.All > partlyCloudyMin:
		return types.WeatherPartlyCloudy
	default:
		return types.WeatherClear
	}
}
