// Package main implements the outfit CLI: it prints the run parameters and
// the recommended outfit for one or more locations.
//
// Usage:
//
//	go run ./cmd/outfit
//	go run ./cmd/outfit -zip 02144,10001 -zip 94110 -sex female -intensity race
//	go run ./cmd/outfit -lat 42.39 -lon -71.10 -feel runs_cold
//	go run ./cmd/outfit -offline -temp 41 -weather rain -wind light -time evening
//
// Live lookups read OWM_API_KEY (and the rest of the config) from the
// environment or a .env file. Several locations are fetched concurrently.
// -offline skips configuration and the weather provider entirely.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"outfitpicker/internal/app"
	"outfitpicker/internal/config"
	"outfitpicker/internal/metrics"
	"outfitpicker/internal/picker"
	"outfitpicker/internal/speech"
	"outfitpicker/internal/types"
	"outfitpicker/internal/weather"
)

// maxConcurrentLookups bounds parallel weather requests.
const maxConcurrentLookups = 4

// errUsage is returned for invalid flags; usage has already been printed.
var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// listFlag collects repeatable, comma-separated values.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

type options struct {
	zips     listFlag
	country  string
	lat, lon string
	prefs    types.Preferences
	offline  bool
	cond     types.Conditions
	asJSON   bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("outfit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts                 options
		sex, intensity, feel string
		temp                 int
		sky, wind, timeOfDay string
	)
	fs.Var(&opts.zips, "zip", "zip code; repeat or comma-separate for several (default from DEFAULT_ZIP)")
	fs.StringVar(&opts.country, "country", "", "ISO country code for -zip (default from DEFAULT_COUNTRY)")
	fs.StringVar(&opts.lat, "lat", "", "latitude; use with -lon instead of -zip")
	fs.StringVar(&opts.lon, "lon", "", "longitude; use with -lat instead of -zip")
	fs.StringVar(&sex, "sex", "male", "male or female")
	fs.StringVar(&intensity, "intensity", "average", "long_run, average, workout or race")
	fs.StringVar(&feel, "feel", "average", "runs_warm, average or runs_cold")
	fs.BoolVar(&opts.offline, "offline", false, "use -temp, -weather, -wind and -time instead of live weather")
	fs.IntVar(&temp, "temp", 50, "offline temperature in °F")
	fs.StringVar(&sky, "weather", "clear", "offline weather: clear, partly_cloudy, overcast, rain, heavy_rain or snow")
	fs.StringVar(&wind, "wind", "calm", "offline wind: calm, light or heavy")
	fs.StringVar(&timeOfDay, "time", "daytime", "offline time of day: morning, daytime, evening or night")
	fs.BoolVar(&opts.asJSON, "json", false, "print JSON instead of text")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: outfit [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return nil, errUsage
	}

	var err error
	if opts.prefs.Sex, err = types.ParseSex(sex); err != nil {
		return nil, err
	}
	if opts.prefs.Intensity, err = types.ParseIntensity(intensity); err != nil {
		return nil, err
	}
	if opts.prefs.Feel, err = types.ParseFeel(feel); err != nil {
		return nil, err
	}

	if (opts.lat == "") != (opts.lon == "") {
		return nil, errors.New("-lat and -lon must be given together")
	}
	if opts.lat != "" && len(opts.zips) > 0 {
		return nil, errors.New("use either -zip or -lat/-lon, not both")
	}

	if !opts.offline {
		return &opts, nil
	}
	if temp < types.MinTemperature || temp > types.MaxTemperature {
		return nil, fmt.Errorf("-temp %d is out of range", temp)
	}
	c := types.Conditions{Temperature: int16(temp)}
	if c.Weather, err = types.ParseWeather(sky); err != nil {
		return nil, err
	}
	if c.Wind, err = types.ParseWind(wind); err != nil {
		return nil, err
	}
	if c.Time, err = types.ParseTimeOfDay(timeOfDay); err != nil {
		return nil, err
	}
	if opts.cond, err = types.NewConditions(c.Temperature, c.Weather, c.Wind, c.Time); err != nil {
		return nil, err
	}
	return &opts, nil
}

// result is one location's recommendation.
type result struct {
	Location             string            `json:"location,omitempty"`
	Conditions           types.Conditions  `json:"conditions"`
	Preferences          types.Preferences `json:"preferences"`
	EffectiveTemperature int16             `json:"effective_temperature"`
	Outfit               *picker.Outfit    `json:"outfit"`
	Speech               string            `json:"speech"`

	params picker.RunParameters
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	var results []result
	if opts.offline {
		r, err := pick("", opts.cond, opts.prefs)
		if err != nil {
			return err
		}
		results = []result{r}
	} else {
		cfg, err := config.Load(config.NewEnvVarProvider())
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		logger := app.NewLogger(stderr, cfg.LogLevel)

		locs, err := locations(opts, cfg)
		if err != nil {
			return err
		}
		recorder, err := app.NewRecorder(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("creating metrics recorder: %w", err)
		}
		results, err = pickAll(ctx, app.NewWeatherClient(cfg, logger, recorder), recorder, locs, opts.prefs)
		if err != nil {
			return err
		}
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	render(stdout, results)
	return nil
}

func locations(opts *options, cfg *config.Config) ([]weather.Location, error) {
	if opts.lat != "" {
		lat, err := strconv.ParseFloat(opts.lat, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -lat: %w", err)
		}
		lon, err := strconv.ParseFloat(opts.lon, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -lon: %w", err)
		}
		loc := weather.Coordinates(lat, lon)
		if err := loc.Validate(); err != nil {
			return nil, err
		}
		return []weather.Location{loc}, nil
	}

	if len(opts.zips) == 0 {
		return []weather.Location{app.DefaultLocation(cfg)}, nil
	}
	country := opts.country
	if country == "" {
		country = cfg.Defaults.Country
	}
	locs := make([]weather.Location, len(opts.zips))
	for i, zip := range opts.zips {
		locs[i] = weather.PostalCode(zip, country)
	}
	return locs, nil
}

// pickAll fetches every location concurrently and keeps results in input
// order. The first failure cancels the remaining lookups.
func pickAll(ctx context.Context, provider weather.Provider, rec metrics.Recorder, locs []weather.Location, prefs types.Preferences) ([]result, error) {
	results := make([]result, len(locs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, loc := range locs {
		i, loc := i, loc
		g.Go(func() error {
			c, err := provider.GetCurrent(ctx, loc)
			if err != nil {
				return fmt.Errorf("%s: %w", loc, err)
			}
			r, err := pick(loc.String(), c, prefs)
			rec.RecordSelection(ctx, metrics.SourceCLI, prefs.Intensity, err)
			if err != nil {
				return fmt.Errorf("%s: %w", loc, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func pick(location string, c types.Conditions, p types.Preferences) (result, error) {
	outfit, params, err := picker.SelectOutfit(c, p)
	if err != nil {
		return result{}, err
	}
	return result{
		Location:             location,
		Conditions:           c,
		Preferences:          p,
		EffectiveTemperature: params.EffectiveTemperature(),
		Outfit:               outfit,
		Speech:               speech.FromOutfit(outfit),
		params:               params,
	}, nil
}

func render(w io.Writer, results []result) {
	for _, r := range results {
		if len(results) > 1 {
			fmt.Fprintf(w, "\n== %s ==", r.Location)
		}
		fmt.Fprintf(w, "\nParameters:\n%s\n\nOutfit:\n%s", r.params, r.Outfit)
	}
}
