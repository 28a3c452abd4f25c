package types

import (
	"fmt"
	"strings"
)

// Weather is the coarse sky/precipitation state used by the outfit picker.
type Weather string

const (
	WeatherClear        Weather = "clear"
	WeatherPartlyCloudy Weather = "partly_cloudy"
	WeatherOvercast     Weather = "overcast"
	WeatherRain         Weather = "rain"
	WeatherHeavyRain    Weather = "heavy_rain"
	WeatherSnow         Weather = "snow"
)

// Wind is the bucketed wind strength.
type Wind string

const (
	WindCalm  Wind = "calm"
	WindLight Wind = "light"
	WindHeavy Wind = "heavy"
)

// TimeOfDay is the daylight phase relative to sunrise and sunset.
type TimeOfDay string

const (
	TimeMorning TimeOfDay = "morning"
	TimeDaytime TimeOfDay = "daytime"
	TimeEvening TimeOfDay = "evening"
	TimeNight   TimeOfDay = "night"
)

// Sex selects sex-specific garments.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Intensity describes how hard the runner plans to work.
type Intensity string

const (
	IntensityLongRun Intensity = "long_run"
	IntensityAverage Intensity = "average"
	IntensityWorkout Intensity = "workout"
	IntensityRace    Intensity = "race"
)

// Feel is the runner's personal thermal bias.
type Feel string

const (
	FeelRunsWarm Feel = "runs_warm"
	FeelAverage  Feel = "average"
	FeelRunsCold Feel = "runs_cold"
)

// AllWeather lists every Weather value in declaration order.
var AllWeather = []Weather{WeatherClear, WeatherPartlyCloudy, WeatherOvercast, WeatherRain, WeatherHeavyRain, WeatherSnow}

// AllWind lists every Wind value in declaration order.
var AllWind = []Wind{WindCalm, WindLight, WindHeavy}

// AllTimesOfDay lists every TimeOfDay value in declaration order.
var AllTimesOfDay = []TimeOfDay{TimeMorning, TimeDaytime, TimeEvening, TimeNight}

// AllSexes lists every Sex value in declaration order.
var AllSexes = []Sex{SexMale, SexFemale}

// AllIntensities lists every Intensity value in declaration order.
var AllIntensities = []Intensity{IntensityLongRun, IntensityAverage, IntensityWorkout, IntensityRace}

// AllFeels lists every Feel value in declaration order.
var AllFeels = []Feel{FeelRunsWarm, FeelAverage, FeelRunsCold}

var (
	weatherLabels = map[Weather]string{
		WeatherClear:        "Clear",
		WeatherPartlyCloudy: "PartlyCloudy",
		WeatherOvercast:     "Overcast",
		WeatherRain:         "Rain",
		WeatherHeavyRain:    "HeavyRain",
		WeatherSnow:         "Snow",
	}
	windLabels = map[Wind]string{
		WindCalm:  "Calm",
		WindLight: "Light",
		WindHeavy: "Heavy",
	}
	timeLabels = map[TimeOfDay]string{
		TimeMorning: "Morning",
		TimeDaytime: "Daytime",
		TimeEvening: "Evening",
		TimeNight:   "Night",
	}
	sexLabels = map[Sex]string{
		SexMale:   "Male",
		SexFemale: "Female",
	}
	intensityLabels = map[Intensity]string{
		IntensityLongRun: "LongRun",
		IntensityAverage: "Average",
		IntensityWorkout: "Workout",
		IntensityRace:    "Race",
	}
	feelLabels = map[Feel]string{
		FeelRunsWarm: "RunsWarm",
		FeelAverage:  "Average",
		FeelRunsCold: "RunsCold",
	}
)

// Valid reports whether w is a known Weather value.
func (w Weather) Valid() bool {
	_, ok := weatherLabels[w]
	return ok
}

// Label returns the display name, e.g. "PartlyCloudy".
func (w Weather) Label() string {
	return label(weatherLabels, w)
}

// Valid reports whether w is a known Wind value.
func (w Wind) Valid() bool {
	_, ok := windLabels[w]
	return ok
}

// Label returns the display name, e.g. "Calm".
func (w Wind) Label() string {
	return label(windLabels, w)
}

// Valid reports whether t is a known TimeOfDay value.
func (t TimeOfDay) Valid() bool {
	_, ok := timeLabels[t]
	return ok
}

// Label returns the display name, e.g. "Daytime".
func (t TimeOfDay) Label() string {
	return label(timeLabels, t)
}

// Valid reports whether s is a known Sex value.
func (s Sex) Valid() bool {
	_, ok := sexLabels[s]
	return ok
}

// Label returns the display name, e.g. "Female".
func (s Sex) Label() string {
	return label(sexLabels, s)
}

// Valid reports whether i is a known Intensity value.
func (i Intensity) Valid() bool {
	_, ok := intensityLabels[i]
	return ok
}

// Label returns the display name, e.g. "LongRun".
func (i Intensity) Label() string {
	return label(intensityLabels, i)
}

// Valid reports whether f is a known Feel value.
func (f Feel) Valid() bool {
	_, ok := feelLabels[f]
	return ok
}

// Label returns the display name, e.g. "RunsCold".
func (f Feel) Label() string {
	return label(feelLabels, f)
}

func label[T ~string](labels map[T]string, v T) string {
	if l, ok := labels[v]; ok {
		return l
	}
	return string(v)
}

// ParseWeather accepts the canonical value ("partly_cloudy"), the label
// ("PartlyCloudy") or a spaced/hyphenated form ("partly cloudy"), case-insensitively.
func ParseWeather(s string) (Weather, error) {
	return parseEnum(s, AllWeather, "weather")
}

// ParseWind parses a Wind value. See ParseWeather for accepted spellings.
func ParseWind(s string) (Wind, error) {
	return parseEnum(s, AllWind, "wind")
}

// ParseTimeOfDay parses a TimeOfDay value. See ParseWeather for accepted spellings.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	return parseEnum(s, AllTimesOfDay, "time of day")
}

// ParseSex parses a Sex value. See ParseWeather for accepted spellings.
func ParseSex(s string) (Sex, error) {
	return parseEnum(s, AllSexes, "sex")
}

// ParseIntensity parses an Intensity value. See ParseWeather for accepted spellings.
func ParseIntensity(s string) (Intensity, error) {
	return parseEnum(s, AllIntensities, "intensity")
}

// ParseFeel parses a Feel value. See ParseWeather for accepted spellings.
func ParseFeel(s string) (Feel, error) {
	return parseEnum(s, AllFeels, "feel")
}

// normalizeEnum folds case and strips separators so that "Partly Cloudy",
// "partly-cloudy", "partly_cloudy" and "PartlyCloudy" all compare equal.
func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

func parseEnum[T ~string](s string, all []T, kind string) (T, error) {
	want := normalizeEnum(s)
	for _, v := range all {
		if normalizeEnum(string(v)) == want {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", kind, s)
}
