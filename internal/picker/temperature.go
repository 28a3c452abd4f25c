// Package picker recommends running apparel. It turns observed conditions and
// runner preferences into a single effective temperature and scans a fixed
// garment catalog, slot by slot, for everything that fits.
//
// Everything in this package is pure: no I/O, no shared mutable state. The
// default catalog is read-only, so selections may run concurrently.
package picker

import (
	"fmt"

	"outfitpicker/internal/types"
)

// RunParameters is the input to a selection: the conditions, the runner's
// preferences, and the effective temperature derived from both. The effective
// temperature is computed once by NewRunParameters and never recomputed.
type RunParameters struct {
	Conditions  types.Conditions
	Preferences types.Preferences

	effectiveTemperature int16
}

// NewRunParameters derives the effective temperature for c and p.
func NewRunParameters(c types.Conditions, p types.Preferences) RunParameters {
	return RunParameters{
		Conditions:           c,
		Preferences:          p,
		effectiveTemperature: EffectiveTemperature(c, p),
	}
}

// EffectiveTemperature returns the precomputed felt temperature in °F.
func (p RunParameters) EffectiveTemperature() int16 {
	return p.effectiveTemperature
}

// String renders preferences, then conditions, then the effective temperature.
func (p RunParameters) String() string {
	return fmt.Sprintf("%s\n%s\nFeels like %d°F", p.Preferences, p.Conditions, p.effectiveTemperature)
}

// EffectiveTemperature adjusts the raw temperature by four independent
// additive terms (sky, wind, intensity, personal feel). The result is not
// clamped.
func EffectiveTemperature(c types.Conditions, p types.Preferences) int16 {
	return c.Temperature +
		weatherAdjustment(c.Weather, c.Time) +
		windAdjustment(c.Wind) +
		intensityAdjustment(p.Intensity) +
		feelAdjustment(p.Feel)
}

func weatherAdjustment(w types.Weather, t types.TimeOfDay) int16 {
	switch w {
	case types.WeatherSnow:
		return -3
	case types.WeatherRain:
		return -4
	case types.WeatherHeavyRain:
		return -10
	case types.WeatherPartlyCloudy:
		return sunAdjustment(t, 5, 2)
	case types.WeatherClear:
		return sunAdjustment(t, 10, 5)
	default:
		return 0
	}
}

// sunAdjustment picks the full bonus at midday, the reduced bonus near
// sunrise and sunset, and nothing at night.
func sunAdjustment(t types.TimeOfDay, daytime, lowSun int16) int16 {
	switch t {
	case types.TimeDaytime:
		return daytime
	case types.TimeMorning, types.TimeEvening:
		return lowSun
	default:
		return 0
	}
}

func windAdjustment(w types.Wind) int16 {
	switch w {
	case types.WindLight:
		return -5
	case types.WindHeavy:
		return -9
	default:
		return 0
	}
}

func intensityAdjustment(i types.Intensity) int16 {
	switch i {
	case types.IntensityRace:
		return 15
	case types.IntensityWorkout:
		return 8
	case types.IntensityLongRun:
		return -5
	default:
		return 0
	}
}

func feelAdjustment(f types.Feel) int16 {
	switch f {
	case types.FeelRunsWarm:
		return 10
	case types.FeelRunsCold:
		return -10
	default:
		return 0
	}
}
