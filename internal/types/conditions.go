package types

import (
	"errors"
	"fmt"
)

// Plausibility limits in °F. The outer bounds keep every effective
// temperature sum inside int16.
const (
	MinTemperature     = -200
	MaxTemperature     = 200
	MinRainTemperature = 30
	MaxSnowTemperature = 45
)

// ErrInvalidConditions is wrapped by every AppError returned from
// Conditions.Validate, so callers can test with errors.Is.
var ErrInvalidConditions = errors.New("the given weather conditions are invalid")

// ErrInvalidPreferences is wrapped by every AppError returned from
// Preferences.Validate.
var ErrInvalidPreferences = errors.New("the given runner preferences are invalid")

// Conditions is an observed weather snapshot. Temperature is in °F.
type Conditions struct {
	Temperature int16     `json:"temperature" validate:"gte=-200,lte=200"`
	Weather     Weather   `json:"weather" validate:"required,weather"`
	Wind        Wind      `json:"wind" validate:"required,wind"`
	Time        TimeOfDay `json:"time" validate:"required,timeofday"`
}

// NewConditions builds a Conditions value and validates it.
func NewConditions(temperature int16, weather Weather, wind Wind, time TimeOfDay) (Conditions, error) {
	c := Conditions{
		Temperature: temperature,
		Weather:     weather,
		Wind:        wind,
		Time:        time,
	}
	if err := c.Validate(); err != nil {
		return Conditions{}, err
	}
	return c, nil
}

// Validate rejects unknown enum values, temperatures outside
// [MinTemperature, MaxTemperature] and temperatures that contradict the
// stated precipitation: rain below 30°F or snow above 45°F.
func (c Conditions) Validate() error {
	switch {
	case c.Temperature < MinTemperature || c.Temperature > MaxTemperature:
		return invalidConditions(c, fmt.Sprintf("temperature %d°F is outside %d..%d", c.Temperature, MinTemperature, MaxTemperature))
	case !c.Weather.Valid():
		return invalidConditions(c, fmt.Sprintf("unknown weather %q", c.Weather))
	case !c.Wind.Valid():
		return invalidConditions(c, fmt.Sprintf("unknown wind %q", c.Wind))
	case !c.Time.Valid():
		return invalidConditions(c, fmt.Sprintf("unknown time of day %q", c.Time))
	}

	switch c.Weather {
	case WeatherRain, WeatherHeavyRain:
		if c.Temperature < MinRainTemperature {
			return invalidConditions(c, "it's too cold for rain")
		}
	case WeatherSnow:
		if c.Temperature > MaxSnowTemperature {
			return invalidConditions(c, "it's too warm for snow")
		}
	}
	return nil
}

func invalidConditions(c Conditions, msg string) *AppError {
	return NewAppErrorWithDetails(ErrCodeValidationInvalidConditions, msg, ErrInvalidConditions, map[string]any{
		"conditions": c,
	})
}

// String renders the conditions on two lines, e.g.
//
//	50°F @ Daytime
//	Clear with Calm wind
func (c Conditions) String() string {
	return fmt.Sprintf("%d°F @ %s\n%s with %s wind", c.Temperature, c.Time.Label(), c.Weather.Label(), c.Wind.Label())
}

// Preferences describes the runner. The zero value is not valid; use
// DefaultPreferences for unspecified fields.
type Preferences struct {
	Sex       Sex       `json:"sex" validate:"required,sex"`
	Intensity Intensity `json:"intensity" validate:"required,intensity"`
	Feel      Feel      `json:"feel" validate:"required,feel"`
}

// DefaultPreferences returns the documented placeholder defaults used when a
// request does not specify a value: Male, Average intensity, Average feel.
func DefaultPreferences() Preferences {
	return Preferences{
		Sex:       SexMale,
		Intensity: IntensityAverage,
		Feel:      FeelAverage,
	}
}

// WithDefaults fills any empty field from DefaultPreferences.
func (p Preferences) WithDefaults() Preferences {
	d := DefaultPreferences()
	if p.Sex == "" {
		p.Sex = d.Sex
	}
	if p.Intensity == "" {
		p.Intensity = d.Intensity
	}
	if p.Feel == "" {
		p.Feel = d.Feel
	}
	return p
}

// Validate rejects unknown enum values.
func (p Preferences) Validate() error {
	var msg string
	switch {
	case !p.Sex.Valid():
		msg = fmt.Sprintf("unknown sex %q", p.Sex)
	case !p.Intensity.Valid():
		msg = fmt.Sprintf("unknown intensity %q", p.Intensity)
	case !p.Feel.Valid():
		msg = fmt.Sprintf("unknown feel %q", p.Feel)
	default:
		return nil
	}
	return NewAppError(ErrCodeValidationInvalidPreferences, msg, ErrInvalidPreferences)
}

// String renders e.g. "Female running @ Race intensity" and appends the feel
// when it is not Average.
func (p Preferences) String() string {
	s := fmt.Sprintf("%s running @ %s intensity", p.Sex.Label(), p.Intensity.Label())
	if p.Feel != FeelAverage && p.Feel != "" {
		s += ", " + p.Feel.Label()
	}
	return s
}
