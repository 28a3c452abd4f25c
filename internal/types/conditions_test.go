package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConditions_PrecipitationLimits(t *testing.T) {
	tests := []struct {
		name        string
		temperature int16
		weather     Weather
		wantErr     bool
	}{
		{name: "rain at limit", temperature: 30, weather: WeatherRain},
		{name: "rain below limit", temperature: 29, weather: WeatherRain, wantErr: true},
		{name: "heavy rain below limit", temperature: 10, weather: WeatherHeavyRain, wantErr: true},
		{name: "heavy rain warm", temperature: 70, weather: WeatherHeavyRain},
		{name: "snow at limit", temperature: 45, weather: WeatherSnow},
		{name: "snow above limit", temperature: 46, weather: WeatherSnow, wantErr: true},
		{name: "snow very cold", temperature: -20, weather: WeatherSnow},
		{name: "clear anything goes", temperature: -40, weather: WeatherClear},
		{name: "overcast hot", temperature: 105, weather: WeatherOvercast},
		{name: "upper bound", temperature: MaxTemperature, weather: WeatherClear},
		{name: "lower bound", temperature: MinTemperature, weather: WeatherClear},
		{name: "above upper bound", temperature: MaxTemperature + 1, weather: WeatherClear, wantErr: true},
		{name: "below lower bound", temperature: MinTemperature - 1, weather: WeatherSnow, wantErr: true},
		{name: "int16 max", temperature: 32767, weather: WeatherClear, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewConditions(tt.temperature, tt.weather, WindCalm, TimeDaytime)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.temperature, c.Temperature)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConditions))

			var appErr *AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, ErrCodeValidationInvalidConditions, appErr.Code)
			assert.Equal(t, 400, appErr.HTTPStatus())
		})
	}
}

func TestConditionsValidate_UnknownEnums(t *testing.T) {
	base := Conditions{Temperature: 50, Weather: WeatherClear, Wind: WindCalm, Time: TimeDaytime}

	c := base
	c.Weather = "hail"
	assert.ErrorIs(t, c.Validate(), ErrInvalidConditions)

	c = base
	c.Wind = ""
	assert.ErrorIs(t, c.Validate(), ErrInvalidConditions)

	c = base
	c.Time = "dusk"
	assert.ErrorIs(t, c.Validate(), ErrInvalidConditions)

	assert.NoError(t, base.Validate())
}

func TestConditionsString(t *testing.T) {
	c := Conditions{Temperature: 50, Weather: WeatherPartlyCloudy, Wind: WindLight, Time: TimeMorning}
	assert.Equal(t, "50°F @ Morning\nPartlyCloudy with Light wind", c.String())
}

func TestPreferencesDefaults(t *testing.T) {
	p := DefaultPreferences()
	assert.Equal(t, SexMale, p.Sex)
	assert.Equal(t, IntensityAverage, p.Intensity)
	assert.Equal(t, FeelAverage, p.Feel)

	filled := Preferences{Sex: SexFemale}.WithDefaults()
	assert.Equal(t, Preferences{Sex: SexFemale, Intensity: IntensityAverage, Feel: FeelAverage}, filled)
	assert.NoError(t, filled.Validate())
}

func TestPreferencesValidate(t *testing.T) {
	err := Preferences{Sex: "other", Intensity: IntensityRace, Feel: FeelAverage}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPreferences)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrCodeValidationInvalidPreferences, appErr.Code)
}

func TestPreferencesString(t *testing.T) {
	assert.Equal(t, "Male running @ Average intensity", DefaultPreferences().String())
	assert.Equal(t, "Female running @ LongRun intensity, RunsCold",
		Preferences{Sex: SexFemale, Intensity: IntensityLongRun, Feel: FeelRunsCold}.String())
}
