package picker

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outfitpicker/internal/types"
)

// paramsAt pins the effective temperature so range checks can be tested
// without working backwards through the adjustment table.
func paramsAt(temp int16, c types.Conditions, p types.Preferences) RunParameters {
	return RunParameters{Conditions: c, Preferences: p, effectiveTemperature: temp}
}

var clearDay = conditions(60, types.WeatherClear, types.WindCalm, types.TimeDaytime)

func female() types.Preferences {
	p := types.DefaultPreferences()
	p.Sex = types.SexFemale
	return p
}

func maleRacer() types.Preferences {
	p := types.DefaultPreferences()
	p.Intensity = types.IntensityRace
	return p
}

func TestSelectOutfit_ClearDayExample(t *testing.T) {
	c := conditions(50, types.WeatherClear, types.WindCalm, types.TimeDaytime)

	outfit, params, err := SelectOutfit(c, types.DefaultPreferences())
	require.NoError(t, err)

	assert.Equal(t, int16(60), params.EffectiveTemperature())
	assert.Empty(t, outfit.Head)
	assert.Equal(t, []string{ShortSleeveShirt}, outfit.Torso)
	assert.Equal(t, []string{Shorts}, outfit.Legs)
	assert.Equal(t, []string{RunningShoes}, outfit.Feet)
	assert.Equal(t, []string{Sunglasses, Sunblock}, outfit.Accessories)
}

func TestSelect_FemaleGetsSportsBraAndCapris(t *testing.T) {
	outfit, err := DefaultSelector().Select(paramsAt(45, clearDay, female()))
	require.NoError(t, err)

	assert.Equal(t, []string{LongSleeveShirt, SportsBra}, outfit.Torso)
	assert.Equal(t, []string{CapriTights, Shorts}, outfit.Legs)
	assert.Equal(t, []string{Gloves, Sunglasses, Sunblock}, outfit.Accessories)
}

func TestSelect_MaleRaceOverride(t *testing.T) {
	c := conditions(35, types.WeatherOvercast, types.WindCalm, types.TimeDaytime)
	params := NewRunParameters(c, maleRacer())
	require.Equal(t, int16(50), params.EffectiveTemperature())

	// Without the override the scan alone would pick a long-sleeve shirt.
	scan := filterWearable(defaultCatalog.Torso, params)
	require.Equal(t, []string{LongSleeveShirt}, scan)

	outfit, err := DefaultSelector().Select(params)
	require.NoError(t, err)
	assert.Equal(t, []string{Singlet}, outfit.Torso)
	assert.Equal(t, []string{Shorts}, outfit.Legs)
	assert.NotContains(t, outfit.Accessories, Gloves)
}

func TestSelect_MaleRaceOverrideThreshold(t *testing.T) {
	c := conditions(20, types.WeatherOvercast, types.WindCalm, types.TimeDaytime)

	outfit, err := DefaultSelector().Select(paramsAt(35, c, maleRacer()))
	require.NoError(t, err)
	assert.Equal(t, []string{LightJacket, LongSleeveShirt}, outfit.Torso, "35 is not above the threshold")

	outfit, err = DefaultSelector().Select(paramsAt(36, c, maleRacer()))
	require.NoError(t, err)
	assert.Equal(t, []string{Singlet}, outfit.Torso)
}

func TestSelect_OverrideIgnoresFemaleAndNonRace(t *testing.T) {
	p := female()
	p.Intensity = types.IntensityRace
	outfit, err := DefaultSelector().Select(paramsAt(50, clearDay, p))
	require.NoError(t, err)
	assert.Equal(t, []string{LongSleeveShirt, SportsBra}, outfit.Torso)

	p = types.DefaultPreferences()
	p.Intensity = types.IntensityWorkout
	outfit, err = DefaultSelector().Select(paramsAt(50, clearDay, p))
	require.NoError(t, err)
	assert.Equal(t, []string{LongSleeveShirt}, outfit.Torso)
}

func TestSelect_RainHeadwear(t *testing.T) {
	rain := conditions(60, types.WeatherRain, types.WindCalm, types.TimeDaytime)
	outfit, _, err := SelectOutfit(rain, types.DefaultPreferences())
	require.NoError(t, err)
	assert.Contains(t, outfit.Head, HatWithVisor)
	assert.NotContains(t, outfit.Head, WinterCap)

	coldRain := conditions(30, types.WeatherRain, types.WindCalm, types.TimeDaytime)
	outfit, _, err = SelectOutfit(coldRain, types.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, []string{WinterCap, HatWithVisor}, outfit.Head)

	// Heavy rain disallows the winter cap even when it is cold enough.
	heavy := conditions(30, types.WeatherHeavyRain, types.WindCalm, types.TimeDaytime)
	outfit, params, err := SelectOutfit(heavy, types.DefaultPreferences())
	require.NoError(t, err)
	require.Equal(t, int16(20), params.EffectiveTemperature())
	assert.Equal(t, []string{HatWithVisor}, outfit.Head)
	assert.Equal(t, []string{HeavyJacket, LongSleeveShirt}, outfit.Torso)
	assert.Equal(t, []string{Gloves}, outfit.Accessories, "no sun protection in the rain")
}

func TestSelect_SunProtectionNeedsDaylight(t *testing.T) {
	for _, tod := range []types.TimeOfDay{types.TimeMorning, types.TimeDaytime, types.TimeEvening} {
		for _, w := range []types.Weather{types.WeatherClear, types.WeatherPartlyCloudy} {
			c := conditions(60, w, types.WindCalm, tod)
			outfit, err := DefaultSelector().Select(paramsAt(60, c, types.DefaultPreferences()))
			require.NoError(t, err)
			assert.Equal(t, []string{Sunglasses, Sunblock}, outfit.Accessories, "%s/%s", w, tod)
		}
	}

	night := conditions(60, types.WeatherClear, types.WindCalm, types.TimeNight)
	outfit, err := DefaultSelector().Select(paramsAt(60, night, types.DefaultPreferences()))
	require.NoError(t, err)
	assert.Empty(t, outfit.Accessories)

	overcast := conditions(60, types.WeatherOvercast, types.WindCalm, types.TimeDaytime)
	outfit, err = DefaultSelector().Select(paramsAt(60, overcast, types.DefaultPreferences()))
	require.NoError(t, err)
	assert.Empty(t, outfit.Accessories)
}

func TestSelect_BoundaryInclusivity(t *testing.T) {
	night := conditions(0, types.WeatherOvercast, types.WindCalm, types.TimeNight)

	outfit, err := DefaultSelector().Select(paramsAt(38, night, types.DefaultPreferences()))
	require.NoError(t, err)
	assert.Contains(t, outfit.Head, WinterCap, "max 38 includes 38")

	outfit, err = DefaultSelector().Select(paramsAt(39, night, types.DefaultPreferences()))
	require.NoError(t, err)
	assert.NotContains(t, outfit.Head, WinterCap, "max 38 excludes 39")

	outfit, err = DefaultSelector().Select(paramsAt(41, night, female()))
	require.NoError(t, err)
	assert.Contains(t, outfit.Legs, CapriTights, "min 41 includes 41")

	outfit, err = DefaultSelector().Select(paramsAt(40, night, female()))
	require.NoError(t, err)
	assert.NotContains(t, outfit.Legs, CapriTights, "min 41 excludes 40")
	assert.Equal(t, []string{Tights, Shorts}, outfit.Legs, "tights and shorts overlap at 40")
}

func TestSelect_MaleHeatLimit(t *testing.T) {
	outfit, err := DefaultSelector().Select(paramsAt(80, clearDay, types.DefaultPreferences()))
	require.NoError(t, err)
	assert.Equal(t, []string{Singlet}, outfit.Torso)

	outfit, err = DefaultSelector().Select(paramsAt(81, clearDay, types.DefaultPreferences()))
	require.NoError(t, err)
	assert.Equal(t, []string{NoShirt}, outfit.Torso)

	outfit, err = DefaultSelector().Select(paramsAt(85, clearDay, female()))
	require.NoError(t, err)
	assert.Equal(t, []string{Singlet, SportsBra}, outfit.Torso)

	outfit, err = DefaultSelector().Select(paramsAt(86, clearDay, female()))
	require.NoError(t, err)
	assert.Equal(t, []string{SportsBra}, outfit.Torso)
}

func TestSelect_ShoesAlwaysSelected(t *testing.T) {
	for _, temp := range []int16{-50, 0, 50, 120} {
		outfit, err := DefaultSelector().Select(paramsAt(temp, clearDay, types.DefaultPreferences()))
		require.NoError(t, err)
		assert.Equal(t, []string{RunningShoes}, outfit.Feet)
	}
}

func TestDefaultCatalog_NoCoverageGaps(t *testing.T) {
	for _, sex := range types.AllSexes {
		p := types.DefaultPreferences()
		p.Sex = sex
		gaps := DefaultSelector().Gaps(-50, 120, clearDay, p)
		assert.Empty(t, gaps, "sex=%s", sex)
	}
}

func TestSelect_CatalogGapIsInvalidOutfit(t *testing.T) {
	catalog := DefaultCatalog()
	catalog.Torso = []Garment{
		{Name: HeavyJacket, Max: bound(20)},
		{Name: ShortSleeveShirt, Min: bound(41)},
	}
	selector := NewSelector(catalog)

	outfit, err := selector.Select(paramsAt(30, clearDay, types.DefaultPreferences()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOutfit))

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalInvalidOutfit, appErr.Code)
	assert.Equal(t, []Slot{SlotTorso}, appErr.Details["empty_slots"])
	assert.Equal(t, int16(30), appErr.Details["effective_temperature"])

	require.NotNil(t, outfit)
	assert.Empty(t, outfit.Torso)
	assert.Equal(t, []string{Tights}, outfit.Legs)

	gaps := selector.Gaps(18, 43, clearDay, types.DefaultPreferences())
	require.Len(t, gaps, 20)
	assert.Equal(t, Gap{Slot: SlotTorso, Temperature: 21}, gaps[0])
	assert.Equal(t, Gap{Slot: SlotTorso, Temperature: 40}, gaps[len(gaps)-1])
}

func TestSelect_EmptyCatalogReportsEveryRequiredSlot(t *testing.T) {
	_, err := NewSelector(Catalog{}).Select(paramsAt(50, clearDay, types.DefaultPreferences()))

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []Slot{SlotTorso, SlotLegs, SlotFeet}, appErr.Details["empty_slots"])
}

func TestSelect_Deterministic(t *testing.T) {
	c := conditions(42, types.WeatherPartlyCloudy, types.WindLight, types.TimeEvening)
	p := types.Preferences{Sex: types.SexFemale, Intensity: types.IntensityWorkout, Feel: types.FeelRunsWarm}

	first, _, err := SelectOutfit(c, p)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Outfit, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, _ = SelectOutfit(c, p)
		}(i)
	}
	wg.Wait()

	for _, o := range results {
		assert.Equal(t, first, o)
	}
}

func TestOutfitString(t *testing.T) {
	o := &Outfit{
		Torso:       []string{LongSleeveShirt, SportsBra},
		Legs:        []string{Tights},
		Feet:        []string{RunningShoes},
		Accessories: []string{Gloves},
	}
	assert.Equal(t, "long-sleeve shirt, sports bra\ntights\nrunning shoes\ngloves\n", o.String())
}
