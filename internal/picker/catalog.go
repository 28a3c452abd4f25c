package picker

import (
	"errors"
	"fmt"

	"outfitpicker/internal/types"
)

// Slot is a body region that garments are grouped into.
type Slot string

const (
	SlotHead        Slot = "head"
	SlotTorso       Slot = "torso"
	SlotLegs        Slot = "legs"
	SlotFeet        Slot = "feet"
	SlotAccessories Slot = "accessories"
)

// AllSlots lists the slots in output order.
var AllSlots = []Slot{SlotHead, SlotTorso, SlotLegs, SlotFeet, SlotAccessories}

// requiredSlots must each yield at least one garment for an outfit to be valid.
var requiredSlots = []Slot{SlotTorso, SlotLegs, SlotFeet}

// Predicate names an extra rule a garment must satisfy beyond its
// temperature range. Rules are looked up in predicateFuncs so that catalog
// entries stay plain data.
type Predicate uint8

const (
	PredicateNone Predicate = iota
	PredicateDisallowHeavyRain
	PredicateRequireRain
	PredicateRequireSun
	PredicateRequireBrightSun
	PredicateRequireMale
	PredicateRequireFemale
	PredicateMaleHeatLimit
	PredicateDisallowRace
)

var predicateNames = map[Predicate]string{
	PredicateNone:              "none",
	PredicateDisallowHeavyRain: "disallow_heavy_rain",
	PredicateRequireRain:       "require_rain",
	PredicateRequireSun:        "require_sun",
	PredicateRequireBrightSun:  "require_bright_sun",
	PredicateRequireMale:       "require_male",
	PredicateRequireFemale:     "require_female",
	PredicateMaleHeatLimit:     "male_heat_limit",
	PredicateDisallowRace:      "disallow_race",
}

// maleSingletMax is the effective temperature above which men are steered
// from a singlet to no shirt.
const maleSingletMax = 80

var predicateFuncs = map[Predicate]func(RunParameters) bool{
	PredicateNone: func(RunParameters) bool { return true },
	PredicateDisallowHeavyRain: func(p RunParameters) bool {
		return p.Conditions.Weather != types.WeatherHeavyRain
	},
	PredicateRequireRain: func(p RunParameters) bool {
		w := p.Conditions.Weather
		return w == types.WeatherRain || w == types.WeatherHeavyRain
	},
	PredicateRequireSun:       sunIsOut,
	PredicateRequireBrightSun: sunIsOut,
	PredicateRequireMale: func(p RunParameters) bool {
		return p.Preferences.Sex == types.SexMale
	},
	PredicateRequireFemale: func(p RunParameters) bool {
		return p.Preferences.Sex == types.SexFemale
	},
	PredicateMaleHeatLimit: func(p RunParameters) bool {
		if p.Preferences.Sex != types.SexMale {
			return true
		}
		return p.EffectiveTemperature() <= maleSingletMax
	},
	PredicateDisallowRace: func(p RunParameters) bool {
		return p.Preferences.Intensity != types.IntensityRace
	},
}

// sunIsOut is true outside night hours under a clear or partly cloudy sky.
func sunIsOut(p RunParameters) bool {
	if p.Conditions.Time == types.TimeNight {
		return false
	}
	w := p.Conditions.Weather
	return w == types.WeatherClear || w == types.WeatherPartlyCloudy
}

// String returns the predicate's snake_case name.
func (p Predicate) String() string {
	if name, ok := predicateNames[p]; ok {
		return name
	}
	return fmt.Sprintf("predicate(%d)", uint8(p))
}

// Holds evaluates the predicate. An unregistered predicate never holds.
func (p Predicate) Holds(params RunParameters) bool {
	fn, ok := predicateFuncs[p]
	if !ok {
		return false
	}
	return fn(params)
}

// Garment is one catalog entry. Min and Max are inclusive effective
// temperature bounds; nil means unbounded on that side.
type Garment struct {
	Name   string
	Phrase string // spoken form, e.g. "a winter cap"
	Min    *int16
	Max    *int16
	Rule   Predicate
}

// Wearable reports whether the garment fits params: within range and the
// rule holds.
func (g Garment) Wearable(params RunParameters) bool {
	t := params.EffectiveTemperature()
	if g.Min != nil && t < *g.Min {
		return false
	}
	if g.Max != nil && t > *g.Max {
		return false
	}
	return g.Rule.Holds(params)
}

// Catalog holds the candidate garments of every slot in the order they are
// considered and reported.
type Catalog struct {
	Head        []Garment
	Torso       []Garment
	Legs        []Garment
	Feet        []Garment
	Accessories []Garment
}

// Slot returns the candidates for s.
func (c Catalog) Slot(s Slot) []Garment {
	switch s {
	case SlotHead:
		return c.Head
	case SlotTorso:
		return c.Torso
	case SlotLegs:
		return c.Legs
	case SlotFeet:
		return c.Feet
	case SlotAccessories:
		return c.Accessories
	default:
		return nil
	}
}

// Clone returns a deep copy, bounds included.
func (c Catalog) Clone() Catalog {
	return Catalog{
		Head:        cloneGarments(c.Head),
		Torso:       cloneGarments(c.Torso),
		Legs:        cloneGarments(c.Legs),
		Feet:        cloneGarments(c.Feet),
		Accessories: cloneGarments(c.Accessories),
	}
}

func cloneGarments(in []Garment) []Garment {
	if in == nil {
		return nil
	}
	out := make([]Garment, len(in))
	for i, g := range in {
		if g.Min != nil {
			g.Min = bound(*g.Min)
		}
		if g.Max != nil {
			g.Max = bound(*g.Max)
		}
		out[i] = g
	}
	return out
}

// Validate checks the catalog for structural mistakes: unnamed garments,
// inverted ranges, unknown predicates and duplicate names within a slot.
func (c Catalog) Validate() error {
	var errs []error
	for _, s := range AllSlots {
		seen := make(map[string]struct{})
		for i, g := range c.Slot(s) {
			if g.Name == "" {
				errs = append(errs, fmt.Errorf("%s[%d]: garment has no name", s, i))
			}
			if _, dup := seen[g.Name]; dup {
				errs = append(errs, fmt.Errorf("%s: duplicate garment %q", s, g.Name))
			}
			seen[g.Name] = struct{}{}
			if g.Min != nil && g.Max != nil && *g.Min > *g.Max {
				errs = append(errs, fmt.Errorf("%s: %q has min %d above max %d", s, g.Name, *g.Min, *g.Max))
			}
			if _, ok := predicateFuncs[g.Rule]; !ok {
				errs = append(errs, fmt.Errorf("%s: %q uses unknown %s", s, g.Name, g.Rule))
			}
		}
	}
	return errors.Join(errs...)
}

func bound(v int16) *int16 {
	return &v
}

// Garment names in the default catalog.
const (
	WinterCap        = "winter cap"
	HatWithVisor     = "hat with visor"
	HeavyJacket      = "heavy jacket"
	LightJacket      = "light jacket"
	Vest             = "vest"
	LongSleeveShirt  = "long-sleeve shirt"
	ShortSleeveShirt = "short-sleeve shirt"
	Singlet          = "singlet"
	SportsBra        = "sports bra"
	NoShirt          = "no shirt"
	Tights           = "tights"
	CapriTights      = "capri tights"
	Shorts           = "shorts"
	RunningShoes     = "running shoes"
	Gloves           = "gloves"
	Sunglasses       = "sunglasses"
	Sunblock         = "sunblock"
)

// defaultCatalog is built once and never mutated. Callers that need to
// modify it get a copy from DefaultCatalog.
var defaultCatalog = Catalog{
	Head: []Garment{
		{Name: WinterCap, Phrase: "a winter cap", Max: bound(38), Rule: PredicateDisallowHeavyRain},
		{Name: HatWithVisor, Phrase: "a hat with visor", Rule: PredicateRequireRain},
	},
	Torso: []Garment{
		{Name: HeavyJacket, Phrase: "a heavy jacket", Max: bound(20)},
		{Name: LightJacket, Phrase: "a light jacket", Min: bound(21), Max: bound(35)},
		{Name: Vest, Phrase: "a vest", Min: bound(36), Max: bound(40)},
		{Name: LongSleeveShirt, Phrase: "a long-sleeved shirt", Max: bound(54)},
		{Name: ShortSleeveShirt, Phrase: "a short-sleeved shirt", Min: bound(55), Max: bound(65)},
		{Name: Singlet, Phrase: "a sleeveless shirt", Min: bound(66), Max: bound(85), Rule: PredicateMaleHeatLimit},
		{Name: SportsBra, Phrase: "a sports bra", Rule: PredicateRequireFemale},
		{Name: NoShirt, Phrase: "no shirt", Min: bound(81), Rule: PredicateRequireMale},
	},
	Legs: []Garment{
		{Name: Tights, Phrase: "tights", Max: bound(40)},
		{Name: CapriTights, Phrase: "capri tights", Min: bound(41), Max: bound(50), Rule: PredicateRequireFemale},
		{Name: Shorts, Phrase: "shorts", Min: bound(40)},
	},
	Feet: []Garment{
		{Name: RunningShoes, Phrase: "running shoes"},
	},
	Accessories: []Garment{
		{Name: Gloves, Phrase: "gloves", Max: bound(47), Rule: PredicateDisallowRace},
		{Name: Sunglasses, Phrase: "sunglasses", Rule: PredicateRequireSun},
		{Name: Sunblock, Phrase: "sunblock", Rule: PredicateRequireBrightSun},
	},
}

var defaultPhrases = func() map[string]string {
	m := make(map[string]string)
	for _, s := range AllSlots {
		for _, g := range defaultCatalog.Slot(s) {
			m[g.Name] = g.Phrase
		}
	}
	return m
}()

// DefaultCatalog returns a copy of the built-in garment catalog.
func DefaultCatalog() Catalog {
	return defaultCatalog.Clone()
}

// Phrase returns the spoken form of a default-catalog garment, or name itself
// when the garment is unknown or has no phrase.
func Phrase(name string) string {
	if p := defaultPhrases[name]; p != "" {
		return p
	}
	return name
}
