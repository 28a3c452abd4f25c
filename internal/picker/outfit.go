package picker

import (
	"errors"
	"fmt"
	"strings"

	"outfitpicker/internal/types"
)

// raceSingletMin is the effective temperature above which male racers are
// always put in a singlet, whatever the scan picked.
const raceSingletMin = 35

// ErrInvalidOutfit is wrapped by the AppError returned when a required slot
// (torso, legs, feet) comes back empty. It points at a gap in the catalog's
// temperature coverage; retrying with the same input gives the same result.
var ErrInvalidOutfit = errors.New("the generated outfit is invalid")

// Outfit lists the selected garment names per slot, in catalog order.
type Outfit struct {
	Head        []string `json:"head"`
	Torso       []string `json:"torso"`
	Legs        []string `json:"legs"`
	Feet        []string `json:"feet"`
	Accessories []string `json:"accessories"`
}

// Slot returns the names selected for s.
func (o *Outfit) Slot(s Slot) []string {
	switch s {
	case SlotHead:
		return o.Head
	case SlotTorso:
		return o.Torso
	case SlotLegs:
		return o.Legs
	case SlotFeet:
		return o.Feet
	case SlotAccessories:
		return o.Accessories
	default:
		return nil
	}
}

func (o *Outfit) set(s Slot, names []string) {
	switch s {
	case SlotHead:
		o.Head = names
	case SlotTorso:
		o.Torso = names
	case SlotLegs:
		o.Legs = names
	case SlotFeet:
		o.Feet = names
	case SlotAccessories:
		o.Accessories = names
	}
}

// EmptyRequiredSlots returns the required slots that have no garment.
func (o *Outfit) EmptyRequiredSlots() []Slot {
	var empty []Slot
	for _, s := range requiredSlots {
		if len(o.Slot(s)) == 0 {
			empty = append(empty, s)
		}
	}
	return empty
}

// String prints one line per non-empty slot, names comma separated.
func (o *Outfit) String() string {
	var b strings.Builder
	for _, s := range AllSlots {
		if names := o.Slot(s); len(names) > 0 {
			b.WriteString(strings.Join(names, ", "))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Selector picks outfits from a fixed catalog. A Selector is immutable and
// safe for concurrent use.
type Selector struct {
	catalog Catalog
}

// NewSelector returns a Selector over a private copy of catalog.
func NewSelector(catalog Catalog) *Selector {
	return &Selector{catalog: catalog.Clone()}
}

var defaultSelector = &Selector{catalog: defaultCatalog}

// Validate reports structural mistakes in the selector's catalog.
func (s *Selector) Validate() error {
	return s.catalog.Validate()
}

// DefaultSelector returns the Selector over the built-in catalog.
func DefaultSelector() *Selector {
	return defaultSelector
}

// SelectOutfit derives run parameters from c and p and selects from the
// default catalog.
func SelectOutfit(c types.Conditions, p types.Preferences) (*Outfit, RunParameters, error) {
	params := NewRunParameters(c, p)
	outfit, err := defaultSelector.Select(params)
	return outfit, params, err
}

// Select scans each slot in catalog order, applies the male race override,
// and rejects outfits that leave torso, legs or feet empty. The rejected
// outfit is still returned alongside the error for diagnostics.
func (s *Selector) Select(params RunParameters) (*Outfit, error) {
	outfit := s.assemble(params)

	if empty := outfit.EmptyRequiredSlots(); len(empty) > 0 {
		return outfit, types.NewAppErrorWithDetails(
			types.ErrCodeInternalInvalidOutfit,
			fmt.Sprintf("no garment covers %s at %d°F", joinSlots(empty), params.EffectiveTemperature()),
			ErrInvalidOutfit,
			map[string]any{
				"outfit":                outfit,
				"empty_slots":           empty,
				"effective_temperature": params.EffectiveTemperature(),
			},
		)
	}
	return outfit, nil
}

func (s *Selector) assemble(params RunParameters) *Outfit {
	outfit := &Outfit{}
	for _, slot := range AllSlots {
		outfit.set(slot, filterWearable(s.catalog.Slot(slot), params))
	}

	if params.Preferences.Sex == types.SexMale &&
		params.Preferences.Intensity == types.IntensityRace &&
		params.EffectiveTemperature() > raceSingletMin {
		outfit.Torso = []string{Singlet}
	}
	return outfit
}

func filterWearable(choices []Garment, params RunParameters) []string {
	names := make([]string, 0, len(choices))
	for _, g := range choices {
		if g.Wearable(params) {
			names = append(names, g.Name)
		}
	}
	return names
}

func joinSlots(slots []Slot) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// Gap is an effective temperature at which a required slot comes back empty.
type Gap struct {
	Slot        Slot  `json:"slot"`
	Temperature int16 `json:"temperature"`
}

// Gaps runs the selection for every effective temperature in [lo, hi] with
// the given conditions and preferences and reports each empty required slot.
func (s *Selector) Gaps(lo, hi int16, c types.Conditions, p types.Preferences) []Gap {
	var gaps []Gap
	for t := int(lo); t <= int(hi); t++ {
		params := RunParameters{Conditions: c, Preferences: p, effectiveTemperature: int16(t)}
		for _, slot := range s.assemble(params).EmptyRequiredSlots() {
			gaps = append(gaps, Gap{Slot: slot, Temperature: int16(t)})
		}
	}
	return gaps
}
