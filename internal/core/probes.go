package core

import (
	"context"
	"fmt"

	"outfitpicker/internal/picker"
	"outfitpicker/internal/types"
)

// Coverage range checked by CatalogProbe, in effective °F.
const (
	coverageMin int16 = -50
	coverageMax int16 = 120
)

// CatalogProbe fails when the selector's catalog is malformed or leaves a
// required slot empty at any effective temperature in the coverage range,
// for either sex.
type CatalogProbe struct {
	Selector *picker.Selector
}

// Name implements HealthProbe.
func (CatalogProbe) Name() string { return "catalog" }

// Check implements HealthProbe.
func (p CatalogProbe) Check(ctx context.Context) error {
	sel := p.Selector
	if sel == nil {
		sel = picker.DefaultSelector()
	}
	if err := sel.Validate(); err != nil {
		return fmt.Errorf("catalog is malformed: %w", err)
	}
	clearDay := types.Conditions{Weather: types.WeatherClear, Wind: types.WindCalm, Time: types.TimeDaytime}

	for _, sex := range types.AllSexes {
		if err := ctx.Err(); err != nil {
			return err
		}
		prefs := types.DefaultPreferences()
		prefs.Sex = sex
		if gaps := sel.Gaps(coverageMin, coverageMax, clearDay, prefs); len(gaps) > 0 {
			return fmt.Errorf("%d coverage gaps for %s, first: %s at %d°F",
				len(gaps), sex.Label(), gaps[0].Slot, gaps[0].Temperature)
		}
	}
	return nil
}
