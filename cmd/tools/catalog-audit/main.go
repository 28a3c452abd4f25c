// Package main implements the catalog-audit CLI tool, which checks the
// built-in garment catalog for temperature coverage holes.
//
// For every combination of weather, wind, time of day, sex and intensity
// it runs the selector across an effective temperature range and reports
// each temperature at which torso, legs or feet would come back empty.
//
// Usage:
//
//	go run ./cmd/tools/catalog-audit
//	go run ./cmd/tools/catalog-audit -from=-60 -to=130 -json
//	go run ./cmd/tools/catalog-audit -list
//
// The exit status is 1 when any gap is found.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"outfitpicker/internal/picker"
	"outfitpicker/internal/types"
)

// errGapsFound signals a completed audit that found gaps.
var errGapsFound = errors.New("catalog has coverage gaps")

// Finding groups the gaps of one conditions/preferences combination.
type Finding struct {
	Conditions  types.Conditions  `json:"conditions"`
	Preferences types.Preferences `json:"preferences"`
	Gaps        []picker.Gap      `json:"gaps"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("catalog-audit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	from := fs.Int("from", -50, "Lowest effective temperature to check (°F)")
	to := fs.Int("to", 120, "Highest effective temperature to check (°F)")
	list := fs.Bool("list", false, "Print the catalog and exit")
	asJSON := fs.Bool("json", false, "Print findings as JSON")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: catalog-audit [flags]\n\n")
		fmt.Fprintf(fs.Output(), "Check the garment catalog for effective temperatures with no outfit.\n\n")
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	catalog := picker.DefaultCatalog()
	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("catalog is malformed: %w", err)
	}

	if *list {
		printCatalog(stdout, catalog)
		return nil
	}

	if *from > *to {
		return fmt.Errorf("-from %d is above -to %d", *from, *to)
	}
	if *from < types.MinTemperature || *to > types.MaxTemperature {
		return fmt.Errorf("range must stay within %d..%d", types.MinTemperature, types.MaxTemperature)
	}

	findings := audit(picker.NewSelector(catalog), int16(*from), int16(*to))

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(findings); err != nil {
			return err
		}
	} else {
		printFindings(stdout, findings, *from, *to)
	}
	if len(findings) > 0 {
		return errGapsFound
	}
	return nil
}

// audit checks every enum combination. Findings are in enum declaration order.
func audit(sel *picker.Selector, from, to int16) []Finding {
	findings := []Finding{}
	for _, w := range types.AllWeather {
		for _, wind := range types.AllWind {
			for _, tod := range types.AllTimesOfDay {
				c := types.Conditions{Temperature: from, Weather: w, Wind: wind, Time: tod}
				for _, sex := range types.AllSexes {
					for _, in := range types.AllIntensities {
						p := types.Preferences{Sex: sex, Intensity: in, Feel: types.FeelAverage}
						if gaps := sel.Gaps(from, to, c, p); len(gaps) > 0 {
							findings = append(findings, Finding{Conditions: c, Preferences: p, Gaps: gaps})
						}
					}
				}
			}
		}
	}
	return findings
}

func printCatalog(w io.Writer, c picker.Catalog) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tGARMENT\tMIN\tMAX\tRULE")
	for _, s := range picker.AllSlots {
		for _, g := range c.Slot(s) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s, g.Name, boundString(g.Min), boundString(g.Max), g.Rule)
		}
	}
	tw.Flush()
}

func boundString(b *int16) string {
	if b == nil {
		return "-"
	}
	return strconv.Itoa(int(*b))
}

func printFindings(w io.Writer, findings []Finding, from, to int) {
	if len(findings) == 0 {
		fmt.Fprintf(w, "No gaps between %d°F and %d°F.\n", from, to)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WEATHER\tWIND\tTIME\tSEX\tINTENSITY\tSLOT\tTEMPERATURES")
	for _, f := range findings {
		for _, r := range collapse(f.Gaps) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				f.Conditions.Weather, f.Conditions.Wind, f.Conditions.Time,
				f.Preferences.Sex, f.Preferences.Intensity, r.slot, r)
		}
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d combinations with gaps.\n", len(findings))
}

// gapRange is a run of consecutive temperatures missing the same slot.
type gapRange struct {
	slot   picker.Slot
	lo, hi int16
}

func (r gapRange) String() string {
	if r.lo == r.hi {
		return strconv.Itoa(int(r.lo))
	}
	return fmt.Sprintf("%d..%d", r.lo, r.hi)
}

// collapse merges consecutive temperatures per slot, keeping first-seen
// slot order.
func collapse(gaps []picker.Gap) []gapRange {
	var order []picker.Slot
	open := make(map[picker.Slot][]gapRange)
	for _, g := range gaps {
		rs, seen := open[g.Slot]
		if !seen {
			order = append(order, g.Slot)
		}
		if n := len(rs); n > 0 && rs[n-1].hi+1 == g.Temperature {
			rs[n-1].hi = g.Temperature
		} else {
			rs = append(rs, gapRange{slot: g.Slot, lo: g.Temperature, hi: g.Temperature})
		}
		open[g.Slot] = rs
	}

	var out []gapRange
	for _, s := range order {
		out = append(out, open[s]...)
	}
	return out
}
