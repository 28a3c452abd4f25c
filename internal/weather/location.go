package weather

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"outfitpicker/internal/types"
)

// DefaultCountry is used for postal-code lookups that do not name a country.
const DefaultCountry = "US"

// Location identifies where to fetch weather for: either coordinates or a
// postal code within a country. Build one with Coordinates or PostalCode.
type Location struct {
	Lat     float64
	Lon     float64
	Zip     string
	Country string

	hasCoords bool
}

// Coordinates returns a Location for a latitude/longitude pair in degrees.
func Coordinates(lat, lon float64) Location {
	return Location{Lat: lat, Lon: lon, hasCoords: true}
}

// PostalCode returns a Location for a postal code. An empty country falls
// back to DefaultCountry.
func PostalCode(zip, country string) Location {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		country = DefaultCountry
	}
	return Location{Zip: strings.TrimSpace(zip), Country: country}
}

// Validate checks coordinate ranges or that a postal code is present.
func (l Location) Validate() error {
	if l.hasCoords {
		if !inRange(l.Lat, 90) || !inRange(l.Lon, 180) {
			return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidLocation,
				"coordinates out of range", nil,
				map[string]any{"lat": l.Lat, "lon": l.Lon})
		}
		return nil
	}
	if l.Zip == "" {
		return types.NewAppError(types.ErrCodeValidationInvalidLocation, "location needs coordinates or a postal code", nil)
	}
	return nil
}

// inRange reports whether v is a finite number within [-limit, limit].
func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && math.Abs(v) <= limit
}

// query returns the OpenWeatherMap query parameters for l.
func (l Location) query() url.Values {
	q := url.Values{}
	if l.hasCoords {
		q.Set("lat", strconv.FormatFloat(l.Lat, 'f', -1, 64))
		q.Set("lon", strconv.FormatFloat(l.Lon, 'f', -1, 64))
		return q
	}
	q.Set("zip", l.Zip+","+l.Country)
	return q
}

func (l Location) String() string {
	if l.hasCoords {
		return fmt.Sprintf("%.4f,%.4f", l.Lat, l.Lon)
	}
	return l.Zip + "," + l.Country
}
