package skill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"outfitpicker/internal/external"
	"outfitpicker/internal/types"
	"outfitpicker/internal/weather"
)

// ErrNoLocationPermission is wrapped when the user has not granted either
// location permission.
var ErrNoLocationPermission = errors.New("don't have required permissions to access location data")

// Locator resolves where the user is.
type Locator interface {
	Locate(ctx context.Context, req Request) (weather.Location, error)
}

// postalCodeResponse is the Device Address API countryAndPostalCode body.
type postalCodeResponse struct {
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
}

// DeviceLocator prefers device geolocation and falls back to the postal
// code registered for the device.
type DeviceLocator struct {
	client  *external.BaseClient
	timeout time.Duration
	logger  *slog.Logger
}

// NewDeviceLocator creates a DeviceLocator. timeout bounds the address
// lookup; zero means no extra bound beyond the caller's context.
func NewDeviceLocator(client *external.BaseClient, timeout time.Duration, logger *slog.Logger) *DeviceLocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeviceLocator{client: client, timeout: timeout, logger: logger}
}

// Locate returns device coordinates when present, otherwise the device's
// postal code. A 401/403 from the address API means consent is missing.
func (l *DeviceLocator) Locate(ctx context.Context, req Request) (weather.Location, error) {
	if geo := req.Context.Geolocation; geo != nil && geo.Coordinate != nil {
		l.logger.InfoContext(ctx, "location resolved", "source", "geolocation")
		return weather.Coordinates(geo.Coordinate.LatitudeInDegrees, geo.Coordinate.LongitudeInDegrees), nil
	}

	sys := req.Context.System
	switch {
	case sys.APIEndpoint == "":
		return weather.Location{}, types.NewAppError(types.ErrCodeValidationMissingField, "no apiEndpoint given", nil)
	case sys.APIAccessToken.IsEmpty():
		return weather.Location{}, types.NewAppError(types.ErrCodePermissionLocationDenied, "no access token given", ErrNoLocationPermission)
	case sys.Device == nil || sys.Device.DeviceID == "":
		return weather.Location{}, types.NewAppError(types.ErrCodeValidationMissingField, "no device given", nil)
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/v1/devices/%s/settings/address/countryAndPostalCode",
		strings.TrimSuffix(sys.APIEndpoint, "/"), url.PathEscape(sys.Device.DeviceID))
	header := http.Header{"Authorization": []string{"Bearer " + sys.APIAccessToken.Unmask()}}

	var body postalCodeResponse
	if err := l.client.GetJSON(ctx, endpoint, header, &body); err != nil {
		var statusErr *external.StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusForbidden || statusErr.StatusCode == http.StatusUnauthorized) {
			return weather.Location{}, types.NewAppError(types.ErrCodePermissionLocationDenied,
				"address permission not granted", errors.Join(ErrNoLocationPermission, err))
		}
		return weather.Location{}, types.NewAppError(types.ErrCodeUpstreamLocation, "device address lookup failed", err)
	}
	if body.PostalCode == "" {
		return weather.Location{}, types.NewAppError(types.ErrCodeNotFoundLocation, "device has no postal code set", nil)
	}

	l.logger.InfoContext(ctx, "location resolved", "source", "device_address")
	// The platform's country code is ISO 3166 alpha-2, which is what
	// OpenWeatherMap expects for zip lookups.
	return weather.PostalCode(body.PostalCode, body.CountryCode), nil
}
