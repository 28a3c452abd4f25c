package skill

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outfitpicker/internal/external"
	"outfitpicker/internal/types"
	"outfitpicker/internal/weather"
)

func newTestLocator(t *testing.T, handler http.HandlerFunc) (*DeviceLocator, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := external.NewBaseClient(srv.Client(), "device-api-test", external.RetryPolicy{}, "outfitpicker-test")
	return NewDeviceLocator(client, time.Second, nil), srv.URL
}

func addressRequest(endpoint string) Request {
	return Request{Context: Context{System: System{
		APIEndpoint:    endpoint,
		APIAccessToken: "device-token",
		Device:         &Device{DeviceID: "amzn1.ask.device.ABC"},
	}}}
}

func TestLocate_PrefersGeolocation(t *testing.T) {
	called := false
	locator, endpoint := newTestLocator(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := addressRequest(endpoint)
	req.Context.Geolocation = &Geolocation{Coordinate: &Coordinate{LatitudeInDegrees: 42.39, LongitudeInDegrees: -71.1}}

	loc, err := locator.Locate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, weather.Coordinates(42.39, -71.1), loc)
	assert.False(t, called)
}

func TestLocate_DeviceAddress(t *testing.T) {
	locator, endpoint := newTestLocator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/devices/amzn1.ask.device.ABC/settings/address/countryAndPostalCode", r.URL.Path)
		assert.Equal(t, "Bearer device-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"countryCode":"US","postalCode":"02144"}`))
	})

	loc, err := locator.Locate(context.Background(), addressRequest(endpoint))
	require.NoError(t, err)
	assert.Equal(t, weather.PostalCode("02144", "US"), loc)
}

func TestLocate_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		code       types.ErrorCode
		permission bool
	}{
		{"forbidden", http.StatusForbidden, "", types.ErrCodePermissionLocationDenied, true},
		{"unauthorized", http.StatusUnauthorized, "", types.ErrCodePermissionLocationDenied, true},
		{"outage", http.StatusInternalServerError, "", types.ErrCodeUpstreamLocation, false},
		{"no postal code", http.StatusOK, `{"countryCode":"US","postalCode":""}`, types.ErrCodeNotFoundLocation, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locator, endpoint := newTestLocator(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := locator.Locate(context.Background(), addressRequest(endpoint))
			var appErr *types.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.permission, errors.Is(err, ErrNoLocationPermission))
		})
	}
}

func TestLocate_MissingSystemFields(t *testing.T) {
	locator, endpoint := newTestLocator(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("address API must not be called")
	})

	req := addressRequest("")
	_, err := locator.Locate(context.Background(), req)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationMissingField, appErr.Code)

	req = addressRequest(endpoint)
	req.Context.System.APIAccessToken = ""
	_, err = locator.Locate(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoLocationPermission)

	req = addressRequest(endpoint)
	req.Context.System.Device = nil
	_, err = locator.Locate(context.Background(), req)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationMissingField, appErr.Code)
}

func TestIntentResolvedID(t *testing.T) {
	var nilIntent *Intent
	assert.Empty(t, nilIntent.ResolvedID("sex"))
	assert.Empty(t, (&Intent{Slots: map[string]Slot{"sex": {Name: "sex"}}}).ResolvedID("sex"))
	assert.Equal(t, "female", (&Intent{Slots: sexSlot("female")}).ResolvedID("sex"))
}
