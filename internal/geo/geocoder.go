// Package geo resolves city names to coordinates for the coordinate-based
// OpenWeatherMap endpoints (UV index, air pollution).
package geo

import (
	"context"
	"errors"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-snapshot/internal/weather"
)

var errNoAPIKey = errors.New("geocoder api key is not configured")

// geocodeFunc matches geocoder.Geocoding.
type geocodeFunc func(geocoder.Address) (geocoder.Location, error)

// GoogleGeocoder implements weather.Geocoder on top of the Google Geocoding
// API via kelvins/geocoder.
type GoogleGeocoder struct {
	apiKey  string
	geocode geocodeFunc
}

var _ weather.Geocoder = (*GoogleGeocoder)(nil)

// The geocoder package reads its key from a package-level variable.
var apiKeyMu sync.Mutex

// NewGoogleGeocoder creates a geocoder using apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey, geocode: geocoder.Geocoding}
}

// Geocode resolves loc. The underlying library does not take a context, so
// ctx is only checked before the lookup starts.
func (g *GoogleGeocoder) Geocode(ctx context.Context, loc weather.Location) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, errNoAPIKey
	}
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}

	apiKeyMu.Lock()
	geocoder.ApiKey = g.apiKey
	res, err := g.geocode(geocoder.Address{City: loc.City, Country: loc.Country})
	apiKeyMu.Unlock()
	if err != nil {
		return weather.Coordinates{}, err
	}

	return weather.Coordinates{Lat: res.Latitude, Lon: res.Longitude}, nil
}
