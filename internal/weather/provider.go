package weather

import (
	"context"
	"time"
)

// Client fetches weather data for a city or coordinates from an upstream API.
// Implementations perform no retries and keep no per-call state.
type Client interface {
	// FetchCurrentWeather returns a snapshot with current conditions and the
	// hourly/daily forecast projections. It issues the forecast request after
	// the current-weather request completes; either failure fails the call.
	FetchCurrentWeather(ctx context.Context, city string) (WeatherSnapshot, error)
	FetchForecast(ctx context.Context, city string) (ForecastResult, error)
	FetchUVIndex(ctx context.Context, lat, lon float64) (float64, error)
	FetchAirQuality(ctx context.Context, lat, lon float64) (AirQuality, error)
}

// Store is the contract the in-memory and SQLite snapshot stores satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot WeatherSnapshot) error
	GetLatest(loc Location) (WeatherSnapshot, error)
	GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error)
}

// CityList is the ordered list of saved cities refreshed by the scheduler.
type CityList interface {
	List() []Location
	Add(loc Location) bool
	Remove(loc Location) bool
	Move(from, to int) error
}

// Geocoder resolves a city to coordinates for the UV and air quality endpoints.
type Geocoder interface {
	Geocode(ctx context.Context, loc Location) (Coordinates, error)
}
