package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrNoGeocoder is returned when a city lookup is requested without a configured geocoder.
var ErrNoGeocoder = errors.New("geocoder not configured")

// Service sits between callers (HTTP API, scheduler) and the weather client.
// It records fetched snapshots in the store and owns the saved-city list.
type Service struct {
	client   Client
	store    Store
	cities   CityList
	geocoder Geocoder
}

// NewService creates a new Service. geocoder may be nil.
func NewService(client Client, store Store, cities CityList, geocoder Geocoder) *Service {
	return &Service{
		client:   client,
		store:    store,
		cities:   cities,
		geocoder: geocoder,
	}
}

// Current fetches a fresh snapshot for loc and records it in the store.
// A store failure is logged; the fetched snapshot is still returned.
func (s *Service) Current(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	snapshot, err := s.client.FetchCurrentWeather(ctx, loc.Query())
	if err != nil {
		return WeatherSnapshot{}, fmt.Errorf("fetch current weather for %s: %w", loc.Key(), err)
	}
	snapshot.Location = loc

	if err := s.store.SaveSnapshot(loc, snapshot); err != nil {
		log.Printf("ERROR: saving snapshot for %s: %v", loc.Key(), err)
	}
	return snapshot, nil
}

// FetchAndStore refreshes the stored snapshot for loc.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	log.Printf("DEBUG: FetchAndStore called for %s", loc.Key())

	snapshot, err := s.client.FetchCurrentWeather(ctx, loc.Query())
	if err != nil {
		return fmt.Errorf("fetch current weather for %s: %w", loc.Key(), err)
	}
	snapshot.Location = loc
	return s.store.SaveSnapshot(loc, snapshot)
}

// Forecast fetches the hourly and daily projections for loc.
func (s *Service) Forecast(ctx context.Context, loc Location) (ForecastResult, error) {
	res, err := s.client.FetchForecast(ctx, loc.Query())
	if err != nil {
		return ForecastResult{}, fmt.Errorf("fetch forecast for %s: %w", loc.Key(), err)
	}
	return res, nil
}

// UVIndex fetches the UV index at coords.
func (s *Service) UVIndex(ctx context.Context, coords Coordinates) (float64, error) {
	return s.client.FetchUVIndex(ctx, coords.Lat, coords.Lon)
}

// AirQuality fetches air pollution data at coords.
func (s *Service) AirQuality(ctx context.Context, coords Coordinates) (AirQuality, error) {
	return s.client.FetchAirQuality(ctx, coords.Lat, coords.Lon)
}

// Resolve geocodes loc.
func (s *Service) Resolve(ctx context.Context, loc Location) (Coordinates, error) {
	if s.geocoder == nil {
		return Coordinates{}, ErrNoGeocoder
	}
	coords, err := s.geocoder.Geocode(ctx, loc)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocode %s: %w", loc.Key(), err)
	}
	return coords, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (WeatherSnapshot, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return s.store.GetRange(loc, from, to)
}

// Cities returns the saved cities in display order.
func (s *Service) Cities() []Location {
	return s.cities.List()
}

// AddCity appends loc to the saved cities unless it is already present.
func (s *Service) AddCity(loc Location) bool {
	added := s.cities.Add(loc)
	if added {
		log.Printf("INFO: saved city %s", loc.Key())
	}
	return added
}

// RemoveCity drops loc from the saved cities.
func (s *Service) RemoveCity(loc Location) bool {
	return s.cities.Remove(loc)
}

// MoveCity moves the saved city at index from to index to.
func (s *Service) MoveCity(from, to int) error {
	return s.cities.Move(from, to)
}
