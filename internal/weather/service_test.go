package weather

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubClient struct {
	snapshot WeatherSnapshot
	err      error
	cities   []string
}

func (c *stubClient) FetchCurrentWeather(_ context.Context, city string) (WeatherSnapshot, error) {
	c.cities = append(c.cities, city)
	return c.snapshot, c.err
}

func (c *stubClient) FetchForecast(_ context.Context, city string) (ForecastResult, error) {
	c.cities = append(c.cities, city)
	return ForecastResult{Hourly: c.snapshot.Hourly, Daily: c.snapshot.Daily}, c.err
}

func (c *stubClient) FetchUVIndex(context.Context, float64, float64) (float64, error) {
	return 4, c.err
}

func (c *stubClient) FetchAirQuality(context.Context, float64, float64) (AirQuality, error) {
	return AirQuality{AQI: 2, Label: "Fair"}, c.err
}

type stubStore struct {
	saved []WeatherSnapshot
	err   error
}

func (s *stubStore) SaveSnapshot(_ Location, snap WeatherSnapshot) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, snap)
	return nil
}

func (s *stubStore) GetLatest(Location) (WeatherSnapshot, error) {
	if len(s.saved) == 0 {
		return WeatherSnapshot{}, errors.New("empty")
	}
	return s.saved[len(s.saved)-1], nil
}

func (s *stubStore) GetRange(Location, time.Time, time.Time) ([]WeatherSnapshot, error) {
	return s.saved, nil
}

type stubCities struct{ list []Location }

func (c *stubCities) List() []Location { return c.list }
func (c *stubCities) Add(loc Location) bool {
	c.list = append(c.list, loc)
	return true
}
func (c *stubCities) Remove(Location) bool { return false }
func (c *stubCities) Move(int, int) error  { return nil }

type stubGeocoder struct{}

func (stubGeocoder) Geocode(context.Context, Location) (Coordinates, error) {
	return Coordinates{Lat: 1, Lon: 2}, nil
}

func TestServiceCurrentStoresSnapshot(t *testing.T) {
	client := &stubClient{snapshot: WeatherSnapshot{ID: "s1", Temperature: 20}}
	store := &stubStore{}
	svc := NewService(client, store, &stubCities{}, nil)

	loc := Location{City: "Paris", Country: "FR"}
	snap, err := svc.Current(context.Background(), loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Location != loc {
		t.Fatalf("expected location %+v, got %+v", loc, snap.Location)
	}
	if len(client.cities) != 1 || client.cities[0] != "Paris,FR" {
		t.Fatalf("unexpected client queries %v", client.cities)
	}
	if len(store.saved) != 1 || store.saved[0].ID != "s1" {
		t.Fatalf("expected snapshot to be stored, got %+v", store.saved)
	}
}

func TestServiceCurrentKeepsErrorKind(t *testing.T) {
	client := &stubClient{err: &NetworkError{Endpoint: "forecast", StatusCode: 500}}
	store := &stubStore{}
	svc := NewService(client, store, &stubCities{}, nil)

	_, err := svc.Current(context.Background(), Location{City: "Paris"})
	if !IsNetworkError(err) || StatusCode(err) != 500 {
		t.Fatalf("expected wrapped NetworkError, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Fatal("failed fetch must not be stored")
	}
}

func TestServiceCurrentToleratesStoreFailure(t *testing.T) {
	client := &stubClient{snapshot: WeatherSnapshot{ID: "s1"}}
	svc := NewService(client, &stubStore{err: errors.New("disk full")}, &stubCities{}, nil)

	if _, err := svc.Current(context.Background(), Location{City: "Paris"}); err != nil {
		t.Fatalf("expected snapshot despite store failure, got %v", err)
	}
}

func TestServiceFetchAndStoreReportsStoreFailure(t *testing.T) {
	client := &stubClient{snapshot: WeatherSnapshot{ID: "s1"}}
	svc := NewService(client, &stubStore{err: errors.New("disk full")}, &stubCities{}, nil)

	if err := svc.FetchAndStore(context.Background(), Location{City: "Paris"}); err == nil {
		t.Fatal("expected store error")
	}
}

func TestServiceResolve(t *testing.T) {
	svc := NewService(&stubClient{}, &stubStore{}, &stubCities{}, nil)
	if _, err := svc.Resolve(context.Background(), Location{City: "Paris"}); !errors.Is(err, ErrNoGeocoder) {
		t.Fatalf("expected ErrNoGeocoder, got %v", err)
	}

	svc = NewService(&stubClient{}, &stubStore{}, &stubCities{}, stubGeocoder{})
	coords, err := svc.Resolve(context.Background(), Location{City: "Paris"})
	if err != nil || coords != (Coordinates{Lat: 1, Lon: 2}) {
		t.Fatalf("unexpected coords %+v (%v)", coords, err)
	}

	uv, err := svc.UVIndex(context.Background(), coords)
	if err != nil || uv != 4 {
		t.Fatalf("unexpected uv %v (%v)", uv, err)
	}
	aq, err := svc.AirQuality(context.Background(), coords)
	if err != nil || aq.Label != "Fair" {
		t.Fatalf("unexpected air quality %+v (%v)", aq, err)
	}
}

func TestServiceCities(t *testing.T) {
	cities := &stubCities{}
	svc := NewService(&stubClient{}, &stubStore{}, cities, nil)

	svc.AddCity(Location{City: "Oslo"})
	if got := svc.Cities(); len(got) != 1 || got[0].City != "Oslo" {
		t.Fatalf("unexpected cities %+v", got)
	}
}
