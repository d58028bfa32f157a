package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-snapshot/internal/weather"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	GeocoderAPIKey     string

	// HTTPTimeout bounds every outbound request.
	HTTPTimeout time.Duration

	// Optional outbound guards (0 / false = disabled).
	RateLimitRPS   float64
	RateLimitBurst int
	CircuitBreaker bool

	// TimeZone decides the calendar days of the daily forecast.
	TimeZone *time.Location

	// FetchInterval controls how often saved cities are refreshed.
	FetchInterval time.Duration

	// Locations seeds the saved-city list.
	Locations []weather.Location

	// Snapshot store.
	StoreDriver     string
	StoreSQLitePath string
	StoreMaxHistory int           // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		log.Println("WARN: OPENWEATHER_API_KEY is not set, weather requests will fail")
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	// Scheduler interval: default 15 minutes.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(getenvDefault("OPENWEATHER_RPS", "0"), 64)
	if err != nil || rps < 0 {
		return nil, fmt.Errorf("invalid OPENWEATHER_RPS: %q", os.Getenv("OPENWEATHER_RPS"))
	}
	cfg.RateLimitRPS = rps
	cfg.RateLimitBurst = getenvInt("OPENWEATHER_BURST", 1)
	cfg.CircuitBreaker = getenvBool("CIRCUIT_BREAKER_ENABLED", false)

	tz := getenvDefault("TIMEZONE", "Local")
	cfg.TimeZone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	// Store.
	cfg.StoreDriver = strings.ToLower(getenvDefault("STORE_DRIVER", StoreMemory))
	if cfg.StoreDriver != StoreMemory && cfg.StoreDriver != StoreSQLite {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", cfg.StoreDriver, StoreMemory, StoreSQLite)
	}
	cfg.StoreSQLitePath = getenvDefault("STORE_SQLITE_PATH", "weather.db")
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadSavedLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

// loadSavedLocations pairs WEATHER_LOCATION_CITY with WEATHER_LOCATION_COUNTRY.
// The country list may be omitted entirely.
func loadSavedLocations() ([]weather.Location, error) {
	city := strings.TrimSpace(os.Getenv("WEATHER_LOCATION_CITY"))
	if city == "" {
		return nil, nil
	}
	country := strings.TrimSpace(os.Getenv("WEATHER_LOCATION_COUNTRY"))

	cities := strings.Split(city, ",")
	var countries []string
	if country != "" {
		countries = strings.Split(country, ",")
		if len(cities) != len(countries) {
			return nil, fmt.Errorf("number of cities and countries must be the same")
		}
	}

	var locs []weather.Location
	for i := range cities {
		loc := weather.Location{City: strings.TrimSpace(cities[i])}
		if countries != nil {
			loc.Country = strings.TrimSpace(countries[i])
		}
		if loc.City == "" {
			continue
		}
		locs = append(locs, loc)
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
