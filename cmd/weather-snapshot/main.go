package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	flag "github.com/spf13/pflag"

	httpapi "github.com/i474232898/weather-snapshot/internal/api/http"
	"github.com/i474232898/weather-snapshot/internal/config"
	"github.com/i474232898/weather-snapshot/internal/geo"
	"github.com/i474232898/weather-snapshot/internal/scheduler"
	"github.com/i474232898/weather-snapshot/internal/store"
	"github.com/i474232898/weather-snapshot/internal/weather"
	"github.com/i474232898/weather-snapshot/internal/weather/providers"
)

func main() {
	var once = flag.Bool("once", false, "refresh every saved city once and exit instead of serving")
	var port = flag.StringP("port", "p", "", "listen port, overrides PORT")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	opts := []providers.Option{
		providers.WithBaseURL(cfg.OpenWeatherBaseURL),
		providers.WithLocation(cfg.TimeZone),
	}
	if cfg.RateLimitRPS > 0 {
		opts = append(opts, providers.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	if cfg.CircuitBreaker {
		opts = append(opts, providers.WithCircuitBreaker())
	}
	client := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey, opts...)

	snapshots, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer closeStore()

	cities := store.NewCityList(cfg.Locations)

	// City lookup for the uv and air quality routes needs a Google API key.
	var geocoder weather.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geocoder = geo.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	} else {
		log.Println("INFO: GEOCODER_API_KEY not set, city lookup by name is disabled")
	}

	service := weather.NewService(client, snapshots, cities, geocoder)

	// Scheduler that periodically refreshes saved cities.
	sched := scheduler.New(cfg.FetchInterval, service)
	if *once {
		sched.RunOnce()
		return
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-snapshot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Current weather makes two sequential upstream calls.
		WriteTimeout: 2*cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-snapshot",
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// openStore builds the snapshot store selected by STORE_DRIVER.
func openStore(cfg *config.AppConfig) (weather.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		s, err := store.NewSQLiteStore(cfg.StoreSQLitePath, cfg.StoreMaxHistory, cfg.StoreMaxAge)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("INFO: using sqlite snapshot store at %s", cfg.StoreSQLitePath)
		return s, func() {
			if err := s.Close(); err != nil {
				log.Printf("ERROR: closing sqlite store: %v", err)
			}
		}, nil
	default:
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge), func() {}, nil
	}
}
