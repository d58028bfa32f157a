package providers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-snapshot/internal/common"
	"github.com/i474232898/weather-snapshot/internal/weather"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

var errMissingAPIKey = errors.New("openweather api key is not configured")

// OpenWeatherClient implements weather.Client for OpenWeatherMap.
// It performs no retries and caches nothing; the optional rate limiter and
// circuit breaker are the only state it carries.
type OpenWeatherClient struct {
	apiKey   string
	baseURL  string
	httpCfg  HTTPClientConfig
	location *time.Location
	now      func() time.Time
}

var _ weather.Client = (*OpenWeatherClient)(nil)

// Option configures an OpenWeatherClient.
type Option func(*OpenWeatherClient)

// WithBaseURL overrides the API root, e.g. for a proxy or a test server.
func WithBaseURL(baseURL string) Option {
	return func(p *OpenWeatherClient) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLocation sets the time zone whose calendar days bucket the daily forecast.
func WithLocation(loc *time.Location) Option {
	return func(p *OpenWeatherClient) {
		if loc != nil {
			p.location = loc
		}
	}
}

// WithClock replaces time.Now, which decides what "today" is.
func WithClock(now func() time.Time) Option {
	return func(p *OpenWeatherClient) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRateLimit caps outbound requests at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(p *OpenWeatherClient) {
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			p.httpCfg.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithCircuitBreaker makes requests fail fast after repeated upstream failures.
func WithCircuitBreaker() Option {
	return func(p *OpenWeatherClient) {
		p.httpCfg.Circuit = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:         "openweather",
			MaxRequests:  5,
			Interval:     1 * time.Minute,
			Timeout:      2 * time.Minute,
			IsSuccessful: breakerSuccess,
		})
	}
}

// breakerSuccess keeps caller mistakes such as an unknown city (4xx other
// than 429) from tripping the breaker.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se statusError
	if errors.As(err, &se) {
		return se.code >= 400 && se.code < 500 && se.code != http.StatusTooManyRequests
	}
	return false
}

// NewOpenWeatherClient creates a client using the shared HTTP client.
func NewOpenWeatherClient(client *http.Client, apiKey string, opts ...Option) *OpenWeatherClient {
	p := &OpenWeatherClient{
		apiKey:   apiKey,
		baseURL:  DefaultOpenWeatherBaseURL,
		httpCfg:  HTTPClientConfig{Client: client},
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchCurrentWeather fetches current conditions for city and then, once
// that request has completed, its forecast. A forecast failure fails the
// whole call. UVIndex and AirQuality are left empty.
func (p *OpenWeatherClient) FetchCurrentWeather(ctx context.Context, city string) (weather.WeatherSnapshot, error) {
	body, err := p.get(ctx, endpointCurrent, "/weather", "q", city, "units", "metric")
	if err != nil {
		return weather.WeatherSnapshot{}, err
	}

	cur, err := DecodeCurrentWeather(body)
	if err != nil {
		return weather.WeatherSnapshot{}, err
	}

	forecast, err := p.FetchForecast(ctx, city)
	if err != nil {
		return weather.WeatherSnapshot{}, err
	}

	return weather.WeatherSnapshot{
		ID:            uuid.NewString(),
		Location:      weather.Location{City: city},
		FetchedAt:     p.now().UTC(),
		Unit:          weather.Celsius,
		Temperature:   cur.Temperature,
		High:          cur.High,
		Low:           cur.Low,
		FeelsLike:     cur.FeelsLike,
		Humidity:      cur.Humidity,
		Pressure:      cur.Pressure,
		WindSpeed:     cur.WindSpeed,
		WindDirection: cur.WindDirection,
		Description:   cur.Description,
		LocationName:  cur.LocationName,
		VisibilityKm:  cur.VisibilityKm,
		Sunrise:       cur.Sunrise,
		Sunset:        cur.Sunset,
		CloudCover:    cur.CloudCover,
		Precipitation: cur.Precipitation,
		Hourly:        forecast.Hourly,
		Daily:         forecast.Daily,
	}, nil
}

// FetchForecast fetches the 5-day/3-hour forecast for city and projects it
// into hourly and daily entries.
func (p *OpenWeatherClient) FetchForecast(ctx context.Context, city string) (weather.ForecastResult, error) {
	body, err := p.get(ctx, endpointForecast, "/forecast", "q", city, "units", "metric")
	if err != nil {
		return weather.ForecastResult{}, err
	}

	samples, err := DecodeForecast(body)
	if err != nil {
		return weather.ForecastResult{}, err
	}
	return weather.Aggregate(samples, p.now(), p.location), nil
}

// FetchUVIndex fetches the UV index at the given coordinates.
func (p *OpenWeatherClient) FetchUVIndex(ctx context.Context, lat, lon float64) (float64, error) {
	body, err := p.get(ctx, endpointUVIndex, "/uvi", "lat", formatCoord(lat), "lon", formatCoord(lon))
	if err != nil {
		return 0, err
	}
	return DecodeUVIndex(body)
}

// FetchAirQuality fetches air pollution data at the given coordinates.
func (p *OpenWeatherClient) FetchAirQuality(ctx context.Context, lat, lon float64) (weather.AirQuality, error) {
	body, err := p.get(ctx, endpointAirPollution, "/air_pollution", "lat", formatCoord(lat), "lon", formatCoord(lon))
	if err != nil {
		return weather.AirQuality{}, err
	}
	return DecodeAirPollution(body)
}

// get issues a GET against path with the given query pairs and the API key appended.
func (p *OpenWeatherClient) get(ctx context.Context, endpoint, path string, query ...string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, &weather.NetworkError{Endpoint: endpoint, Err: errMissingAPIKey}
	}
	query = append(query, "appid", p.apiKey)
	u := p.baseURL + path + "?" + common.QueryString(query...)
	return doGet(ctx, p.httpCfg, endpoint, u)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
