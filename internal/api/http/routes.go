package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-snapshot/internal/store"
	"github.com/i474232898/weather-snapshot/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.Current(c.UserContext(), q.Location.toLocation())
		if err != nil {
			return upstreamError(err, "failed to fetch weather data")
		}

		return c.JSON(snapshot.InUnit(q.unit))
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		forecast, err := service.Forecast(c.UserContext(), q.Location.toLocation())
		if err != nil {
			return upstreamError(err, "failed to fetch forecast")
		}

		converted := forecast.InUnit(q.unit)
		return c.JSON(fiber.Map{
			"location": q.Location.toLocation(),
			"unit":     q.unit,
			"hourly":   converted.Hourly,
			"daily":    converted.Daily,
		})
	})

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.GetLatest(q.Location.toLocation())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather data")
		}

		return c.JSON(snapshot.InUnit(q.unit))
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.Location.toLocation()
		snapshots, err := service.GetRange(loc, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather history")
		}

		return c.JSON(fiber.Map{
			"location":  loc,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	v1.Get("/uv", func(c *fiber.Ctx) error {
		coords, err := resolveCoordinates(c, service)
		if err != nil {
			return err
		}

		uv, err := service.UVIndex(c.UserContext(), coords)
		if err != nil {
			return upstreamError(err, "failed to fetch uv index")
		}

		return c.JSON(fiber.Map{
			"lat":     coords.Lat,
			"lon":     coords.Lon,
			"uvIndex": uv,
		})
	})

	v1.Get("/air-quality", func(c *fiber.Ctx) error {
		coords, err := resolveCoordinates(c, service)
		if err != nil {
			return err
		}

		aq, err := service.AirQuality(c.UserContext(), coords)
		if err != nil {
			return upstreamError(err, "failed to fetch air quality")
		}

		return c.JSON(fiber.Map{
			"lat":        coords.Lat,
			"lon":        coords.Lon,
			"airQuality": aq,
		})
	})

	registerCityRoutes(v1, service)
}

func registerCityRoutes(r fiber.Router, service *weather.Service) {
	r.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"cities": service.Cities()})
	})

	r.Post("/cities", func(c *fiber.Ctx) error {
		var body locationQuery
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if !service.AddCity(body.toLocation()) {
			return fiber.NewError(fiber.StatusConflict, "city is already saved")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"cities": service.Cities()})
	})

	r.Delete("/cities", func(c *fiber.Ctx) error {
		loc, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if !service.RemoveCity(loc.toLocation()) {
			return fiber.NewError(fiber.StatusNotFound, "city is not saved")
		}
		return c.JSON(fiber.Map{"cities": service.Cities()})
	})

	r.Post("/cities/move", func(c *fiber.Ctx) error {
		var body moveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := service.MoveCity(*body.From, *body.To); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"cities": service.Cities()})
	})
}

// ErrorHandler renders every handler error as a JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// upstreamError maps client errors onto HTTP statuses.
func upstreamError(err error, msg string) error {
	switch {
	case weather.StatusCode(err) == http.StatusNotFound:
		return fiber.NewError(fiber.StatusNotFound, "city not found")
	case weather.IsNetworkError(err), weather.IsDecodeError(err):
		return fiber.NewError(fiber.StatusBadGateway, msg)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, msg)
	}
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `json:"city" validate:"required"`
	Country string `json:"country"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = c.Query("city")
	q.Country = c.Query("country")

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// weatherQuery is a location plus the temperature unit to answer in.
type weatherQuery struct {
	Location locationQuery
	unit     weather.TemperatureUnit
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return weatherQuery{}, err
	}
	unit, err := weather.ParseTemperatureUnit(c.Query("units"))
	if err != nil {
		return weatherQuery{}, err
	}
	return weatherQuery{Location: loc, unit: unit}, nil
}

// coordinateQuery holds explicit coordinates for the uv and air quality routes.
type coordinateQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

// resolveCoordinates reads lat/lon, or geocodes city/country when they are absent.
func resolveCoordinates(c *fiber.Ctx, service *weather.Service) (weather.Coordinates, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		loc, err := parseLocationQuery(c)
		if err != nil {
			return weather.Coordinates{}, fiber.NewError(fiber.StatusBadRequest, "lat and lon, or city, are required")
		}
		coords, err := service.Resolve(c.UserContext(), loc.toLocation())
		if err != nil {
			if errors.Is(err, weather.ErrNoGeocoder) {
				return weather.Coordinates{}, fiber.NewError(fiber.StatusBadRequest, "city lookup is not available; pass lat and lon")
			}
			return weather.Coordinates{}, fiber.NewError(fiber.StatusBadGateway, "failed to resolve city")
		}
		return coords, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return weather.Coordinates{}, fiber.NewError(fiber.StatusBadRequest, "invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return weather.Coordinates{}, fiber.NewError(fiber.StatusBadRequest, "invalid lon")
	}

	q := coordinateQuery{Lat: lat, Lon: lon}
	if err := validate.Struct(q); err != nil {
		return weather.Coordinates{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return weather.Coordinates{Lat: q.Lat, Lon: q.Lon}, nil
}

type moveRequest struct {
	From *int `json:"from" validate:"required,gte=0"`
	To   *int `json:"to" validate:"required,gte=0"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
