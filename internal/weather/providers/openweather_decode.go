package providers

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-snapshot/internal/weather"
)

const (
	endpointCurrent      = "current weather"
	endpointForecast     = "forecast"
	endpointUVIndex      = "uv index"
	endpointAirPollution = "air pollution"
)

// threeHourKey is the key OpenWeatherMap uses for 3-hour precipitation totals.
const threeHourKey = "3h"

var validate = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CurrentConditions is the decoded current-weather payload, before the
// forecast projections are merged in.
type CurrentConditions struct {
	Temperature   float64
	High          float64
	Low           float64
	Humidity      float64
	Pressure      float64
	FeelsLike     float64
	WindSpeed     float64
	WindDirection string
	Description   string
	LocationName  string
	VisibilityKm  float64
	Sunrise       time.Time
	Sunset        time.Time
	CloudCover    *int
	Precipitation *float64
}

type owDescription struct {
	Description *string `json:"description" validate:"required"`
}

type owWind struct {
	Speed *float64 `json:"speed" validate:"required"`
	Deg   *float64 `json:"deg" validate:"required"`
}

// owClouds is optional throughout; an object without "all" means no cloud cover.
type owClouds struct {
	All *int `json:"all"`
}

type currentPayload struct {
	Main *struct {
		Temp      *float64 `json:"temp" validate:"required"`
		TempMax   *float64 `json:"temp_max" validate:"required"`
		TempMin   *float64 `json:"temp_min" validate:"required"`
		Humidity  *float64 `json:"humidity" validate:"required"`
		Pressure  *float64 `json:"pressure" validate:"required"`
		FeelsLike *float64 `json:"feels_like" validate:"required"`
	} `json:"main" validate:"required"`
	Wind       *owWind         `json:"wind" validate:"required"`
	Weather    []owDescription `json:"weather" validate:"required,dive"`
	Visibility *float64        `json:"visibility" validate:"required"`
	Name       *string         `json:"name" validate:"required"`
	Sys        *struct {
		Sunrise *int64 `json:"sunrise" validate:"required"`
		Sunset  *int64 `json:"sunset" validate:"required"`
	} `json:"sys" validate:"required"`
	Clouds *owClouds          `json:"clouds"`
	Rain   map[string]float64 `json:"rain"`
	Snow   map[string]float64 `json:"snow"`
}

// DecodeCurrentWeather decodes a current-weather response.
// Precipitation is the rain "3h" value if present, otherwise the snow "3h"
// value if present, otherwise nil. The two are never summed.
func DecodeCurrentWeather(data []byte) (CurrentConditions, error) {
	var p currentPayload
	if err := decodePayload(data, &p, endpointCurrent); err != nil {
		return CurrentConditions{}, err
	}

	out := CurrentConditions{
		Temperature:   *p.Main.Temp,
		High:          *p.Main.TempMax,
		Low:           *p.Main.TempMin,
		Humidity:      *p.Main.Humidity,
		Pressure:      *p.Main.Pressure,
		FeelsLike:     *p.Main.FeelsLike,
		WindSpeed:     *p.Wind.Speed,
		WindDirection: weather.CardinalDirection(*p.Wind.Deg),
		Description:   firstDescription(p.Weather),
		LocationName:  *p.Name,
		VisibilityKm:  *p.Visibility / 1000,
		Sunrise:       time.Unix(*p.Sys.Sunrise, 0).UTC(),
		Sunset:        time.Unix(*p.Sys.Sunset, 0).UTC(),
	}
	if p.Clouds != nil {
		out.CloudCover = p.Clouds.All
	}
	if v, ok := p.Rain[threeHourKey]; ok {
		out.Precipitation = &v
	} else if v, ok := p.Snow[threeHourKey]; ok {
		out.Precipitation = &v
	}
	return out, nil
}

type forecastPayload struct {
	List []struct {
		Dt   *int64 `json:"dt" validate:"required"`
		Main *struct {
			Temp     *float64 `json:"temp" validate:"required"`
			Pressure *float64 `json:"pressure" validate:"required"`
			Humidity *float64 `json:"humidity" validate:"required"`
		} `json:"main" validate:"required"`
		Weather []owDescription    `json:"weather" validate:"required,dive"`
		Wind    *owWind            `json:"wind" validate:"required"`
		Rain    map[string]float64 `json:"rain"`
		Snow    map[string]float64 `json:"snow"`
		Clouds  *owClouds          `json:"clouds"`
	} `json:"list" validate:"required,dive"`
}

// DecodeForecast decodes a 5-day/3-hour forecast response into samples,
// keeping the feed's order. Rain and snow "3h" values are kept separately;
// ForecastSample.Precipitation sums them.
func DecodeForecast(data []byte) ([]weather.ForecastSample, error) {
	var p forecastPayload
	if err := decodePayload(data, &p, endpointForecast); err != nil {
		return nil, err
	}

	samples := make([]weather.ForecastSample, 0, len(p.List))
	for _, item := range p.List {
		s := weather.ForecastSample{
			Timestamp:   time.Unix(*item.Dt, 0).UTC(),
			Temperature: *item.Main.Temp,
			Description: firstDescription(item.Weather),
			Pressure:    *item.Main.Pressure,
			Humidity:    *item.Main.Humidity,
			WindSpeed:   *item.Wind.Speed,
			WindDegrees: *item.Wind.Deg,
		}
		if v, ok := item.Rain[threeHourKey]; ok {
			s.Rain3h = &v
		}
		if v, ok := item.Snow[threeHourKey]; ok {
			s.Snow3h = &v
		}
		if item.Clouds != nil {
			s.CloudCover = item.Clouds.All
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// DecodeUVIndex decodes a UV index response.
func DecodeUVIndex(data []byte) (float64, error) {
	var p struct {
		Value *float64 `json:"value" validate:"required"`
	}
	if err := decodePayload(data, &p, endpointUVIndex); err != nil {
		return 0, err
	}
	return *p.Value, nil
}

type pollutionPayload struct {
	List []struct {
		Main *struct {
			AQI *int `json:"aqi" validate:"required"`
		} `json:"main" validate:"required"`
		Components *struct {
			CO   *float64 `json:"co" validate:"required"`
			NO2  *float64 `json:"no2" validate:"required"`
			SO2  *float64 `json:"so2" validate:"required"`
			O3   *float64 `json:"o3" validate:"required"`
			PM25 *float64 `json:"pm2_5" validate:"required"`
			PM10 *float64 `json:"pm10" validate:"required"`
		} `json:"components" validate:"required"`
	} `json:"list" validate:"required,dive"`
}

// DecodeAirPollution decodes the first record of an air pollution response.
// An empty list yields a zero reading labelled "Unknown".
func DecodeAirPollution(data []byte) (weather.AirQuality, error) {
	var p pollutionPayload
	if err := decodePayload(data, &p, endpointAirPollution); err != nil {
		return weather.AirQuality{}, err
	}
	if len(p.List) == 0 {
		return weather.AirQuality{Label: weather.AQILabel(0)}, nil
	}

	rec := p.List[0]
	return weather.AirQuality{
		AQI:   *rec.Main.AQI,
		Label: weather.AQILabel(*rec.Main.AQI),
		CO:    *rec.Components.CO,
		NO2:   *rec.Components.NO2,
		SO2:   *rec.Components.SO2,
		O3:    *rec.Components.O3,
		PM25:  *rec.Components.PM25,
		PM10:  *rec.Components.PM10,
	}, nil
}

func decodePayload(data []byte, dst interface{}, endpoint string) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return &weather.DecodeError{Endpoint: endpoint, Err: err}
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &weather.DecodeError{
				Endpoint: endpoint,
				Err:      errors.New("missing required field " + verrs[0].Namespace()),
			}
		}
		return &weather.DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}

func firstDescription(items []owDescription) string {
	if len(items) == 0 {
		return ""
	}
	return *items[0].Description
}
