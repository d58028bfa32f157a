package weather

import (
	"time"
)

// Location identifies a city we fetch weather for.
// City must be provided; Country is optional.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// Query returns the value sent as the provider's city query ("City" or "City,Country").
func (l Location) Query() string {
	if l.Country == "" {
		return l.City
	}
	return l.City + "," + l.Country
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WeatherSnapshot is the unified weather view for one location at fetch time.
// Hourly and Daily are either both populated or both empty.
type WeatherSnapshot struct {
	ID        string    `json:"id"`
	Location  Location  `json:"location"`
	FetchedAt time.Time `json:"fetchedAt"` // always UTC

	Unit          TemperatureUnit `json:"unit"`
	Temperature   float64         `json:"temperature"`
	High          float64         `json:"high"`
	Low           float64         `json:"low"`
	FeelsLike     float64         `json:"feelsLike"`
	Humidity      float64         `json:"humidityPercent"`
	Pressure      float64         `json:"pressureHpa"`
	WindSpeed     float64         `json:"windSpeed"`
	WindDirection string          `json:"windDirection"`
	Description   string          `json:"description"`
	LocationName  string          `json:"locationName"`
	VisibilityKm  float64         `json:"visibilityKm"`
	Sunrise       time.Time       `json:"sunrise"`
	Sunset        time.Time       `json:"sunset"`

	// UVIndex and AirQuality are not populated by FetchCurrentWeather; use the
	// dedicated client calls for them.
	UVIndex    float64 `json:"uvIndex"`
	AirQuality string  `json:"airQuality"`

	CloudCover    *int     `json:"cloudCoverPercent,omitempty"`
	Precipitation *float64 `json:"precipMm,omitempty"`

	Hourly []HourlyEntry `json:"hourly"`
	Daily  []DayEntry    `json:"daily"`
}

// HourlyEntry is one forecast sample projected for the hourly view.
type HourlyEntry struct {
	Time          time.Time `json:"time"`
	Temperature   float64   `json:"temperature"`
	Description   string    `json:"description"`
	Precipitation *float64  `json:"precipMm,omitempty"`
	CloudCover    *int      `json:"cloudCoverPercent,omitempty"`
}

// DayEntry summarizes one calendar day using its representative sample.
type DayEntry struct {
	Date          time.Time `json:"date"` // local midnight
	Temperature   float64   `json:"temperature"`
	Description   string    `json:"description"`
	Pressure      float64   `json:"pressureHpa"`
	Humidity      float64   `json:"humidityPercent"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection string    `json:"windDirection"`
	Precipitation *float64  `json:"precipMm,omitempty"`
	CloudCover    *int      `json:"cloudCoverPercent,omitempty"`
}

// ForecastResult holds the hourly and daily projections of a forecast feed.
type ForecastResult struct {
	Hourly []HourlyEntry `json:"hourly"`
	Daily  []DayEntry    `json:"daily"`
}

// AirQuality is the first record of an air pollution response.
type AirQuality struct {
	AQI   int     `json:"aqi"`
	Label string  `json:"label"`
	CO    float64 `json:"co"`
	NO2   float64 `json:"no2"`
	SO2   float64 `json:"so2"`
	O3    float64 `json:"o3"`
	PM25  float64 `json:"pm2_5"`
	PM10  float64 `json:"pm10"`
}

// AQILabel maps an air quality index (1-5) to its label.
func AQILabel(aqi int) string {
	switch aqi {
	case 1:
		return "Good"
	case 2:
		return "Fair"
	case 3:
		return "Moderate"
	case 4:
		return "Poor"
	case 5:
		return "Very Poor"
	default:
		return "Unknown"
	}
}

// ForecastSample is a single 3-hour entry of the forecast feed, as decoded.
type ForecastSample struct {
	Timestamp   time.Time
	Temperature float64
	Description string
	Pressure    float64
	Humidity    float64
	WindSpeed   float64
	WindDegrees float64

	// Rain3h and Snow3h are the "3h" accumulations, nil when absent.
	Rain3h     *float64
	Snow3h     *float64
	CloudCover *int
}

// Precipitation is the sum of rain and snow, treating absent values as zero.
func (s ForecastSample) Precipitation() float64 {
	var total float64
	if s.Rain3h != nil {
		total += *s.Rain3h
	}
	if s.Snow3h != nil {
		total += *s.Snow3h
	}
	return total
}

// InUnit returns a deep copy of the snapshot with every temperature expressed in unit.
// The receiver must be in Celsius, which is what the client produces.
func (s WeatherSnapshot) InUnit(unit TemperatureUnit) WeatherSnapshot {
	if unit == "" || unit == Celsius {
		return s.clone()
	}
	out := s.clone()
	out.Unit = unit
	out.Temperature = ConvertTemperature(s.Temperature, unit)
	out.High = ConvertTemperature(s.High, unit)
	out.Low = ConvertTemperature(s.Low, unit)
	out.FeelsLike = ConvertTemperature(s.FeelsLike, unit)
	forecast := ForecastResult{Hourly: out.Hourly, Daily: out.Daily}.InUnit(unit)
	out.Hourly, out.Daily = forecast.Hourly, forecast.Daily
	return out
}

// InUnit converts the temperatures of a Celsius forecast into unit.
func (f ForecastResult) InUnit(unit TemperatureUnit) ForecastResult {
	out := ForecastResult{}
	if f.Hourly != nil {
		out.Hourly = make([]HourlyEntry, len(f.Hourly))
		for i, h := range f.Hourly {
			h.Temperature = ConvertTemperature(h.Temperature, unit)
			out.Hourly[i] = h
		}
	}
	if f.Daily != nil {
		out.Daily = make([]DayEntry, len(f.Daily))
		for i, d := range f.Daily {
			d.Temperature = ConvertTemperature(d.Temperature, unit)
			out.Daily[i] = d
		}
	}
	return out
}

func (s WeatherSnapshot) clone() WeatherSnapshot {
	out := s
	if s.Hourly != nil {
		out.Hourly = append([]HourlyEntry(nil), s.Hourly...)
	}
	if s.Daily != nil {
		out.Daily = append([]DayEntry(nil), s.Daily...)
	}
	return out
}
