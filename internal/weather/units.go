package weather

import (
	"fmt"
	"math"
	"strings"
)

// TemperatureUnit is the unit temperatures are expressed in.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "celsius"
	Fahrenheit TemperatureUnit = "fahrenheit"
)

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CardinalDirection maps a compass bearing to one of eight 45° sectors
// centred on the compass points. Bearings outside [0,360) are wrapped first.
func CardinalDirection(degrees float64) string {
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	return compassPoints[int((degrees+22.5)/45)%8]
}

// ConvertTemperature converts a Celsius value into unit. No rounding is applied.
func ConvertTemperature(celsius float64, unit TemperatureUnit) float64 {
	if unit == Fahrenheit {
		return celsius*9/5 + 32
	}
	return celsius
}

// Symbol returns the display suffix for the unit.
func (u TemperatureUnit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// ParseTemperatureUnit accepts the common spellings of both units.
// An empty string means Celsius.
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "c", "celsius", "metric":
		return Celsius, nil
	case "f", "fahrenheit", "imperial":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", s)
	}
}
