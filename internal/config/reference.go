package config

import "time"

// WeatherCodeDescriptions maps WMO weather codes to human-readable text.
var WeatherCodeDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snowfall",
	73: "Moderate snowfall",
	75: "Heavy snowfall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// DescribeWeatherCode returns the description for a WMO weather code, or an
// empty string for unknown codes.
func DescribeWeatherCode(code int) string {
	return WeatherCodeDescriptions[code]
}

// MonsoonNormals holds approximate historical normal rainfall in mm.
type MonsoonNormals struct {
	June      float64
	July      float64
	August    float64
	September float64
	Total     float64
}

// ForMonth returns the normal rainfall for the given month, or 0 outside the
// monsoon season.
func (n MonsoonNormals) ForMonth(m time.Month) float64 {
	switch m {
	case time.June:
		return n.June
	case time.July:
		return n.July
	case time.August:
		return n.August
	case time.September:
		return n.September
	default:
		return 0
	}
}

// MonsoonNormalRainfall maps city name to its monsoon rainfall normals.
var MonsoonNormalRainfall = map[string]MonsoonNormals{
	"Jaipur":  {June: 54.0, July: 193.0, August: 182.0, September: 90.0, Total: 519.0},
	"Jodhpur": {June: 26.0, July: 103.0, August: 114.0, September: 48.0, Total: 291.0},
	"Udaipur": {June: 67.0, July: 228.0, August: 221.0, September: 108.0, Total: 624.0},
	"Bikaner": {June: 15.0, July: 72.0, August: 78.0, September: 30.0, Total: 195.0},
	"Ajmer":   {June: 43.0, July: 163.0, August: 154.0, September: 68.0, Total: 428.0},
	"Kota":    {June: 52.0, July: 215.0, August: 198.0, September: 102.0, Total: 567.0},
}
