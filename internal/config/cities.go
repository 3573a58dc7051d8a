package config

import "time"

// CityConfig describes a monitored city. This list seeds and cross-references
// the cities table; the table remains the source of truth for identity.
type CityConfig struct {
	Name       string
	Latitude   float64
	Longitude  float64
	ElevationM float64
}

// DefaultCities returns the Rajasthan cities monitored by default.
func DefaultCities() []CityConfig {
	return []CityConfig{
		{Name: "Jaipur", Latitude: 26.9124, Longitude: 75.7873, ElevationM: 431},
		{Name: "Jodhpur", Latitude: 26.2389, Longitude: 73.0243, ElevationM: 231},
		{Name: "Udaipur", Latitude: 24.5854, Longitude: 73.7125, ElevationM: 598},
		{Name: "Bikaner", Latitude: 28.0229, Longitude: 73.3119, ElevationM: 224},
		{Name: "Ajmer", Latitude: 26.4499, Longitude: 74.6399, ElevationM: 486},
		{Name: "Kota", Latitude: 25.2138, Longitude: 75.8648, ElevationM: 274},
	}
}

// Thresholds holds the alerting thresholds for the region.
type Thresholds struct {
	// HeatwaveTempC is the IMD heatwave threshold in °C.
	HeatwaveTempC float64

	// ExtremeHeatTempC marks a severe heatwave in °C.
	ExtremeHeatTempC float64

	// ColdWaveTempC is the regional cold wave threshold in °C.
	ColdWaveTempC float64

	// DustStormDust is the dust concentration threshold in µg/m³.
	DustStormDust float64

	// DustStormWind is the wind speed threshold in km/h for dust transport.
	DustStormWind float64

	// HeavyRainMM is the heavy rainfall threshold in mm/day.
	HeavyRainMM float64

	// VeryHeavyRainMM is the very heavy rainfall threshold in mm/day.
	VeryHeavyRainMM float64

	// PoorAQI, VeryPoorAQI and HazardousAQI are US AQI tier boundaries.
	PoorAQI      float64
	VeryPoorAQI  float64
	HazardousAQI float64

	// HighUVIndex is the very-high UV index threshold.
	HighUVIndex float64

	// FogVisibilityM is the fog visibility threshold in meters.
	FogVisibilityM float64

	// ThunderstormCodes are the WMO weather codes indicating thunderstorms.
	ThunderstormCodes []int
}

// DefaultThresholds returns the Rajasthan-specific alert thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HeatwaveTempC:     42.0,
		ExtremeHeatTempC:  45.0,
		ColdWaveTempC:     4.0,
		DustStormDust:     150.0,
		DustStormWind:     40.0,
		HeavyRainMM:       50.0,
		VeryHeavyRainMM:   100.0,
		PoorAQI:           101,
		VeryPoorAQI:       151,
		HazardousAQI:      301,
		HighUVIndex:       8.0,
		FogVisibilityM:    1000,
		ThunderstormCodes: []int{95, 96, 99},
	}
}

// Fetch and timing constants shared by the API client and orchestrator.
const (
	// MaxRetries is the total attempt budget for a single upstream request,
	// counting the first try.
	MaxRetries = 3

	// RequestTimeout is the per-request timeout for upstream API calls.
	RequestTimeout = 30 * time.Second

	// RetryBackoffMin and RetryBackoffMax bound the exponential backoff
	// between retry attempts.
	RetryBackoffMin = 2 * time.Second
	RetryBackoffMax = 10 * time.Second

	// ForecastDays is the forecast horizon requested from the upstream API.
	ForecastDays = 7

	// Timezone is the timezone requested for all upstream payloads.
	Timezone = "Asia/Kolkata"
)
