// Package pipeline implements the weather and air-quality ETL: transforming
// raw forecast payloads into per-hour and per-day records, deriving hazard
// alerts, and orchestrating the per-city run.
package pipeline

import (
	"errors"
	"time"
)

// Pipeline errors.
var (
	// ErrNoCities is returned when the cities table resolves to an empty
	// map; the run cannot proceed without schema setup.
	ErrNoCities = errors.New("no cities found in datastore, run schema setup first")
)

// City is a monitored city as resolved from the datastore.
type City struct {
	ID         string
	Name       string
	Latitude   float64
	Longitude  float64
	ElevationM float64
	IsActive   bool
}

// HourlyWeatherRecord is one hour of weather data for a city. Keyed by
// (CityID, RecordedAt, IsForecast). Pointer fields persist as NULL when the
// source payload had no value.
type HourlyWeatherRecord struct {
	CityID                   string
	RecordedAt               string
	Temperature2M            *float64
	ApparentTemperature      *float64
	RelativeHumidity2M       *float64
	Dewpoint2M               *float64
	Precipitation            float64
	PrecipitationProbability *float64
	Rain                     float64
	WindSpeed10M             *float64
	WindDirection10M         *float64
	WindGusts10M             *float64
	WeatherCode              *int
	CloudCover               *float64
	Visibility               *float64
	SurfacePressure          *float64
	UVIndex                  *float64
	IsForecast               bool
}

// AirQualityRecord is one hour of air-quality data for a city. Keyed by
// (CityID, RecordedAt).
type AirQualityRecord struct {
	CityID          string
	RecordedAt      string
	PM25            *float64
	PM10            *float64
	Dust            *float64
	CarbonMonoxide  *float64
	NitrogenDioxide *float64
	SulphurDioxide  *float64
	Ozone           *float64
	USAQI           *float64
	EuropeanAQI     *float64
	USAQIPM25       *float64
	USAQIPM10       *float64
}

// DailyAggregateRecord joins a day of weather extremes with same-day AQI
// summary statistics. Keyed by (CityID, Date); recomputed and fully replaced
// every run.
type DailyAggregateRecord struct {
	CityID                      string
	Date                        string
	TempMax                     *float64
	TempMin                     *float64
	TempMean                    *float64
	ApparentTempMax             *float64
	ApparentTempMin             *float64
	PrecipitationSum            float64
	PrecipitationHours          float64
	PrecipitationProbabilityMax *float64
	RainSum                     float64
	WindSpeedMax                *float64
	WindGustsMax                *float64
	WindDirectionDominant       *float64
	WeatherCode                 *int
	Sunrise                     *string
	Sunset                      *string
	UVIndexMax                  *float64
	AQIMean                     *float64
	AQIMax                      *float64
	PM25Mean                    *float64
	PM10Mean                    *float64
	DustMean                    *float64
	IsHeatwave                  bool
	IsDustStormRisk             bool
	IsHeavyRain                 bool
}

// AlertType identifies the hazard category of an alert.
type AlertType string

const (
	AlertHeatwave     AlertType = "heatwave"
	AlertDustStorm    AlertType = "dust_storm"
	AlertHeavyRain    AlertType = "heavy_rain"
	AlertHazardousAQI AlertType = "hazardous_aqi"
	AlertVeryPoorAQI  AlertType = "very_poor_aqi"
	AlertPoorAQI      AlertType = "poor_aqi"
	AlertHighUV       AlertType = "high_uv"
)

// Severity grades an alert.
type Severity string

const (
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityExtreme  Severity = "extreme"
)

// Alert is a structured hazard alert derived from a daily aggregate record.
// Alerts are insert-only; expired rows are deactivated, never rewritten.
type Alert struct {
	CityID      string
	Type        AlertType
	Severity    Severity
	Title       string
	Description string
	Value       float64
	Threshold   float64
	StartsAt    time.Time
	ExpiresAt   time.Time
	IsActive    bool
}
