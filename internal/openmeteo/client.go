// Package openmeteo provides clients for the Open-Meteo weather forecast and
// air-quality APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aridwatch/aridwatch/internal/config"
	"github.com/aridwatch/aridwatch/internal/resilience"
)

const (
	// DefaultForecastBaseURL is the weather forecast endpoint.
	DefaultForecastBaseURL = "https://api.open-meteo.com/v1/forecast"

	// DefaultAirQualityBaseURL is the air-quality forecast endpoint.
	DefaultAirQualityBaseURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
)

// HourlyWeatherVars are the hourly variables requested from the weather API.
var HourlyWeatherVars = []string{
	"temperature_2m",
	"apparent_temperature",
	"relative_humidity_2m",
	"dewpoint_2m",
	"precipitation",
	"precipitation_probability",
	"rain",
	"wind_speed_10m",
	"wind_direction_10m",
	"wind_gusts_10m",
	"weather_code",
	"cloud_cover",
	"visibility",
	"surface_pressure",
	"uv_index",
}

// DailyWeatherVars are the daily variables requested from the weather API.
var DailyWeatherVars = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"apparent_temperature_max",
	"apparent_temperature_min",
	"precipitation_sum",
	"precipitation_hours",
	"precipitation_probability_max",
	"rain_sum",
	"wind_speed_10m_max",
	"wind_gusts_10m_max",
	"wind_direction_10m_dominant",
	"weather_code",
	"sunrise",
	"sunset",
	"uv_index_max",
}

// HourlyAirQualityVars are the variables requested from the air-quality API.
var HourlyAirQualityVars = []string{
	"pm2_5",
	"pm10",
	"dust",
	"carbon_monoxide",
	"nitrogen_dioxide",
	"sulphur_dioxide",
	"ozone",
	"us_aqi",
	"european_aqi",
	"us_aqi_pm2_5",
	"us_aqi_pm10",
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// ForecastBaseURL overrides the weather endpoint (for tests).
	ForecastBaseURL string

	// AirQualityBaseURL overrides the air-quality endpoint (for tests).
	AirQualityBaseURL string

	// HTTPClient is the HTTP client to use. If nil, a resilient client with
	// the pipeline retry policy is created.
	HTTPClient HTTPDoer

	// Timezone requested for all payload timestamps.
	// Defaults to config.Timezone.
	Timezone string

	// ForecastDays is the forecast horizon. Defaults to config.ForecastDays.
	ForecastDays int

	// Timeout for individual API requests. Defaults to config.RequestTimeout.
	Timeout time.Duration
}

// Client fetches forecast payloads from the Open-Meteo APIs.
type Client struct {
	forecastURL   string
	airQualityURL string
	httpClient    HTTPDoer
	timezone      string
	forecastDays  int
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	forecastURL := cfg.ForecastBaseURL
	if forecastURL == "" {
		forecastURL = DefaultForecastBaseURL
	}
	airQualityURL := cfg.AirQualityBaseURL
	if airQualityURL == "" {
		airQualityURL = DefaultAirQualityBaseURL
	}
	timezone := cfg.Timezone
	if timezone == "" {
		timezone = config.Timezone
	}
	forecastDays := cfg.ForecastDays
	if forecastDays == 0 {
		forecastDays = config.ForecastDays
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = config.RequestTimeout
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            "openmeteo",
			Timeout:         timeout,
			MaxAttempts:     config.MaxRetries,
			InitialInterval: config.RetryBackoffMin,
			MaxInterval:     config.RetryBackoffMax,
		})
	}

	return &Client{
		forecastURL:   strings.TrimSuffix(forecastURL, "/"),
		airQualityURL: strings.TrimSuffix(airQualityURL, "/"),
		httpClient:    httpClient,
		timezone:      timezone,
		forecastDays:  forecastDays,
	}
}

// FetchForecast retrieves the hourly and daily weather forecast for a
// coordinate.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64) (*ForecastResponse, error) {
	params := c.baseParams(lat, lon)
	params.Set("hourly", strings.Join(HourlyWeatherVars, ","))
	params.Set("daily", strings.Join(DailyWeatherVars, ","))

	var payload ForecastResponse
	if err := c.get(ctx, c.forecastURL, params, &payload); err != nil {
		return nil, fmt.Errorf("fetch weather forecast: %w", err)
	}
	return &payload, nil
}

// FetchAirQuality retrieves the hourly air-quality forecast for a coordinate.
func (c *Client) FetchAirQuality(ctx context.Context, lat, lon float64) (*AirQualityResponse, error) {
	params := c.baseParams(lat, lon)
	params.Set("hourly", strings.Join(HourlyAirQualityVars, ","))

	var payload AirQualityResponse
	if err := c.get(ctx, c.airQualityURL, params, &payload); err != nil {
		return nil, fmt.Errorf("fetch air quality: %w", err)
	}
	return &payload, nil
}

func (c *Client) baseParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("timezone", c.timezone)
	params.Set("forecast_days", strconv.Itoa(c.forecastDays))
	return params
}

func (c *Client) get(ctx context.Context, baseURL string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
