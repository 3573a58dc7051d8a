package openmeteo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridwatch/aridwatch/internal/openmeteo"
)

func TestClient_FetchForecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "26.9124", q.Get("latitude"))
		assert.Equal(t, "75.7873", q.Get("longitude"))
		assert.Equal(t, "Asia/Kolkata", q.Get("timezone"))
		assert.Equal(t, "7", q.Get("forecast_days"))
		assert.True(t, strings.Contains(q.Get("hourly"), "temperature_2m"))
		assert.True(t, strings.Contains(q.Get("hourly"), "uv_index"))
		assert.True(t, strings.Contains(q.Get("daily"), "temperature_2m_max"))
		assert.True(t, strings.Contains(q.Get("daily"), "sunrise"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"latitude": 26.9124,
			"longitude": 75.7873,
			"timezone": "Asia/Kolkata",
			"hourly": {
				"time": ["2024-05-01T00:00", "2024-05-01T01:00"],
				"temperature_2m": [31.2, null],
				"precipitation": [0.0, 0.2]
			},
			"daily": {
				"time": ["2024-05-01"],
				"temperature_2m_max": [43.5],
				"sunrise": ["2024-05-01T05:52"]
			}
		}`))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		ForecastBaseURL: server.URL,
		HTTPClient:      http.DefaultClient,
	})

	payload, err := client.FetchForecast(context.Background(), 26.9124, 75.7873)
	require.NoError(t, err)

	require.Len(t, payload.Hourly.Time, 2)
	require.NotNil(t, payload.Hourly.Temperature2M[0])
	assert.Equal(t, 31.2, *payload.Hourly.Temperature2M[0])
	assert.Nil(t, payload.Hourly.Temperature2M[1])

	require.Len(t, payload.Daily.Time, 1)
	assert.Equal(t, 43.5, *payload.Daily.Temperature2MMax[0])
	require.NotNil(t, payload.Daily.Sunrise[0])
	assert.Equal(t, "2024-05-01T05:52", *payload.Daily.Sunrise[0])
}

func TestClient_FetchAirQuality(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.True(t, strings.Contains(q.Get("hourly"), "us_aqi"))
		assert.True(t, strings.Contains(q.Get("hourly"), "dust"))
		assert.Empty(t, q.Get("daily"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hourly": {
				"time": ["2024-05-01T00:00"],
				"pm2_5": [82.1],
				"us_aqi": [164],
				"dust": [null]
			}
		}`))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		AirQualityBaseURL: server.URL,
		HTTPClient:        http.DefaultClient,
	})

	payload, err := client.FetchAirQuality(context.Background(), 26.9124, 75.7873)
	require.NoError(t, err)

	require.Len(t, payload.Hourly.Time, 1)
	assert.Equal(t, 82.1, *payload.Hourly.PM25[0])
	assert.Equal(t, 164.0, *payload.Hourly.USAQI[0])
	assert.Nil(t, payload.Hourly.Dust[0])
}

func TestClient_NonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		ForecastBaseURL: server.URL,
		HTTPClient:      http.DefaultClient,
	})

	_, err := client.FetchForecast(context.Background(), 26.9124, 75.7873)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 429")
}

func TestClient_DecodeErrorIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		AirQualityBaseURL: server.URL,
		HTTPClient:        http.DefaultClient,
	})

	_, err := client.FetchAirQuality(context.Background(), 26.9124, 75.7873)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
