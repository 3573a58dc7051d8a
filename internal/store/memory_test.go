package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridwatch/aridwatch/internal/pipeline"
	"github.com/aridwatch/aridwatch/internal/store"
)

func ptr(v float64) *float64 {
	return &v
}

func TestInMemory_CityIDMapActiveOnly(t *testing.T) {
	mem := store.NewInMemory()
	jaipurID := mem.AddCity("Jaipur", 26.9124, 75.7873, 431, true)
	mem.AddCity("Kota", 25.2138, 75.8648, 274, false)

	cityMap, err := mem.CityIDMap(context.Background())
	require.NoError(t, err)
	require.Len(t, cityMap, 1)
	assert.Equal(t, jaipurID, cityMap["Jaipur"])

	city, err := mem.GetCity(context.Background(), jaipurID)
	require.NoError(t, err)
	assert.Equal(t, "Jaipur", city.Name)
	assert.Equal(t, 431.0, city.ElevationM)

	_, err = mem.GetCity(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrCityNotFound)
}

func TestInMemory_UpsertIdempotent(t *testing.T) {
	mem := store.NewInMemory()
	ctx := context.Background()

	records := []pipeline.HourlyWeatherRecord{
		{CityID: "c1", RecordedAt: "2024-05-01T00:00", Temperature2M: ptr(30), IsForecast: false},
		{CityID: "c1", RecordedAt: "2024-05-01T01:00", Temperature2M: ptr(31), IsForecast: true},
	}

	count, err := mem.UpsertHourlyWeather(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Re-upserting the identical set leaves the store unchanged.
	count, err = mem.UpsertHourlyWeather(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, mem.WeatherRecords(), 2)

	// Same key overwrites; distinct is_forecast is a distinct key.
	records[0].Temperature2M = ptr(35)
	_, err = mem.UpsertHourlyWeather(ctx, records[:1])
	require.NoError(t, err)
	assert.Len(t, mem.WeatherRecords(), 2)

	flipped := records[0]
	flipped.IsForecast = true
	_, err = mem.UpsertHourlyWeather(ctx, []pipeline.HourlyWeatherRecord{flipped})
	require.NoError(t, err)
	assert.Len(t, mem.WeatherRecords(), 3)
}

func TestInMemory_DailyAggregateReplacedByKey(t *testing.T) {
	mem := store.NewInMemory()
	ctx := context.Background()

	first := pipeline.DailyAggregateRecord{CityID: "c1", Date: "2024-05-01", TempMax: ptr(40)}
	_, err := mem.UpsertDailyAggregates(ctx, []pipeline.DailyAggregateRecord{first})
	require.NoError(t, err)

	second := first
	second.TempMax = ptr(44)
	second.IsHeatwave = true
	_, err = mem.UpsertDailyAggregates(ctx, []pipeline.DailyAggregateRecord{second})
	require.NoError(t, err)

	stored := mem.DailyAggregates()
	require.Len(t, stored, 1)
	assert.Equal(t, 44.0, *stored[0].TempMax)
	assert.True(t, stored[0].IsHeatwave)
}

func TestInMemory_InsertAlertsSweepsExpired(t *testing.T) {
	mem := store.NewInMemory()
	ctx := context.Background()
	now := time.Date(2024, 5, 2, 6, 0, 0, 0, time.UTC)

	old := pipeline.Alert{
		CityID:    "c1",
		Type:      pipeline.AlertHeatwave,
		ExpiresAt: time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC),
		IsActive:  true,
	}
	count, err := mem.InsertAlerts(ctx, []pipeline.Alert{old}, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	fresh := pipeline.Alert{
		CityID:    "c1",
		Type:      pipeline.AlertHighUV,
		ExpiresAt: time.Date(2024, 5, 2, 23, 59, 59, 0, time.UTC),
		IsActive:  true,
	}
	_, err = mem.InsertAlerts(ctx, []pipeline.Alert{fresh}, now)
	require.NoError(t, err)

	alerts := mem.Alerts()
	require.Len(t, alerts, 2)
	assert.False(t, alerts[0].IsActive)
	assert.True(t, alerts[1].IsActive)
}

func TestInMemory_EmptyAlertBatchSkipsSweep(t *testing.T) {
	mem := store.NewInMemory()
	ctx := context.Background()

	expired := pipeline.Alert{
		CityID:    "c1",
		Type:      pipeline.AlertHeatwave,
		ExpiresAt: time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC),
		IsActive:  true,
	}
	_, err := mem.InsertAlerts(ctx, []pipeline.Alert{expired}, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// An empty batch is a no-op: the expired alert stays active because
	// the sweep only runs alongside an insert.
	count, err := mem.InsertAlerts(ctx, nil, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	alerts := mem.Alerts()
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].IsActive)
}
