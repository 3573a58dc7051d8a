package pipeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridwatch/aridwatch/internal/config"
	"github.com/aridwatch/aridwatch/internal/pipeline"
)

func dailyRecord(date string) pipeline.DailyAggregateRecord {
	return pipeline.DailyAggregateRecord{CityID: "city-1", Date: date}
}

func generate(t *testing.T, record pipeline.DailyAggregateRecord) []pipeline.Alert {
	t.Helper()
	return pipeline.GenerateAlerts(
		[]pipeline.DailyAggregateRecord{record},
		"city-1", "Jaipur",
		config.DefaultThresholds(),
	)
}

func TestGenerateAlerts_HeatwaveBoundaries(t *testing.T) {
	// Exactly at the threshold: strict greater-than, no alert.
	record := dailyRecord("2024-05-01")
	record.TempMax = ptr(42.0)
	assert.Empty(t, generate(t, record))

	// Just above: high severity.
	record.TempMax = ptr(42.01)
	alerts := generate(t, record)
	require.Len(t, alerts, 1)
	assert.Equal(t, pipeline.AlertHeatwave, alerts[0].Type)
	assert.Equal(t, pipeline.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, 42.01, alerts[0].Value)
	assert.Equal(t, 42.0, alerts[0].Threshold)

	// Above the extreme threshold: extreme severity.
	record.TempMax = ptr(45.01)
	alerts = generate(t, record)
	require.Len(t, alerts, 1)
	assert.Equal(t, pipeline.SeverityExtreme, alerts[0].Severity)
}

func TestGenerateAlerts_AQITierExclusivity(t *testing.T) {
	record := dailyRecord("2024-05-01")
	record.AQIMax = ptr(250.0)

	alerts := generate(t, record)
	require.Len(t, alerts, 1)
	assert.Equal(t, pipeline.AlertVeryPoorAQI, alerts[0].Type)
	assert.Equal(t, pipeline.SeverityHigh, alerts[0].Severity)

	record.AQIMax = ptr(320.0)
	alerts = generate(t, record)
	require.Len(t, alerts, 1)
	assert.Equal(t, pipeline.AlertHazardousAQI, alerts[0].Type)
	assert.Equal(t, pipeline.SeverityExtreme, alerts[0].Severity)

	record.AQIMax = ptr(120.0)
	alerts = generate(t, record)
	require.Len(t, alerts, 1)
	assert.Equal(t, pipeline.AlertPoorAQI, alerts[0].Type)
	assert.Equal(t, pipeline.SeverityModerate, alerts[0].Severity)
}

func TestGenerateAlerts_DustStormConjunctive(t *testing.T) {
	// The flag is computed at aggregation; dust alone must not have set it,
	// and the generator only fires on the flag.
	record := dailyRecord("2024-05-01")
	record.DustMean = ptr(200.0)
	record.WindSpeedMax = ptr(10.0)
	record.IsDustStormRisk = false

	assert.Empty(t, generate(t, record))

	record.WindSpeedMax = ptr(50.0)
	record.IsDustStormRisk = true
	alerts := generate(t, record)
	require.Len(t, alerts, 1)
	assert.Equal(t, pipeline.AlertDustStorm, alerts[0].Type)
	assert.Equal(t, pipeline.SeverityHigh, alerts[0].Severity)
}

func TestGenerateAlerts_HeavyRainSeverities(t *testing.T) {
	record := dailyRecord("2024-05-01")
	record.PrecipitationSum = 50.0
	assert.Empty(t, generate(t, record))

	record.PrecipitationSum = 75.0
	alerts := generate(t, record)
	require.Len(t, alerts, 1)
	assert.Equal(t, pipeline.AlertHeavyRain, alerts[0].Type)
	assert.Equal(t, pipeline.SeverityHigh, alerts[0].Severity)

	record.PrecipitationSum = 120.0
	alerts = generate(t, record)
	require.Len(t, alerts, 1)
	assert.Equal(t, pipeline.SeverityExtreme, alerts[0].Severity)
}

func TestGenerateAlerts_HighUV(t *testing.T) {
	record := dailyRecord("2024-05-01")
	record.UVIndexMax = ptr(8.0)
	assert.Empty(t, generate(t, record))

	record.UVIndexMax = ptr(9.5)
	alerts := generate(t, record)
	require.Len(t, alerts, 1)
	assert.Equal(t, pipeline.AlertHighUV, alerts[0].Type)
	assert.Equal(t, pipeline.SeverityModerate, alerts[0].Severity)
}

func TestGenerateAlerts_MultipleCategoriesSameDay(t *testing.T) {
	record := dailyRecord("2024-05-01")
	record.TempMax = ptr(46.0)
	record.AQIMax = ptr(320.0)
	record.UVIndexMax = ptr(10.0)

	alerts := generate(t, record)
	require.Len(t, alerts, 3)

	types := make(map[pipeline.AlertType]bool)
	for _, a := range alerts {
		types[a.Type] = true
	}
	assert.True(t, types[pipeline.AlertHeatwave])
	assert.True(t, types[pipeline.AlertHazardousAQI])
	assert.True(t, types[pipeline.AlertHighUV])
}

func TestGenerateAlerts_ValidityWindowSpansDay(t *testing.T) {
	record := dailyRecord("2024-05-01")
	record.TempMax = ptr(43.0)

	alerts := generate(t, record)
	require.Len(t, alerts, 1)

	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), alerts[0].StartsAt)
	assert.Equal(t, time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC), alerts[0].ExpiresAt)
	assert.True(t, alerts[0].IsActive)
	assert.Contains(t, alerts[0].Title, "Jaipur")
	assert.Contains(t, alerts[0].Description, "43.0")
}

func TestGenerateAlerts_HeavyRainMonsoonContext(t *testing.T) {
	// During the monsoon the description cites the city's monthly normal.
	record := dailyRecord("2024-07-15")
	record.PrecipitationSum = 80.0

	alerts := generate(t, record)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Description, "Monsoon normal for the month: 193mm.")

	// Outside the monsoon months no normal is appended.
	record = dailyRecord("2024-05-01")
	record.PrecipitationSum = 80.0

	alerts = generate(t, record)
	require.Len(t, alerts, 1)
	assert.NotContains(t, alerts[0].Description, "Monsoon normal")
}
