package pipeline

import (
	"time"

	"github.com/aridwatch/aridwatch/internal/openmeteo"
)

// HourlyTimeLayout is the zone-less timestamp format used by Open-Meteo
// hourly and daily time arrays (local to the requested timezone).
const HourlyTimeLayout = "2006-01-02T15:04"

// TransformHourlyWeather flattens a weather payload into one record per entry
// of the hourly time array, preserving input order. A record is a forecast
// when its timestamp is strictly after now; callers choose which clock (and
// which side of the timezone question) now represents.
func TransformHourlyWeather(payload *openmeteo.ForecastResponse, cityID string, now time.Time) []HourlyWeatherRecord {
	if payload == nil || len(payload.Hourly.Time) == 0 {
		return nil
	}

	hourly := payload.Hourly
	records := make([]HourlyWeatherRecord, 0, len(hourly.Time))

	for i, timeStr := range hourly.Time {
		recordedAt, err := time.Parse(HourlyTimeLayout, timeStr)
		isForecast := err == nil && recordedAt.After(now)

		records = append(records, HourlyWeatherRecord{
			CityID:                   cityID,
			RecordedAt:               timeStr,
			Temperature2M:            floatAt(hourly.Temperature2M, i),
			ApparentTemperature:      floatAt(hourly.ApparentTemperature, i),
			RelativeHumidity2M:       floatAt(hourly.RelativeHumidity2M, i),
			Dewpoint2M:               floatAt(hourly.Dewpoint2M, i),
			Precipitation:            floatAtOrZero(hourly.Precipitation, i),
			PrecipitationProbability: floatAt(hourly.PrecipitationProbability, i),
			Rain:                     floatAtOrZero(hourly.Rain, i),
			WindSpeed10M:             floatAt(hourly.WindSpeed10M, i),
			WindDirection10M:         floatAt(hourly.WindDirection10M, i),
			WindGusts10M:             floatAt(hourly.WindGusts10M, i),
			WeatherCode:              intAt(hourly.WeatherCode, i),
			CloudCover:               floatAt(hourly.CloudCover, i),
			Visibility:               floatAt(hourly.Visibility, i),
			SurfacePressure:          floatAt(hourly.SurfacePressure, i),
			UVIndex:                  floatAt(hourly.UVIndex, i),
			IsForecast:               isForecast,
		})
	}

	return records
}

// TransformAirQuality flattens an air-quality payload into one record per
// entry of the hourly time array, preserving input order. Missing values stay
// null; air-quality fields have no zero defaults.
func TransformAirQuality(payload *openmeteo.AirQualityResponse, cityID string) []AirQualityRecord {
	if payload == nil || len(payload.Hourly.Time) == 0 {
		return nil
	}

	hourly := payload.Hourly
	records := make([]AirQualityRecord, 0, len(hourly.Time))

	for i, timeStr := range hourly.Time {
		records = append(records, AirQualityRecord{
			CityID:          cityID,
			RecordedAt:      timeStr,
			PM25:            floatAt(hourly.PM25, i),
			PM10:            floatAt(hourly.PM10, i),
			Dust:            floatAt(hourly.Dust, i),
			CarbonMonoxide:  floatAt(hourly.CarbonMonoxide, i),
			NitrogenDioxide: floatAt(hourly.NitrogenDioxide, i),
			SulphurDioxide:  floatAt(hourly.SulphurDioxide, i),
			Ozone:           floatAt(hourly.Ozone, i),
			USAQI:           floatAt(hourly.USAQI, i),
			EuropeanAQI:     floatAt(hourly.EuropeanAQI, i),
			USAQIPM25:       floatAt(hourly.USAQIPM25, i),
			USAQIPM10:       floatAt(hourly.USAQIPM10, i),
		})
	}

	return records
}

// floatAt returns the value at index i, or nil when the array is shorter
// than the time array or holds a null at that position.
func floatAt(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

// floatAtOrZero is floatAt for the fields that default to zero instead of
// null (precipitation and rain).
func floatAtOrZero(values []*float64, i int) float64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

func intAt(values []*int, i int) *int {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func stringAt(values []*string, i int) *string {
	if i < len(values) {
		return values[i]
	}
	return nil
}
