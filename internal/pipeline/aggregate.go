package pipeline

import (
	"github.com/aridwatch/aridwatch/internal/config"
	"github.com/aridwatch/aridwatch/internal/openmeteo"
)

// aqiDayStats are the air-quality summary statistics for one calendar date.
type aqiDayStats struct {
	AQIMean  *float64
	AQIMax   *float64
	PM25Mean *float64
	PM10Mean *float64
	DustMean *float64
}

// BuildDailyAggregates joins the daily weather block with same-day AQI
// statistics and derives the hazard flags. Dates with no hourly AQI records
// carry null statistics; that is not an error. Output follows the order of
// the daily time array.
func BuildDailyAggregates(payload *openmeteo.ForecastResponse, aqiRecords []AirQualityRecord, cityID string, thresholds config.Thresholds) []DailyAggregateRecord {
	if payload == nil || len(payload.Daily.Time) == 0 {
		return nil
	}

	daily := payload.Daily
	statsByDate := aggregateAirQualityByDate(aqiRecords)

	records := make([]DailyAggregateRecord, 0, len(daily.Time))
	for i, dateStr := range daily.Time {
		tempMax := floatAt(daily.Temperature2MMax, i)
		precipSum := floatAtOrZero(daily.PrecipitationSum, i)
		windMax := floatAt(daily.WindSpeed10MMax, i)
		stats := statsByDate[dateStr]

		isHeatwave := tempMax != nil && *tempMax > thresholds.HeatwaveTempC
		// Conjunctive: both operands must be present and above threshold.
		isDustStorm := stats.DustMean != nil && *stats.DustMean > thresholds.DustStormDust &&
			windMax != nil && *windMax > thresholds.DustStormWind
		isHeavyRain := precipSum > thresholds.HeavyRainMM

		records = append(records, DailyAggregateRecord{
			CityID:                      cityID,
			Date:                        dateStr,
			TempMax:                     tempMax,
			TempMin:                     floatAt(daily.Temperature2MMin, i),
			ApparentTempMax:             floatAt(daily.ApparentTemperatureMax, i),
			ApparentTempMin:             floatAt(daily.ApparentTemperatureMin, i),
			PrecipitationSum:            precipSum,
			PrecipitationHours:          floatAtOrZero(daily.PrecipitationHours, i),
			PrecipitationProbabilityMax: floatAt(daily.PrecipitationProbabilityMax, i),
			RainSum:                     floatAtOrZero(daily.RainSum, i),
			WindSpeedMax:                windMax,
			WindGustsMax:                floatAt(daily.WindGusts10MMax, i),
			WindDirectionDominant:       floatAt(daily.WindDirection10MDominant, i),
			WeatherCode:                 intAt(daily.WeatherCode, i),
			Sunrise:                     stringAt(daily.Sunrise, i),
			Sunset:                      stringAt(daily.Sunset, i),
			UVIndexMax:                  floatAt(daily.UVIndexMax, i),
			AQIMean:                     stats.AQIMean,
			AQIMax:                      stats.AQIMax,
			PM25Mean:                    stats.PM25Mean,
			PM10Mean:                    stats.PM10Mean,
			DustMean:                    stats.DustMean,
			IsHeatwave:                  isHeatwave,
			IsDustStormRisk:             isDustStorm,
			IsHeavyRain:                 isHeavyRain,
		})
	}

	return records
}

// aggregateAirQualityByDate groups hourly AQI records by the date portion of
// their timestamp and computes per-group mean and max statistics. Null
// readings are ignored; a group with no readings for a field yields nil.
func aggregateAirQualityByDate(records []AirQualityRecord) map[string]aqiDayStats {
	grouped := make(map[string][]AirQualityRecord)
	for _, r := range records {
		if len(r.RecordedAt) < 10 {
			continue
		}
		date := r.RecordedAt[:10]
		grouped[date] = append(grouped[date], r)
	}

	stats := make(map[string]aqiDayStats, len(grouped))
	for date, group := range grouped {
		stats[date] = aqiDayStats{
			AQIMean:  meanOf(group, func(r AirQualityRecord) *float64 { return r.USAQI }),
			AQIMax:   maxOf(group, func(r AirQualityRecord) *float64 { return r.USAQI }),
			PM25Mean: meanOf(group, func(r AirQualityRecord) *float64 { return r.PM25 }),
			PM10Mean: meanOf(group, func(r AirQualityRecord) *float64 { return r.PM10 }),
			DustMean: meanOf(group, func(r AirQualityRecord) *float64 { return r.Dust }),
		}
	}
	return stats
}

func meanOf(records []AirQualityRecord, field func(AirQualityRecord) *float64) *float64 {
	var sum float64
	var count int
	for _, r := range records {
		if v := field(r); v != nil {
			sum += *v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}

func maxOf(records []AirQualityRecord, field func(AirQualityRecord) *float64) *float64 {
	var max *float64
	for _, r := range records {
		if v := field(r); v != nil {
			if max == nil || *v > *max {
				value := *v
				max = &value
			}
		}
	}
	return max
}
