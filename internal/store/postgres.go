// Package store provides the persistence gateway for pipeline records.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aridwatch/aridwatch/internal/pipeline"
)

// ErrCityNotFound is returned when a city ID does not resolve.
var ErrCityNotFound = errors.New("city not found")

// Postgres is the PostgreSQL persistence gateway. All upserts are idempotent
// under their declared conflict keys; re-running with identical input is a
// no-op with respect to final state.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// CityIDMap returns a name-to-ID map of all active cities.
func (s *Postgres) CityIDMap(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, id FROM cities WHERE is_active = true`)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	cityMap := make(map[string]string)
	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		cityMap[name] = id
	}
	return cityMap, rows.Err()
}

// GetCity retrieves a city by ID.
func (s *Postgres) GetCity(ctx context.Context, id string) (*pipeline.City, error) {
	query := `
		SELECT id, name, latitude, longitude, COALESCE(elevation_m, 0), is_active
		FROM cities
		WHERE id = $1
	`

	var city pipeline.City
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&city.ID,
		&city.Name,
		&city.Latitude,
		&city.Longitude,
		&city.ElevationM,
		&city.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	return &city, nil
}

// UpsertHourlyWeather upserts hourly weather records keyed by
// (city_id, recorded_at, is_forecast) and returns the affected row count.
func (s *Postgres) UpsertHourlyWeather(ctx context.Context, records []pipeline.HourlyWeatherRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO weather_data (
			city_id, recorded_at, temperature_2m, apparent_temperature,
			relative_humidity_2m, dewpoint_2m, precipitation,
			precipitation_probability, rain, wind_speed_10m, wind_direction_10m,
			wind_gusts_10m, weather_code, cloud_cover, visibility,
			surface_pressure, uv_index, is_forecast
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (city_id, recorded_at, is_forecast) DO UPDATE SET
			temperature_2m = EXCLUDED.temperature_2m,
			apparent_temperature = EXCLUDED.apparent_temperature,
			relative_humidity_2m = EXCLUDED.relative_humidity_2m,
			dewpoint_2m = EXCLUDED.dewpoint_2m,
			precipitation = EXCLUDED.precipitation,
			precipitation_probability = EXCLUDED.precipitation_probability,
			rain = EXCLUDED.rain,
			wind_speed_10m = EXCLUDED.wind_speed_10m,
			wind_direction_10m = EXCLUDED.wind_direction_10m,
			wind_gusts_10m = EXCLUDED.wind_gusts_10m,
			weather_code = EXCLUDED.weather_code,
			cloud_cover = EXCLUDED.cloud_cover,
			visibility = EXCLUDED.visibility,
			surface_pressure = EXCLUDED.surface_pressure,
			uv_index = EXCLUDED.uv_index
	`

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(query,
			r.CityID, r.RecordedAt, r.Temperature2M, r.ApparentTemperature,
			r.RelativeHumidity2M, r.Dewpoint2M, r.Precipitation,
			r.PrecipitationProbability, r.Rain, r.WindSpeed10M, r.WindDirection10M,
			r.WindGusts10M, r.WeatherCode, r.CloudCover, r.Visibility,
			r.SurfacePressure, r.UVIndex, r.IsForecast,
		)
	}

	return s.sendBatch(ctx, batch, "weather_data")
}

// UpsertAirQuality upserts air-quality records keyed by (city_id, recorded_at).
func (s *Postgres) UpsertAirQuality(ctx context.Context, records []pipeline.AirQualityRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO air_quality_data (
			city_id, recorded_at, pm2_5, pm10, dust, carbon_monoxide,
			nitrogen_dioxide, sulphur_dioxide, ozone, us_aqi, european_aqi,
			us_aqi_pm2_5, us_aqi_pm10
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (city_id, recorded_at) DO UPDATE SET
			pm2_5 = EXCLUDED.pm2_5,
			pm10 = EXCLUDED.pm10,
			dust = EXCLUDED.dust,
			carbon_monoxide = EXCLUDED.carbon_monoxide,
			nitrogen_dioxide = EXCLUDED.nitrogen_dioxide,
			sulphur_dioxide = EXCLUDED.sulphur_dioxide,
			ozone = EXCLUDED.ozone,
			us_aqi = EXCLUDED.us_aqi,
			european_aqi = EXCLUDED.european_aqi,
			us_aqi_pm2_5 = EXCLUDED.us_aqi_pm2_5,
			us_aqi_pm10 = EXCLUDED.us_aqi_pm10
	`

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(query,
			r.CityID, r.RecordedAt, r.PM25, r.PM10, r.Dust, r.CarbonMonoxide,
			r.NitrogenDioxide, r.SulphurDioxide, r.Ozone, r.USAQI, r.EuropeanAQI,
			r.USAQIPM25, r.USAQIPM10,
		)
	}

	return s.sendBatch(ctx, batch, "air_quality_data")
}

// UpsertDailyAggregates upserts daily aggregate records keyed by
// (city_id, date), fully replacing the prior value.
func (s *Postgres) UpsertDailyAggregates(ctx context.Context, records []pipeline.DailyAggregateRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO daily_aggregates (
			city_id, date, temp_max, temp_min, temp_mean, apparent_temp_max,
			apparent_temp_min, precipitation_sum, precipitation_hours,
			precipitation_probability_max, rain_sum, wind_speed_max,
			wind_gusts_max, wind_direction_dominant, weather_code, sunrise,
			sunset, uv_index_max, aqi_mean, aqi_max, pm2_5_mean, pm10_mean,
			dust_mean, is_heatwave, is_dust_storm_risk, is_heavy_rain
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)
		ON CONFLICT (city_id, date) DO UPDATE SET
			temp_max = EXCLUDED.temp_max,
			temp_min = EXCLUDED.temp_min,
			temp_mean = EXCLUDED.temp_mean,
			apparent_temp_max = EXCLUDED.apparent_temp_max,
			apparent_temp_min = EXCLUDED.apparent_temp_min,
			precipitation_sum = EXCLUDED.precipitation_sum,
			precipitation_hours = EXCLUDED.precipitation_hours,
			precipitation_probability_max = EXCLUDED.precipitation_probability_max,
			rain_sum = EXCLUDED.rain_sum,
			wind_speed_max = EXCLUDED.wind_speed_max,
			wind_gusts_max = EXCLUDED.wind_gusts_max,
			wind_direction_dominant = EXCLUDED.wind_direction_dominant,
			weather_code = EXCLUDED.weather_code,
			sunrise = EXCLUDED.sunrise,
			sunset = EXCLUDED.sunset,
			uv_index_max = EXCLUDED.uv_index_max,
			aqi_mean = EXCLUDED.aqi_mean,
			aqi_max = EXCLUDED.aqi_max,
			pm2_5_mean = EXCLUDED.pm2_5_mean,
			pm10_mean = EXCLUDED.pm10_mean,
			dust_mean = EXCLUDED.dust_mean,
			is_heatwave = EXCLUDED.is_heatwave,
			is_dust_storm_risk = EXCLUDED.is_dust_storm_risk,
			is_heavy_rain = EXCLUDED.is_heavy_rain
	`

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(query,
			r.CityID, r.Date, r.TempMax, r.TempMin, r.TempMean, r.ApparentTempMax,
			r.ApparentTempMin, r.PrecipitationSum, r.PrecipitationHours,
			r.PrecipitationProbabilityMax, r.RainSum, r.WindSpeedMax,
			r.WindGustsMax, r.WindDirectionDominant, r.WeatherCode, r.Sunrise,
			r.Sunset, r.UVIndexMax, r.AQIMean, r.AQIMax, r.PM25Mean, r.PM10Mean,
			r.DustMean, r.IsHeatwave, r.IsDustStormRisk, r.IsHeavyRain,
		)
	}

	return s.sendBatch(ctx, batch, "daily_aggregates")
}

// InsertAlerts inserts freshly generated alerts. The write is two-phase:
// every alert whose expires_at precedes now is first marked inactive, then
// the new rows are inserted. Returns immediately when the batch is empty, so
// the expiry sweep only runs on runs that produce alerts.
func (s *Postgres) InsertAlerts(ctx context.Context, alerts []pipeline.Alert, now time.Time) (int, error) {
	if len(alerts) == 0 {
		return 0, nil
	}

	if _, err := s.pool.Exec(ctx,
		`UPDATE alerts SET is_active = false WHERE expires_at < $1`, now,
	); err != nil {
		return 0, fmt.Errorf("deactivate expired alerts: %w", err)
	}

	query := `
		INSERT INTO alerts (
			city_id, alert_type, severity, title, description, value,
			threshold, starts_at, expires_at, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for _, a := range alerts {
		batch.Queue(query,
			a.CityID, string(a.Type), string(a.Severity), a.Title, a.Description,
			a.Value, a.Threshold, a.StartsAt, a.ExpiresAt, a.IsActive,
		)
	}

	return s.sendBatch(ctx, batch, "alerts")
}

// sendBatch executes a queued batch and sums affected rows.
func (s *Postgres) sendBatch(ctx context.Context, batch *pgx.Batch, table string) (int, error) {
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	var affected int
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return affected, fmt.Errorf("write %s: %w", table, err)
		}
		affected += int(tag.RowsAffected())
	}
	return affected, nil
}
