package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aridwatch/aridwatch/internal/config"
	"github.com/aridwatch/aridwatch/internal/openmeteo"
)

// Fetcher retrieves upstream forecast payloads for a coordinate.
type Fetcher interface {
	FetchForecast(ctx context.Context, lat, lon float64) (*openmeteo.ForecastResponse, error)
	FetchAirQuality(ctx context.Context, lat, lon float64) (*openmeteo.AirQualityResponse, error)
}

// Store is the persistence gateway used by the runner.
type Store interface {
	CityIDMap(ctx context.Context) (map[string]string, error)
	GetCity(ctx context.Context, id string) (*City, error)
	UpsertHourlyWeather(ctx context.Context, records []HourlyWeatherRecord) (int, error)
	UpsertAirQuality(ctx context.Context, records []AirQualityRecord) (int, error)
	UpsertDailyAggregates(ctx context.Context, records []DailyAggregateRecord) (int, error)
	InsertAlerts(ctx context.Context, alerts []Alert, now time.Time) (int, error)
}

// RunnerConfig holds dependencies for creating a Runner.
type RunnerConfig struct {
	Store   Store
	Fetcher Fetcher
	Logger  zerolog.Logger

	// Thresholds for hazard flags and alerts. Zero value means defaults.
	Thresholds *config.Thresholds

	// DefaultCities overrides the built-in city list (for tests).
	DefaultCities []config.CityConfig

	// Now supplies the run clock. Defaults to time.Now().UTC; the hourly
	// is_forecast comparison is naive, so the chosen clock decides which
	// side of the timezone the cutoff lands on.
	Now func() time.Time

	// Tracer for per-run spans. Defaults to the global tracer.
	Tracer trace.Tracer
}

// Runner drives one full pipeline run: resolve cities, then per city fetch,
// transform, aggregate, alert and persist. Cities are processed sequentially;
// within a city the two endpoint fetches run concurrently. No failure ever
// crosses a city boundary.
type Runner struct {
	store      Store
	fetcher    Fetcher
	logger     zerolog.Logger
	thresholds config.Thresholds
	cities     []config.CityConfig
	now        func() time.Time
	tracer     trace.Tracer
}

// NewRunner creates a pipeline runner.
func NewRunner(cfg RunnerConfig) *Runner {
	thresholds := config.DefaultThresholds()
	if cfg.Thresholds != nil {
		thresholds = *cfg.Thresholds
	}
	cities := cfg.DefaultCities
	if cities == nil {
		cities = config.DefaultCities()
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("pipeline")
	}

	return &Runner{
		store:      cfg.Store,
		fetcher:    cfg.Fetcher,
		logger:     cfg.Logger,
		thresholds: thresholds,
		cities:     cities,
		now:        now,
		tracer:     tracer,
	}
}

// RunResult accumulates the totals of one pipeline run.
type RunResult struct {
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
	WeatherRecords    int
	AirQualityRecords int
	DailyAggregates   int
	Alerts            int
	CitiesProcessed   int
	CitiesSkipped     int
}

// Run executes the full pipeline. It returns an error only for fatal
// conditions that abort the run before any fetch (city resolution failure or
// an empty city map); everything past that point is a soft failure.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	now := r.now()
	result := &RunResult{StartTime: now}

	cityMap, err := r.store.CityIDMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve cities: %w", err)
	}
	if len(cityMap) == 0 {
		return nil, ErrNoCities
	}

	r.logger.Info().
		Int("cities", len(cityMap)).
		Time("run_time", now).
		Msg("starting pipeline run")

	defaultNames := make(map[string]bool, len(r.cities))
	for _, cityCfg := range r.cities {
		defaultNames[cityCfg.Name] = true

		id, ok := cityMap[cityCfg.Name]
		if !ok {
			r.logger.Warn().Str("city", cityCfg.Name).Msg("city not in datastore, skipping")
			result.CitiesSkipped++
			continue
		}

		r.processCity(ctx, result, City{
			ID:         id,
			Name:       cityCfg.Name,
			Latitude:   cityCfg.Latitude,
			Longitude:  cityCfg.Longitude,
			ElevationM: cityCfg.ElevationM,
		}, now)
	}

	// Cities present in the datastore but not in the default list are
	// processed with coordinates read back from the store.
	customNames := make([]string, 0)
	for name := range cityMap {
		if !defaultNames[name] {
			customNames = append(customNames, name)
		}
	}
	sort.Strings(customNames)

	for _, name := range customNames {
		city, err := r.store.GetCity(ctx, cityMap[name])
		if err != nil {
			r.logger.Warn().Err(err).Str("city", name).Msg("failed to load city, skipping")
			result.CitiesSkipped++
			continue
		}
		r.processCity(ctx, result, *city, now)
	}

	result.EndTime = r.now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	r.logger.Info().
		Dur("duration", result.Duration).
		Int("weather_records", result.WeatherRecords).
		Int("air_quality_records", result.AirQualityRecords).
		Int("daily_aggregates", result.DailyAggregates).
		Int("alerts", result.Alerts).
		Int("cities_processed", result.CitiesProcessed).
		Int("cities_skipped", result.CitiesSkipped).
		Msg("pipeline run complete")

	return result, nil
}

// processCity runs the fetch-transform-aggregate-alert-persist sequence for
// one city. Failures are logged and absorbed here.
func (r *Runner) processCity(ctx context.Context, result *RunResult, city City, now time.Time) {
	ctx, span := r.tracer.Start(ctx, "pipeline.city",
		trace.WithAttributes(attribute.String("city", city.Name)))
	defer span.End()

	log := r.logger.With().Str("city", city.Name).Logger()
	log.Info().Msg("processing city")

	var (
		wg         sync.WaitGroup
		weather    *openmeteo.ForecastResponse
		airQuality *openmeteo.AirQualityResponse
		weatherErr error
		aqiErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		weather, weatherErr = r.fetcher.FetchForecast(ctx, city.Latitude, city.Longitude)
	}()
	go func() {
		defer wg.Done()
		airQuality, aqiErr = r.fetcher.FetchAirQuality(ctx, city.Latitude, city.Longitude)
	}()
	wg.Wait()

	if weatherErr != nil {
		log.Error().Err(weatherErr).Msg("weather fetch failed")
	}
	if aqiErr != nil {
		log.Error().Err(aqiErr).Msg("air quality fetch failed")
	}

	if weather != nil {
		records := TransformHourlyWeather(weather, city.ID, now)
		count, err := r.store.UpsertHourlyWeather(ctx, records)
		result.WeatherRecords += r.persisted(log, count, err, "weather_data")
	}

	var aqiRecords []AirQualityRecord
	if airQuality != nil {
		aqiRecords = TransformAirQuality(airQuality, city.ID)
		count, err := r.store.UpsertAirQuality(ctx, aqiRecords)
		result.AirQualityRecords += r.persisted(log, count, err, "air_quality_data")
	}

	if weather != nil {
		daily := BuildDailyAggregates(weather, aqiRecords, city.ID, r.thresholds)
		if len(daily) > 0 && daily[0].WeatherCode != nil {
			log.Debug().
				Str("date", daily[0].Date).
				Str("conditions", config.DescribeWeatherCode(*daily[0].WeatherCode)).
				Msg("leading day conditions")
		}
		count, err := r.store.UpsertDailyAggregates(ctx, daily)
		result.DailyAggregates += r.persisted(log, count, err, "daily_aggregates")

		alerts := GenerateAlerts(daily, city.ID, city.Name, r.thresholds)
		if len(alerts) > 0 {
			count, err := r.store.InsertAlerts(ctx, alerts, now)
			result.Alerts += r.persisted(log, count, err, "alerts")
		}
	}

	result.CitiesProcessed++
}

// persisted converts a store write outcome into a running total increment,
// absorbing errors as zero-affected soft failures.
func (r *Runner) persisted(log zerolog.Logger, count int, err error, table string) int {
	if err != nil {
		log.Error().Err(err).Str("table", table).Msg("persist failed")
		return 0
	}
	log.Debug().Int("count", count).Str("table", table).Msg("records persisted")
	return count
}
