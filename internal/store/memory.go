package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aridwatch/aridwatch/internal/pipeline"
)

type weatherKey struct {
	CityID     string
	RecordedAt string
	IsForecast bool
}

type airQualityKey struct {
	CityID     string
	RecordedAt string
}

type dailyKey struct {
	CityID string
	Date   string
}

// InMemory is an in-memory implementation of the persistence gateway with
// the same conflict-key semantics as Postgres. Intended for testing.
type InMemory struct {
	mu         sync.RWMutex
	cities     map[string]pipeline.City
	weather    map[weatherKey]pipeline.HourlyWeatherRecord
	airQuality map[airQualityKey]pipeline.AirQualityRecord
	daily      map[dailyKey]pipeline.DailyAggregateRecord
	alerts     []pipeline.Alert
}

// NewInMemory creates a new empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		cities:     make(map[string]pipeline.City),
		weather:    make(map[weatherKey]pipeline.HourlyWeatherRecord),
		airQuality: make(map[airQualityKey]pipeline.AirQualityRecord),
		daily:      make(map[dailyKey]pipeline.DailyAggregateRecord),
	}
}

// AddCity registers a city and returns its generated ID.
func (s *InMemory) AddCity(name string, lat, lon, elevation float64, active bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.cities[id] = pipeline.City{
		ID:         id,
		Name:       name,
		Latitude:   lat,
		Longitude:  lon,
		ElevationM: elevation,
		IsActive:   active,
	}
	return id
}

// CityIDMap returns a name-to-ID map of active cities.
func (s *InMemory) CityIDMap(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cityMap := make(map[string]string)
	for id, city := range s.cities {
		if city.IsActive {
			cityMap[city.Name] = id
		}
	}
	return cityMap, nil
}

// GetCity retrieves a city by ID.
func (s *InMemory) GetCity(_ context.Context, id string) (*pipeline.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	city, ok := s.cities[id]
	if !ok {
		return nil, ErrCityNotFound
	}
	cpy := city
	return &cpy, nil
}

// UpsertHourlyWeather stores records keyed by (city, recorded_at, is_forecast).
func (s *InMemory) UpsertHourlyWeather(_ context.Context, records []pipeline.HourlyWeatherRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.weather[weatherKey{r.CityID, r.RecordedAt, r.IsForecast}] = r
	}
	return len(records), nil
}

// UpsertAirQuality stores records keyed by (city, recorded_at).
func (s *InMemory) UpsertAirQuality(_ context.Context, records []pipeline.AirQualityRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.airQuality[airQualityKey{r.CityID, r.RecordedAt}] = r
	}
	return len(records), nil
}

// UpsertDailyAggregates stores records keyed by (city, date).
func (s *InMemory) UpsertDailyAggregates(_ context.Context, records []pipeline.DailyAggregateRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.daily[dailyKey{r.CityID, r.Date}] = r
	}
	return len(records), nil
}

// InsertAlerts appends new alert rows, first deactivating any stored alert
// whose expiry precedes now. Empty batches skip the sweep, matching Postgres.
func (s *InMemory) InsertAlerts(_ context.Context, alerts []pipeline.Alert, now time.Time) (int, error) {
	if len(alerts) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ExpiresAt.Before(now) {
			s.alerts[i].IsActive = false
		}
	}
	s.alerts = append(s.alerts, alerts...)
	return len(alerts), nil
}

// WeatherRecords returns all stored hourly weather records.
func (s *InMemory) WeatherRecords() []pipeline.HourlyWeatherRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]pipeline.HourlyWeatherRecord, 0, len(s.weather))
	for _, r := range s.weather {
		records = append(records, r)
	}
	return records
}

// AirQualityRecords returns all stored air-quality records.
func (s *InMemory) AirQualityRecords() []pipeline.AirQualityRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]pipeline.AirQualityRecord, 0, len(s.airQuality))
	for _, r := range s.airQuality {
		records = append(records, r)
	}
	return records
}

// DailyAggregates returns all stored daily aggregate records.
func (s *InMemory) DailyAggregates() []pipeline.DailyAggregateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]pipeline.DailyAggregateRecord, 0, len(s.daily))
	for _, r := range s.daily {
		records = append(records, r)
	}
	return records
}

// Alerts returns all stored alert rows in insertion order.
func (s *InMemory) Alerts() []pipeline.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]pipeline.Alert(nil), s.alerts...)
}
