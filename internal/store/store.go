package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
)

// Store is the in-memory DataStore implementation, used as a fallback when no
// database is configured and in tests
type Store struct {
	mu               sync.RWMutex
	rawReadings      []models.RawReading
	processed        []models.ProcessedReading
	latestBySensor   map[int]*models.ProcessedReading
	calibrations     map[int][]models.CalibrationParameters
	maxReadings      int
	nextRawID        int64
	nextProcessedID  int64
	nextCalibrationID int64
}

// NewStore creates a new in-memory store bounded to maxReadings per series
func NewStore(maxReadings int) *Store {
	if maxReadings <= 0 {
		maxReadings = 1000 // Default to store last 1000 readings
	}

	return &Store{
		rawReadings:    make([]models.RawReading, 0, maxReadings),
		processed:      make([]models.ProcessedReading, 0, maxReadings),
		latestBySensor: make(map[int]*models.ProcessedReading),
		calibrations:   make(map[int][]models.CalibrationParameters),
		maxReadings:    maxReadings,
	}
}

// Ping always succeeds for the in-memory store
func (s *Store) Ping() error {
	return nil
}

// AddRawReading stores a raw reading, assigning its id and capture time
func (s *Store) AddRawReading(_ context.Context, reading models.RawReading) (models.RawReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRawID++
	reading.ID = s.nextRawID
	if reading.CapturedAt.IsZero() {
		reading.CapturedAt = time.Now()
	}

	s.rawReadings = append(s.rawReadings, reading)
	if len(s.rawReadings) > s.maxReadings {
		s.rawReadings = s.rawReadings[1:]
	}

	return reading, nil
}

// GetRawReading returns the raw reading with the given id, or nil if evicted
func (s *Store) GetRawReading(_ context.Context, id int64) (*models.RawReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.rawReadings {
		if s.rawReadings[i].ID == id {
			reading := s.rawReadings[i]
			return &reading, nil
		}
	}
	return nil, nil
}

// AddProcessedReading stores a processed reading, assigning its id
func (s *Store) AddProcessedReading(_ context.Context, reading models.ProcessedReading) (models.ProcessedReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProcessedID++
	reading.ID = s.nextProcessedID
	if reading.ProcessedAt.IsZero() {
		reading.ProcessedAt = time.Now()
	}

	s.processed = append(s.processed, reading)
	if len(s.processed) > s.maxReadings {
		s.processed = s.processed[1:]
	}

	readingCopy := reading
	s.latestBySensor[reading.SensorID] = &readingCopy

	return reading, nil
}

// GetLatestProcessed returns the most recent processed reading for a sensor,
// or nil if the sensor has none
func (s *Store) GetLatestProcessed(_ context.Context, sensorID int) (*models.ProcessedReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reading, exists := s.latestBySensor[sensorID]
	if !exists || reading == nil {
		return nil, nil
	}

	// Return a copy to avoid race conditions
	readingCopy := *reading
	return &readingCopy, nil
}

// GetAllLatestProcessed returns the latest processed reading for each sensor
func (s *Store) GetAllLatestProcessed(_ context.Context) (map[int]models.ProcessedReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int]models.ProcessedReading)
	for sensorID, reading := range s.latestBySensor {
		if reading != nil {
			result[sensorID] = *reading
		}
	}
	return result, nil
}

// GetRecentProcessed returns the most recent N processed readings, newest
// first, optionally filtered by sensor (sensorID 0 means all sensors)
func (s *Store) GetRecentProcessed(_ context.Context, sensorID int, limit int) ([]models.ProcessedReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var readings []models.ProcessedReading
	for _, reading := range s.processed {
		if sensorID == 0 || reading.SensorID == sensorID {
			readings = append(readings, reading)
		}
	}

	// Sort by processing time descending (most recent first)
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].ProcessedAt.After(readings[j].ProcessedAt)
	})

	if limit > 0 && len(readings) > limit {
		readings = readings[:limit]
	}

	return readings, nil
}

// GetProcessedInRange returns processed readings within a time range, oldest
// first, optionally filtered by sensor (sensorID 0 means all sensors)
func (s *Store) GetProcessedInRange(_ context.Context, sensorID int, start, end time.Time) ([]models.ProcessedReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.ProcessedReading
	for _, reading := range s.processed {
		if sensorID != 0 && reading.SensorID != sensorID {
			continue
		}
		if reading.ProcessedAt.After(start) && reading.ProcessedAt.Before(end) {
			result = append(result, reading)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ProcessedAt.Before(result[j].ProcessedAt)
	})

	return result, nil
}

// GetReadingCount returns the total number of stored processed readings
func (s *Store) GetReadingCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.processed), nil
}

// GetActiveSensors returns the ids of all sensors with at least one
// processed reading, in ascending order
func (s *Store) GetActiveSensors(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sensors := make([]int, 0, len(s.latestBySensor))
	for sensorID := range s.latestBySensor {
		sensors = append(sensors, sensorID)
	}
	sort.Ints(sensors)

	return sensors, nil
}

// AddCalibration stores a calibration row, assigning its id and creation time
func (s *Store) AddCalibration(_ context.Context, params models.CalibrationParameters) (models.CalibrationParameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCalibrationID++
	params.ID = s.nextCalibrationID
	if params.CreatedAt.IsZero() {
		params.CreatedAt = time.Now()
	}

	s.calibrations[params.SensorID] = append(s.calibrations[params.SensorID], params)

	return params, nil
}

// GetLatestCalibration returns the most recently created calibration row for
// a sensor, or nil if the sensor has none
func (s *Store) GetLatestCalibration(_ context.Context, sensorID int) (*models.CalibrationParameters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.calibrations[sensorID]
	if len(rows) == 0 {
		return nil, nil
	}

	latest := rows[0]
	for _, row := range rows[1:] {
		if row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}

	return &latest, nil
}

// ListCalibrations returns all calibration rows for a sensor, newest first
func (s *Store) ListCalibrations(_ context.Context, sensorID int) ([]models.CalibrationParameters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]models.CalibrationParameters, len(s.calibrations[sensorID]))
	copy(rows, s.calibrations[sensorID])

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	return rows, nil
}

// ClearReadings removes all stored readings (useful for testing)
func (s *Store) ClearReadings() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rawReadings = make([]models.RawReading, 0, s.maxReadings)
	s.processed = make([]models.ProcessedReading, 0, s.maxReadings)
	s.latestBySensor = make(map[int]*models.ProcessedReading)
}
