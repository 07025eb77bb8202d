package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
)

// DatabaseStore implements persistent storage using PostgreSQL
type DatabaseStore struct {
	db *sql.DB
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(db *sql.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Ping checks database connectivity
func (s *DatabaseStore) Ping() error {
	return s.db.Ping()
}

// AddRawReading stores a raw reading, letting the database assign the capture
// time when the reading carries none
func (s *DatabaseStore) AddRawReading(ctx context.Context, reading models.RawReading) (models.RawReading, error) {
	query := `
		INSERT INTO raw_readings (sensor_id, depth, turbidity, temperature, voltage, battery_level, signal_strength, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE(NULLIF($8::timestamptz, '0001-01-01T00:00:00Z'::timestamptz), NOW()))
		RETURNING id, captured_at`

	err := s.db.QueryRowContext(ctx, query,
		reading.SensorID, reading.Depth, reading.Turbidity, reading.Temperature,
		reading.Voltage, reading.BatteryLevel, reading.SignalStrength, reading.CapturedAt).
		Scan(&reading.ID, &reading.CapturedAt)
	if err != nil {
		return models.RawReading{}, fmt.Errorf("failed to store raw reading: %w", err)
	}

	// Update station status (last_seen, total_readings)
	s.updateStationStatus(ctx, reading.SensorID)

	return reading, nil
}

// updateStationStatus updates the station status when new data arrives
func (s *DatabaseStore) updateStationStatus(ctx context.Context, sensorID int) {
	query := `
		INSERT INTO station_status (sensor_id, last_seen, total_readings, updated_at)
		VALUES ($1, NOW(), 1, NOW())
		ON CONFLICT (sensor_id) DO UPDATE SET
			last_seen = NOW(),
			total_readings = station_status.total_readings + 1,
			updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, sensorID); err != nil {
		log.Printf("⚠️  Warning: Failed to update station status: %v", err)
	}
}

// GetRawReading returns the raw reading with the given id, or nil if absent
func (s *DatabaseStore) GetRawReading(ctx context.Context, id int64) (*models.RawReading, error) {
	query := `
		SELECT id, sensor_id, depth, turbidity, temperature, voltage, battery_level, signal_strength, captured_at
		FROM raw_readings
		WHERE id = $1`

	var reading models.RawReading
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&reading.ID, &reading.SensorID, &reading.Depth, &reading.Turbidity, &reading.Temperature,
		&reading.Voltage, &reading.BatteryLevel, &reading.SignalStrength, &reading.CapturedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raw reading %d: %w", id, err)
	}

	return &reading, nil
}

// AddProcessedReading stores a processed reading
func (s *DatabaseStore) AddProcessedReading(ctx context.Context, reading models.ProcessedReading) (models.ProcessedReading, error) {
	query := `
		INSERT INTO processed_readings
			(raw_reading_id, sensor_id, calibrated_depth, smoothed_turbidity, smoothed_temperature,
			 sediment_level, quality_score, is_outlier, processing_method, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE(NULLIF($10::timestamptz, '0001-01-01T00:00:00Z'::timestamptz), NOW()))
		RETURNING id, processed_at`

	err := s.db.QueryRowContext(ctx, query,
		reading.RawReadingID, reading.SensorID, reading.CalibratedDepth, reading.SmoothedTurbidity,
		reading.SmoothedTemperature, reading.SedimentLevel, reading.QualityScore, reading.IsOutlier,
		reading.ProcessingMethod, reading.ProcessedAt).
		Scan(&reading.ID, &reading.ProcessedAt)
	if err != nil {
		return models.ProcessedReading{}, fmt.Errorf("failed to store processed reading: %w", err)
	}

	return reading, nil
}

const processedColumns = `id, raw_reading_id, sensor_id, calibrated_depth, smoothed_turbidity,
	smoothed_temperature, sediment_level, quality_score, is_outlier, processing_method, processed_at`

func scanProcessed(row interface{ Scan(...interface{}) error }) (models.ProcessedReading, error) {
	var reading models.ProcessedReading
	err := row.Scan(
		&reading.ID, &reading.RawReadingID, &reading.SensorID, &reading.CalibratedDepth,
		&reading.SmoothedTurbidity, &reading.SmoothedTemperature, &reading.SedimentLevel,
		&reading.QualityScore, &reading.IsOutlier, &reading.ProcessingMethod, &reading.ProcessedAt)
	return reading, err
}

// GetLatestProcessed returns the most recent processed reading for a sensor,
// or nil if the sensor has none
func (s *DatabaseStore) GetLatestProcessed(ctx context.Context, sensorID int) (*models.ProcessedReading, error) {
	query := `
		SELECT ` + processedColumns + `
		FROM processed_readings
		WHERE sensor_id = $1
		ORDER BY processed_at DESC
		LIMIT 1`

	reading, err := scanProcessed(s.db.QueryRowContext(ctx, query, sensorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest processed reading: %w", err)
	}

	return &reading, nil
}

// GetAllLatestProcessed returns the latest processed reading for each sensor
func (s *DatabaseStore) GetAllLatestProcessed(ctx context.Context) (map[int]models.ProcessedReading, error) {
	query := `
		SELECT DISTINCT ON (sensor_id) ` + processedColumns + `
		FROM processed_readings
		ORDER BY sensor_id, processed_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest processed readings: %w", err)
	}
	defer rows.Close()

	result := make(map[int]models.ProcessedReading)
	for rows.Next() {
		reading, err := scanProcessed(rows)
		if err != nil {
			log.Printf("⚠️  Warning: Error scanning processed reading: %v", err)
			continue
		}
		result[reading.SensorID] = reading
	}

	return result, rows.Err()
}

// GetRecentProcessed returns the most recent N processed readings, newest
// first, optionally filtered by sensor (sensorID 0 means all sensors)
func (s *DatabaseStore) GetRecentProcessed(ctx context.Context, sensorID int, limit int) ([]models.ProcessedReading, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + processedColumns + `
		FROM processed_readings
		WHERE ($1 = 0 OR sensor_id = $1)
		ORDER BY processed_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent processed readings: %w", err)
	}
	defer rows.Close()

	return collectProcessed(rows)
}

// GetProcessedInRange returns processed readings within a time range, oldest
// first, optionally filtered by sensor (sensorID 0 means all sensors)
func (s *DatabaseStore) GetProcessedInRange(ctx context.Context, sensorID int, start, end time.Time) ([]models.ProcessedReading, error) {
	query := `
		SELECT ` + processedColumns + `
		FROM processed_readings
		WHERE ($1 = 0 OR sensor_id = $1) AND processed_at > $2 AND processed_at < $3
		ORDER BY processed_at ASC`

	rows, err := s.db.QueryContext(ctx, query, sensorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get processed readings in range: %w", err)
	}
	defer rows.Close()

	return collectProcessed(rows)
}

func collectProcessed(rows *sql.Rows) ([]models.ProcessedReading, error) {
	var readings []models.ProcessedReading
	for rows.Next() {
		reading, err := scanProcessed(rows)
		if err != nil {
			log.Printf("⚠️  Warning: Error scanning processed reading: %v", err)
			continue
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

// GetReadingCount returns the total number of stored processed readings
func (s *DatabaseStore) GetReadingCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM processed_readings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count processed readings: %w", err)
	}
	return count, nil
}

// GetActiveSensors returns the ids of all sensors with processed readings
func (s *DatabaseStore) GetActiveSensors(ctx context.Context) ([]int, error) {
	query := `SELECT DISTINCT sensor_id FROM processed_readings ORDER BY sensor_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active sensors: %w", err)
	}
	defer rows.Close()

	var sensors []int
	for rows.Next() {
		var sensorID int
		if err := rows.Scan(&sensorID); err != nil {
			log.Printf("⚠️  Warning: Error scanning sensor id: %v", err)
			continue
		}
		sensors = append(sensors, sensorID)
	}

	return sensors, rows.Err()
}

// AddCalibration stores a calibration row
func (s *DatabaseStore) AddCalibration(ctx context.Context, params models.CalibrationParameters) (models.CalibrationParameters, error) {
	query := `
		INSERT INTO sensor_calibrations
			(sensor_id, parameter, offset_value, scale_factor, last_calibrated_at, next_calibration_at, formula)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		params.SensorID, params.Parameter, params.Offset, params.ScaleFactor,
		nullableTime(params.LastCalibratedAt), nullableTime(params.NextCalibrationAt), params.Formula).
		Scan(&params.ID, &params.CreatedAt)
	if err != nil {
		return models.CalibrationParameters{}, fmt.Errorf("failed to store calibration: %w", err)
	}

	return params, nil
}

// GetLatestCalibration returns the most recently created calibration row for
// a sensor, or nil if the sensor has none. Query errors are returned so the
// pipeline can distinguish absence from a real lookup failure.
func (s *DatabaseStore) GetLatestCalibration(ctx context.Context, sensorID int) (*models.CalibrationParameters, error) {
	query := `
		SELECT id, sensor_id, parameter, offset_value, scale_factor,
			COALESCE(last_calibrated_at, '0001-01-01T00:00:00Z'::timestamptz),
			COALESCE(next_calibration_at, '0001-01-01T00:00:00Z'::timestamptz),
			COALESCE(formula, ''), created_at
		FROM sensor_calibrations
		WHERE sensor_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var params models.CalibrationParameters
	err := s.db.QueryRowContext(ctx, query, sensorID).Scan(
		&params.ID, &params.SensorID, &params.Parameter, &params.Offset, &params.ScaleFactor,
		&params.LastCalibratedAt, &params.NextCalibrationAt, &params.Formula, &params.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calibration for sensor %d: %w", sensorID, err)
	}

	return &params, nil
}

// ListCalibrations returns all calibration rows for a sensor, newest first
func (s *DatabaseStore) ListCalibrations(ctx context.Context, sensorID int) ([]models.CalibrationParameters, error) {
	query := `
		SELECT id, sensor_id, parameter, offset_value, scale_factor,
			COALESCE(last_calibrated_at, '0001-01-01T00:00:00Z'::timestamptz),
			COALESCE(next_calibration_at, '0001-01-01T00:00:00Z'::timestamptz),
			COALESCE(formula, ''), created_at
		FROM sensor_calibrations
		WHERE sensor_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, sensorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calibrations for sensor %d: %w", sensorID, err)
	}
	defer rows.Close()

	var result []models.CalibrationParameters
	for rows.Next() {
		var params models.CalibrationParameters
		err := rows.Scan(
			&params.ID, &params.SensorID, &params.Parameter, &params.Offset, &params.ScaleFactor,
			&params.LastCalibratedAt, &params.NextCalibrationAt, &params.Formula, &params.CreatedAt)
		if err != nil {
			log.Printf("⚠️  Warning: Error scanning calibration row: %v", err)
			continue
		}
		result = append(result, params)
	}

	return result, rows.Err()
}

// nullableTime maps the zero time to SQL NULL
func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
