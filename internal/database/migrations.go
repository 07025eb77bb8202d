package database

import (
	"database/sql"
	"fmt"
	"log"
)

// CreateTables creates all necessary tables for the HydroTrack system
func CreateTables(db *sql.DB) error {
	log.Println("Creating database tables...")

	// Raw station samples before smoothing/calibration
	rawReadingsTable := `
	CREATE TABLE IF NOT EXISTS raw_readings (
		id BIGSERIAL PRIMARY KEY,
		sensor_id INTEGER NOT NULL,
		depth DECIMAL(12,4) NOT NULL,
		turbidity DECIMAL(12,4) NOT NULL,
		temperature DECIMAL(8,3) NOT NULL,
		voltage DECIMAL(8,3) NOT NULL,
		battery_level DECIMAL(6,2) NOT NULL CHECK (battery_level >= 0 AND battery_level <= 100),
		signal_strength DECIMAL(6,2) NOT NULL CHECK (signal_strength >= 0 AND signal_strength <= 100),
		captured_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);`

	if _, err := db.Exec(rawReadingsTable); err != nil {
		return fmt.Errorf("failed to create raw_readings table: %w", err)
	}

	// Pipeline output, one row per raw reading
	processedReadingsTable := `
	CREATE TABLE IF NOT EXISTS processed_readings (
		id BIGSERIAL PRIMARY KEY,
		raw_reading_id BIGINT NOT NULL REFERENCES raw_readings(id),
		sensor_id INTEGER NOT NULL,
		calibrated_depth DECIMAL(12,4) NOT NULL,
		smoothed_turbidity DECIMAL(12,4) NOT NULL,
		smoothed_temperature DECIMAL(8,3) NOT NULL,
		sediment_level DECIMAL(12,4) NOT NULL,
		quality_score DECIMAL(4,3) NOT NULL CHECK (quality_score >= 0 AND quality_score <= 1),
		is_outlier BOOLEAN NOT NULL DEFAULT false,
		processing_method VARCHAR(50) NOT NULL DEFAULT 'moving_average',
		processed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);`

	if _, err := db.Exec(processedReadingsTable); err != nil {
		return fmt.Errorf("failed to create processed_readings table: %w", err)
	}

	// Calibration rows are written by the external calibration workflow and
	// never updated; the newest row per sensor is the active calibration
	calibrationsTable := `
	CREATE TABLE IF NOT EXISTS sensor_calibrations (
		id BIGSERIAL PRIMARY KEY,
		sensor_id INTEGER NOT NULL,
		parameter VARCHAR(50) NOT NULL DEFAULT 'depth',
		offset_value DECIMAL(12,6) NOT NULL DEFAULT 0,
		scale_factor DECIMAL(12,6) NOT NULL DEFAULT 1,
		last_calibrated_at TIMESTAMP WITH TIME ZONE,
		next_calibration_at TIMESTAMP WITH TIME ZONE,
		formula TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);`

	if _, err := db.Exec(calibrationsTable); err != nil {
		return fmt.Errorf("failed to create sensor_calibrations table: %w", err)
	}

	// Per-station bookkeeping updated on every ingest
	stationStatusTable := `
	CREATE TABLE IF NOT EXISTS station_status (
		id SERIAL PRIMARY KEY,
		sensor_id INTEGER UNIQUE NOT NULL,
		last_seen TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		is_active BOOLEAN DEFAULT true,
		total_readings INTEGER DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`

	if _, err := db.Exec(stationStatusTable); err != nil {
		return fmt.Errorf("failed to create station_status table: %w", err)
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_raw_readings_sensor_captured ON raw_readings(sensor_id, captured_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_processed_readings_sensor_processed ON processed_readings(sensor_id, processed_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_processed_readings_outlier ON processed_readings(is_outlier) WHERE is_outlier;",
		"CREATE INDEX IF NOT EXISTS idx_sensor_calibrations_sensor_created ON sensor_calibrations(sensor_id, created_at DESC);",
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
		}
	}

	log.Println("✅ Database tables created successfully")
	return nil
}

// DropTables drops all tables (useful for testing)
func DropTables(db *sql.DB) error {
	log.Println("Dropping database tables...")

	tables := []string{
		"processed_readings",
		"raw_readings",
		"sensor_calibrations",
		"station_status",
	}

	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", table)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	log.Println("✅ Database tables dropped successfully")
	return nil
}

// CheckTablesExist checks if all required tables exist
func CheckTablesExist(db *sql.DB) error {
	requiredTables := []string{
		"raw_readings",
		"processed_readings",
		"sensor_calibrations",
		"station_status",
	}

	for _, table := range requiredTables {
		var exists bool
		query := `SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		);`

		err := db.QueryRow(query, table).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}

		if !exists {
			return fmt.Errorf("table %s does not exist", table)
		}
	}

	log.Println("✅ All required tables exist")
	return nil
}
