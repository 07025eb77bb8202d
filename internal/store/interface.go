package store

import (
	"context"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
)

// DataStore defines the interface for reading and calibration storage
type DataStore interface {
	// Health check
	Ping() error

	// Raw readings
	AddRawReading(ctx context.Context, reading models.RawReading) (models.RawReading, error)
	GetRawReading(ctx context.Context, id int64) (*models.RawReading, error)

	// Processed readings
	AddProcessedReading(ctx context.Context, reading models.ProcessedReading) (models.ProcessedReading, error)
	GetLatestProcessed(ctx context.Context, sensorID int) (*models.ProcessedReading, error)
	GetAllLatestProcessed(ctx context.Context) (map[int]models.ProcessedReading, error)
	GetRecentProcessed(ctx context.Context, sensorID int, limit int) ([]models.ProcessedReading, error)
	GetProcessedInRange(ctx context.Context, sensorID int, start, end time.Time) ([]models.ProcessedReading, error)
	GetReadingCount(ctx context.Context) (int, error)
	GetActiveSensors(ctx context.Context) ([]int, error)

	// Calibration rows; GetLatestCalibration returns (nil, nil) when the
	// sensor has no rows
	AddCalibration(ctx context.Context, params models.CalibrationParameters) (models.CalibrationParameters, error)
	GetLatestCalibration(ctx context.Context, sensorID int) (*models.CalibrationParameters, error)
	ListCalibrations(ctx context.Context, sensorID int) ([]models.CalibrationParameters, error)
}
