package calibration

import (
	"context"
	"sync"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
)

// Source supplies stored calibration rows for a sensor. The latest row (by
// creation time) is the active calibration; a nil row with a nil error means
// the sensor has never been calibrated.
type Source interface {
	GetLatestCalibration(ctx context.Context, sensorID int) (*models.CalibrationParameters, error)
}

// Resolver resolves the active calibration parameters for a sensor
type Resolver interface {
	Resolve(ctx context.Context, sensorID int) (models.CalibrationParameters, error)
}

// StoreResolver resolves calibration from a backing store, substituting the
// identity calibration when the sensor has no rows. Real lookup failures are
// propagated unchanged so the caller can decide retry policy.
type StoreResolver struct {
	source Source
}

// NewStoreResolver creates a resolver backed by a calibration source
func NewStoreResolver(source Source) *StoreResolver {
	return &StoreResolver{source: source}
}

// Resolve returns the most recent calibration row for the sensor, or the
// identity calibration if none exists
func (r *StoreResolver) Resolve(ctx context.Context, sensorID int) (models.CalibrationParameters, error) {
	params, err := r.source.GetLatestCalibration(ctx, sensorID)
	if err != nil {
		return models.CalibrationParameters{}, err
	}
	if params == nil {
		return models.DefaultCalibration(sensorID), nil
	}
	return *params, nil
}

// StaticResolver serves calibration from a fixed in-memory table, for tests
// and tooling that run without a store
type StaticResolver struct {
	mu     sync.RWMutex
	params map[int]models.CalibrationParameters
}

// NewStaticResolver creates an empty static resolver
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{
		params: make(map[int]models.CalibrationParameters),
	}
}

// Set registers calibration parameters for a sensor
func (r *StaticResolver) Set(sensorID int, params models.CalibrationParameters) {
	r.mu.Lock()
	defer r.mu.Unlock()

	params.SensorID = sensorID
	r.params[sensorID] = params
}

// Resolve returns the registered parameters for the sensor, or the identity
// calibration if none were registered
func (r *StaticResolver) Resolve(_ context.Context, sensorID int) (models.CalibrationParameters, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if params, ok := r.params[sensorID]; ok {
		return params, nil
	}
	return models.DefaultCalibration(sensorID), nil
}
