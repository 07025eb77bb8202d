package calibration

import (
	"context"
	"errors"
	"testing"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
)

// fakeSource is a calibration source with canned rows and an optional failure
type fakeSource struct {
	rows map[int]*models.CalibrationParameters
	err  error
}

func (s *fakeSource) GetLatestCalibration(_ context.Context, sensorID int) (*models.CalibrationParameters, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows[sensorID], nil
}

func TestStoreResolver_DefaultsWhenNoRows(t *testing.T) {
	resolver := NewStoreResolver(&fakeSource{rows: map[int]*models.CalibrationParameters{}})

	params, err := resolver.Resolve(context.Background(), 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if params.Offset != 0 || params.ScaleFactor != 1 {
		t.Errorf("Expected identity calibration, got offset=%v scale=%v", params.Offset, params.ScaleFactor)
	}
	if params.SensorID != 5 {
		t.Errorf("Expected sensor id 5, got %d", params.SensorID)
	}
}

func TestStoreResolver_ReturnsStoredRow(t *testing.T) {
	source := &fakeSource{
		rows: map[int]*models.CalibrationParameters{
			3: {SensorID: 3, Parameter: models.CalibrationParameterDepth, Offset: -0.4, ScaleFactor: 1.02},
		},
	}
	resolver := NewStoreResolver(source)

	params, err := resolver.Resolve(context.Background(), 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if params.Offset != -0.4 || params.ScaleFactor != 1.02 {
		t.Errorf("Expected stored row, got offset=%v scale=%v", params.Offset, params.ScaleFactor)
	}
}

func TestStoreResolver_PropagatesLookupError(t *testing.T) {
	// A real I/O failure must not be masked by the identity default
	lookupErr := errors.New("connection reset")
	resolver := NewStoreResolver(&fakeSource{err: lookupErr})

	_, err := resolver.Resolve(context.Background(), 1)
	if !errors.Is(err, lookupErr) {
		t.Errorf("Expected lookup error to propagate unchanged, got %v", err)
	}
}

func TestStaticResolver(t *testing.T) {
	resolver := NewStaticResolver()
	resolver.Set(2, models.CalibrationParameters{Offset: 1, ScaleFactor: 3})

	params, err := resolver.Resolve(context.Background(), 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if params.Offset != 1 || params.ScaleFactor != 3 {
		t.Errorf("Expected registered params, got %+v", params)
	}

	params, err = resolver.Resolve(context.Background(), 99)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if params.Offset != 0 || params.ScaleFactor != 1 {
		t.Errorf("Expected identity default for unknown sensor, got %+v", params)
	}
}
