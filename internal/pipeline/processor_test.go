package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/calibration"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
)

// failingResolver simulates a transient calibration store failure
type failingResolver struct {
	err error
}

func (r *failingResolver) Resolve(_ context.Context, _ int) (models.CalibrationParameters, error) {
	return models.CalibrationParameters{}, r.err
}

func rawReading(sensorID int, depth float64) models.RawReading {
	return models.RawReading{
		SensorID:       sensorID,
		Depth:          depth,
		Turbidity:      2.0,
		Temperature:    18.0,
		Voltage:        12.0,
		BatteryLevel:   90,
		SignalStrength: 95,
	}
}

func TestProcessor_FirstSampleDefaultCalibration(t *testing.T) {
	// Fresh filters, default calibration, perfect device health:
	// calibrated depth equals raw depth, quality is 1.0, no outlier
	processor := NewProcessor(calibration.NewStaticResolver())

	raw := models.RawReading{
		SensorID:       1,
		Depth:          100,
		Turbidity:      5,
		Temperature:    20,
		BatteryLevel:   100,
		SignalStrength: 100,
	}

	processed, err := processor.Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if processed.CalibratedDepth != 100 {
		t.Errorf("Expected calibrated depth 100, got %v", processed.CalibratedDepth)
	}
	if processed.QualityScore != 1.0 {
		t.Errorf("Expected quality score 1.0, got %v", processed.QualityScore)
	}
	if processed.IsOutlier {
		t.Error("Expected first sample not to be flagged as outlier")
	}
	if processed.ProcessingMethod != "moving_average" {
		t.Errorf("Expected processing method 'moving_average', got %q", processed.ProcessingMethod)
	}
}

func TestProcessor_CalibrationApplied(t *testing.T) {
	resolver := calibration.NewStaticResolver()
	resolver.Set(7, models.CalibrationParameters{
		Parameter:   models.CalibrationParameterDepth,
		Offset:      1.5,
		ScaleFactor: 2.0,
	})
	processor := NewProcessor(resolver)

	processed, err := processor.Process(context.Background(), rawReading(7, 10))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// First sample: smoothed == raw == 10, so 10*2 + 1.5
	if math.Abs(processed.CalibratedDepth-21.5) > 1e-12 {
		t.Errorf("Expected calibrated depth 21.5, got %v", processed.CalibratedDepth)
	}
}

func TestProcessor_SedimentLevelFormula(t *testing.T) {
	processor := NewProcessor(calibration.NewStaticResolver())

	raw := rawReading(1, 40)
	raw.Turbidity = 25

	processed, err := processor.Process(context.Background(), raw)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := 0.8*25 + 0.2*40
	if processed.SedimentLevel != want {
		t.Errorf("Expected sediment level %v, got %v", want, processed.SedimentLevel)
	}
}

func TestProcessor_QualityScoreCappedAtOne(t *testing.T) {
	processor := NewProcessor(calibration.NewStaticResolver())

	tests := []struct {
		name    string
		signal  float64
		battery float64
		want    float64
	}{
		{"Perfect health", 100, 100, 1.0},
		{"Both above 100 capped", 150, 200, 1.0},
		{"Weighted combination", 50, 100, 0.7*0.5 + 0.3*1.0},
		{"Dead battery", 100, 0, 0.7},
		{"Zero everything", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawReading(1, 10)
			raw.SignalStrength = tt.signal
			raw.BatteryLevel = tt.battery

			processed, err := processor.Process(context.Background(), raw)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if math.Abs(processed.QualityScore-tt.want) > 1e-12 {
				t.Errorf("Expected quality score %v, got %v", tt.want, processed.QualityScore)
			}
			if processed.QualityScore < 0 || processed.QualityScore > 1 {
				t.Errorf("Quality score %v outside [0,1]", processed.QualityScore)
			}
		})
	}
}

func TestProcessor_FilterStatePersistsAcrossCalls(t *testing.T) {
	processor := NewProcessor(calibration.NewStaticResolver())
	ctx := context.Background()

	// Ramp sequence through the window-5 depth filter
	inputs := []float64{10, 12, 14, 16, 18}
	expected := []float64{10, 11, 12, 13, 14}

	for i, depth := range inputs {
		processed, err := processor.Process(ctx, rawReading(3, depth))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if math.Abs(processed.CalibratedDepth-expected[i]) > 1e-12 {
			t.Errorf("Reading %d: expected smoothed depth %v, got %v", i+1, expected[i], processed.CalibratedDepth)
		}
	}
}

func TestProcessor_FiltersIndependentPerSensor(t *testing.T) {
	processor := NewProcessor(calibration.NewStaticResolver())
	ctx := context.Background()

	processor.Process(ctx, rawReading(1, 100))
	processed, err := processor.Process(ctx, rawReading(2, 10))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Sensor 2's fresh filter must not see sensor 1's samples
	if processed.CalibratedDepth != 10 {
		t.Errorf("Expected smoothed depth 10 for fresh sensor, got %v", processed.CalibratedDepth)
	}
	if processor.ActiveFilterCount() != 2 {
		t.Errorf("Expected 2 active filter sets, got %d", processor.ActiveFilterCount())
	}
}

func TestProcessor_SuddenSpikeNotFlaggedByTwoPointTest(t *testing.T) {
	// After five stable readings of 10 the smoothed depth stays near 10.
	// A jump to 1000 gives a two-point sample [~10, 1000] whose z-score is
	// about 1, so the reading is not flagged. This insensitivity is part of
	// the pipeline's contract.
	processor := NewProcessor(calibration.NewStaticResolver())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := processor.Process(ctx, rawReading(1, 10)); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	processed, err := processor.Process(ctx, rawReading(1, 1000))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if processed.IsOutlier {
		t.Error("Expected spike not to be flagged by the two-point test")
	}
}

func TestProcessor_ZeroDeviationNeverFlagged(t *testing.T) {
	processor := NewProcessor(calibration.NewStaticResolver())
	ctx := context.Background()

	for _, depth := range []float64{0, -50, 12.5, 1e6} {
		processor.ResetFilters(1)
		processed, err := processor.Process(ctx, rawReading(1, depth))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		// First sample: smoothed == raw, stddev is 0
		if processed.IsOutlier {
			t.Errorf("Depth %v: expected no outlier flag when smoothed equals raw", depth)
		}
	}
}

func TestProcessor_CalibrationErrorPropagates(t *testing.T) {
	lookupErr := errors.New("connection refused")
	processor := NewProcessor(&failingResolver{err: lookupErr})

	_, err := processor.Process(context.Background(), rawReading(1, 10))
	if err == nil {
		t.Fatal("Expected error from failing resolver")
	}
	if !errors.Is(err, lookupErr) {
		t.Errorf("Expected wrapped lookup error, got %v", err)
	}

	// A failed lookup must not leave partial filter state behind
	if processor.ActiveFilterCount() != 0 {
		t.Errorf("Expected no filter state after failed lookup, got %d", processor.ActiveFilterCount())
	}
}

func TestProcessor_ResetFilters(t *testing.T) {
	processor := NewProcessor(calibration.NewStaticResolver())
	ctx := context.Background()

	processor.Process(ctx, rawReading(1, 50))
	processor.ResetFilters(1)

	processed, err := processor.Process(ctx, rawReading(1, 10))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if processed.CalibratedDepth != 10 {
		t.Errorf("Expected fresh filter after reset, got smoothed depth %v", processed.CalibratedDepth)
	}
}
