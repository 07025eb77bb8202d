package pipeline

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/calibration"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
)

// Smoothing window sizes per physical channel
const (
	DepthWindow       = 5
	TurbidityWindow   = 5
	TemperatureWindow = 3
)

// Derived-value weights and thresholds. These are design constants of the
// pipeline, not per-sensor configuration.
const (
	// Sediment level is a fixed linear combination of smoothed turbidity
	// and calibrated depth
	SedimentTurbidityWeight = 0.8
	SedimentDepthWeight     = 0.2

	// Quality score weighs signal strength against battery health, capped at 1
	QualitySignalWeight  = 0.7
	QualityBatteryWeight = 0.3

	// A raw depth further than this many standard deviations from the
	// two-point mean is flagged as an outlier
	OutlierZThreshold = 3.0
)

// ProcessingMethod tags every processed reading produced by this pipeline
const ProcessingMethod = "moving_average"

// channelFilters holds the smoothing state for one station's three channels
type channelFilters struct {
	depth       *MovingAverageFilter
	turbidity   *MovingAverageFilter
	temperature *MovingAverageFilter
}

func newChannelFilters() *channelFilters {
	// Window sizes are compile-time constants > 0, construction cannot fail
	depth, _ := NewMovingAverageFilter(DepthWindow)
	turbidity, _ := NewMovingAverageFilter(TurbidityWindow)
	temperature, _ := NewMovingAverageFilter(TemperatureWindow)

	return &channelFilters{
		depth:       depth,
		turbidity:   turbidity,
		temperature: temperature,
	}
}

// Processor drives raw readings through smoothing, calibration, sediment
// derivation, quality scoring and the outlier test. Filter state is kept per
// sensor per channel for the lifetime of the processor, so the moving average
// accumulates across calls for the same station.
type Processor struct {
	resolver calibration.Resolver

	mu      sync.Mutex
	filters map[int]*channelFilters
}

// NewProcessor creates a processor using the given calibration resolver
func NewProcessor(resolver calibration.Resolver) *Processor {
	return &Processor{
		resolver: resolver,
		filters:  make(map[int]*channelFilters),
	}
}

// Process consumes one raw reading and produces its processed reading.
// The calibration lookup is the only fallible step; its errors (including
// context cancellation) are propagated unchanged and leave the filter state
// untouched.
func (p *Processor) Process(ctx context.Context, raw models.RawReading) (models.ProcessedReading, error) {
	params, err := p.resolver.Resolve(ctx, raw.SensorID)
	if err != nil {
		return models.ProcessedReading{}, fmt.Errorf("calibration lookup for sensor %d: %w", raw.SensorID, err)
	}

	p.mu.Lock()
	filters, ok := p.filters[raw.SensorID]
	if !ok {
		filters = newChannelFilters()
		p.filters[raw.SensorID] = filters
	}

	smoothedDepth := filters.depth.Process(raw.Depth)
	smoothedTurbidity := filters.turbidity.Process(raw.Turbidity)
	smoothedTemperature := filters.temperature.Process(raw.Temperature)
	p.mu.Unlock()

	// Calibration applies to depth only; turbidity and temperature are used
	// smoothed but uncalibrated
	calibratedDepth := params.Apply(smoothedDepth)

	sedimentLevel := SedimentTurbidityWeight*smoothedTurbidity + SedimentDepthWeight*calibratedDepth

	qualityScore := math.Min(1,
		QualitySignalWeight*raw.SignalStrength/100+QualityBatteryWeight*raw.BatteryLevel/100)

	// Two-point spike test: raw depth against the filter's current trend.
	// Equal values give stddev 0 and are never flagged.
	mean, stdDev := MeanStdDev([]float64{smoothedDepth, raw.Depth})
	isOutlier := stdDev > 0 && math.Abs(raw.Depth-mean)/stdDev > OutlierZThreshold

	return models.ProcessedReading{
		RawReadingID:        raw.ID,
		SensorID:            raw.SensorID,
		CalibratedDepth:     calibratedDepth,
		SmoothedTurbidity:   smoothedTurbidity,
		SmoothedTemperature: smoothedTemperature,
		SedimentLevel:       sedimentLevel,
		QualityScore:        qualityScore,
		IsOutlier:           isOutlier,
		ProcessingMethod:    ProcessingMethod,
		ProcessedAt:         time.Now(),
	}, nil
}

// ResetFilters discards the smoothing state for one station, e.g. when its
// monitoring session ends
func (p *Processor) ResetFilters(sensorID int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.filters, sensorID)
}

// ActiveFilterCount returns the number of stations with live filter state
func (p *Processor) ActiveFilterCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.filters)
}
