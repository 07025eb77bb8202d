package models

import (
	"math"
	"time"
)

// RawReading represents one unprocessed sample reported by a monitoring station
type RawReading struct {
	ID             int64     `json:"id"`
	SensorID       int       `json:"sensor_id"`
	Depth          float64   `json:"depth"`
	Turbidity      float64   `json:"turbidity"`
	Temperature    float64   `json:"temperature"`
	Voltage        float64   `json:"voltage"`
	BatteryLevel   float64   `json:"battery_level"`
	SignalStrength float64   `json:"signal_strength"`
	CapturedAt     time.Time `json:"captured_at"`
}

// TelemetryData represents the raw JSON structure received from a station
type TelemetryData struct {
	Depth          float64 `json:"depth"`
	Turbidity      float64 `json:"turbidity"`
	Temperature    float64 `json:"temperature"`
	Voltage        float64 `json:"voltage"`
	BatteryLevel   float64 `json:"battery_level"`
	SignalStrength float64 `json:"signal_strength"`
}

// ProcessedReading is the pipeline output for exactly one raw reading
type ProcessedReading struct {
	ID                  int64     `json:"id"`
	RawReadingID        int64     `json:"raw_reading_id"`
	SensorID            int       `json:"sensor_id"`
	CalibratedDepth     float64   `json:"calibrated_depth"`
	SmoothedTurbidity   float64   `json:"smoothed_turbidity"`
	SmoothedTemperature float64   `json:"smoothed_temperature"`
	SedimentLevel       float64   `json:"sediment_level"`
	QualityScore        float64   `json:"quality_score"`
	IsOutlier           bool      `json:"is_outlier"`
	ProcessingMethod    string    `json:"processing_method"`
	ProcessedAt         time.Time `json:"processed_at"`
}

// SedimentStatus represents the assessed state of one station, derived from
// its latest processed reading
type SedimentStatus struct {
	SensorID        int       `json:"sensor_id"`
	ProcessedAt     time.Time `json:"processed_at"`
	CalibratedDepth float64   `json:"calibrated_depth"`
	SedimentLevel   float64   `json:"sediment_level"`
	SedimentBand    string    `json:"sediment_band"`
	QualityScore    float64   `json:"quality_score"`
	QualityBand     string    `json:"quality_band"`
	IsOutlier       bool      `json:"is_outlier"`
}

// IsFinite reports whether every numeric field of the reading is a finite float
func (r *RawReading) IsFinite() bool {
	for _, v := range []float64{r.Depth, r.Turbidity, r.Temperature, r.Voltage, r.BatteryLevel, r.SignalStrength} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// QualityBand returns the reading's quality band based on its quality score
func (p *ProcessedReading) QualityBand() string {
	switch {
	case p.QualityScore >= 0.8:
		return "good"
	case p.QualityScore >= 0.5:
		return "fair"
	default:
		return "poor"
	}
}

// SedimentBand returns the sediment band based on the derived sediment level
func (p *ProcessedReading) SedimentBand() string {
	switch {
	case p.SedimentLevel > 50:
		return "high"
	case p.SedimentLevel > 20:
		return "moderate"
	default:
		return "low"
	}
}

// ToSedimentStatus converts a ProcessedReading to a SedimentStatus assessment
func (p *ProcessedReading) ToSedimentStatus() SedimentStatus {
	return SedimentStatus{
		SensorID:        p.SensorID,
		ProcessedAt:     p.ProcessedAt,
		CalibratedDepth: p.CalibratedDepth,
		SedimentLevel:   p.SedimentLevel,
		SedimentBand:    p.SedimentBand(),
		QualityScore:    p.QualityScore,
		QualityBand:     p.QualityBand(),
		IsOutlier:       p.IsOutlier,
	}
}
