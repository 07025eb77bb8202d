package models

import (
	"time"
)

// CalibrationParameter is the physical parameter a calibration row applies to
const CalibrationParameterDepth = "depth"

// CalibrationParameters holds the per-sensor offset/scale correction produced
// by the external calibration workflow. Rows are immutable once written; the
// most recently created row for a sensor is the active one.
type CalibrationParameters struct {
	ID                int64     `json:"id"`
	SensorID          int       `json:"sensor_id"`
	Parameter         string    `json:"parameter"`
	Offset            float64   `json:"offset"`
	ScaleFactor       float64   `json:"scale_factor"`
	LastCalibratedAt  time.Time `json:"last_calibrated_at"`
	NextCalibrationAt time.Time `json:"next_calibration_at"`
	Formula           string    `json:"formula,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// DefaultCalibration returns the identity calibration (offset 0, scale 1)
// used when a sensor has no calibration rows
func DefaultCalibration(sensorID int) CalibrationParameters {
	return CalibrationParameters{
		SensorID:    sensorID,
		Parameter:   CalibrationParameterDepth,
		Offset:      0,
		ScaleFactor: 1,
	}
}

// Apply converts a smoothed value to calibrated units
func (c *CalibrationParameters) Apply(value float64) float64 {
	return value*c.ScaleFactor + c.Offset
}
