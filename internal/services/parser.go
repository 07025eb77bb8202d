package services

import (
	"encoding/json"
	"fmt"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
)

// TelemetryParser handles parsing of station telemetry from various sources
type TelemetryParser struct{}

// NewTelemetryParser creates a new instance of TelemetryParser
func NewTelemetryParser() *TelemetryParser {
	return &TelemetryParser{}
}

// ParseTelemetryJSON parses a JSON payload from a monitoring station
func (tp *TelemetryParser) ParseTelemetryJSON(payload []byte, sensorID int) (*models.RawReading, error) {
	var data models.TelemetryData

	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to parse telemetry JSON: %w", err)
	}

	reading := &models.RawReading{
		SensorID:       sensorID,
		Depth:          data.Depth,
		Turbidity:      data.Turbidity,
		Temperature:    data.Temperature,
		Voltage:        data.Voltage,
		BatteryLevel:   data.BatteryLevel,
		SignalStrength: data.SignalStrength,
	}

	if !reading.IsFinite() {
		return nil, fmt.Errorf("telemetry contains non-finite values: depth=%v turbidity=%v temperature=%v",
			reading.Depth, reading.Turbidity, reading.Temperature)
	}

	return reading, nil
}

// ParseTelemetryString parses comma-separated telemetry values (fallback format)
// Expected format: "depth,turbidity,temperature,voltage,battery,signal"
func (tp *TelemetryParser) ParseTelemetryString(payload string, sensorID int) (*models.RawReading, error) {
	var depth, turbidity, temperature, voltage, battery, signal float64

	n, err := fmt.Sscanf(payload, "%f,%f,%f,%f,%f,%f",
		&depth, &turbidity, &temperature, &voltage, &battery, &signal)
	if err != nil || n != 6 {
		return nil, fmt.Errorf("failed to parse telemetry string: expected 6 values (depth,turbidity,temperature,voltage,battery,signal), got %d", n)
	}

	reading := &models.RawReading{
		SensorID:       sensorID,
		Depth:          depth,
		Turbidity:      turbidity,
		Temperature:    temperature,
		Voltage:        voltage,
		BatteryLevel:   battery,
		SignalStrength: signal,
	}

	if !reading.IsFinite() {
		return nil, fmt.Errorf("telemetry contains non-finite values: depth=%v turbidity=%v temperature=%v",
			reading.Depth, reading.Turbidity, reading.Temperature)
	}

	return reading, nil
}

// FormatRawReading formats a raw reading for logging or debugging
func (tp *TelemetryParser) FormatRawReading(reading *models.RawReading) string {
	return fmt.Sprintf("Sensor: %d, Time: %s, Depth: %.2f cm, Turbidity: %.2f NTU, Temp: %.2f °C, Battery: %.0f%%, Signal: %.0f%%",
		reading.SensorID,
		reading.CapturedAt.Format("2006-01-02 15:04:05"),
		reading.Depth,
		reading.Turbidity,
		reading.Temperature,
		reading.BatteryLevel,
		reading.SignalStrength)
}
