package services

import (
	"strings"
	"testing"
)

func TestParseTelemetryJSON(t *testing.T) {
	parser := NewTelemetryParser()

	payload := []byte(`{"depth": 123.4, "turbidity": 8.2, "temperature": 16.5, "voltage": 12.1, "battery_level": 87, "signal_strength": 92}`)
	reading, err := parser.ParseTelemetryJSON(payload, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if reading.SensorID != 4 {
		t.Errorf("Expected sensor id 4, got %d", reading.SensorID)
	}
	if reading.Depth != 123.4 {
		t.Errorf("Expected depth 123.4, got %v", reading.Depth)
	}
	if reading.SignalStrength != 92 {
		t.Errorf("Expected signal strength 92, got %v", reading.SignalStrength)
	}
}

func TestParseTelemetryJSON_Invalid(t *testing.T) {
	parser := NewTelemetryParser()

	if _, err := parser.ParseTelemetryJSON([]byte(`not json`), 1); err == nil {
		t.Error("Expected error for malformed JSON")
	}

	// NaN is not valid JSON, but Infinity-like overflow can arrive as a
	// huge exponent; non-finite values must be rejected
	if _, err := parser.ParseTelemetryJSON([]byte(`{"depth": 1e999}`), 1); err == nil {
		t.Error("Expected error for non-finite depth")
	}
}

func TestParseTelemetryString(t *testing.T) {
	parser := NewTelemetryParser()

	reading, err := parser.ParseTelemetryString("123.4,8.2,16.5,12.1,87,92", 7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if reading.SensorID != 7 || reading.Depth != 123.4 || reading.BatteryLevel != 87 {
		t.Errorf("Unexpected parsed reading: %+v", reading)
	}
}

func TestParseTelemetryString_TooFewValues(t *testing.T) {
	parser := NewTelemetryParser()

	if _, err := parser.ParseTelemetryString("1,2,3", 1); err == nil {
		t.Error("Expected error for short payload")
	}
}

func TestFormatRawReading(t *testing.T) {
	parser := NewTelemetryParser()

	reading, err := parser.ParseTelemetryString("10,2,15,12,90,95", 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	formatted := parser.FormatRawReading(reading)
	if !strings.Contains(formatted, "Sensor: 3") {
		t.Errorf("Expected formatted string to name the sensor, got %q", formatted)
	}
}
