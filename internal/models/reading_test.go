package models

import (
	"math"
	"testing"
	"time"
)

func TestQualityBand(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"Perfect score", 1.0, "good"},
		{"Good boundary", 0.8, "good"},
		{"Fair", 0.65, "fair"},
		{"Fair boundary", 0.5, "fair"},
		{"Poor", 0.49, "poor"},
		{"Zero", 0, "poor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProcessedReading{QualityScore: tt.score}
			if got := p.QualityBand(); got != tt.want {
				t.Errorf("Expected band %q for score %v, got %q", tt.want, tt.score, got)
			}
		})
	}
}

func TestSedimentBand(t *testing.T) {
	tests := []struct {
		name  string
		level float64
		want  string
	}{
		{"High", 51, "high"},
		{"Boundary stays moderate", 50, "moderate"},
		{"Moderate", 30, "moderate"},
		{"Boundary stays low", 20, "low"},
		{"Low", 5, "low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProcessedReading{SedimentLevel: tt.level}
			if got := p.SedimentBand(); got != tt.want {
				t.Errorf("Expected band %q for level %v, got %q", tt.want, tt.level, got)
			}
		})
	}
}

func TestToSedimentStatus(t *testing.T) {
	now := time.Now()
	p := ProcessedReading{
		SensorID:        7,
		ProcessedAt:     now,
		CalibratedDepth: 130.2,
		SedimentLevel:   22.5,
		QualityScore:    0.92,
		IsOutlier:       true,
	}

	status := p.ToSedimentStatus()

	if status.SensorID != 7 {
		t.Errorf("Expected sensor id 7, got %d", status.SensorID)
	}
	if !status.ProcessedAt.Equal(now) {
		t.Errorf("Expected processed time to carry over")
	}
	if status.SedimentBand != "moderate" {
		t.Errorf("Expected moderate band, got %q", status.SedimentBand)
	}
	if status.QualityBand != "good" {
		t.Errorf("Expected good band, got %q", status.QualityBand)
	}
	if !status.IsOutlier {
		t.Error("Expected outlier flag to carry over")
	}
}

func TestRawReadingIsFinite(t *testing.T) {
	reading := RawReading{
		Depth:          120.5,
		Turbidity:      8.2,
		Temperature:    16.1,
		Voltage:        12.0,
		BatteryLevel:   85,
		SignalStrength: 90,
	}
	if !reading.IsFinite() {
		t.Error("Expected finite reading to pass")
	}

	reading.Depth = math.NaN()
	if reading.IsFinite() {
		t.Error("Expected NaN depth to fail")
	}

	reading.Depth = 120.5
	reading.SignalStrength = math.Inf(1)
	if reading.IsFinite() {
		t.Error("Expected infinite signal strength to fail")
	}
}
