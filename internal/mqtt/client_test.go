package mqtt

import (
	"testing"
)

func TestSensorIDFromTopic(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		want    int
		wantErr bool
	}{
		{"Standard telemetry topic", "hydrotrack/stations/42/raw", 42, false},
		{"Single digit", "hydrotrack/stations/1/raw", 1, false},
		{"Non-numeric id", "hydrotrack/stations/abc/raw", 0, true},
		{"Zero id rejected", "hydrotrack/stations/0/raw", 0, true},
		{"Negative id rejected", "hydrotrack/stations/-3/raw", 0, true},
		{"Too short", "raw", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sensorIDFromTopic(tt.topic)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for topic %q", tt.topic)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected sensor id %d, got %d", tt.want, got)
			}
		})
	}
}
