package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/store"
)

// stubIngester records the last raw reading and returns a canned result
type stubIngester struct {
	lastRaw models.RawReading
	result  models.ProcessedReading
	err     error
}

func (s *stubIngester) IngestReading(ctx context.Context, raw models.RawReading) (models.ProcessedReading, error) {
	s.lastRaw = raw
	if s.err != nil {
		return models.ProcessedReading{}, s.err
	}
	result := s.result
	result.SensorID = raw.SensorID
	return result, nil
}

func newTestHandlers(t *testing.T) (*Handlers, *store.Store, *stubIngester) {
	t.Helper()
	dataStore := store.NewStore(100)
	ingester := &stubIngester{
		result: models.ProcessedReading{ProcessingMethod: "moving_average", QualityScore: 1.0},
	}
	return NewHandlers(dataStore, ingester), dataStore, ingester
}

func TestGetLatestReadings_Empty(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	req := httptest.NewRequest("GET", "/api/v1/readings/latest?sensor_id=3", nil)
	rec := httptest.NewRecorder()

	handlers.GetLatestReadings(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestGetLatestReadings_BySensor(t *testing.T) {
	handlers, dataStore, _ := newTestHandlers(t)

	_, err := dataStore.AddProcessedReading(context.Background(), models.ProcessedReading{
		SensorID:        3,
		CalibratedDepth: 123.4,
		QualityScore:    0.9,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/readings/latest?sensor_id=3", nil)
	rec := httptest.NewRecorder()

	handlers.GetLatestReadings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response struct {
		Success bool                    `json:"success"`
		Data    models.ProcessedReading `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !response.Success {
		t.Error("Expected success response")
	}
	if response.Data.CalibratedDepth != 123.4 {
		t.Errorf("Expected calibrated depth 123.4, got %v", response.Data.CalibratedDepth)
	}
}

func TestGetLatestReadings_InvalidSensorID(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	req := httptest.NewRequest("GET", "/api/v1/readings/latest?sensor_id=abc", nil)
	rec := httptest.NewRecorder()

	handlers.GetLatestReadings(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestAddStationReading(t *testing.T) {
	handlers, _, ingester := newTestHandlers(t)

	body := `{"sensor_id": 5, "depth": 120.5, "turbidity": 8.2, "temperature": 16.1, "voltage": 12.0, "battery_level": 85, "signal_strength": 90}`
	req := httptest.NewRequest("POST", "/api/v1/readings/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handlers.AddStationReading(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ingester.lastRaw.SensorID != 5 {
		t.Errorf("Expected ingested sensor id 5, got %d", ingester.lastRaw.SensorID)
	}
	if ingester.lastRaw.Depth != 120.5 {
		t.Errorf("Expected ingested depth 120.5, got %v", ingester.lastRaw.Depth)
	}
}

func TestAddStationReading_MissingSensorID(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	body := `{"depth": 120.5}`
	req := httptest.NewRequest("POST", "/api/v1/readings/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handlers.AddStationReading(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestAddStationReading_InvalidBody(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	req := httptest.NewRequest("POST", "/api/v1/readings/", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	handlers.AddStationReading(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateCalibration(t *testing.T) {
	handlers, dataStore, _ := newTestHandlers(t)

	body := `{"sensor_id": 2, "offset": 1.5, "scale_factor": 0.98}`
	req := httptest.NewRequest("POST", "/api/v1/calibrations/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handlers.CreateCalibration(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := dataStore.GetLatestCalibration(context.Background(), 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatal("Expected calibration to be stored")
	}
	if stored.Offset != 1.5 || stored.ScaleFactor != 0.98 {
		t.Errorf("Unexpected stored calibration: %+v", stored)
	}
	if stored.Parameter != models.CalibrationParameterDepth {
		t.Errorf("Expected depth parameter, got %q", stored.Parameter)
	}
}

func TestCreateCalibration_ZeroScale(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	body := `{"sensor_id": 2, "offset": 1.5, "scale_factor": 0}`
	req := httptest.NewRequest("POST", "/api/v1/calibrations/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handlers.CreateCalibration(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetSedimentStatus(t *testing.T) {
	handlers, dataStore, _ := newTestHandlers(t)

	_, err := dataStore.AddProcessedReading(context.Background(), models.ProcessedReading{
		SensorID:      4,
		SedimentLevel: 55,
		QualityScore:  0.9,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/readings/quality?sensor_id=4", nil)
	rec := httptest.NewRecorder()

	handlers.GetSedimentStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response struct {
		Data models.SedimentStatus `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Data.SedimentBand != "high" {
		t.Errorf("Expected high sediment band, got %q", response.Data.SedimentBand)
	}
	if response.Data.QualityBand != "good" {
		t.Errorf("Expected good quality band, got %q", response.Data.QualityBand)
	}
}

func TestGetReadingsInRange_Validation(t *testing.T) {
	handlers, _, _ := newTestHandlers(t)

	// Missing parameters
	req := httptest.NewRequest("GET", "/api/v1/readings/history", nil)
	rec := httptest.NewRecorder()
	handlers.GetReadingsInRange(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing params, got %d", rec.Code)
	}

	// End before start
	start := time.Now().Format(time.RFC3339)
	end := time.Now().Add(-time.Hour).Format(time.RFC3339)
	req = httptest.NewRequest("GET", "/api/v1/readings/history?start="+start+"&end="+end, nil)
	rec = httptest.NewRecorder()
	handlers.GetReadingsInRange(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for inverted range, got %d", rec.Code)
	}
}

func TestGetSystemStats(t *testing.T) {
	handlers, dataStore, _ := newTestHandlers(t)

	_, err := dataStore.AddProcessedReading(context.Background(), models.ProcessedReading{SensorID: 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	rec := httptest.NewRecorder()

	handlers.GetSystemStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Data["active_stations"].(float64) != 1 {
		t.Errorf("Expected 1 active station, got %v", response.Data["active_stations"])
	}
}
