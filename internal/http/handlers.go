package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/export"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/store"
)

// Ingester runs one raw reading through the processing pipeline and persists
// both the raw and the processed record
type Ingester interface {
	IngestReading(ctx context.Context, raw models.RawReading) (models.ProcessedReading, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	store         store.DataStore
	ingester      Ingester
	exportService *export.ExportService
}

// NewHandlers creates a new handlers instance
func NewHandlers(dataStore store.DataStore, ingester Ingester) *Handlers {
	return &Handlers{
		store:         dataStore,
		ingester:      ingester,
		exportService: export.NewExportService(),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// sendErrorResponse sends a standardized error response
func (h *Handlers) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// sendJSONResponse sends a standardized success response
func (h *Handlers) sendJSONResponse(w http.ResponseWriter, data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// parseSensorID reads the optional sensor_id query parameter. Zero means
// "all sensors".
func parseSensorID(r *http.Request) (int, error) {
	sensorIDStr := r.URL.Query().Get("sensor_id")
	if sensorIDStr == "" {
		return 0, nil
	}

	sensorID, err := strconv.Atoi(sensorIDStr)
	if err != nil || sensorID < 0 {
		return 0, fmt.Errorf("invalid sensor_id %q", sensorIDStr)
	}
	return sensorID, nil
}

// GetLatestReadings returns the latest processed reading per station,
// or for one station when sensor_id is given
func (h *Handlers) GetLatestReadings(w http.ResponseWriter, r *http.Request) {
	sensorID, err := parseSensorID(r)
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if sensorID != 0 {
		reading, err := h.store.GetLatestProcessed(r.Context(), sensorID)
		if err != nil {
			h.sendErrorResponse(w, "Failed to load latest reading", http.StatusInternalServerError)
			return
		}
		if reading == nil {
			h.sendErrorResponse(w, "No processed data available for specified sensor", http.StatusNotFound)
			return
		}

		h.sendJSONResponse(w, reading)
		return
	}

	readings, err := h.store.GetAllLatestProcessed(r.Context())
	if err != nil {
		h.sendErrorResponse(w, "Failed to load latest readings", http.StatusInternalServerError)
		return
	}

	h.sendJSONResponse(w, readings)
}

// GetRecentReadings returns recent processed readings, newest first
func (h *Handlers) GetRecentReadings(w http.ResponseWriter, r *http.Request) {
	sensorID, err := parseSensorID(r)
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit := 50 // Default limit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 1000 {
			limit = parsedLimit
		}
	}

	readings, err := h.store.GetRecentProcessed(r.Context(), sensorID, limit)
	if err != nil {
		h.sendErrorResponse(w, "Failed to load recent readings", http.StatusInternalServerError)
		return
	}

	h.sendJSONResponse(w, readings)
}

// GetReadingsInRange returns processed readings within a time range
func (h *Handlers) GetReadingsInRange(w http.ResponseWriter, r *http.Request) {
	sensorID, err := parseSensorID(r)
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" || endStr == "" {
		h.sendErrorResponse(w, "Both start and end time parameters are required", http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		h.sendErrorResponse(w, "Invalid start time format. Use RFC3339 format", http.StatusBadRequest)
		return
	}

	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		h.sendErrorResponse(w, "Invalid end time format. Use RFC3339 format", http.StatusBadRequest)
		return
	}

	if end.Before(start) {
		h.sendErrorResponse(w, "End time must be after start time", http.StatusBadRequest)
		return
	}

	readings, err := h.store.GetProcessedInRange(r.Context(), sensorID, start, end)
	if err != nil {
		h.sendErrorResponse(w, "Failed to load readings", http.StatusInternalServerError)
		return
	}

	h.sendJSONResponse(w, readings)
}

// GetSedimentStatus returns the sediment assessment per station, derived from
// the latest processed reading
func (h *Handlers) GetSedimentStatus(w http.ResponseWriter, r *http.Request) {
	sensorID, err := parseSensorID(r)
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if sensorID != 0 {
		reading, err := h.store.GetLatestProcessed(r.Context(), sensorID)
		if err != nil {
			h.sendErrorResponse(w, "Failed to load latest reading", http.StatusInternalServerError)
			return
		}
		if reading == nil {
			h.sendErrorResponse(w, "No processed data available for specified sensor", http.StatusNotFound)
			return
		}

		h.sendJSONResponse(w, reading.ToSedimentStatus())
		return
	}

	latest, err := h.store.GetAllLatestProcessed(r.Context())
	if err != nil {
		h.sendErrorResponse(w, "Failed to load latest readings", http.StatusInternalServerError)
		return
	}

	statuses := make(map[int]models.SedimentStatus, len(latest))
	for id, reading := range latest {
		statuses[id] = reading.ToSedimentStatus()
	}

	h.sendJSONResponse(w, statuses)
}

// GetSystemStats returns system statistics
func (h *Handlers) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.GetReadingCount(r.Context())
	if err != nil {
		h.sendErrorResponse(w, "Failed to load statistics", http.StatusInternalServerError)
		return
	}

	sensors, err := h.store.GetActiveSensors(r.Context())
	if err != nil {
		h.sendErrorResponse(w, "Failed to load statistics", http.StatusInternalServerError)
		return
	}

	stats := map[string]interface{}{
		"total_readings":  count,
		"active_stations": len(sensors),
		"station_ids":     sensors,
		"server_time":     time.Now(),
	}

	h.sendJSONResponse(w, stats)
}

// AddStationReading handles POST requests to submit a raw reading over HTTP.
// The reading runs through the same pipeline as MQTT telemetry.
func (h *Handlers) AddStationReading(w http.ResponseWriter, r *http.Request) {
	var request struct {
		SensorID       int     `json:"sensor_id"`
		Depth          float64 `json:"depth"`
		Turbidity      float64 `json:"turbidity"`
		Temperature    float64 `json:"temperature"`
		Voltage        float64 `json:"voltage"`
		BatteryLevel   float64 `json:"battery_level"`
		SignalStrength float64 `json:"signal_strength"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if request.SensorID <= 0 {
		h.sendErrorResponse(w, "sensor_id is required and must be positive", http.StatusBadRequest)
		return
	}

	raw := models.RawReading{
		SensorID:       request.SensorID,
		Depth:          request.Depth,
		Turbidity:      request.Turbidity,
		Temperature:    request.Temperature,
		Voltage:        request.Voltage,
		BatteryLevel:   request.BatteryLevel,
		SignalStrength: request.SignalStrength,
		CapturedAt:     time.Now(),
	}

	if !raw.IsFinite() {
		h.sendErrorResponse(w, "Reading values must be finite numbers", http.StatusBadRequest)
		return
	}

	processed, err := h.ingester.IngestReading(r.Context(), raw)
	if err != nil {
		log.Printf("❌ HTTP ingest failed for sensor %d: %v", raw.SensorID, err)
		h.sendErrorResponse(w, "Failed to process reading", http.StatusInternalServerError)
		return
	}

	response := APIResponse{
		Success: true,
		Message: "Reading processed successfully",
		Data:    processed,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ListCalibrations returns the calibration history for a station, newest first
func (h *Handlers) ListCalibrations(w http.ResponseWriter, r *http.Request) {
	sensorID, err := parseSensorID(r)
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if sensorID == 0 {
		h.sendErrorResponse(w, "sensor_id parameter is required", http.StatusBadRequest)
		return
	}

	rows, err := h.store.ListCalibrations(r.Context(), sensorID)
	if err != nil {
		h.sendErrorResponse(w, "Failed to load calibrations", http.StatusInternalServerError)
		return
	}

	h.sendJSONResponse(w, rows)
}

// CreateCalibration handles POST requests to record a new calibration row.
// The new row becomes the active calibration for subsequent readings.
func (h *Handlers) CreateCalibration(w http.ResponseWriter, r *http.Request) {
	var request struct {
		SensorID          int        `json:"sensor_id"`
		Offset            float64    `json:"offset"`
		ScaleFactor       float64    `json:"scale_factor"`
		LastCalibratedAt  *time.Time `json:"last_calibrated_at,omitempty"`
		NextCalibrationAt *time.Time `json:"next_calibration_at,omitempty"`
		Formula           string     `json:"formula,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if request.SensorID <= 0 {
		h.sendErrorResponse(w, "sensor_id is required and must be positive", http.StatusBadRequest)
		return
	}
	if request.ScaleFactor == 0 {
		h.sendErrorResponse(w, "scale_factor must be non-zero", http.StatusBadRequest)
		return
	}

	params := models.CalibrationParameters{
		SensorID:    request.SensorID,
		Parameter:   models.CalibrationParameterDepth,
		Offset:      request.Offset,
		ScaleFactor: request.ScaleFactor,
		Formula:     request.Formula,
	}
	if request.LastCalibratedAt != nil {
		params.LastCalibratedAt = *request.LastCalibratedAt
	}
	if request.NextCalibrationAt != nil {
		params.NextCalibrationAt = *request.NextCalibrationAt
	}

	created, err := h.store.AddCalibration(r.Context(), params)
	if err != nil {
		h.sendErrorResponse(w, "Failed to store calibration", http.StatusInternalServerError)
		return
	}

	log.Printf("🔧 Calibration recorded for sensor %d: offset=%.4f scale=%.4f",
		created.SensorID, created.Offset, created.ScaleFactor)

	response := APIResponse{
		Success: true,
		Message: "Calibration recorded successfully",
		Data:    created,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// exportRange parses the optional start/end export window, defaulting to the
// last 30 days
func exportRange(r *http.Request) (time.Time, time.Time, error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	start := time.Now().AddDate(0, 0, -30)
	end := time.Now()
	var err error

	if startStr != "" {
		start, err = time.Parse(time.RFC3339, startStr)
		if err != nil {
			return start, end, fmt.Errorf("invalid start date format, use RFC3339")
		}
	}
	if endStr != "" {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			return start, end, fmt.Errorf("invalid end date format, use RFC3339")
		}
	}

	return start, end, nil
}

// ExportHistoryExcel handles GET requests to export reading history as Excel
func (h *Handlers) ExportHistoryExcel(w http.ResponseWriter, r *http.Request) {
	sensorID, err := parseSensorID(r)
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	start, end, err := exportRange(r)
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	readings, err := h.store.GetProcessedInRange(r.Context(), sensorID, start, end)
	if err != nil {
		h.sendErrorResponse(w, "Failed to load readings", http.StatusInternalServerError)
		return
	}

	assessments := make([]models.SedimentStatus, 0, len(readings))
	sensorSet := make(map[int]bool)
	for i := range readings {
		assessments = append(assessments, readings[i].ToSedimentStatus())
		sensorSet[readings[i].SensorID] = true
	}

	sensorIDs := make([]int, 0, len(sensorSet))
	for id := range sensorSet {
		sensorIDs = append(sensorIDs, id)
	}

	exportData := export.ExportData{
		ProcessedReadings: readings,
		Assessments:       assessments,
		ExportMetadata: export.ExportMetadata{
			GeneratedAt:   time.Now(),
			DateRange:     fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
			TotalReadings: len(readings),
			SensorIDs:     sensorIDs,
		},
	}

	excelFile, err := h.exportService.GenerateExcel(exportData)
	if err != nil {
		h.sendErrorResponse(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("hydrotrack_history_%s_to_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	if err := excelFile.Write(w); err != nil {
		h.sendErrorResponse(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}
}

// ExportHistoryCSV handles GET requests to export reading history as CSV
func (h *Handlers) ExportHistoryCSV(w http.ResponseWriter, r *http.Request) {
	sensorID, err := parseSensorID(r)
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	start, end, err := exportRange(r)
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	readings, err := h.store.GetProcessedInRange(r.Context(), sensorID, start, end)
	if err != nil {
		h.sendErrorResponse(w, "Failed to load readings", http.StatusInternalServerError)
		return
	}

	csvData, err := h.exportService.GenerateCSV(readings)
	if err != nil {
		h.sendErrorResponse(w, "Failed to generate CSV data", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("hydrotrack_history_%s_to_%s.csv",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	csvWriter := csv.NewWriter(w)
	if err := h.exportService.WriteCSV(csvWriter, csvData); err != nil {
		h.sendErrorResponse(w, "Failed to write CSV data", http.StatusInternalServerError)
		return
	}
}
