package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService handles data export functionality
type ExportService struct{}

// NewExportService creates a new export service instance
func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportData represents data to be exported
type ExportData struct {
	ProcessedReadings []models.ProcessedReading
	Assessments       []models.SedimentStatus
	ExportMetadata    ExportMetadata
}

// ExportMetadata contains information about the export
type ExportMetadata struct {
	GeneratedAt   time.Time `json:"generated_at"`
	DateRange     string    `json:"date_range"`
	TotalReadings int       `json:"total_readings"`
	SensorIDs     []int     `json:"sensor_ids"`
}

// GenerateExcel creates an Excel file with processed reading history
func (es *ExportService) GenerateExcel(data ExportData) (*excelize.File, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Println(err)
		}
	}()

	// Set document properties
	f.SetDocProps(&excelize.DocProperties{
		Category:       "HydroTrack Water Monitoring",
		ContentStatus:  "Draft",
		Created:        data.ExportMetadata.GeneratedAt.Format(time.RFC3339),
		Creator:        "HydroTrack System",
		Description:    "Water depth and sediment reading history export",
		LastModifiedBy: "HydroTrack Backend",
		Modified:       data.ExportMetadata.GeneratedAt.Format(time.RFC3339),
		Subject:        "Depth & Sediment History",
		Title:          "HydroTrack Monitoring Report",
		Version:        "1.0",
	})

	// Create Summary sheet
	es.createSummarySheet(f, data)

	// Create Processed Readings sheet
	es.createReadingsSheet(f, data.ProcessedReadings)

	// Create Sediment Status sheet
	es.createStatusSheet(f, data.Assessments)

	// Set active sheet to Summary
	f.SetActiveSheet(0)

	return f, nil
}

// createSummarySheet creates the summary overview sheet
func (es *ExportService) createSummarySheet(f *excelize.File, data ExportData) error {
	sheetName := "Summary"
	f.SetSheetName("Sheet1", sheetName)

	// Header styling
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// Title
	f.SetCellValue(sheetName, "A1", "HydroTrack Monitoring Report")
	f.MergeCell(sheetName, "A1", "D1")
	f.SetCellStyle(sheetName, "A1", "D1", headerStyle)
	f.SetRowHeight(sheetName, 1, 25)

	// Export metadata
	f.SetCellValue(sheetName, "A3", "Generated At:")
	f.SetCellValue(sheetName, "B3", data.ExportMetadata.GeneratedAt.Format("2006-01-02 15:04:05"))
	f.SetCellValue(sheetName, "A4", "Date Range:")
	f.SetCellValue(sheetName, "B4", data.ExportMetadata.DateRange)
	f.SetCellValue(sheetName, "A5", "Total Readings:")
	f.SetCellValue(sheetName, "B5", data.ExportMetadata.TotalReadings)
	f.SetCellValue(sheetName, "A6", "Stations:")
	f.SetCellValue(sheetName, "B6", len(data.ExportMetadata.SensorIDs))

	// Column widths
	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "D", 15)

	return nil
}

// createReadingsSheet creates the processed readings sheet
func (es *ExportService) createReadingsSheet(f *excelize.File, readings []models.ProcessedReading) error {
	sheetName := "Processed Readings"
	f.NewSheet(sheetName)

	// Headers
	headers := []string{"Processed At", "Sensor", "Calibrated Depth (cm)", "Turbidity (NTU)", "Temperature (°C)", "Sediment Level", "Quality Score", "Outlier", "Method"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	// Header styling
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"70AD47"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	f.SetCellStyle(sheetName, "A1", "I1", headerStyle)

	// Data rows
	for i, reading := range readings {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), reading.ProcessedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), reading.SensorID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), reading.CalibratedDepth)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), reading.SmoothedTurbidity)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), reading.SmoothedTemperature)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), reading.SedimentLevel)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), reading.QualityScore)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), reading.IsOutlier)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), reading.ProcessingMethod)
	}

	// Format columns
	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "I", 14)

	return nil
}

// createStatusSheet creates the sediment status analysis sheet
func (es *ExportService) createStatusSheet(f *excelize.File, assessments []models.SedimentStatus) error {
	sheetName := "Sediment Status"
	f.NewSheet(sheetName)

	// Headers
	headers := []string{"Processed At", "Sensor", "Calibrated Depth (cm)", "Sediment Level", "Sediment Band", "Quality Score", "Quality Band", "Outlier"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	// Header styling
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"7030A0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	f.SetCellStyle(sheetName, "A1", "H1", headerStyle)

	// Data rows
	for i, assessment := range assessments {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), assessment.ProcessedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), assessment.SensorID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), assessment.CalibratedDepth)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), assessment.SedimentLevel)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), assessment.SedimentBand)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), assessment.QualityScore)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), assessment.QualityBand)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), assessment.IsOutlier)
	}

	// Format columns
	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "H", 15)

	return nil
}

// GenerateCSV creates CSV data for processed readings
func (es *ExportService) GenerateCSV(readings []models.ProcessedReading) ([][]string, error) {
	// CSV headers
	records := [][]string{
		{"Processed At", "Sensor", "Calibrated Depth (cm)", "Turbidity (NTU)", "Temperature (°C)", "Sediment Level", "Quality Score", "Outlier", "Method"},
	}

	// Add data rows
	for _, reading := range readings {
		record := []string{
			reading.ProcessedAt.Format("2006-01-02 15:04:05"),
			strconv.Itoa(reading.SensorID),
			strconv.FormatFloat(reading.CalibratedDepth, 'f', 2, 64),
			strconv.FormatFloat(reading.SmoothedTurbidity, 'f', 2, 64),
			strconv.FormatFloat(reading.SmoothedTemperature, 'f', 2, 64),
			strconv.FormatFloat(reading.SedimentLevel, 'f', 2, 64),
			strconv.FormatFloat(reading.QualityScore, 'f', 3, 64),
			strconv.FormatBool(reading.IsOutlier),
			reading.ProcessingMethod,
		}
		records = append(records, record)
	}

	return records, nil
}

// WriteCSV writes CSV data to a writer
func (es *ExportService) WriteCSV(w *csv.Writer, records [][]string) error {
	return w.WriteAll(records)
}
