package http

import (
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/store"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all HTTP routes for the monitoring API
func SetupRoutes(dataStore store.DataStore, ingester Ingester, wsHub *ws.Hub) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // In production, specify allowed origins
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers := NewHandlers(dataStore, ingester)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// System stats
		r.Get("/stats", handlers.GetSystemStats)

		// Reading routes
		r.Route("/readings", func(r chi.Router) {
			// Latest processed reading per station
			r.Get("/latest", handlers.GetLatestReadings)

			// Recent processed readings, newest first
			r.Get("/recent", handlers.GetRecentReadings)

			// Historical data in time range
			r.Get("/history", handlers.GetReadingsInRange)

			// Sediment status assessment
			r.Get("/quality", handlers.GetSedimentStatus)

			// Submit a raw reading over HTTP
			r.Post("/", handlers.AddStationReading)
		})

		// Calibration routes
		r.Route("/calibrations", func(r chi.Router) {
			r.Get("/", handlers.ListCalibrations)
			r.Post("/", handlers.CreateCalibration)
		})

		// Export routes for data history
		r.Route("/export", func(r chi.Router) {
			r.Get("/history.xlsx", handlers.ExportHistoryExcel)
			r.Get("/history.csv", handlers.ExportHistoryCSV)
		})
	})

	// WebSocket route for real-time updates
	r.HandleFunc("/ws", wsHub.HandleWebSocket)

	return r
}
