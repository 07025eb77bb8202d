package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/config"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/calibration"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/database"
	httphandlers "github.com/HydroTrack-Team/hydrotrack_backend/internal/http"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/mqtt"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/pipeline"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/services"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/store"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/ws"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("🌊 Starting HydroTrack Water Monitoring Backend...")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found: %v", err)
	} else {
		log.Println("✅ Loaded .env file")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Loaded configuration: Server port=%s, DB host=%s",
		cfg.Server.Port, cfg.Database.Host)

	// Initialize data store with PostgreSQL or fallback to in-memory
	var dataStore store.DataStore

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Printf("⚠️  Warning: Failed to connect to database: %v", err)
		log.Println("📱 Falling back to in-memory storage")
		dataStore = store.NewStore(1000)
		log.Println("💾 Initialized in-memory data store")
	} else {
		log.Println("✅ Connected to PostgreSQL database")

		if err := database.CreateTables(db.DB); err != nil {
			log.Fatalf("❌ Failed to create tables: %v", err)
		}

		dataStore = database.NewDatabaseStore(db.DB)
		log.Println("💾 Initialized database data store")
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()
	log.Println("🔌 Started WebSocket hub")

	// Processing pipeline: calibration comes from the active store, filter
	// state lives in the processor for the lifetime of the server
	resolver := calibration.NewStoreResolver(dataStore)
	processor := pipeline.NewProcessor(resolver)
	generator := pipeline.NewGeneratorWithNoise(cfg.Simulator.Seed, cfg.Simulator.NoiseFactor)
	log.Println("⚙️  Initialized processing pipeline")

	// The simulator doubles as the shared ingest path for HTTP and MQTT;
	// its background loop only runs when enabled
	stations := services.DefaultStations(cfg.Simulator.StationCount)
	simulator := services.NewSimulator(dataStore, processor, generator, wsHub, stations, cfg.Simulator.Interval)

	// Initialize MQTT client (skip if no broker URL configured)
	var mqttClient *mqtt.Client
	if cfg.MQTT.BrokerURL != "" && cfg.MQTT.BrokerURL != "tcp://localhost:1883" {
		log.Println("📡 Attempting to connect to MQTT broker...")

		mqttClient = mqtt.NewClient(&mqtt.Config{
			BrokerURL:      cfg.MQTT.BrokerURL,
			ClientID:       cfg.MQTT.ClientID,
			Username:       cfg.MQTT.Username,
			Password:       cfg.MQTT.Password,
			KeepAlive:      cfg.MQTT.KeepAlive,
			PingTimeout:    cfg.MQTT.PingTimeout,
			ConnectRetry:   cfg.MQTT.ConnectRetry,
			TopicTelemetry: cfg.MQTT.TopicTelemetry,
			TopicProcessed: cfg.MQTT.TopicProcessed,
		})

		mqttClient.SetDataHandler(func(raw *models.RawReading) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			processed, err := simulator.IngestReading(ctx, *raw)
			if err != nil {
				log.Printf("❌ MQTT ingest failed for sensor %d: %v", raw.SensorID, err)
				return
			}

			if err := mqttClient.PublishProcessedReading(&processed); err != nil {
				log.Printf("⚠️  Failed to publish processed reading: %v", err)
			}
		})
		mqttClient.SetErrorHandler(func(err error) {
			wsHub.BroadcastError(err.Error())
		})

		if err := mqttClient.Connect(); err != nil {
			log.Printf("⚠️  Warning: Failed to connect to MQTT broker: %v", err)
			log.Println("📡 Continuing without MQTT support")
			mqttClient = nil
		} else {
			if err := mqttClient.SubscribeToTelemetry(); err != nil {
				log.Printf("⚠️  Warning: Failed to subscribe to telemetry: %v", err)
			}
			log.Printf("📡 MQTT client connected - Broker: %s", cfg.MQTT.BrokerURL)
			defer mqttClient.Disconnect()
		}
	} else {
		log.Println("📡 MQTT broker not configured, skipping MQTT initialization")
	}

	// Start the simulator when enabled
	if cfg.Simulator.Enabled {
		simulator.Start()
	} else {
		log.Println("🌀 Simulator disabled")
	}

	// Setup HTTP routes
	router := httphandlers.SetupRoutes(dataStore, simulator, wsHub)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Printf("🚀 Starting HTTP server on port %s", cfg.Server.Port)
		log.Println("📡 API endpoints available:")
		log.Println("  GET /api/v1/stats - System statistics")
		log.Println("  GET /api/v1/readings/latest - Latest processed reading per station")
		log.Println("  GET /api/v1/readings/recent?limit=50 - Recent processed readings")
		log.Println("  GET /api/v1/readings/history - Historical data in time range")
		log.Println("  GET /api/v1/readings/quality - Sediment status assessment")
		log.Println("  POST /api/v1/readings - Submit a raw reading")
		log.Println("  GET /api/v1/calibrations?sensor_id=N - Calibration history")
		log.Println("  POST /api/v1/calibrations - Record a calibration")
		log.Println("  GET /api/v1/export/history.xlsx - Export history to Excel")
		log.Println("  GET /api/v1/export/history.csv - Export history to CSV")
		log.Println("  WS /ws - WebSocket for real-time updates")
		log.Printf("🌐 Server running at http://localhost:%s", cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	if simulator.IsRunning() {
		simulator.Stop()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server shutdown complete")
}
