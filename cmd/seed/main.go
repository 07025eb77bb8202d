package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/config"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/calibration"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/database"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/pipeline"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	var (
		stationCount = flag.Int("stations", 3, "Number of synthetic stations")
		hours        = flag.Int("hours", 24, "Hours of history to generate")
		intervalStr  = flag.String("interval", "10m", "Sampling interval (e.g. 10m, 30s)")
		seed         = flag.Int64("seed", 42, "Random seed for reproducible data")
		noiseFactor  = flag.Float64("noise", pipeline.DefaultNoiseFactor, "Multiplicative noise factor")
	)
	flag.Parse()

	log.Println("🌱 HydroTrack Database Seeder")
	log.Println("=============================")

	interval, err := time.ParseDuration(*intervalStr)
	if err != nil || interval <= 0 {
		log.Fatalf("❌ Invalid interval: %s", *intervalStr)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found: %v", err)
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.CreateTables(db.DB); err != nil {
		log.Fatalf("❌ Failed to create tables: %v", err)
	}

	dataStore := database.NewDatabaseStore(db.DB)

	resolver := calibration.NewStoreResolver(dataStore)
	processor := pipeline.NewProcessor(resolver)
	generator := pipeline.NewGeneratorWithNoise(*seed, *noiseFactor)
	stations := services.DefaultStations(*stationCount)

	ctx := context.Background()
	start := time.Now().Add(-time.Duration(*hours) * time.Hour)
	samples := int(time.Duration(*hours) * time.Hour / interval)

	log.Printf("📊 Generating %d samples per station (%d stations, every %s since %s)",
		samples, len(stations), interval, start.Format("2006-01-02 15:04"))

	total := 0
	for i := 0; i < samples; i++ {
		ts := start.Add(time.Duration(i) * interval)

		for _, station := range stations {
			raw := generator.Generate(station.SensorID, station.Base, ts)
			raw.CapturedAt = ts

			stored, err := dataStore.AddRawReading(ctx, raw)
			if err != nil {
				log.Fatalf("❌ Failed to store raw reading: %v", err)
			}

			processed, err := processor.Process(ctx, stored)
			if err != nil {
				log.Fatalf("❌ Failed to process reading: %v", err)
			}
			processed.ProcessedAt = ts

			if _, err := dataStore.AddProcessedReading(ctx, processed); err != nil {
				log.Fatalf("❌ Failed to store processed reading: %v", err)
			}
			total++
		}
	}

	log.Printf("🎉 Seeded %d readings across %d stations", total, len(stations))
}
