package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/pipeline"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/store"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/ws"
)

// SimulatedStation describes one synthetic monitoring station
type SimulatedStation struct {
	SensorID int
	Base     pipeline.BaseValues
}

// Simulator periodically generates synthetic readings and drives them through
// the full pipeline, for demos and development without live hardware
type Simulator struct {
	store     store.DataStore
	processor *pipeline.Processor
	generator *pipeline.Generator
	hub       *ws.Hub
	stations  []SimulatedStation

	ticker    *time.Ticker
	interval  time.Duration
	stopChan  chan bool
	mu        sync.RWMutex
	isRunning bool
}

// NewSimulator creates a simulator for the given stations. The hub may be nil
// when no live delivery is wanted.
func NewSimulator(dataStore store.DataStore, processor *pipeline.Processor, generator *pipeline.Generator,
	hub *ws.Hub, stations []SimulatedStation, interval time.Duration) *Simulator {
	return &Simulator{
		store:     dataStore,
		processor: processor,
		generator: generator,
		hub:       hub,
		stations:  stations,
		interval:  interval,
		stopChan:  make(chan bool),
	}
}

// DefaultStations returns count synthetic stations with staggered base values
func DefaultStations(count int) []SimulatedStation {
	stations := make([]SimulatedStation, 0, count)
	for i := 0; i < count; i++ {
		stations = append(stations, SimulatedStation{
			SensorID: i + 1,
			Base: pipeline.BaseValues{
				Depth:       120 + 15*float64(i),
				Turbidity:   8 + 3*float64(i),
				Temperature: 16 + float64(i),
			},
		})
	}
	return stations
}

// Start begins the simulator background process
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		log.Println("⚠️  Simulator: Already running")
		return
	}

	s.ticker = time.NewTicker(s.interval)
	s.isRunning = true

	log.Printf("🌀 Simulator: Started - %d stations, interval %s", len(s.stations), s.interval)

	go s.run()
}

// Stop halts the simulator
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.ticker.Stop()
	s.stopChan <- true
	s.isRunning = false

	log.Println("🛑 Simulator: Stopped")
}

// IsRunning returns whether the simulator is currently running
func (s *Simulator) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// run is the main simulator loop
func (s *Simulator) run() {
	// Emit immediately on start
	s.emitReadings()

	for {
		select {
		case <-s.ticker.C:
			s.emitReadings()
		case <-s.stopChan:
			return
		}
	}
}

// emitReadings generates one reading per station and pipes it through
// processing, storage and broadcast
func (s *Simulator) emitReadings() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()
	for _, station := range s.stations {
		raw := s.generator.Generate(station.SensorID, station.Base, now)

		if _, err := s.IngestReading(ctx, raw); err != nil {
			log.Printf("❌ Simulator: Failed to ingest reading for sensor %d: %v", station.SensorID, err)
		}
	}
}

// IngestReading runs one raw reading through the full path: persist raw,
// process, persist processed, broadcast. Exposed so the seeder and manual
// ingest can share the exact same path.
func (s *Simulator) IngestReading(ctx context.Context, raw models.RawReading) (models.ProcessedReading, error) {
	stored, err := s.store.AddRawReading(ctx, raw)
	if err != nil {
		return models.ProcessedReading{}, err
	}

	processed, err := s.processor.Process(ctx, stored)
	if err != nil {
		return models.ProcessedReading{}, err
	}

	processed, err = s.store.AddProcessedReading(ctx, processed)
	if err != nil {
		return models.ProcessedReading{}, err
	}

	if s.hub != nil {
		s.hub.BroadcastProcessedReading(&processed)

		status := processed.ToSedimentStatus()
		s.hub.BroadcastSedimentStatus(&status)
	}

	return processed, nil
}
