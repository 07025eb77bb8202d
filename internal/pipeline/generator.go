package pipeline

import (
	"math"
	"math/rand"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
)

// DefaultNoiseFactor is the multiplicative noise scale applied to the
// physical channels when generating synthetic readings
const DefaultNoiseFactor = 0.02

// Daily swing fractions per channel: how strongly the diurnal pattern
// modulates each base value
const (
	depthDailySwing       = 0.05
	turbidityDailySwing   = 0.15
	temperatureDailySwing = 0.10
)

// Device health baselines for generated readings
const (
	baselineVoltage = 12.0
	voltageNoise    = 0.01

	baselineBattery   = 85.0
	batteryDailySwing = 5.0
	batteryNoise      = 0.005

	baselineSignal   = 90.0
	signalDailySwing = 5.0
	signalNoise      = 0.02
)

// BaseValues are the nominal channel values a synthetic station oscillates around
type BaseValues struct {
	Depth       float64
	Turbidity   float64
	Temperature float64
}

// Generator produces plausible raw readings with a diurnal pattern and
// injected noise, for seeding and demonstration without live hardware.
// It is not part of the production data path.
type Generator struct {
	rng         *rand.Rand
	noiseFactor float64
}

// NewGenerator creates a generator with the default noise factor. A seed of 0
// seeds from the current time.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:         rand.New(rand.NewSource(seed)),
		noiseFactor: DefaultNoiseFactor,
	}
}

// NewGeneratorWithNoise creates a generator with a custom noise factor
func NewGeneratorWithNoise(seed int64, noiseFactor float64) *Generator {
	g := NewGenerator(seed)
	g.noiseFactor = noiseFactor
	return g
}

// Generate produces one synthetic raw reading for the given sensor around the
// base values, using the hour of ts to drive the diurnal pattern
func (g *Generator) Generate(sensorID int, base BaseValues, ts time.Time) models.RawReading {
	daily := math.Sin(2 * math.Pi * float64(ts.Hour()) / 24)

	depth := g.perturb(base.Depth*(1+depthDailySwing*daily), g.noiseFactor)
	turbidity := g.perturb(base.Turbidity*(1+turbidityDailySwing*daily), g.noiseFactor)
	temperature := g.perturb(base.Temperature*(1+temperatureDailySwing*daily), g.noiseFactor)

	voltage := g.perturb(baselineVoltage, voltageNoise)
	battery := clampPercent(g.perturb(baselineBattery+batteryDailySwing*daily, batteryNoise))
	signal := clampPercent(g.perturb(baselineSignal-signalDailySwing*math.Abs(daily), signalNoise))

	return models.RawReading{
		SensorID:       sensorID,
		Depth:          depth,
		Turbidity:      turbidity,
		Temperature:    temperature,
		Voltage:        voltage,
		BatteryLevel:   battery,
		SignalStrength: signal,
		CapturedAt:     ts,
	}
}

// perturb applies multiplicative noise: value * (1 + factor * noiseSum)
func (g *Generator) perturb(value, factor float64) float64 {
	return value * (1 + factor*g.noiseSum())
}

// noiseSum approximates a zero-centered Gaussian draw as the sum of six
// independent uniform(-0.5, 0.5) samples (Central Limit Theorem)
func (g *Generator) noiseSum() float64 {
	sum := 0.0
	for i := 0; i < 6; i++ {
		sum += g.rng.Float64() - 0.5
	}
	return sum
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
