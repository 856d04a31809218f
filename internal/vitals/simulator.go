package vitals

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// Baseline vitals for a resting adult. Each simulated reading starts here
// and is shifted by jitter and by the risks active in the current cycle.
const (
	baselineHeartRate       = 75
	baselineTemperature     = 37.0
	baselineRespiratoryRate = 16
)

// Clamp bounds applied after all biases.
const (
	minHeartRate       = 50
	maxHeartRate       = 150
	minTemperature     = 36.0
	maxTemperature     = 39.0
	minRespiratoryRate = 10
	maxRespiratoryRate = 30
)

// Reading is one simulated smart-bed observation. Temperature carries
// exactly one decimal place.
type Reading struct {
	HeartRate       int
	Temperature     decimal.Decimal
	RespiratoryRate int
	IsInBed         bool
}

// Simulator produces plausible vital signs biased by detected risks. One
// Simulator belongs to one monitoring session; there is no shared state
// between patients.
type Simulator struct {
	rng *rand.Rand
}

// NewSimulator seeds a simulator from the wall clock.
func NewSimulator() *Simulator {
	return NewSimulatorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSimulatorWithRand injects a random source, used by tests for
// deterministic readings.
func NewSimulatorWithRand(rng *rand.Rand) *Simulator {
	return &Simulator{rng: rng}
}

// Next synthesises one reading. Biases are additive and independent: an
// agitated patient out of bed accumulates both shifts.
func (s *Simulator) Next(isInBed, hasAggression, hasDistress bool) Reading {
	heartRate := float64(baselineHeartRate) + s.uniform(-5, 5)
	temperature := baselineTemperature + s.uniform(-0.2, 0.2)
	respiratoryRate := float64(baselineRespiratoryRate) + s.uniform(-2, 2)

	if hasAggression {
		heartRate += 30
		respiratoryRate += 8
	}
	if hasDistress {
		heartRate += 15
		respiratoryRate += 5
	}
	if !isInBed {
		heartRate += 10
		respiratoryRate += 3
	}

	return Reading{
		HeartRate:       clampInt(heartRate, minHeartRate, maxHeartRate),
		Temperature:     clampTemperature(temperature),
		RespiratoryRate: clampInt(respiratoryRate, minRespiratoryRate, maxRespiratoryRate),
		IsInBed:         isInBed,
	}
}

func (s *Simulator) uniform(min, max float64) float64 {
	return min + s.rng.Float64()*(max-min)
}

func clampInt(v float64, min, max int) int {
	rounded := int(v + 0.5)
	if rounded < min {
		return min
	}
	if rounded > max {
		return max
	}
	return rounded
}

func clampTemperature(v float64) decimal.Decimal {
	if v < minTemperature {
		v = minTemperature
	}
	if v > maxTemperature {
		v = maxTemperature
	}
	return decimal.NewFromFloat(v).Round(1)
}
