package detect

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carewatch/internal/vitals"
)

func reading(hr int, temp float64, rr int) vitals.Reading {
	return vitals.Reading{
		HeartRate:       hr,
		Temperature:     decimal.NewFromFloat(temp).Round(1),
		RespiratoryRate: rr,
	}
}

func TestVitalsRiskNormalReading(t *testing.T) {
	assert.Nil(t, DetectVitalsRisk(reading(75, 37.0, 16)))
}

func TestVitalsRiskHeartRateSeverity(t *testing.T) {
	d := DetectVitalsRisk(reading(125, 37.0, 16))
	require.NotNil(t, d)
	assert.Equal(t, RiskVitals, d.Type)
	assert.Equal(t, SeverityHigh, d.Severity)
	assert.Equal(t, 0.95, d.Confidence)

	d = DetectVitalsRisk(reading(145, 37.0, 16))
	require.NotNil(t, d)
	assert.Equal(t, SeverityCritical, d.Severity)
}

func TestVitalsRiskHeartRateTakesPriority(t *testing.T) {
	// Heart rate and temperature both out of range: exactly one detection,
	// for heart rate.
	d := DetectVitalsRisk(reading(145, 40.0, 30))
	require.NotNil(t, d)
	assert.Equal(t, SeverityCritical, d.Severity)
	assert.Contains(t, d.Description, "Heart rate")
}

func TestVitalsRiskTemperatureSeverity(t *testing.T) {
	d := DetectVitalsRisk(reading(80, 38.6, 16))
	require.NotNil(t, d)
	assert.Equal(t, SeverityMedium, d.Severity)
	assert.Contains(t, d.Description, "temperature")

	d = DetectVitalsRisk(reading(80, 39.1, 16))
	require.NotNil(t, d)
	assert.Equal(t, SeverityCritical, d.Severity)

	d = DetectVitalsRisk(reading(80, 35.4, 16))
	require.NotNil(t, d)
	assert.Equal(t, SeverityCritical, d.Severity)
}

func TestVitalsRiskRespiratorySeverity(t *testing.T) {
	d := DetectVitalsRisk(reading(80, 37.0, 26))
	require.NotNil(t, d)
	assert.Equal(t, SeverityMedium, d.Severity)
	assert.Contains(t, d.Description, "Respiratory")

	d = DetectVitalsRisk(reading(80, 37.0, 29))
	require.NotNil(t, d)
	assert.Equal(t, SeverityCritical, d.Severity)
}

func TestVitalsRiskBoundariesAreStrict(t *testing.T) {
	// 120 bpm, 38.5 C and 24 breaths/min sit exactly on the thresholds and
	// must not fire.
	assert.Nil(t, DetectVitalsRisk(reading(120, 38.5, 24)))
}
