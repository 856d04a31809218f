package detect

import (
	"fmt"

	"github.com/shopspring/decimal"

	"carewatch/internal/vitals"
)

var (
	tempHigh         = decimal.NewFromFloat(38.5)
	tempLow          = decimal.NewFromFloat(36.0)
	tempCriticalHigh = decimal.NewFromFloat(39.0)
	tempCriticalLow  = decimal.NewFromFloat(35.5)
)

// DetectVitalsRisk evaluates one synthesised reading against fixed clinical
// thresholds. Checks run in priority order heart rate, temperature,
// respiratory rate; at most one detection is emitted and the first match
// wins.
func DetectVitalsRisk(r vitals.Reading) *Detection {
	if r.HeartRate > 120 || r.HeartRate < 50 {
		severity := SeverityHigh
		if r.HeartRate > 140 || r.HeartRate < 45 {
			severity = SeverityCritical
		}
		return &Detection{
			Type:        RiskVitals,
			Severity:    severity,
			Confidence:  0.95,
			Description: fmt.Sprintf("Heart rate out of range: %d bpm", r.HeartRate),
		}
	}

	if r.Temperature.GreaterThan(tempHigh) || r.Temperature.LessThan(tempLow) {
		severity := SeverityMedium
		if r.Temperature.GreaterThan(tempCriticalHigh) || r.Temperature.LessThan(tempCriticalLow) {
			severity = SeverityCritical
		}
		return &Detection{
			Type:        RiskVitals,
			Severity:    severity,
			Confidence:  0.95,
			Description: fmt.Sprintf("Body temperature out of range: %s C", r.Temperature.StringFixed(1)),
		}
	}

	if r.RespiratoryRate > 24 || r.RespiratoryRate < 12 {
		severity := SeverityMedium
		if r.RespiratoryRate > 28 || r.RespiratoryRate < 10 {
			severity = SeverityCritical
		}
		return &Detection{
			Type:        RiskVitals,
			Severity:    severity,
			Confidence:  0.95,
			Description: fmt.Sprintf("Respiratory rate out of range: %d breaths/min", r.RespiratoryRate),
		}
	}

	return nil
}
