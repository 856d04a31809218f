package detect

// RiskType is the closed set of risks the engine can flag.
type RiskType string

const (
	RiskFall       RiskType = "fall"
	RiskWandering  RiskType = "wandering"
	RiskAggression RiskType = "aggression"
	RiskEmotion    RiskType = "emotion"
	RiskVitals     RiskType = "vitals"
)

// Severity grades a detection.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for comparison. Unknown values rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Detection is one heuristic's output for one evaluation cycle. It has no
// identity of its own; the persistence gate turns it into an alert.
type Detection struct {
	Type        RiskType
	Severity    Severity
	Confidence  float64
	Description string
}

// BedArea is the configured axis-aligned rectangle marking the monitored
// bed region in frame-pixel coordinates.
type BedArea struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains reports whether the point lies within the bed area, bounds
// inclusive.
func (b BedArea) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}
