package detect

import (
	"github.com/rs/zerolog"

	"carewatch/internal/pose"
	"carewatch/internal/vitals"
)

// CycleResult is the outcome of one evaluation cycle: the risks that fired,
// in fixed order, plus the synthesised vitals reading.
type CycleResult struct {
	Detections []Detection
	Reading    vitals.Reading
	InBed      bool
}

// Aggregator runs the rule detectors and the vitals pathway for one
// monitoring session. It owns nothing shared: window and simulator are
// per-session instances handed in at construction.
type Aggregator struct {
	bed    BedArea
	hist   *pose.History
	sim    *vitals.Simulator
	logger zerolog.Logger
}

// NewAggregator wires a per-session aggregator.
func NewAggregator(bed BedArea, hist *pose.History, sim *vitals.Simulator, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		bed:    bed,
		hist:   hist,
		sim:    sim,
		logger: logger.With().Str("component", "aggregator").Logger(),
	}
}

// Evaluate appends the frame to the history window, runs the four rule
// detectors in fixed order, synthesises a vitals reading biased by the
// detected risks, and appends the vitals check result. Detectors are
// independent; the order only fixes the result list ordering.
func (a *Aggregator) Evaluate(p *pose.PoseData) CycleResult {
	a.hist.Append(*p)

	detections := make([]Detection, 0, 5)
	if d := DetectFall(p); d != nil {
		detections = append(detections, *d)
	}
	if d := DetectWandering(p, a.hist, a.bed); d != nil {
		detections = append(detections, *d)
	}
	if d := DetectAggression(p, a.hist); d != nil {
		detections = append(detections, *d)
	}
	if d := DetectDistress(p); d != nil {
		detections = append(detections, *d)
	}

	inBed := a.bedOccupied(p)
	reading := a.sim.Next(inBed, hasType(detections, RiskAggression), hasType(detections, RiskEmotion))
	if d := DetectVitalsRisk(reading); d != nil {
		detections = append(detections, *d)
	}

	if len(detections) > 0 {
		a.logger.Debug().Int("detections", len(detections)).Bool("in_bed", inBed).Msg("risks detected this cycle")
	}

	return CycleResult{Detections: detections, Reading: reading, InBed: inBed}
}

// bedOccupied derives occupancy from the current hip midpoint. Missing hips
// are not evidence of absence, so an unreadable frame counts as in-bed.
func (a *Aggregator) bedOccupied(p *pose.PoseData) bool {
	leftHip, ok := p.Find(pose.LeftHip)
	if !ok {
		return true
	}
	rightHip, ok := p.Find(pose.RightHip)
	if !ok {
		return true
	}
	hipX, hipY := pose.Midpoint(leftHip, rightHip)
	return a.bed.Contains(hipX, hipY)
}

func hasType(detections []Detection, t RiskType) bool {
	for _, d := range detections {
		if d.Type == t {
			return true
		}
	}
	return false
}
