package detect

import "carewatch/internal/pose"

const (
	wanderingLookback = 10
	// wanderingMinOutOfBed is the strict lower bound on out-of-bed frames
	// within the lookback before wandering fires. Brief repositioning must
	// not trip the alarm.
	wanderingMinOutOfBed = 7
)

// DetectWandering flags sustained absence from the bed area. The current
// hip midpoint must be outside the bed, the window must hold more than ten
// frames, and more than seven of the last ten frames must also place the
// patient out of bed. Frames without usable hips are excluded from the
// count, not treated as in-bed evidence.
func DetectWandering(p *pose.PoseData, hist *pose.History, bed BedArea) *Detection {
	leftHip, ok := p.Find(pose.LeftHip)
	if !ok {
		return nil
	}
	rightHip, ok := p.Find(pose.RightHip)
	if !ok {
		return nil
	}

	hipX, hipY := pose.Midpoint(leftHip, rightHip)
	if bed.Contains(hipX, hipY) {
		return nil
	}

	if hist.Len() <= wanderingLookback {
		return nil
	}

	recent := hist.Snapshot(wanderingLookback)
	outOfBed := 0
	for i := range recent {
		lh, ok := recent[i].Find(pose.LeftHip)
		if !ok {
			continue
		}
		rh, ok := recent[i].Find(pose.RightHip)
		if !ok {
			continue
		}
		mx, my := pose.Midpoint(lh, rh)
		if !bed.Contains(mx, my) {
			outOfBed++
		}
	}

	if outOfBed > wanderingMinOutOfBed {
		return &Detection{
			Type:        RiskWandering,
			Severity:    SeverityHigh,
			Confidence:  float64(outOfBed) / float64(wanderingLookback),
			Description: "Patient has been out of the bed area for a sustained period",
		}
	}
	return nil
}
