package detect

import (
	"math"

	"carewatch/internal/pose"
)

const (
	aggressionLookback = 5
	// aggressionMovementThreshold is the strict lower bound on average wrist
	// displacement per frame step, in pixels.
	aggressionMovementThreshold = 100.0
)

// DetectAggression flags rapid, large wrist displacement over the last five
// frames, a proxy for agitated arm motion. Both current wrists must be
// usable and the window must hold at least five frames. Historical frame
// pairs where a wrist is not usable on both ends contribute nothing.
func DetectAggression(p *pose.PoseData, hist *pose.History) *Detection {
	if hist.Len() < aggressionLookback {
		return nil
	}
	if _, ok := p.Find(pose.LeftWrist); !ok {
		return nil
	}
	if _, ok := p.Find(pose.RightWrist); !ok {
		return nil
	}

	recent := hist.Snapshot(aggressionLookback)
	total := 0.0
	for i := 1; i < len(recent); i++ {
		total += wristStep(&recent[i-1], &recent[i], pose.LeftWrist)
		total += wristStep(&recent[i-1], &recent[i], pose.RightWrist)
	}

	avgMovement := total / aggressionLookback
	if avgMovement > aggressionMovementThreshold {
		return &Detection{
			Type:        RiskAggression,
			Severity:    SeverityHigh,
			Confidence:  math.Min(avgMovement/200, 1),
			Description: "Rapid repeated arm movement detected",
		}
	}
	return nil
}

func wristStep(prev, curr *pose.PoseData, name string) float64 {
	a, ok := prev.Find(name)
	if !ok {
		return 0
	}
	b, ok := curr.Find(name)
	if !ok {
		return 0
	}
	return pose.Distance(a, b)
}
