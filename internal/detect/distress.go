package detect

import (
	"math"

	"carewatch/internal/pose"
)

// distressSlopeFactor scales body length into the shoulder-asymmetry
// threshold.
const distressSlopeFactor = 0.3

// DetectDistress flags markedly asymmetric shoulder posture with the head
// held above the shoulder line. This is a heuristic proxy for emotional
// distress, not a validated clinical signal; it fires at a fixed moderate
// confidence.
func DetectDistress(p *pose.PoseData) *Detection {
	nose, ok := p.Find(pose.Nose)
	if !ok {
		return nil
	}
	leftShoulder, ok := p.Find(pose.LeftShoulder)
	if !ok {
		return nil
	}
	rightShoulder, ok := p.Find(pose.RightShoulder)
	if !ok {
		return nil
	}
	leftHip, ok := p.Find(pose.LeftHip)
	if !ok {
		return nil
	}
	rightHip, ok := p.Find(pose.RightHip)
	if !ok {
		return nil
	}

	_, shoulderY := pose.Midpoint(leftShoulder, rightShoulder)
	_, hipY := pose.Midpoint(leftHip, rightHip)

	slope := math.Abs(leftShoulder.Y - rightShoulder.Y)
	bodyLength := math.Abs(hipY - shoulderY)

	if slope > distressSlopeFactor*bodyLength && nose.Y < shoulderY {
		return &Detection{
			Type:        RiskEmotion,
			Severity:    SeverityMedium,
			Confidence:  0.6,
			Description: "Posture asymmetry suggests possible emotional distress",
		}
	}
	return nil
}
