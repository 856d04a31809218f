package detect

import (
	"math"

	"carewatch/internal/pose"
)

// fallAspectThreshold marks the silhouette as horizontally elongated.
const fallAspectThreshold = 1.5

// DetectFall flags a lying, non-upright posture: the torso wider than it is
// tall while the nose sits below the shoulder line. Requires nose, both
// hips and both shoulders; any of them missing yields no detection.
func DetectFall(p *pose.PoseData) *Detection {
	nose, ok := p.Find(pose.Nose)
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
	leftShoulder, ok := p.Find(pose.LeftShoulder)
	if !ok {
		return nil
	}
	rightShoulder, ok := p.Find(pose.RightShoulder)
	if !ok {
		return nil
	}

	hipX, hipY := pose.Midpoint(leftHip, rightHip)
	shoulderX, shoulderY := pose.Midpoint(leftShoulder, rightShoulder)

	height := math.Abs(hipY - shoulderY)
	width := math.Abs(hipX - shoulderX)

	// +1 guards the division when the torso is nearly horizontal in Y.
	aspectRatio := width / (height + 1)

	if aspectRatio > fallAspectThreshold && nose.Y > shoulderY {
		return &Detection{
			Type:        RiskFall,
			Severity:    SeverityCritical,
			Confidence:  math.Min(aspectRatio/2, 1),
			Description: "Patient appears to have fallen: horizontal posture with head below shoulder line",
		}
	}
	return nil
}
