package pose

import "math"

// Canonical keypoint names emitted by the upstream pose estimator
// (COCO-style 17-point skeleton).
const (
	Nose          = "nose"
	LeftEye       = "left_eye"
	RightEye      = "right_eye"
	LeftEar       = "left_ear"
	RightEar      = "right_ear"
	LeftShoulder  = "left_shoulder"
	RightShoulder = "right_shoulder"
	LeftElbow     = "left_elbow"
	RightElbow    = "right_elbow"
	LeftWrist     = "left_wrist"
	RightWrist    = "right_wrist"
	LeftHip       = "left_hip"
	RightHip      = "right_hip"
	LeftKnee      = "left_knee"
	RightKnee     = "right_knee"
	LeftAnkle     = "left_ankle"
	RightAnkle    = "right_ankle"
)

// minUsableScore is the confidence floor below which a keypoint is treated
// as not visible.
const minUsableScore = 0.3

// Keypoint is one named joint position with detection confidence.
type Keypoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
	Name  string  `json:"name"`
}

// Usable reports whether the keypoint carries enough confidence to feed a
// detector.
func (k Keypoint) Usable() bool {
	return k.Score > minUsableScore
}

// PoseData is one full-body estimate for one video frame. Keypoint names
// are not guaranteed present; consumers must go through Find.
type PoseData struct {
	Keypoints []Keypoint `json:"keypoints"`
	Score     float64    `json:"score"`
}

// Find returns the named keypoint if it is present and usable. Detectors
// never impute missing joints; an unusable keypoint reads as absent.
func (p *PoseData) Find(name string) (Keypoint, bool) {
	for _, kp := range p.Keypoints {
		if kp.Name == name && kp.Usable() {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// Midpoint returns the coordinate midway between two keypoints.
func Midpoint(a, b Keypoint) (x, y float64) {
	return (a.X + b.X) / 2, (a.Y + b.Y) / 2
}

// Distance returns the Euclidean distance between two keypoints in frame
// pixels.
func Distance(a, b Keypoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
