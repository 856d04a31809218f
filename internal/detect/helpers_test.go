package detect

import "carewatch/internal/pose"

func testKeypoint(name string, x, y float64) pose.Keypoint {
	return pose.Keypoint{Name: name, X: x, Y: y, Score: 0.9}
}

func testPose(kps ...pose.Keypoint) *pose.PoseData {
	return &pose.PoseData{Keypoints: kps, Score: 0.9}
}

// uprightAt builds a standing figure with the hip midpoint at (cx, cy).
func uprightAt(cx, cy float64) *pose.PoseData {
	return testPose(
		testKeypoint(pose.Nose, cx, cy-120),
		testKeypoint(pose.LeftShoulder, cx-25, cy-80),
		testKeypoint(pose.RightShoulder, cx+25, cy-80),
		testKeypoint(pose.LeftWrist, cx-35, cy-20),
		testKeypoint(pose.RightWrist, cx+35, cy-20),
		testKeypoint(pose.LeftHip, cx-15, cy),
		testKeypoint(pose.RightHip, cx+15, cy),
	)
}

func historyOf(frames ...*pose.PoseData) *pose.History {
	h := pose.NewHistory()
	for _, f := range frames {
		h.Append(*f)
	}
	return h
}

func repeatFrames(f *pose.PoseData, n int) []*pose.PoseData {
	out := make([]*pose.PoseData, n)
	for i := range out {
		out[i] = f
	}
	return out
}
