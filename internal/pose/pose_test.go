package pose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindSkipsLowConfidenceKeypoints(t *testing.T) {
	p := PoseData{Keypoints: []Keypoint{
		{Name: Nose, X: 10, Y: 20, Score: 0.3},
		{Name: LeftHip, X: 30, Y: 40, Score: 0.31},
	}}

	// Exactly 0.3 is not usable; the threshold is strict.
	_, ok := p.Find(Nose)
	assert.False(t, ok)

	hip, ok := p.Find(LeftHip)
	assert.True(t, ok)
	assert.Equal(t, 30.0, hip.X)

	_, ok = p.Find(RightHip)
	assert.False(t, ok)
}

func TestMidpointAndDistance(t *testing.T) {
	a := Keypoint{X: 0, Y: 0}
	b := Keypoint{X: 4, Y: 3}

	mx, my := Midpoint(a, b)
	assert.Equal(t, 2.0, mx)
	assert.Equal(t, 1.5, my)

	assert.Equal(t, 5.0, Distance(a, b))
}
