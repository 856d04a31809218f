package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carewatch/internal/pose"
)

var testBed = BedArea{X: 0, Y: 0, Width: 100, Height: 100}

func TestDetectWanderingSustainedAbsence(t *testing.T) {
	out := uprightAt(300, 300)
	h := historyOf(repeatFrames(out, 11)...)

	d := DetectWandering(out, h, testBed)

	require.NotNil(t, d)
	assert.Equal(t, RiskWandering, d.Type)
	assert.Equal(t, SeverityHigh, d.Severity)
	assert.Equal(t, 1.0, d.Confidence)
}

func TestDetectWanderingSevenOfTenIsNotEnough(t *testing.T) {
	out := uprightAt(300, 300)
	in := uprightAt(50, 50)

	// Window of 11: the last ten frames hold exactly seven out-of-bed
	// entries; the strict >7 rule must not fire.
	h := pose.NewHistory()
	h.Append(*out)
	for i := 0; i < 3; i++ {
		h.Append(*in)
	}
	for i := 0; i < 7; i++ {
		h.Append(*out)
	}
	require.Equal(t, 11, h.Len())

	assert.Nil(t, DetectWandering(out, h, testBed))
}

func TestDetectWanderingRequiresWindowDepth(t *testing.T) {
	out := uprightAt(300, 300)
	h := historyOf(repeatFrames(out, 10)...)

	// Exactly ten entries is not "more than ten".
	assert.Nil(t, DetectWandering(out, h, testBed))
}

func TestDetectWanderingInBed(t *testing.T) {
	in := uprightAt(50, 50)
	h := historyOf(repeatFrames(uprightAt(300, 300), 11)...)

	assert.Nil(t, DetectWandering(in, h, testBed))
}

func TestDetectWanderingBedBoundsInclusive(t *testing.T) {
	// Hip midpoint exactly on the bed edge counts as in bed.
	edge := uprightAt(100, 100)
	h := historyOf(repeatFrames(uprightAt(300, 300), 11)...)

	assert.Nil(t, DetectWandering(edge, h, testBed))
}

func TestDetectWanderingUnusableHipsAreExcluded(t *testing.T) {
	out := uprightAt(300, 300)

	blind := uprightAt(300, 300)
	for i := range blind.Keypoints {
		if blind.Keypoints[i].Name == pose.LeftHip {
			blind.Keypoints[i].Score = 0.1
		}
	}

	// Seven readable out-of-bed frames plus three unreadable ones: the
	// unreadable frames are excluded from the count, so only seven qualify
	// and the rule stays quiet.
	h := pose.NewHistory()
	h.Append(*out)
	for i := 0; i < 3; i++ {
		h.Append(*blind)
	}
	for i := 0; i < 7; i++ {
		h.Append(*out)
	}

	assert.Nil(t, DetectWandering(out, h, testBed))
}

func TestDetectWanderingClearedHistory(t *testing.T) {
	out := uprightAt(300, 300)
	h := historyOf(repeatFrames(out, 15)...)
	h.Clear()

	assert.Nil(t, DetectWandering(out, h, testBed))
}

func TestDetectWanderingMissingCurrentHips(t *testing.T) {
	h := historyOf(repeatFrames(uprightAt(300, 300), 11)...)
	assert.Nil(t, DetectWandering(testPose(testKeypoint(pose.Nose, 300, 200)), h, testBed))
}
