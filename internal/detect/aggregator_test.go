package detect

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carewatch/internal/pose"
	"carewatch/internal/vitals"
)

func testAggregator(hist *pose.History) *Aggregator {
	sim := vitals.NewSimulatorWithRand(rand.New(rand.NewSource(1)))
	return NewAggregator(testBed, hist, sim, zerolog.Nop())
}

func TestAggregatorCalmCycle(t *testing.T) {
	in := uprightAt(50, 50)
	h := historyOf(repeatFrames(in, 11)...)
	agg := testAggregator(h)

	res := agg.Evaluate(in)

	assert.Empty(t, res.Detections)
	assert.True(t, res.InBed)
	assert.True(t, res.Reading.IsInBed)
	assert.Equal(t, 12, h.Len())
}

func TestAggregatorOrdersFallBeforeWandering(t *testing.T) {
	// A fallen figure far outside the bed, after ten prior out-of-bed
	// frames: both rules fire, fall first.
	fallen := fallPoseAspect2()
	h := historyOf(repeatFrames(fallen, 10)...)
	agg := testAggregator(h)

	res := agg.Evaluate(fallen)

	require.Len(t, res.Detections, 2)
	assert.Equal(t, RiskFall, res.Detections[0].Type)
	assert.Equal(t, RiskWandering, res.Detections[1].Type)
	assert.False(t, res.InBed)
}

func TestAggregatorMissingHipsCountAsInBed(t *testing.T) {
	agg := testAggregator(pose.NewHistory())

	res := agg.Evaluate(testPose(testKeypoint(pose.Nose, 500, 500)))

	assert.True(t, res.InBed)
}

func TestAggregatorAggressionBiasesVitals(t *testing.T) {
	frames := wristFrames(5, 200)
	h := historyOf(frames[:4]...)
	agg := testAggregator(h)

	res := agg.Evaluate(frames[4])

	require.NotEmpty(t, res.Detections)
	assert.Equal(t, RiskAggression, res.Detections[0].Type)
	// Aggression adds 30 bpm on top of at worst 75-5 baseline.
	assert.GreaterOrEqual(t, res.Reading.HeartRate, 100)
}
