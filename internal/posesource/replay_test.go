package posesource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carewatch/internal/pose"
)

func TestReplaySourcePlaysFramesInOrder(t *testing.T) {
	frames := []pose.PoseData{
		{Score: 0.1},
		{Score: 0.2},
	}
	src := NewReplaySource(frames)

	first, err := src.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 0.1, first.Score)
	assert.Equal(t, 1, src.Remaining())

	second, err := src.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 0.2, second.Score)

	// Exhausted: behaves like a stream with no fresh frame.
	done, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, done)
	assert.Equal(t, 0, src.Remaining())
}

func TestReplaySourceHonoursContext(t *testing.T) {
	src := NewReplaySource([]pose.PoseData{{Score: 0.5}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
