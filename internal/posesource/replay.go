package posesource

import (
	"context"

	"carewatch/internal/pose"
)

// ReplaySource plays back a scripted frame sequence, one frame per Next.
// Used by the simulate command and by tests; it is exhausted when every
// frame has been consumed.
type ReplaySource struct {
	frames []pose.PoseData
	next   int
}

// NewReplaySource wraps a frame sequence.
func NewReplaySource(frames []pose.PoseData) *ReplaySource {
	return &ReplaySource{frames: frames}
}

// Next returns the next scripted frame, or nil once the sequence ends.
func (r *ReplaySource) Next(ctx context.Context) (*pose.PoseData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.next >= len(r.frames) {
		return nil, nil
	}
	frame := r.frames[r.next]
	r.next++
	return &frame, nil
}

// Remaining reports how many scripted frames are left.
func (r *ReplaySource) Remaining() int {
	return len(r.frames) - r.next
}

var _ Source = (*ReplaySource)(nil)
