package pose

// WindowCapacity bounds the history window. Temporal detectors look at most
// 10 frames back, so 30 leaves ample slack without unbounded growth.
const WindowCapacity = 30

// History is a bounded, time-ordered buffer of recent pose frames. It is
// owned by exactly one monitoring session and must be cleared on session
// teardown so detector state never crosses patients.
//
// History is not safe for concurrent use; the monitoring loop is the single
// writer and reader.
type History struct {
	frames []PoseData
}

// NewHistory constructs an empty window.
func NewHistory() *History {
	return &History{frames: make([]PoseData, 0, WindowCapacity)}
}

// Append adds the frame as newest, evicting the oldest when the window
// exceeds capacity.
func (h *History) Append(p PoseData) {
	h.frames = append(h.frames, p)
	if len(h.frames) > WindowCapacity {
		h.frames = h.frames[1:]
	}
}

// Clear empties the window. Called when monitoring stops or the observed
// patient changes.
func (h *History) Clear() {
	h.frames = h.frames[:0]
}

// Len reports the number of frames currently held.
func (h *History) Len() int {
	return len(h.frames)
}

// Snapshot returns up to the lastN most recent frames in chronological
// order (oldest first). It returns fewer when the window holds less;
// callers check the length themselves.
func (h *History) Snapshot(lastN int) []PoseData {
	if lastN <= 0 {
		return nil
	}
	start := len(h.frames) - lastN
	if start < 0 {
		start = 0
	}
	out := make([]PoseData, len(h.frames)-start)
	copy(out, h.frames[start:])
	return out
}
