package posesource

import (
	"context"
	"errors"

	"carewatch/internal/pose"
)

// ErrNotReady is returned when a source is asked for a frame before it has
// been initialised. The condition is fatal for the current cycle and must
// be surfaced to the operator rather than retried silently.
var ErrNotReady = errors.New("posesource: source not ready")

// Source delivers pose frames to the monitoring loop. Next returns the
// newest unconsumed frame, or nil when no fresh frame is available; a nil
// frame with nil error means the cycle has nothing to evaluate.
type Source interface {
	Next(ctx context.Context) (*pose.PoseData, error)
}
