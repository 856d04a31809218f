package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc is invoked once per frame interval.
type TickFunc func(ctx context.Context, now time.Time) error

// Options tune the frame loop.
type Options struct {
	// FrameInterval paces evaluation cycles. In deployment this tracks the
	// camera frame cadence; there is no wall-clock alignment to preserve.
	FrameInterval time.Duration
	StartupDelay  time.Duration
}

// Scheduler drives the per-frame evaluation loop.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.FrameInterval <= 0 {
		panic("scheduler frame interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the tick function at each frame interval until ctx
// is cancelled. A failed tick is logged and the loop continues; the tick
// itself decides what is fatal by observing its own state.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	ticker := time.NewTicker(s.opts.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := tick(ctx, now); err != nil {
				s.logger.Error().Err(err).Time("frame", now).Msg("evaluation cycle failed")
			}
		}
	}
}
