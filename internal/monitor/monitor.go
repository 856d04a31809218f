package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"carewatch/internal/alerting"
	"carewatch/internal/detect"
	"carewatch/internal/pose"
	"carewatch/internal/posesource"
	"carewatch/internal/storage"
	"carewatch/internal/vitals"
)

// movementLevelPlaceholder is written with every session row. The reference
// behaviour does not derive movement from motion analysis yet and
// downstream consumers expect a constant.
const movementLevelPlaceholder = "low"

// Options configure a Monitor for one patient session.
type Options struct {
	PatientID   string
	BedArea     detect.BedArea
	DedupWindow time.Duration
	MinNotify   detect.Severity
}

// Monitor owns all state for one active monitoring session: the pose
// history window, the vitals simulator, the aggregator and the alert gate.
// Construct a fresh Monitor per session; nothing is shared across patients.
type Monitor struct {
	opts     Options
	source   posesource.Source
	history  *pose.History
	agg      *detect.Aggregator
	gate     *Gate
	sessions storage.SessionStore
	logger   zerolog.Logger
}

// New constructs a per-session Monitor.
func New(
	opts Options,
	source posesource.Source,
	sim *vitals.Simulator,
	alerts storage.AlertStore,
	sessions storage.SessionStore,
	notifier alerting.Notifier,
	logger zerolog.Logger,
) *Monitor {
	history := pose.NewHistory()
	componentLogger := logger.With().Str("component", "monitor").Str("patient_id", opts.PatientID).Logger()

	return &Monitor{
		opts:     opts,
		source:   source,
		history:  history,
		agg:      detect.NewAggregator(opts.BedArea, history, sim, componentLogger),
		gate:     NewGate(alerts, notifier, opts.DedupWindow, opts.MinNotify, componentLogger),
		sessions: sessions,
		logger:   componentLogger,
	}
}

// RunCycle performs one evaluation cycle: fetch the latest pose, run the
// detectors, persist alerts through the dedup gate, and append one
// monitoring session row. A cycle without a fresh frame evaluates nothing.
func (m *Monitor) RunCycle(ctx context.Context, now time.Time) error {
	frame, err := m.source.Next(ctx)
	if err != nil {
		return fmt.Errorf("next pose: %w", err)
	}
	if frame == nil {
		return nil
	}

	result := m.agg.Evaluate(frame)

	m.gate.Process(ctx, m.opts.PatientID, result.Detections, now)
	m.persistSession(ctx, frame, result)

	return nil
}

// Reset clears the pose history window. Must be called when monitoring
// stops or the observed patient changes so no stale history crosses
// session boundaries.
func (m *Monitor) Reset() {
	m.history.Clear()
	m.logger.Debug().Msg("pose history cleared")
}

func (m *Monitor) persistSession(ctx context.Context, frame *pose.PoseData, result detect.CycleResult) {
	if m.sessions == nil {
		return
	}

	snapshot, err := json.Marshal(frame)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to encode pose snapshot; session row dropped")
		return
	}

	session := storage.MonitoringSession{
		PatientID:       m.opts.PatientID,
		HeartRate:       result.Reading.HeartRate,
		IsInBed:         result.Reading.IsInBed,
		MovementLevel:   movementLevelPlaceholder,
		Temperature:     result.Reading.Temperature,
		RespiratoryRate: result.Reading.RespiratoryRate,
		PoseData:        snapshot,
	}

	if _, err := m.sessions.InsertSession(ctx, session); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist monitoring session; continuing")
	}
}
