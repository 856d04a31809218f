package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"carewatch/internal/alerting"
	"carewatch/internal/detect"
	"carewatch/internal/storage"
)

// DefaultDedupWindow is the cooldown during which a repeated same-type
// active alert for a patient is suppressed. Cycles run at frame rate, so a
// sustained condition would otherwise create an alert storm.
const DefaultDedupWindow = 5 * time.Second

// Gate applies deduplication policy before a detection becomes a persisted
// alert. The query-then-insert pair is not atomic across processes; the
// per-patient advisory lock taken by the run loop is what keeps two
// monitors from racing on one patient.
type Gate struct {
	alerts      storage.AlertStore
	notifier    alerting.Notifier
	dedupWindow time.Duration
	minNotify   detect.Severity
	logger      zerolog.Logger
}

// NewGate wires the gate. A nil alert store disables persistence and
// deduplication (every detection is treated as fresh); a nil notifier
// disables notifications.
func NewGate(alerts storage.AlertStore, notifier alerting.Notifier, dedupWindow time.Duration, minNotify detect.Severity, logger zerolog.Logger) *Gate {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}
	return &Gate{
		alerts:      alerts,
		notifier:    notifier,
		dedupWindow: dedupWindow,
		minNotify:   minNotify,
		logger:      logger.With().Str("component", "alert_gate").Logger(),
	}
}

// Process runs each detection through the dedup check independently and
// returns the alerts that were actually created. Store failures are logged
// and the detection is dropped; the cycle never blocks on persistence.
func (g *Gate) Process(ctx context.Context, patientID string, detections []detect.Detection, now time.Time) []storage.Alert {
	created := make([]storage.Alert, 0, len(detections))

	for _, det := range detections {
		if g.alerts != nil {
			existing, err := g.alerts.ListActiveAlerts(ctx, patientID, string(det.Type), now.Add(-g.dedupWindow))
			if err != nil {
				g.logger.Error().Err(err).
					Str("patient_id", patientID).
					Str("alert_type", string(det.Type)).
					Msg("dedup query failed; dropping detection")
				continue
			}
			if len(existing) > 0 {
				g.logger.Debug().
					Str("patient_id", patientID).
					Str("alert_type", string(det.Type)).
					Msg("suppressed duplicate alert within cooldown")
				continue
			}
		}

		alert := storage.Alert{
			PatientID:   patientID,
			AlertType:   string(det.Type),
			Severity:    string(det.Severity),
			Description: det.Description,
			Status:      storage.AlertStatusActive,
			Confidence:  det.Confidence,
		}

		if g.alerts != nil {
			inserted, err := g.alerts.InsertAlert(ctx, alert)
			if err != nil {
				g.logger.Error().Err(err).
					Str("patient_id", patientID).
					Str("alert_type", string(det.Type)).
					Msg("failed to persist alert; dropping")
				continue
			}
			alert = inserted
		}

		g.logger.Info().
			Str("patient_id", patientID).
			Str("alert_type", alert.AlertType).
			Str("severity", alert.Severity).
			Float64("confidence", alert.Confidence).
			Msg("alert created")
		created = append(created, alert)

		g.notify(ctx, det, patientID, now)
	}

	return created
}

func (g *Gate) notify(ctx context.Context, det detect.Detection, patientID string, now time.Time) {
	if g.notifier == nil || det.Severity.Rank() < g.minNotify.Rank() {
		return
	}
	note := alerting.Notification{
		PatientID:   patientID,
		AlertType:   string(det.Type),
		Severity:    string(det.Severity),
		Confidence:  det.Confidence,
		Description: det.Description,
		ObservedAt:  now,
	}
	if err := g.notifier.Notify(ctx, note); err != nil {
		g.logger.Error().Err(err).
			Str("patient_id", patientID).
			Str("alert_type", string(det.Type)).
			Msg("failed to dispatch notification")
	}
}
